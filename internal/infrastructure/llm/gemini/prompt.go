package gemini

import (
	"fmt"
	"strings"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

const categoryPromptTemplate = `사용자 질문을 분석하여 다음 카테고리 중 가장 관련성 높은 것을 하나만 분류하세요: %s. 관련 없으면 is_detected를 false로 설정하세요.

JSON 객체로만 응답하세요:
{"is_detected": <카테고리를 찾았으면 true, 아니면 false>, "category": "<반드시 다음 선택지 중 하나: %s>"}

사용자 질문: %s`

const selectionPromptTemplate = `당신은 사용자 질문을 분석하여, 질문에 답변하는 데 가장 도움이 될 참고 자료(PDF)를 단 하나만 골라주는 전문가입니다. 아래 제공된 PDF 파일들의 요약 목록을 보고, 사용자 질문과 가장 관련성이 높은 파일의 이름을 정확히 선택해야 합니다.

<< PDF 요약 목록 >>
%s
JSON 객체로만 응답하세요:
{"selected_filename": "<목록에 있는 파일 이름 그대로>"}

사용자 질문: %s`

func buildCategoryPrompt(query string) string {
	categories := strings.Join(domain.Categories(), ", ")
	return fmt.Sprintf(categoryPromptTemplate, categories, categories, query)
}

func buildSelectionPrompt(query string, docs []domain.ReferenceDocument) string {
	var summaries strings.Builder
	for _, doc := range docs {
		fmt.Fprintf(&summaries, "- 파일명: %s\n  요약: %s\n", doc.Filename, doc.Summary)
	}
	return fmt.Sprintf(selectionPromptTemplate, summaries.String(), query)
}
