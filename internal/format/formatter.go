package format

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// Formatter turns raw model output into the user-facing reply text. Rendering
// runs an ordered strategy list: structured render of the parsed JSON, then a
// wrapper around the raw text, then a catch-all error line. The first
// strategy to succeed wins; a panic inside a renderer counts as that
// strategy's failure, so RenderConsultation never panics and never returns an
// empty string.
type Formatter struct {
	strategies []renderStrategy
}

type renderStrategy struct {
	name   string
	render func(in renderInput) (string, error)
}

type renderInput struct {
	style        domain.FormatterStyle
	raw          string
	documentName string
	category     string
}

func NewFormatter() *Formatter {
	return &Formatter{
		strategies: []renderStrategy{
			{name: "structured", render: renderStructured},
			{name: "raw_wrapper", render: renderRawWrapper},
		},
	}
}

func (f *Formatter) RenderConsultation(style domain.FormatterStyle, raw, documentName, category string) string {
	in := renderInput{
		style:        style,
		raw:          raw,
		documentName: documentName,
		category:     category,
	}

	var lastErr error
	for _, strategy := range f.strategies {
		text, err := runStrategy(strategy, in)
		if err == nil {
			return text
		}
		lastErr = err
		slog.Warn("render_strategy_failed", "strategy", strategy.name, "error", err)
	}
	return fmt.Sprintf("❌ 응답 생성 중 오류가 발생했습니다: %v", lastErr)
}

func (f *Formatter) RenderSimple(answer string) string {
	return fmt.Sprintf(`👩‍⚕️ **AI 피부과 상담 실장**

%s

---
*간단 모드로 답변드렸습니다. 정확한 진단은 전문의와 상담하시기 바랍니다.*`, answer)
}

func (f *Formatter) RenderFailure(err error) string {
	return fmt.Sprintf("❌ 죄송합니다. 시스템 오류로 답변을 생성할 수 없습니다. 다시 시도해주세요. (오류: %v)", err)
}

// runStrategy converts a panic inside a renderer into an ordinary error so
// the pipeline can fall through to the next strategy.
func runStrategy(s renderStrategy, in renderInput) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s renderer panicked: %v", s.name, r)
		}
	}()
	return s.render(in)
}

func renderStructured(in renderInput) (string, error) {
	result, err := ParseResult(in.raw)
	if err != nil {
		return "", err
	}
	if in.style == domain.StyleCompact {
		return renderCompact(result, in.documentName, in.category), nil
	}
	return renderAdvanced(result), nil
}

func renderRawWrapper(in renderInput) (string, error) {
	return fmt.Sprintf(`👩‍⚕️ **AI 피부과 상담 실장** (풀 모드)

%s

---
📚 **참조 PDF**: %s...
🏷️ **카테고리**: %s`,
		in.raw,
		truncateRunes(orDefault(in.documentName, "없음"), 50),
		orDefault(in.category, "전체")), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// formatScore prints whole scores without a decimal point, matching how the
// model writes them.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func ellipsize(s string, limit int) string {
	if len([]rune(s)) > limit {
		return truncateRunes(s, limit) + "..."
	}
	return s
}
