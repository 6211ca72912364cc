package format

import (
	"fmt"
	"strings"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// renderAdvanced lays a parsed result out as the long consultation-room
// reply: greeting, combined analysis, one block per skin issue, clinic guide,
// closing disclaimer. Missing fields render fixed placeholders so a sparse
// model response still reads as a complete answer.
func renderAdvanced(result domain.ConsultationResult) string {
	sections := []string{
		advancedHeader(result),
		advancedAnalysis(result),
	}
	sections = append(sections, advancedIssueSections(result)...)
	sections = append(sections, advancedClinicGuide(result), advancedClosing)
	return strings.TrimSpace(strings.Join(sections, "\n\n"))
}

func advancedHeader(result domain.ConsultationResult) string {
	return fmt.Sprintf(`안녕하세요! 👋 20년차 피부과 전문 상담 실장입니다.

**📋 %s 내용**
%s

고객님의 피부 상태를 꼼꼼히 분석해보았습니다. 전문적이면서도 이해하기 쉽게 설명드릴게요! 💫`,
		orDefault(result.ConsultationStage, "상담"),
		orDefault(result.ClarifiedConcern, "피부 상담"))
}

func advancedAnalysis(result domain.ConsultationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**🔍 종합 분석 결과**\n\n%s\n\n**📸 제출하신 사진 분석:**\n",
		orDefault(result.OverallSummary, "종합적인 분석을 진행했습니다."))

	photos := result.AnalyzedData.SubmittedPhotos
	if len(photos) == 0 {
		b.WriteString("• 제출된 사진이 없어 텍스트 상담을 기준으로 분석했습니다.\n")
	}
	for _, photo := range photos {
		fmt.Fprintf(&b, "• %s\n", photo)
	}
	return strings.TrimRight(b.String(), "\n")
}

func advancedIssueSections(result domain.ConsultationResult) []string {
	sections := make([]string, 0, len(result.SkinIssues))
	for _, issue := range result.SkinIssues {
		var b strings.Builder
		fmt.Fprintf(&b, "**🎯 진단된 문제:** %s\n\n**💡 추천 시술 옵션들:**\n",
			orDefault(issue.IdentifiedProblem, "피부 문제"))

		for _, analysis := range issue.DetailedAnalysis {
			plan := analysis.ProcedurePlan
			if plan == nil {
				plan = &domain.ProcedurePlan{}
			}
			fmt.Fprintf(&b, `
**%s %s** (신뢰도: %s/10)

**의학적 원리:** %s

**상세 설명:** %s

**시술 계획:**
• 권장 횟수: %s
• 회복 기간: %s
• 시술 전 준비: %s
• 시술 후 관리: %s
• 예상 비용: %s

**참고 문헌:** %s
`,
				advancedConfidenceEmoji(analysis.ConfidenceScore),
				orDefault(analysis.Option, "시술"),
				formatScore(analysis.ConfidenceScore),
				analysis.MedicalPrinciple,
				analysis.DetailedExplanation,
				orDefault(plan.RecommendedSessions, "상담 후 결정"),
				orDefault(plan.ExpectedDowntime, "개인차 있음"),
				orDefault(plan.PreProcedureCare, "별도 안내"),
				orDefault(plan.PostProcedureCare, "별도 안내"),
				orDefault(plan.ExpectedCostRange, "상담 시 안내"),
				analysis.Citation)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	return sections
}

func advancedClinicGuide(result domain.ConsultationResult) string {
	return fmt.Sprintf(`**🏥 좋은 병원 선택 가이드**

%s

**✅ 체크포인트:**
• 전문의 자격증 확인
• 사용 장비의 최신성
• 상담의 충실성
• 사후 관리 체계
• 합리적인 가격 정책`,
		orDefault(result.ClinicSelectionGuide, "전문적인 병원을 선택하시길 권합니다."))
}

const advancedClosing = `**💌 마무리 말씀**

고객님의 피부 고민이 잘 해결되길 바랍니다!
추가 궁금한 점이 있으시면 언제든 문의해 주세요.

아름다운 피부를 위한 여정을 함께 하겠습니다! ✨

---
*본 상담은 AI 기반 분석 결과이며, 최종 진단 및 치료는 반드시 전문의와 상의하시기 바랍니다.*`

// Advanced tiers: 8 and above reads as high confidence, 6 and above as
// medium, anything lower as cautious.
func advancedConfidenceEmoji(score float64) string {
	switch {
	case score >= 8:
		return "🟢"
	case score >= 6:
		return "🟡"
	default:
		return "🟠"
	}
}
