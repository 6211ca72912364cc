package format

import (
	"fmt"
	"strings"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// renderCompact is the chat-style variant: shorter sections, labeled
// confidence tiers, and a footer naming the referenced document and inferred
// category. Sections render only when the underlying field is present.
func renderCompact(result domain.ConsultationResult, documentName, category string) string {
	var b strings.Builder
	b.WriteString("👩‍⚕️ **AI 피부과 상담 실장** (풀 모드)\n\n안녕하세요! 전문 서적을 참조하여 상세히 분석해드렸습니다. ✨\n\n")

	if result.ClarifiedConcern != "" {
		fmt.Fprintf(&b, "**🎯 고객님 질문 이해**\n%s\n\n", result.ClarifiedConcern)
	}
	if result.OverallSummary != "" {
		fmt.Fprintf(&b, "**📋 종합 분석 결과**\n%s\n\n", result.OverallSummary)
	}

	for idx, issue := range result.SkinIssues {
		fmt.Fprintf(&b, "**🔍 분석 결과 #%d**\n**문제**: %s\n\n**💡 추천 시술 옵션들**:\n",
			idx+1, orDefault(issue.IdentifiedProblem, "분석 중..."))
		for _, option := range issue.RecommendedOptions {
			fmt.Fprintf(&b, "• %s\n", option)
		}
		b.WriteString("\n")

		for _, analysis := range issue.DetailedAnalysis {
			emoji, label := compactConfidenceTier(analysis.ConfidenceScore)
			fmt.Fprintf(&b, "**%s %s** (%s - 신뢰도: %s/10)\n\n**의학적 원리**: %s\n\n**상세 설명**: %s\n\n",
				emoji,
				orDefault(analysis.Option, "시술"),
				label,
				formatScore(analysis.ConfidenceScore),
				analysis.MedicalPrinciple,
				analysis.DetailedExplanation)

			if plan := analysis.ProcedurePlan; plan != nil {
				fmt.Fprintf(&b, "**📅 시술 계획**\n• **권장 횟수**: %s\n• **회복 기간**: %s\n• **시술 전 준비**: %s\n• **시술 후 관리**: %s\n• **예상 비용**: %s\n\n",
					orDefault(plan.RecommendedSessions, "상담 후 결정"),
					orDefault(plan.ExpectedDowntime, "개인차 있음"),
					orDefault(plan.PreProcedureCare, "상담 시 안내"),
					orDefault(plan.PostProcedureCare, "상담 시 안내"),
					orDefault(plan.ExpectedCostRange, "상담 시 안내"))
			}
			if analysis.Citation != "" {
				fmt.Fprintf(&b, "**📚 전문 서적 참조**: %s...\n\n", truncateRunes(analysis.Citation, 100))
			}
		}
	}

	if result.ClinicSelectionGuide != "" {
		fmt.Fprintf(&b, "**🏥 좋은 병원 선택 가이드**\n\n%s\n\n", result.ClinicSelectionGuide)
	}

	fmt.Fprintf(&b, `**💬 마무리 말씀**

고객님의 고민이 잘 해결되길 바랍니다! 추가 질문이 있으시면 언제든 문의해 주세요. 😊

---
📚 **참조 PDF**: %s
🏷️ **추론 카테고리**: %s
⚡ **처리 모드**: PDF 참조 풀 모드

*본 상담은 AI 분석 결과이며, 최종 진단 및 치료는 반드시 전문의와 상의하시기 바랍니다.*`,
		ellipsize(orDefault(documentName, "없음"), 50),
		orDefault(category, "전체"))

	return b.String()
}

// Compact tiers sit higher than the advanced ones: only 9+ earns the
// strongest label.
func compactConfidenceTier(score float64) (emoji, label string) {
	switch {
	case score >= 9:
		return "🟢", "매우 확신"
	case score >= 7:
		return "🟡", "권장"
	default:
		return "🟠", "고려 가능"
	}
}
