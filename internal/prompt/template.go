package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

const (
	SlotHospitalList        = "((HOSPITAL_LIST))"
	SlotSubmittedPhotos     = "((SUBMITTED_PHOTOS))"
	SlotConversationHistory = "((CONVERSATION_HISTORY))"
)

// Sentinels substituted for slots the caller leaves empty. A rendered prompt
// never contains a literal slot token.
const (
	NoDirectoryNotice = "관련 병원 정보가 없습니다."
	NoPhotosNotice    = "사용자가 제출한 이미지가 없습니다."
	NoHistoryNotice   = "이전 대화 없음"
)

var slotToken = regexp.MustCompile(`\(\(([A-Z_]+)\)\)`)

var knownSlots = map[string]struct{}{
	SlotHospitalList:        {},
	SlotSubmittedPhotos:     {},
	SlotConversationHistory: {},
}

// Template is the consultation system prompt with its fixed slot set.
// Unknown slot tokens are rejected at parse time, not silently kept.
type Template struct {
	raw string
}

func Parse(raw string) (*Template, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("prompt template is empty")
	}
	for _, match := range slotToken.FindAllString(raw, -1) {
		if _, ok := knownSlots[match]; !ok {
			return nil, fmt.Errorf("prompt template contains unknown slot %s", match)
		}
	}
	return &Template{raw: raw}, nil
}

// Load reads a template override from disk. A missing or unreadable file
// falls back to the embedded default, matching the original degradation
// behavior of the consultation prompt file.
func Load(path string, logger *slog.Logger) (*Template, error) {
	if path == "" {
		return Parse(DefaultTemplate)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if logger != nil {
			logger.Warn("prompt_template_fallback", "path", path, "error", err)
		}
		return Parse(DefaultTemplate)
	}
	tpl, err := Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", path, err)
	}
	return tpl, nil
}

// Build renders the template with the three slot values, substituting none
// sentinels for empty ones. It implements ports.ConsultationPromptBuilder.
func (t *Template) Build(directoryText, photoNote string, history []domain.ConversationTurn) (string, error) {
	if directoryText == "" {
		directoryText = NoDirectoryNotice
	}
	if photoNote == "" {
		photoNote = NoPhotosNotice
	}
	serializedHistory := SerializeHistory(history)
	if serializedHistory == "" {
		serializedHistory = NoHistoryNotice
	}

	out := strings.ReplaceAll(t.raw, SlotHospitalList, directoryText)
	out = strings.ReplaceAll(out, SlotSubmittedPhotos, photoNote)
	out = strings.ReplaceAll(out, SlotConversationHistory, serializedHistory)

	if leftover := slotToken.FindString(out); leftover != "" {
		return "", fmt.Errorf("prompt template slot %s left unresolved", leftover)
	}
	return out, nil
}

// SerializeHistory renders conversation turns as role-prefixed lines in
// exact insertion order.
func SerializeHistory(turns []domain.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
	}
	return b.String()
}

// Simple is the reduced-context prompt used when the full pipeline is
// bypassed or has failed.
func Simple(query string) string {
	return fmt.Sprintf(`당신은 20년차 경력의 피부과 전문 상담 실장입니다.

사용자 질문: %s

위 질문에 대해 전문적이고 친근한 답변을 해주세요.
구체적인 시술 방법, 장단점, 주의사항, 대략적인 비용 등을 포함해주세요.`, query)
}

func (t *Template) Simple(query string) string {
	return Simple(query)
}
