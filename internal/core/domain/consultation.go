package domain

import "time"

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Categories is the closed procedure vocabulary the classifier may choose
// from. Prompts enumerate it verbatim, so order is stable.
func Categories() []string {
	return []string{"필러", "보톡스", "모발이식", "제모", "피부", "리프팅"}
}

func IsKnownCategory(category string) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}

type CategoryResult struct {
	Detected bool   `json:"is_detected"`
	Category string `json:"category,omitempty"`
}

type DocumentSelection struct {
	Filename string `json:"selected_filename"`
}

type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ConsultationMode string

const (
	ModeFull   ConsultationMode = "full"
	ModeSimple ConsultationMode = "simple"
	ModeError  ConsultationMode = "error"
)

type FormatterStyle string

const (
	StyleAdvanced FormatterStyle = "advanced"
	StyleCompact  FormatterStyle = "compact"
)

type ConsultationRequest struct {
	Query     string             `json:"query"`
	History   []ConversationTurn `json:"history,omitempty"`
	PhotoNote string             `json:"photo_note,omitempty"`
	Mode      ConsultationMode   `json:"mode,omitempty"`
	Formatter FormatterStyle     `json:"formatter,omitempty"`
}

type ConsultationReply struct {
	ConsultationID     string           `json:"consultation_id"`
	Text               string           `json:"reply"`
	Mode               ConsultationMode `json:"mode"`
	Category           string           `json:"category,omitempty"`
	ReferencedDocument string           `json:"referenced_document,omitempty"`
}

// ConsultationEvent is the completion notification published for downstream
// consumers when messaging is configured.
type ConsultationEvent struct {
	ConsultationID string    `json:"consultation_id"`
	Category       string    `json:"category,omitempty"`
	Mode           string    `json:"mode"`
	Document       string    `json:"document,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}
