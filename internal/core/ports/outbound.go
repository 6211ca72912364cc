package ports

import (
	"context"

	"github.com/kirillkom/derma-consult/internal/core/domain"
)

// CategoryClassifier extracts the procedure category from a user query.
// An out-of-vocabulary reply is a valid not-detected outcome, not an error.
type CategoryClassifier interface {
	Classify(ctx context.Context, query string) (domain.CategoryResult, error)
}

// DocumentSelector picks the single reference document most relevant to a
// query, judged by the document summaries.
type DocumentSelector interface {
	Select(ctx context.Context, query string, docs []domain.ReferenceDocument) (domain.DocumentSelection, error)
}

// AnswerGenerator produces the consultation answer text. A non-nil
// attachment references a previously uploaded corpus document.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string, attachment *domain.ReferenceDocument) (string, error)
}

// FileUploader registers a local file with the model provider and returns
// the document carrying the reusable handle.
type FileUploader interface {
	Upload(ctx context.Context, path string) (domain.ReferenceDocument, error)
}

// CorpusManager owns the filename -> uploaded-document cache.
type CorpusManager interface {
	Sync(ctx context.Context) (int, error)
	Reload(ctx context.Context) (int, error)
	Status() domain.CorpusStatus
	Documents() []domain.ReferenceDocument
	Document(filename string) (domain.ReferenceDocument, bool)
}

// ClinicDirectory filters the clinic dataset by procedure category and
// renders the result as prompt-ready text. It never fails: missing data
// degrades to fixed notice strings.
type ClinicDirectory interface {
	FilterByCategory(category string) string
}

// ConsultationPromptBuilder renders the consultation system prompt from its
// three slots. Empty values are substituted with explicit none sentinels.
// Simple returns the reduced-context prompt used by the fallback path.
type ConsultationPromptBuilder interface {
	Build(directoryText, photoNote string, history []domain.ConversationTurn) (string, error)
	Simple(query string) string
}

// ResponseRenderer turns raw model output into user-facing text. Rendering
// never fails; every degradation path produces a readable message.
type ResponseRenderer interface {
	RenderConsultation(style domain.FormatterStyle, raw, documentName, category string) string
	RenderSimple(answer string) string
	RenderFailure(err error) string
}

// MessageQueue publishes consultation events and consumes corpus reload
// broadcasts.
type MessageQueue interface {
	PublishConsultationCompleted(ctx context.Context, event domain.ConsultationEvent) error
	SubscribeCorpusReload(ctx context.Context, handler func(context.Context) error) error
}
