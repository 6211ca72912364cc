package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/core/ports"
)

// ConsultUseCase runs one query through the consultation pipeline: category
// classification and document selection, clinic directory filtering, prompt
// assembly, generation, and rendering. Full-mode failures degrade to the
// reduced-context simple prompt; a simple-mode failure yields the rendered
// failure message. The error return is reserved for invalid input.
type ConsultUseCase struct {
	classifier ports.CategoryClassifier
	selector   ports.DocumentSelector
	generator  ports.AnswerGenerator
	corpus     ports.CorpusManager
	directory  ports.ClinicDirectory
	prompts    ports.ConsultationPromptBuilder
	renderer   ports.ResponseRenderer
	queue      ports.MessageQueue
}

func NewConsultUseCase(
	classifier ports.CategoryClassifier,
	selector ports.DocumentSelector,
	generator ports.AnswerGenerator,
	corpus ports.CorpusManager,
	directory ports.ClinicDirectory,
	prompts ports.ConsultationPromptBuilder,
	renderer ports.ResponseRenderer,
	queue ports.MessageQueue,
) *ConsultUseCase {
	return &ConsultUseCase{
		classifier: classifier,
		selector:   selector,
		generator:  generator,
		corpus:     corpus,
		directory:  directory,
		prompts:    prompts,
		renderer:   renderer,
		queue:      queue,
	}
}

func (uc *ConsultUseCase) Consult(
	ctx context.Context,
	req domain.ConsultationRequest,
) (domain.ConsultationReply, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return domain.ConsultationReply{}, domain.WrapError(domain.ErrInvalidInput, "consult", errors.New("empty query"))
	}

	started := time.Now()
	reply := uc.answer(ctx, req, query)
	reply.ConsultationID = uuid.NewString()

	uc.publishCompleted(ctx, reply, started)
	return reply, nil
}

func (uc *ConsultUseCase) answer(
	ctx context.Context,
	req domain.ConsultationRequest,
	query string,
) domain.ConsultationReply {
	if req.Mode != domain.ModeSimple {
		if reply, err := uc.fullConsultation(ctx, req, query); err == nil {
			return reply
		}
	}

	answer, err := uc.generator.Generate(ctx, uc.prompts.Simple(query), nil)
	if err != nil {
		return domain.ConsultationReply{
			Text: uc.renderer.RenderFailure(err),
			Mode: domain.ModeError,
		}
	}
	return domain.ConsultationReply{
		Text: uc.renderer.RenderSimple(answer),
		Mode: domain.ModeSimple,
	}
}

func (uc *ConsultUseCase) fullConsultation(
	ctx context.Context,
	req domain.ConsultationRequest,
	query string,
) (domain.ConsultationReply, error) {
	category, selection, err := uc.classifyAndSelect(ctx, query)
	if err != nil {
		return domain.ConsultationReply{}, err
	}

	directoryText := uc.directory.FilterByCategory(category.Category)

	history := append(append([]domain.ConversationTurn{}, req.History...), domain.ConversationTurn{
		Role:    domain.RoleUser,
		Content: query,
	})
	systemPrompt, err := uc.prompts.Build(directoryText, req.PhotoNote, history)
	if err != nil {
		return domain.ConsultationReply{}, fmt.Errorf("build consultation prompt: %w", err)
	}

	attachment := uc.resolveAttachment(selection)
	raw, err := uc.generator.Generate(ctx, systemPrompt, attachment)
	if err != nil {
		return domain.ConsultationReply{}, fmt.Errorf("generate consultation: %w", err)
	}

	documentName := ""
	if attachment != nil {
		documentName = attachment.Filename
	}
	return domain.ConsultationReply{
		Text:               uc.renderer.RenderConsultation(req.Formatter, raw, documentName, category.Category),
		Mode:               domain.ModeFull,
		Category:           category.Category,
		ReferencedDocument: documentName,
	}, nil
}

// classifyAndSelect issues the two independent model calls concurrently.
func (uc *ConsultUseCase) classifyAndSelect(
	ctx context.Context,
	query string,
) (domain.CategoryResult, domain.DocumentSelection, error) {
	var (
		category  domain.CategoryResult
		selection domain.DocumentSelection
	)
	docs := uc.corpus.Documents()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := uc.classifier.Classify(gctx, query)
		if err != nil {
			return fmt.Errorf("classify query: %w", err)
		}
		category = result
		return nil
	})
	g.Go(func() error {
		result, err := uc.selector.Select(gctx, query, docs)
		if err != nil {
			return fmt.Errorf("select document: %w", err)
		}
		selection = result
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.CategoryResult{}, domain.DocumentSelection{}, err
	}

	return category, selection, nil
}

// resolveAttachment maps the selected filename onto the corpus cache. An
// unknown or empty filename means generating without an attachment.
func (uc *ConsultUseCase) resolveAttachment(selection domain.DocumentSelection) *domain.ReferenceDocument {
	if selection.Filename == "" {
		return nil
	}
	doc, ok := uc.corpus.Document(selection.Filename)
	if !ok || !doc.HasHandle() {
		return nil
	}
	return &doc
}

// publishCompleted emits the completion event when messaging is configured.
// A dropped event never fails the consultation.
func (uc *ConsultUseCase) publishCompleted(
	ctx context.Context,
	reply domain.ConsultationReply,
	started time.Time,
) {
	if uc.queue == nil {
		return
	}
	_ = uc.queue.PublishConsultationCompleted(ctx, domain.ConsultationEvent{
		ConsultationID: reply.ConsultationID,
		Category:       reply.Category,
		Mode:           string(reply.Mode),
		Document:       reply.ReferencedDocument,
		DurationMS:     time.Since(started).Milliseconds(),
		CompletedAt:    time.Now().UTC(),
	})
}
