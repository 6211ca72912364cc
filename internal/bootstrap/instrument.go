package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/derma-consult/internal/core/domain"
	"github.com/kirillkom/derma-consult/internal/core/ports"
	"github.com/kirillkom/derma-consult/internal/observability/metrics"
)

// The consultation pipeline itself carries no logger or metrics handle; the
// provider-facing ports are wrapped here instead so every step is timed and
// logged at the composition seam.

type stepInstrument struct {
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
	service string
}

func (s stepInstrument) observe(step string, started time.Time, err error) {
	duration := time.Since(started)
	s.metrics.RecordPipelineStep(s.service, step, duration)
	if err != nil {
		s.logger.Warn("pipeline_step_failed", "step", step, "duration_ms", duration.Milliseconds(), "error", err)
		return
	}
	s.logger.Info("pipeline_step", "step", step, "duration_ms", duration.Milliseconds())
}

type timedClassifier struct {
	next ports.CategoryClassifier
	stepInstrument
}

func (c timedClassifier) Classify(ctx context.Context, query string) (domain.CategoryResult, error) {
	started := time.Now()
	result, err := c.next.Classify(ctx, query)
	c.observe("classify", started, err)
	return result, err
}

type timedSelector struct {
	next ports.DocumentSelector
	stepInstrument
}

func (s timedSelector) Select(ctx context.Context, query string, docs []domain.ReferenceDocument) (domain.DocumentSelection, error) {
	started := time.Now()
	selection, err := s.next.Select(ctx, query, docs)
	s.observe("select", started, err)
	return selection, err
}

type timedGenerator struct {
	next ports.AnswerGenerator
	stepInstrument
}

func (g timedGenerator) Generate(ctx context.Context, prompt string, attachment *domain.ReferenceDocument) (string, error) {
	started := time.Now()
	answer, err := g.next.Generate(ctx, prompt, attachment)
	g.observe("generate", started, err)
	return answer, err
}

// loggedQueue surfaces dropped events in the logs. The orchestrator treats
// publishing as best-effort and ignores the returned error.
type loggedQueue struct {
	next   ports.MessageQueue
	logger *slog.Logger
}

func (q loggedQueue) PublishConsultationCompleted(ctx context.Context, event domain.ConsultationEvent) error {
	err := q.next.PublishConsultationCompleted(ctx, event)
	if err != nil {
		q.logger.Warn("consultation_event_dropped",
			"consultation_id", event.ConsultationID,
			"mode", event.Mode,
			"error", err,
		)
	}
	return err
}

func (q loggedQueue) SubscribeCorpusReload(ctx context.Context, handler func(context.Context) error) error {
	return q.next.SubscribeCorpusReload(ctx, handler)
}
