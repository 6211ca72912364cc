package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/derma-consult/internal/config"
	"github.com/kirillkom/derma-consult/internal/core/ports"
	"github.com/kirillkom/derma-consult/internal/core/usecase"
	"github.com/kirillkom/derma-consult/internal/format"
	"github.com/kirillkom/derma-consult/internal/infrastructure/corpus"
	"github.com/kirillkom/derma-consult/internal/infrastructure/directory"
	"github.com/kirillkom/derma-consult/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/derma-consult/internal/infrastructure/queue/nats"
	"github.com/kirillkom/derma-consult/internal/infrastructure/resilience"
	"github.com/kirillkom/derma-consult/internal/observability/logging"
	"github.com/kirillkom/derma-consult/internal/observability/metrics"
	"github.com/kirillkom/derma-consult/internal/prompt"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.HTTPServerMetrics

	Corpus    ports.CorpusManager
	Queue     ports.MessageQueue
	ConsultUC ports.ConsultationService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	return NewWithLogger(ctx, cfg, logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel))
}

// NewWithLogger exists for entrypoints that cannot log to stdout; the MCP
// server owns stdout as its protocol channel.
func NewWithLogger(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewJSONLogger(cfg.ServiceName, cfg.LogLevel)
	}
	slog.SetDefault(logger)

	m := metrics.NewHTTPServerMetrics(cfg.ServiceName)

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: cfg.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.RetryMaxBackoff,
		RetryMultiplier:     cfg.RetryMultiplier,
		BreakerEnabled:      true,
		BreakerMinRequests:  uint32(cfg.BreakerFailureThreshold),
		BreakerOpenTimeout:  cfg.BreakerCooldown,
		OnRetry: func(operation string) {
			m.RecordProviderRetry(cfg.ServiceName, operation)
		},
	})

	client, err := gemini.New(ctx, gemini.Config{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Temperature:     cfg.GenTemperature,
		MaxOutputTokens: cfg.GenMaxOutputTokens,
		RPS:             cfg.GeminiRPS,
		Burst:           cfg.GeminiBurst,
	}, executor)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}

	summaries, err := corpus.NewSummaryRegistry(cfg.CorpusSummariesPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load corpus summaries: %w", err)
	}

	corpusSvc := corpus.NewService(cfg.CorpusDir, gemini.NewUploader(client), summaries, logger)
	count, err := corpusSvc.Sync(ctx)
	if err != nil {
		logger.Warn("initial_corpus_sync_failed", "dir", cfg.CorpusDir, "error", err)
	}
	m.SetCorpusDocuments(count)
	logger.Info("corpus_synced", "documents", count, "dir", cfg.CorpusDir)

	template, err := prompt.Load(cfg.PromptTemplatePath, logger)
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}

	var queue ports.MessageQueue
	var natsQueue *nats.Queue
	if cfg.Messaging() {
		natsQueue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSEventSubject, cfg.NATSReloadSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		queue = loggedQueue{next: natsQueue, logger: logger}
	}

	instrument := stepInstrument{metrics: m, logger: logger, service: cfg.ServiceName}
	consultUC := usecase.NewConsultUseCase(
		timedClassifier{next: gemini.NewClassifier(client), stepInstrument: instrument},
		timedSelector{next: gemini.NewSelector(client), stepInstrument: instrument},
		timedGenerator{next: gemini.NewGenerator(client), stepInstrument: instrument},
		corpusSvc,
		directory.NewLoader(cfg.DirectoryPath, cfg.DirectoryMaxRows),
		template,
		format.NewFormatter(),
		queue,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,

		Corpus:    corpusSvc,
		Queue:     queue,
		ConsultUC: consultUC,

		closeFn: func() {
			if natsQueue != nil {
				natsQueue.Close()
			}
		},
	}, nil
}

// WatchCorpusReload consumes reload broadcasts until ctx is done. Returns
// immediately when messaging is not configured.
func (a *App) WatchCorpusReload(ctx context.Context) error {
	if a.Queue == nil {
		return nil
	}
	return a.Queue.SubscribeCorpusReload(ctx, func(handlerCtx context.Context) error {
		reloadCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		count, err := a.Corpus.Reload(reloadCtx)
		if err != nil {
			return err
		}
		a.Metrics.SetCorpusDocuments(count)
		a.Logger.Info("corpus_reloaded", "documents", count)
		return nil
	})
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
