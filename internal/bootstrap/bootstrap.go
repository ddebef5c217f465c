package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/projectscope/estimation-service/internal/config"
	"github.com/projectscope/estimation-service/internal/core/history"
	"github.com/projectscope/estimation-service/internal/core/matching"
	"github.com/projectscope/estimation-service/internal/core/ports"
	"github.com/projectscope/estimation-service/internal/core/usecase"
	"github.com/projectscope/estimation-service/internal/infrastructure/llm/ollama"
	"github.com/projectscope/estimation-service/internal/infrastructure/queue/nats"
	"github.com/projectscope/estimation-service/internal/infrastructure/refdata"
	"github.com/projectscope/estimation-service/internal/infrastructure/repository/memory"
	"github.com/projectscope/estimation-service/internal/infrastructure/repository/postgres"
	"github.com/projectscope/estimation-service/internal/infrastructure/resilience"
	"github.com/projectscope/estimation-service/internal/observability/logging"
	"github.com/projectscope/estimation-service/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.AnalysisRepository
	SubmitUC  *usecase.SubmitAnalysisUseCase
	ProcessUC ports.AnalysisProcessor

	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	repo, closeRepo, err := newRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	workerMetrics := metrics.NewWorkerMetrics(service)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		QueueLagObserver:   workerMetrics.ObserveQueueLag,
	})
	if err != nil {
		closeRepo()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	// Model calls are never retried automatically: a rerun of a pipeline
	// stage costs minutes of model time, so transient failures bubble up
	// and fail the analysis instead. The breaker still sheds load when the
	// backend is down.
	modelExecutor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 1,
		BreakerEnabled:   true,
	})
	modelTimeout := time.Duration(cfg.ModelTimeoutSeconds) * time.Second
	model := ollama.New(
		cfg.OllamaURL,
		cfg.OllamaGenModel,
		ollama.WithExecutor(modelExecutor),
		ollama.WithHTTPTimeout(modelTimeout+10*time.Second),
	)

	loader := refdata.NewLoader(cfg.ProjectsDataPath, cfg.EmployeesDataPath, cfg.SkillsDataPath)
	snapshot, err := loader.Load(ctx)
	if err != nil {
		closeRepo()
		queue.Close()
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	slog.Info("reference_data_loaded",
		"projects", len(snapshot.Projects),
		"employees", len(snapshot.Employees),
	)

	historyIndex := history.NewIndex(snapshot)

	var matcherOpts []matching.Option
	if cfg.RoleKeywordsPath != "" {
		table, err := matching.LoadKeywordTable(cfg.RoleKeywordsPath)
		if err != nil {
			closeRepo()
			queue.Close()
			return nil, fmt.Errorf("load role keywords: %w", err)
		}
		matcherOpts = append(matcherOpts, matching.WithKeywordTable(table))
	}
	matcher := matching.NewMatcher(historyIndex.AvailableEmployees(), matcherOpts...)

	runner := usecase.NewStageProcessor(model, modelTimeout)
	submitUC := usecase.NewSubmitAnalysisUseCase(repo, queue)
	processUC := usecase.NewAnalyzeProjectUseCase(repo, runner, historyIndex, matcher, workerMetrics)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SubmitUC:  submitUC,
		ProcessUC: processUC,

		WorkerMetrics: workerMetrics,

		closeFn: func() {
			queue.Close()
			closeRepo()
		},
	}, nil
}

func newRepository(ctx context.Context, cfg config.Config) (ports.AnalysisRepository, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return memory.NewStore(), func() {}, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewAnalysisRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
