// Package app wires configuration, storage, providers, services, and
// handlers into a runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/veritas/internal/common"
	"github.com/ternarybob/veritas/internal/eodhd"
	"github.com/ternarybob/veritas/internal/handlers"
	"github.com/ternarybob/veritas/internal/interfaces"
	"github.com/ternarybob/veritas/internal/services/consensus"
	"github.com/ternarybob/veritas/internal/services/enrichment"
	"github.com/ternarybob/veritas/internal/services/evaluation"
	"github.com/ternarybob/veritas/internal/services/llm"
	"github.com/ternarybob/veritas/internal/services/orchestrator"
	"github.com/ternarybob/veritas/internal/services/scheduler"
	"github.com/ternarybob/veritas/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// External providers
	MarketData  interfaces.MarketDataProvider
	LLMProvider interfaces.LLMProvider // nil when narratives are disabled

	// Core services
	EvaluationService   interfaces.EvaluationService
	ConsensusService    interfaces.ConsensusService
	OrchestratorService interfaces.OrchestratorService
	SchedulerService    interfaces.SchedulerService
	NewsService         *enrichment.NewsService
	FinancialService    *enrichment.FinancialService

	// HTTP handlers
	APIHandler            *handlers.APIHandler
	AnalystHandler        *handlers.AnalystHandler
	RecommendationHandler *handlers.RecommendationHandler
	ConsensusHandler      *handlers.ConsensusHandler
	EvaluateHandler       *handlers.EvaluateHandler
	UpdateHandler         *handlers.UpdateHandler
	SchedulerHandler      *handlers.SchedulerHandler
	StatusHandler         *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.initProviders()
	app.initServices()
	app.initHandlers()

	if err := app.registerJobs(); err != nil {
		return nil, fmt.Errorf("failed to register scheduled jobs: %w", err)
	}

	logger.Info().
		Bool("scheduler_enabled", cfg.Scheduler.Enabled).
		Bool("llm_narrative", cfg.Orchestrator.LLMNarrative).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initProviders sets up the EODHD market data client and, when narratives are
// enabled, the LLM provider. A missing LLM key degrades to no narratives
// rather than failing startup.
func (a *App) initProviders() {
	opts := []eodhd.ClientOption{eodhd.WithLogger(a.Logger)}
	if a.Config.EODHD.BaseURL != "" {
		opts = append(opts, eodhd.WithBaseURL(a.Config.EODHD.BaseURL))
	}
	if a.Config.EODHD.RateLimit > 0 {
		opts = append(opts, eodhd.WithRateLimit(a.Config.EODHD.RateLimit))
	}
	client := eodhd.NewClient(a.Config.EODHD.APIKey, opts...)
	a.MarketData = eodhd.NewProvider(client)

	if a.Config.Orchestrator.LLMNarrative {
		provider, err := llm.NewProvider(context.Background(), a.Config, a.Logger)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("LLM provider unavailable, news narratives disabled")
		} else {
			a.LLMProvider = provider
		}
	}
}

// initServices wires the domain services
func (a *App) initServices() {
	a.EvaluationService = evaluation.NewService(a.StorageManager, a.MarketData, a.Config, a.Logger)
	a.ConsensusService = consensus.NewService(a.StorageManager, a.Logger)

	a.NewsService = enrichment.NewNewsService(
		a.MarketData, a.StorageManager.SnapshotStorage(), a.LLMProvider, &a.Config.Orchestrator, a.Logger)
	a.FinancialService = enrichment.NewFinancialService(
		a.MarketData, a.StorageManager.SnapshotStorage(), &a.Config.Orchestrator, a.Logger)

	a.OrchestratorService = orchestrator.NewService(
		a.NewsService, a.FinancialService,
		a.EvaluationService, a.ConsensusService,
		a.StorageManager.TickerStatusStorage(),
		&a.Config.Orchestrator, a.Logger)

	a.SchedulerService = scheduler.NewService(a.Logger)
}

// initHandlers wires the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.AnalystHandler = handlers.NewAnalystHandler(a.StorageManager.AnalystStorage(), a.Logger)
	a.RecommendationHandler = handlers.NewRecommendationHandler(
		a.StorageManager.RecommendationStorage(), a.StorageManager.TickerStatusStorage(), a.Logger)
	a.ConsensusHandler = handlers.NewConsensusHandler(a.ConsensusService, a.StorageManager.ConsensusStorage(), a.Logger)
	a.EvaluateHandler = handlers.NewEvaluateHandler(a.EvaluationService, a.Logger)
	a.UpdateHandler = handlers.NewUpdateHandler(a.OrchestratorService, a.StorageManager.TickerStatusStorage(), a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.StorageManager, a.SchedulerService, a.Logger)
}

// registerJobs registers the recurring cycles with the scheduler
func (a *App) registerJobs() error {
	if err := a.SchedulerService.RegisterJob(
		"smart_update",
		a.Config.Scheduler.SmartUpdateCron,
		"Refresh stale active tickers",
		func() error {
			_, err := a.OrchestratorService.UpdateSmart(context.Background(), nil)
			return err
		},
	); err != nil {
		return err
	}

	if err := a.SchedulerService.RegisterJob(
		"evaluation_sweep",
		a.Config.Scheduler.EvaluationCron,
		"Resolve due recommendations and rescore analysts",
		func() error {
			_, err := a.EvaluationService.RunSweep(context.Background())
			return err
		},
	); err != nil {
		return err
	}

	return nil
}

// StartScheduler starts the cron scheduler when enabled, optionally kicking
// off an immediate smart cycle.
func (a *App) StartScheduler() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler disabled by configuration")
		return nil
	}

	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if a.Config.Scheduler.SmartUpdateOnStart {
		if err := a.SchedulerService.TriggerJobNow("smart_update"); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to trigger startup smart cycle")
		}
	}

	return nil
}

// Close shuts down the scheduler and storage
func (a *App) Close() error {
	if a.SchedulerService != nil && a.SchedulerService.IsRunning() {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shut down")
	return nil
}
