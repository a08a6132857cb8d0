package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/bcb"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/handlers"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/analysis"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/export"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/llm"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/market"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/pdf"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/pipeline"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/report"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/scheduler"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Stages
	PixClient       *bcb.Client
	MarketService   *market.Service
	AnalysisService *analysis.Service
	ReportService   *report.Service
	Orchestrator    *pipeline.Orchestrator

	// Supporting services
	PDFService       *pdf.Service
	ExportService    *export.Service
	LLMService       *llm.ProviderFactory // nil unless llm.enabled
	SchedulerService *scheduler.Service   // nil unless scheduler.enabled

	// HTTP handlers
	PipelineHandler *handlers.PipelineHandler
	StatusHandler   *handlers.StatusHandler
	PageHandler     *handlers.PageHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initScheduler(); err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Bool("llm_enabled", app.LLMService != nil).
		Bool("scheduler_enabled", app.SchedulerService != nil).
		Str("bcb_base_url", cfg.BCB.BaseURL).
		Msg("Application initialization complete")

	return app, nil
}

// initServices wires the four pipeline stages and the export chain
func (a *App) initServices() error {
	timeout, err := a.Config.BCB.TimeoutDuration()
	if err != nil {
		return err
	}

	a.PixClient = bcb.NewClient(
		bcb.WithBaseURL(a.Config.BCB.BaseURL),
		bcb.WithTimeout(timeout),
		bcb.WithPageSize(a.Config.BCB.PageSize),
		bcb.WithRateLimit(a.Config.BCB.RateLimit),
		bcb.WithLogger(a.Logger),
	)
	a.MarketService = market.NewService(a.Config.Market.Sources, a.Logger)
	a.AnalysisService = analysis.NewService(a.Logger)
	a.ReportService = report.NewService(a.Logger)
	a.Logger.Debug().Msg("Pipeline stages initialized")

	opts := []pipeline.Option{
		pipeline.WithDefaults(pipeline.DefaultsFromConfig(a.Config.Pipeline, a.Config.Market)),
	}

	if a.Config.LLM.Enabled {
		a.LLMService = llm.NewProviderFactory(&a.Config.Gemini, &a.Config.Claude, &a.Config.LLM, a.Logger)
		if a.Config.Pipeline.Commentary {
			opts = append(opts, pipeline.WithNarrator(a.LLMService, a.Config.Templates.Dir))
		}
		a.Logger.Info().
			Str("provider", string(a.Config.LLM.DefaultProvider)).
			Bool("commentary", a.Config.Pipeline.Commentary).
			Msg("LLM narrator initialized")
	}

	a.Orchestrator = pipeline.NewOrchestrator(
		a.PixClient,
		a.MarketService,
		a.AnalysisService,
		a.ReportService,
		a.Logger,
		opts...,
	)

	a.PDFService = pdf.NewService(a.Logger)
	a.ExportService = export.NewService(a.Config.Report.OutputDir, a.ReportService, a.PDFService, a.Logger)

	return nil
}

// initScheduler registers the configured targets. The cron loop only starts
// in serve mode via StartScheduler.
func (a *App) initScheduler() error {
	if !a.Config.Scheduler.Enabled {
		return nil
	}

	a.SchedulerService = scheduler.NewService(a.Orchestrator, a.ExportService, a.Config.Report.Formats, a.Logger)
	for _, target := range a.Config.Scheduler.Targets {
		if err := a.SchedulerService.RegisterTarget(target); err != nil {
			return fmt.Errorf("failed to register target %s: %w", target.Name, err)
		}
	}

	a.Logger.Info().Int("targets", len(a.Config.Scheduler.Targets)).Msg("Scheduler initialized")
	return nil
}

func (a *App) initHandlers() {
	a.PipelineHandler = handlers.NewPipelineHandler(a.Orchestrator, a.ReportService, a.Logger)
	a.PageHandler = handlers.NewPageHandler(a.Orchestrator, pipeline.DefaultsFromConfig(a.Config.Pipeline, a.Config.Market), a.Logger)

	// A nil *scheduler.Service must not reach the interface as a typed nil.
	if a.SchedulerService != nil {
		a.StatusHandler = handlers.NewStatusHandler(a.Orchestrator, a.SchedulerService, a.Logger)
	} else {
		a.StatusHandler = handlers.NewStatusHandler(a.Orchestrator, nil, a.Logger)
	}

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// StartScheduler starts the cron loop when the scheduler is enabled
func (a *App) StartScheduler() error {
	if a.SchedulerService == nil {
		return nil
	}
	return a.SchedulerService.Start()
}

// Close closes all application resources
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
