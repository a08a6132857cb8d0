// Package pipeline runs the four analysis stages in order and exposes
// single-stage runs for diagnostics.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// ReadyStatus is reported by Status when every stage is wired.
const ReadyStatus = "Pronto para execução"

// Defaults fill in arguments the caller left empty.
type Defaults struct {
	Location      string
	Kind          models.LocationKind
	Period        string
	Keywords      string // full pipeline runs
	StageKeywords string // single market stage runs
	MarketLimit   int
}

// DefaultsFromConfig maps the pipeline and market config sections.
func DefaultsFromConfig(p common.PipelineConfig, m common.MarketConfig) Defaults {
	kind, err := models.ParseLocationKind(p.DefaultKind)
	if err != nil {
		kind = models.LocationMunicipality
	}
	return Defaults{
		Location:      p.DefaultLocation,
		Kind:          kind,
		Period:        p.DefaultPeriod,
		Keywords:      p.DefaultKeywords,
		StageKeywords: p.DefaultStageKeywords,
		MarketLimit:   m.Limit,
	}
}

// Orchestrator implements interfaces.PipelineRunner
type Orchestrator struct {
	pix      interfaces.PixDataClient
	market   interfaces.MarketProvider
	analyzer interfaces.FinancialAnalyzer
	reports  interfaces.ReportAssembler
	narrator *narration
	defaults Defaults
	validate *validator.Validate
	logger   arbor.ILogger
	now      func() time.Time

	// mu serializes runs; no two runs overlap.
	mu sync.Mutex
}

var _ interfaces.PipelineRunner = (*Orchestrator)(nil)

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithDefaults replaces the built-in defaults.
func WithDefaults(d Defaults) Option {
	return func(o *Orchestrator) {
		o.defaults = d
	}
}

// WithNarrator enables per-stage commentary. templatesDir may hold prompt overrides.
func WithNarrator(n interfaces.Narrator, templatesDir string) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.narrator = &narration{narrator: n, templatesDir: templatesDir}
		}
	}
}

// WithClock overrides the run start time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator wires the four stages.
func NewOrchestrator(
	pix interfaces.PixDataClient,
	market interfaces.MarketProvider,
	analyzer interfaces.FinancialAnalyzer,
	reports interfaces.ReportAssembler,
	logger arbor.ILogger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = common.GetLogger()
	}
	cfg := common.NewDefaultConfig()
	o := &Orchestrator{
		pix:      pix,
		market:   market,
		analyzer: analyzer,
		reports:  reports,
		defaults: DefaultsFromConfig(cfg.Pipeline, cfg.Market),
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.narrator != nil {
		o.narrator.logger = logger
	}
	return o
}

// Run executes pix → market → analysis → report. Not-found and upstream
// stage errors are recorded on the result and the run continues; any other
// stage error or a panic aborts the run with a single error and no result.
func (o *Orchestrator) Run(ctx context.Context, req models.PipelineRequest) (result *models.PipelineResult, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Str("stack", common.GetStackTrace()).Msg("Pipeline run panicked")
			result = nil
			err = models.NewError(models.ErrFatal, "", fmt.Sprintf("Erro na execução do pipeline: %v", r))
		}
	}()

	req = o.applyRunDefaults(req)
	if err := o.validateRequest(req); err != nil {
		return nil, err
	}

	// Validated above; parse errors are impossible here.
	period, _ := models.ParsePeriod(req.Period)
	location := models.Location{Name: req.Location, Kind: req.Kind}

	started := o.now()
	result = &models.PipelineResult{
		RunID:     common.NewRunID(),
		Location:  location,
		Period:    period,
		Keywords:  req.Keywords,
		StartedAt: started,
	}

	log := o.logger.WithCorrelationId(result.RunID)
	log.Info().
		Str("location", location.Name).
		Str("kind", location.Kind.String()).
		Str("period", period.String()).
		Msg("Pipeline run started")

	summary, err := o.pix.FetchSummary(ctx, location, period)
	if err != nil {
		if result.PixError, err = recoverable(err, models.StagePix); err != nil {
			return nil, o.abort(log, err)
		}
		log.Warn().Str("kind", string(result.PixError.Kind)).Msg(result.PixError.Message)
	}
	result.Summary = summary

	bundle, err := o.market.Bundle(ctx, req.Keywords, o.defaults.MarketLimit)
	if err != nil {
		return nil, o.abort(log, models.AsError(err).WithStage(models.StageMarket))
	}
	result.Market = bundle

	analysis, err := o.analyzer.Analyze(ctx, summary, bundle)
	if err != nil {
		if result.AnalysisError, err = recoverable(err, models.StageAnalysis); err != nil {
			return nil, o.abort(log, err)
		}
		if result.AnalysisError.Cause == nil && result.PixError != nil {
			result.AnalysisError.Cause = result.PixError
		}
		log.Warn().Str("kind", string(result.AnalysisError.Kind)).Msg(result.AnalysisError.Message)
	}
	result.Analysis = analysis

	report, err := o.reports.Assemble(ctx, location, period, summary, bundle, analysis)
	if err != nil {
		return nil, o.abort(log, models.AsError(err).WithStage(models.StageReport))
	}
	result.Report = report

	if o.narrator != nil {
		result.Commentary = o.narrator.commentary(ctx, result)
	}

	result.Duration = o.now().Sub(started)
	log.Info().
		Dur("duration", result.Duration).
		Bool("pix_ok", result.PixError == nil).
		Bool("analysis_ok", result.AnalysisError == nil).
		Msg("Pipeline run completed")

	return result, nil
}

// recoverable returns the stage error to record on the result, or a non-nil
// second value when the error must abort the run.
func recoverable(err error, stage models.StageName) (*models.Error, error) {
	e := models.AsError(err)
	if e.Stage == "" {
		e = e.WithStage(stage)
	}
	switch e.Kind {
	case models.ErrNotFound, models.ErrUpstream:
		return e, nil
	}
	return nil, e
}

func (o *Orchestrator) abort(log arbor.ILogger, err error) error {
	e := models.AsError(err)
	log.Error().
		Str("kind", string(e.Kind)).
		Str("stage", e.Stage.String()).
		Err(e).
		Msg("Pipeline run aborted")
	return e
}

func (o *Orchestrator) applyRunDefaults(req models.PipelineRequest) models.PipelineRequest {
	if req.Location == "" {
		req.Location = o.defaults.Location
	}
	req.Location = strings.TrimSpace(req.Location)

	if req.Kind == "" {
		req.Kind = o.defaults.Kind
	} else if kind, err := models.ParseLocationKind(string(req.Kind)); err == nil {
		req.Kind = kind
	}

	if req.Period == "" {
		req.Period = o.defaults.Period
	}
	req.Period = strings.TrimSpace(req.Period)

	if req.Keywords == "" {
		req.Keywords = o.defaults.Keywords
	}
	return req
}

// Status reports the four stage agents.
func (o *Orchestrator) Status() models.AgentsStatus {
	agents := []models.AgentStatus{
		{Stage: models.StagePix, Name: "pix_agent", Description: "Ativo - Especialista em dados Pix BCB"},
		{Stage: models.StageMarket, Name: "market_researcher", Description: "Ativo - Pesquisador de mercado financeiro"},
		{Stage: models.StageAnalysis, Name: "financial_analyst", Description: "Ativo - Analista de tendências"},
		{Stage: models.StageReport, Name: "executive_writer", Description: "Ativo - Redator de relatórios executivos"},
	}
	return models.AgentsStatus{
		Total:   len(agents),
		Agents:  agents,
		Status:  ReadyStatus,
		Version: common.GetVersion(),
	}
}
