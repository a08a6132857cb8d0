package interfaces

import (
	"context"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// PixDataClient produces the statistical summary of a location and period.
// A nil summary is always paired with a *models.Error.
type PixDataClient interface {
	FetchSummary(ctx context.Context, location models.Location, period models.Period) (*models.PixSummary, error)
}

// MarketProvider produces the market context bundle for a keyword string.
type MarketProvider interface {
	Bundle(ctx context.Context, keywords string, limit int) (*models.MarketBundle, error)
}

// FinancialAnalyzer derives indicators and insights from a summary and an optional bundle.
type FinancialAnalyzer interface {
	Analyze(ctx context.Context, summary *models.PixSummary, bundle *models.MarketBundle) (*models.Analysis, error)
	GrowthMetrics(current, previous *models.PixSummary) models.GrowthMetrics
}

// ReportAssembler builds the executive report from the upstream outputs.
// summary, bundle and analysis may each be nil when their stage failed.
type ReportAssembler interface {
	Assemble(ctx context.Context, location models.Location, period models.Period, summary *models.PixSummary, bundle *models.MarketBundle, analysis *models.Analysis) (*models.Report, error)
	RenderHTML(report *models.Report) (string, error)
	RenderMarkdown(report *models.Report) string
}

// PipelineRunner runs the full pipeline or a single stage.
type PipelineRunner interface {
	Run(ctx context.Context, req models.PipelineRequest) (*models.PipelineResult, error)
	RunStage(ctx context.Context, stage string, args models.StageArgs) (*models.StageResult, error)
	Status() models.AgentsStatus
}

// ReportExporter persists a pipeline result in one or more formats.
type ReportExporter interface {
	Export(result *models.PipelineResult, formats ...string) ([]string, error)
	ExportError(location, period string, runErr error, formats ...string) ([]string, error)
}
