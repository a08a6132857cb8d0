// Package report assembles the executive report from the pipeline stage
// outputs and renders it for display and export.
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// Title is the fixed report title.
const Title = "Relatório de Inteligência de Mercado - Sistema Pix"

// dateLayout is dd/mm/yyyy.
const dateLayout = "02/01/2006"

// Conclusions and recommendations are canned text, not derived from the inputs.
// TODO: derive conclusions and recommendations from the key indicators instead of fixed text.
var (
	fixedConclusions = []string{
		"Sistema Pix mantém trajetória de crescimento consistente",
		"Adoção regional alinhada com tendências nacionais",
		"Oportunidades identificadas para expansão de serviços digitais",
	}
	fixedRecommendations = []string{
		"Monitorar evolução mensal dos indicadores Pix",
		"Desenvolver produtos focados em pagamentos instantâneos",
		"Acompanhar movimentação da concorrência no segmento",
		"Investir em soluções de pagamento para pequenos negócios",
	}
)

// Service implements the report assembly stage.
type Service struct {
	logger arbor.ILogger
	now    func() time.Time
}

var _ interfaces.ReportAssembler = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the generation date source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new report service
func NewService(logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assemble builds the report. Any nil input is treated as a failed upstream
// stage: the panorama and market sections are still emitted with empty
// indicators, and the strategic section only appears when analysis carries insights.
func (s *Service) Assemble(ctx context.Context, location models.Location, period models.Period, summary *models.PixSummary, bundle *models.MarketBundle, analysis *models.Analysis) (report *models.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = models.NewError(models.ErrFatal, models.StageReport, fmt.Sprintf("Erro na geração do relatório: %v", r))
			if s.logger != nil {
				s.logger.Error().Str("panic", fmt.Sprintf("%v", r)).Msg("Report assembly failed")
			}
		}
	}()

	report = &models.Report{
		Title:    Title,
		Date:     s.now().Format(dateLayout),
		Period:   period,
		Location: location.Name,
		ExecutiveSummary: fmt.Sprintf(
			"Este relatório apresenta uma análise abrangente dos dados do sistema Pix para %s no período de %s. "+
				"A análise combina dados oficiais do Banco Central com indicadores de mercado, "+
				"fornecendo insights estratégicos para tomada de decisão.",
			location.Name, period),
		Sections: map[string]models.Section{
			models.SectionPixPanorama:   panoramaSection(location, period, summary),
			models.SectionMarketContext: marketSection(bundle),
		},
		Conclusions:     append([]string(nil), fixedConclusions...),
		Recommendations: append([]string(nil), fixedRecommendations...),
	}

	if analysis.HasInsights() {
		report.Sections[models.SectionStrategicAnalysis] = models.Section{
			Title:         "Análise Estratégica",
			Body:          analysis.Narrative,
			Indicators:    map[string]string{},
			Insights:      append([]string{}, analysis.Insights...),
			KeyIndicators: analysis.KeyIndicators.Map(),
		}
	}

	if s.logger != nil {
		s.logger.Debug().
			Str("location", location.Name).
			Str("period", period.String()).
			Int("sections", len(report.Sections)).
			Msg("Report assembled")
	}

	return report, nil
}

func panoramaSection(location models.Location, period models.Period, summary *models.PixSummary) models.Section {
	indicators := map[string]string{}
	if summary.OK() {
		t := summary.Totals
		indicators = map[string]string{
			"valor_total_pessoa_fisica":   t.ValueIndividual.StringFixed(2),
			"quantidade_transacoes_pf":    strconv.FormatInt(t.CountIndividual, 10),
			"valor_total_pessoa_juridica": t.ValueLegal.StringFixed(2),
			"quantidade_transacoes_pj":    strconv.FormatInt(t.CountLegal, 10),
			"valor_total_geral":           t.TotalValue.StringFixed(2),
			"quantidade_total_geral":      strconv.FormatInt(t.TotalCount, 10),
		}
	}

	return models.Section{
		Title: "Panorama do Sistema Pix",
		Body: fmt.Sprintf("Localização: %s\nPeríodo: %s\n\n"+
			"Os dados coletados através da API oficial do Banco Central revelam o comportamento "+
			"transacional do sistema Pix na região analisada.", location.Name, period),
		Indicators: indicators,
	}
}

func marketSection(bundle *models.MarketBundle) models.Section {
	indicators := map[string]string{}
	if bundle != nil {
		indicators = models.CloneStringMap(bundle.Indicators)
	}

	return models.Section{
		Title: "Contexto de Mercado",
		Body: "O cenário macroeconômico brasileiro apresenta indicadores que influenciam " +
			"diretamente a adoção de pagamentos digitais.",
		Indicators: indicators,
	}
}
