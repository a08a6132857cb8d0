// Package analysis derives financial indicators and insight statements from a
// Pix summary and the market context bundle.
package analysis

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

const (
	invalidSummaryMessage = "Dados Pix inválidos ou ausentes"
	correlationInsight    = "Dados correlacionados com indicadores macroeconômicos"
)

var baseRecommendations = []string{
	"Monitorar tendência de crescimento mensal",
	"Comparar com indicadores nacionais",
	"Avaliar oportunidades de mercado na região",
}

// Service implements the financial analysis stage.
type Service struct {
	logger arbor.ILogger
}

var _ interfaces.FinancialAnalyzer = (*Service)(nil)

// NewService creates a new analysis service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Analyze derives the key indicators and insights. An error-shaped or missing
// summary short-circuits to an upstream error with no partial derivation.
func (s *Service) Analyze(ctx context.Context, summary *models.PixSummary, bundle *models.MarketBundle) (*models.Analysis, error) {
	if !summary.OK() {
		return nil, models.NewError(models.ErrUpstream, models.StageAnalysis, invalidSummaryMessage)
	}

	totals := summary.Totals
	period := summary.Period.String()

	result := &models.Analysis{
		Location: summary.Location,
		Period:   summary.Period,
		KeyIndicators: models.KeyIndicators{
			Volume:        totals.TotalCount,
			TotalValue:    totals.TotalValue,
			AverageTicket: models.NewAverageTicket(totals.TotalValue, totals.TotalCount),
		},
		Insights: []string{
			fmt.Sprintf("Análise de %s no período %s", summary.Location, period),
			"Crescimento observado no volume de transações Pix",
			"Indicadores sugerem adoção crescente de pagamentos digitais",
		},
		Recommendations: append([]string(nil), baseRecommendations...),
		Narrative: fmt.Sprintf(
			"Análise dos dados Pix para %s revela padrões importantes de adoção de pagamentos digitais. "+
				"Os indicadores sugerem uma tendência de crescimento consistente com o cenário nacional.",
			summary.Location),
	}

	if bundle != nil {
		result.MarketContext = bundle.Clone()
		result.Insights = append(result.Insights, correlationInsight)
	}

	if s.logger != nil {
		s.logger.Debug().
			Str("location", result.Location).
			Str("period", period).
			Str("ticket", result.KeyIndicators.AverageTicket.String()).
			Int("insights", len(result.Insights)).
			Msg("Financial analysis derived")
	}

	return result, nil
}
