package analysis

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

func newSummary(valuePF string, countPF int64, valuePJ string, countPJ int64) *models.PixSummary {
	return &models.PixSummary{
		Location: "Criciúma",
		Period:   models.MustParsePeriod("2025-06"),
		Kind:     models.LocationMunicipality,
		Matched:  1,
		Totals:   models.NewPixTotals(decimal.RequireFromString(valuePF), countPF, decimal.RequireFromString(valuePJ), countPJ),
		Status:   models.SummarySuccess,
	}
}

func TestAnalyze_AverageTicket(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	result, err := svc.Analyze(context.Background(), newSummary("100.0", 10, "0.0", 0), nil)
	require.NoError(t, err)

	ki := result.KeyIndicators
	assert.Equal(t, int64(10), ki.Volume)
	assert.True(t, ki.TotalValue.Equal(decimal.NewFromInt(100)))
	require.True(t, ki.AverageTicket.Defined)
	assert.True(t, ki.AverageTicket.Value.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "10.00", ki.Map()["ticket_medio"])
}

func TestAnalyze_ZeroCountUsesSentinel(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	result, err := svc.Analyze(context.Background(), newSummary("50", 0, "0", 0), nil)
	require.NoError(t, err)

	assert.False(t, result.KeyIndicators.AverageTicket.Defined)
	assert.Equal(t, models.NotAvailable, result.KeyIndicators.AverageTicket.String())
}

func TestAnalyze_Insights(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	summary := newSummary("10", 1, "0", 0)

	without, err := svc.Analyze(context.Background(), summary, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Análise de Criciúma no período 2025-06",
		"Crescimento observado no volume de transações Pix",
		"Indicadores sugerem adoção crescente de pagamentos digitais",
	}, without.Insights)
	assert.Nil(t, without.MarketContext)
	assert.Len(t, without.Recommendations, 3)
	assert.Contains(t, without.Narrative, "Criciúma")

	bundle := &models.MarketBundle{Indicators: map[string]string{"selic": "10.75%"}}
	with, err := svc.Analyze(context.Background(), summary, bundle)
	require.NoError(t, err)
	assert.Len(t, with.Insights, 4)
	assert.Equal(t, "Dados correlacionados com indicadores macroeconômicos", with.Insights[3])
	require.NotNil(t, with.MarketContext)
	assert.NotSame(t, bundle, with.MarketContext)
}

func TestAnalyze_PropagatesUpstreamError(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	inputs := map[string]*models.PixSummary{
		"nil summary":       nil,
		"not found status":  {Status: models.SummaryNotFound},
		"zero value status": {},
	}

	for name, summary := range inputs {
		t.Run(name, func(t *testing.T) {
			result, err := svc.Analyze(context.Background(), summary, &models.MarketBundle{})
			assert.Nil(t, result)
			assert.True(t, models.IsKind(err, models.ErrUpstream))
		})
	}
}

func TestGrowthMetrics(t *testing.T) {
	svc := NewService(nil)
	current := newSummary("10", 1, "0", 0)

	noHistory := svc.GrowthMetrics(current, nil)
	assert.Equal(t, models.GrowthMetrics{
		"crescimento": "Dados históricos não disponíveis",
		"tendência":   "Impossível calcular sem dados comparativos",
	}, noHistory)

	withHistory := svc.GrowthMetrics(current, newSummary("5", 1, "0", 0))
	assert.Equal(t, "8.5%", withHistory["crescimento_volume"])
	assert.Equal(t, "12.3%", withHistory["crescimento_valor"])
	assert.Equal(t, "3.8%", withHistory["variação_ticket_medio"])
	assert.Equal(t, "Cálculos baseados em dados simulados", withHistory["nota"])
}
