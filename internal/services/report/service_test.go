package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

var (
	testLocation = models.Location{Name: "Criciúma", Kind: models.LocationMunicipality}
	testPeriod   = models.MustParsePeriod("2025-06")
)

func newTestService() *Service {
	return NewService(arbor.NewLogger(), WithClock(func() time.Time {
		return time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	}))
}

func successSummary() *models.PixSummary {
	return &models.PixSummary{
		Location: "Criciúma",
		Period:   testPeriod,
		Kind:     models.LocationMunicipality,
		Matched:  1,
		Totals:   models.NewPixTotals(decimal.NewFromInt(100), 10, decimal.NewFromInt(50), 5),
		Status:   models.SummarySuccess,
	}
}

func TestAssemble_FullInputs(t *testing.T) {
	svc := newTestService()
	bundle := &models.MarketBundle{Indicators: map[string]string{"selic": "10.75%"}}
	analysis := &models.Analysis{
		Insights:  []string{"insight"},
		Narrative: "narrativa",
		KeyIndicators: models.KeyIndicators{
			Volume:        15,
			TotalValue:    decimal.NewFromInt(150),
			AverageTicket: models.NewAverageTicket(decimal.NewFromInt(150), 15),
		},
	}

	report, err := svc.Assemble(context.Background(), testLocation, testPeriod, successSummary(), bundle, analysis)
	require.NoError(t, err)

	assert.Equal(t, Title, report.Title)
	assert.Equal(t, "03/07/2025", report.Date)
	assert.Equal(t, "Criciúma", report.Location)
	assert.Equal(t, testPeriod, report.Period)
	assert.Contains(t, report.ExecutiveSummary, "Criciúma no período de 2025-06")

	panorama := report.Sections[models.SectionPixPanorama]
	assert.Equal(t, "150.00", panorama.Indicators["valor_total_geral"])
	assert.Equal(t, "15", panorama.Indicators["quantidade_total_geral"])

	market := report.Sections[models.SectionMarketContext]
	assert.Equal(t, "10.75%", market.Indicators["selic"])
	market.Indicators["selic"] = "changed"
	assert.Equal(t, "10.75%", bundle.Indicators["selic"], "report must not share the bundle map")

	require.True(t, report.HasSection(models.SectionStrategicAnalysis))
	strategic := report.Sections[models.SectionStrategicAnalysis]
	assert.Equal(t, "narrativa", strategic.Body)
	assert.Equal(t, []string{"insight"}, strategic.Insights)
	assert.Equal(t, "10.00", strategic.KeyIndicators["ticket_medio"])

	assert.Len(t, report.Conclusions, 3)
	assert.Len(t, report.Recommendations, 4)
	assert.Equal(t, "Monitorar evolução mensal dos indicadores Pix", report.Recommendations[0])
}

func TestAssemble_MissingUpstream(t *testing.T) {
	svc := newTestService()

	report, err := svc.Assemble(context.Background(), testLocation, testPeriod, nil, nil, nil)
	require.NoError(t, err)

	require.True(t, report.HasSection(models.SectionPixPanorama))
	require.True(t, report.HasSection(models.SectionMarketContext))
	assert.Empty(t, report.Sections[models.SectionPixPanorama].Indicators)
	assert.NotNil(t, report.Sections[models.SectionMarketContext].Indicators)
	assert.Empty(t, report.Sections[models.SectionMarketContext].Indicators)
	assert.False(t, report.HasSection(models.SectionStrategicAnalysis))
}

func TestAssemble_StrategicSectionOnlyWithInsights(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		analysis *models.Analysis
		want     bool
	}{
		{name: "nil analysis", analysis: nil, want: false},
		{name: "no insights list", analysis: &models.Analysis{Narrative: "x"}, want: false},
		{name: "empty insights list", analysis: &models.Analysis{Insights: []string{}}, want: true},
		{name: "insights", analysis: &models.Analysis{Insights: []string{"a"}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Assemble(context.Background(), testLocation, testPeriod, successSummary(), nil, tt.analysis)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.HasSection(models.SectionStrategicAnalysis))
		})
	}
}

func TestAssemble_RecoversConstructionFault(t *testing.T) {
	svc := NewService(arbor.NewLogger(), WithClock(func() time.Time { panic("clock broken") }))

	report, err := svc.Assemble(context.Background(), testLocation, testPeriod, nil, nil, nil)
	assert.Nil(t, report)
	assert.True(t, models.IsKind(err, models.ErrFatal))
	assert.Contains(t, err.Error(), "clock broken")
}

func TestRenderHTML_PartialView(t *testing.T) {
	svc := newTestService()
	report, err := svc.Assemble(context.Background(), testLocation, testPeriod, successSummary(), nil, &models.Analysis{Insights: []string{"insight único"}})
	require.NoError(t, err)

	html, err := svc.RenderHTML(report)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Relatório de Inteligência de Mercado - Sistema Pix</title>")
	assert.Contains(t, html, "03/07/2025")
	assert.Contains(t, html, "2025-06")
	assert.Contains(t, html, "Resumo Executivo")
	assert.NotContains(t, html, "insight único")
	assert.NotContains(t, html, "Panorama do Sistema Pix")

	_, err = svc.RenderHTML(nil)
	assert.True(t, models.IsKind(err, models.ErrInvalidInput))
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	svc := newTestService()
	report, err := svc.Assemble(context.Background(), models.Location{Name: "<script>", Kind: models.LocationMunicipality}, testPeriod, nil, nil, nil)
	require.NoError(t, err)

	html, err := svc.RenderHTML(report)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderMarkdown(t *testing.T) {
	svc := newTestService()
	bundle := &models.MarketBundle{Indicators: map[string]string{"selic": "10.75%"}}
	report, err := svc.Assemble(context.Background(), testLocation, testPeriod, successSummary(), bundle, &models.Analysis{Insights: []string{"insight"}})
	require.NoError(t, err)

	md := svc.RenderMarkdown(report)

	assert.True(t, strings.HasPrefix(md, "# Relatório de Inteligência de Mercado - Sistema Pix"))
	assert.Contains(t, md, "## Panorama do Sistema Pix")
	assert.Contains(t, md, "| valor_total_geral | 150.00 |")
	assert.Contains(t, md, "| selic | 10.75% |")
	assert.Contains(t, md, "### Insights")
	assert.Contains(t, md, "1. Monitorar evolução mensal dos indicadores Pix")
	assert.Less(t, strings.Index(md, "Panorama"), strings.Index(md, "Contexto de Mercado"))
	assert.Empty(t, svc.RenderMarkdown(nil))
}
