package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/bcb"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/analysis"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/market"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/report"
)

// bcbServer serves the given records for every request.
func bcbServer(t *testing.T, records ...map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if records == nil {
			records = []map[string]interface{}{}
		}
		assert.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{"value": records}))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pixRecord(municipio, vlPF, qtPF, vlPJ, qtPJ string) map[string]interface{} {
	return map[string]interface{}{
		"Municipio":    municipio,
		"Estado":       "SANTA CATARINA",
		"AnoMes":       "202506",
		"VL_PagadorPF": json.Number(vlPF),
		"QT_PagadorPF": json.Number(qtPF),
		"VL_PagadorPJ": json.Number(vlPJ),
		"QT_PagadorPJ": json.Number(qtPJ),
	}
}

func newOrchestrator(pix interfaces.PixDataClient, opts ...Option) *Orchestrator {
	logger := arbor.NewLogger()
	return NewOrchestrator(
		pix,
		market.NewService(nil, logger),
		analysis.NewService(logger),
		report.NewService(logger),
		logger,
		opts...,
	)
}

func newBCBOrchestrator(baseURL string, clientOpts ...bcb.ClientOption) *Orchestrator {
	clientOpts = append([]bcb.ClientOption{bcb.WithBaseURL(baseURL), bcb.WithLogger(arbor.NewLogger())}, clientOpts...)
	return newOrchestrator(bcb.NewClient(clientOpts...))
}

// stubPix returns a canned summary or error, or panics when panicValue is set.
type stubPix struct {
	summary    *models.PixSummary
	err        error
	panicValue interface{}
	calls      int
}

func (s *stubPix) FetchSummary(ctx context.Context, location models.Location, period models.Period) (*models.PixSummary, error) {
	s.calls++
	if s.panicValue != nil {
		panic(s.panicValue)
	}
	return s.summary, s.err
}

type stubNarrator struct {
	mu       sync.Mutex
	requests []interfaces.NarrationRequest
	failOn   string
}

func (s *stubNarrator) Narrate(ctx context.Context, req interfaces.NarrationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.failOn != "" && strings.Contains(req.Role, s.failOn) {
		return "", errors.New("provider unavailable")
	}
	return "  comentário  ", nil
}

func TestRun_NoMatchingRecords(t *testing.T) {
	srv := bcbServer(t, pixRecord("FLORIANOPOLIS", "10", "1", "0", "0"))
	o := newBCBOrchestrator(srv.URL)

	result, err := o.Run(context.Background(), models.PipelineRequest{
		Location: "Criciúma",
		Kind:     models.LocationMunicipality,
		Period:   "2025-06",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Nil(t, result.Summary)
	require.NotNil(t, result.PixError)
	assert.Equal(t, models.ErrNotFound, result.PixError.Kind)
	assert.Contains(t, result.PixError.Message, "Nenhum dado encontrado para Criciúma em 2025-06")

	require.NotNil(t, result.AnalysisError)
	assert.Equal(t, models.ErrUpstream, result.AnalysisError.Kind)
	assert.ErrorIs(t, result.AnalysisError, result.PixError)
	assert.Nil(t, result.Analysis)

	require.NotNil(t, result.Report)
	assert.Empty(t, result.Report.Sections[models.SectionPixPanorama].Indicators)
	assert.False(t, result.Report.HasSection(models.SectionStrategicAnalysis))
	assert.NotEmpty(t, result.Market.Items)
}

func TestRun_SourceTimeoutDegradesToNotFound(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	o := newBCBOrchestrator(srv.URL, bcb.WithTimeout(50*time.Millisecond))

	result, err := o.Run(context.Background(), models.PipelineRequest{Location: "Criciúma", Period: "2025-06"})
	require.NoError(t, err)

	require.NotNil(t, result.PixError)
	assert.Equal(t, models.ErrNotFound, result.PixError.Kind)
	assert.Contains(t, result.PixError.Message, "Tente períodos passados")
	assert.NotNil(t, result.Report)
}

func TestRun_AverageTicket(t *testing.T) {
	srv := bcbServer(t, pixRecord("CRICIUMA", "100.0", "10", "0.0", "0"))
	o := newBCBOrchestrator(srv.URL)

	result, err := o.Run(context.Background(), models.PipelineRequest{Location: "Criciúma", Period: "2025-06"})
	require.NoError(t, err)

	require.Nil(t, result.PixError)
	require.NotNil(t, result.Analysis)
	ticket := result.Analysis.KeyIndicators.AverageTicket
	require.True(t, ticket.Defined)
	assert.True(t, ticket.Value.Equal(decimal.NewFromInt(10)))

	assert.True(t, result.Report.HasSection(models.SectionStrategicAnalysis))
	assert.Equal(t, "100.00", result.Report.Sections[models.SectionPixPanorama].Indicators["valor_total_geral"])
	assert.Regexp(t, `^run_`, result.RunID)
	assert.Equal(t, "pagamentos digitais fintech pix", result.Keywords)
}

func TestRun_EachRunOwnsItsOutputs(t *testing.T) {
	srv := bcbServer(t, pixRecord("CRICIUMA", "100", "10", "0", "0"))
	o := newBCBOrchestrator(srv.URL)

	first, err := o.Run(context.Background(), models.PipelineRequest{})
	require.NoError(t, err)
	second, err := o.Run(context.Background(), models.PipelineRequest{})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.NotSame(t, first.Summary, second.Summary)
	first.Market.Indicators["selic"] = "changed"
	assert.NotEqual(t, "changed", second.Market.Indicators["selic"])
}

func TestRun_InvalidInput(t *testing.T) {
	pix := &stubPix{}
	o := newOrchestrator(pix)

	tests := []struct {
		name string
		req  models.PipelineRequest
		want string
	}{
		{name: "bad period", req: models.PipelineRequest{Period: "2025/06"}, want: "período inválido"},
		{name: "month out of range", req: models.PipelineRequest{Period: "2025-13"}, want: "período inválido"},
		{name: "bad kind", req: models.PipelineRequest{Kind: "pais"}, want: "Tipo de localização inválido: pais"},
		{name: "blank location", req: models.PipelineRequest{Location: "   "}, want: "localização é obrigatória"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := o.Run(context.Background(), tt.req)
			assert.Nil(t, result)
			require.True(t, models.IsKind(err, models.ErrInvalidInput), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Zero(t, pix.calls, "no stage runs on invalid input")
}

func TestRun_KindAliases(t *testing.T) {
	pix := &stubPix{err: models.NewError(models.ErrNotFound, models.StagePix, "nada")}
	o := newOrchestrator(pix)

	result, err := o.Run(context.Background(), models.PipelineRequest{Location: "SP", Kind: "estado", Period: "2025-01"})
	require.NoError(t, err)
	assert.Equal(t, models.LocationState, result.Location.Kind)
}

func TestRun_FatalBoundary(t *testing.T) {
	t.Run("panic", func(t *testing.T) {
		o := newOrchestrator(&stubPix{panicValue: "boom"})

		result, err := o.Run(context.Background(), models.PipelineRequest{})
		assert.Nil(t, result)
		require.True(t, models.IsKind(err, models.ErrFatal))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("unexpected error", func(t *testing.T) {
		o := newOrchestrator(&stubPix{err: errors.New("disk on fire")})

		result, err := o.Run(context.Background(), models.PipelineRequest{})
		assert.Nil(t, result)
		require.True(t, models.IsKind(err, models.ErrFatal))
		assert.Contains(t, err.Error(), "disk on fire")
	})

	t.Run("nil logger", func(t *testing.T) {
		logger := arbor.NewLogger()
		o := NewOrchestrator(
			&stubPix{panicValue: "boom"},
			market.NewService(nil, logger),
			analysis.NewService(logger),
			report.NewService(logger),
			nil,
		)

		var (
			result *models.PipelineResult
			err    error
		)
		require.NotPanics(t, func() {
			result, err = o.Run(context.Background(), models.PipelineRequest{})
		})
		assert.Nil(t, result)
		assert.True(t, models.IsKind(err, models.ErrFatal))

		require.NotPanics(t, func() {
			_, err = o.RunStage(context.Background(), "pix", models.StageArgs{})
		})
		assert.True(t, models.IsKind(err, models.ErrFatal))
	})

	t.Run("recovers for the next run", func(t *testing.T) {
		pix := &stubPix{panicValue: "boom"}
		o := newOrchestrator(pix)
		_, _ = o.Run(context.Background(), models.PipelineRequest{})

		pix.panicValue = nil
		pix.err = models.NewError(models.ErrNotFound, models.StagePix, "nada")
		result, err := o.Run(context.Background(), models.PipelineRequest{})
		require.NoError(t, err)
		assert.NotNil(t, result.Report)
	})
}

func TestRun_Commentary(t *testing.T) {
	srv := bcbServer(t, pixRecord("CRICIUMA", "100", "10", "0", "0"))
	narrator := &stubNarrator{failOn: "Pesquisador"}
	logger := arbor.NewLogger()
	o := NewOrchestrator(
		bcb.NewClient(bcb.WithBaseURL(srv.URL), bcb.WithLogger(logger)),
		market.NewService(nil, logger),
		analysis.NewService(logger),
		report.NewService(logger),
		logger,
		WithNarrator(narrator, ""),
	)

	result, err := o.Run(context.Background(), models.PipelineRequest{})
	require.NoError(t, err)

	assert.Len(t, narrator.requests, 4)
	assert.Equal(t, "comentário", result.Commentary[models.StagePix], "commentary is trimmed")
	assert.NotContains(t, result.Commentary, models.StageMarket, "narrator failures are skipped")
	assert.Contains(t, result.Commentary, models.StageReport)
	assert.Contains(t, narrator.requests[0].Task, "Criciúma")
	assert.Contains(t, narrator.requests[0].Task, "total_value")
}

func TestStatus(t *testing.T) {
	status := newOrchestrator(&stubPix{}).Status()

	assert.Equal(t, 4, status.Total)
	assert.Equal(t, ReadyStatus, status.Status)
	require.Len(t, status.Agents, 4)
	assert.Equal(t, "pix_agent", status.Agents[0].Name)
	assert.Equal(t, "Ativo - Especialista em dados Pix BCB", status.Agents[0].Description)
	assert.Equal(t, "executive_writer", status.Agents[3].Name)
}
