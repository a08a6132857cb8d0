package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

type stubRunner struct {
	mu       sync.Mutex
	requests []models.PipelineRequest
	err      error
	panics   bool
}

func (s *stubRunner) Run(ctx context.Context, req models.PipelineRequest) (*models.PipelineResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.panics {
		panic("runner exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.PipelineResult{RunID: "run_1", Location: models.Location{Name: req.Location}}, nil
}

func (s *stubRunner) RunStage(ctx context.Context, stage string, args models.StageArgs) (*models.StageResult, error) {
	return nil, nil
}

func (s *stubRunner) Status() models.AgentsStatus { return models.AgentsStatus{} }

type stubExporter struct {
	exported []string
	errored  []string
}

func (s *stubExporter) Export(result *models.PipelineResult, formats ...string) ([]string, error) {
	s.exported = append(s.exported, result.RunID)
	return []string{"relatorio.txt"}, nil
}

func (s *stubExporter) ExportError(location, period string, runErr error, formats ...string) ([]string, error) {
	s.errored = append(s.errored, period)
	return []string{"relatorio_erro.txt"}, nil
}

func newTestService(runner *stubRunner, exporter *stubExporter) *Service {
	s := NewService(runner, exporter, []string{"txt"}, arbor.NewLogger())
	s.now = func() time.Time { return time.Date(2025, 7, 15, 6, 0, 0, 0, time.UTC) }
	return s
}

func TestRegisterTarget_Validation(t *testing.T) {
	s := newTestService(&stubRunner{}, &stubExporter{})

	assert.Error(t, s.RegisterTarget(common.ScheduledTarget{Schedule: "0 6 1 * *"}))
	assert.Error(t, s.RegisterTarget(common.ScheduledTarget{Name: "a", Schedule: "monthly"}))
	assert.Error(t, s.RegisterTarget(common.ScheduledTarget{Name: "a", Schedule: "0 6 1 * *", Period: "2025-6"}))

	require.NoError(t, s.RegisterTarget(common.ScheduledTarget{Name: "a", Schedule: "0 6 1 * *", Location: "Criciúma"}))
	assert.ErrorContains(t, s.RegisterTarget(common.ScheduledTarget{Name: "a", Schedule: "0 6 1 * *"}), "already registered")
}

func TestTriggerTarget_RunsAndExports(t *testing.T) {
	runner := &stubRunner{}
	exporter := &stubExporter{}
	s := newTestService(runner, exporter)

	require.NoError(t, s.RegisterTarget(common.ScheduledTarget{
		Name:     "criciuma",
		Schedule: "0 6 1 * *",
		Location: "Criciúma",
		Kind:     "municipio",
		Keywords: "pix",
	}))

	require.NoError(t, s.TriggerTarget("criciuma"))

	require.Len(t, runner.requests, 1)
	req := runner.requests[0]
	assert.Equal(t, "2025-06", req.Period, "empty period uses the previous month")
	assert.Equal(t, models.LocationMunicipality, req.Kind)
	assert.Equal(t, []string{"run_1"}, exporter.exported)

	statuses := s.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "run_1", statuses[0].LastRunID)
	assert.Equal(t, []string{"relatorio.txt"}, statuses[0].LastFiles)
	assert.Empty(t, statuses[0].LastError)
	assert.NotNil(t, statuses[0].LastRun)
	assert.False(t, statuses[0].IsRunning)
}

func TestTriggerTarget_Failures(t *testing.T) {
	runner := &stubRunner{err: models.NewError(models.ErrFatal, "", "falhou")}
	exporter := &stubExporter{}
	s := newTestService(runner, exporter)
	require.NoError(t, s.RegisterTarget(common.ScheduledTarget{Name: "x", Schedule: "* * * * *", Location: "SP", Kind: "state", Period: "2025-01"}))

	err := s.TriggerTarget("x")
	assert.ErrorContains(t, err, "falhou")
	assert.Equal(t, []string{"2025-01"}, exporter.errored)
	assert.Equal(t, "falhou", s.Statuses()[0].LastError)

	runner.err = nil
	runner.panics = true
	err = s.TriggerTarget("x")
	assert.ErrorContains(t, err, "runner exploded")
	assert.False(t, s.Statuses()[0].IsRunning)

	assert.Error(t, s.TriggerTarget("missing"))
}

func TestStartStop(t *testing.T) {
	s := newTestService(&stubRunner{}, &stubExporter{})
	require.NoError(t, s.RegisterTarget(common.ScheduledTarget{Name: "a", Schedule: "0 6 1 * *"}))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.NotNil(t, s.Statuses()[0].NextRun)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

func TestPreviousMonth(t *testing.T) {
	assert.Equal(t, "2024-12", previousMonth(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-02", previousMonth(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)))
}

