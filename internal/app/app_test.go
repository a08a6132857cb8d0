package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/pipeline"
)

func TestNew_DefaultConfig(t *testing.T) {
	cfg := common.NewDefaultConfig()

	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Orchestrator)
	assert.NotNil(t, a.ExportService)
	assert.NotNil(t, a.PipelineHandler)
	assert.NotNil(t, a.StatusHandler)
	assert.NotNil(t, a.PageHandler)
	assert.Nil(t, a.LLMService)
	assert.Nil(t, a.SchedulerService)
	assert.NoError(t, a.StartScheduler())

	status := a.Orchestrator.Status()
	assert.Equal(t, pipeline.ReadyStatus, status.Status)
	assert.Equal(t, 4, status.Total)
}

func TestNew_SchedulerAndNarrator(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.LLM.Enabled = true
	cfg.Pipeline.Commentary = true
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Targets = []common.ScheduledTarget{
		{Name: "mensal", Schedule: "0 6 1 * *", Location: "Criciúma", Kind: "municipality"},
	}

	a, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)

	require.NotNil(t, a.LLMService)
	require.NotNil(t, a.SchedulerService)
	statuses := a.SchedulerService.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, "mensal", statuses[0].Name)

	require.NoError(t, a.StartScheduler())
	assert.True(t, a.SchedulerService.IsRunning())
	require.NoError(t, a.Close())
	assert.False(t, a.SchedulerService.IsRunning())
}

func TestNew_InvalidTarget(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Targets = []common.ScheduledTarget{{Name: "ruim", Schedule: "not cron", Location: "SC"}}

	_, err := New(cfg, arbor.NewLogger())
	assert.Error(t, err)
}

func TestNew_InvalidTimeout(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.BCB.Timeout = "forever"

	_, err := New(cfg, arbor.NewLogger())
	assert.Error(t, err)
}
