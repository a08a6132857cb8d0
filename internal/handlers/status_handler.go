package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/scheduler"
)

// SchedulerStatus reports the state of the scheduled targets.
type SchedulerStatus interface {
	IsRunning() bool
	Statuses() []scheduler.TargetStatus
	TriggerTarget(name string) error
}

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	runner    interfaces.PipelineRunner
	scheduler SchedulerStatus
	logger    arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler. sched may be nil.
func NewStatusHandler(runner interfaces.PipelineRunner, sched SchedulerStatus, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		runner:    runner,
		scheduler: sched,
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := h.runner.Status()
	status.Version = common.GetVersion()
	WriteJSON(w, http.StatusOK, status)
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": common.AppName,
		"version": common.GetVersion(),
	})
}

// SchedulerHandler handles GET /api/scheduler
func (h *StatusHandler) SchedulerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if h.scheduler == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"running": false,
			"targets": []scheduler.TargetStatus{},
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"targets": h.scheduler.Statuses(),
	})
}

// TriggerHandler handles POST /api/scheduler/{name}/trigger. The target runs
// synchronously.
func (h *StatusHandler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if h.scheduler == nil {
		WriteError(w, http.StatusServiceUnavailable, "agendador desativado")
		return
	}

	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/scheduler/"), "/trigger")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "nome do alvo é obrigatório")
		return
	}

	known := false
	for _, st := range h.scheduler.Statuses() {
		if st.Name == name {
			known = true
			break
		}
	}
	if !known {
		WriteError(w, http.StatusNotFound, "alvo não encontrado: "+name)
		return
	}

	if err := h.scheduler.TriggerTarget(name); err != nil {
		h.logger.Warn().Err(err).Str("target", name).Msg("Scheduled target trigger failed")
		WriteStageError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "completed",
		"target": name,
	})
}
