package handlers

import (
	"net/http"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// StageRequest is the body of POST /api/pipeline/stage.
type StageRequest struct {
	Stage string `json:"stage"`
	models.StageArgs
}

// PipelineHandler handles pipeline runs and the rendered report of the last run.
type PipelineHandler struct {
	runner  interfaces.PipelineRunner
	reports interfaces.ReportAssembler
	logger  arbor.ILogger

	mu   sync.RWMutex
	last *models.PipelineResult
}

// NewPipelineHandler creates a new PipelineHandler
func NewPipelineHandler(runner interfaces.PipelineRunner, reports interfaces.ReportAssembler, logger arbor.ILogger) *PipelineHandler {
	return &PipelineHandler{
		runner:  runner,
		reports: reports,
		logger:  logger,
	}
}

// RunHandler handles POST /api/pipeline/run
func (h *PipelineHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.PipelineRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteStageError(w, err)
		return
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Str("location", req.Location).Str("period", req.Period).Msg("Pipeline run failed")
		WriteStageError(w, err)
		return
	}

	h.mu.Lock()
	h.last = result
	h.mu.Unlock()

	WriteJSON(w, http.StatusOK, result)
}

// StageHandler handles POST /api/pipeline/stage
func (h *PipelineHandler) StageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req StageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteStageError(w, err)
		return
	}

	res, err := h.runner.RunStage(r.Context(), req.Stage, req.StageArgs)
	if err != nil {
		h.logger.Debug().Err(err).Str("stage", req.Stage).Msg("Stage run failed")
		WriteJSON(w, StatusForError(models.AsError(err)), res)
		return
	}

	WriteJSON(w, http.StatusOK, res)
}

// ReportHandler handles GET /api/report. With a location query parameter a
// new run is executed first; otherwise the report of the last run is rendered.
func (h *PipelineHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	if q.Get("location") != "" {
		req := models.PipelineRequest{
			Location: q.Get("location"),
			Kind:     models.LocationKind(q.Get("kind")),
			Period:   q.Get("period"),
			Keywords: q.Get("keywords"),
		}
		result, err := h.runner.Run(r.Context(), req)
		if err != nil {
			WriteStageError(w, err)
			return
		}
		h.mu.Lock()
		h.last = result
		h.mu.Unlock()
	}

	last := h.LastResult()
	if last == nil || last.Report == nil {
		WriteError(w, http.StatusNotFound, "nenhum relatório disponível")
		return
	}

	html, err := h.reports.RenderHTML(last.Report)
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", last.RunID).Msg("Failed to render report")
		WriteStageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// LastResult returns the most recent successful run, or nil.
func (h *PipelineHandler) LastResult() *models.PipelineResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}
