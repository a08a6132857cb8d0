package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/pipeline"
)

//go:embed pages/*.html
var pagesFS embed.FS

type PageHandler struct {
	logger    arbor.ILogger
	templates *template.Template
	runner    interfaces.PipelineRunner
	defaults  pipeline.Defaults
}

func NewPageHandler(runner interfaces.PipelineRunner, defaults pipeline.Defaults, logger arbor.ILogger) *PageHandler {
	return &PageHandler{
		logger:    logger,
		templates: template.Must(template.ParseFS(pagesFS, "pages/*.html")),
		runner:    runner,
		defaults:  defaults,
	}
}

// ServePage creates a handler function for serving a specific page template
func (h *PageHandler) ServePage(templateName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if !RequireMethod(w, r, http.MethodGet) {
			return
		}

		data := map[string]interface{}{
			"AppName":  common.AppName,
			"Version":  common.GetVersion(),
			"Status":   h.runner.Status(),
			"Defaults": h.defaults,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.templates.ExecuteTemplate(w, templateName, data); err != nil {
			h.logger.Error().
				Err(err).
				Str("template", templateName).
				Msg("Failed to render page")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
