package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Dashboard
	mux.HandleFunc("/", s.app.PageHandler.ServePage("index.html"))

	// API routes - Pipeline
	mux.HandleFunc("/api/pipeline/run", s.app.PipelineHandler.RunHandler)     // POST - full run
	mux.HandleFunc("/api/pipeline/stage", s.app.PipelineHandler.StageHandler) // POST - single stage
	mux.HandleFunc("/api/report", s.app.PipelineHandler.ReportHandler)        // GET - HTML render

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)

	// API routes - Scheduler
	mux.HandleFunc("/api/scheduler", s.app.StatusHandler.SchedulerHandler) // GET - target statuses
	mux.HandleFunc("/api/scheduler/", s.handleSchedulerRoutes)             // POST /{name}/trigger

	return mux
}

// handleSchedulerRoutes routes /api/scheduler/{name}/... requests
func (s *Server) handleSchedulerRoutes(w http.ResponseWriter, r *http.Request) {
	routed := RouteByPathSuffix(w, r, "/api/scheduler/", []PathSuffixRouter{
		{Suffix: "/trigger", Handler: s.app.StatusHandler.TriggerHandler},
	})
	if !routed {
		RouteByMethod(w, r, MethodRouter{
			http.MethodGet: s.app.StatusHandler.SchedulerHandler,
		})
	}
}
