package models

import "time"

// PipelineRequest holds the inputs of a full pipeline run.
type PipelineRequest struct {
	Location string       `json:"location" validate:"required"`
	Kind     LocationKind `json:"kind" validate:"required,location_kind"`
	Period   string       `json:"period" validate:"required,period"`
	Keywords string       `json:"keywords"`
}

// PipelineResult carries every stage output of a completed run.
// PixError and AnalysisError record recoverable stage errors; the run still
// produced a report.
type PipelineResult struct {
	RunID         string               `json:"run_id" yaml:"run_id"`
	Location      Location             `json:"location" yaml:"location"`
	Period        Period               `json:"period" yaml:"period"`
	Keywords      string               `json:"keywords" yaml:"keywords"`
	Summary       *PixSummary          `json:"pix,omitempty" yaml:"pix,omitempty"`
	PixError      *Error               `json:"pix_error,omitempty" yaml:"pix_error,omitempty"`
	Market        *MarketBundle        `json:"market,omitempty" yaml:"market,omitempty"`
	Analysis      *Analysis            `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	AnalysisError *Error               `json:"analysis_error,omitempty" yaml:"analysis_error,omitempty"`
	Report        *Report              `json:"report" yaml:"report"`
	Commentary    map[StageName]string `json:"commentary,omitempty" yaml:"commentary,omitempty"`
	StartedAt     time.Time            `json:"started_at" yaml:"started_at"`
	Duration      time.Duration        `json:"duration" yaml:"duration"`
}

// StageArgs are the caller-supplied arguments of a single-stage run.
// Zero values fall back to the stage defaults.
type StageArgs struct {
	Location string        `json:"location,omitempty"`
	Kind     LocationKind  `json:"kind,omitempty"`
	Period   string        `json:"period,omitempty"`
	Keywords string        `json:"keywords,omitempty"`
	Limit    int           `json:"limit,omitempty"`
	Summary  *PixSummary   `json:"pix,omitempty"`
	Market   *MarketBundle `json:"market,omitempty"`
	Analysis *Analysis     `json:"analysis,omitempty"`
}

// StageResult is the outcome of a single-stage run. Exactly one of the
// output fields or Error is set.
type StageResult struct {
	Stage    StageName     `json:"stage" yaml:"stage"`
	Summary  *PixSummary   `json:"pix,omitempty" yaml:"pix,omitempty"`
	Market   *MarketBundle `json:"market,omitempty" yaml:"market,omitempty"`
	Analysis *Analysis     `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Report   *Report       `json:"report,omitempty" yaml:"report,omitempty"`
	Error    *Error        `json:"error,omitempty" yaml:"error,omitempty"`
}

// AgentStatus describes one pipeline stage worker.
type AgentStatus struct {
	Stage       StageName `json:"stage"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// AgentsStatus is the readiness summary reported by the orchestrator.
type AgentsStatus struct {
	Total   int           `json:"total_agentes"`
	Agents  []AgentStatus `json:"agentes"`
	Status  string        `json:"status"`
	Version string        `json:"version,omitempty"`
}
