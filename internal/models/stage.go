package models

import "strings"

// StageName identifies one step of the analysis pipeline.
type StageName string

const (
	StagePix      StageName = "pix"
	StageMarket   StageName = "market"
	StageAnalysis StageName = "analysis"
	StageReport   StageName = "report"
)

// Stages lists the pipeline steps in execution order.
var Stages = []StageName{StagePix, StageMarket, StageAnalysis, StageReport}

// IsValid reports whether s names a pipeline stage.
func (s StageName) IsValid() bool {
	switch s {
	case StagePix, StageMarket, StageAnalysis, StageReport:
		return true
	}
	return false
}

// String returns the string representation of the stage name
func (s StageName) String() string {
	return string(s)
}

// ParseStageName normalises and validates a stage name.
func ParseStageName(s string) (StageName, error) {
	name := StageName(strings.ToLower(strings.TrimSpace(s)))
	if !name.IsValid() {
		return "", NewError(ErrInvalidInput, "", "Tipo de task inválido: "+s)
	}
	return name, nil
}
