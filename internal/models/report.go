package models

// Section keys used in Report.Sections.
const (
	SectionPixPanorama       = "panorama_pix"
	SectionMarketContext     = "contexto_mercado"
	SectionStrategicAnalysis = "analise_estrategica"
)

// Section is one titled block of the report.
type Section struct {
	Title         string            `json:"title" yaml:"title"`
	Body          string            `json:"body" yaml:"body"`
	Indicators    map[string]string `json:"indicators" yaml:"indicators"`
	Insights      []string          `json:"insights,omitempty" yaml:"insights,omitempty"`
	KeyIndicators map[string]string `json:"key_indicators,omitempty" yaml:"key_indicators,omitempty"`
}

// Report is the executive report produced by the last pipeline stage.
// It is never mutated after construction.
type Report struct {
	Title            string             `json:"title" yaml:"title"`
	Date             string             `json:"date" yaml:"date"`
	Period           Period             `json:"period" yaml:"period"`
	Location         string             `json:"location" yaml:"location"`
	ExecutiveSummary string             `json:"executive_summary" yaml:"executive_summary"`
	Sections         map[string]Section `json:"sections" yaml:"sections"`
	Conclusions      []string           `json:"conclusions" yaml:"conclusions"`
	Recommendations  []string           `json:"recommendations" yaml:"recommendations"`
}

// HasSection reports whether the named section was emitted.
func (r *Report) HasSection(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Sections[key]
	return ok
}
