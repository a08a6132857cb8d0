package models

// Relevance tiers for market context items.
type Relevance string

const (
	RelevanceLow    Relevance = "low"
	RelevanceMedium Relevance = "medium"
	RelevanceHigh   Relevance = "high"
)

// ContextItem is one news-like market signal.
type ContextItem struct {
	Source    string    `json:"source" yaml:"source"`
	Headline  string    `json:"headline" yaml:"headline"`
	Summary   string    `json:"summary" yaml:"summary"`
	Relevance Relevance `json:"relevance" yaml:"relevance"`
}

// MarketBundle is the fixed-shape output of the market context stage.
type MarketBundle struct {
	Query      string            `json:"query" yaml:"query"`
	Items      []ContextItem     `json:"items" yaml:"items"`
	Total      int               `json:"total" yaml:"total"`
	Indicators map[string]string `json:"indicators" yaml:"indicators"`
}

// Clone returns a deep copy safe to hand to another stage.
func (b *MarketBundle) Clone() *MarketBundle {
	if b == nil {
		return nil
	}
	c := *b
	c.Items = append([]ContextItem(nil), b.Items...)
	c.Indicators = CloneStringMap(b.Indicators)
	return &c
}

// CloneStringMap copies m. A nil map yields an empty, non-nil map.
func CloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
