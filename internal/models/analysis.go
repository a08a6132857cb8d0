package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// NotAvailable is the sentinel shown for undefined indicators.
const NotAvailable = "N/A"

// AverageTicket is total value / count, undefined when count is zero.
type AverageTicket struct {
	Value   decimal.Decimal
	Defined bool
}

// NewAverageTicket divides value by count, never failing on a zero count.
func NewAverageTicket(value decimal.Decimal, count int64) AverageTicket {
	if count <= 0 {
		return AverageTicket{}
	}
	return AverageTicket{Value: value.DivRound(decimal.NewFromInt(count), 2), Defined: true}
}

// String returns the ticket with two decimals or the N/A sentinel.
func (a AverageTicket) String() string {
	if !a.Defined {
		return NotAvailable
	}
	return a.Value.StringFixed(2)
}

func (a AverageTicket) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts the two-decimal string, a bare number or the N/A sentinel.
func (a *AverageTicket) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	if s == NotAvailable || s == "" || s == "null" {
		*a = AverageTicket{}
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid average ticket %q: %w", s, err)
	}
	*a = AverageTicket{Value: v, Defined: true}
	return nil
}

func (a AverageTicket) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// KeyIndicators are the headline figures derived from a PixSummary.
type KeyIndicators struct {
	Volume        int64           `json:"volume_transacional" yaml:"volume_transacional"`
	TotalValue    decimal.Decimal `json:"valor_total" yaml:"valor_total"`
	AverageTicket AverageTicket   `json:"ticket_medio" yaml:"ticket_medio"`
}

// Map flattens the indicators for display.
func (k KeyIndicators) Map() map[string]string {
	return map[string]string{
		"volume_transacional": strconv.FormatInt(k.Volume, 10),
		"valor_total":         k.TotalValue.StringFixed(2),
		"ticket_medio":        k.AverageTicket.String(),
	}
}

// Analysis is the output of the financial analysis stage.
type Analysis struct {
	Location        string        `json:"location" yaml:"location"`
	Period          Period        `json:"period" yaml:"period"`
	KeyIndicators   KeyIndicators `json:"key_indicators" yaml:"key_indicators"`
	Insights        []string      `json:"insights" yaml:"insights"`
	Recommendations []string      `json:"recommendations" yaml:"recommendations"`
	Narrative       string        `json:"narrative" yaml:"narrative"`
	MarketContext   *MarketBundle `json:"market_context,omitempty" yaml:"market_context,omitempty"`
}

// HasInsights reports whether the analysis carries an insights list.
func (a *Analysis) HasInsights() bool {
	return a != nil && a.Insights != nil
}

// Clone returns a deep copy safe to hand to another stage.
func (a *Analysis) Clone() *Analysis {
	if a == nil {
		return nil
	}
	c := *a
	if a.Insights != nil {
		c.Insights = append([]string{}, a.Insights...)
	}
	if a.Recommendations != nil {
		c.Recommendations = append([]string{}, a.Recommendations...)
	}
	c.MarketContext = a.MarketContext.Clone()
	return &c
}

// GrowthMetrics is the flat indicator set returned by the growth calculation.
type GrowthMetrics map[string]string
