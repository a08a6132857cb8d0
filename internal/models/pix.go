package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryStatus is the outcome flag carried by a PixSummary.
type SummaryStatus string

const (
	SummarySuccess  SummaryStatus = "success"
	SummaryNotFound SummaryStatus = "not_found"
)

// TransactionRecord is one row of the Olinda Pix open-data service.
// Field names follow the source payload.
type TransactionRecord struct {
	Municipio    string          `json:"Municipio"`
	Estado       string          `json:"Estado"`
	AnoMes       string          `json:"AnoMes"`
	VL_PagadorPF decimal.Decimal `json:"VL_PagadorPF"`
	QT_PagadorPF decimal.Decimal `json:"QT_PagadorPF"`
	VL_PagadorPJ decimal.Decimal `json:"VL_PagadorPJ"`
	QT_PagadorPJ decimal.Decimal `json:"QT_PagadorPJ"`
}

// PixTotals aggregates values and counts per payer category.
// TotalValue == ValueIndividual + ValueLegal and TotalCount == CountIndividual + CountLegal.
type PixTotals struct {
	ValueIndividual decimal.Decimal `json:"value_individual" yaml:"value_individual"`
	CountIndividual int64           `json:"count_individual" yaml:"count_individual"`
	ValueLegal      decimal.Decimal `json:"value_legal" yaml:"value_legal"`
	CountLegal      int64           `json:"count_legal" yaml:"count_legal"`
	TotalValue      decimal.Decimal `json:"total_value" yaml:"total_value"`
	TotalCount      int64           `json:"total_count" yaml:"total_count"`
}

// NewPixTotals builds totals from the per-category sums, deriving the combined fields.
func NewPixTotals(valuePF decimal.Decimal, countPF int64, valuePJ decimal.Decimal, countPJ int64) PixTotals {
	return PixTotals{
		ValueIndividual: valuePF,
		CountIndividual: countPF,
		ValueLegal:      valuePJ,
		CountLegal:      countPJ,
		TotalValue:      valuePF.Add(valuePJ),
		TotalCount:      countPF + countPJ,
	}
}

// RecordDetail is the provenance entry kept for a matched record.
type RecordDetail struct {
	Municipio string          `json:"municipio" yaml:"municipio"`
	Estado    string          `json:"estado" yaml:"estado"`
	AnoMes    string          `json:"ano_mes" yaml:"ano_mes"`
	ValuePF   decimal.Decimal `json:"valor_pf" yaml:"valor_pf"`
	CountPF   int64           `json:"quantidade_pf" yaml:"quantidade_pf"`
}

// PixSummary is the statistical summary for a location and period.
type PixSummary struct {
	Location  string         `json:"location" yaml:"location"`
	Period    Period         `json:"period" yaml:"period"`
	Kind      LocationKind   `json:"kind" yaml:"kind"`
	Matched   int            `json:"matched_records" yaml:"matched_records"`
	Totals    PixTotals      `json:"totals" yaml:"totals"`
	Details   []RecordDetail `json:"details" yaml:"details"`
	QueriedAt time.Time      `json:"queried_at" yaml:"queried_at"`
	Status    SummaryStatus  `json:"status" yaml:"status"`
}

// OK reports whether the summary carries numeric data.
func (s *PixSummary) OK() bool {
	return s != nil && s.Status == SummarySuccess
}

// Clone returns a deep copy safe to hand to another stage.
func (s *PixSummary) Clone() *PixSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.Details = append([]RecordDetail(nil), s.Details...)
	return &c
}
