package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	periodLayout        = "2006-01"
	compactPeriodLayout = "200601"
)

// Period is a calendar year-month. The canonical form is YYYY-MM; the BCB
// source expects the compact YYYYMM form.
type Period struct {
	Year  int
	Month int
}

// ParsePeriod parses a YYYY-MM string (4-digit year, month 01-12).
func ParsePeriod(s string) (Period, error) {
	if len(s) != len(periodLayout) {
		return Period{}, NewError(ErrInvalidInput, "", fmt.Sprintf("período inválido %q: use o formato YYYY-MM", s))
	}
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, NewError(ErrInvalidInput, "", fmt.Sprintf("período inválido %q: use o formato YYYY-MM", s))
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// MustParsePeriod is ParsePeriod for constants and tests.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PeriodOf returns the calendar month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String returns the canonical YYYY-MM form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Compact returns the YYYYMM form expected by the Olinda service.
func (p Period) Compact() string {
	return p.time().Format(compactPeriodLayout)
}

// Previous returns the preceding calendar month.
func (p Period) Previous() Period {
	t := p.time().AddDate(0, -1, 0)
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) time() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON encodes the period as its canonical string.
func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a canonical YYYY-MM string.
func (p *Period) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML encodes the period as its canonical string.
func (p Period) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}
