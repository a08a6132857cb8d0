package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocationKind(t *testing.T) {
	tests := []struct {
		input   string
		want    LocationKind
		wantErr bool
	}{
		{input: "", want: LocationMunicipality},
		{input: "municipio", want: LocationMunicipality},
		{input: "Municipality", want: LocationMunicipality},
		{input: "estado", want: LocationState},
		{input: "state", want: LocationState},
		{input: "pais", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocationKind(tt.input)
			if tt.wantErr {
				assert.True(t, IsKind(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Name: "Criciúma", Kind: LocationMunicipality}.Validate())
	assert.True(t, IsKind(Location{Name: "  ", Kind: LocationMunicipality}.Validate(), ErrInvalidInput))
	assert.True(t, IsKind(Location{Name: "SC", Kind: "region"}.Validate(), ErrInvalidInput))
}

func TestParseStageName(t *testing.T) {
	for _, s := range Stages {
		got, err := ParseStageName(" " + string(s) + " ")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStageName("bogus")
	assert.True(t, IsKind(err, ErrInvalidInput))
}

func TestNewPixTotals(t *testing.T) {
	totals := NewPixTotals(decimal.RequireFromString("100.10"), 10, decimal.RequireFromString("0.20"), 3)

	assert.True(t, totals.TotalValue.Equal(decimal.RequireFromString("100.30")))
	assert.Equal(t, int64(13), totals.TotalCount)
	assert.True(t, totals.TotalValue.Equal(totals.ValueIndividual.Add(totals.ValueLegal)))
}

func TestAverageTicket(t *testing.T) {
	ticket := NewAverageTicket(decimal.NewFromFloat(100.0), 10)
	assert.True(t, ticket.Defined)
	assert.True(t, ticket.Value.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "10.00", ticket.String())

	zero := NewAverageTicket(decimal.NewFromFloat(100.0), 0)
	assert.False(t, zero.Defined)
	assert.Equal(t, NotAvailable, zero.String())

	data, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(data))

	var back AverageTicket
	require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &back))
	assert.True(t, back.Defined)
	assert.Equal(t, "12.50", back.String())

	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &back))
	assert.False(t, back.Defined)

	require.NoError(t, json.Unmarshal([]byte(`7.5`), &back))
	assert.Equal(t, "7.50", back.String())

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &back))
}

func TestErrorHelpers(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrUpstream, StageAnalysis, "Dados Pix inválidos ou ausentes", cause)

	wrapped := fmt.Errorf("stage failed: %w", err)
	assert.True(t, IsKind(wrapped, ErrUpstream))
	assert.False(t, IsKind(wrapped, ErrNotFound))
	assert.ErrorIs(t, wrapped, cause)
	assert.Same(t, err, AsError(wrapped))

	fatal := AsError(cause)
	assert.Equal(t, ErrFatal, fatal.Kind)
	assert.Nil(t, AsError(nil))

	data, jerr := json.Marshal(err)
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"kind":"upstream_error","stage":"analysis","error":"Dados Pix inválidos ou ausentes","cause":"boom"}`, string(data))
}

func TestCloneIsolatesStageOutputs(t *testing.T) {
	bundle := &MarketBundle{Items: []ContextItem{{Source: "InfoMoney"}}, Indicators: map[string]string{"selic": "10.75%"}}
	c := bundle.Clone()
	c.Indicators["selic"] = "0%"
	c.Items[0].Source = "changed"

	assert.Equal(t, "10.75%", bundle.Indicators["selic"])
	assert.Equal(t, "InfoMoney", bundle.Items[0].Source)

	analysis := &Analysis{Insights: []string{"a"}, MarketContext: bundle}
	ac := analysis.Clone()
	ac.Insights[0] = "b"
	assert.Equal(t, "a", analysis.Insights[0])
	assert.NotSame(t, analysis.MarketContext, ac.MarketContext)
}
