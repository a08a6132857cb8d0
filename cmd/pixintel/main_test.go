package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

func TestRequestFromFlags(t *testing.T) {
	tests := []struct {
		name         string
		municipality string
		state        string
		want         models.PipelineRequest
	}{
		{
			name:         "municipality",
			municipality: "Criciúma",
			want:         models.PipelineRequest{Location: "Criciúma", Kind: models.LocationMunicipality, Period: "2025-06"},
		},
		{
			name:         "state wins and is upper cased",
			state:        " sc ",
			municipality: "Criciúma",
			want:         models.PipelineRequest{Location: "SC", Kind: models.LocationState, Period: "2025-06"},
		},
		{
			name: "defaults left to the orchestrator",
			want: models.PipelineRequest{Period: "2025-06"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requestFromFlags(tt.municipality, tt.state, "2025-06", "")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Pix Intel version dev")
}
