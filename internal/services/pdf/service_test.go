package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	service := NewService(arbor.NewLogger())

	tests := []struct {
		name     string
		markdown string
	}{
		{name: "empty", markdown: ""},
		{name: "basic", markdown: "# Título\n\nParágrafo com acentuação: São Paulo, Criciúma.\n\n- Item 1\n- Item 2"},
		{name: "ordered list", markdown: "1. Monitorar evolução mensal\n2. Desenvolver produtos\n"},
		{name: "styling", markdown: "Normal **Negrito** *Itálico* ***Ambos***"},
		{
			name: "indicator table",
			markdown: `## Panorama do Sistema Pix

| Indicador | Valor |
|---|---|
| valor_total_geral | 150.00 |
| quantidade_total_geral | 15 |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfBytes, err := service.ConvertMarkdownToPDF(tt.markdown, "Relatório")
			require.NoError(t, err)
			require.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestConvertMarkdownToPDF_LongTable(t *testing.T) {
	service := NewService(arbor.NewLogger())

	var sb strings.Builder
	sb.WriteString("| Indicador | Valor |\n|---|---|\n")
	for i := 0; i < 120; i++ {
		sb.WriteString("| " + strings.Repeat("indicador_muito_longo_", 6) + " | 1 |\n")
	}

	pdfBytes, err := service.ConvertMarkdownToPDF(sb.String(), "Tabela")
	require.NoError(t, err)
	assert.Greater(t, len(pdfBytes), 1000)
}
