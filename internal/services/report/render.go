package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

//go:embed templates/report.html
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// sectionOrder is the display order of report sections.
var sectionOrder = []string{
	models.SectionPixPanorama,
	models.SectionMarketContext,
	models.SectionStrategicAnalysis,
}

// RenderHTML renders a self-contained HTML page with the title, date, period
// and executive summary. Sections, conclusions and recommendations are not
// rendered here; RenderMarkdown carries the full report.
func (s *Service) RenderHTML(report *models.Report) (string, error) {
	if report == nil {
		return "", models.NewError(models.ErrInvalidInput, models.StageReport, "relatório ausente")
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("failed to render report html: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown renders every part of the report as markdown.
func (s *Service) RenderMarkdown(report *models.Report) string {
	if report == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", report.Title))
	sb.WriteString(fmt.Sprintf("**Data:** %s  \n", report.Date))
	sb.WriteString(fmt.Sprintf("**Localização:** %s  \n", report.Location))
	sb.WriteString(fmt.Sprintf("**Período:** %s\n\n", report.Period))

	sb.WriteString("## Resumo Executivo\n\n")
	sb.WriteString(report.ExecutiveSummary)
	sb.WriteString("\n\n")

	for _, key := range sectionOrder {
		section, ok := report.Sections[key]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", section.Title))
		sb.WriteString(strings.ReplaceAll(section.Body, "\n", "  \n"))
		sb.WriteString("\n\n")

		writeIndicatorTable(&sb, section.Indicators)
		writeIndicatorTable(&sb, section.KeyIndicators)

		if len(section.Insights) > 0 {
			sb.WriteString("### Insights\n\n")
			writeList(&sb, section.Insights, false)
		}
	}

	sb.WriteString("## Conclusões\n\n")
	writeList(&sb, report.Conclusions, false)

	sb.WriteString("## Recomendações Estratégicas\n\n")
	writeList(&sb, report.Recommendations, true)

	return sb.String()
}

func writeIndicatorTable(sb *strings.Builder, indicators map[string]string) {
	if len(indicators) == 0 {
		return
	}

	keys := make([]string, 0, len(indicators))
	for k := range indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString("| Indicador | Valor |\n|---|---|\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", k, indicators[k]))
	}
	sb.WriteString("\n")
}

func writeList(sb *strings.Builder, items []string, numbered bool) {
	for i, item := range items {
		if numbered {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
		} else {
			sb.WriteString(fmt.Sprintf("- %s\n", item))
		}
	}
	sb.WriteString("\n")
}
