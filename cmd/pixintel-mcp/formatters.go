package main

import (
	"fmt"
	"strings"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// formatPipelineResult formats a run as markdown: stage warnings, then the report
func formatPipelineResult(result *models.PipelineResult, reports interfaces.ReportAssembler) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Execução:** %s  \n", result.RunID))

	if result.PixError != nil {
		sb.WriteString(fmt.Sprintf("**Aviso (pix):** %s  \n", result.PixError.Message))
	}
	if result.AnalysisError != nil {
		sb.WriteString(fmt.Sprintf("**Aviso (analysis):** %s  \n", result.AnalysisError.Message))
	}
	sb.WriteString("\n")

	if md := reports.RenderMarkdown(result.Report); md != "" {
		sb.WriteString(md)
	} else {
		sb.WriteString("Relatório indisponível.\n")
	}

	for _, stage := range models.Stages {
		if text, ok := result.Commentary[stage]; ok {
			sb.WriteString(fmt.Sprintf("\n### Comentário (%s)\n\n%s\n", stage, text))
		}
	}

	return sb.String()
}

// formatError formats a pipeline error with its kind and stage
func formatError(err error) string {
	e := models.AsError(err)
	if e.Stage != "" {
		return fmt.Sprintf("Erro [%s/%s]: %s", e.Kind, e.Stage, e.Error())
	}
	return fmt.Sprintf("Erro [%s]: %s", e.Kind, e.Error())
}

// formatAgentsStatus formats the readiness summary as markdown
func formatAgentsStatus(status models.AgentsStatus) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (%d agentes)\n\n", status.Status, status.Total))
	for _, agent := range status.Agents {
		sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", agent.Name, agent.Stage, agent.Description))
	}
	if status.Version != "" {
		sb.WriteString(fmt.Sprintf("\nVersão: %s\n", status.Version))
	}
	return sb.String()
}
