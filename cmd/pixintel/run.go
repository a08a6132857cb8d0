package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/export"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis pipeline and export the report",
	Long: `Runs pix -> market -> analysis -> report for one municipality or state and
writes relatorio_<location>_<period>.<ext> for each requested format.`,
	Example: `  pixintel run --municipio Criciúma --periodo 2025-06
  pixintel run --estado SC --periodo 2025-05 --format txt,json,pdf --out ./relatorios`,
	RunE: runPipeline,
}

var (
	runMunicipality string
	runState        string
	runPeriod       string
	runKeywords     string
	runFormats      string
	runOutDir       string
)

func init() {
	runCmd.Flags().StringVar(&runMunicipality, "municipio", "", "Municipality name (default from config)")
	runCmd.Flags().StringVar(&runState, "estado", "", "State code, e.g. SC (takes precedence over --municipio)")
	runCmd.Flags().StringVar(&runPeriod, "periodo", "", "Reference month as YYYY-MM (default from config)")
	runCmd.Flags().StringVar(&runKeywords, "keywords", "", "Market context keywords (default from config)")
	runCmd.Flags().StringVar(&runFormats, "format", "", "Comma separated export formats: "+strings.Join(export.Formats, ","))
	runCmd.Flags().StringVar(&runOutDir, "out", "", "Output directory (overrides report.output_dir)")
}

// requestFromFlags maps the location flags to a pipeline request.
// Empty fields are filled with the configured defaults by the orchestrator.
func requestFromFlags(municipality, state, period, keywords string) models.PipelineRequest {
	req := models.PipelineRequest{Period: period, Keywords: keywords}
	switch {
	case state != "":
		req.Location = strings.ToUpper(strings.TrimSpace(state))
		req.Kind = models.LocationState
	case municipality != "":
		req.Location = municipality
		req.Kind = models.LocationMunicipality
	}
	return req
}

func runPipeline(cmd *cobra.Command, args []string) error {
	formats := config.Report.Formats
	if runFormats != "" {
		parsed, err := export.ParseFormats(runFormats)
		if err != nil {
			return err
		}
		formats = parsed
	}
	if runOutDir != "" {
		config.Report.OutputDir = runOutDir
	}

	common.PrintBanner(common.GetVersion())

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	req := requestFromFlags(runMunicipality, runState, runPeriod, runKeywords)
	out := cmd.OutOrStdout()

	result, runErr := application.Orchestrator.Run(context.Background(), req)
	if runErr != nil {
		location, period := req.Location, req.Period
		if location == "" {
			location = config.Pipeline.DefaultLocation
		}
		if period == "" {
			period = config.Pipeline.DefaultPeriod
		}
		files, err := application.ExportService.ExportError(location, period, runErr, formats...)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to export error report")
		}
		for _, f := range files {
			fmt.Fprintf(out, "Relatório de erro salvo em: %s\n", f)
		}
		return runErr
	}

	files, err := application.ExportService.Export(result, formats...)
	for _, f := range files {
		fmt.Fprintf(out, "Relatório salvo em: %s\n", f)
	}
	if err != nil {
		return err
	}

	printRunSummary(cmd, result)
	return nil
}

func printRunSummary(cmd *cobra.Command, result *models.PipelineResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nExecução %s concluída em %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Localização: %s (%s)\nPeríodo: %s\n", result.Location.Name, result.Location.Kind, result.Period)

	if result.Summary.OK() {
		t := result.Summary.Totals
		fmt.Fprintf(out, "Transações: %d\nValor total: R$ %s\n", t.TotalCount, t.TotalValue.StringFixed(2))
	}
	if result.PixError != nil {
		fmt.Fprintf(out, "Aviso (pix): %s\n", result.PixError.Message)
	}
	if result.AnalysisError != nil {
		fmt.Fprintf(out, "Aviso (analysis): %s\n", result.AnalysisError.Message)
	}
	if result.Analysis != nil {
		fmt.Fprintf(out, "Ticket médio: %s\n", result.Analysis.KeyIndicators.AverageTicket)
	}
}
