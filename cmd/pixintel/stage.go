package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

var stageCmd = &cobra.Command{
	Use:   "stage <pix|market|analysis|report>",
	Short: "Run a single pipeline stage and print its output as JSON",
	Long: `Runs one stage in isolation. The analysis and report stages read their
upstream inputs from --input, a JSON file holding "pix", "market" and "analysis".`,
	Example: `  pixintel stage pix --municipio Criciúma --periodo 2025-06
  pixintel stage market --keywords "fintech pix" --limit 3
  pixintel stage analysis --input pix.json`,
	Args: cobra.ExactArgs(1),
	RunE: runStage,
}

var (
	stageMunicipality string
	stageState        string
	stagePeriod       string
	stageKeywords     string
	stageLimit        int
	stageInput        string
)

func init() {
	stageCmd.Flags().StringVar(&stageMunicipality, "municipio", "", "Municipality name")
	stageCmd.Flags().StringVar(&stageState, "estado", "", "State code, e.g. SC")
	stageCmd.Flags().StringVar(&stagePeriod, "periodo", "", "Reference month as YYYY-MM")
	stageCmd.Flags().StringVar(&stageKeywords, "keywords", "", "Market context keywords")
	stageCmd.Flags().IntVar(&stageLimit, "limit", 0, "Market context items")
	stageCmd.Flags().StringVar(&stageInput, "input", "", "JSON file with upstream stage outputs")
}

// stageInputs are the upstream outputs accepted by --input.
type stageInputs struct {
	Summary  *models.PixSummary   `json:"pix"`
	Market   *models.MarketBundle `json:"market"`
	Analysis *models.Analysis     `json:"analysis"`
}

func runStage(cmd *cobra.Command, args []string) error {
	req := requestFromFlags(stageMunicipality, stageState, stagePeriod, stageKeywords)
	stageArgs := models.StageArgs{
		Location: req.Location,
		Kind:     req.Kind,
		Period:   req.Period,
		Keywords: req.Keywords,
		Limit:    stageLimit,
	}

	if stageInput != "" {
		data, err := os.ReadFile(stageInput)
		if err != nil {
			return fmt.Errorf("failed to read stage input: %w", err)
		}
		var in stageInputs
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("failed to parse stage input %s: %w", stageInput, err)
		}
		stageArgs.Summary = in.Summary
		stageArgs.Market = in.Market
		stageArgs.Analysis = in.Analysis
	}

	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	res, stageErr := application.Orchestrator.RunStage(context.Background(), args[0], stageArgs)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	return stageErr
}
