package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/interfaces"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

// stageInputs are the upstream outputs accepted by run_stage.
type stageInputs struct {
	Summary  *models.PixSummary   `json:"pix"`
	Market   *models.MarketBundle `json:"market"`
	Analysis *models.Analysis     `json:"analysis"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}

// handleRunPipeline implements the run_pipeline tool
func handleRunPipeline(runner interfaces.PipelineRunner, reports interfaces.ReportAssembler, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := models.PipelineRequest{
			Location: request.GetString("location", ""),
			Kind:     models.LocationKind(request.GetString("kind", "")),
			Period:   request.GetString("period", ""),
			Keywords: request.GetString("keywords", ""),
		}

		result, err := runner.Run(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Str("location", req.Location).Msg("Pipeline run failed")
			return errorResult(formatError(err)), nil
		}

		return textResult(formatPipelineResult(result, reports)), nil
	}
}

// handleRunStage implements the run_stage tool
func handleRunStage(runner interfaces.PipelineRunner, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stage, err := request.RequireString("stage")
		if err != nil || stage == "" {
			return errorResult("Error: stage parameter is required"), nil
		}

		args := models.StageArgs{
			Location: request.GetString("location", ""),
			Kind:     models.LocationKind(request.GetString("kind", "")),
			Period:   request.GetString("period", ""),
			Keywords: request.GetString("keywords", ""),
			Limit:    request.GetInt("limit", 0),
		}

		if input := request.GetString("input", ""); input != "" {
			var in stageInputs
			if err := json.Unmarshal([]byte(input), &in); err != nil {
				return errorResult(fmt.Sprintf("Error: invalid input JSON: %v", err)), nil
			}
			args.Summary = in.Summary
			args.Market = in.Market
			args.Analysis = in.Analysis
		}

		res, stageErr := runner.RunStage(ctx, stage, args)
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			logger.Error().Err(err).Str("stage", stage).Msg("Failed to encode stage result")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if stageErr != nil {
			return errorResult(string(data)), nil
		}
		return textResult(string(data)), nil
	}
}

// handleAgentsStatus implements the agents_status tool
func handleAgentsStatus(runner interfaces.PipelineRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := runner.Status()
		status.Version = common.GetVersion()
		return textResult(formatAgentsStatus(status)), nil
	}
}
