package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createRunPipelineTool returns the run_pipeline tool definition
func createRunPipelineTool() mcp.Tool {
	return mcp.NewTool("run_pipeline",
		mcp.WithDescription("Run the full Pix market intelligence pipeline (Pix data, market context, analysis, report) and return the report as markdown"),
		mcp.WithString("location",
			mcp.Description("Municipality name (e.g. Criciúma) or state code (e.g. SC). Default from config"),
		),
		mcp.WithString("kind",
			mcp.Description("Location kind (default: municipality)"),
			mcp.Enum("municipality", "state"),
		),
		mcp.WithString("period",
			mcp.Description("Reference month as YYYY-MM. Default from config"),
		),
		mcp.WithString("keywords",
			mcp.Description("Market context keywords"),
		),
	)
}

// createRunStageTool returns the run_stage tool definition
func createRunStageTool() mcp.Tool {
	return mcp.NewTool("run_stage",
		mcp.WithDescription("Run a single pipeline stage and return its JSON output"),
		mcp.WithString("stage",
			mcp.Required(),
			mcp.Description("Stage to run"),
			mcp.Enum("pix", "market", "analysis", "report"),
		),
		mcp.WithString("location",
			mcp.Description("Municipality name or state code (pix and report stages)"),
		),
		mcp.WithString("kind",
			mcp.Description("Location kind"),
			mcp.Enum("municipality", "state"),
		),
		mcp.WithString("period",
			mcp.Description("Reference month as YYYY-MM"),
		),
		mcp.WithString("keywords",
			mcp.Description("Market context keywords (market stage)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Market context items (default: 5)"),
		),
		mcp.WithString("input",
			mcp.Description(`Upstream outputs as JSON: {"pix": ..., "market": ..., "analysis": ...} (analysis and report stages)`),
		),
	)
}

// createAgentsStatusTool returns the agents_status tool definition
func createAgentsStatusTool() mcp.Tool {
	return mcp.NewTool("agents_status",
		mcp.WithDescription("List the pipeline stage workers and readiness"),
	)
}
