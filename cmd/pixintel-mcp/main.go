package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/app"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
)

func main() {
	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	// Load configuration; a missing default file falls back to built-in defaults
	var paths []string
	if configPath := os.Getenv("PIXINTEL_CONFIG"); configPath != "" {
		paths = append(paths, configPath)
	} else if _, err := os.Stat("pixintel.toml"); err == nil {
		paths = append(paths, "pixintel.toml")
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs only go to the file writer
	config.Logging.Output = []string{"file"}
	config.Logging.FileName = "pixintel-mcp.log"
	if config.Logging.Level == "" || config.Logging.Level == "debug" {
		config.Logging.Level = "warn"
	}
	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"pixintel",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createRunPipelineTool(), handleRunPipeline(application.Orchestrator, application.ReportService, logger))
	mcpServer.AddTool(createRunStageTool(), handleRunStage(application.Orchestrator, logger))
	mcpServer.AddTool(createAgentsStatusTool(), handleAgentsStatus(application.Orchestrator))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
