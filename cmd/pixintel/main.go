package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/app"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/common"
)

var (
	// Command-line flags
	configFiles []string // Multiple -c flags supported, later files override earlier ones
	logLevel    string

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "pixintel",
	Short: "Pix market intelligence pipeline",
	Long: `Collects Pix transaction statistics from the Banco Central open-data API,
adds market context, derives financial indicators and writes an executive report.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(runCmd, stageCmd, statusCmd, serveCmd, versionCmd)
}

func main() {
	common.InstallCrashHandler("./logs")
	defer common.RecoverWithCrashFile()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig runs before every subcommand.
// Order: defaults -> file1 -> file2 -> ... -> env -> CLI flags, then the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("pixintel.toml"); err == nil {
			configFiles = append(configFiles, "pixintel.toml")
		} else if _, err := os.Stat("deployments/local/pixintel.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/pixintel.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	port, host := 0, ""
	if cmd == serveCmd {
		port, host = servePort, serveHost
	}
	common.ApplyFlagOverrides(config, port, host, logLevel)

	logger = common.InitLogger(config)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Strs("log_output", config.Logging.Output).
		Str("bcb_base_url", config.BCB.BaseURL).
		Bool("llm_enabled", config.LLM.Enabled).
		Msg("Resolved configuration")

	return nil
}

// newApp builds the application from the loaded configuration.
func newApp() (*app.App, error) {
	application, err := app.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}
