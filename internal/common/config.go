package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
	"github.com/alevtelles/agente-crewai-mercado-pix/internal/services/export"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	BCB         BCBConfig       `toml:"bcb"`
	Market      MarketConfig    `toml:"market"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Report      ReportConfig    `toml:"report"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Templates   TemplatesConfig `toml:"templates"`
	LLM         LLMConfig       `toml:"llm"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
	FileName   string   `toml:"file_name"`   // Log file name inside ./logs (default: "pixintel.log")
}

// BCBConfig configures the Olinda Pix open-data client
type BCBConfig struct {
	BaseURL   string `toml:"base_url"`   // OData service root
	Timeout   string `toml:"timeout"`    // Request timeout as duration string (default: "30s")
	PageSize  int    `toml:"page_size"`  // $top per request (default: 1000)
	RateLimit int    `toml:"rate_limit"` // Requests per second (default: 5)
}

// MarketConfig configures the market context stage
type MarketConfig struct {
	Limit   int      `toml:"limit"`   // Context items per bundle (default: 5)
	Sources []string `toml:"sources"` // News source pool; empty uses the built-in pool
}

// PipelineConfig holds the defaults applied when a caller omits arguments
type PipelineConfig struct {
	DefaultLocation      string `toml:"default_location"`       // default: "Criciúma"
	DefaultKind          string `toml:"default_kind"`           // "municipality" or "state"
	DefaultPeriod        string `toml:"default_period"`         // YYYY-MM (default: "2025-06")
	DefaultKeywords      string `toml:"default_keywords"`       // full-pipeline keywords
	DefaultStageKeywords string `toml:"default_stage_keywords"` // keywords for a single market stage run
	Commentary           bool   `toml:"commentary"`             // Ask the narrator for per-stage commentary (requires llm.enabled)
}

// ReportConfig configures report persistence
type ReportConfig struct {
	OutputDir string   `toml:"output_dir"` // Directory for exported reports (default: ".")
	Formats   []string `toml:"formats"`    // txt, json, yaml, md, html, pdf (default: ["txt"])
}

// SchedulerConfig configures recurring pipeline runs in serve mode
type SchedulerConfig struct {
	Enabled bool              `toml:"enabled"`
	Targets []ScheduledTarget `toml:"targets"`
}

// ScheduledTarget is one recurring pipeline run
type ScheduledTarget struct {
	Name     string `toml:"name"`
	Schedule string `toml:"schedule"` // 5-field cron expression
	Location string `toml:"location"`
	Kind     string `toml:"kind"`
	Period   string `toml:"period"` // YYYY-MM, or empty for the previous calendar month
	Keywords string `toml:"keywords"`
}

// TemplatesConfig points at user overrides for the embedded prompt templates
type TemplatesConfig struct {
	Dir string `toml:"dir"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	Enabled         bool        `toml:"enabled"`          // Disabled by default; the pipeline never depends on it
	DefaultProvider LLMProvider `toml:"default_provider"` // Default provider: "gemini" or "claude" (default: "claude")
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`       // default: "gemini-2.5-flash"
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // default: 0.3
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`      // default: "claude-sonnet-4-20250514"
	MaxTokens   int     `toml:"max_tokens"` // default: 2048
	Timeout     string  `toml:"timeout"`    // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8501,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
			FileName:   "pixintel.log",
		},
		BCB: BCBConfig{
			BaseURL:   "https://olinda.bcb.gov.br/olinda/servico/Pix_DadosAbertos/versao/v1/odata",
			Timeout:   "30s",
			PageSize:  1000,
			RateLimit: 5,
		},
		Market: MarketConfig{
			Limit: 5,
		},
		Pipeline: PipelineConfig{
			DefaultLocation:      "Criciúma",
			DefaultKind:          "municipality",
			DefaultPeriod:        "2025-06",
			DefaultKeywords:      "pagamentos digitais fintech pix",
			DefaultStageKeywords: "pagamentos digitais",
		},
		Report: ReportConfig{
			OutputDir: ".",
			Formats:   []string{"txt"},
		},
		LLM: LLMConfig{
			Enabled:         false,
			DefaultProvider: LLMProviderClaude,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Timeout:     "2m",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2048,
			Timeout:     "2m",
			Temperature: 0.3,
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PIXINTEL_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("PIXINTEL_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PIXINTEL_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("PIXINTEL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PIXINTEL_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output)
	}

	// BCB source (BCB_API_BASE_URL kept for existing deployments)
	if baseURL := os.Getenv("BCB_API_BASE_URL"); baseURL != "" {
		config.BCB.BaseURL = baseURL
	}
	if baseURL := os.Getenv("PIXINTEL_BCB_BASE_URL"); baseURL != "" {
		config.BCB.BaseURL = baseURL
	}
	if timeout := os.Getenv("PIXINTEL_BCB_TIMEOUT"); timeout != "" {
		config.BCB.Timeout = timeout
	}

	// Report output
	if dir := os.Getenv("PIXINTEL_REPORT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}
	if formats := os.Getenv("PIXINTEL_REPORT_FORMATS"); formats != "" {
		config.Report.Formats = splitList(formats)
	}

	// LLM configuration
	if enabled := os.Getenv("PIXINTEL_LLM_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.LLM.Enabled = b
		}
	}
	if provider := os.Getenv("PIXINTEL_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if key := os.Getenv("PIXINTEL_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("PIXINTEL_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string, logLevel string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if _, err := c.BCB.TimeoutDuration(); err != nil {
		return fmt.Errorf("invalid bcb.timeout: %w", err)
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderClaude, LLMProviderGemini:
	default:
		return fmt.Errorf("invalid llm.default_provider '%s': must be 'claude' or 'gemini'", c.LLM.DefaultProvider)
	}
	if _, err := models.ParseLocationKind(c.Pipeline.DefaultKind); err != nil {
		return fmt.Errorf("invalid pipeline.default_kind: %w", err)
	}
	if _, err := export.ParseFormats(strings.Join(c.Report.Formats, ",")); err != nil {
		return fmt.Errorf("invalid report.formats: %w", err)
	}
	for _, target := range c.Scheduler.Targets {
		if err := ValidateSchedule(target.Schedule); err != nil {
			return fmt.Errorf("invalid schedule for target '%s': %w", target.Name, err)
		}
		if _, err := models.ParseLocationKind(target.Kind); err != nil {
			return fmt.Errorf("invalid kind for target '%s': %w", target.Name, err)
		}
	}
	return nil
}

// TimeoutDuration parses the configured BCB timeout.
func (b BCBConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration(b.Timeout, 30*time.Second)
}

// TimeoutDuration parses the configured Gemini timeout.
func (g GeminiConfig) TimeoutDuration() time.Duration {
	d, err := parseDuration(g.Timeout, 2*time.Minute)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// TimeoutDuration parses the configured Claude timeout.
func (c ClaudeConfig) TimeoutDuration() time.Duration {
	d, err := parseDuration(c.Timeout, 2*time.Minute)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// ValidateSchedule validates a standard 5-field cron expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ResolveAPIKey returns the first non-empty of the environment variable and the
// configured value. An error means neither was set.
func ResolveAPIKey(envVar, configValue string) (string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}
	if v := strings.TrimSpace(configValue); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("API key not configured (set %s or the config file value)", envVar)
}
