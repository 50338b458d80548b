// Package config loads run settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shpitdev/contact-outreach/internal/telemetry"
)

const (
	DefaultMaxAPICalls = 100
	DefaultInputPath   = "data.xlsx"
	DefaultReportsDir  = "reports"
	DefaultFormat      = "xlsx"
	DefaultSMTPHost    = "smtp.gmail.com"
	DefaultSMTPPort    = 465
	DefaultMaxResults  = 3

	BackendTavily = "tavily"
	BackendGemini = "gemini"
)

// Config is everything a run needs to start.
type Config struct {
	InputPath    string  `yaml:"input_path"`
	ReportsDir   string  `yaml:"reports_dir"`
	ReportFormat string  `yaml:"report_format"`
	MaxAPICalls  int     `yaml:"max_api_calls"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	Search  Search  `yaml:"search"`
	Email   Email   `yaml:"email"`
	Tracing Tracing `yaml:"tracing"`
}

// Tracing selects where spans go. The default exporter is none.
type Tracing struct {
	Exporter     string `yaml:"exporter"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Search selects and configures the search backend.
type Search struct {
	Backend    string `yaml:"backend"`
	MaxResults int    `yaml:"max_results"`
	Tavily     Tavily `yaml:"tavily"`
	Gemini     Gemini `yaml:"gemini"`
}

// Tavily configures the Tavily HTTP backend.
type Tavily struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Gemini configures the Gemini grounded-search backend.
type Gemini struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Email holds the sender account and relay. Missing credentials disable
// sending; they never fail the run.
type Email struct {
	Sender   string `yaml:"sender"`
	Password string `yaml:"password"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		InputPath:    DefaultInputPath,
		ReportsDir:   DefaultReportsDir,
		ReportFormat: DefaultFormat,
		MaxAPICalls:  DefaultMaxAPICalls,
		Search: Search{
			Backend:    BackendTavily,
			MaxResults: DefaultMaxResults,
		},
		Email: Email{
			SMTPHost: DefaultSMTPHost,
			SMTPPort: DefaultSMTPPort,
		},
		Tracing: Tracing{Exporter: telemetry.ExporterNone},
	}
}

// Load returns the defaults overlaid by the YAML file at path (skipped when
// path is empty) and then by the environment. Recoverable problems are logged
// as warnings on logger; malformed values otherwise return an error.
func Load(path string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, logger); err != nil {
		return Config{}, err
	}
	cfg.Search.Backend = strings.ToLower(strings.TrimSpace(cfg.Search.Backend))
	if cfg.MaxAPICalls < 0 {
		logger.Warn("negative lookup limit, using default", "max_api_calls", cfg.MaxAPICalls, "default", DefaultMaxAPICalls)
		cfg.MaxAPICalls = DefaultMaxAPICalls
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Email.Sender == "" || cfg.Email.Password == "" {
		logger.Warn("EMAIL_SENDER or EMAIL_PASSWORD not set, email sending is disabled")
	}
	return cfg, nil
}

func applyEnv(cfg *Config, logger *slog.Logger) error {
	envString("INPUT_PATH", &cfg.InputPath)
	envString("REPORTS_DIR", &cfg.ReportsDir)
	envString("REPORT_FORMAT", &cfg.ReportFormat)
	envString("SEARCH_BACKEND", &cfg.Search.Backend)
	envString("TAVILY_API_KEY", &cfg.Search.Tavily.APIKey)
	envString("TAVILY_BASE_URL", &cfg.Search.Tavily.BaseURL)
	envString("GEMINI_API_KEY", &cfg.Search.Gemini.APIKey)
	envString("GEMINI_MODEL", &cfg.Search.Gemini.Model)
	envString("GEMINI_BASE_URL", &cfg.Search.Gemini.BaseURL)
	envString("EMAIL_SENDER", &cfg.Email.Sender)
	envString("EMAIL_PASSWORD", &cfg.Email.Password)
	envString("SMTP_HOST", &cfg.Email.SMTPHost)
	envString("TRACE_EXPORTER", &cfg.Tracing.Exporter)
	envString("TRACE_OTLP_ENDPOINT", &cfg.Tracing.OTLPEndpoint)

	if v := strings.TrimSpace(os.Getenv("MAX_API_CALLS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn("invalid MAX_API_CALLS, using default", "value", v, "default", DefaultMaxAPICalls)
			n = DefaultMaxAPICalls
		}
		cfg.MaxAPICalls = n
	}

	if err := envInt("SMTP_PORT", &cfg.Email.SMTPPort); err != nil {
		return err
	}
	if err := envInt("SEARCH_MAX_RESULTS", &cfg.Search.MaxResults); err != nil {
		return err
	}
	return envFloat("RATE_LIMIT_RPS", &cfg.RateLimitRPS)
}

// Validate reports settings that make a run impossible.
func (c Config) Validate() error {
	switch c.Search.Backend {
	case BackendTavily, BackendGemini:
	default:
		return fmt.Errorf("unknown SEARCH_BACKEND %q (want %s or %s)", c.Search.Backend, BackendTavily, BackendGemini)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("SEARCH_MAX_RESULTS must be positive, got %d", c.Search.MaxResults)
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", c.Email.SMTPPort)
	}
	if !telemetry.ValidExporter(c.Tracing.Exporter) {
		return fmt.Errorf("unknown TRACE_EXPORTER %q", c.Tracing.Exporter)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0, got %g", c.RateLimitRPS)
	}
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("input path is required")
	}
	return nil
}

func envString(varName string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(varName)); v != "" {
		*dst = v
	}
}

func envInt(varName string, dst *int) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = out
	return nil
}

func envFloat(varName string, dst *float64) error {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	*dst = out
	return nil
}
