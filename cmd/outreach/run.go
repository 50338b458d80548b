package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/shpitdev/contact-outreach/internal/app"
	"github.com/shpitdev/contact-outreach/internal/config"
	"github.com/shpitdev/contact-outreach/internal/lookup"
	"github.com/shpitdev/contact-outreach/internal/lookup/gemini"
	"github.com/shpitdev/contact-outreach/internal/lookup/tavily"
	"github.com/shpitdev/contact-outreach/internal/outreach"
	"github.com/shpitdev/contact-outreach/internal/report"
	"github.com/shpitdev/contact-outreach/internal/telemetry"
)

type runFlags struct {
	configPath  string
	envFile     string
	input       string
	reportsDir  string
	format      string
	maxAPICalls int
	trace       string
	verbose     bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the roster and write reports",
		Example: `  outreach run --input data.xlsx
  outreach run --input people.csv --format csv --max-api-calls 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Optional YAML config file")
	fl.StringVar(&f.envFile, "env-file", ".env", "dotenv file to load if present")
	fl.StringVar(&f.input, "input", "", "Roster file, .xlsx or .csv (env: INPUT_PATH, default data.xlsx)")
	fl.StringVar(&f.reportsDir, "reports-dir", "", "Directory for reports (env: REPORTS_DIR, default reports)")
	fl.StringVar(&f.format, "format", "", "Report format, xlsx or csv (env: REPORT_FORMAT, default xlsx)")
	fl.IntVar(&f.maxAPICalls, "max-api-calls", 0, "Search call limit for the run (env: MAX_API_CALLS, default 100)")
	fl.StringVar(&f.trace, "trace", "", "Trace exporter: none, console or otlp (env: TRACE_EXPORTER)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging")
	return cmd
}

func runPipeline(cmd *cobra.Command, f runFlags) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), f.verbose)

	if err := godotenv.Load(f.envFile); err != nil && cmd.Flags().Changed("env-file") {
		return configErr(fmt.Errorf("load env file: %w", err))
	}

	cfg, err := config.Load(f.configPath, logger)
	if err != nil {
		return configErr(err)
	}
	applyFlags(cmd, f, &cfg, logger)

	format, err := report.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return configErr(err)
	}

	tel, err := telemetry.Setup(ctx, "outreach", telemetry.Config{
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		Console:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return configErr(fmt.Errorf("tracing: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("flush traces", "err", err)
		}
	}()

	searcher, err := newSearcher(ctx, cfg)
	if err != nil {
		return configErr(err)
	}

	creds := outreach.Credentials{Sender: cfg.Email.Sender, Password: cfg.Email.Password}
	var mailer outreach.Mailer
	if creds.Configured() {
		mailer = outreach.NewSMTPMailer(outreach.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Sender,
			Password: cfg.Email.Password,
		})
	}

	_, err = app.RunLocal(ctx, app.LocalOptions{
		InputPath:    cfg.InputPath,
		ReportsDir:   cfg.ReportsDir,
		Format:       format,
		MaxAPICalls:  cfg.MaxAPICalls,
		RateLimitRPS: cfg.RateLimitRPS,
	}, app.Deps{
		Searcher:    searcher,
		Mailer:      mailer,
		Credentials: creds,
		Logger:      logger,
		Out:         cmd.OutOrStdout(),
	})
	if err != nil {
		return failureErr(fmt.Errorf("run failed: %w", err))
	}
	return nil
}

func applyFlags(cmd *cobra.Command, f runFlags, cfg *config.Config, logger *slog.Logger) {
	fl := cmd.Flags()
	if fl.Changed("input") {
		cfg.InputPath = f.input
	}
	if fl.Changed("reports-dir") {
		cfg.ReportsDir = f.reportsDir
	}
	if fl.Changed("format") {
		cfg.ReportFormat = f.format
	}
	if fl.Changed("trace") {
		cfg.Tracing.Exporter = f.trace
	}
	if fl.Changed("max-api-calls") {
		if f.maxAPICalls < 0 {
			logger.Warn("negative --max-api-calls, using default", "value", f.maxAPICalls, "default", config.DefaultMaxAPICalls)
			f.maxAPICalls = config.DefaultMaxAPICalls
		}
		cfg.MaxAPICalls = f.maxAPICalls
	}
}

func newSearcher(ctx context.Context, cfg config.Config) (lookup.Searcher, error) {
	switch cfg.Search.Backend {
	case config.BackendGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:     cfg.Search.Gemini.APIKey,
			Model:      cfg.Search.Gemini.Model,
			BaseURL:    cfg.Search.Gemini.BaseURL,
			MaxResults: cfg.Search.MaxResults,
		})
	default:
		return tavily.New(tavily.Config{
			APIKey:     cfg.Search.Tavily.APIKey,
			BaseURL:    cfg.Search.Tavily.BaseURL,
			MaxResults: cfg.Search.MaxResults,
			Timeout:    30 * time.Second,
		})
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
