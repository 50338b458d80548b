package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shpitdev/contact-outreach/internal/lookup"
	"github.com/shpitdev/contact-outreach/internal/outreach"
	"github.com/shpitdev/contact-outreach/internal/report"
	"github.com/shpitdev/contact-outreach/internal/roster"
	"github.com/shpitdev/contact-outreach/internal/workflow"
)

// LocalOptions locate the roster and reports of a local run.
type LocalOptions struct {
	InputPath  string
	ReportsDir string
	Format     report.Format

	MaxAPICalls  int
	RateLimitRPS float64
}

// Deps are the external collaborators of a local run.
type Deps struct {
	Searcher lookup.Searcher

	// Fetcher defaults to a lookup.PageFetcher.
	Fetcher lookup.PageTextFetcher

	// Mailer may be nil; sends are then skipped.
	Mailer      outreach.Mailer
	Credentials outreach.Credentials

	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Out receives the summary table. Defaults to os.Stdout.
	Out io.Writer
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Result describes a finished local run.
type Result struct {
	RunID  string
	Totals Totals
	Paths  report.Paths
}

// RunLocal reads the roster at opts.InputPath, processes it, and writes the
// reports under opts.ReportsDir.
func RunLocal(ctx context.Context, opts LocalOptions, deps Deps) (Result, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	base := deps.Logger
	if base == nil {
		base = slog.Default()
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	tp := deps.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	ctx, span := tp.Tracer("github.com/shpitdev/contact-outreach/internal/app").Start(ctx, "RunLocal")
	defer span.End()

	runStart := now()
	runID := fmt.Sprintf("run-%d", runStart.UnixNano())
	stamp := runStart.Format(report.StampLayout)
	logger := base.With("run", runID)
	span.SetAttributes(attribute.String("run", runID))

	rs, err := roster.ReadFile(opts.InputPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read roster")
		return Result{RunID: runID}, fmt.Errorf("read roster: %w", err)
	}
	logger.InfoContext(ctx, "run start",
		"input", opts.InputPath, "people", len(rs.People),
		"ceiling", opts.MaxAPICalls, "rate_limit_rps", opts.RateLimitRPS)

	budget := lookup.NewBudget(opts.MaxAPICalls)
	adapter := lookup.NewAdapter(deps.Searcher, budget, lookup.Options{
		RateLimitRPS:   opts.RateLimitRPS,
		Fetcher:        deps.Fetcher,
		Logger:         logger,
		TracerProvider: tp,
	})
	dispatcher := outreach.NewDispatcher(deps.Mailer, deps.Credentials, outreach.DispatcherOptions{
		Now:            now,
		Logger:         logger,
		TracerProvider: tp,
	})
	wf := workflow.New(workflow.Deps{
		Lookup:     adapter,
		Budget:     budget,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	totals := NewController(wf, budget, logger).Run(ctx, rs.People)
	result := Result{RunID: runID, Totals: totals}

	if len(totals.Records) == 0 {
		logger.WarnContext(ctx, "no data processed, no reports written")
	}
	paths, err := report.WriteAll(opts.ReportsDir, stamp, opts.Format, report.Results{
		Columns: rs.Columns,
		Records: totals.Records,
		Sent:    totals.Sent,
	})
	result.Paths = paths
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write reports")
		return result, err
	}
	span.SetAttributes(
		attribute.Int("people", len(rs.People)),
		attribute.Int("completed", len(totals.Records)),
		attribute.Int("sent", len(totals.Sent)),
		attribute.Int("lookup_calls", totals.LookupCalls),
	)
	for _, p := range []string{paths.Main, paths.DispatchLog, paths.Effectiveness} {
		if p != "" {
			logger.InfoContext(ctx, "report written", "path", p)
		}
	}
	logger.InfoContext(ctx, "run complete",
		"lookup_calls", totals.LookupCalls, "ceiling", totals.Ceiling,
		"completed", len(totals.Records), "sent", len(totals.Sent),
		"duration", time.Since(runStart).Round(time.Millisecond))

	WriteSummary(out, len(rs.People), result)
	return result, nil
}

// WriteSummary renders the end-of-run table.
func WriteSummary(w io.Writer, people int, res Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Run %s", res.RunID)
	t.AppendHeader(table.Row{"Metric", "Value"})

	dropped := "-"
	if res.Totals.Dropped != nil {
		dropped = res.Totals.Dropped.Name
	}
	t.AppendRows([]table.Row{
		{"People in roster", people},
		{"Completed", len(res.Totals.Records)},
		{"Emails sent", len(res.Totals.Sent)},
		{"Dropped at limit", dropped},
		{"Not reached", res.Totals.Unvisited},
		{"Lookup calls", fmt.Sprintf("%d / %d", res.Totals.LookupCalls, res.Totals.Ceiling)},
	})

	t.AppendSeparator()
	for _, r := range []struct{ label, path string }{
		{"Main report", res.Paths.Main},
		{"Dispatch log", res.Paths.DispatchLog},
		{"Effectiveness", res.Paths.Effectiveness},
	} {
		if r.path == "" {
			r.path = "(not written)"
		}
		t.AppendRow(table.Row{r.label, r.path})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
