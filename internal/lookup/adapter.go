package lookup

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/shpitdev/contact-outreach/pkg/redact"
)

const instrumentationName = "github.com/shpitdev/contact-outreach/internal/lookup"

// PageTextFetcher is the page fetch step used after a website search.
type PageTextFetcher interface {
	FetchPageText(ctx context.Context, url string) (string, error)
}

// Options configures an Adapter.
type Options struct {
	// RateLimitRPS paces search calls globally. Set to <=0 to disable.
	RateLimitRPS float64

	// Fetcher defaults to NewPageFetcher(FetchOptions{}).
	Fetcher PageTextFetcher

	Logger *slog.Logger

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Adapter is the single gateway to external lookups for a run.
type Adapter struct {
	searcher Searcher
	fetcher  PageTextFetcher
	budget   *Budget
	limiter  *rate.Limiter
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewAdapter wires a search backend to the run's budget.
func NewAdapter(searcher Searcher, budget *Budget, opts Options) *Adapter {
	a := &Adapter{
		searcher: searcher,
		fetcher:  opts.Fetcher,
		budget:   budget,
		logger:   opts.Logger,
	}
	if a.fetcher == nil {
		a.fetcher = NewPageFetcher(FetchOptions{})
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	a.tracer = tp.Tracer(instrumentationName)
	if opts.RateLimitRPS > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}
	return a
}

// Search issues one counted search call. Once the budget is spent it returns
// ErrBudgetExhausted without contacting the backend.
func (a *Adapter) Search(ctx context.Context, query string) ([]Result, error) {
	ctx, span := a.tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	if a.budget.Exhausted() {
		span.SetStatus(codes.Error, "budget exhausted")
		return nil, ErrBudgetExhausted
	}
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limiter wait failed")
			return nil, err
		}
	}
	call, ok := a.budget.TryAcquire()
	if !ok {
		span.SetStatus(codes.Error, "budget exhausted")
		return nil, ErrBudgetExhausted
	}
	span.SetAttributes(attribute.Int("call", call))
	a.logger.InfoContext(ctx, "search call", "call", call, "ceiling", a.budget.Ceiling(), "query", query)

	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results, nil
}

// FetchPageText downloads url and returns its visible text. It is not counted
// against the budget.
func (a *Adapter) FetchPageText(ctx context.Context, url string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "FetchPageText")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	text, err := a.fetcher.FetchPageText(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, redact.Secrets(err.Error()))
		return "", err
	}
	span.SetAttributes(attribute.Int("text_len", len(text)))
	return text, nil
}
