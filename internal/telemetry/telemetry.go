// Package telemetry installs the process-wide OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ExporterNone    = "none"
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
)

// Config selects the span exporter.
type Config struct {
	// Exporter is one of none, console or otlp. Empty means none.
	Exporter string

	// OTLPEndpoint is the full OTLP/HTTP traces URL, for example
	// http://localhost:4318/v1/traces. Empty falls back to the standard
	// OTEL_EXPORTER_OTLP_* environment variables.
	OTLPEndpoint string

	// Console receives pretty-printed spans. Defaults to os.Stderr.
	Console io.Writer
}

// ValidExporter reports whether name is a supported exporter.
func ValidExporter(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ExporterNone, ExporterConsole, ExporterOTLP:
		return true
	}
	return false
}

// Telemetry holds the providers installed by Setup.
type Telemetry struct {
	// TracerProvider is nil when tracing is disabled.
	TracerProvider *trace.TracerProvider
}

// Shutdown flushes pending spans.
func (t Telemetry) Shutdown(ctx context.Context) error {
	if t.TracerProvider == nil {
		return nil
	}
	return t.TracerProvider.Shutdown(ctx)
}

// Setup builds a tracer provider for cfg and installs it globally. With the
// none exporter the global no-op provider is left in place.
func Setup(ctx context.Context, serviceName string, cfg Config) (Telemetry, error) {
	exporter := strings.ToLower(strings.TrimSpace(cfg.Exporter))
	if exporter == "" || exporter == ExporterNone {
		return Telemetry{}, nil
	}

	exp, err := newExporter(ctx, exporter, cfg)
	if err != nil {
		return Telemetry{}, err
	}
	r, err := newResource(serviceName)
	if err != nil {
		return Telemetry{}, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	return Telemetry{TracerProvider: tp}, nil
}

func newExporter(ctx context.Context, exporter string, cfg Config) (trace.SpanExporter, error) {
	switch exporter {
	case ExporterConsole:
		w := cfg.Console
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	case ExporterOTLP:
		ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		var opts []otlptracehttp.Option
		if ep := strings.TrimSpace(cfg.OTLPEndpoint); ep != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(ep))
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q (want %s, %s or %s)",
			exporter, ExporterNone, ExporterConsole, ExporterOTLP)
	}
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}
