package telemetry_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/shpitdev/contact-outreach/internal/telemetry"
)

func TestSetup_NoneLeavesTracingOff(t *testing.T) {
	for _, name := range []string{"", "none", " NONE "} {
		tel, err := telemetry.Setup(context.Background(), "outreach", telemetry.Config{Exporter: name})
		require.NoError(t, err)
		require.Nil(t, tel.TracerProvider)
		require.NoError(t, tel.Shutdown(context.Background()))
	}
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, err := telemetry.Setup(context.Background(), "outreach", telemetry.Config{Exporter: "zipkin"})
	require.ErrorContains(t, err, "unknown trace exporter")
	require.False(t, telemetry.ValidExporter("zipkin"))
	require.True(t, telemetry.ValidExporter("Console"))
}

func TestSetup_ConsoleWritesEndedSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, "outreach-test", telemetry.Config{Exporter: "console", Console: &buf})
	require.NoError(t, err)
	require.NotNil(t, tel.TracerProvider)

	_, span := otel.Tracer("telemetry_test").Start(ctx, "lookup-check")
	span.End()
	require.NoError(t, tel.Shutdown(ctx))

	require.Contains(t, buf.String(), `"Name": "lookup-check"`)
	require.Contains(t, buf.String(), "outreach-test")
}

func TestSetup_OTLPExportsToEndpoint(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v1/traces" {
			posts.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, "outreach-test", telemetry.Config{
		Exporter:     "otlp",
		OTLPEndpoint: srv.URL + "/v1/traces",
	})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(ctx, "exported")
	span.End()
	require.NoError(t, tel.Shutdown(ctx))
	require.EqualValues(t, 1, posts.Load())
}
