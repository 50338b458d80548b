package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shpitdev/contact-outreach/internal/mocksearch"
	"github.com/shpitdev/contact-outreach/internal/version"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"INPUT_PATH", "REPORTS_DIR", "REPORT_FORMAT", "MAX_API_CALLS", "RATE_LIMIT_RPS",
		"SEARCH_BACKEND", "SEARCH_MAX_RESULTS", "TAVILY_API_KEY", "TAVILY_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
		"EMAIL_SENDER", "EMAIL_PASSWORD", "SMTP_HOST", "SMTP_PORT",
		"TRACE_EXPORTER", "TRACE_OTLP_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	require.Equal(t, exitOK, code)
	require.Equal(t, version.Current+"\n", out)
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "bogus")
	require.Equal(t, exitConfig, code)
	require.Contains(t, stderr, "unknown command")
}

func TestRun_MissingBackendKeyIsConfigError(t *testing.T) {
	clearEnv(t)
	code, _, stderr := run(t, "run", "--input", "people.csv")
	require.Equal(t, exitConfig, code)
	require.Contains(t, stderr, "search backend unavailable")
}

func TestRun_BadFormatIsConfigError(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAVILY_API_KEY", "tvly-secret")
	code, _, _ := run(t, "run", "--format", "pdf")
	require.Equal(t, exitConfig, code)
}

func TestRun_EndToEndAgainstMockSearch(t *testing.T) {
	clearEnv(t)
	srv := mocksearch.New()
	srv.RequireBearerToken("tvly-test")
	srv.AddResults("alice springfield official",
		mocksearch.Hit{Title: "Alice", URL: mocksearch.BasePlaceholder + "/pages/alice"})
	srv.AddPage("alice", "<p>alice@example.com</p><p>555-123-4567</p>")
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(input, []byte("NAME,CITY\nAlice,Springfield\n"), 0o600))
	reports := filepath.Join(dir, "reports")

	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("TAVILY_BASE_URL", ts.URL)

	code, out, stderr := run(t, "run",
		"--input", input,
		"--reports-dir", reports,
		"--format", "csv",
		"--max-api-calls", "3",
	)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, out, "1 / 3")
	require.NotContains(t, stderr, "tvly-test")

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.True(t, strings.HasSuffix(e.Name(), ".csv"), e.Name())
	}
}

func TestRun_MissingRosterIsRunFailure(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	dir := t.TempDir()

	code, _, stderr := run(t, "run",
		"--input", filepath.Join(dir, "missing.csv"),
	)
	require.Equal(t, exitFailure, code)
	require.Contains(t, stderr, "read roster")
}

func TestRun_ExplicitMissingEnvFileIsConfigError(t *testing.T) {
	clearEnv(t)
	code, _, stderr := run(t, "run", "--env-file", filepath.Join(t.TempDir(), "none.env"))
	require.Equal(t, exitConfig, code)
	require.Contains(t, stderr, "load env file")
}

func TestRun_ConsoleTracing(t *testing.T) {
	clearEnv(t)
	srv := mocksearch.New()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(input, []byte("NAME,CITY\nCarol,Ogdenville\n"), 0o600))
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("TAVILY_BASE_URL", ts.URL)

	code, _, stderr := run(t, "run",
		"--input", input,
		"--reports-dir", filepath.Join(dir, "reports"),
		"--format", "csv",
		"--trace", "console",
	)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stderr, `"Name": "RunLocal"`)
	require.Contains(t, stderr, `"Name": "Search"`)
}

func TestRun_UnknownTraceExporterIsConfigError(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	code, _, stderr := run(t, "run", "--trace", "jaeger")
	require.Equal(t, exitConfig, code)
	require.Contains(t, stderr, "unknown trace exporter")
}
