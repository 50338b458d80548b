package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/shpitdev/contact-outreach/internal/mocksearch"
)

func main() {
	addr := defaultString("MOCK_SEARCH_ADDR", ":8080")
	fixtures := defaultString("MOCK_SEARCH_FIXTURES", "")
	token := defaultString("MOCK_SEARCH_TOKEN", "")

	fs := flag.NewFlagSet("mock-search", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVar(&fixtures, "fixtures", fixtures, "YAML file with search rules and pages (env: MOCK_SEARCH_FIXTURES)")
	fs.StringVar(&token, "token", token, "Require this bearer token on /search (env: MOCK_SEARCH_TOKEN)")
	_ = fs.Parse(os.Args[1:])

	srv := mocksearch.New()
	if token != "" {
		srv.RequireBearerToken(token)
	}
	if fixtures != "" {
		f, err := mocksearch.LoadFixtures(fixtures)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "fixtures error: %v\n", err)
			os.Exit(2)
		}
		srv.Load(f)
	}

	_, _ = fmt.Fprintf(os.Stdout, "mock-search listening on %s (fixtures=%s)\n", addr, fixtures)
	_, _ = fmt.Fprintf(os.Stdout, "point the pipeline at it with TAVILY_BASE_URL=http://localhost%s\n", portSuffix(addr))
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func portSuffix(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ""
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}
