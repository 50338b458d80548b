// Package mocksearch serves a Tavily-compatible /search endpoint and static
// pages from in-memory fixtures.
package mocksearch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// BasePlaceholder in a fixture URL is replaced by the server's own base URL,
// so fixtures can point search hits at pages served by the same mock.
const BasePlaceholder = "{{base}}"

// call records a request made to the mock service.
type call struct {
	Path  string
	Query string
}

// Hit is one search result served by the mock.
type Hit struct {
	Title   string `yaml:"title" json:"title"`
	URL     string `yaml:"url" json:"url"`
	Content string `yaml:"content" json:"content"`
}

// Rule answers every query containing Match (case-insensitive). Rules are
// evaluated in registration order; the first match wins. A non-zero Status
// makes the rule fail with that HTTP status instead.
type Rule struct {
	Match   string `yaml:"match"`
	Status  int    `yaml:"status"`
	Results []Hit  `yaml:"results"`
}

// Fixtures is the on-disk shape loaded by cmd/mock-search.
//
// Example (YAML):
//
//	rules:
//	  - match: alice jones official website
//	    results:
//	      - title: Alice Jones
//	        url: "{{base}}/pages/alice"
//	pages:
//	  alice: "<p>alice@example.com 555-123-4567</p>"
type Fixtures struct {
	Rules []Rule            `yaml:"rules"`
	Pages map[string]string `yaml:"pages"`
}

// LoadFixtures reads a YAML fixture file.
func LoadFixtures(path string) (Fixtures, error) {
	b, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures file: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures YAML: %w", err)
	}
	for i, r := range f.Rules {
		if strings.TrimSpace(r.Match) == "" {
			return Fixtures{}, fmt.Errorf("rule %d: match is required", i)
		}
	}
	return f, nil
}

// Server implements a minimal search API plus a page host.
type Server struct {
	mu    sync.Mutex
	calls []call
	rules []Rule
	pages map[string]string

	expectedAuthorization string
}

// New constructs an empty mock server. Unmatched queries return no results.
func New() *Server {
	return &Server{
		pages: make(map[string]string),
	}
}

// RequireBearerToken enforces that search requests carry the token.
// If token is empty, authorization is not enforced.
func (s *Server) RequireBearerToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token = strings.TrimSpace(token)
	if token == "" {
		s.expectedAuthorization = ""
		return
	}
	s.expectedAuthorization = "Bearer " + token
}

// Load registers every rule and page in f.
func (s *Server) Load(f Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, f.Rules...)
	for name, body := range f.Pages {
		s.pages[name] = body
	}
}

// AddResults answers queries containing match with hits.
func (s *Server) AddResults(match string, hits ...Hit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, Rule{Match: match, Results: hits})
}

// FailOn answers queries containing match with an HTTP error status.
func (s *Server) FailOn(match string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, Rule{Match: match, Status: status})
}

// AddPage serves body as text/html at /pages/<name>.
func (s *Server) AddPage(name, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[strings.Trim(name, "/")] = body
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/pages/", s.handlePage)
	return mux
}

// SearchQueries returns the queries received by /search, in order.
func (s *Server) SearchQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.Path == "/search" {
			out = append(out, c.Query)
		}
	}
	return out
}

func (s *Server) recordCall(r *http.Request, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{Path: r.URL.Path, Query: query})
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	expected := s.expectedAuthorization
	s.mu.Unlock()

	if expected == "" {
		return true
	}
	if r.Header.Get("Authorization") != expected {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized: missing or invalid API key.")
		return false
	}
	return true
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []Hit  `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.recordCall(r, "")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		s.recordCall(r, "")
		writeJSONError(w, http.StatusBadRequest, "read body")
		return
	}
	var req searchRequest
	if err := json.Unmarshal(b, &req); err != nil {
		s.recordCall(r, "")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.recordCall(r, req.Query)
	if !s.authorize(w, r) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}

	rule, ok := s.match(req.Query)
	if ok && rule.Status != 0 {
		writeJSONError(w, rule.Status, fmt.Sprintf("forced status %d", rule.Status))
		return
	}

	base := "http://" + r.Host
	hits := []Hit{}
	if ok {
		for _, h := range rule.Results {
			h.URL = strings.ReplaceAll(h.URL, BasePlaceholder, base)
			hits = append(hits, h)
			if req.MaxResults > 0 && len(hits) == req.MaxResults {
				break
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(searchResponse{Query: req.Query, Results: hits})
}

func (s *Server) match(query string) (Rule, bool) {
	q := strings.ToLower(query)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if strings.Contains(q, strings.ToLower(strings.TrimSpace(r.Match))) {
			return r, true
		}
	}
	return Rule{}, false
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.recordCall(r, "")
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/pages/"), "/")

	s.mu.Lock()
	body, ok := s.pages[name]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"detail": map[string]string{"error": msg},
	})
}
