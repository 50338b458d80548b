// Package gemini is a lookup.Searcher that answers queries with Gemini's
// Google Search grounding.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"github.com/shpitdev/contact-outreach/internal/lookup"
)

// Config configures a Searcher.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string

	// MaxResults caps the grounding sources returned per query. <=0 uses 3.
	MaxResults int
}

// Searcher implements lookup.Searcher on top of Gemini with Google Search grounding.
type Searcher struct {
	client     *genai.Client
	model      string
	maxResults int
}

// New validates cfg and constructs the client. Configuration problems are
// reported as lookup.ErrBackendUnavailable.
func New(ctx context.Context, cfg Config) (*Searcher, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is required", lookup.ErrBackendUnavailable)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: GEMINI_MODEL is required", lookup.ErrBackendUnavailable)
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lookup.ErrBackendUnavailable, err)
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	return &Searcher{
		client:     client,
		model:      strings.TrimSpace(cfg.Model),
		maxResults: maxResults,
	}, nil
}

// Search asks the model to run a grounded web search for query. Grounding
// sources become results in citation order; the model's answer text is
// attached to the first result so contact details it quotes are scanned too.
func (s *Searcher) Search(ctx context.Context, query string) ([]lookup.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty query")
	}

	resp, err := s.client.Models.GenerateContent(
		ctx,
		s.model,
		genai.Text(buildPrompt(query)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			CandidateCount: 1,
		},
	)
	if err != nil {
		return nil, classifyErr(err)
	}
	return toResults(resp, s.maxResults), nil
}

func buildPrompt(query string) string {
	return strings.TrimSpace(`
You are a web search tool. Search the web for the query below and report what the top results say.

Rules:
- Quote any email addresses and phone numbers exactly as they appear in the sources.
- Do not invent contact details.
- Keep the answer short.

Query: ` + query + `
`)
}

func toResults(resp *genai.GenerateContentResponse, maxResults int) []lookup.Result {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	c := resp.Candidates[0]

	var out []lookup.Result
	seen := make(map[string]struct{})
	if c.GroundingMetadata != nil {
		for _, chunk := range c.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			uri := strings.TrimSpace(chunk.Web.URI)
			if uri == "" {
				continue
			}
			if _, ok := seen[uri]; ok {
				continue
			}
			seen[uri] = struct{}{}
			out = append(out, lookup.Result{URL: uri, Title: strings.TrimSpace(chunk.Web.Title)})
			if len(out) == maxResults {
				break
			}
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return out
	}
	if len(out) == 0 {
		return []lookup.Result{{Content: text}}
	}
	out[0].Content = text
	return out
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &lookup.TransientError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &lookup.TransientError{Err: err}
	}
	return err
}
