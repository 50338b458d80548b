// Package tavily is a lookup.Searcher backed by the Tavily web search API.
package tavily

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shpitdev/contact-outreach/internal/lookup"
)

const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultMaxResults = 3
)

// Config configures a Client.
type Config struct {
	APIKey string

	// BaseURL overrides the API base URL. Useful for proxies/testing.
	BaseURL string

	// MaxResults caps the hits returned per query. <=0 uses DefaultMaxResults.
	MaxResults int

	// Timeout bounds one search request. <=0 leaves the transport default.
	Timeout time.Duration
}

// Client implements lookup.Searcher against the Tavily search API.
type Client struct {
	http       *resty.Client
	maxResults int
}

// New validates cfg and returns a client. A missing key is reported as
// lookup.ErrBackendUnavailable.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: TAVILY_API_KEY is required", lookup.ErrBackendUnavailable)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:       client,
		maxResults: maxResults,
	}, nil
}

type searchRequest struct {
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

// Search runs one query and returns hits in the backend's ranking order.
func (c *Client) Search(ctx context.Context, query string) ([]lookup.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty query")
	}

	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{
			Query:       query,
			MaxResults:  c.maxResults,
			SearchDepth: "basic",
		}).
		SetResult(&out).
		Post("/search")
	if err != nil {
		return nil, lookup.ClassifyTransportErr(err)
	}
	if !resp.IsSuccess() {
		return nil, lookup.NewHTTPError("tavily.search", "", resp.StatusCode(), resp.Status(), resp.Body())
	}

	results := make([]lookup.Result, 0, len(out.Results))
	for _, r := range out.Results {
		results = append(results, lookup.Result{
			URL:     strings.TrimSpace(r.URL),
			Title:   strings.TrimSpace(r.Title),
			Content: strings.TrimSpace(r.Content),
		})
		if len(results) == c.maxResults {
			break
		}
	}
	return results, nil
}
