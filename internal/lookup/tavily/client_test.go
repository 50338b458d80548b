package tavily_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shpitdev/contact-outreach/internal/lookup"
	"github.com/shpitdev/contact-outreach/internal/lookup/tavily"
	"github.com/shpitdev/contact-outreach/internal/mocksearch"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresKey(t *testing.T) {
	_, err := tavily.New(tavily.Config{APIKey: "  "})
	require.ErrorIs(t, err, lookup.ErrBackendUnavailable)
}

func TestClient_SearchAgainstMock(t *testing.T) {
	t.Parallel()

	mock := mocksearch.New()
	mock.RequireBearerToken("tvly-test")
	mock.AddResults("alice", mocksearch.Hit{Title: " Alice Jones ", URL: "https://alice.example", Content: "alice@example.com"})
	mock.FailOn("flaky", http.StatusBadGateway)
	ts := httptest.NewServer(mock.Handler())
	defer ts.Close()

	c, err := tavily.New(tavily.Config{APIKey: "tvly-test", BaseURL: ts.URL + "/"})
	require.NoError(t, err)
	ctx := context.Background()

	got, err := c.Search(ctx, "Alice Springfield official website")
	require.NoError(t, err)
	require.Equal(t, []lookup.Result{{URL: "https://alice.example", Title: "Alice Jones", Content: "alice@example.com"}}, got)

	got, err = c.Search(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = c.Search(ctx, "flaky query")
	require.True(t, lookup.IsTransient(err))

	_, err = c.Search(ctx, " ")
	require.EqualError(t, err, "empty query")

	require.Equal(t, []string{"Alice Springfield official website", "nobody", "flaky query"}, mock.SearchQueries())
}

func TestClient_SearchUnauthorized(t *testing.T) {
	t.Parallel()

	mock := mocksearch.New()
	mock.RequireBearerToken("tvly-right")
	ts := httptest.NewServer(mock.Handler())
	defer ts.Close()

	c, err := tavily.New(tavily.Config{APIKey: "tvly-wrong", BaseURL: ts.URL})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "alice")
	var he *lookup.HTTPError
	require.True(t, errors.As(err, &he))
	require.Equal(t, http.StatusUnauthorized, he.StatusCode)
	require.Equal(t, "Unauthorized: missing or invalid API key.", he.Message)
	require.False(t, lookup.IsTransient(err))
	require.NotContains(t, err.Error(), "tvly-wrong")
}
