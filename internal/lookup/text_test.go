package lookup_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shpitdev/contact-outreach/internal/lookup"
	"github.com/stretchr/testify/require"
)

func TestVisibleText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text", in: "just text", want: "just text"},
		{
			name: "nested markup",
			in:   "<div><h1> Dr. Alice </h1><ul><li>alice@example.com</li><li>(555) 123-4567</li></ul></div>",
			want: "Dr. Alice alice@example.com (555) 123-4567",
		},
		{
			name: "drops scripts styles and comments",
			in:   "<body><!-- bob@example.com --><noscript>enable js</noscript><style>p{}</style><p>Visible</p><script>1</script></body>",
			want: "Visible",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookup.VisibleText(strings.NewReader(tt.in))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRenderResults(t *testing.T) {
	require.Equal(t, "", lookup.RenderResults(nil))

	got := lookup.RenderResults([]lookup.Result{
		{URL: "https://a.example", Title: "A", Content: "alice@example.com"},
		{URL: "https://b.example", Content: "555-123-4567"},
	})
	require.Equal(t, "url: https://a.example\ntitle: A\ncontent: alice@example.com\nurl: https://b.example\ntitle: \ncontent: 555-123-4567", got)
}

func TestNewHTTPError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
		wantMessage   string
		wantSnippet   string
	}{
		{name: "detail envelope", status: 401, body: `{"detail":{"error":"Unauthorized: missing or invalid API key."}}`, wantMessage: "Unauthorized: missing or invalid API key."},
		{name: "flat envelope", status: 400, body: `{"error":"query is required"}`, wantMessage: "query is required"},
		{name: "rate limited", status: 429, body: `slow down`, wantTransient: true, wantSnippet: "slow down"},
		{name: "server error redacted", status: 502, body: "bad gateway for tvly-secret123", wantTransient: true, wantSnippet: "bad gateway for <redacted_key>"},
		{name: "not found", status: 404, body: "", wantSnippet: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lookup.NewHTTPError("search", "", tt.status, "", []byte(tt.body))
			require.Equal(t, tt.wantTransient, lookup.IsTransient(err))

			var he *lookup.HTTPError
			require.True(t, errors.As(err, &he))
			require.Equal(t, tt.status, he.StatusCode)
			require.Equal(t, tt.wantMessage, he.Message)
			require.Equal(t, tt.wantSnippet, he.Snippet)
			require.NotContains(t, err.Error(), "tvly-secret123")
		})
	}
}
