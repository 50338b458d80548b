package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/shpitdev/contact-outreach/internal/lookup"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return false }

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name          string
		in            error
		wantTransient bool
	}{
		{name: "nil", in: nil, wantTransient: false},
		{name: "api_429", in: genai.APIError{Code: 429}, wantTransient: true},
		{name: "api_503", in: genai.APIError{Code: 503}, wantTransient: true},
		{name: "api_400", in: genai.APIError{Code: 400}, wantTransient: false},
		{name: "net_timeout", in: timeoutNetErr{}, wantTransient: true},
		{name: "plain", in: errors.New("boom"), wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyErr(tt.in)
			if lookup.IsTransient(got) != tt.wantTransient {
				t.Fatalf("transient=%v want=%v (err=%T %v)", lookup.IsTransient(got), tt.wantTransient, got, got)
			}
		})
	}
}

func TestNew_ConfigErrorsAreBackendUnavailable(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{Model: "m"}); !errors.Is(err, lookup.ErrBackendUnavailable) {
		t.Fatalf("missing key: got %v", err)
	}
	if _, err := New(ctx, Config{APIKey: "k"}); !errors.Is(err, lookup.ErrBackendUnavailable) {
		t.Fatalf("missing model: got %v", err)
	}
}

func TestToResults(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText("Alice: alice@example.com, 555-123-4567", genai.RoleModel),
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://alice.example", Title: "Alice"}},
					nil,
					{Web: &genai.GroundingChunkWeb{URI: "https://alice.example"}},
					{Web: &genai.GroundingChunkWeb{URI: "https://b.example"}},
					{Web: &genai.GroundingChunkWeb{URI: "https://c.example"}},
				},
			},
		}},
	}

	got := toResults(resp, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %#v", got)
	}
	if got[0].URL != "https://alice.example" || got[0].Title != "Alice" || got[0].Content != "Alice: alice@example.com, 555-123-4567" {
		t.Fatalf("unexpected first result: %#v", got[0])
	}
	if got[1].URL != "https://b.example" || got[1].Content != "" {
		t.Fatalf("unexpected second result: %#v", got[1])
	}

	if got := toResults(nil, 3); got != nil {
		t.Fatalf("expected nil for nil response, got %#v", got)
	}

	textOnly := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("no sources", genai.RoleModel)}},
	}
	if got := toResults(textOnly, 3); len(got) != 1 || got[0].URL != "" || got[0].Content != "no sources" {
		t.Fatalf("unexpected text-only results: %#v", got)
	}
}
