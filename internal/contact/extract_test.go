package contact_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shpitdev/contact-outreach/internal/contact"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want contact.Found
	}{
		{
			name: "nothing",
			text: "no contact details on this page",
			want: contact.Found{},
		},
		{
			name: "emails deduplicated and sorted",
			text: "Write bob.smith+news@mail.example.co.uk or alice@example.com (alice@example.com).",
			want: contact.Found{
				Emails: []string{"alice@example.com", "bob.smith+news@mail.example.co.uk"},
			},
		},
		{
			name: "phone formats are not normalized",
			text: "Call (555) 123-4567, 555-123-4567 or +1 555.987.6543 today",
			want: contact.Found{
				Phones: []string{"(555) 123-4567", "+1 555.987.6543", "555-123-4567"},
			},
		},
		{
			name: "top level label longer than six letters",
			text: "reach me at someone@host.technology",
			want: contact.Found{},
		},
		{
			name: "mixed",
			text: "Alice Jones | alice@example.com | 555-123-4567",
			want: contact.Found{
				Emails: []string{"alice@example.com"},
				Phones: []string{"555-123-4567"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contact.Extract(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	text := "alice@example.com 555-123-4567 bob@example.org (555) 000-1111"
	first := contact.Extract(text)
	second := contact.Extract(text)
	require.Equal(t, first, second)
	require.False(t, first.Empty())
}
