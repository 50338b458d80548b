// Package contact extracts candidate email addresses and phone numbers from
// unstructured text and aggregates them per person with source attribution.
package contact

import (
	"regexp"
	"slices"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}\b`)
	phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\(\d{3}\)|\d{3})[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Found is the result of scanning one piece of text.
//
// Values are exact substrings of the input: "(555) 123-4567" and
// "555-123-4567" are different phones.
type Found struct {
	Emails []string
	Phones []string
}

// Empty reports whether nothing was found.
func (f Found) Empty() bool {
	return len(f.Emails) == 0 && len(f.Phones) == 0
}

// Extract returns the distinct email-like and phone-like substrings of text, sorted.
func Extract(text string) Found {
	return Found{
		Emails: uniqueSorted(emailRe.FindAllString(text, -1)),
		Phones: uniqueSorted(phoneRe.FindAllString(text, -1)),
	}
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
