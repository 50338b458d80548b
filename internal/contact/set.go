package contact

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Set accumulates the contacts discovered for one person across lookup phases.
//
// The zero value is not usable; call NewSet.
type Set struct {
	emails     map[string]struct{}
	phones     map[string]struct{}
	provenance map[string]string
}

// NewSet returns an empty contact set.
func NewSet() *Set {
	return &Set{
		emails:     make(map[string]struct{}),
		phones:     make(map[string]struct{}),
		provenance: make(map[string]string),
	}
}

// Merge adds emails and phones to the set. Values seen for the first time are
// attributed to source; values already attributed keep their original source.
func (s *Set) Merge(emails, phones []string, source string) {
	for _, e := range emails {
		s.emails[e] = struct{}{}
		s.attribute(e, source)
	}
	for _, p := range phones {
		s.phones[p] = struct{}{}
		s.attribute(p, source)
	}
}

// MergeFound is Merge for an extraction result.
func (s *Set) MergeFound(f Found, source string) {
	s.Merge(f.Emails, f.Phones, source)
}

func (s *Set) attribute(value, source string) {
	if _, ok := s.provenance[value]; ok {
		return
	}
	s.provenance[value] = source
}

// GoalMet reports whether at least one email and one phone are known.
func (s *Set) GoalMet() bool {
	return len(s.emails) > 0 && len(s.phones) > 0
}

// HasEmail reports whether at least one email is known.
func (s *Set) HasEmail() bool {
	return len(s.emails) > 0
}

// Emails returns the known emails in lexicographic order.
func (s *Set) Emails() []string {
	return slices.Sorted(maps.Keys(s.emails))
}

// Phones returns the known phones in lexicographic order.
func (s *Set) Phones() []string {
	return slices.Sorted(maps.Keys(s.phones))
}

// Source returns the source credited with first finding value.
func (s *Set) Source(value string) (string, bool) {
	src, ok := s.provenance[value]
	return src, ok
}

// Provenance returns a copy of the value -> source mapping.
func (s *Set) Provenance() map[string]string {
	return maps.Clone(s.provenance)
}

// Summary is the flattened, report-ready form of a Set.
type Summary struct {
	Emails  string
	Phones  string
	Sources string
}

// Flatten renders the set as sorted, joined strings.
func (s *Set) Flatten() Summary {
	pairs := make([]string, 0, len(s.provenance))
	for value, source := range s.provenance {
		pairs = append(pairs, fmt.Sprintf("%s (%s)", value, source))
	}
	slices.Sort(pairs)
	return Summary{
		Emails:  strings.Join(s.Emails(), ", "),
		Phones:  strings.Join(s.Phones(), ", "),
		Sources: strings.Join(pairs, "; "),
	}
}
