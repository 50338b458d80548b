// Package lookup wraps the external search capability and the page fetch that
// follows a website search. Every search call is counted against a run-wide
// Budget; page fetches are not.
package lookup

import (
	"context"
	"errors"
)

// Result is one ranked search hit.
type Result struct {
	URL     string
	Title   string
	Content string
}

// Searcher asks an external search backend a text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearchFunc adapts a function to the Searcher interface.
type SearchFunc func(ctx context.Context, query string) ([]Result, error)

func (f SearchFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}

var (
	// ErrBudgetExhausted is returned instead of issuing a search once the run's
	// lookup ceiling has been reached. Refused searches are not counted.
	ErrBudgetExhausted = errors.New("lookup budget exhausted")

	// ErrBackendUnavailable marks a search backend that could not be initialized.
	// Callers treat it as a fatal startup failure.
	ErrBackendUnavailable = errors.New("search backend unavailable")
)

// TransientError marks an error as retryable (rate limited, 5xx, network timeout).
//
// The workflow never retries a counted search; the classification is surfaced
// in logs so operators can tell a flaky backend from a bad request.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether err carries a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
