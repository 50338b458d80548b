// Package workflow runs contact discovery and outreach for one person.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/shpitdev/contact-outreach/internal/contact"
	"github.com/shpitdev/contact-outreach/internal/lookup"
	"github.com/shpitdev/contact-outreach/internal/outreach"
	"github.com/shpitdev/contact-outreach/internal/roster"
	"github.com/shpitdev/contact-outreach/pkg/redact"
)

// WebsiteSource is the provenance label for contacts scraped from the
// person's official website.
const WebsiteSource = "Official Website"

// SocialPlatforms is the fallback order of social searches.
var SocialPlatforms = []string{"LinkedIn", "Facebook", "Twitter", "Instagram"}

// Lookup is the part of lookup.Adapter the workflow needs.
type Lookup interface {
	Search(ctx context.Context, query string) ([]lookup.Result, error)
	FetchPageText(ctx context.Context, url string) (string, error)
}

// Dispatcher sends the outreach email for a person.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, contacts *contact.Set) (outreach.LogEntry, bool)
}

// Record is a finalized person: the original row plus what was found.
type Record struct {
	Person   roster.Person
	Contacts contact.Summary

	// Provenance maps each contact value to the source that first found it.
	Provenance map[string]string

	// Lookups is the number of budget-counted searches made for this person.
	Lookups int
	// Trace lists the states visited, in order.
	Trace []State
}

// Outcome is the result of processing one person.
type Outcome struct {
	Record Record
	// Sent is set when an outreach email was delivered.
	Sent *outreach.LogEntry
}

// Deps are the collaborators of a Workflow. Lookup and Budget are required.
type Deps struct {
	Lookup     Lookup
	Budget     *lookup.Budget
	Dispatcher Dispatcher

	// Platforms overrides SocialPlatforms.
	Platforms []string
	Logger    *slog.Logger
}

// Workflow is stateless between people; all per-person state lives in a personRun.
type Workflow struct {
	lookup     Lookup
	budget     *lookup.Budget
	dispatcher Dispatcher
	platforms  []string
	logger     *slog.Logger
}

// New returns a Workflow using SocialPlatforms unless deps overrides them.
func New(deps Deps) *Workflow {
	w := &Workflow{
		lookup:     deps.Lookup,
		budget:     deps.Budget,
		dispatcher: deps.Dispatcher,
		platforms:  deps.Platforms,
		logger:     deps.Logger,
	}
	if w.platforms == nil {
		w.platforms = SocialPlatforms
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

type personRun struct {
	person    roster.Person
	contacts  *contact.Set
	platforms []string
	sent      *outreach.LogEntry
	record    Record
	logger    *slog.Logger
}

// Process runs the state machine for p to completion and returns the
// finalized record.
func (w *Workflow) Process(ctx context.Context, p roster.Person) Outcome {
	run := &personRun{
		person:    p,
		contacts:  contact.NewSet(),
		platforms: slices.Clone(w.platforms),
		logger:    w.logger.With("person", p.Name),
	}
	startCalls := w.budget.Used()

	var trace []State
	state := StateWebsiteLookup
	for state != StateDone {
		trace = append(trace, state)
		switch state {
		case StateWebsiteLookup:
			w.websiteLookup(ctx, run)
		case StateSocialLookup:
			w.socialLookup(ctx, run)
		case StateDispatch:
			w.dispatch(ctx, run)
		case StateFinalize:
			w.finalize(run)
		}

		sig := w.signals(run)
		next := Next(state, sig)
		w.narrate(ctx, run, state, next, sig)
		state = next
	}

	run.record.Lookups = w.budget.Used() - startCalls
	run.record.Trace = trace
	return Outcome{Record: run.record, Sent: run.sent}
}

func (w *Workflow) signals(run *personRun) Signals {
	return Signals{
		GoalMet:         run.contacts.GoalMet(),
		BudgetExhausted: w.budget.Exhausted(),
		QueueEmpty:      len(run.platforms) == 0,
	}
}

func (w *Workflow) narrate(ctx context.Context, run *personRun, from, to State, sig Signals) {
	switch {
	case to == StateDispatch && from == StateWebsiteLookup:
		run.logger.InfoContext(ctx, "goal met on website, proceeding to email")
	case to == StateDispatch:
		run.logger.InfoContext(ctx, "goal met on social media, proceeding to email")
	case from == StateWebsiteLookup && to == StateSocialLookup:
		run.logger.InfoContext(ctx, "goal not met, continuing to social media")
	case from == StateSocialLookup && to == StateFinalize && sig.BudgetExhausted:
		run.logger.WarnContext(ctx, "lookup limit reached, halting social searches for this person",
			"used", w.budget.Used(), "ceiling", w.budget.Ceiling())
	case from == StateSocialLookup && to == StateFinalize:
		run.logger.InfoContext(ctx, "no more social platforms to search")
	}
}

func (w *Workflow) websiteLookup(ctx context.Context, run *personRun) {
	query := buildQuery(run.person, "official website")
	run.logger.InfoContext(ctx, "searching for official website", "query", query)

	results, err := w.lookup.Search(ctx, query)
	if err != nil {
		w.logLookupErr(ctx, run, "website search", err)
		return
	}
	if len(results) == 0 || strings.TrimSpace(results[0].URL) == "" {
		run.logger.InfoContext(ctx, "no website found in search results")
		return
	}

	url := results[0].URL
	run.logger.InfoContext(ctx, "found potential website, scraping", "url", url)
	text, err := w.lookup.FetchPageText(ctx, url)
	if err != nil {
		w.logLookupErr(ctx, run, "website scrape", err)
		return
	}
	w.merge(ctx, run, contact.Extract(text), WebsiteSource)
}

func (w *Workflow) socialLookup(ctx context.Context, run *personRun) {
	if len(run.platforms) == 0 {
		return
	}
	platform := run.platforms[0]
	run.platforms = run.platforms[1:]

	query := buildQuery(run.person, platform+" contact")
	run.logger.InfoContext(ctx, "searching social platform", "platform", platform, "query", query)

	results, err := w.lookup.Search(ctx, query)
	if err != nil {
		w.logLookupErr(ctx, run, platform+" search", err)
		return
	}
	w.merge(ctx, run, contact.Extract(lookup.RenderResults(results)), platform)
}

func (w *Workflow) merge(ctx context.Context, run *personRun, found contact.Found, source string) {
	if found.Empty() {
		return
	}
	run.logger.InfoContext(ctx, "found contacts",
		"source", source, "emails", len(found.Emails), "phones", len(found.Phones))
	run.contacts.MergeFound(found, source)
}

func (w *Workflow) dispatch(ctx context.Context, run *personRun) {
	if w.dispatcher == nil {
		return
	}
	entry, ok := w.dispatcher.Dispatch(ctx, run.person.Name, run.contacts)
	if ok {
		run.sent = &entry
	}
}

func (w *Workflow) finalize(run *personRun) {
	run.record = Record{
		Person:     run.person,
		Contacts:   run.contacts.Flatten(),
		Provenance: run.contacts.Provenance(),
	}
	run.contacts = contact.NewSet()
}

func (w *Workflow) logLookupErr(ctx context.Context, run *personRun, step string, err error) {
	if errors.Is(err, lookup.ErrBudgetExhausted) {
		run.logger.InfoContext(ctx, "lookup limit reached, skipping "+step)
		return
	}
	run.logger.ErrorContext(ctx, step+" failed",
		"err", redact.Secrets(err.Error()),
		"transient", lookup.IsTransient(err))
}

func buildQuery(p roster.Person, suffix string) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.City, suffix} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
