package app

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shpitdev/contact-outreach/internal/lookup"
	"github.com/shpitdev/contact-outreach/internal/outreach"
	"github.com/shpitdev/contact-outreach/internal/roster"
	"github.com/shpitdev/contact-outreach/internal/workflow"
)

// Processor runs one person to completion.
type Processor interface {
	Process(ctx context.Context, p roster.Person) workflow.Outcome
}

// Totals is what a run accumulated.
type Totals struct {
	Records []workflow.Record
	Sent    []outreach.LogEntry

	// Dropped is the person that was taken off the queue when the budget was
	// already spent. It is never finalized and does not appear in reports.
	Dropped *roster.Person
	// Unvisited counts people still queued when the run stopped.
	Unvisited int

	LookupCalls int
	Ceiling     int
}

// Controller feeds the roster through the workflow in order until the queue
// is empty, the budget is spent, or ctx is done.
type Controller struct {
	processor Processor
	budget    *lookup.Budget
	logger    *slog.Logger
}

// NewController returns a controller that stops once budget is spent.
func NewController(processor Processor, budget *lookup.Budget, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{processor: processor, budget: budget, logger: logger}
}

// Run processes people in order and returns what was accumulated. It never
// fails; per-person problems are logged by the workflow.
func (c *Controller) Run(ctx context.Context, people []roster.Person) Totals {
	var totals Totals
	queue := slices.Clone(people)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			c.logger.WarnContext(ctx, "run canceled", "err", err, "remaining", len(queue))
			break
		}

		p := queue[0]
		queue = queue[1:]

		if c.budget.Exhausted() {
			c.logger.WarnContext(ctx, "lookup limit reached, stopping run",
				"used", c.budget.Used(), "ceiling", c.budget.Ceiling(),
				"dropped", p.Name, "remaining", len(queue))
			dropped := p
			totals.Dropped = &dropped
			break
		}

		c.logger.InfoContext(ctx, "processing person", "person", p.Name, "city", p.City)
		out := c.processor.Process(ctx, p)
		totals.Records = append(totals.Records, out.Record)
		if out.Sent != nil {
			totals.Sent = append(totals.Sent, *out.Sent)
		}
	}

	totals.Unvisited = len(queue)
	totals.LookupCalls = c.budget.Used()
	totals.Ceiling = c.budget.Ceiling()
	return totals
}
