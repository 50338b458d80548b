// Package outreach decides whether a person can be contacted, composes the
// outreach email and records successful sends.
package outreach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shpitdev/contact-outreach/internal/contact"
	"github.com/shpitdev/contact-outreach/pkg/redact"
)

const instrumentationName = "github.com/shpitdev/contact-outreach/internal/outreach"

// TimestampLayout formats LogEntry.Timestamp in reports.
const TimestampLayout = "2006-01-02 15:04:05"

// UnknownSource is recorded when the recipient has no provenance.
const UnknownSource = "Unknown"

// LogEntry records one successful send.
type LogEntry struct {
	Timestamp time.Time
	Name      string
	Email     string
	Source    string
}

// Credentials identify the sending account.
type Credentials struct {
	Sender   string
	Password string
}

// Configured reports whether both sender address and password are set.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.Sender) != "" && strings.TrimSpace(c.Password) != ""
}

// Dispatcher sends at most one outreach email per call.
type Dispatcher struct {
	mailer Mailer
	creds  Credentials
	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

// DispatcherOptions configures a Dispatcher. The zero value is usable.
type DispatcherOptions struct {
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// NewDispatcher returns a Dispatcher that sends through mailer as creds.Sender.
// A nil mailer disables sending.
func NewDispatcher(mailer Mailer, creds Credentials, opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		mailer: mailer,
		creds:  creds,
		now:    opts.Now,
		logger: opts.Logger,
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	d.tracer = tp.Tracer(instrumentationName)
	return d
}

// Dispatch emails the lexicographically first address in contacts. It returns
// the log entry and true only when the send succeeded. Missing addresses,
// missing credentials and send failures are logged and return false.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, contacts *contact.Set) (LogEntry, bool) {
	ctx, span := d.tracer.Start(ctx, "Dispatch")
	defer span.End()

	if !contacts.HasEmail() {
		d.logger.InfoContext(ctx, "no email address found, skipping email")
		return LogEntry{}, false
	}
	if d.mailer == nil || !d.creds.Configured() {
		d.logger.WarnContext(ctx, "email credentials not configured, skipping email")
		return LogEntry{}, false
	}

	recipient := contacts.Emails()[0]
	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = "there"
	}
	span.SetAttributes(attribute.String("recipient", recipient))

	msg := Compose(d.creds.Sender, recipient, displayName)
	if err := d.mailer.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		d.logger.ErrorContext(ctx, "failed to send email", "to", recipient, "err", redact.Secrets(err.Error()))
		return LogEntry{}, false
	}

	source, ok := contacts.Source(recipient)
	if !ok {
		source = UnknownSource
	}
	d.logger.InfoContext(ctx, "email sent", "name", displayName, "to", recipient, "source", source)
	return LogEntry{
		Timestamp: d.now(),
		Name:      displayName,
		Email:     recipient,
		Source:    source,
	}, true
}

// Compose fills the fixed outreach template.
func Compose(from, to, name string) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("A quick question, %s", name),
		Body: fmt.Sprintf(`Hi %s,

I hope this message finds you well.

I found your contact information online and wanted to reach out regarding a potential collaboration.

Best regards,
[Your Name]`, name),
	}
}
