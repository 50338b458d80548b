package outreach

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig describes an authenticated submission relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer sends over implicit TLS (SMTPS) with PLAIN authentication.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer fills in the default relay for empty Host and Port.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = DefaultSMTPHost
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultSMTPPort
	}
	return &SMTPMailer{cfg: cfg}
}

// Send blocks until the relay accepts or rejects the message. The transport
// has no cancellation hook; ctx is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = msg.From
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := e.SendWithTLS(addr, auth, &tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("smtp send to %s via %s: %w", msg.To, addr, err)
	}
	return nil
}
