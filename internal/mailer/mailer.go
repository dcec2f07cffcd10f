// Package mailer provides the outbound mail relay with two
// interchangeable backends: the Resend REST API and plain SMTP.
// Delivery retry and backoff are the caller's concern.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mhartmann/leadcrm/internal/config"
)

// ErrNotConfigured is returned when the selected backend is missing
// its credentials.
var ErrNotConfigured = errors.New("mail relay not configured")

// Message is a single outbound email.
type Message struct {
	FromEmail string
	FromName  string
	To        string
	Subject   string
	HTML      string
}

// From renders the RFC 5322 from header value.
func (m Message) From() string {
	if m.FromName == "" {
		return m.FromEmail
	}
	return fmt.Sprintf("%s <%s>", m.FromName, m.FromEmail)
}

// Relay delivers messages through one configured backend.
type Relay interface {
	// Send delivers the message and returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
	// Name identifies the backend ("resend" or "smtp").
	Name() string
}

// New selects a relay backend from configuration.
func New(cfg config.MailerConfig) (Relay, error) {
	switch cfg.Method {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("%w: resend api key missing", ErrNotConfigured)
		}
		return NewResendRelay(cfg.ResendAPIKey), nil
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("%w: smtp host missing", ErrNotConfigured)
		}
		return NewSMTPRelay(cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("unknown mailer method %q", cfg.Method)
	}
}
