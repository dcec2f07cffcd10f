package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mhartmann/leadcrm/internal/config"
)

// SMTPRelay delivers mail through a plain SMTP endpoint.
type SMTPRelay struct {
	cfg config.SMTPConfig
}

// NewSMTPRelay creates an SMTP-backed relay.
func NewSMTPRelay(cfg config.SMTPConfig) *SMTPRelay {
	return &SMTPRelay{cfg: cfg}
}

// Name implements Relay.
func (s *SMTPRelay) Name() string { return "smtp" }

// Send implements Relay. The context is honored only up to connection
// setup; net/smtp offers no mid-session cancellation.
func (s *SMTPRelay) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.Host)
	payload := buildMIME(msg, messageID)

	if err := smtp.SendMail(addr, auth, msg.FromEmail, []string{msg.To}, payload); err != nil {
		return "", fmt.Errorf("smtp delivery failed: %w", err)
	}

	return messageID, nil
}

func buildMIME(msg Message, messageID string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", encodeAddress(msg.FromName, msg.FromEmail))
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func encodeAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), email)
}
