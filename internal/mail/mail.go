package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ase-portfolio/webapp/internal/config"
	log "github.com/sirupsen/logrus"
)

// Sender delivers short out-of-band messages such as upgrade codes. A
// delivery failure must never take the request down; callers downgrade it
// to a warning.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// NewSender builds the sender selected by the mail config. Anything other
// than a fully configured SMTP provider falls back to console delivery.
func NewSender(cfg config.MailConfig) Sender {
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), "smtp") && strings.TrimSpace(cfg.Host) != "" {
		return &SMTPSender{
			host:     cfg.Host,
			port:     cfg.Port,
			username: cfg.Username,
			password: cfg.Password,
			from:     cfg.From,
			fromName: cfg.FromName,
		}
	}
	return &ConsoleSender{}
}

// SMTPSender sends messages through a plain-auth SMTP relay.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// Send delivers the message via SMTP.
func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("smtp: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	fromHeader := s.from
	if s.fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	msg := []byte("From: " + fromHeader + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(addr, auth, s.from, []string{recipient}, msg); err != nil {
		return fmt.Errorf("smtp: send to %s: %w", recipient, err)
	}
	return nil
}

// ConsoleSender writes messages to the server log, for development and for
// accounts registered without an email address.
type ConsoleSender struct{}

// Send logs the message instead of delivering it.
func (s *ConsoleSender) Send(_ context.Context, recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Infof("console delivery: %s", body)
	return nil
}
