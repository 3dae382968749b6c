package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/email"
)

// Sender is an interface for sending emails
type Sender interface {
	Send(ctx context.Context, email *email.OutboundEmail) error
}

// FromConfig builds the configured sender. An unset provider yields a
// NoopSender so the pipeline can run without outbound mail.
func FromConfig(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "resend":
		if cfg.ResendKey == "" {
			return nil, fmt.Errorf("mail provider resend requires resend_key")
		}
		return NewResendSender(cfg.ResendKey), nil
	case "smtp":
		if cfg.Host == "" {
			return nil, fmt.Errorf("mail provider smtp requires host")
		}
		return NewSMTPSender(cfg.Host, cfg.Port, cfg.Username, cfg.Password), nil
	case "", "none":
		return &NoopSender{}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.Provider)
	}
}

// SMTPSender sends emails via SMTP
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (s *SMTPSender) Send(ctx context.Context, e *email.OutboundEmail) error {
	// Build recipient list
	var recipients []string
	for _, to := range e.To {
		recipients = append(recipients, to.Address)
	}
	for _, cc := range e.Cc {
		recipients = append(recipients, cc.Address)
	}
	for _, bcc := range e.Bcc {
		recipients = append(recipients, bcc.Address)
	}

	// Build message
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", e.From.String()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", formatAddresses(e.To)))
	if len(e.Cc) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", formatAddresses(e.Cc)))
	}
	if e.ReplyTo != nil {
		msg.WriteString(fmt.Sprintf("Reply-To: %s\r\n", e.ReplyTo.String()))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", e.Subject))
	if e.InReplyTo != "" {
		msg.WriteString(fmt.Sprintf("In-Reply-To: %s\r\n", e.InReplyTo))
	}
	if len(e.References) > 0 {
		msg.WriteString(fmt.Sprintf("References: %s\r\n", strings.Join(e.References, " ")))
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(e.TextBody)

	// Send via SMTP
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	return smtp.SendMail(addr, auth, e.From.Address, recipients, []byte(msg.String()))
}

func formatAddresses(addrs []email.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// NoopSender is a sender that does nothing (for testing or when sending is disabled)
type NoopSender struct{}

func (s *NoopSender) Send(ctx context.Context, e *email.OutboundEmail) error {
	return nil
}
