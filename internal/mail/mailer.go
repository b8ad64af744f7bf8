// Package mail delivers transactional mail for the auth flow.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Mailer delivers transactional mail. The logic layer depends on this
// interface only; tests substitute fakes.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates a mailer for the given relay. Auth is skipped when
// username is empty (local relays).
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

// SendPasswordReset mails a password-reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildPasswordResetMessage(m.from, to, link)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %q: %w", to, err)
	}
	return nil
}

// buildPasswordResetMessage renders the RFC 5322 message body.
func buildPasswordResetMessage(from, to, link string) []byte {
	return fmt.Appendf(nil,
		"From: %s\r\nTo: %s\r\nSubject: Reset Password\r\n\r\nClick this link to reset your password: %s\r\n",
		from, to, link,
	)
}

// LogMailer logs the reset link instead of sending it. Used in development
// when no SMTP relay is configured.
type LogMailer struct{}

// SendPasswordReset logs the link at info level.
func (LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	zerolog.Ctx(ctx).Info().
		Str("to", to).
		Str("link", link).
		Msg("Password reset link (mail delivery not configured)")
	return nil
}
