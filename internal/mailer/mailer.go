package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/avieira/tourbase-be/internal/config"
)

// Mailer sends the out-of-band notifications the auth flows trigger. Both
// calls are side-effect-only; the core consumes nothing beyond the error.
type Mailer interface {
	SendWelcome(to, name, contextURL string) error
	SendPasswordReset(to, name, resetURL string) error
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer bound to the configured relay.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.EmailFrom,
	}
}

// SendWelcome greets a freshly signed-up user.
func (m *SMTPMailer) SendWelcome(to, name, contextURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Tourbase, we're glad to have you!\nVisit your account page any time: %s\n",
		name, contextURL,
	)
	return m.send(to, "Welcome to Tourbase!", body)
}

// SendPasswordReset delivers the one-time reset link. The cleartext token
// only ever travels through this channel.
func (m *SMTPMailer) SendPasswordReset(to, name, resetURL string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nForgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s\nThe link is valid for 10 minutes. If you didn't forget your password, please ignore this email.\n",
		name, resetURL,
	)
	return m.send(to, "Your password reset token (valid for 10 minutes)", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
