// Package notify delivers user-facing notifications. Delivery is
// fire-and-forget: the core's correctness never depends on a mail getting
// through, so senders only report errors for logging.
package notify

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Sender delivers an invite notification to a user.
type Sender interface {
	SendInvite(to, accountName, role string) error
}

// Mailer sends notifications over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer creates a Mailer for the given SMTP endpoint.
func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// SendInvite mails a user that they were granted access to an account.
func (m *Mailer) SendInvite(to, accountName, role string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("You were added to %s", accountName))
	msg.SetBody("text/plain", fmt.Sprintf(
		"You now have %s access to the account %q. Log in to see its events and payments.",
		role, accountName,
	))
	return m.dialer.DialAndSend(msg)
}

// Noop is the sender used when no SMTP endpoint is configured. It logs the
// would-be notification at debug level and drops it.
type Noop struct{}

// SendInvite logs and discards the notification.
func (Noop) SendInvite(to, accountName, role string) error {
	slog.Debug("Invite notification skipped, mail not configured",
		"to", to, "account", accountName, "role", role)
	return nil
}
