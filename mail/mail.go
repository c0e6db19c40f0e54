// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mail wraps an SMTP client for ballot receipt delivery. When no
// SMTP credentials are configured the client runs disabled and every send
// is a no-op.
package mail

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"
)

// Mailer sends ballot receipts to voter email addresses.
type Mailer interface {
	// IsEnabled determines if the smtp server is enabled or not.
	IsEnabled() bool

	// SendTo sends an email to a list of recipient email addresses.
	SendTo(subject, body string, recipients []string) error
}

// client provides an SMTP client for sending emails from a preset email
// address.
//
// client implements the Mailer interface.
type client struct {
	smtp        *goemail.SMTP // SMTP server
	mailName    string        // From name
	mailAddress string        // From email address
	disabled    bool          // Has email been disabled
}

// IsEnabled returns whether the mail server is enabled.
func (c *client) IsEnabled() bool {
	return !c.disabled
}

// SendTo sends an email to a list of recipient email addresses. When the
// client is disabled this is a no-op; an unconfigured deployment still casts
// and verifies ballots normally.
func (c *client) SendTo(subject, body string, recipients []string) error {
	if c.disabled || len(recipients) == 0 {
		return nil
	}

	msg := goemail.NewMessage(c.mailAddress, subject, body)
	msg.SetName(c.mailName)

	for _, v := range recipients {
		msg.AddBCC(v)
	}

	return c.smtp.Send(msg)
}

// NewClient returns a new client. Email is considered disabled if any of the
// required credentials are missing.
func NewClient(host, user, password, emailAddress string, skipVerify bool) (Mailer, error) {
	if host == "" || user == "" || password == "" {
		slog.Info("mail disabled")
		return &client{disabled: true}, nil
	}

	h := fmt.Sprintf("smtps://%v:%v@%v", user, password, host)
	u, err := url.Parse(h)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail host: %w", err)
	}

	slog.Info("mail enabled", "host", fmt.Sprintf("smtps://%v:[password]@%v", user, host))

	a, err := mail.ParseAddress(emailAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail address: %w", err)
	}

	smtp, err := goemail.NewSMTP(u.String(), &tls.Config{
		InsecureSkipVerify: skipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up smtp client: %w", err)
	}

	return &client{
		smtp:        smtp,
		mailName:    a.Name,
		mailAddress: a.Address,
	}, nil
}
