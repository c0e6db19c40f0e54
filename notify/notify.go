// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify stores in-app notifications and sends ballot receipts.
package notify

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/matthewemeh/pollara-build-gems-sub001/mail"
)

// Notifier delivers cast receipts. Every receipt is written as an in-app
// notification row; email delivery is attempted on top when the mailer is
// enabled and an address is known.
type Notifier struct {
	db     *sql.DB
	mailer mail.Mailer
}

func New(db *sql.DB, mailer mail.Mailer) *Notifier {
	return &Notifier{db: db, mailer: mailer}
}

// Send stores an in-app notification for the user and mails the same
// message to the given address when possible. Delivery failures are
// reported to the caller but must never fail a cast.
func (n *Notifier) Send(userID, email, subject, message string) error {
	_, err := n.db.Exec(`
		INSERT INTO notification (id, user_id, subject, message, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, uuid.NewString(), userID, subject, message)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if n.mailer.IsEnabled() && email != "" {
		if err := n.mailer.SendTo(subject, message, []string{email}); err != nil {
			return fmt.Errorf("failed to send receipt email: %w", err)
		}
	}

	return nil
}

// SendReceipt formats and delivers the ballot receipt issued after a
// successful cast.
func (n *Notifier) SendReceipt(userID, email, subjectTitle, voteID string) {
	msg := fmt.Sprintf(
		"Your ballot for %q was recorded. Keep this id to verify it later: %s",
		subjectTitle, voteID,
	)
	if err := n.Send(userID, email, "Ballot receipt", msg); err != nil {
		slog.Warn("failed to deliver receipt", "error", err, "user_id", userID, "vote_id", voteID)
	}
}
