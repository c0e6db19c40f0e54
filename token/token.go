// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/matthewemeh/pollara-build-gems-sub001/auth"
)

var (
	// ErrTokenExpired is returned when no live token exists for the user,
	// either because none was issued or because the TTL has lapsed.
	ErrTokenExpired = errors.New("vote token expired or not issued")

	// ErrTokenInvalid is returned when the candidate secret does not match
	// the stored hash. The token is NOT consumed on a failed match; the
	// voter may retry until the TTL expires.
	ErrTokenInvalid = errors.New("vote token invalid")
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 5 * time.Minute

// Service issues and consumes one-time vote credentials. Only a salted
// one-way hash of the secret is ever persisted; the plaintext is returned
// exactly once at issue time.
type Service struct {
	db   *sql.DB
	salt string
	ttl  time.Duration
}

func NewService(db *sql.DB, salt string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{db: db, salt: salt, ttl: ttl}
}

// Issue creates a fresh token for the user, replacing any outstanding one,
// and returns the plaintext secret and its expiry.
func (s *Service) Issue(userID string) (string, time.Time, error) {
	secret, err := auth.GenerateVoteSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(s.ttl)
	_, err = s.db.Exec(`
		INSERT INTO vote_token (user_id, secret_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET secret_hash = $2, expires_at = $3, created_at = NOW()
	`, userID, auth.HashSecret(userID, secret, s.salt), expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store vote token: %w", err)
	}

	return secret, expiresAt, nil
}

// Verify checks a candidate secret against the user's stored token without
// consuming it. Used during admission so the token is only spent once the
// ballot is actually on the ledger.
func (s *Service) Verify(userID, candidate string) error {
	var storedHash string
	var expiresAt time.Time
	err := s.db.QueryRow(`
		SELECT secret_hash, expires_at FROM vote_token WHERE user_id = $1
	`, userID).Scan(&storedHash, &expiresAt)
	if err == sql.ErrNoRows {
		return ErrTokenExpired
	}
	if err != nil {
		return fmt.Errorf("failed to query vote token: %w", err)
	}

	if time.Now().After(expiresAt) {
		// Lazy cleanup; the cron sweep handles the rest.
		s.db.Exec(`DELETE FROM vote_token WHERE user_id = $1`, userID)
		return ErrTokenExpired
	}

	if auth.VerifySecret(userID, candidate, s.salt, storedHash) != nil {
		return ErrTokenInvalid
	}

	return nil
}

// Consume verifies the candidate secret and deletes the token on success.
// A failed match leaves the token in place.
func (s *Service) Consume(userID, candidate string) error {
	if err := s.Verify(userID, candidate); err != nil {
		return err
	}

	_, err := s.db.Exec(`DELETE FROM vote_token WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to consume vote token: %w", err)
	}

	return nil
}

// PruneExpired deletes all lapsed tokens and returns how many were removed.
func (s *Service) PruneExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM vote_token WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune vote tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
