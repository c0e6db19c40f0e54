// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Elections (rows managed by the external admin system)
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    scope_code TEXT NOT NULL,
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Form polls (rows managed by the external admin system)
CREATE TABLE IF NOT EXISTS form (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    identity_check_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    start_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Voters (rows managed by the external registration system)
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    locality_code TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- One-time vote credentials; only a one-way hash of the secret is stored
CREATE TABLE IF NOT EXISTS vote_token (
    user_id TEXT PRIMARY KEY,
    secret_hash TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vote_token_expires_at ON vote_token(expires_at);

-- Authoritative "has voted" fact, independent of token state
CREATE TABLE IF NOT EXISTS voted_marker (
    user_id TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    ip_hash TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, subject_id)
);

CREATE INDEX IF NOT EXISTS idx_voted_marker_subject ON voted_marker(subject_id);

-- Election ledger: one hash-linked chain per election
CREATE TABLE IF NOT EXISTS election_vote (
    id TEXT PRIMARY KEY,
    subject_id TEXT NOT NULL REFERENCES election(id),
    idx BIGINT NOT NULL,
    hash TEXT NOT NULL,
    previous_hash TEXT NOT NULL DEFAULT '',
    timestamp_ms BIGINT NOT NULL,
    payload JSONB NOT NULL,
    is_tail BOOLEAN NOT NULL DEFAULT TRUE,
    is_invalid BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (subject_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_election_vote_subject ON election_vote(subject_id, idx);
CREATE INDEX IF NOT EXISTS idx_election_vote_tail ON election_vote(subject_id) WHERE is_tail;

-- Form ledger: same shape as election_vote
CREATE TABLE IF NOT EXISTS form_vote (
    id TEXT PRIMARY KEY,
    subject_id TEXT NOT NULL REFERENCES form(id),
    idx BIGINT NOT NULL,
    hash TEXT NOT NULL,
    previous_hash TEXT NOT NULL DEFAULT '',
    timestamp_ms BIGINT NOT NULL,
    payload JSONB NOT NULL,
    is_tail BOOLEAN NOT NULL DEFAULT TRUE,
    is_invalid BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (subject_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_form_vote_subject ON form_vote(subject_id, idx);
CREATE INDEX IF NOT EXISTS idx_form_vote_tail ON form_vote(subject_id) WHERE is_tail;

-- Running tallies, one aggregate per subject, created lazily on first cast
CREATE TABLE IF NOT EXISTS result_aggregate (
    subject_id TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS result_entry (
    subject_id TEXT NOT NULL REFERENCES result_aggregate(subject_id) ON DELETE CASCADE,
    choice_key TEXT NOT NULL,
    count BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (subject_id, choice_key)
);

-- In-app cast receipts
CREATE TABLE IF NOT EXISTS notification (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    subject TEXT NOT NULL,
    message TEXT NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notification_user ON notification(user_id);
`
