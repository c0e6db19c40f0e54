// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - election: Election metadata, scope, and voting window
  - form: Form metadata, identity check flag, and voting window
  - voter: Registered voters with locality codes
  - vote_token: One hashed vote token per user
  - voted_marker: One marker per (user, subject) pair
  - election_vote / form_vote: Hash-linked ballot ledgers
  - result_aggregate / result_entry: Tallied counts per choice key
  - notification: In-app ballot receipts

# Relationships

	election 1──* election_vote
	form     1──* form_vote
	result_aggregate 1──* result_entry

Ledger rows reference their subject; result entries cascade with their
aggregate.

# Constraints

  - vote_token: user_id primary key (one live token per user)
  - voted_marker: (user_id, subject_id) primary key
  - ledgers: UNIQUE(subject_id, idx) and a partial index on the tail row
*/
package db
