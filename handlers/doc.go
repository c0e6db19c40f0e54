// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Pollara API.

# Handler Types

Each handler is a struct with database, config, and cache dependencies:

  - TokenHandler: Vote token issuance
  - VoteHandler: Ballot casting for elections and forms
  - VerifyHandler: Single-ballot and whole-chain verification
  - ListingHandler: Redacted vote listings and tallied results

Handlers are created via constructor functions:

	voteHandler := handlers.NewVoteHandler(db, cfg, c, notifier)

All handlers share one cache so a cast invalidates the listings and
results other handlers serve.

# Casting Pipeline

A cast runs through, in order: eligibility guard, token check, marker
claim, tally transaction, ledger append, then side effects (token
consumption, receipt, cache invalidation).

	POST /tokens                → Issue (returns token)
	POST /elections/{id}/votes  → CastElectionVote
	POST /forms/{id}/votes      → CastFormVote

Identity-checked casts require the X-Voter-ID and X-Vote-Token headers.
Forms with identity checks disabled accept anonymous, repeatable
ballots while open.

The tally commit and the ledger append are separate transactions. A
crash between the two leaves a counter increment with no ledger record;
that window is documented on the pipeline and needs reconciliation
tooling rather than runtime healing.

# Verification

	GET /votes/{id}/verify           → VerifyVote
	GET /elections/{id}/chain/verify → VerifyElectionChain
	GET /forms/{id}/chain/verify     → VerifyFormChain

A tampered finding persists is_invalid on the record and evicts the
subject's cached listings.

# Listings and Results

	GET /elections/{id}/votes   → ListElectionVotes (paginated, redacted)
	GET /forms/{id}/votes       → ListFormVotes
	GET /elections/{id}/results → ElectionResults
	GET /forms/{id}/results     → FormResults
*/
package handlers
