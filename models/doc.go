// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CastElectionVoteRequest: party_id, contestant_ids
  - CastFormVoteRequest: option_ids

# Response Types

Types for JSON responses:

  - IssueTokenResponse: token, expires_at
  - CastVoteResponse: vote_id, message
  - VerifyVoteResponse: status, timestamp_ms, subject, message
  - ListVotesResponse: subject_id, page, limit, total, votes
  - ResultsResponse: subject_id, entries, total
  - ChainAuditResponse: subject_id, length, valid, message
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Election: scope code and voting window
  - Form: identity check flag and voting window
  - Voter: locality code and email
  - BallotPayload: what gets written to the ledger

# Constants

Status values:

	StatusNotStarted = "not_started"
	StatusOpen       = "open"
	StatusClosed     = "closed"

Subject types:

	SubjectElection = "election"
	SubjectForm     = "form"

Verification outcomes:

	VerifyValid    = "valid"
	VerifyTampered = "tampered"
*/
package models
