// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Subject status constants. Status is never stored; it is derived from the
// subject's start/end timestamps at request time.
const (
	StatusNotStarted = "not_started"
	StatusOpen       = "open"
	StatusClosed     = "closed"
)

// Subject type constants
const (
	SubjectElection = "election"
	SubjectForm     = "form"
)

// Verification status constants
const (
	VerifyValid    = "valid"
	VerifyTampered = "tampered"
)

// Request types

type CastElectionVoteRequest struct {
	PartyID       string   `json:"party_id"`
	ContestantIDs []string `json:"contestant_ids"`
}

type CastFormVoteRequest struct {
	OptionIDs []string `json:"option_ids"`
}

// Response types

type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type VerifyVoteResponse struct {
	Status         string         `json:"status"`
	TimestampMs    int64          `json:"timestamp_ms"`
	SubjectSummary SubjectSummary `json:"subject"`
	Message        string         `json:"message"`
}

type SubjectSummary struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type ListVotesResponse struct {
	SubjectID string         `json:"subject_id"`
	Page      int            `json:"page"`
	Limit     int            `json:"limit"`
	Total     int            `json:"total"`
	Votes     []RedactedVote `json:"votes"`
}

// RedactedVote is the listing view of a ledger record. The hash fields are
// shortened to a prefix and suffix so the chain cannot be scraped for
// forgery; full verification requires the dedicated verify endpoint and the
// ballot id handed out at cast time.
type RedactedVote struct {
	ID           string          `json:"id"`
	Index        int64           `json:"index"`
	Hash         string          `json:"hash"`
	PreviousHash string          `json:"previous_hash"`
	TimestampMs  int64           `json:"timestamp_ms"`
	Payload      json.RawMessage `json:"payload"`
	IsInvalid    bool            `json:"is_invalid"`
}

type ResultsResponse struct {
	SubjectID string       `json:"subject_id"`
	Entries   []TallyEntry `json:"entries"`
	Total     int64        `json:"total"`
}

type TallyEntry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type ChainAuditResponse struct {
	SubjectID string `json:"subject_id"`
	Length    int    `json:"length"`
	Valid     bool   `json:"valid"`
	Message   string `json:"message,omitempty"`
}

// Domain types

type Election struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ScopeCode string    `json:"scope_code"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

type Form struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	IdentityCheck bool      `json:"identity_check_enabled"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	CreatedAt     time.Time `json:"created_at"`
}

type Voter struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	LocalityCode string `json:"locality_code"`
}

// BallotPayload is the choice data embedded in a ledger record. SubjectID is
// repeated inside the payload on purpose: verification cross-checks it
// against the record's own subject column.
type BallotPayload struct {
	SubjectID     string   `json:"subject_id"`
	SubjectType   string   `json:"subject_type"`
	PartyID       string   `json:"party_id,omitempty"`
	ContestantIDs []string `json:"contestant_ids,omitempty"`
	OptionIDs     []string `json:"option_ids,omitempty"`
}

// ChoiceKeys returns the tally keys credited by this ballot.
func (p BallotPayload) ChoiceKeys() []string {
	var keys []string
	if p.PartyID != "" {
		keys = append(keys, p.PartyID)
	}
	keys = append(keys, p.ContestantIDs...)
	keys = append(keys, p.OptionIDs...)
	return keys
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
