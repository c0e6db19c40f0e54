// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package eligibility decides whether a cast is admitted.

# Subject Status

A subject's open/closed state is derived from the clock against its
start and end times, never stored:

	status := subject.Status(time.Now()) // not_started | open | closed

Only open subjects accept ballots.

# Scope Matching

Election admission requires the voter's locality code to be a prefix of
the election's scope code:

	eligibility.MatchesScope("LT", "LT-01") // true
	eligibility.MatchesScope("LV", "LT-01") // false

Forms carry no scope; their gate is the identity check flag.

# The Guard

Guard runs the full admission (window, registration, scope, prior vote)
and owns the voted markers:

	guard := eligibility.NewGuard(db)
	err := guard.Check(subject, userID, time.Now())

MarkVoted claims the (user, subject) marker atomically before the
ballot is recorded; a racing duplicate loses with ErrDuplicateVote, and
UnmarkVoted releases the claim if recording fails. The marker, not the
ledger, is the authoritative duplicate check.
*/
package eligibility
