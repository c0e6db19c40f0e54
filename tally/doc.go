// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally maintains the aggregated result counters per subject.

ApplyChoice increments every choice key of a ballot in one transaction;
either all counters move or none do:

	store := tally.NewStore(db)
	err := store.ApplyChoice(subjectID, []string{"party-1", "cand-3"})

Aggregates are created lazily on the first ballot. Entries returns the
counters sorted by count, then key.

The tally commit and the ledger append are separate transactions; see
the casting pipeline in the handlers package for the ordering and its
crash window.
*/
package tally
