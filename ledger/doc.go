// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger implements the per-subject hash-linked ballot chains.

# Records

Every ballot is a Record on its subject's chain. A record's hash covers
its index, the previous record's hash, its timestamp, and the canonical
encoding of its payload:

	hash = SHA-256(index ‖ previousHash ‖ timestampMs ‖ canonicalPayload)

The first record of a chain has index 0 and an empty previous hash. The
newest record is flagged is_tail.

# Appending

Append adds a record in a single transaction:

	store := ledger.NewElectionStore(db)
	rec, err := store.Append(subjectID, payloadJSON)

The subject row is locked for the duration of the transaction, so
concurrent appends to the same subject serialize and every chain stays a
single unforked sequence. A UNIQUE(subject_id, idx) constraint backs the
lock up. Appends to different subjects do not contend.

# Verification

VerifyRecord recomputes a record's hash and checks its link to the
predecessor; VerifyChain walks a whole chain from genesis:

	finding := ledger.VerifyRecord(target, predecessor)
	finding = ledger.VerifyChain(records)

Both return a Finding with a human-readable message on failure. Neither
touches the database; MarkInvalid persists a tamper finding and never
clears it.

# Redaction

Listings expose hashes through RedactHash, which keeps only a short
prefix and suffix of the digest.
*/
package ledger
