// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matthewemeh/pollara-build-gems-sub001/canonical"
)

// Record is one link in a subject's ballot chain. All fields except IsTail
// and IsInvalid are immutable once written; records are never deleted.
type Record struct {
	ID           string          `json:"id"`
	SubjectID    string          `json:"subject_id"`
	Index        int64           `json:"index"`
	Hash         string          `json:"hash"`
	PreviousHash string          `json:"previous_hash"`
	TimestampMs  int64           `json:"timestamp_ms"`
	Payload      json.RawMessage `json:"payload"`
	IsTail       bool            `json:"is_tail"`
	IsInvalid    bool            `json:"is_invalid"`
}

// ComputeHash computes the hash of a record from its constituent fields:
// SHA-256 over index, previous hash, timestamp and the canonical payload
// encoding, in that order.
func ComputeHash(index int64, previousHash string, timestampMs int64, canonicalPayload string) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(index, 10)))
	h.Write([]byte(previousHash))
	h.Write([]byte(strconv.FormatInt(timestampMs, 10)))
	h.Write([]byte(canonicalPayload))
	return hex.EncodeToString(h.Sum(nil))
}

// Finding is the outcome of an integrity check. A tampered record is a
// normal result, not an error.
type Finding struct {
	Valid   bool
	Message string
}

func invalidf(format string, args ...interface{}) Finding {
	return Finding{Valid: false, Message: fmt.Sprintf(format, args...)}
}

// VerifyRecord recomputes a record's hash from its own stored fields and
// checks its linkage against the claimed predecessor (nil for a genesis
// record). It is a pure function: it never touches storage and never
// produces a false result for unmodified input.
func VerifyRecord(target Record, predecessor *Record) Finding {
	var payload struct {
		SubjectID string `json:"subject_id"`
	}
	if err := json.Unmarshal(target.Payload, &payload); err != nil {
		return invalidf("payload is not valid JSON: %v", err)
	}
	if payload.SubjectID != target.SubjectID {
		return invalidf("payload subject reference %q does not match ledger subject %q",
			payload.SubjectID, target.SubjectID)
	}

	canon, err := canonical.Canonicalize(target.Payload)
	if err != nil {
		return invalidf("payload cannot be canonicalized: %v", err)
	}
	expected := ComputeHash(target.Index, target.PreviousHash, target.TimestampMs, canon)
	if expected != target.Hash {
		return invalidf("stored hash does not match recomputed hash")
	}

	if predecessor != nil && predecessor.Hash != target.PreviousHash {
		return invalidf("previous-hash link does not match record %d", predecessor.Index)
	}

	return Finding{Valid: true, Message: "record hash and chain linkage verified"}
}

// VerifyChain validates an entire chain ordered by index: the genesis record
// must carry an empty previous hash, indices must be consecutive from zero,
// and every record must verify against its predecessor.
func VerifyChain(records []Record) Finding {
	if len(records) == 0 {
		return Finding{Valid: true, Message: "empty chain"}
	}

	if records[0].Index != 0 {
		return invalidf("chain does not start at index 0")
	}
	if records[0].PreviousHash != "" {
		return invalidf("genesis record carries a previous hash")
	}
	if f := VerifyRecord(records[0], nil); !f.Valid {
		return invalidf("record 0: %s", f.Message)
	}

	for i := 1; i < len(records); i++ {
		if records[i].Index != records[i-1].Index+1 {
			return invalidf("record %d has non-consecutive index %d", i, records[i].Index)
		}
		if f := VerifyRecord(records[i], &records[i-1]); !f.Valid {
			return invalidf("record %d: %s", i, f.Message)
		}
	}

	return Finding{Valid: true, Message: "chain verified"}
}

// Redaction bounds for hash fields in listings.
const (
	redactPrefix = 8
	redactSuffix = 8
)

// RedactHash shortens a hash to its prefix and suffix for listing responses
// so the full chain cannot be scraped.
func RedactHash(hash string) string {
	if len(hash) <= redactPrefix+redactSuffix {
		return hash
	}
	return hash[:redactPrefix] + "..." + hash[len(hash)-redactSuffix:]
}
