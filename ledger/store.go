// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewemeh/pollara-build-gems-sub001/canonical"
)

var (
	// ErrRecordNotFound is returned when a vote record could not be found.
	ErrRecordNotFound = errors.New("vote record not found")

	// ErrSubjectNotFound is returned when an append targets a subject that
	// has no row in the subject table.
	ErrSubjectNotFound = errors.New("subject not found")
)

// Store persists one ledger table. There is one ledger table per subject
// type, so the service holds one Store for elections and one for forms.
type Store struct {
	db           *sql.DB
	table        string // ledger table name
	subjectTable string // table whose row is locked to serialize appends
}

// NewElectionStore returns the Store for the election ledger.
func NewElectionStore(db *sql.DB) *Store {
	return &Store{db: db, table: "election_vote", subjectTable: "election"}
}

// NewFormStore returns the Store for the form ledger.
func NewFormStore(db *sql.DB) *Store {
	return &Store{db: db, table: "form_vote", subjectTable: "form"}
}

// Append writes a new record to the subject's chain and returns it.
//
// The whole append runs in one transaction holding a row lock on the subject
// row, so concurrent appends for the same subject queue up and each observes
// the tail left by the previous one. Two records can never share an index or
// a previous hash; UNIQUE(subject_id, idx) backstops the lock. The old
// tail's is_tail flag is flipped and the new record inserted in the same
// transaction, so exactly one tail exists at rest.
func (s *Store) Append(subjectID string, payload json.RawMessage) (Record, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	// Serialize per-subject appends on the subject row.
	var locked string
	err = tx.QueryRow(
		fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, s.subjectTable),
		subjectID,
	).Scan(&locked)
	if err == sql.ErrNoRows {
		return Record{}, ErrSubjectNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to lock subject row: %w", err)
	}

	var (
		tailID   string
		tailIdx  int64
		tailHash string
	)
	err = tx.QueryRow(
		fmt.Sprintf(`SELECT id, idx, hash FROM %s WHERE subject_id = $1 AND is_tail`, s.table),
		subjectID,
	).Scan(&tailID, &tailIdx, &tailHash)

	hasTail := err == nil
	if err != nil && err != sql.ErrNoRows {
		return Record{}, fmt.Errorf("failed to read chain tail: %w", err)
	}

	nextIndex := int64(0)
	previousHash := ""
	if hasTail {
		nextIndex = tailIdx + 1
		previousHash = tailHash
	}

	canon, err := canonical.Canonicalize(payload)
	if err != nil {
		return Record{}, fmt.Errorf("failed to canonicalize payload: %w", err)
	}

	rec := Record{
		ID:           uuid.NewString(),
		SubjectID:    subjectID,
		Index:        nextIndex,
		PreviousHash: previousHash,
		TimestampMs:  time.Now().UnixMilli(),
		Payload:      payload,
		IsTail:       true,
	}
	rec.Hash = ComputeHash(rec.Index, rec.PreviousHash, rec.TimestampMs, canon)

	if hasTail {
		_, err = tx.Exec(
			fmt.Sprintf(`UPDATE %s SET is_tail = FALSE WHERE id = $1`, s.table),
			tailID,
		)
		if err != nil {
			return Record{}, fmt.Errorf("failed to clear previous tail: %w", err)
		}
	}

	_, err = tx.Exec(
		fmt.Sprintf(`
			INSERT INTO %s (id, subject_id, idx, hash, previous_hash, timestamp_ms, payload, is_tail)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		`, s.table),
		rec.ID, rec.SubjectID, rec.Index, rec.Hash, rec.PreviousHash, rec.TimestampMs, []byte(rec.Payload),
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to insert vote record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("failed to commit append: %w", err)
	}

	return rec, nil
}

const recordColumns = `id, subject_id, idx, hash, previous_hash, timestamp_ms, payload, is_tail, is_invalid`

func scanRecord(row interface{ Scan(...interface{}) error }) (Record, error) {
	var rec Record
	var payload []byte
	err := row.Scan(
		&rec.ID, &rec.SubjectID, &rec.Index, &rec.Hash, &rec.PreviousHash,
		&rec.TimestampMs, &payload, &rec.IsTail, &rec.IsInvalid,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

// ByID fetches a single record by its id.
func (s *Store) ByID(id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, recordColumns, s.table), id,
	))
	if err == sql.ErrNoRows {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query vote record: %w", err)
	}
	return rec, nil
}

// ByIndex fetches the record at a given chain position for a subject.
func (s *Store) ByIndex(subjectID string, index int64) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM %s WHERE subject_id = $1 AND idx = $2`, recordColumns, s.table),
		subjectID, index,
	))
	if err == sql.ErrNoRows {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to query vote record: %w", err)
	}
	return rec, nil
}

// List returns one page of a subject's chain ordered by index, plus the
// total record count. sort is "asc" or "desc"; page is 1-based.
func (s *Store) List(subjectID string, page, limit int, sort string) ([]Record, int, error) {
	order := "ASC"
	if sort == "desc" {
		order = "DESC"
	}

	var total int
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE subject_id = $1`, s.table), subjectID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vote records: %w", err)
	}

	rows, err := s.db.Query(
		fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE subject_id = $1
			ORDER BY idx %s
			LIMIT $2 OFFSET $3
		`, recordColumns, s.table, order),
		subjectID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vote records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vote record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate vote records: %w", err)
	}

	return records, total, nil
}

// ChainFor returns a subject's full chain ordered by index.
func (s *Store) ChainFor(subjectID string) ([]Record, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM %s WHERE subject_id = $1 ORDER BY idx ASC`, recordColumns, s.table),
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chain: %w", err)
	}

	return records, nil
}

// MarkInvalid sets the record's is_invalid flag. The flag is monotonic: it
// is never cleared once set.
func (s *Store) MarkInvalid(id string) error {
	_, err := s.db.Exec(
		fmt.Sprintf(`UPDATE %s SET is_invalid = TRUE WHERE id = $1`, s.table), id,
	)
	if err != nil {
		return fmt.Errorf("failed to flag vote record: %w", err)
	}
	return nil
}

// CountFor returns the number of ledger records for a subject.
func (s *Store) CountFor(subjectID string) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE subject_id = $1`, s.table), subjectID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count vote records: %w", err)
	}
	return n, nil
}
