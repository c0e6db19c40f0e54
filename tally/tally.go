// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// ErrNoChoices is returned when a ballot credits no tally keys.
var ErrNoChoices = errors.New("ballot contains no choice keys")

// Entry is one running count in a subject's aggregate.
type Entry struct {
	Key   string
	Count int64
}

// Store maintains the per-subject running tallies.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ApplyChoice credits every key in a ballot's choice set by one, inside a
// single transaction. The aggregate row is created lazily on a subject's
// first cast. Either all keys commit or none do: an abort leaves the tallies
// untouched and the caller must fail the whole cast.
func (s *Store) ApplyChoice(subjectID string, keys []string) error {
	if len(keys) == 0 {
		return ErrNoChoices
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tally transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO result_aggregate (subject_id)
		VALUES ($1)
		ON CONFLICT (subject_id) DO NOTHING
	`, subjectID)
	if err != nil {
		return fmt.Errorf("failed to ensure aggregate row: %w", err)
	}

	for _, key := range keys {
		_, err = tx.Exec(`
			INSERT INTO result_entry (subject_id, choice_key, count)
			VALUES ($1, $2, 1)
			ON CONFLICT (subject_id, choice_key) DO UPDATE SET count = result_entry.count + 1
		`, subjectID, key)
		if err != nil {
			return fmt.Errorf("failed to credit choice %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tally transaction: %w", err)
	}

	return nil
}

// Entries returns a subject's tally entries sorted by descending count, ties
// broken by key. Returns an empty slice for subjects with no casts yet.
func (s *Store) Entries(subjectID string) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT choice_key, count FROM result_entry WHERE subject_id = $1
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tally entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tally entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tally entries: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})

	return entries, nil
}
