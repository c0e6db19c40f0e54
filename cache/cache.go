// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is the read-through cache used for paginated vote listings, tally
// reads, and verification results. Implementations must support prefix
// invalidation so every cached page for a subject can be dropped in one
// call.
type Cache interface {
	// Get fetches a cached value; the second return reports a hit.
	Get(key string) ([]byte, bool)

	// SetWithTTL stores a value that expires after ttl.
	SetWithTTL(key string, value []byte, ttl time.Duration)

	// DeleteByPattern removes every key that starts with prefix.
	DeleteByPattern(prefix string)
}

// Key builders. All subject-scoped keys share the subject prefix so a
// single DeleteByPattern call invalidates them together.

func VotesPrefix(subjectType, subjectID string) string {
	return fmt.Sprintf("votes:%s:%s:", subjectType, subjectID)
}

func VotesKey(subjectType, subjectID string, page, limit int, sort string) string {
	return fmt.Sprintf("%s%d:%d:%s", VotesPrefix(subjectType, subjectID), page, limit, sort)
}

func ResultsKey(subjectType, subjectID string) string {
	return fmt.Sprintf("results:%s:%s", subjectType, subjectID)
}

func VerifyKey(voteID string) string {
	return fmt.Sprintf("verify:%s", voteID)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. Expired entries are dropped lazily on
// read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) SetWithTTL(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (m *Memory) DeleteByPattern(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
}
