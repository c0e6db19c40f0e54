// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package eligibility

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matthewemeh/pollara-build-gems-sub001/models"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrVoterNotFound   = errors.New("voter not found")
	ErrSubjectNotOpen  = errors.New("subject is not open for voting")
	ErrScopeMismatch   = errors.New("voter locality does not match election scope")
	ErrDuplicateVote   = errors.New("voter has already cast a ballot for this subject")
)

// Subject is the admission view of an election or form.
type Subject struct {
	ID            string
	Type          string
	Title         string
	ScopeCode     string
	IdentityCheck bool
	StartTime     time.Time
	EndTime       time.Time
}

// Status derives the subject's lifecycle state from the clock. There are no
// stored transitions: a subject is open exactly while now falls inside its
// start/end window.
func (s Subject) Status(now time.Time) string {
	switch {
	case now.Before(s.StartTime):
		return models.StatusNotStarted
	case now.After(s.EndTime):
		return models.StatusClosed
	default:
		return models.StatusOpen
	}
}

// MatchesScope reports whether a voter locality code is admissible for an
// election scope code: the locality must be a prefix of the scope.
func MatchesScope(localityCode, scopeCode string) bool {
	return strings.HasPrefix(scopeCode, localityCode)
}

// Guard validates subject state, voter scope, and prior-vote absence before
// a cast is admitted. All checks run before any state is written.
type Guard struct {
	db *sql.DB
}

func NewGuard(db *sql.DB) *Guard {
	return &Guard{db: db}
}

// LoadElection fetches an election as an admission Subject.
func (g *Guard) LoadElection(id string) (Subject, error) {
	var s Subject
	err := g.db.QueryRow(`
		SELECT id, title, scope_code, start_time, end_time FROM election WHERE id = $1
	`, id).Scan(&s.ID, &s.Title, &s.ScopeCode, &s.StartTime, &s.EndTime)
	if err == sql.ErrNoRows {
		return Subject{}, ErrSubjectNotFound
	}
	if err != nil {
		return Subject{}, fmt.Errorf("failed to query election: %w", err)
	}
	s.Type = models.SubjectElection
	s.IdentityCheck = true
	return s, nil
}

// LoadForm fetches a form as an admission Subject.
func (g *Guard) LoadForm(id string) (Subject, error) {
	var s Subject
	err := g.db.QueryRow(`
		SELECT id, title, identity_check_enabled, start_time, end_time FROM form WHERE id = $1
	`, id).Scan(&s.ID, &s.Title, &s.IdentityCheck, &s.StartTime, &s.EndTime)
	if err == sql.ErrNoRows {
		return Subject{}, ErrSubjectNotFound
	}
	if err != nil {
		return Subject{}, fmt.Errorf("failed to query form: %w", err)
	}
	s.Type = models.SubjectForm
	return s, nil
}

// VoterByID fetches a voter record.
func (g *Guard) VoterByID(id string) (models.Voter, error) {
	var v models.Voter
	err := g.db.QueryRow(`
		SELECT id, email, locality_code FROM voter WHERE id = $1
	`, id).Scan(&v.ID, &v.Email, &v.LocalityCode)
	if err == sql.ErrNoRows {
		return models.Voter{}, ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

// HasVoted reports whether a voted marker exists for the pair.
func (g *Guard) HasVoted(userID, subjectID string) (bool, error) {
	var exists bool
	err := g.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM voted_marker WHERE user_id = $1 AND subject_id = $2)
	`, userID, subjectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query voted marker: %w", err)
	}
	return exists, nil
}

// Check admits or rejects a cast for an identity-checked subject. It
// verifies the subject window, the voter's scope for elections, and the
// absence of a prior vote.
func (g *Guard) Check(subject Subject, userID string, now time.Time) error {
	if status := subject.Status(now); status != models.StatusOpen {
		return fmt.Errorf("%w: status is %s", ErrSubjectNotOpen, status)
	}

	if subject.Type == models.SubjectElection {
		voter, err := g.VoterByID(userID)
		if err != nil {
			return err
		}
		if !MatchesScope(voter.LocalityCode, subject.ScopeCode) {
			return ErrScopeMismatch
		}
	}

	voted, err := g.HasVoted(userID, subject.ID)
	if err != nil {
		return err
	}
	if voted {
		return ErrDuplicateVote
	}

	return nil
}

// MarkVoted records the authoritative "has voted" fact for the pair. The
// composite primary key makes the insert an atomic claim: when two casts for
// the same pair race, exactly one insert lands and the loser gets
// ErrDuplicateVote. Callers claim the marker before recording the ballot and
// release it with UnmarkVoted if the recording fails.
func (g *Guard) MarkVoted(userID, subjectID, ipHash string) error {
	res, err := g.db.Exec(`
		INSERT INTO voted_marker (user_id, subject_id, ip_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, subject_id) DO NOTHING
	`, userID, subjectID, ipHash)
	if err != nil {
		return fmt.Errorf("failed to insert voted marker: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read marker insert result: %w", err)
	}
	if rows == 0 {
		return ErrDuplicateVote
	}
	return nil
}

// UnmarkVoted releases a claimed marker so the voter can retry after a
// failed cast.
func (g *Guard) UnmarkVoted(userID, subjectID string) error {
	_, err := g.db.Exec(`
		DELETE FROM voted_marker WHERE user_id = $1 AND subject_id = $2
	`, userID, subjectID)
	if err != nil {
		return fmt.Errorf("failed to delete voted marker: %w", err)
	}
	return nil
}
