// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matthewemeh/pollara-build-gems-sub001/cliparse"
	"github.com/matthewemeh/pollara-build-gems-sub001/models"
	"github.com/matthewemeh/pollara-build-gems-sub001/testutil"
)

// castTestVote runs a full cast through the vote handler and returns the
// ballot id so verify tests exercise real ledger records.
func castTestVote(t *testing.T, handler *VoteHandler, db *sql.DB, cfg cliparse.Config, electionID string) string {
	t.Helper()

	voterID := testutil.CreateTestVoter(t, db, "LT")
	secret := testutil.IssueTestToken(t, db, cfg, voterID)

	w := castElection(t, handler, electionID, models.CastElectionVoteRequest{
		PartyID:       "party-1",
		ContestantIDs: []string{"cand-1"},
	}, map[string]string{"X-Voter-ID": voterID, "X-Vote-Token": secret})
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CastVoteResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.VoteID
}

func verifyVote(t *testing.T, handler *VerifyHandler, voteID string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("GET", "/votes/"+voteID+"/verify", nil, nil)
	req.SetPathValue("id", voteID)
	w := httptest.NewRecorder()
	handler.VerifyVote(w, req)
	return w
}

func TestVerifyVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg, c, n := newTestDeps(t, db)
	voteHandler := NewVoteHandler(db, cfg, c, n)
	handler := NewVerifyHandler(db, cfg, c)

	electionID := testutil.CreateTestElection(t, db, models.StatusOpen, "LT-01")
	voteID := castTestVote(t, voteHandler, db, cfg, electionID)

	t.Run("valid record", func(t *testing.T) {
		w := verifyVote(t, handler, voteID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VerifyVoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Status != models.VerifyValid {
			t.Errorf("Expected status %q, got %q", models.VerifyValid, resp.Status)
		}
		if resp.SubjectSummary.ID != electionID {
			t.Errorf("Expected subject %s, got %s", electionID, resp.SubjectSummary.ID)
		}
	})

	t.Run("unknown vote id", func(t *testing.T) {
		w := verifyVote(t, handler, "nonexistent")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("tampered payload", func(t *testing.T) {
		tamperedID := castTestVote(t, voteHandler, db, cfg, electionID)

		_, err := db.Exec(`
			UPDATE election_vote SET payload = '{"party_id":"party-9"}'::jsonb WHERE id = $1
		`, tamperedID)
		if err != nil {
			t.Fatalf("Failed to tamper with record: %v", err)
		}

		w := verifyVote(t, handler, tamperedID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VerifyVoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Status != models.VerifyTampered {
			t.Errorf("Expected status %q, got %q", models.VerifyTampered, resp.Status)
		}

		// Verification flags the stored record permanently
		var isInvalid bool
		if err := db.QueryRow(`SELECT is_invalid FROM election_vote WHERE id = $1`, tamperedID).Scan(&isInvalid); err != nil {
			t.Fatalf("Failed to read record: %v", err)
		}
		if !isInvalid {
			t.Error("Expected is_invalid to be set after tamper detection")
		}

		// A repeat verification still reports tampered and the flag never
		// clears, even though the cached response is reused
		w = verifyVote(t, handler, tamperedID)
		testutil.AssertJSON(t, w, &resp)
		if resp.Status != models.VerifyTampered {
			t.Errorf("Expected repeat verification to stay %q, got %q", models.VerifyTampered, resp.Status)
		}
	})

	t.Run("broken link to predecessor", func(t *testing.T) {
		secondID := castTestVote(t, voteHandler, db, cfg, electionID)

		_, err := db.Exec(`
			UPDATE election_vote SET previous_hash = repeat('0', 64) WHERE id = $1
		`, secondID)
		if err != nil {
			t.Fatalf("Failed to break linkage: %v", err)
		}

		w := verifyVote(t, handler, secondID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VerifyVoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Status != models.VerifyTampered {
			t.Errorf("Expected status %q, got %q", models.VerifyTampered, resp.Status)
		}
	})
}

func TestVerifyChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg, c, n := newTestDeps(t, db)
	voteHandler := NewVoteHandler(db, cfg, c, n)
	handler := NewVerifyHandler(db, cfg, c)

	electionID := testutil.CreateTestElection(t, db, models.StatusOpen, "LT-01")
	for i := 0; i < 3; i++ {
		castTestVote(t, voteHandler, db, cfg, electionID)
	}

	auditChain := func(id string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/elections/"+id+"/chain/verify", nil, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.VerifyElectionChain(w, req)
		return w
	}

	t.Run("intact chain", func(t *testing.T) {
		w := auditChain(electionID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ChainAuditResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Valid {
			t.Errorf("Expected valid chain, got message %q", resp.Message)
		}
		if resp.Length != 3 {
			t.Errorf("Expected chain length 3, got %d", resp.Length)
		}
	})

	t.Run("tampered chain", func(t *testing.T) {
		_, err := db.Exec(`
			UPDATE election_vote SET payload = '{"party_id":"party-9"}'::jsonb
			WHERE subject_id = $1 AND idx = 1
		`, electionID)
		if err != nil {
			t.Fatalf("Failed to tamper with chain: %v", err)
		}

		w := auditChain(electionID)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ChainAuditResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Valid {
			t.Error("Expected tampered chain to fail the audit")
		}
	})

	t.Run("unknown subject", func(t *testing.T) {
		w := auditChain("nonexistent")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
