// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matthewemeh/pollara-build-gems-sub001/models"
	"github.com/matthewemeh/pollara-build-gems-sub001/testutil"
)

// TestFullVotingWorkflow tests the complete end-to-end workflow:
// 1. Voters request vote tokens
// 2. Voters cast election ballots
// 3. Each ballot verifies against the ledger
// 4. A duplicate cast is rejected
// 5. The listing shows redacted records
// 6. Results reflect every ballot
func TestFullVotingWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg, c, n := newTestDeps(t, db)
	tokenHandler := NewTokenHandler(db, cfg)
	voteHandler := NewVoteHandler(db, cfg, c, n)
	verifyHandler := NewVerifyHandler(db, cfg, c)
	listingHandler := NewListingHandler(db, cfg, c)

	electionID := testutil.CreateTestElection(t, db, models.StatusOpen, "LT-01")

	// Step 1: register 3 voters and issue their tokens via the handler
	voterIDs := []string{
		testutil.CreateTestVoter(t, db, "LT"),
		testutil.CreateTestVoter(t, db, "LT"),
		testutil.CreateTestVoter(t, db, "LT-01"),
	}
	tokens := make([]string, 0, len(voterIDs))

	for _, voterID := range voterIDs {
		req := testutil.MakeRequest("POST", "/tokens", nil, map[string]string{"X-Voter-ID": voterID})
		w := httptest.NewRecorder()
		tokenHandler.Issue(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Issue token for %s failed: %d - %s", voterID, w.Code, w.Body.String())
		}

		var resp models.IssueTokenResponse
		testutil.AssertJSON(t, w, &resp)
		tokens = append(tokens, resp.Token)
	}
	t.Logf("Step 1 - Issued %d tokens", len(tokens))

	// Step 2: each voter casts a ballot
	parties := []string{"party-1", "party-1", "party-2"}
	voteIDs := make([]string, 0, len(voterIDs))

	for i, voterID := range voterIDs {
		w := castElection(t, voteHandler, electionID, models.CastElectionVoteRequest{
			PartyID:       parties[i],
			ContestantIDs: []string{"cand-1"},
		}, map[string]string{"X-Voter-ID": voterID, "X-Vote-Token": tokens[i]})

		if w.Code != http.StatusCreated {
			t.Fatalf("Step 2 - Cast for %s failed: %d - %s", voterID, w.Code, w.Body.String())
		}

		var resp models.CastVoteResponse
		testutil.AssertJSON(t, w, &resp)
		voteIDs = append(voteIDs, resp.VoteID)
	}
	t.Logf("Step 2 - Cast %d ballots", len(voteIDs))

	// Step 3: every receipt id verifies as valid
	for _, voteID := range voteIDs {
		w := verifyVote(t, verifyHandler, voteID)
		if w.Code != http.StatusOK {
			t.Fatalf("Step 3 - Verify %s failed: %d - %s", voteID, w.Code, w.Body.String())
		}

		var resp models.VerifyVoteResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Status != models.VerifyValid {
			t.Fatalf("Step 3 - Expected %q for %s, got %q", models.VerifyValid, voteID, resp.Status)
		}
	}
	t.Log("Step 3 - All ballots verified")

	// Step 4: a second cast by the first voter is rejected, fresh token or not
	secret := testutil.IssueTestToken(t, db, cfg, voterIDs[0])
	w := castElection(t, voteHandler, electionID, models.CastElectionVoteRequest{
		PartyID: "party-2",
	}, map[string]string{"X-Voter-ID": voterIDs[0], "X-Vote-Token": secret})
	testutil.AssertStatus(t, w, http.StatusConflict)
	t.Log("Step 4 - Duplicate cast rejected")

	// Step 5: the listing shows all 3 records with redacted hashes
	req := testutil.MakeRequest("GET", "/elections/"+electionID+"/votes", nil, nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	listingHandler.ListElectionVotes(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var listing models.ListVotesResponse
	testutil.AssertJSON(t, w, &listing)
	if listing.Total != 3 {
		t.Fatalf("Step 5 - Expected 3 listed votes, got %d", listing.Total)
	}
	t.Log("Step 5 - Listing complete")

	// Step 6: results match the cast ballots
	req = testutil.MakeRequest("GET", "/elections/"+electionID+"/results", nil, nil)
	req.SetPathValue("id", electionID)
	w = httptest.NewRecorder()
	listingHandler.ElectionResults(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var results models.ResultsResponse
	testutil.AssertJSON(t, w, &results)

	counts := map[string]int64{}
	for _, e := range results.Entries {
		counts[e.Key] = e.Count
	}
	if counts["party-1"] != 2 || counts["party-2"] != 1 || counts["cand-1"] != 3 {
		t.Fatalf("Step 6 - Unexpected results: %v", counts)
	}
	if results.Total != 3 {
		t.Fatalf("Step 6 - Expected 3 total ballots, got %d", results.Total)
	}
	t.Log("Step 6 - Results verified")
}
