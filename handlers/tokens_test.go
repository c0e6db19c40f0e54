// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matthewemeh/pollara-build-gems-sub001/models"
	"github.com/matthewemeh/pollara-build-gems-sub001/testutil"
)

func TestIssueToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewTokenHandler(db, cfg)

	issue := func(voterID string) *httptest.ResponseRecorder {
		headers := map[string]string{}
		if voterID != "" {
			headers["X-Voter-ID"] = voterID
		}
		req := testutil.MakeRequest("POST", "/tokens", nil, headers)
		w := httptest.NewRecorder()
		handler.Issue(w, req)
		return w
	}

	t.Run("issues token", func(t *testing.T) {
		w := issue("voter-1")
		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.IssueTokenResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Token == "" {
			t.Error("Expected non-empty token")
		}
		if !resp.ExpiresAt.After(time.Now()) {
			t.Errorf("Expected future expiry, got %s", resp.ExpiresAt)
		}

		// Only the hash is stored; the plaintext never touches the database
		var stored string
		if err := db.QueryRow(`SELECT secret_hash FROM vote_token WHERE user_id = 'voter-1'`).Scan(&stored); err != nil {
			t.Fatalf("Failed to read stored token: %v", err)
		}
		if stored == resp.Token {
			t.Error("Token secret must not be stored in plaintext")
		}
	})

	t.Run("reissue replaces previous token", func(t *testing.T) {
		w1 := issue("voter-2")
		testutil.AssertStatus(t, w1, http.StatusCreated)
		w2 := issue("voter-2")
		testutil.AssertStatus(t, w2, http.StatusCreated)

		var first, second models.IssueTokenResponse
		testutil.AssertJSON(t, w1, &first)
		testutil.AssertJSON(t, w2, &second)
		if first.Token == second.Token {
			t.Error("Expected a fresh secret on reissue")
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM vote_token WHERE user_id = 'voter-2'`).Scan(&count); err != nil {
			t.Fatalf("Failed to count tokens: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected a single token row per user, got %d", count)
		}
	})

	t.Run("missing voter id", func(t *testing.T) {
		w := issue("")
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
