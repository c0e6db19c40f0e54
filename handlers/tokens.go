// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/matthewemeh/pollara-build-gems-sub001/cliparse"
	"github.com/matthewemeh/pollara-build-gems-sub001/middleware"
	"github.com/matthewemeh/pollara-build-gems-sub001/models"
	"github.com/matthewemeh/pollara-build-gems-sub001/token"
)

type TokenHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	tokens *token.Service
}

func NewTokenHandler(db *sql.DB, cfg cliparse.Config) *TokenHandler {
	return &TokenHandler{
		db:     db,
		cfg:    cfg,
		tokens: token.NewService(db, cfg.TokenSalt, cfg.TokenTTL),
	}
}

// Issue handles POST /tokens
// Issues a one-time vote credential for the authenticated user. The
// plaintext secret appears only in this response; re-issuing replaces any
// outstanding token.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-Voter-ID")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return
	}

	secret, expiresAt, err := h.tokens.Issue(userID)
	if err != nil {
		slog.Error("failed to issue vote token", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	slog.Info("vote token issued", "user_id", userID, "expires_at", expiresAt)

	middleware.JSONResponse(w, http.StatusCreated, models.IssueTokenResponse{
		Token:     secret,
		ExpiresAt: expiresAt,
	})
}
