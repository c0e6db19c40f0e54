// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/matthewemeh/pollara-build-gems-sub001/cache"
	"github.com/matthewemeh/pollara-build-gems-sub001/cliparse"
	"github.com/matthewemeh/pollara-build-gems-sub001/handlers"
	"github.com/matthewemeh/pollara-build-gems-sub001/middleware"
	"github.com/matthewemeh/pollara-build-gems-sub001/notify"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, c cache.Cache, n *notify.Notifier) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers. All handlers share the same cache so casts and
	// tamper findings invalidate the listings other handlers serve.
	tokenHandler := handlers.NewTokenHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg, c, n)
	verifyHandler := handlers.NewVerifyHandler(db, cfg, c)
	listingHandler := handlers.NewListingHandler(db, cfg, c)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Token issuance
	mux.HandleFunc("POST /tokens", middleware.WithLogging(tokenHandler.Issue))

	// Ballot casting
	mux.HandleFunc("POST /elections/{id}/votes", middleware.WithLogging(voteHandler.CastElectionVote))
	mux.HandleFunc("POST /forms/{id}/votes", middleware.WithLogging(voteHandler.CastFormVote))

	// Verification
	mux.HandleFunc("GET /votes/{id}/verify", middleware.WithLogging(verifyHandler.VerifyVote))
	mux.HandleFunc("GET /elections/{id}/chain/verify", middleware.WithLogging(verifyHandler.VerifyElectionChain))
	mux.HandleFunc("GET /forms/{id}/chain/verify", middleware.WithLogging(verifyHandler.VerifyFormChain))

	// Listings and tallies
	mux.HandleFunc("GET /elections/{id}/votes", middleware.WithLogging(listingHandler.ListElectionVotes))
	mux.HandleFunc("GET /forms/{id}/votes", middleware.WithLogging(listingHandler.ListFormVotes))
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(listingHandler.ElectionResults))
	mux.HandleFunc("GET /forms/{id}/results", middleware.WithLogging(listingHandler.FormResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollara API v1"))
	})

	return mux
}
