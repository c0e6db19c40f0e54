// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/matthewemeh/pollara-build-gems-sub001/auth"
	"github.com/matthewemeh/pollara-build-gems-sub001/cache"
	"github.com/matthewemeh/pollara-build-gems-sub001/cliparse"
	"github.com/matthewemeh/pollara-build-gems-sub001/eligibility"
	"github.com/matthewemeh/pollara-build-gems-sub001/ledger"
	"github.com/matthewemeh/pollara-build-gems-sub001/middleware"
	"github.com/matthewemeh/pollara-build-gems-sub001/models"
	"github.com/matthewemeh/pollara-build-gems-sub001/notify"
	"github.com/matthewemeh/pollara-build-gems-sub001/tally"
	"github.com/matthewemeh/pollara-build-gems-sub001/token"
)

type VoteHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	guard     *eligibility.Guard
	tokens    *token.Service
	tallies   *tally.Store
	elections *ledger.Store
	forms     *ledger.Store
	notifier  *notify.Notifier
	cache     cache.Cache
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, c cache.Cache, n *notify.Notifier) *VoteHandler {
	return &VoteHandler{
		db:        db,
		cfg:       cfg,
		guard:     eligibility.NewGuard(db),
		tokens:    token.NewService(db, cfg.TokenSalt, cfg.TokenTTL),
		tallies:   tally.NewStore(db),
		elections: ledger.NewElectionStore(db),
		forms:     ledger.NewFormStore(db),
		notifier:  n,
		cache:     c,
	}
}

// CastElectionVote handles POST /elections/:id/votes
func (h *VoteHandler) CastElectionVote(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election id is required")
		return
	}

	userID := r.Header.Get("X-Voter-ID")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return
	}
	secret := r.Header.Get("X-Vote-Token")
	if secret == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Vote-Token header required")
		return
	}

	var req models.CastElectionVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PartyID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "party_id is required")
		return
	}

	subject, err := h.guard.LoadElection(electionID)
	if err == eligibility.ErrSubjectNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	payload := models.BallotPayload{
		SubjectID:     electionID,
		SubjectType:   models.SubjectElection,
		PartyID:       req.PartyID,
		ContestantIDs: req.ContestantIDs,
	}

	h.cast(w, r, subject, h.elections, userID, secret, payload)
}

// CastFormVote handles POST /forms/:id/votes
// When the form's identity check is disabled the token, eligibility, and
// duplicate-vote paths are skipped entirely: ballots are anonymous and per
// user unlimited (public anonymous poll mode). The open/closed window still
// applies.
func (h *VoteHandler) CastFormVote(w http.ResponseWriter, r *http.Request) {
	formID := r.PathValue("id")
	if formID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "form id is required")
		return
	}

	var req models.CastFormVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.OptionIDs) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_ids cannot be empty")
		return
	}

	subject, err := h.guard.LoadForm(formID)
	if err == eligibility.ErrSubjectNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Form not found")
		return
	}
	if err != nil {
		slog.Error("failed to load form", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	payload := models.BallotPayload{
		SubjectID:   formID,
		SubjectType: models.SubjectForm,
		OptionIDs:   req.OptionIDs,
	}

	if !subject.IdentityCheck {
		if status := subject.Status(time.Now()); status != models.StatusOpen {
			middleware.ErrorResponse(w, http.StatusConflict, "Form is not open for voting")
			return
		}
		h.castAnonymous(w, subject, payload)
		return
	}

	userID := r.Header.Get("X-Voter-ID")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-ID header required")
		return
	}
	secret := r.Header.Get("X-Vote-Token")
	if secret == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Vote-Token header required")
		return
	}

	h.cast(w, r, subject, h.forms, userID, secret, payload)
}

// cast runs the identity-checked casting pipeline: eligibility guard, token
// check, marker claim, tally transaction, ledger append, then side effects
// (token consumption, receipt, cache invalidation). The marker is claimed
// before the ballot is recorded so two racing casts for the same voter and
// subject cannot both land; a failed recording releases the claim.
//
// The tally commit and the ledger append are two separate transactions. A
// crash between them leaves an aggregate increment with no matching ledger
// record; that window requires reconciliation tooling and is not healed
// here.
func (h *VoteHandler) cast(w http.ResponseWriter, r *http.Request, subject eligibility.Subject,
	store *ledger.Store, userID, secret string, payload models.BallotPayload) {

	if err := h.guard.Check(subject, userID, time.Now()); err != nil {
		switch {
		case errors.Is(err, eligibility.ErrSubjectNotOpen):
			middleware.ErrorResponse(w, http.StatusConflict, "Subject is not open for voting")
		case errors.Is(err, eligibility.ErrDuplicateVote):
			middleware.ErrorResponse(w, http.StatusConflict, "You have already voted for this subject")
		case errors.Is(err, eligibility.ErrScopeMismatch):
			middleware.ErrorResponse(w, http.StatusForbidden, "Voter locality does not match election scope")
		case errors.Is(err, eligibility.ErrVoterNotFound):
			middleware.ErrorResponse(w, http.StatusForbidden, "Voter is not registered")
		default:
			slog.Error("eligibility check failed", "error", err, "subject_id", subject.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Token is checked before any state changes but only consumed after the
	// ballot is on the ledger. A failed match does not consume it.
	if err := h.tokens.Verify(userID, secret); err != nil {
		switch {
		case errors.Is(err, token.ErrTokenExpired):
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Vote token expired; request a new one")
		case errors.Is(err, token.ErrTokenInvalid):
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Vote token invalid")
		default:
			slog.Error("token check failed", "error", err, "user_id", userID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.TokenSalt)
	if err := h.guard.MarkVoted(userID, subject.ID, ipHash); err != nil {
		if errors.Is(err, eligibility.ErrDuplicateVote) {
			middleware.ErrorResponse(w, http.StatusConflict, "You have already voted for this subject")
			return
		}
		slog.Error("failed to record voted marker", "error", err, "user_id", userID, "subject_id", subject.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rec, ok := h.commit(w, subject, store, payload)
	if !ok {
		if err := h.guard.UnmarkVoted(userID, subject.ID); err != nil {
			slog.Error("failed to release voted marker", "error", err, "user_id", userID, "subject_id", subject.ID)
		}
		return
	}

	// Side effects after the append. None of these can undo the ballot;
	// failures are logged and the voter still gets their receipt id.
	if err := h.tokens.Consume(userID, secret); err != nil {
		slog.Warn("failed to consume vote token", "error", err, "user_id", userID)
	}

	email := ""
	if voter, err := h.guard.VoterByID(userID); err == nil {
		email = voter.Email
	}
	h.notifier.SendReceipt(userID, email, subject.Title, rec.ID)

	h.respondCast(w, subject, rec)
}

// castAnonymous is the reduced pipeline for forms with identity checks
// disabled: tally, append, invalidate. No token, marker, or receipt.
func (h *VoteHandler) castAnonymous(w http.ResponseWriter, subject eligibility.Subject, payload models.BallotPayload) {
	rec, ok := h.commit(w, subject, h.forms, payload)
	if !ok {
		return
	}
	h.respondCast(w, subject, rec)
}

// commit runs the tally transaction and the ledger append, in that order.
func (h *VoteHandler) commit(w http.ResponseWriter, subject eligibility.Subject,
	store *ledger.Store, payload models.BallotPayload) (ledger.Record, bool) {

	if err := h.tallies.ApplyChoice(subject.ID, payload.ChoiceKeys()); err != nil {
		slog.Error("tally transaction aborted", "error", err, "subject_id", subject.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError,
			"Cast failed; no ballot was recorded. Request a new token and retry.")
		return ledger.Record{}, false
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode ballot payload", "error", err, "subject_id", subject.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return ledger.Record{}, false
	}

	rec, err := store.Append(subject.ID, raw)
	if err != nil {
		slog.Error("ledger append failed", "error", err, "subject_id", subject.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record ballot")
		return ledger.Record{}, false
	}

	return rec, true
}

func (h *VoteHandler) respondCast(w http.ResponseWriter, subject eligibility.Subject, rec ledger.Record) {
	// Cached listings and tallies for this subject are now stale.
	h.cache.DeleteByPattern(cache.VotesPrefix(subject.Type, subject.ID))
	h.cache.DeleteByPattern(cache.ResultsKey(subject.Type, subject.ID))

	slog.Info("ballot cast",
		"subject_type", subject.Type,
		"subject_id", subject.ID,
		"vote_id", rec.ID,
		"index", rec.Index,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  rec.ID,
		Message: "Ballot recorded",
	})
}
