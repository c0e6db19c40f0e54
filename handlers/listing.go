// Copyright (c) 2025 The Pollara developers.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/matthewemeh/pollara-build-gems-sub001/cache"
	"github.com/matthewemeh/pollara-build-gems-sub001/cliparse"
	"github.com/matthewemeh/pollara-build-gems-sub001/eligibility"
	"github.com/matthewemeh/pollara-build-gems-sub001/ledger"
	"github.com/matthewemeh/pollara-build-gems-sub001/middleware"
	"github.com/matthewemeh/pollara-build-gems-sub001/models"
	"github.com/matthewemeh/pollara-build-gems-sub001/tally"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ListingHandler struct {
	db        *sql.DB
	cfg       cliparse.Config
	guard     *eligibility.Guard
	tallies   *tally.Store
	elections *ledger.Store
	forms     *ledger.Store
	cache     cache.Cache
}

func NewListingHandler(db *sql.DB, cfg cliparse.Config, c cache.Cache) *ListingHandler {
	return &ListingHandler{
		db:        db,
		cfg:       cfg,
		guard:     eligibility.NewGuard(db),
		tallies:   tally.NewStore(db),
		elections: ledger.NewElectionStore(db),
		forms:     ledger.NewFormStore(db),
		cache:     c,
	}
}

// ListElectionVotes handles GET /elections/:id/votes
func (h *ListingHandler) ListElectionVotes(w http.ResponseWriter, r *http.Request) {
	h.listVotes(w, r, h.elections, models.SubjectElection)
}

// ListFormVotes handles GET /forms/:id/votes
func (h *ListingHandler) ListFormVotes(w http.ResponseWriter, r *http.Request) {
	h.listVotes(w, r, h.forms, models.SubjectForm)
}

// listVotes serves one page of a subject's chain, read-through cached.
// Hash fields are redacted so the chain cannot be scraped for forgery.
func (h *ListingHandler) listVotes(w http.ResponseWriter, r *http.Request, store *ledger.Store, subjectType string) {
	subjectID := r.PathValue("id")
	if subjectID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "subject id is required")
		return
	}

	page, limit, sort, ok := parsePagination(w, r)
	if !ok {
		return
	}

	key := cache.VotesKey(subjectType, subjectID, page, limit, sort)
	if raw, hit := h.cache.Get(key); hit {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(raw)
		return
	}

	if err := h.ensureSubject(subjectType, subjectID); err != nil {
		if err == eligibility.ErrSubjectNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Subject not found")
		} else {
			slog.Error("failed to load subject", "error", err, "subject_id", subjectID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	records, total, err := store.List(subjectID, page, limit, sort)
	if err != nil {
		slog.Error("failed to list votes", "error", err, "subject_id", subjectID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	votes := make([]models.RedactedVote, 0, len(records))
	for _, rec := range records {
		votes = append(votes, models.RedactedVote{
			ID:           rec.ID,
			Index:        rec.Index,
			Hash:         ledger.RedactHash(rec.Hash),
			PreviousHash: ledger.RedactHash(rec.PreviousHash),
			TimestampMs:  rec.TimestampMs,
			Payload:      rec.Payload,
			IsInvalid:    rec.IsInvalid,
		})
	}

	resp := models.ListVotesResponse{
		SubjectID: subjectID,
		Page:      page,
		Limit:     limit,
		Total:     total,
		Votes:     votes,
	}

	if raw, err := json.Marshal(resp); err == nil {
		h.cache.SetWithTTL(key, raw, h.cfg.CacheTTL)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// ElectionResults handles GET /elections/:id/results
func (h *ListingHandler) ElectionResults(w http.ResponseWriter, r *http.Request) {
	h.results(w, r, h.elections, models.SubjectElection)
}

// FormResults handles GET /forms/:id/results
func (h *ListingHandler) FormResults(w http.ResponseWriter, r *http.Request) {
	h.results(w, r, h.forms, models.SubjectForm)
}

func (h *ListingHandler) results(w http.ResponseWriter, r *http.Request, store *ledger.Store, subjectType string) {
	subjectID := r.PathValue("id")
	if subjectID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "subject id is required")
		return
	}

	key := cache.ResultsKey(subjectType, subjectID)
	if raw, hit := h.cache.Get(key); hit {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(raw)
		return
	}

	if err := h.ensureSubject(subjectType, subjectID); err != nil {
		if err == eligibility.ErrSubjectNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Subject not found")
		} else {
			slog.Error("failed to load subject", "error", err, "subject_id", subjectID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	entries, err := h.tallies.Entries(subjectID)
	if err != nil {
		slog.Error("failed to load tally", "error", err, "subject_id", subjectID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	total, err := store.CountFor(subjectID)
	if err != nil {
		slog.Error("failed to count ballots", "error", err, "subject_id", subjectID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	out := make([]models.TallyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.TallyEntry{Key: e.Key, Count: e.Count})
	}

	resp := models.ResultsResponse{
		SubjectID: subjectID,
		Entries:   out,
		Total:     total,
	}

	if raw, err := json.Marshal(resp); err == nil {
		h.cache.SetWithTTL(key, raw, h.cfg.CacheTTL)
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func (h *ListingHandler) ensureSubject(subjectType, subjectID string) error {
	var err error
	switch subjectType {
	case models.SubjectElection:
		_, err = h.guard.LoadElection(subjectID)
	case models.SubjectForm:
		_, err = h.guard.LoadForm(subjectID)
	}
	return err
}

// parsePagination reads page/limit/sort query parameters, writing a 400 on
// invalid input.
func parsePagination(w http.ResponseWriter, r *http.Request) (page, limit int, sort string, ok bool) {
	page = 1
	limit = defaultPageLimit
	sort = "asc"

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "page must be a positive integer")
			return 0, 0, "", false
		}
		page = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageLimit {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return 0, 0, "", false
		}
		limit = n
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		if v != "asc" && v != "desc" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "sort must be asc or desc")
			return 0, 0, "", false
		}
		sort = v
	}

	return page, limit, sort, true
}
