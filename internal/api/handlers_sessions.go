// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
)

// CreateSession opens the session of an account, or extends it when one
// is live. Locked accounts get 403.
//
// POST /api/v1/accounts/{accountID}/session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	accountID := chi.URLParam(r, "accountID")

	account, err := h.db.GetAccount(r.Context(), accountID)
	if err != nil {
		respondStoreError(w, err, "Account")
		return
	}
	if account.Locked {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "Account is locked", nil)
		return
	}

	session, err := h.db.CreateOrTouchSession(r.Context(), accountID, h.sessionDays())
	if err != nil {
		respondStoreError(w, err, "Account")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("account", sanitizeLogValue(accountID)).
		Time("expires_at", session.ExpiresAt).
		Msg("Session opened")

	respondSuccess(w, http.StatusOK, models.SessionResponse{Valid: true, Session: session}, start)
}

// VerifySession checks a session and extends it when valid. Unknown and
// expired sessions answer 200 with valid=false.
//
// GET /api/v1/sessions/{sessionID}
func (h *Handler) VerifySession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sessionID := chi.URLParam(r, "sessionID")

	session, ok, err := h.db.VerifyAndTouchSession(r.Context(), sessionID, h.sessionDays())
	if err != nil {
		respondStoreError(w, err, "Session")
		return
	}
	if !ok {
		respondSuccess(w, http.StatusOK, models.SessionResponse{Valid: false}, start)
		return
	}
	respondSuccess(w, http.StatusOK, models.SessionResponse{Valid: true, Session: session}, start)
}

// DeleteSession ends a session.
//
// DELETE /api/v1/sessions/{sessionID}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	removed, err := h.db.RemoveSession(r.Context(), sessionID)
	if err != nil {
		respondStoreError(w, err, "Session")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Session not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
