// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"errors"
	"net/http"

	"github.com/kublaj/World-Cleanup-Day/internal/database"
	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/spatial"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeIndexShape         = "INDEX_SHAPE_ERROR"
)

// respondStoreError maps a data layer error to a response. what names the
// missing resource in 404 messages.
func respondStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, what+" not found", nil)
	case errors.Is(err, database.ErrContention):
		respondError(w, http.StatusConflict, ErrCodeConflict, "Concurrent update, retry the request", err)
	case errors.Is(err, grid.ErrInvalidBoundingBox), errors.Is(err, grid.ErrInvalidPoint):
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
	case errors.Is(err, store.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Storage temporarily unavailable", err)
	case errors.Is(err, spatial.ErrIndexShape):
		respondError(w, http.StatusInternalServerError, ErrCodeIndexShape, "Spatial index returned malformed rows", err)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred", err)
	}
}
