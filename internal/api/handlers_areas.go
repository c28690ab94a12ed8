// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
)

// area validates the {areaID} path parameter and loads the area. ok is
// false when a response has already been written.
func (h *Handler) area(w http.ResponseWriter, r *http.Request) (*models.Area, bool) {
	req := &AreaRequest{AreaID: chi.URLParam(r, "areaID")}
	if apiErr := validateRequest(req); apiErr != nil {
		respondValidationError(w, apiErr)
		return nil, false
	}
	area, err := h.db.GetArea(r.Context(), req.AreaID)
	if err != nil {
		respondStoreError(w, err, "Area")
		return nil, false
	}
	return area, true
}

// Area returns one area.
//
// GET /api/v1/areas/{areaID}
func (h *Handler) Area(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	area, ok := h.area(w, r)
	if !ok {
		return
	}
	respondSuccess(w, http.StatusOK, area, start)
}

// AreaCounts returns the number of trashpoints in an area and its
// sub-areas, split by status with by_status=true.
//
// GET /api/v1/areas/{areaID}/counts
func (h *Handler) AreaCounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	area, ok := h.area(w, r)
	if !ok {
		return
	}

	counts, err := h.db.CountAreaTrashpoints(r.Context(), area.ID, getBoolParam(r, "by_status"))
	if err != nil {
		respondStoreError(w, err, "Area")
		return
	}
	respondSuccess(w, http.StatusOK, counts, start)
}

// AreaTrashpoints lists the trashpoints of an area, newest first.
//
// GET /api/v1/areas/{areaID}/trashpoints?page_size&page
func (h *Handler) AreaTrashpoints(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	area, ok := h.area(w, r)
	if !ok {
		return
	}
	page, apiErr := h.parsePageRequest(r)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	trashpoints, err := h.db.GetAreaTrashpoints(r.Context(), area.ID, page)
	if err != nil {
		respondStoreError(w, err, "Area")
		return
	}
	respondSuccess(w, http.StatusOK, trashpoints, start)
}
