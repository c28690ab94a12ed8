// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kublaj/World-Cleanup-Day/internal/cache"
	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
)

// overviewCacheControl lets clients and proxies reuse map overviews briefly.
const overviewCacheControl = "public, max-age=60"

// overviewKey identifies one overview query in the response cache.
type overviewKey struct {
	Dataset  string           `json:"dataset"`
	CellSize float64          `json:"cell_size"`
	Box      grid.BoundingBox `json:"box"`
	Cell     *grid.Cell       `json:"cell,omitempty"`
	Strict   bool             `json:"strict,omitempty"`
}

// boxQuery is the common front half of the bounding box endpoints: it
// resolves the dataset and parses the box. ok is false when a response has
// already been written.
func (h *Handler) boxQuery(w http.ResponseWriter, r *http.Request) (datasetID string, req *BoundingBoxRequest, box grid.BoundingBox, ok bool) {
	datasetID = chi.URLParam(r, "datasetID")
	req, apiErr := parseBoundingBoxRequest(r)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return "", nil, grid.BoundingBox{}, false
	}
	box, err := req.Box()
	if err != nil {
		respondStoreError(w, err, "bounding box")
		return "", nil, grid.BoundingBox{}, false
	}
	if _, err := h.db.GetDataset(r.Context(), datasetID); err != nil {
		respondStoreError(w, err, "Dataset")
		return "", nil, grid.BoundingBox{}, false
	}
	return datasetID, req, box, true
}

// serveOverview answers from the response cache when it can and otherwise
// runs query, caching a successful result.
func (h *Handler) serveOverview(w http.ResponseWriter, endpoint string, key overviewKey, start time.Time, query func() (interface{}, error)) {
	w.Header().Set("Cache-Control", overviewCacheControl)

	var cacheKey string
	if h.cache != nil {
		cacheKey = cache.GenerateKey(endpoint, key)
		cached, found := h.cache.Get(cacheKey)
		metrics.RecordCacheLookup(endpoint, found, h.cache.Len())
		if found {
			respondCached(w, cached)
			return
		}
	}

	data, err := query()
	if err != nil {
		w.Header().Del("Cache-Control")
		respondStoreError(w, err, "Dataset")
		return
	}
	if h.cache != nil {
		h.cache.Set(cacheKey, data)
	}
	respondSuccess(w, http.StatusOK, data, start)
}

// Overview returns clusters for cells holding several trashpoints and
// points for cells holding one.
//
// GET /api/v1/datasets/{datasetID}/overview?nw_lat&nw_lng&se_lat&se_lng&cell_size
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	datasetID, req, box, ok := h.boxQuery(w, r)
	if !ok {
		return
	}

	key := overviewKey{Dataset: datasetID, CellSize: req.CellSize, Box: box}
	h.serveOverview(w, "overview", key, start, func() (interface{}, error) {
		overview, err := h.db.GetOverview(r.Context(), datasetID, req.CellSize, box)
		if err != nil {
			return nil, err
		}
		logging.Ctx(r.Context()).Debug().
			Str("dataset", datasetID).
			Int("scale", overview.Scale).
			Int("clusters", len(overview.Clusters)).
			Int("points", len(overview.Points)).
			Msg("Overview computed")
		return overview, nil
	})
}

// Clusters returns one cluster per non-empty cell of the box.
//
// GET /api/v1/datasets/{datasetID}/overview/clusters
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	datasetID, req, box, ok := h.boxQuery(w, r)
	if !ok {
		return
	}

	key := overviewKey{Dataset: datasetID, CellSize: req.CellSize, Box: box}
	h.serveOverview(w, "clusters", key, start, func() (interface{}, error) {
		return h.db.GetOverviewClusters(r.Context(), datasetID, req.CellSize, box)
	})
}

// Points returns the trashpoints in the cells of the box. With strict=true
// only points inside the box itself are returned.
//
// GET /api/v1/datasets/{datasetID}/overview/points
func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	datasetID, req, box, ok := h.boxQuery(w, r)
	if !ok {
		return
	}

	strict := getBoolParam(r, "strict")
	key := overviewKey{Dataset: datasetID, CellSize: req.CellSize, Box: box, Strict: strict}
	h.serveOverview(w, "points", key, start, func() (interface{}, error) {
		return h.db.GetTrashpointsInBoundingBox(r.Context(), datasetID, req.CellSize, box, strict)
	})
}

// Isolated returns the trashpoints that are alone in their cell.
//
// GET /api/v1/datasets/{datasetID}/overview/isolated
func (h *Handler) Isolated(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	datasetID, req, box, ok := h.boxQuery(w, r)
	if !ok {
		return
	}

	key := overviewKey{Dataset: datasetID, CellSize: req.CellSize, Box: box}
	h.serveOverview(w, "isolated", key, start, func() (interface{}, error) {
		return h.db.GetOverviewTrashpoints(r.Context(), datasetID, req.CellSize, box)
	})
}

// Cell returns the trashpoints of one grid cell.
//
// GET /api/v1/datasets/{datasetID}/cells/{col}/{row}?cell_size
func (h *Handler) Cell(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	datasetID := chi.URLParam(r, "datasetID")
	req, apiErr := parseCellRequest(r)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if _, err := h.db.GetDataset(r.Context(), datasetID); err != nil {
		respondStoreError(w, err, "Dataset")
		return
	}

	cell := grid.Cell{Col: req.Col, Row: req.Row}
	key := overviewKey{Dataset: datasetID, CellSize: req.CellSize, Cell: &cell}
	h.serveOverview(w, "cell", key, start, func() (interface{}, error) {
		return h.db.GetGridCellTrashpoints(r.Context(), datasetID, req.CellSize, cell)
	})
}
