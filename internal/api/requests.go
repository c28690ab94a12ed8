// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"

	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
)

// BoundingBoxRequest holds the query parameters of the overview endpoints.
type BoundingBoxRequest struct {
	NWLat    float64 `query:"nw_lat" validate:"latitude"`
	NWLng    float64 `query:"nw_lng" validate:"longitude"`
	SELat    float64 `query:"se_lat" validate:"latitude"`
	SELng    float64 `query:"se_lng" validate:"longitude"`
	CellSize float64 `query:"cell_size" validate:"gt=0"`
}

// Box returns the validated grid bounding box.
func (b *BoundingBoxRequest) Box() (grid.BoundingBox, error) {
	return grid.NewBoundingBox(orb.Point{b.NWLng, b.NWLat}, orb.Point{b.SELng, b.SELat})
}

// CellRequest addresses one grid cell.
type CellRequest struct {
	Col      int     `query:"col" validate:"min=0"`
	Row      int     `query:"row" validate:"min=0"`
	CellSize float64 `query:"cell_size" validate:"gt=0"`
}

// AreaRequest addresses an area by code.
type AreaRequest struct {
	AreaID string `query:"areaID" validate:"required,areacode"`
}

// PageRequest holds listing pagination parameters.
type PageRequest struct {
	Size   int `query:"page_size" validate:"min=1,max=1000"`
	Number int `query:"page" validate:"min=1"`
}

// parseBoundingBoxRequest reads and validates the bounding box parameters.
// It returns a response-ready error on failure.
func parseBoundingBoxRequest(r *http.Request) (*BoundingBoxRequest, *models.APIError) {
	req := &BoundingBoxRequest{}
	fields := []struct {
		key string
		dst *float64
	}{
		{"nw_lat", &req.NWLat},
		{"nw_lng", &req.NWLng},
		{"se_lat", &req.SELat},
		{"se_lng", &req.SELng},
		{"cell_size", &req.CellSize},
	}
	for _, f := range fields {
		v, err := requiredFloatParam(r, f.key)
		if err != nil {
			return nil, &models.APIError{
				Code:    ErrCodeValidation,
				Message: err.Error(),
				Details: map[string]interface{}{"field": f.key},
			}
		}
		*f.dst = v
	}
	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}

// parseCellRequest reads the {col}/{row} path parameters and cell_size, and
// checks the cell exists at the implied scale.
func parseCellRequest(r *http.Request) (*CellRequest, *models.APIError) {
	col, colErr := strconv.Atoi(chi.URLParam(r, "col"))
	row, rowErr := strconv.Atoi(chi.URLParam(r, "row"))
	if colErr != nil || rowErr != nil {
		return nil, &models.APIError{Code: ErrCodeValidation, Message: "col and row must be integers"}
	}
	size, err := requiredFloatParam(r, "cell_size")
	if err != nil {
		return nil, &models.APIError{
			Code:    ErrCodeValidation,
			Message: err.Error(),
			Details: map[string]interface{}{"field": "cell_size"},
		}
	}

	req := &CellRequest{Col: col, Row: row, CellSize: size}
	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	scale := grid.ScaleForCellSize(size)
	if col >= scale.Columns() || row >= scale.Rows() {
		return nil, &models.APIError{
			Code:    ErrCodeValidation,
			Message: "cell is outside the grid at scale " + strconv.Itoa(int(scale)),
			Details: map[string]interface{}{"scale": int(scale)},
		}
	}
	return req, nil
}

// parsePageRequest reads page_size and page, filling defaults from the api
// config and capping the size.
func (h *Handler) parsePageRequest(r *http.Request) (models.Page, *models.APIError) {
	defaultSize, maxSize := models.DefaultPageSize, 1000
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			defaultSize = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxSize = h.config.API.MaxPageSize
		}
	}

	req := &PageRequest{
		Size:   getIntParam(r, "page_size", defaultSize),
		Number: getIntParam(r, "page", 1),
	}
	if apiErr := validateRequest(req); apiErr != nil {
		return models.Page{}, apiErr
	}
	if req.Size > maxSize {
		req.Size = maxSize
	}
	return models.Page{Size: req.Size, Number: req.Number}, nil
}
