// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package spatial

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// ViewCountAreaStatus counts trashpoints per (areaId, status).
const ViewCountAreaStatus = "countAreaStatus"

// GridViewName is the name of the grid index at scale s.
func GridViewName(s grid.Scale) string {
	return "grid" + strconv.Itoa(int(s))
}

// indexedPoint is the value stored in grid index rows.
type indexedPoint struct {
	ID       string          `json:"id"`
	Location models.Location `json:"location"`
	Status   string          `json:"status"`
	Areas    []string        `json:"areas,omitempty"`
}

// trashpointFields is the subset of a trashpoint document the views read.
type trashpointFields struct {
	DatasetID string           `json:"datasetId"`
	Location  *models.Location `json:"location"`
	Status    string           `json:"status"`
	Areas     []string         `json:"areas"`
}

func decodeTrashpoint(doc *store.RawDocument) (trashpointFields, error) {
	var f trashpointFields
	if err := doc.Decode(&f); err != nil {
		return f, err
	}
	return f, nil
}

// Views returns every view the adapter queries: one grid index per scale
// keyed (datasetId, [col, row]) and the area/status counter. Register them on
// the store before trashpoints are written.
//
// The cell of a trashpoint is computed from its location inside the write
// transaction, so a moved trashpoint can never be found under its old cell.
func Views() []store.View {
	views := make([]store.View, 0, len(grid.Scales())+1)
	for _, s := range grid.Scales() {
		views = append(views, gridView(s))
	}
	return append(views, countAreaStatusView())
}

func gridView(s grid.Scale) store.View {
	return store.View{
		Name:   GridViewName(s),
		Kind:   models.KindTrashpoint,
		Reduce: store.CountReducer,
		Map: func(doc *store.RawDocument) ([]store.Emit, error) {
			f, err := decodeTrashpoint(doc)
			if err != nil {
				return nil, err
			}
			if f.DatasetID == "" || f.Location == nil {
				return nil, nil
			}
			cell, err := grid.CellFor(f.Location.Point(), s)
			if err != nil {
				return nil, fmt.Errorf("trashpoint %s: %w", doc.ID, err)
			}
			return []store.Emit{{
				Key: cellKey(f.DatasetID, cell),
				Value: indexedPoint{
					ID:       doc.ID,
					Location: *f.Location,
					Status:   f.Status,
					Areas:    f.Areas,
				},
			}}, nil
		},
	}
}

func countAreaStatusView() store.View {
	return store.View{
		Name:   ViewCountAreaStatus,
		Kind:   models.KindTrashpoint,
		Reduce: store.CountReducer,
		Map: func(doc *store.RawDocument) ([]store.Emit, error) {
			f, err := decodeTrashpoint(doc)
			if err != nil {
				return nil, err
			}
			emits := make([]store.Emit, 0, len(f.Areas))
			for _, area := range f.Areas {
				emits = append(emits, store.Emit{Key: store.Key{area, f.Status}, Value: 1})
			}
			return emits, nil
		},
	}
}

func cellKey(datasetID string, c grid.Cell) store.Key {
	return store.Key{datasetID, store.Key{c.Col, c.Row}}
}

// cellAggregate is the overview reduction of one cell: its row count and,
// when the cell holds exactly one row, that row's point.
type cellAggregate struct {
	Count int             `json:"count"`
	Point json.RawMessage `json:"point,omitempty"`
}

var overviewReducer = store.ReducerFunc(func(values []json.RawMessage) (any, error) {
	agg := cellAggregate{Count: len(values)}
	if len(values) == 1 {
		agg.Point = values[0]
	}
	return agg, nil
})
