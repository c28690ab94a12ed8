// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package spatial answers map overview queries from the per-scale grid
// indexes.
//
// Every query turns a bounding box into one or two inclusive cell ranges
// and scans the grid index from (dataset, start) to (dataset, end). Keys
// order by column first, so the scan also returns cells of intermediate
// columns whose rows lie outside the box. Every result is filtered with
// grid.CellInRange before it is mapped; skipping the filter returns points
// above and below the box.
package spatial

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// Querier is the indexed-query primitive the adapter runs on.
type Querier interface {
	Query(ctx context.Context, view string, params store.QueryParams) (*store.QueryResult, error)
}

// Adapter runs spatial aggregation queries.
type Adapter struct {
	q      Querier
	events *logging.StoreEventLogger
}

// NewAdapter returns an adapter over q. The grid views from Views must be
// registered on the underlying store.
func NewAdapter(q Querier) *Adapter {
	return &Adapter{q: q, events: logging.NewStoreEventLogger("spatial")}
}

// PointsInCell returns the points indexed under one cell.
func (a *Adapter) PointsInCell(ctx context.Context, datasetID string, cellSize float64, cell grid.Cell) ([]models.PointSummary, error) {
	scale := grid.ScaleForCellSize(cellSize)
	view := GridViewName(scale)
	key := cellKey(datasetID, cell)

	res, err := a.q.Query(ctx, view, store.QueryParams{StartKey: key, EndKey: key})
	if err != nil {
		return nil, fmt.Errorf("points in cell %s: %w", cell, err)
	}

	points := make([]models.PointSummary, 0, len(res.Rows))
	for _, row := range res.Rows {
		if row.IsNull() {
			continue
		}
		p, err := decodePoint(view, row.RawKey, row.Value)
		if err != nil {
			return nil, a.shapeError(ctx, view, err)
		}
		p.Coordinates = models.GridCoordinates{cell.Col, cell.Row}
		points = append(points, p)
	}
	metrics.RecordSpatialQuery("points_in_cell", int(scale), 0)
	return points, nil
}

// PointsInBoundingBox returns every point indexed in a cell the box touches.
// The result is cell-granular: it agrees exactly with the counts of
// ClustersInBoundingBox for the same box and cell size. Use
// PointsStrictlyInBoundingBox to drop points of edge cells that lie outside
// the box itself.
func (a *Adapter) PointsInBoundingBox(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.PointSummary, error) {
	scale := grid.ScaleForCellSize(cellSize)
	view := GridViewName(scale)

	points := make([]models.PointSummary, 0)
	dropped, err := a.scan(ctx, "points_in_bbox", view, datasetID, scale, box, store.QueryParams{},
		func(cell grid.Cell, row store.Row) error {
			if row.IsNull() {
				return nil
			}
			p, err := decodePoint(view, row.RawKey, row.Value)
			if err != nil {
				return err
			}
			p.Coordinates = models.GridCoordinates{cell.Col, cell.Row}
			points = append(points, p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	a.events.LogOverSelected(ctx, view, len(points), dropped)
	return points, nil
}

// PointsStrictlyInBoundingBox is PointsInBoundingBox restricted to points
// whose location lies inside the box, edges included.
func (a *Adapter) PointsStrictlyInBoundingBox(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.PointSummary, error) {
	points, err := a.PointsInBoundingBox(ctx, datasetID, cellSize, box)
	if err != nil {
		return nil, err
	}
	kept := points[:0]
	for _, p := range points {
		if box.Contains(p.Location.Point()) {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// ClustersInBoundingBox returns one cluster per non-empty cell the box
// touches, with the number of points in that cell.
func (a *Adapter) ClustersInBoundingBox(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.Cluster, error) {
	scale := grid.ScaleForCellSize(cellSize)
	view := GridViewName(scale)

	clusters := make([]models.Cluster, 0)
	dropped, err := a.scan(ctx, "clusters_in_bbox", view, datasetID, scale, box,
		store.QueryParams{Reduce: true, GroupLevel: 2},
		func(cell grid.Cell, row store.Row) error {
			if row.IsNull() {
				return nil
			}
			var count int
			if err := row.DecodeValue(&count); err != nil {
				return &IndexShapeError{View: view, Key: row.RawKey, Err: err}
			}
			clusters = append(clusters, newCluster(cell, scale, count))
			return nil
		})
	if err != nil {
		return nil, err
	}
	a.events.LogOverSelected(ctx, view, len(clusters), dropped)
	return clusters, nil
}

// IsolatedPointsInBoundingBox returns the points that are alone in their
// cell. Cells holding several points are left to ClustersInBoundingBox.
func (a *Adapter) IsolatedPointsInBoundingBox(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.PointSummary, error) {
	scale := grid.ScaleForCellSize(cellSize)
	view := GridViewName(scale)

	points := make([]models.PointSummary, 0)
	dropped, err := a.scan(ctx, "isolated_in_bbox", view, datasetID, scale, box,
		store.QueryParams{Reduce: true, GroupLevel: 2, Reducer: store.SingleValueReducer},
		func(cell grid.Cell, row store.Row) error {
			if row.IsNull() {
				return nil
			}
			p, err := decodePoint(view, row.RawKey, row.Value)
			if err != nil {
				return err
			}
			p.Coordinates = models.GridCoordinates{cell.Col, cell.Row}
			points = append(points, p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	a.events.LogOverSelected(ctx, view, len(points), dropped)
	return points, nil
}

// Overview returns clusters for cells holding several points and the point
// itself for cells holding one, from a single scan.
func (a *Adapter) Overview(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) (*models.Overview, error) {
	scale := grid.ScaleForCellSize(cellSize)
	view := GridViewName(scale)

	out := &models.Overview{
		Scale:    int(scale),
		Clusters: []models.Cluster{},
		Points:   []models.PointSummary{},
	}
	dropped, err := a.scan(ctx, "overview", view, datasetID, scale, box,
		store.QueryParams{Reduce: true, GroupLevel: 2, Reducer: overviewReducer},
		func(cell grid.Cell, row store.Row) error {
			var agg cellAggregate
			if err := row.DecodeValue(&agg); err != nil {
				return &IndexShapeError{View: view, Key: row.RawKey, Err: err}
			}
			if agg.Count == 1 && len(agg.Point) > 0 && string(agg.Point) != "null" {
				p, err := decodePoint(view, row.RawKey, agg.Point)
				if err != nil {
					return err
				}
				p.Coordinates = models.GridCoordinates{cell.Col, cell.Row}
				out.Points = append(out.Points, p)
				return nil
			}
			if agg.Count > 0 {
				out.Clusters = append(out.Clusters, newCluster(cell, scale, agg.Count))
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	a.events.LogOverSelected(ctx, view, len(out.Clusters)+len(out.Points), dropped)
	return out, nil
}

// CountByRegion counts the trashpoints of an area, split by status when
// byStatus is set. An area without trashpoints yields a zero count and, when
// split, an empty map.
func (a *Adapter) CountByRegion(ctx context.Context, areaID string, byStatus bool) (models.RegionCount, error) {
	level := 1
	if byStatus {
		level = 2
	}
	res, err := a.q.Query(ctx, ViewCountAreaStatus, store.QueryParams{
		StartKey:   store.Key{areaID},
		EndKey:     store.Key{areaID, store.High},
		Reduce:     true,
		GroupLevel: level,
	})
	if err != nil {
		return models.RegionCount{}, fmt.Errorf("count area %s: %w", areaID, err)
	}

	out := models.RegionCount{}
	if byStatus {
		out.ByStatus = make(map[string]int, len(res.Rows))
	}
	for _, row := range res.Rows {
		var n int
		if err := row.DecodeValue(&n); err != nil {
			return models.RegionCount{}, a.shapeError(ctx, ViewCountAreaStatus, &IndexShapeError{View: ViewCountAreaStatus, Key: row.RawKey, Err: err})
		}
		out.Total += n
		if byStatus {
			key, ok := row.Key.([]any)
			if !ok || len(key) != 2 {
				return models.RegionCount{}, a.shapeError(ctx, ViewCountAreaStatus,
					&IndexShapeError{View: ViewCountAreaStatus, Key: row.RawKey, Err: errors.New("want [areaId, status] key")})
			}
			status, _ := key[1].(string)
			out.ByStatus[status] += n
		}
	}
	return out, nil
}

// scan runs one ranged query per cell range of the box and hands every row
// whose cell lies inside its range to fn. It returns the number of rows
// dropped as over-selected.
func (a *Adapter) scan(ctx context.Context, op, view, datasetID string, scale grid.Scale, box grid.BoundingBox,
	params store.QueryParams, fn func(cell grid.Cell, row store.Row) error) (int, error) {
	ranges, err := box.CellRanges(scale)
	if err != nil {
		return 0, err
	}

	dropped := 0
	for _, r := range ranges {
		p := params
		p.StartKey = cellKey(datasetID, r.Start)
		p.EndKey = cellKey(datasetID, r.End)

		res, err := a.q.Query(ctx, view, p)
		if err != nil {
			return 0, fmt.Errorf("%s %s: %w", op, view, err)
		}
		for _, row := range res.Rows {
			cell, err := rowCell(row)
			if err != nil {
				return 0, a.shapeError(ctx, view, &IndexShapeError{View: view, Key: row.RawKey, Err: err})
			}
			if !grid.CellInRange(cell, r.Start, r.End) {
				dropped++
				continue
			}
			if err := fn(cell, row); err != nil {
				return 0, a.shapeError(ctx, view, err)
			}
		}
	}
	metrics.RecordSpatialQuery(op, int(scale), dropped)
	return dropped, nil
}

func (a *Adapter) shapeError(ctx context.Context, view string, err error) error {
	var shape *IndexShapeError
	if errors.As(err, &shape) {
		metrics.RecordIndexShapeError(view)
		a.events.LogIndexShape(ctx, view, err)
	}
	return err
}

// rowCell extracts the cell from a (datasetId, [col, row]) key.
func rowCell(row store.Row) (grid.Cell, error) {
	key, ok := row.Key.([]any)
	if !ok || len(key) != 2 {
		return grid.Cell{}, fmt.Errorf("want [datasetId, [col, row]] key, got %T", row.Key)
	}
	coords, ok := key[1].([]any)
	if !ok || len(coords) != 2 {
		return grid.Cell{}, fmt.Errorf("want [col, row] cell, got %v", key[1])
	}
	col, ok1 := coords[0].(float64)
	r, ok2 := coords[1].(float64)
	if !ok1 || !ok2 {
		return grid.Cell{}, fmt.Errorf("non-numeric cell %v", coords)
	}
	return grid.Cell{Col: int(col), Row: int(r)}, nil
}

func decodePoint(view string, key, value json.RawMessage) (models.PointSummary, error) {
	var ip indexedPoint
	if err := json.Unmarshal(value, &ip); err != nil {
		return models.PointSummary{}, &IndexShapeError{View: view, Key: key, Err: err}
	}
	if ip.ID == "" {
		return models.PointSummary{}, &IndexShapeError{View: view, Key: key, Err: errors.New("point without id")}
	}
	return models.PointSummary{
		ID:       ip.ID,
		Location: ip.Location,
		Status:   ip.Status,
		Areas:    ip.Areas,
	}, nil
}

func newCluster(cell grid.Cell, scale grid.Scale, count int) models.Cluster {
	return models.Cluster{
		Coordinates: models.GridCoordinates{cell.Col, cell.Row},
		Count:       count,
		Center:      models.LocationFromPoint(grid.CellCenter(cell, scale)),
	}
}
