// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"

	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
)

// GetGridCellTrashpoints returns the trashpoints of one grid cell at the
// scale matching cellSize.
func (db *DB) GetGridCellTrashpoints(ctx context.Context, datasetID string, cellSize float64, cell grid.Cell) ([]models.PointSummary, error) {
	return db.spatial.PointsInCell(ctx, datasetID, cellSize, cell)
}

// GetTrashpointsInBoundingBox returns every trashpoint of the cells the box
// touches. With strict set, points outside the box itself are dropped.
func (db *DB) GetTrashpointsInBoundingBox(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox, strict bool) ([]models.PointSummary, error) {
	if strict {
		return db.spatial.PointsStrictlyInBoundingBox(ctx, datasetID, cellSize, box)
	}
	return db.spatial.PointsInBoundingBox(ctx, datasetID, cellSize, box)
}

// GetOverviewClusters returns one cluster per non-empty cell in the box.
func (db *DB) GetOverviewClusters(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.Cluster, error) {
	return db.spatial.ClustersInBoundingBox(ctx, datasetID, cellSize, box)
}

// GetOverviewTrashpoints returns the trashpoints alone in their cell.
func (db *DB) GetOverviewTrashpoints(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.PointSummary, error) {
	return db.spatial.IsolatedPointsInBoundingBox(ctx, datasetID, cellSize, box)
}

// GetOverview returns clusters and isolated trashpoints in one call.
func (db *DB) GetOverview(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) (*models.Overview, error) {
	return db.spatial.Overview(ctx, datasetID, cellSize, box)
}
