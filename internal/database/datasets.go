// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"fmt"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// GetDataset returns one dataset.
func (db *DB) GetDataset(ctx context.Context, id string) (*models.Dataset, error) {
	return getEntity[models.Dataset](ctx, db, models.KindDataset, id)
}

// GetAllDatasets returns every dataset, ordered by id.
func (db *DB) GetAllDatasets(ctx context.Context) ([]models.Dataset, error) {
	return listEntities[models.Dataset](ctx, db, ViewDatasets, store.QueryParams{})
}

// CreateDataset creates a dataset of the given type under a random id.
func (db *DB) CreateDataset(ctx context.Context, datasetType string) (*models.Dataset, error) {
	doc, err := db.docs.Create(ctx, models.KindDataset, store.NewID(),
		store.Patch{"type": datasetType},
		store.Patch{"createdAt": db.now()})
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	return decodeEntity[models.Dataset](doc)
}
