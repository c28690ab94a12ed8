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

// GetImage returns one image.
func (db *DB) GetImage(ctx context.Context, id string) (*models.Image, error) {
	return getEntity[models.Image](ctx, db, models.KindImage, id)
}

// AllocateImage reserves a pending image of a trashpoint before its upload.
// parentID links resized variants to their full-size original and may be
// empty.
func (db *DB) AllocateImage(ctx context.Context, imageType, trashpointID, who, parentID string) (*models.Image, error) {
	fields := store.Patch{
		"type":         imageType,
		"status":       models.ImageStatusPending,
		"trashpointId": trashpointID,
	}
	if parentID != "" {
		fields["parentId"] = parentID
	}
	now := db.now()
	doc, err := db.docs.Create(ctx, models.KindImage, store.NewID(), fields, store.Patch{
		"createdAt": now,
		"createdBy": who,
		"updatedAt": now,
		"updatedBy": who,
	})
	if err != nil {
		return nil, fmt.Errorf("allocate image for trashpoint %s: %w", trashpointID, err)
	}
	return decodeEntity[models.Image](doc)
}

// ModifyImage applies update to an image. snapshot may be nil.
func (db *DB) ModifyImage(ctx context.Context, id, who string, update store.Patch, snapshot *store.RawDocument) (*models.Image, error) {
	return modifyEntity[models.Image](ctx, db, models.KindImage, id, who, update, snapshot)
}

// RemoveImage deletes an image. It reports false when there was none.
func (db *DB) RemoveImage(ctx context.Context, id string) (bool, error) {
	removed, err := db.docs.Remove(ctx, models.KindImage, id)
	if err != nil {
		return false, fmt.Errorf("remove image %s: %w", id, err)
	}
	return removed, nil
}

// GetTrashpointImages lists the images of a trashpoint, newest first,
// restricted to one status when status is not empty.
func (db *DB) GetTrashpointImages(ctx context.Context, trashpointID, status string) ([]models.Image, error) {
	params := store.QueryParams{
		StartKey:  store.Key{trashpointID},
		EndKey:    store.Key{trashpointID, store.High},
		Direction: store.Descending,
	}
	if status != "" {
		params.StartKey = store.Key{trashpointID, status}
		params.EndKey = store.Key{trashpointID, status, store.High}
	}
	return listEntities[models.Image](ctx, db, ViewImagesByTrashpointStatus, params)
}

// GetChildImages lists the variants derived from one image of a trashpoint.
func (db *DB) GetChildImages(ctx context.Context, parentID, trashpointID string) ([]models.Image, error) {
	return listEntities[models.Image](ctx, db, ViewImagesByTrashpointAndParent, store.QueryParams{
		Keys: []any{store.Key{trashpointID, parentID}},
	})
}
