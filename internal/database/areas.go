// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"fmt"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// GetArea returns one area.
func (db *DB) GetArea(ctx context.Context, id string) (*models.Area, error) {
	return getEntity[models.Area](ctx, db, models.KindArea, id)
}

// GetAllAreas returns every area ordered by code.
func (db *DB) GetAllAreas(ctx context.Context) ([]models.Area, error) {
	return listEntities[models.Area](ctx, db, ViewAreas, store.QueryParams{})
}

// GetAreasByParent returns the direct children of an area. An empty
// parentID returns the root areas.
func (db *DB) GetAreasByParent(ctx context.Context, parentID string) ([]models.Area, error) {
	var key any
	if parentID != "" {
		key = parentID
	}
	return listEntities[models.Area](ctx, db, ViewAreasByParent, store.QueryParams{Keys: []any{key}})
}

// GetAreasForLeader returns the areas led by an account.
func (db *DB) GetAreasForLeader(ctx context.Context, leaderID string) ([]models.Area, error) {
	return listEntities[models.Area](ctx, db, ViewAreasByLeader, store.QueryParams{Keys: []any{leaderID}})
}

// CountLeaderAreas counts the areas led by an account.
func (db *DB) CountLeaderAreas(ctx context.Context, leaderID string) (int, error) {
	return countRows(ctx, db, ViewAreasByLeader, store.QueryParams{Keys: []any{leaderID}})
}

// ModifyArea applies update to an area. An empty who leaves updatedBy
// untouched. snapshot may be nil.
func (db *DB) ModifyArea(ctx context.Context, id, who string, update store.Patch, snapshot *store.RawDocument) (*models.Area, error) {
	return modifyEntity[models.Area](ctx, db, models.KindArea, id, who, update, snapshot)
}

// SeedAreas makes the stored area tree match metadata: missing areas are
// created and areas whose name or parent differ are updated. Areas absent
// from metadata are left alone, as are leaders.
func (db *DB) SeedAreas(ctx context.Context, metadata []models.AreaMetadata) error {
	existing, err := db.GetAllAreas(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]models.Area, len(existing))
	for _, a := range existing {
		byID[a.ID] = a
	}

	created, updated := 0, 0
	for _, m := range metadata {
		var parent any
		if m.Parent != "" {
			parent = m.Parent
		}
		cur, ok := byID[m.Code]
		if !ok {
			fields := store.Patch{"name": m.Name}
			if m.Parent != "" {
				fields["parentId"] = m.Parent
			}
			if _, err := db.docs.Create(ctx, models.KindArea, m.Code, fields, nil); err != nil {
				return fmt.Errorf("seed area %s: %w", m.Code, err)
			}
			created++
			continue
		}
		if cur.Name == m.Name && cur.ParentID == m.Parent {
			continue
		}
		// A nil parentId removes the field for root areas.
		if _, err := db.ModifyArea(ctx, m.Code, "", store.Patch{"name": m.Name, "parentId": parent}, nil); err != nil {
			return fmt.Errorf("seed area %s: %w", m.Code, err)
		}
		updated++
	}

	logging.Info().Int("areas", len(metadata)).Int("created", created).Int("updated", updated).Msg("Areas seeded")
	return nil
}

// AreaIsInherited reports whether leaderID leads a strict ancestor of
// areaID, which gives them authority over areaID as well.
func (db *DB) AreaIsInherited(ctx context.Context, leaderID, areaID string) (bool, error) {
	ancestors := models.AncestorAreaCodes(areaID)
	if len(ancestors) == 0 {
		return false, nil
	}
	led, err := db.GetAreasForLeader(ctx, leaderID)
	if err != nil {
		return false, err
	}
	if len(led) == 0 {
		return false, nil
	}
	ledIDs := make(map[string]bool, len(led))
	for _, a := range led {
		ledIDs[a.ID] = true
	}
	for _, code := range ancestors {
		if ledIDs[code] {
			return true, nil
		}
	}
	return false, nil
}
