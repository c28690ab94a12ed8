// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// GetTrashpoint returns one trashpoint.
func (db *DB) GetTrashpoint(ctx context.Context, id string) (*models.Trashpoint, error) {
	return getEntity[models.Trashpoint](ctx, db, models.KindTrashpoint, id)
}

// GetAdminTrashpoints lists every trashpoint, newest first.
func (db *DB) GetAdminTrashpoints(ctx context.Context, page models.Page) ([]models.Trashpoint, error) {
	return listEntities[models.Trashpoint](ctx, db, ViewTrashpointsByCreationTime, pageParams(page, store.QueryParams{
		Direction: store.Descending,
	}))
}

// GetAreaTrashpoints lists the trashpoints of an area and its sub-areas,
// newest first.
func (db *DB) GetAreaTrashpoints(ctx context.Context, areaCode string, page models.Page) ([]models.Trashpoint, error) {
	return listEntities[models.Trashpoint](ctx, db, ViewTrashpointsByArea, pageParams(page, store.QueryParams{
		StartKey:  store.Key{areaCode},
		EndKey:    store.Key{areaCode, store.High},
		Direction: store.Descending,
	}))
}

// GetUserTrashpoints lists the trashpoints an account reported, newest
// first.
func (db *DB) GetUserTrashpoints(ctx context.Context, userID string, page models.Page) ([]models.Trashpoint, error) {
	return listEntities[models.Trashpoint](ctx, db, ViewTrashpointsByCreatingUser, pageParams(page, store.QueryParams{
		StartKey:  store.Key{userID},
		EndKey:    store.Key{userID, store.High},
		Direction: store.Descending,
	}))
}

// CountUserTrashpoints counts the trashpoints an account reported.
func (db *DB) CountUserTrashpoints(ctx context.Context, userID string) (int, error) {
	return countRows(ctx, db, ViewTrashpointsByCreatingUser, store.QueryParams{
		StartKey: store.Key{userID},
		EndKey:   store.Key{userID, store.High},
	})
}

// CountTrashpoints counts every trashpoint.
func (db *DB) CountTrashpoints(ctx context.Context) (int, error) {
	return countRows(ctx, db, ViewTrashpointsByCreationTime, store.QueryParams{})
}

// CountAreaTrashpoints counts the trashpoints of an area, split by status
// when byStatus is set.
func (db *DB) CountAreaTrashpoints(ctx context.Context, areaCode string, byStatus bool) (models.RegionCount, error) {
	return db.spatial.CountByRegion(ctx, areaCode, byStatus)
}

// expandAreas returns the given area codes plus all their ancestors, sorted
// and without duplicates, so a trashpoint counts towards every enclosing
// area.
func expandAreas(codes []string) []string {
	set := make(map[string]bool, len(codes)*2)
	for _, code := range codes {
		if code == "" {
			continue
		}
		set[code] = true
		for _, a := range models.AncestorAreaCodes(code) {
			set[a] = true
		}
	}
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// CreateTrashpoint stores a new trashpoint in a dataset, reported by who.
func (db *DB) CreateTrashpoint(ctx context.Context, datasetID, who string, create models.TrashpointCreate) (*models.Trashpoint, error) {
	hashtags := create.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	fields := store.Patch{
		"location":  create.Location,
		"status":    create.Status,
		"hashtags":  hashtags,
		"counter":   1,
		"datasetId": datasetID,
	}
	if create.Amount != "" {
		fields["amount"] = create.Amount
	}
	if create.Name != "" {
		fields["name"] = create.Name
	}
	if create.Address != "" {
		fields["address"] = create.Address
	}
	if len(create.Composition) > 0 {
		fields["composition"] = create.Composition
	}
	if areas := expandAreas(create.Areas); len(areas) > 0 {
		fields["areas"] = areas
	}

	now := db.now()
	doc, err := db.docs.Create(ctx, models.KindTrashpoint, store.NewID(), fields, store.Patch{
		"createdAt": now,
		"createdBy": who,
		"updatedAt": now,
		"updatedBy": who,
	})
	if err != nil {
		return nil, fmt.Errorf("create trashpoint in dataset %s: %w", datasetID, err)
	}
	return decodeEntity[models.Trashpoint](doc)
}

// ModifyTrashpoint applies update to a trashpoint. An "areas" entry in
// update, a []string or a decoded JSON array of strings, is expanded with
// ancestors. snapshot may be nil.
func (db *DB) ModifyTrashpoint(ctx context.Context, id, who string, update store.Patch, snapshot *store.RawDocument) (*models.Trashpoint, error) {
	if raw, ok := update["areas"]; ok && raw != nil {
		codes, err := areaCodes(raw)
		if err != nil {
			return nil, fmt.Errorf("modify trashpoint %s: %w", id, err)
		}
		patched := make(store.Patch, len(update))
		for k, v := range update {
			patched[k] = v
		}
		patched["areas"] = expandAreas(codes)
		update = patched
	}
	return modifyEntity[models.Trashpoint](ctx, db, models.KindTrashpoint, id, who, update, snapshot)
}

// areaCodes accepts the shapes an areas patch arrives in.
func areaCodes(v interface{}) ([]string, error) {
	switch codes := v.(type) {
	case []string:
		return codes, nil
	case []interface{}:
		out := make([]string, len(codes))
		for i, c := range codes {
			s, ok := c.(string)
			if !ok {
				return nil, fmt.Errorf("%w: areas[%d] is %T, want a string", store.ErrInvalidDocument, i, c)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: areas is %T, want a list of area codes", store.ErrInvalidDocument, v)
	}
}

// TouchTrashpoint records that who looked at a trashpoint without changing
// its fields.
func (db *DB) TouchTrashpoint(ctx context.Context, id, who string) (*models.Trashpoint, error) {
	return db.ModifyTrashpoint(ctx, id, who, nil, nil)
}

// RemoveTrashpoint deletes a trashpoint. It reports false when there was
// none.
func (db *DB) RemoveTrashpoint(ctx context.Context, id string) (bool, error) {
	removed, err := db.docs.Remove(ctx, models.KindTrashpoint, id)
	if err != nil {
		return false, fmt.Errorf("remove trashpoint %s: %w", id, err)
	}
	return removed, nil
}
