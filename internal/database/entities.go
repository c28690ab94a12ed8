// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/mutation"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// decodeEntity maps a stored document onto an entity type. Stored fields do
// not carry the id; it is taken from the document identity.
func decodeEntity[T any](doc *store.RawDocument) (*T, error) {
	fields := make(map[string]json.RawMessage, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	id, err := json.Marshal(doc.ID)
	if err != nil {
		return nil, err
	}
	fields["id"] = id

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", doc.Kind, doc.ID, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", doc.Kind, doc.ID, err)
	}
	return &out, nil
}

// getEntity reads one document and decodes it.
func getEntity[T any](ctx context.Context, db *DB, kind, id string) (*T, error) {
	doc, err := db.docs.ReadOne(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return decodeEntity[T](doc)
}

// listEntities runs a non-reduced query with documents included and decodes
// every row in order. Rows of documents that vanished are skipped.
func listEntities[T any](ctx context.Context, db *DB, view string, params store.QueryParams) ([]T, error) {
	params.IncludeDocs = true
	res, err := db.docs.Query(ctx, view, params)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", view, err)
	}
	out := make([]T, 0, len(res.Rows))
	seen := make(map[string]bool, len(res.Rows))
	for _, row := range res.Rows {
		if row.Doc == nil || seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		e, err := decodeEntity[T](row.Doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// countRows runs a reduced count query and returns the single total.
func countRows(ctx context.Context, db *DB, view string, params store.QueryParams) (int, error) {
	params.Reduce = true
	res, err := db.docs.Query(ctx, view, params)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", view, err)
	}
	total := 0
	for _, row := range res.Rows {
		var n int
		if err := row.DecodeValue(&n); err != nil {
			return 0, fmt.Errorf("count %s: %w", view, err)
		}
		total += n
	}
	return total, nil
}

// modifyEntity applies a caller patch plus updatedAt/updatedBy through the
// mutator and decodes the committed document. An empty who leaves
// updatedBy untouched.
func modifyEntity[T any](ctx context.Context, db *DB, kind, id, who string, update store.Patch, snapshot *store.RawDocument) (*T, error) {
	res, err := db.mutator.Apply(ctx, mutation.Request{
		Kind:     kind,
		ID:       id,
		Fields:   update,
		Snapshot: snapshot,
		SystemFunc: func() store.Patch {
			sys := store.Patch{"updatedAt": db.now()}
			if who != "" {
				sys["updatedBy"] = who
			}
			return sys
		},
	})
	if err != nil {
		return nil, fmt.Errorf("modify %s %s: %w", kind, id, err)
	}
	if err := outcomeError(res, kind, id); err != nil {
		return nil, err
	}
	return decodeEntity[T](res.Doc)
}

// RawDocument returns the stored document of an entity, to be passed back
// as a snapshot to a Modify call.
func (db *DB) RawDocument(ctx context.Context, kind, id string) (*store.RawDocument, error) {
	doc, err := db.docs.ReadOne(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return doc, nil
}

func pageParams(page models.Page, params store.QueryParams) store.QueryParams {
	params.Skip = page.Skip()
	params.Limit = page.Limit()
	return params
}
