// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Emit is one (key, value) pair produced by a view map function.
type Emit struct {
	Key   any
	Value any
}

// MapFunc turns a document into zero or more index rows. It runs inside the
// write transaction, so index rows always reflect the committed document.
type MapFunc func(doc *RawDocument) ([]Emit, error)

// View is a materialized secondary index over one document kind.
type View struct {
	Name   string
	Kind   string
	Map    MapFunc
	Reduce Reducer
}

func (v View) validate() error {
	if v.Name == "" || strings.ContainsRune(v.Name, '/') {
		return fmt.Errorf("%w: view name %q", ErrInvalidQuery, v.Name)
	}
	if v.Kind == "" {
		return fmt.Errorf("%w: view %s has no kind", ErrInvalidQuery, v.Name)
	}
	if v.Map == nil {
		return fmt.Errorf("%w: view %s has no map function", ErrInvalidQuery, v.Name)
	}
	return nil
}

// indexEntry is the stored value of an index row.
type indexEntry struct {
	Key   json.RawMessage `json:"k"`
	Value json.RawMessage `json:"v"`
}

type encodedEmit struct {
	key   []byte // badger key
	value []byte
}

// entries runs the map function and encodes every emitted row.
func (v *View) entries(doc *RawDocument) ([]encodedEmit, error) {
	if doc == nil {
		return nil, nil
	}
	emits, err := v.Map(doc)
	if err != nil {
		return nil, fmt.Errorf("view %s map %s: %w", v.Name, doc.ID, err)
	}
	out := make([]encodedEmit, 0, len(emits))
	for _, e := range emits {
		if _, ok := e.Key.(highKey); ok {
			return nil, fmt.Errorf("%w: view %s emitted High", ErrInvalidKey, v.Name)
		}
		enc, err := EncodeKey(e.Key)
		if err != nil {
			return nil, fmt.Errorf("view %s key for %s: %w", v.Name, doc.ID, err)
		}
		rawKey, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("view %s key for %s: %w", v.Name, doc.ID, err)
		}
		rawValue, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("view %s value for %s: %w", v.Name, doc.ID, err)
		}
		value, err := json.Marshal(indexEntry{Key: rawKey, Value: rawValue})
		if err != nil {
			return nil, err
		}
		out = append(out, encodedEmit{key: indexEntryKey(v.Name, enc, doc.ID), value: value})
	}
	return out, nil
}
