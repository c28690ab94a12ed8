// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
)

// Direction selects the iteration order of a view query.
type Direction int

const (
	// Ascending walks keys from StartKey to EndKey.
	Ascending Direction = iota
	// Descending walks keys from EndKey back to StartKey. Bounds are still
	// given low to high.
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// QueryParams selects and shapes the rows of a view query.
//
// StartKey and EndKey are always the low and high bound regardless of
// Direction; a nil bound is open. EndKey is inclusive unless ExclusiveEnd is
// set. Keys, when set, replaces the range with exact lookups performed in the
// given order.
type QueryParams struct {
	StartKey     any
	EndKey       any
	ExclusiveEnd bool
	Direction    Direction
	Keys         []any

	Reduce     bool
	Reducer    Reducer // overrides the view's reducer for this query
	Group      bool
	GroupLevel int

	Limit int
	Skip  int

	IncludeDocs bool
}

// Row is one query result row. Reduced rows have no ID or Doc.
type Row struct {
	ID     string
	Key    any
	RawKey json.RawMessage
	Value  json.RawMessage
	Doc    *RawDocument
}

// DecodeValue unmarshals the row value into v.
func (r Row) DecodeValue(v any) error {
	return json.Unmarshal(r.Value, v)
}

// IsNull reports whether the row value is JSON null.
func (r Row) IsNull() bool {
	return len(r.Value) == 0 || bytes.Equal(bytes.TrimSpace(r.Value), []byte("null"))
}

// QueryResult holds the rows of a view query and the number of index rows
// scanned to produce them.
type QueryResult struct {
	Rows    []Row
	Scanned int
}

type scannedRow struct {
	encKey []byte
	id     string
	entry  indexEntry
}

// Query runs a range, key-set, grouped or reduced query against a view. All
// index rows and included documents come from a single read snapshot.
func (s *Store) Query(ctx context.Context, name string, p QueryParams) (*QueryResult, error) {
	v, err := s.view(name)
	if err != nil {
		return nil, err
	}
	if err := validateQuery(v, p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	// Without reduction the scan can stop once skip+limit rows are seen.
	stopAfter := 0
	if !p.Reduce && p.Limit > 0 {
		stopAfter = p.Skip + p.Limit
	}

	var (
		scanned []scannedRow
		docs    map[string]*RawDocument
	)
	err = s.db.View(func(txn *badger.Txn) error {
		prefix := viewPrefix(v.Name)
		if len(p.Keys) > 0 {
			for _, k := range p.Keys {
				enc, err := EncodeKey(k)
				if err != nil {
					return err
				}
				rows, err := scanRange(ctx, txn, prefix, enc, enc, true, p.Direction, 0)
				if err != nil {
					return err
				}
				scanned = append(scanned, rows...)
				if stopAfter > 0 && len(scanned) >= stopAfter {
					break
				}
			}
		} else {
			lo, hi, err := encodeBounds(p.StartKey, p.EndKey)
			if err != nil {
				return err
			}
			scanned, err = scanRange(ctx, txn, prefix, lo, hi, !p.ExclusiveEnd || p.EndKey == nil, p.Direction, stopAfter)
			if err != nil {
				return err
			}
		}

		if p.IncludeDocs && !p.Reduce {
			docs = make(map[string]*RawDocument, len(scanned))
			for _, r := range scanned {
				if _, done := docs[r.id]; done {
					continue
				}
				doc, err := getDoc(txn, v.Kind, r.id)
				if err != nil {
					return fmt.Errorf("include doc %s: %w", r.id, err)
				}
				docs[r.id] = doc
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var rows []Row
	if p.Reduce {
		rows, err = reduceRows(v, scanned, p)
		if err != nil {
			return nil, err
		}
	} else {
		rows, err = mapRows(scanned, docs)
		if err != nil {
			return nil, err
		}
	}

	metrics.RecordViewQuery(v.Name, p.Reduce, len(scanned), time.Since(start))
	return &QueryResult{Rows: page(rows, p.Skip, p.Limit), Scanned: len(scanned)}, nil
}

func validateQuery(v *View, p QueryParams) error {
	switch {
	case p.Reduce && v.Reduce == nil && p.Reducer == nil:
		return fmt.Errorf("%w: view %s has no reducer", ErrInvalidQuery, v.Name)
	case (p.Group || p.GroupLevel > 0) && !p.Reduce:
		return fmt.Errorf("%w: grouping requires reduce", ErrInvalidQuery)
	case p.IncludeDocs && p.Reduce:
		return fmt.Errorf("%w: include_docs is invalid for reduced queries", ErrInvalidQuery)
	case p.Limit < 0 || p.Skip < 0 || p.GroupLevel < 0:
		return fmt.Errorf("%w: negative limit, skip or group level", ErrInvalidQuery)
	case len(p.Keys) > 0 && (p.StartKey != nil || p.EndKey != nil):
		return fmt.Errorf("%w: keys cannot be combined with a key range", ErrInvalidQuery)
	}
	return nil
}

func encodeBounds(startKey, endKey any) (lo, hi []byte, err error) {
	if startKey != nil {
		if lo, err = EncodeKey(startKey); err != nil {
			return nil, nil, err
		}
	}
	if endKey != nil {
		if hi, err = EncodeKey(endKey); err != nil {
			return nil, nil, err
		}
	}
	return lo, hi, nil
}

// scanRange collects index rows whose encoded key lies in [lo, hi] (or
// [lo, hi) when inclusive is false). nil bounds are open. stopAfter > 0
// caps the number of rows read.
func scanRange(ctx context.Context, txn *badger.Txn, prefix, lo, hi []byte, inclusive bool, dir Direction, stopAfter int) ([]scannedRow, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.Reverse = dir == Descending
	it := txn.NewIterator(opts)
	defer it.Close()

	var seek []byte
	if dir == Descending {
		// Land on the last entry whose key is <= hi; doc ids are UTF-8 so
		// 0xFF sorts after every id suffix.
		seek = append(append(append([]byte{}, prefix...), hi...), 0xFF)
		if hi == nil {
			seek = append(append([]byte{}, prefix...), 0xFF)
		}
	} else {
		seek = append(append([]byte{}, prefix...), lo...)
	}

	var out []scannedRow
	for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
		if len(out)%256 == 255 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		item := it.Item()
		encKey, id, err := splitIndexEntryKey(prefix, item.KeyCopy(nil))
		if err != nil {
			return nil, err
		}

		if dir == Descending {
			if lo != nil && bytes.Compare(encKey, lo) < 0 {
				break
			}
			if hi != nil && !inclusive && bytes.Equal(encKey, hi) {
				continue
			}
		} else if hi != nil {
			c := bytes.Compare(encKey, hi)
			if c > 0 || (c == 0 && !inclusive) {
				break
			}
		}

		var entry indexEntry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptIndex, err)
		}
		out = append(out, scannedRow{encKey: encKey, id: id, entry: entry})
		if stopAfter > 0 && len(out) >= stopAfter {
			break
		}
	}
	return out, nil
}

func mapRows(scanned []scannedRow, docs map[string]*RawDocument) ([]Row, error) {
	rows := make([]Row, 0, len(scanned))
	for _, r := range scanned {
		key, err := decodeKey(r.entry.Key)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			ID:     r.id,
			Key:    key,
			RawKey: r.entry.Key,
			Value:  r.entry.Value,
			Doc:    docs[r.id],
		})
	}
	return rows, nil
}

// reduceRows folds consecutive rows sharing a group key. Rows arrive in key
// order, so equal group keys are always adjacent.
func reduceRows(v *View, scanned []scannedRow, p QueryParams) ([]Row, error) {
	reducer := v.Reduce
	if p.Reducer != nil {
		reducer = p.Reducer
	}

	level := -1 // whole key
	switch {
	case p.GroupLevel > 0:
		level = p.GroupLevel
	case !p.Group:
		level = 0 // everything in one group
	}

	var (
		rows     []Row
		values   []json.RawMessage
		curKey   any
		curEnc   []byte
		hasGroup bool
	)
	flush := func() error {
		if !hasGroup {
			return nil
		}
		reduced, err := reducer.Reduce(values)
		if err != nil {
			return fmt.Errorf("reduce %s: %w", v.Name, err)
		}
		val, err := json.Marshal(reduced)
		if err != nil {
			return err
		}
		rawKey, err := json.Marshal(curKey)
		if err != nil {
			return err
		}
		rows = append(rows, Row{Key: curKey, RawKey: rawKey, Value: val})
		values = values[:0:0]
		return nil
	}

	for _, r := range scanned {
		var gk any
		if level != 0 {
			key, err := decodeKey(r.entry.Key)
			if err != nil {
				return nil, err
			}
			gk = key
			if level > 0 {
				gk = groupKey(key, level)
			}
		}
		enc, err := EncodeKey(gk)
		if err != nil {
			return nil, err
		}
		if !hasGroup || !bytes.Equal(enc, curEnc) {
			if err := flush(); err != nil {
				return nil, err
			}
			curKey, curEnc, hasGroup = gk, enc, true
		}
		values = append(values, r.entry.Value)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return rows, nil
}

func decodeKey(raw json.RawMessage) (any, error) {
	var key any
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("%w: key: %w", ErrCorruptIndex, err)
	}
	return key, nil
}

func page(rows []Row, skip, limit int) []Row {
	if skip >= len(rows) {
		return []Row{}
	}
	rows = rows[skip:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
