// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Reducer folds the values of one group of index rows into a single value.
type Reducer interface {
	Reduce(values []json.RawMessage) (any, error)
}

// ReducerFunc adapts a function to the Reducer interface.
type ReducerFunc func(values []json.RawMessage) (any, error)

// Reduce calls f(values).
func (f ReducerFunc) Reduce(values []json.RawMessage) (any, error) {
	return f(values)
}

// CountReducer counts the rows of a group.
var CountReducer Reducer = ReducerFunc(func(values []json.RawMessage) (any, error) {
	return len(values), nil
})

// SumReducer adds up numeric row values.
var SumReducer Reducer = ReducerFunc(func(values []json.RawMessage) (any, error) {
	var sum float64
	for _, raw := range values {
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("sum reducer: %w", err)
		}
		sum += n
	}
	return sum, nil
})

// SingleValueReducer yields the row value when the group holds exactly one
// row and null otherwise. Applied per grid cell it isolates lone points.
var SingleValueReducer Reducer = ReducerFunc(func(values []json.RawMessage) (any, error) {
	if len(values) != 1 {
		return nil, nil
	}
	return values[0], nil
})
