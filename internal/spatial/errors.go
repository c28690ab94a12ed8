// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package spatial

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrIndexShape is matched by every *IndexShapeError.
var ErrIndexShape = errors.New("spatial: index row has unexpected shape")

// IndexShapeError reports a non-null index row that could not be mapped back
// into a point or cluster.
type IndexShapeError struct {
	View string
	Key  json.RawMessage
	Err  error
}

func (e *IndexShapeError) Error() string {
	return fmt.Sprintf("spatial: view %s row %s: %v", e.View, e.Key, e.Err)
}

// Unwrap exposes both ErrIndexShape and the decoding cause.
func (e *IndexShapeError) Unwrap() []error {
	return []error{ErrIndexShape, e.Err}
}
