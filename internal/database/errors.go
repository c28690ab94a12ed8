// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"errors"
	"fmt"
	"io"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/mutation"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = store.ErrNotFound

	// ErrContention is returned when a modification lost every revision
	// race it was allowed to retry.
	ErrContention = errors.New("database: gave up after repeated revision conflicts")
)

// outcomeError turns a non-updated mutation outcome into its sentinel error.
func outcomeError(res mutation.Result, kind, id string) error {
	switch res.Outcome {
	case mutation.Updated:
		return nil
	case mutation.NotFound:
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	case mutation.Exhausted:
		return fmt.Errorf("%s %s after %d attempts: %w", kind, id, res.Attempts, ErrContention)
	default:
		return fmt.Errorf("%s %s: unexpected mutation outcome %s", kind, id, res.Outcome)
	}
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}
