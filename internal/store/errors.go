// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the target document does not exist.
	ErrNotFound = errors.New("store: document not found")

	// ErrAlreadyExists is returned by Create when the id is taken.
	ErrAlreadyExists = errors.New("store: document already exists")

	// ErrRevisionConflict is returned by ConditionalUpdate when the stored
	// revision no longer matches the caller's, or when a concurrent commit
	// invalidated the transaction.
	ErrRevisionConflict = errors.New("store: revision conflict")

	// ErrStoreUnavailable wraps infrastructure failures, including requests
	// rejected by an open circuit breaker.
	ErrStoreUnavailable = errors.New("store: unavailable")

	// ErrUnknownView is returned when querying a view that was never registered.
	ErrUnknownView = errors.New("store: unknown view")

	// ErrInvalidKey is returned for view keys that cannot be encoded.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrInvalidQuery is returned for contradictory query parameters.
	ErrInvalidQuery = errors.New("store: invalid query")

	// ErrInvalidDocument is returned for documents with missing kind or id.
	ErrInvalidDocument = errors.New("store: invalid document")

	// ErrCorruptIndex is returned when an index entry cannot be parsed.
	ErrCorruptIndex = errors.New("store: corrupt index entry")
)

// IsInfrastructure reports whether err is a failure of the store itself
// rather than an expected domain outcome (missing document, lost race,
// duplicate id, bad query) or of the caller giving up (cancellation or its
// own deadline).
func IsInfrastructure(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrRevisionConflict),
		errors.Is(err, ErrUnknownView),
		errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, ErrInvalidDocument),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
