// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package database is the data layer of World Cleanup Day: one method per
// operation on datasets, accounts, sessions, trashpoints, images and areas.
//
// # Architecture
//
// The package is organized by entity:
//
//   - database.go: lifecycle (open with retry, view registration, close)
//   - views.go: every secondary index the data layer queries
//   - entities.go: document to entity decoding and shared query helpers
//   - datasets.go, accounts.go, sessions.go, trashpoints.go, images.go,
//     areas.go: the operations
//   - overview.go: map overview queries, delegated to the spatial adapter
//
// # Storage
//
// Documents live in the embedded badger store (internal/store) behind a
// gobreaker circuit breaker. Reads and creates go straight to the store;
// every modification goes through the optimistic mutator
// (internal/mutation), which retries lost revision races up to the
// configured bound.
//
// # Errors
//
// Missing documents are reported as ErrNotFound and repeated revision
// conflicts as ErrContention. Both are checkable with errors.Is. Store
// failures carry store.ErrStoreUnavailable.
//
// # Time-Ordered Listings
//
// Views that list entities newest first key them by creation time in Unix
// milliseconds and are queried in descending direction. Bounds are always
// given low to high; the store handles the reversal.
package database
