// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

/*
Package cache provides a thread-safe, capacity-bounded LRU cache with TTL
expiration for API responses.

The API layer keeps recently served overview results (clusters, points and
cell listings) keyed by dataset, cell size and bounding box. A map client
that pans back and forth asks for the same boxes again and again; answering
those from memory skips the view scans.

# Expiration

Entries expire lazily: Get treats an entry older than the TTL as a miss and
drops it. There is no background goroutine, so a Cache needs no Close.
Writes to the store are not observed; a cached overview can lag a mutation
by at most the TTL.

# Keys

GenerateKey hashes the JSON encoding of a parameter struct so every handler
builds keys the same way:

	key := cache.GenerateKey("clusters", struct {
	    Dataset  string
	    CellSize float64
	    Box      grid.BoundingBox
	}{id, size, box})

# Statistics

Stats reports hits, misses, evictions and the current size. HitRate is a
convenience over the same counters.
*/
package cache
