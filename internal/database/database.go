// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/config"
	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/mutation"
	"github.com/kublaj/World-Cleanup-Day/internal/spatial"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// DB is the data layer over the embedded document store.
type DB struct {
	raw     *store.Store
	docs    store.DocumentStore
	breaker *store.BreakerStore
	mutator *mutation.Mutator
	spatial *spatial.Adapter

	// now is the clock behind every timestamp the data layer writes.
	now func() time.Time

	maxOpenTries int
	openDelay    time.Duration
}

// New opens the store described by cfg, registers every view and wires the
// breaker, the mutator and the spatial adapter on top of it.
func New(cfg *config.Config) (*DB, error) {
	if !cfg.Store.InMemory {
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		if err := os.MkdirAll(filepath.Clean(cfg.Store.Path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", cfg.Store.Path, err)
		}
	}

	db := &DB{maxOpenTries: 3, openDelay: 2 * time.Second}
	raw, err := db.openStore(context.Background(), store.Options{
		Path:         cfg.Store.Path,
		InMemory:     cfg.Store.InMemory,
		SyncWrites:   cfg.Store.SyncWrites,
		Compression:  cfg.Store.Compression,
		MemTableSize: cfg.Store.MemTableSize,
	})
	if err != nil {
		return nil, err
	}

	if err := db.init(raw, mutation.Policy{
		MaxAttempts: cfg.Mutation.MaxAttempts,
		Backoff:     cfg.Mutation.Backoff,
		MaxBackoff:  cfg.Mutation.MaxBackoff,
	}, store.BreakerSettings{
		MaxFailures: cfg.Store.BreakerMaxFailures,
		Timeout:     cfg.Store.BreakerTimeout,
		Interval:    cfg.Store.BreakerInterval,
	}); err != nil {
		closeWithLog(raw, "document store")
		return nil, err
	}

	if cfg.Store.ReindexOnStart {
		if err := raw.ReindexAll(context.Background()); err != nil {
			closeWithLog(raw, "document store")
			return nil, fmt.Errorf("failed to rebuild views: %w", err)
		}
	}
	return db, nil
}

// NewWithStore builds a DB over an already opened store. The store must not
// have any views registered yet. Close will close it.
func NewWithStore(raw *store.Store, policy mutation.Policy, breaker store.BreakerSettings) (*DB, error) {
	db := &DB{}
	if err := db.init(raw, policy, breaker); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) init(raw *store.Store, policy mutation.Policy, breaker store.BreakerSettings) error {
	for _, v := range append(Views(), spatial.Views()...) {
		if err := raw.RegisterView(v); err != nil {
			return fmt.Errorf("failed to register view %s: %w", v.Name, err)
		}
	}
	db.raw = raw
	db.breaker = store.NewBreakerStore(raw, breaker)
	db.docs = db.breaker
	db.mutator = mutation.New(db.docs, policy)
	db.spatial = spatial.NewAdapter(db.docs)
	db.now = func() time.Time { return time.Now().UTC() }
	return nil
}

// openStore opens badger with exponential backoff. A previous process may
// still hold the directory lock while it shuts down.
func (db *DB) openStore(ctx context.Context, opts store.Options) (*store.Store, error) {
	var lastErr error
	for attempt := 0; attempt < db.maxOpenTries; attempt++ {
		if attempt > 0 {
			delay := db.openDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		s, err := store.Open(opts)
		if err == nil {
			if attempt > 0 {
				logging.Info().Int("attempt", attempt+1).Msg("Document store opened after retry")
			}
			return s, nil
		}
		lastErr = err
		logging.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", db.maxOpenTries).
			Msg("Failed to open document store")
	}
	return nil, fmt.Errorf("failed to open document store after %d attempts: %w", db.maxOpenTries, lastErr)
}

// Close closes the underlying store.
func (db *DB) Close() error {
	return db.raw.Close()
}

// Ping reports whether the store answers a trivial query.
func (db *DB) Ping(ctx context.Context) error {
	_, err := db.docs.Query(ctx, ViewDatasets, store.QueryParams{Limit: 1})
	return err
}

// BreakerState returns the state of the store circuit breaker.
func (db *DB) BreakerState() string {
	return db.breaker.State()
}

// Policy returns the retry policy of the mutator.
func (db *DB) Policy() mutation.Policy {
	return db.mutator.Policy()
}

// Reindex rebuilds every view from the stored documents.
func (db *DB) Reindex(ctx context.Context) error {
	return db.raw.ReindexAll(ctx)
}
