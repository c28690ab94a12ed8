// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package store is an embedded document store on top of BadgerDB.
//
// Documents carry a revision token that advances on every committed write;
// ConditionalUpdate only succeeds against the current token. Views are
// secondary indexes maintained inside the same transaction as the document
// write, keyed by order-preserving composite keys, and queried by range with
// optional grouping and reduction.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
)

const maxIDLength = 512

// DocumentStore is the primitive surface the mutator, the spatial adapter and
// the data layer are written against.
type DocumentStore interface {
	Create(ctx context.Context, kind, id string, fields, system Patch) (*RawDocument, error)
	ReadOne(ctx context.Context, kind, id string) (*RawDocument, error)
	ConditionalUpdate(ctx context.Context, doc *RawDocument, fieldPatch, systemPatch Patch) (*RawDocument, error)
	Remove(ctx context.Context, kind, id string) (bool, error)
	Query(ctx context.Context, view string, params QueryParams) (*QueryResult, error)
}

// Options configures Open.
type Options struct {
	Path         string
	InMemory     bool
	SyncWrites   bool
	Compression  string // none, snappy, zstd
	MemTableSize int64
}

// Store is a badger-backed DocumentStore.
type Store struct {
	db     *badger.DB
	ownsDB bool

	mu     sync.RWMutex
	views  map[string]*View
	byKind map[string][]*View

	events *logging.StoreEventLogger
}

// Open opens (or creates) a badger database and wraps it.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.WithSyncWrites(opts.SyncWrites)
	bopts.Logger = nil

	switch strings.ToLower(opts.Compression) {
	case "zstd":
		bopts = bopts.WithCompression(options.ZSTD)
	case "none":
		bopts = bopts.WithCompression(options.None)
	default:
		bopts = bopts.WithCompression(options.Snappy)
	}
	if opts.MemTableSize > 0 {
		bopts = bopts.WithMemTableSize(opts.MemTableSize)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %q: %w", ErrStoreUnavailable, opts.Path, err)
	}

	s := New(db)
	s.ownsDB = true

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Str("compression", opts.Compression).
		Msg("Document store opened")
	return s, nil
}

// New wraps an already opened badger database. Close will not close db.
func New(db *badger.DB) *Store {
	return &Store{
		db:     db,
		views:  make(map[string]*View),
		byKind: make(map[string][]*View),
		events: logging.NewStoreEventLogger("store"),
	}
}

// Close closes the underlying database when it was opened by Open.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	logging.Info().Msg("Document store closing")
	return s.db.Close()
}

// RegisterView adds a view. Register views before writing documents of
// their kind, or call Reindex afterwards.
func (s *Store) RegisterView(v View) error {
	if err := v.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.views[v.Name]; exists {
		return fmt.Errorf("%w: view %s registered twice", ErrInvalidQuery, v.Name)
	}
	view := v
	s.views[v.Name] = &view
	s.byKind[v.Kind] = append(s.byKind[v.Kind], &view)
	return nil
}

// Views returns the registered view names, sorted.
func (s *Store) Views() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.views))
	for name := range s.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) view(name string) (*View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	return v, nil
}

func (s *Store) viewsFor(kind string) []*View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byKind[kind]
}

// Create stores a new document with caller fields and system fields (system
// fields applied last). An empty id is replaced with a random one.
func (s *Store) Create(ctx context.Context, kind, id string, fields, system Patch) (doc *RawDocument, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("create", kind, time.Since(start), infraOnly(err)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		id = NewID()
	}
	if err := validateIdentity(kind, id); err != nil {
		return nil, err
	}

	doc = &RawDocument{ID: id, Rev: firstRevision(), Kind: kind, Fields: map[string]json.RawMessage{}}
	if err := doc.apply(fields); err != nil {
		return nil, err
	}
	if err := doc.apply(system); err != nil {
		return nil, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(docKey(kind, id))
		if err == nil {
			return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, kind, id)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: get %s/%s: %w", ErrStoreUnavailable, kind, id, err)
		}
		return s.writeDoc(txn, nil, doc)
	})
	if err != nil {
		return nil, s.mapTxnError(err, kind)
	}
	return doc, nil
}

// ReadOne returns the current document or ErrNotFound.
func (s *Store) ReadOne(ctx context.Context, kind, id string) (doc *RawDocument, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("read", kind, time.Since(start), infraOnly(err)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getDoc(txn, kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ConditionalUpdate applies fieldPatch then systemPatch to the stored
// document if its revision still equals doc.Rev, advancing the revision and
// rewriting the document's index rows in the same transaction.
func (s *Store) ConditionalUpdate(ctx context.Context, doc *RawDocument, fieldPatch, systemPatch Patch) (updated *RawDocument, err error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("update", doc.Kind, time.Since(start), infraOnly(err)) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateIdentity(doc.Kind, doc.ID); err != nil {
		return nil, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := getDoc(txn, doc.Kind, doc.ID)
		if err != nil {
			return err
		}
		if current.Rev != doc.Rev {
			return fmt.Errorf("%w: %s/%s has %s, caller holds %s",
				ErrRevisionConflict, doc.Kind, doc.ID, current.Rev, doc.Rev)
		}

		next := current.clone()
		if err := next.apply(fieldPatch); err != nil {
			return err
		}
		if err := next.apply(systemPatch); err != nil {
			return err
		}
		next.Rev = nextRevision(current.Rev)

		if err := s.writeDoc(txn, current, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, s.mapTxnError(err, doc.Kind)
	}
	return updated, nil
}

// Remove deletes a document and its index rows. It reports false when the
// document did not exist.
func (s *Store) Remove(ctx context.Context, kind, id string) (removed bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("remove", kind, time.Since(start), infraOnly(err)) }()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := getDoc(txn, kind, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.deleteIndexRows(txn, current); err != nil {
			return err
		}
		if err := txn.Delete(docKey(kind, id)); err != nil {
			return fmt.Errorf("%w: delete %s/%s: %w", ErrStoreUnavailable, kind, id, err)
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, s.mapTxnError(err, kind)
	}
	return removed, nil
}

// List returns documents of one kind ordered by id.
func (s *Store) List(ctx context.Context, kind string, limit, skip int) ([]*RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []*RawDocument
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = docPrefix(kind)
		it := txn.NewIterator(opts)
		defer it.Close()

		seen := 0
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if seen++; seen <= skip {
				continue
			}
			doc, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			if limit > 0 && len(docs) >= limit {
				break
			}
		}
		return nil
	})
	return docs, err
}

// Reindex rebuilds a view from every document of its kind.
func (s *Store) Reindex(ctx context.Context, name string) error {
	v, err := s.view(name)
	if err != nil {
		return err
	}
	start := time.Now()

	if err := s.db.DropPrefix(viewPrefix(v.Name)); err != nil {
		return fmt.Errorf("%w: drop view %s: %w", ErrStoreUnavailable, v.Name, err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	count := 0
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = docPrefix(v.Kind)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			rows, err := v.entries(doc)
			if err != nil {
				return err
			}
			for _, r := range rows {
				if err := wb.Set(r.key, r.value); err != nil {
					return fmt.Errorf("%w: reindex %s: %w", ErrStoreUnavailable, v.Name, err)
				}
			}
			count++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("%w: flush reindex %s: %w", ErrStoreUnavailable, v.Name, err)
	}

	s.events.LogReindex(v.Name, count, time.Since(start))
	return nil
}

// ReindexAll rebuilds every registered view.
func (s *Store) ReindexAll(ctx context.Context) error {
	for _, name := range s.Views() {
		if err := s.Reindex(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// writeDoc replaces old with next (old may be nil) and swaps their index rows.
func (s *Store) writeDoc(txn *badger.Txn, old, next *RawDocument) error {
	if old != nil {
		if err := s.deleteIndexRows(txn, old); err != nil {
			return err
		}
	}
	for _, v := range s.viewsFor(next.Kind) {
		rows, err := v.entries(next)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := txn.Set(r.key, r.value); err != nil {
				return fmt.Errorf("%w: index %s: %w", ErrStoreUnavailable, v.Name, err)
			}
		}
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", next.Kind, next.ID, err)
	}
	if err := txn.Set(docKey(next.Kind, next.ID), data); err != nil {
		return fmt.Errorf("%w: set %s/%s: %w", ErrStoreUnavailable, next.Kind, next.ID, err)
	}
	return nil
}

// deleteIndexRows removes the rows doc contributed, found by re-running the
// view maps over the stored body.
func (s *Store) deleteIndexRows(txn *badger.Txn, doc *RawDocument) error {
	for _, v := range s.viewsFor(doc.Kind) {
		rows, err := v.entries(doc)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := txn.Delete(r.key); err != nil {
				return fmt.Errorf("%w: unindex %s: %w", ErrStoreUnavailable, v.Name, err)
			}
		}
	}
	return nil
}

// mapTxnError turns badger's commit-time conflict into ErrRevisionConflict
// and wraps other badger failures as ErrStoreUnavailable.
func (s *Store) mapTxnError(err error, kind string) error {
	switch {
	case errors.Is(err, badger.ErrConflict):
		metrics.RecordRevisionConflict(kind)
		return fmt.Errorf("%w: concurrent commit on %s", ErrRevisionConflict, kind)
	case errors.Is(err, ErrRevisionConflict):
		metrics.RecordRevisionConflict(kind)
		return err
	case errors.Is(err, badger.ErrTxnTooBig), errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}

func getDoc(txn *badger.Txn, kind, id string) (*RawDocument, error) {
	item, err := txn.Get(docKey(kind, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %w", ErrStoreUnavailable, kind, id, err)
	}
	return decodeItem(item)
}

func decodeItem(item *badger.Item) (*RawDocument, error) {
	var doc RawDocument
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", item.Key(), err)
	}
	if doc.Fields == nil {
		doc.Fields = map[string]json.RawMessage{}
	}
	return &doc, nil
}

func validateIdentity(kind, id string) error {
	if kind == "" || strings.ContainsRune(kind, '/') {
		return fmt.Errorf("%w: kind %q", ErrInvalidDocument, kind)
	}
	if id == "" || len(id) > maxIDLength {
		return fmt.Errorf("%w: id %q", ErrInvalidDocument, id)
	}
	return nil
}

// infraOnly keeps expected outcomes out of the error metrics.
func infraOnly(err error) error {
	if IsInfrastructure(err) {
		return err
	}
	return nil
}
