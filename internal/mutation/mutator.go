// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package mutation implements optimistic read-modify-write against a
// revisioned document store.
//
// Every write is conditional on the revision the caller read. A revision
// conflict proves the read was stale, so the mutator re-reads and tries
// again, up to Policy.MaxAttempts. Any other failure is returned at once.
// The three terminal states are reported as distinct Outcome values:
// a caller can tell "the document is gone" apart from "gave up under
// contention".
package mutation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// Outcome is the terminal state of one Apply call.
type Outcome int

const (
	// Updated means a conditional write committed.
	Updated Outcome = iota + 1
	// NotFound means the document did not exist, or disappeared between attempts.
	NotFound
	// Exhausted means every attempt lost a revision race.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case NotFound:
		return "not_found"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration // 0 = retry immediately
	MaxBackoff  time.Duration
}

// DefaultPolicy retries up to three times with no delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3}
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Backoff <= 0 {
		return 0
	}
	d := p.Backoff << (attempt - 1)
	if d <= 0 || (p.MaxBackoff > 0 && d > p.MaxBackoff) {
		d = p.MaxBackoff
	}
	return d
}

// Store is the part of store.DocumentStore the mutator needs.
type Store interface {
	ReadOne(ctx context.Context, kind, id string) (*store.RawDocument, error)
	ConditionalUpdate(ctx context.Context, doc *store.RawDocument, fieldPatch, systemPatch store.Patch) (*store.RawDocument, error)
}

// Request describes one mutation.
type Request struct {
	Kind string
	ID   string

	// Fields are caller field changes.
	Fields store.Patch

	// System fields are merged after Fields on every attempt. When
	// SystemFunc is set it is called once per attempt instead, so
	// time-derived values such as expiresAt belong to the attempt that
	// commits them.
	System     store.Patch
	SystemFunc func() store.Patch

	// Snapshot is an already loaded copy of the document. It is used for
	// the first attempt only; every retry re-reads.
	Snapshot *store.RawDocument
}

func (r Request) system() store.Patch {
	if r.SystemFunc != nil {
		return r.SystemFunc()
	}
	return r.System
}

// Result reports how a mutation ended.
type Result struct {
	Outcome  Outcome
	Doc      *store.RawDocument // set when Outcome is Updated
	Attempts int
}

// Mutator runs the optimistic retry protocol.
type Mutator struct {
	store  Store
	policy Policy
	events *logging.StoreEventLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New returns a mutator. A policy with MaxAttempts < 1 is replaced by
// DefaultPolicy.
func New(s Store, p Policy) *Mutator {
	if p.MaxAttempts < 1 {
		p = DefaultPolicy()
	}
	return &Mutator{
		store:  s,
		policy: p,
		events: logging.NewStoreEventLogger("mutation"),
		sleep:  sleepCtx,
	}
}

// Policy returns the policy in effect.
func (m *Mutator) Policy() Policy {
	return m.policy
}

// Apply reads the document (or takes req.Snapshot on the first attempt) and
// writes the patches conditionally on its revision, retrying on conflict.
// The returned error is non-nil only for failures other than a missing
// document or a lost revision race.
func (m *Mutator) Apply(ctx context.Context, req Request) (Result, error) {
	if req.Snapshot != nil && (req.Snapshot.Kind != req.Kind || req.Snapshot.ID != req.ID) {
		return Result{}, fmt.Errorf("%w: snapshot %s/%s does not match %s/%s",
			store.ErrInvalidDocument, req.Snapshot.Kind, req.Snapshot.ID, req.Kind, req.ID)
	}

	for attempt := 1; ; attempt++ {
		res, retry, err := m.attempt(ctx, req, attempt)
		if err != nil {
			return Result{Attempts: attempt}, err
		}
		if !retry {
			m.record(ctx, req, res)
			return res, nil
		}

		m.events.LogRevisionConflict(ctx, req.Kind, req.ID, attempt)
		if attempt >= m.policy.MaxAttempts {
			res = Result{Outcome: Exhausted, Attempts: attempt}
			m.record(ctx, req, res)
			return res, nil
		}
		if d := m.policy.delay(attempt); d > 0 {
			if err := m.sleep(ctx, d); err != nil {
				return Result{Attempts: attempt}, err
			}
		}
	}
}

// attempt performs one read + conditional write. retry is true when the
// write lost a revision race.
func (m *Mutator) attempt(ctx context.Context, req Request, n int) (res Result, retry bool, err error) {
	doc := req.Snapshot
	if n > 1 || doc == nil {
		doc, err = m.store.ReadOne(ctx, req.Kind, req.ID)
		if errors.Is(err, store.ErrNotFound) {
			return Result{Outcome: NotFound, Attempts: n}, false, nil
		}
		if err != nil {
			return Result{}, false, err
		}
	}

	updated, err := m.store.ConditionalUpdate(ctx, doc, req.Fields, req.system())
	switch {
	case err == nil:
		return Result{Outcome: Updated, Doc: updated, Attempts: n}, false, nil
	case errors.Is(err, store.ErrRevisionConflict):
		return Result{}, true, nil
	case errors.Is(err, store.ErrNotFound):
		return Result{Outcome: NotFound, Attempts: n}, false, nil
	default:
		return Result{}, false, err
	}
}

func (m *Mutator) record(ctx context.Context, req Request, res Result) {
	metrics.RecordMutation(req.Kind, res.Outcome.String(), res.Attempts)
	switch res.Outcome {
	case Exhausted:
		m.events.LogMutationExhausted(ctx, req.Kind, req.ID, res.Attempts)
	case NotFound:
		m.events.LogMutationNotFound(ctx, req.Kind, req.ID)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
