// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
)

// BreakerSettings configures the circuit breaker in front of a DocumentStore.
type BreakerSettings struct {
	Name        string
	MaxFailures uint32        // consecutive infrastructure failures before opening
	Timeout     time.Duration // open -> half-open
	Interval    time.Duration // closed-state count reset
	MaxRequests uint32        // probes allowed while half-open
}

// BreakerStore wraps a DocumentStore with a circuit breaker. Only
// infrastructure failures count against the breaker: a missing document, a
// lost revision race or a bad query leave it closed. While open, every call
// fails fast with ErrStoreUnavailable.
type BreakerStore struct {
	next DocumentStore
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerStore wraps next.
func NewBreakerStore(next DocumentStore, s BreakerSettings) *BreakerStore {
	if s.Name == "" {
		s.Name = "document-store"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().
					Str("breaker", s.Name).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return !IsInfrastructure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerStore{next: next, cb: cb, name: s.Name}
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case IsInfrastructure(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	}
	return result, err
}

func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func (b *BreakerStore) Create(ctx context.Context, kind, id string, fields, system Patch) (*RawDocument, error) {
	return castResult[*RawDocument](b.execute(func() (interface{}, error) {
		return b.next.Create(ctx, kind, id, fields, system)
	}))
}

func (b *BreakerStore) ReadOne(ctx context.Context, kind, id string) (*RawDocument, error) {
	return castResult[*RawDocument](b.execute(func() (interface{}, error) {
		return b.next.ReadOne(ctx, kind, id)
	}))
}

func (b *BreakerStore) ConditionalUpdate(ctx context.Context, doc *RawDocument, fieldPatch, systemPatch Patch) (*RawDocument, error) {
	return castResult[*RawDocument](b.execute(func() (interface{}, error) {
		return b.next.ConditionalUpdate(ctx, doc, fieldPatch, systemPatch)
	}))
}

func (b *BreakerStore) Remove(ctx context.Context, kind, id string) (bool, error) {
	return castResult[bool](b.execute(func() (interface{}, error) {
		return b.next.Remove(ctx, kind, id)
	}))
}

func (b *BreakerStore) Query(ctx context.Context, view string, params QueryParams) (*QueryResult, error) {
	return castResult[*QueryResult](b.execute(func() (interface{}, error) {
		return b.next.Query(ctx, view, params)
	}))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
