// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StoreEventLogger carries the domain-specific log lines emitted by the
// document store, the optimistic mutator and the spatial adapter.
type StoreEventLogger struct {
	logger zerolog.Logger
}

// NewStoreEventLogger creates a StoreEventLogger on the global logger.
func NewStoreEventLogger(component string) *StoreEventLogger {
	return &StoreEventLogger{logger: WithComponent(component)}
}

// NewStoreEventLoggerWithLogger creates a StoreEventLogger on a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStoreEventLoggerWithLogger(logger zerolog.Logger, component string) *StoreEventLogger {
	return &StoreEventLogger{logger: logger.With().Str("component", component).Logger()}
}

func (e *StoreEventLogger) ctx(ctx context.Context) zerolog.Logger {
	return withIDs(ctx, e.logger)
}

// LogRevisionConflict logs a lost compare-and-swap on a document.
func (e *StoreEventLogger) LogRevisionConflict(ctx context.Context, kind, id string, attempt int) {
	l := e.ctx(ctx)
	l.Debug().
		Str("kind", kind).
		Str("doc_id", id).
		Int("attempt", attempt).
		Msg("revision conflict")
}

// LogMutationExhausted logs a mutation that ran out of attempts.
func (e *StoreEventLogger) LogMutationExhausted(ctx context.Context, kind, id string, attempts int) {
	l := e.ctx(ctx)
	l.Warn().
		Str("kind", kind).
		Str("doc_id", id).
		Int("attempts", attempts).
		Msg("mutation gave up after repeated conflicts")
}

// LogMutationNotFound logs a mutation whose target document is absent.
func (e *StoreEventLogger) LogMutationNotFound(ctx context.Context, kind, id string) {
	l := e.ctx(ctx)
	l.Debug().
		Str("kind", kind).
		Str("doc_id", id).
		Msg("mutation target not found")
}

// LogOverSelected logs rows the view range returned outside the requested cell range.
func (e *StoreEventLogger) LogOverSelected(ctx context.Context, view string, kept, dropped int) {
	if dropped == 0 {
		return
	}
	l := e.ctx(ctx)
	l.Trace().
		Str("view", view).
		Int("kept", kept).
		Int("dropped", dropped).
		Msg("discarded over-selected rows")
}

// LogIndexShape logs a view row that did not decode into the expected shape.
func (e *StoreEventLogger) LogIndexShape(ctx context.Context, view string, err error) {
	l := e.ctx(ctx)
	l.Error().
		Str("view", view).
		Err(err).
		Msg("malformed index row")
}

// LogReindex logs the completion of a full view rebuild.
func (e *StoreEventLogger) LogReindex(view string, docs int, took time.Duration) {
	e.logger.Info().
		Str("view", view).
		Int("documents", docs).
		Dur("took", took).
		Msg("view rebuilt")
}

// LogSessionSweep logs an expired-session sweep.
func (e *StoreEventLogger) LogSessionSweep(removed int, took time.Duration) {
	ev := e.logger.Debug()
	if removed > 0 {
		ev = e.logger.Info()
	}
	ev.Int("removed", removed).
		Dur("took", took).
		Msg("expired sessions swept")
}
