// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ctxKey keys the values this package stores on a request context.
type ctxKey int

const (
	keyCorrelation ctxKey = iota
	keyRequest
	keyLogger
)

// GenerateCorrelationID returns a short random id, the first 8 characters of
// a UUID.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyCorrelation, id)
}

// ContextWithNewCorrelationID tags ctx with a fresh correlation id.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// CorrelationIDFromContext returns "" when ctx carries no correlation id.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, keyCorrelation)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequest, id)
}

// RequestIDFromContext returns "" when ctx carries no request id.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, keyRequest)
}

// ContextWithLogger makes logger the base for Ctx on this context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// LoggerFromContext falls back to the global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(keyLogger).(zerolog.Logger); ok {
		return l
	}
	return Logger()
}

// withIDs derives a logger from base carrying whichever request ids ctx has.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func withIDs(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	c := base.With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		c = c.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	return c.Logger()
}

// Ctx returns the context logger tagged with the request ids.
//
//	logging.Ctx(ctx).Info().Str("dataset", id).Msg("Overview served")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := withIDs(ctx, LoggerFromContext(ctx))
	return &l
}

// WithComponent tags the global logger with a component name.
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
