// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// SessionSweeper removes expired sessions. *database.DB satisfies it.
type SessionSweeper interface {
	SweepExpiredSessions(ctx context.Context) (int, error)
}

// DefaultSweepInterval applies when no interval is configured.
const DefaultSweepInterval = time.Hour

// SessionSweeperService sweeps expired sessions once at start and then on
// every tick of interval.
//
// A sweep that fails because the store breaker is open is skipped and
// retried on the next tick. Any other failure ends Serve with the error
// so the supervisor restarts the service with backoff.
type SessionSweeperService struct {
	sweeper  SessionSweeper
	interval time.Duration
	name     string
}

// NewSessionSweeperService creates the sweeper. A non-positive interval
// means DefaultSweepInterval.
func NewSessionSweeperService(sweeper SessionSweeper, interval time.Duration) *SessionSweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeperService{
		sweeper:  sweeper,
		interval: interval,
		name:     "session-sweeper",
	}
}

// Serve implements suture.Service.
func (s *SessionSweeperService) Serve(ctx context.Context) error {
	logger := logging.WithComponent(s.name)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		removed, err := s.sweeper.SweepExpiredSessions(ctx)
		switch {
		case err == nil:
			if removed > 0 {
				logger.Info().Int("removed", removed).Msg("Swept expired sessions")
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, store.ErrStoreUnavailable):
			logger.Warn().Err(err).Msg("Store unavailable, skipping session sweep")
		default:
			return fmt.Errorf("session sweep failed: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// String implements fmt.Stringer; suture names the service with it.
func (s *SessionSweeperService) String() string {
	return s.name
}
