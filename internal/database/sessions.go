// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/mutation"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// sweepBatch bounds the sessions removed per sweep query.
const sweepBatch = 500

func expiresAfter(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, days)
}

// GetSession returns one session.
func (db *DB) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return getEntity[models.Session](ctx, db, models.KindSession, id)
}

// TouchSession pushes the expiry of a session to days from now.
//
// Heartbeats of one client can arrive a few milliseconds apart, so the
// write goes through the mutator: a lost revision race re-reads and tries
// again. The expiry is computed per attempt, so the committed value is never
// older than the read it was based on.
func (db *DB) TouchSession(ctx context.Context, id string, days int) (*models.Session, error) {
	res, err := db.mutator.Apply(ctx, mutation.Request{
		Kind: models.KindSession,
		ID:   id,
		SystemFunc: func() store.Patch {
			now := db.now()
			return store.Patch{"expiresAt": expiresAfter(now, days), "updatedAt": now}
		},
	})
	if err != nil {
		metrics.RecordSessionTouch("error")
		return nil, fmt.Errorf("touch session %s: %w", id, err)
	}
	metrics.RecordSessionTouch(res.Outcome.String())
	if err := outcomeError(res, models.KindSession, id); err != nil {
		return nil, err
	}
	return decodeEntity[models.Session](res.Doc)
}

// CreateOrTouchSession returns the session of an account with its expiry
// pushed to days from now, creating it when the account has none. Every
// account has at most one session: its id is derived from the account id.
func (db *DB) CreateOrTouchSession(ctx context.Context, accountID string, days int) (*models.Session, error) {
	id := models.SessionIDForAccount(accountID)

	s, err := db.TouchSession(ctx, id, days)
	if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	now := db.now()
	doc, err := db.docs.Create(ctx, models.KindSession, id,
		store.Patch{"accountId": accountID},
		store.Patch{"expiresAt": expiresAfter(now, days), "createdAt": now, "updatedAt": now})
	if errors.Is(err, store.ErrAlreadyExists) {
		// A concurrent login created it between our touch and create.
		return db.TouchSession(ctx, id, days)
	}
	if err != nil {
		return nil, fmt.Errorf("create session for account %s: %w", accountID, err)
	}
	return decodeEntity[models.Session](doc)
}

// VerifyAndTouchSession checks that a session exists and has not expired,
// and if so extends it. An expired session is removed. ok is false for
// missing and expired sessions.
func (db *DB) VerifyAndTouchSession(ctx context.Context, id string, days int) (session *models.Session, ok bool, err error) {
	s, err := db.GetSession(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if s.Expired(db.now()) {
		if _, err := db.RemoveSession(ctx, id); err != nil {
			return nil, false, err
		}
		metrics.RecordSessionTouch("expired")
		return nil, false, nil
	}

	s, err = db.TouchSession(ctx, id, days)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// RemoveSession deletes a session. It reports false when there was none.
func (db *DB) RemoveSession(ctx context.Context, id string) (bool, error) {
	removed, err := db.docs.Remove(ctx, models.KindSession, id)
	if err != nil {
		return false, fmt.Errorf("remove session %s: %w", id, err)
	}
	return removed, nil
}

// SweepExpiredSessions removes every session that has expired at now and
// returns how many were removed. Each candidate is re-read first, so a
// session touched after the index scan survives.
func (db *DB) SweepExpiredSessions(ctx context.Context) (int, error) {
	start := time.Now()
	now := db.now()
	removed := 0

	for {
		res, err := db.docs.Query(ctx, ViewSessionsByExpiry, store.QueryParams{
			EndKey: millis(now),
			Limit:  sweepBatch,
		})
		if err != nil {
			return removed, fmt.Errorf("sweep sessions: %w", err)
		}

		batch := 0
		for _, row := range res.Rows {
			s, err := db.GetSession(ctx, row.ID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return removed, err
			}
			if !s.Expired(now) {
				continue
			}
			ok, err := db.RemoveSession(ctx, row.ID)
			if err != nil {
				return removed, err
			}
			if ok {
				removed++
				batch++
			}
		}
		if len(res.Rows) < sweepBatch || batch == 0 {
			break
		}
	}

	metrics.RecordSessionSweep(removed)
	logging.NewStoreEventLogger("sessions").LogSessionSweep(removed, time.Since(start))
	return removed, nil
}
