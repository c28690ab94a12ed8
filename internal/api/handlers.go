// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"context"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/cache"
	"github.com/kublaj/World-Cleanup-Day/internal/config"
	"github.com/kublaj/World-Cleanup-Day/internal/grid"
	"github.com/kublaj/World-Cleanup-Day/internal/models"
)

// Store is the part of the data layer the handlers use. *database.DB
// implements it.
type Store interface {
	Ping(ctx context.Context) error
	BreakerState() string

	GetDataset(ctx context.Context, id string) (*models.Dataset, error)
	GetOverview(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) (*models.Overview, error)
	GetOverviewClusters(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.Cluster, error)
	GetOverviewTrashpoints(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox) ([]models.PointSummary, error)
	GetTrashpointsInBoundingBox(ctx context.Context, datasetID string, cellSize float64, box grid.BoundingBox, strict bool) ([]models.PointSummary, error)
	GetGridCellTrashpoints(ctx context.Context, datasetID string, cellSize float64, cell grid.Cell) ([]models.PointSummary, error)

	GetArea(ctx context.Context, id string) (*models.Area, error)
	CountAreaTrashpoints(ctx context.Context, areaCode string, byStatus bool) (models.RegionCount, error)
	GetAreaTrashpoints(ctx context.Context, areaCode string, page models.Page) ([]models.Trashpoint, error)

	GetAccount(ctx context.Context, id string) (*models.Account, error)
	CreateOrTouchSession(ctx context.Context, accountID string, days int) (*models.Session, error)
	VerifyAndTouchSession(ctx context.Context, id string, days int) (*models.Session, bool, error)
	RemoveSession(ctx context.Context, id string) (bool, error)
}

// Handler serves the API endpoints.
type Handler struct {
	db        Store
	config    *config.Config
	cache     *cache.Cache
	startTime time.Time
}

// NewHandler creates a handler over db. cfg supplies session lifetime, page
// size limits and the overview cache settings.
func NewHandler(db Store, cfg *config.Config) *Handler {
	h := &Handler{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
	if cfg != nil && cfg.API.OverviewCacheTTL > 0 {
		h.cache = cache.New(cfg.API.OverviewCacheSize, cfg.API.OverviewCacheTTL)
	}
	return h
}

func (h *Handler) sessionDays() int {
	if h.config == nil || h.config.Sessions.ExpirationDays <= 0 {
		return defaultSessionDays
	}
	return h.config.Sessions.ExpirationDays
}

// defaultSessionDays applies when no config is given.
const defaultSessionDays = 30
