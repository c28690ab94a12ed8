// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"net/http"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// Health reports store connectivity and the circuit breaker state. It
// always answers 200; status is "degraded" when the store is unreachable.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	connected := h.db.Ping(r.Context()) == nil

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:         status,
		Version:        Version,
		StoreConnected: connected,
		BreakerState:   h.db.BreakerState(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}, start)
}

// HealthLive answers 200 while the process is running, regardless of the
// store.
//
// GET /api/v1/health/live
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady answers 503 until the store is reachable.
//
// GET /api/v1/health/ready
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	connected := h.db.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !connected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"store_connected": connected,
			"breaker_state":   h.db.BreakerState(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}
