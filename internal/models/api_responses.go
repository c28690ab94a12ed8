// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package models

import (
	"time"
)

// APIResponse is the envelope of every HTTP response.
//
// Status field values:
//   - "success": see Data
//   - "error": see Error
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"scale": 3, "clusters": [...], "points": [...]},
//	  "metadata": {"timestamp": "2026-09-20T09:00:00Z", "query_time_ms": 4}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Page selects one page of a listing. Zero values mean size 10, page 1.
type Page struct {
	Size   int `json:"size" validate:"omitempty,min=1,max=1000"`
	Number int `json:"number" validate:"omitempty,min=1"`
}

// DefaultPageSize is used when Page.Size is zero.
const DefaultPageSize = 10

// Normalize fills zero fields with defaults.
func (p Page) Normalize() Page {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Number <= 0 {
		p.Number = 1
	}
	return p
}

// Skip is the number of rows before the page.
func (p Page) Skip() int {
	n := p.Normalize()
	return n.Size * (n.Number - 1)
}

// Limit is the page size.
func (p Page) Limit() int {
	return p.Normalize().Size
}

// SessionResponse is returned by the session endpoints.
type SessionResponse struct {
	Valid   bool     `json:"valid"`
	Session *Session `json:"session,omitempty"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	BreakerState   string  `json:"breaker_state"`
	Uptime         float64 `json:"uptime_seconds"`
}
