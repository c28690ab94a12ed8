// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kublaj/World-Cleanup-Day/internal/middleware"
)

// Router builds the HTTP route table.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router over handler. A nil cfg uses the default
// CORS and rate limit settings.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.PrometheusMetrics)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(securityHeaders)
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/datasets/{datasetID}", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitOverview))
		r.Use(securityHeaders)
		r.Use(middleware.Compression)

		r.Route("/overview", func(r chi.Router) {
			r.Get("/", router.handler.Overview)
			r.Get("/clusters", router.handler.Clusters)
			r.Get("/points", router.handler.Points)
			r.Get("/isolated", router.handler.Isolated)
		})
		r.Get("/cells/{col}/{row}", router.handler.Cell)
	})

	r.Route("/api/v1/areas/{areaID}", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(securityHeaders)
		r.Get("/", router.handler.Area)
		r.Get("/counts", router.handler.AreaCounts)
		r.With(middleware.Compression).Get("/trashpoints", router.handler.AreaTrashpoints)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(securityHeaders)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitSession)).
			Post("/accounts/{accountID}/session", router.handler.CreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Get("/", router.handler.VerifySession)
			r.Delete("/", router.handler.DeleteSession)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
