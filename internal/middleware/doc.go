// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

/*
Package middleware provides HTTP middleware for the API router.

Every middleware has the chi signature func(http.Handler) http.Handler and
is mounted with r.Use:

  - RequestID: X-Request-ID propagation into the response, chi's request id
    and the logging context (request_id plus a new correlation_id)
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - AccessLog: one structured zerolog line per request
  - Compression: gzip for clients that accept it

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

	r.With(middleware.Compression).Get("/api/v1/datasets/{datasetID}/overview", h.Overview)

See Also:

  - internal/api: handlers wrapped by this middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
