// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Document store metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wcd_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "kind"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_store_operation_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"operation", "kind", "error_type"},
	)

	StoreRevisionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_store_revision_conflicts_total",
			Help: "Conditional updates rejected because the revision moved",
		},
		[]string{"kind"},
	)

	ViewQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wcd_view_query_duration_seconds",
			Help:    "Duration of view range queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"view", "reduced"},
	)

	ViewRowsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_view_rows_scanned_total",
			Help: "Index rows read while answering view queries",
		},
		[]string{"view"},
	)

	// Optimistic mutation metrics
	MutationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_mutation_outcomes_total",
			Help: "Mutation results by outcome (updated, not_found, exhausted, error)",
		},
		[]string{"kind", "outcome"},
	)

	MutationAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wcd_mutation_attempts",
			Help:    "Number of read-modify-write attempts per mutation",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 13},
		},
		[]string{"kind"},
	)

	// Spatial aggregation metrics
	SpatialQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_spatial_queries_total",
			Help: "Spatial aggregation queries by operation and scale",
		},
		[]string{"operation", "scale"},
	)

	SpatialOverSelectedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_spatial_over_selected_rows_total",
			Help: "Rows returned by the index range that fell outside the requested cell range",
		},
		[]string{"operation"},
	)

	SpatialIndexShapeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_spatial_index_shape_errors_total",
			Help: "Index rows that could not be decoded into the expected shape",
		},
		[]string{"view"},
	)

	// Session metrics
	SessionsTouched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_sessions_touched_total",
			Help: "Session heartbeat results",
		},
		[]string{"result"},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wcd_sessions_swept_total",
			Help: "Expired sessions removed by the background sweeper",
		},
	)

	// Overview cache metrics
	OverviewCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_overview_cache_lookups_total",
			Help: "Overview response cache lookups",
		},
		[]string{"endpoint", "result"}, // result: "hit", "miss"
	)

	OverviewCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wcd_overview_cache_entries",
			Help: "Entries held by the overview response cache",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wcd_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wcd_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wcd_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordStoreOperation records a document store operation.
func RecordStoreOperation(operation, kind string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, kind).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, kind, errorType(err)).Inc()
	}
}

// RecordCacheLookup counts an overview cache hit or miss and updates the
// entry gauge.
func RecordCacheLookup(endpoint string, hit bool, entries int) {
	result := "miss"
	if hit {
		result = "hit"
	}
	OverviewCacheLookups.WithLabelValues(endpoint, result).Inc()
	OverviewCacheEntries.Set(float64(entries))
}

// RecordViewQuery records a view range query and the rows it scanned.
func RecordViewQuery(view string, reduced bool, rows int, duration time.Duration) {
	r := "false"
	if reduced {
		r = "true"
	}
	ViewQueryDuration.WithLabelValues(view, r).Observe(duration.Seconds())
	ViewRowsScanned.WithLabelValues(view).Add(float64(rows))
}

// RecordRevisionConflict counts a lost compare-and-swap.
func RecordRevisionConflict(kind string) {
	StoreRevisionConflicts.WithLabelValues(kind).Inc()
}

// RecordMutation records the outcome and attempt count of a mutation.
func RecordMutation(kind, outcome string, attempts int) {
	MutationOutcomes.WithLabelValues(kind, outcome).Inc()
	MutationAttempts.WithLabelValues(kind).Observe(float64(attempts))
}

// RecordSpatialQuery counts a spatial aggregation and any discarded rows.
func RecordSpatialQuery(operation string, scale, overSelected int) {
	SpatialQueries.WithLabelValues(operation, scaleLabel(scale)).Inc()
	if overSelected > 0 {
		SpatialOverSelectedRows.WithLabelValues(operation).Add(float64(overSelected))
	}
}

// RecordIndexShapeError counts a malformed index row.
func RecordIndexShapeError(view string) {
	SpatialIndexShapeErrors.WithLabelValues(view).Inc()
}

// RecordSessionTouch records a heartbeat result (touched, expired, missing, conflict).
func RecordSessionTouch(result string) {
	SessionsTouched.WithLabelValues(result).Inc()
}

// RecordSessionSweep adds removed sessions to the sweep counter.
func RecordSessionSweep(removed int) {
	SessionsSwept.Add(float64(removed))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// errorType keeps the label cardinality bounded.
func errorType(err error) string {
	msg := err.Error()
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}

func scaleLabel(scale int) string {
	if scale < 0 {
		return "invalid"
	}
	return strconv.Itoa(scale)
}
