// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

/*
Package api provides the HTTP surface over the trashpoint data layer.

Key Components:

  - Router: chi route table and middleware stack
  - Handler: request handlers over the Store interface
  - Response formatting: the models.APIResponse envelope with timing metadata
  - Error handling: data layer errors mapped to status codes in respondStoreError

Endpoints:

	GET    /api/v1/health                                  store connectivity and breaker state
	GET    /api/v1/health/live                             liveness probe
	GET    /api/v1/health/ready                            readiness probe
	GET    /api/v1/datasets/{datasetID}/overview           clusters and single points
	GET    /api/v1/datasets/{datasetID}/overview/clusters  one cluster per non-empty cell
	GET    /api/v1/datasets/{datasetID}/overview/points    points in the box (strict=true to clip)
	GET    /api/v1/datasets/{datasetID}/overview/isolated  points alone in their cell
	GET    /api/v1/datasets/{datasetID}/cells/{col}/{row}  points of one cell
	GET    /api/v1/areas/{areaID}                          one area
	GET    /api/v1/areas/{areaID}/counts                   trashpoint count (by_status=true to split)
	GET    /api/v1/areas/{areaID}/trashpoints              paged area listing
	POST   /api/v1/accounts/{accountID}/session            open or extend a session
	GET    /api/v1/sessions/{sessionID}                    verify and extend a session
	DELETE /api/v1/sessions/{sessionID}                    end a session
	GET    /metrics                                        prometheus metrics

The overview endpoints take nw_lat, nw_lng, se_lat, se_lng and cell_size
query parameters. cell_size picks the grid scale. A north-west longitude
east of the south-east longitude wraps the box across the antimeridian.

Middleware:

Every request gets a request id, panic recovery, an access log line, CORS
and Prometheus instrumentation. Rate limits are per client IP via httprate,
with separate budgets for overviews, sessions and health probes. Overview
responses are gzip compressed and cacheable for a minute. The handler also
keeps them in an in-process cache for api.overview_cache_ttl; cached
responses set metadata.cached.

Authentication is not handled here; deployments put the service behind a
gateway.
*/
package api
