// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

/*
Package main is the entry point of the World Cleanup Day trashpoint server.

The server keeps trashpoints, areas, accounts and sessions in an embedded
badger document store and serves map overviews (clusters and single
points on a quantized geo-grid) over HTTP.

# Application Architecture

	RootSupervisor ("world-cleanup-day")
	├── DataSupervisor ("data-layer")
	│   └── Session sweeper
	└── APISupervisor ("api-layer")
	    └── HTTP server

Start-up order:

 1. Configuration: koanf with defaults, config.yaml and environment variables
 2. Logging: zerolog with JSON or console output
 3. Database: badger store, views, circuit breaker, mutator, spatial adapter
 4. Area seed (optional): STORE_AREAS_FILE
 5. Supervisor tree with the sweeper and the HTTP server

# Configuration

Environment variables override config.yaml (or the file named by
CONFIG_PATH):

	STORE_PATH=/data/wcd          # badger directory
	STORE_IN_MEMORY=false         # ephemeral store for development
	STORE_COMPRESSION=zstd        # none, snappy or zstd
	STORE_AREAS_FILE=areas.json   # JSON list of {code, name, parent}
	MUTATION_MAX_ATTEMPTS=3       # optimistic write attempts (RETRY_CONFLICTS)
	SESSION_EXPIRATION_DAYS=30
	SESSION_SWEEP_INTERVAL=1h
	HTTP_PORT=3000
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for up to the server timeout, then the store is closed.
*/
package main
