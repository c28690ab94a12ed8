// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

/*
Package supervisor runs the long-lived services of the server under a
suture supervision tree.

Tree layout:

	world-cleanup-day (root)
	├── data-layer
	│   └── session-sweeper
	└── api-layer
	    └── http-server

A service that returns an error or panics is restarted with suture's
failure backoff. Supervisor events are written through sutureslog to the
zerolog-backed slog logger from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewSessionSweeperService(db, cfg.Sessions.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))
	return tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
