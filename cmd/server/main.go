// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/api"
	"github.com/kublaj/World-Cleanup-Day/internal/config"
	"github.com/kublaj/World-Cleanup-Day/internal/database"
	"github.com/kublaj/World-Cleanup-Day/internal/logging"
	"github.com/kublaj/World-Cleanup-Day/internal/metrics"
	"github.com/kublaj/World-Cleanup-Day/internal/supervisor"
	"github.com/kublaj/World-Cleanup-Day/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const serviceName = "world-cleanup-day"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Service: serviceName,
		Version: version,
	})

	api.Version = version
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("store_path", cfg.Store.Path).
		Bool("in_memory", cfg.Store.InMemory).
		Int("max_attempts", cfg.Mutation.MaxAttempts).
		Msg("Starting World Cleanup Day server")

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Store.AreasFile != "" {
		if err := seedAreas(db, cfg.Store.AreasFile); err != nil {
			return err
		}
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	server := newHTTPServer(cfg, db)
	tree.AddDataService(services.NewSessionSweeperService(db, cfg.Sessions.SweepInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wait(ctx, tree.ServeBackground(ctx))

	for _, svc := range unstopped(tree) {
		logging.Warn().Str("service", svc).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Server stopped")
	return nil
}

func newHTTPServer(cfg *config.Config, db *database.DB) *http.Server {
	router := api.NewRouter(api.NewHandler(db, cfg), api.ChiMiddlewareConfigFromAPI(cfg.API))
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
}

// wait blocks until the tree's Serve returns. A signal cancels ctx, which
// stops the tree.
func wait(ctx context.Context, errCh <-chan error) {
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
	case err := <-errCh:
		logSupervisorErr(err)
		return
	}
	logSupervisorErr(<-errCh)
}

func logSupervisorErr(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}
}

func unstopped(tree *supervisor.SupervisorTree) []string {
	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(report))
	for _, svc := range report {
		names = append(names, svc.Name)
	}
	return names
}

func seedAreas(db *database.DB, path string) error {
	areas, err := database.LoadAreaSeed(path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := db.SeedAreas(ctx, areas); err != nil {
		return fmt.Errorf("seed areas: %w", err)
	}
	return nil
}
