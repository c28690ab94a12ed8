// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
)

// HTTPServer is the lifecycle part of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server as a supervised service.
//
// ListenAndServe runs in a goroutine; when the service context is canceled
// the server is shut down with shutdownTimeout to drain open requests.
//
//	server := &http.Server{Addr: ":8080", Handler: router.SetupChi()}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout means
// 10 seconds.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service. A listener failure is returned so the
// supervisor restarts the service; http.ErrServerClosed is not a failure.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		return h.drain(ctx.Err(), errCh)
	}
}

// drain shuts the server down on a fresh context, since the service context
// is already canceled, and waits for ListenAndServe to return.
func (h *HTTPServerService) drain(cause error, errCh <-chan error) error {
	log := logging.WithComponent(h.name)
	start := time.Now()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", h.shutdownTimeout).Msg("Draining HTTP requests")
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Dur("took", time.Since(start)).Msg("HTTP drain incomplete")
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	<-errCh

	log.Info().Dur("took", time.Since(start)).Msg("HTTP server stopped")
	return cause
}

// String implements fmt.Stringer; suture names the service with it.
func (h *HTTPServerService) String() string {
	return h.name
}
