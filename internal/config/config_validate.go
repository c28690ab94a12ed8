// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package config

import (
	"fmt"
	"strings"

	"github.com/kublaj/World-Cleanup-Day/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateMutation(); err != nil {
		return err
	}

	if err := c.validateSessions(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}

	switch strings.ToLower(c.Store.Compression) {
	case "", "none", "snappy", "zstd":
	default:
		return fmt.Errorf("STORE_COMPRESSION must be none, snappy or zstd, got %q", c.Store.Compression)
	}

	if c.Store.MemTableSize < 0 {
		return fmt.Errorf("STORE_MEMTABLE_SIZE must not be negative, got %d", c.Store.MemTableSize)
	}
	if c.Store.BreakerMaxFailures == 0 {
		return fmt.Errorf("STORE_BREAKER_MAX_FAILURES must be at least 1")
	}
	if c.Store.BreakerTimeout <= 0 {
		return fmt.Errorf("STORE_BREAKER_TIMEOUT must be positive, got %v", c.Store.BreakerTimeout)
	}
	return nil
}

func (c *Config) validateMutation() error {
	if c.Mutation.MaxAttempts < 1 {
		return fmt.Errorf("MUTATION_MAX_ATTEMPTS must be at least 1, got %d", c.Mutation.MaxAttempts)
	}
	if c.Mutation.Backoff < 0 {
		return fmt.Errorf("MUTATION_BACKOFF must not be negative, got %v", c.Mutation.Backoff)
	}
	if c.Mutation.MaxBackoff < c.Mutation.Backoff {
		return fmt.Errorf("MUTATION_MAX_BACKOFF (%v) must be >= MUTATION_BACKOFF (%v)",
			c.Mutation.MaxBackoff, c.Mutation.Backoff)
	}
	return nil
}

func (c *Config) validateSessions() error {
	if c.Sessions.ExpirationDays < 1 {
		return fmt.Errorf("SESSION_EXPIRATION_DAYS must be at least 1, got %d", c.Sessions.ExpirationDays)
	}
	if c.Sessions.SweepInterval < 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must not be negative, got %v", c.Sessions.SweepInterval)
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.OverviewCacheTTL < 0 {
		return fmt.Errorf("OVERVIEW_CACHE_TTL must not be negative, got %v", c.API.OverviewCacheTTL)
	}
	if c.API.OverviewCacheTTL > 0 && c.API.OverviewCacheSize < 1 {
		return fmt.Errorf("OVERVIEW_CACHE_SIZE must be at least 1 when the cache is enabled, got %d", c.API.OverviewCacheSize)
	}
	if !c.API.RateLimitDisabled {
		if c.API.RateLimitRequests < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.API.RateLimitRequests)
		}
		if c.API.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.API.RateLimitWindow)
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// Address returns the host:port the HTTP server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
