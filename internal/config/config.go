// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Mutation MutationConfig `koanf:"mutation"`
	Sessions SessionsConfig `koanf:"sessions"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// StoreConfig holds the embedded document store settings.
type StoreConfig struct {
	Path        string `koanf:"path"`
	InMemory    bool   `koanf:"in_memory"`
	SyncWrites  bool   `koanf:"sync_writes"`
	Compression string `koanf:"compression"` // none, snappy, zstd
	// MemTableSize in bytes; 0 keeps badger's default.
	MemTableSize int64 `koanf:"memtable_size"`
	// ReindexOnStart rebuilds every registered view when the store opens.
	ReindexOnStart bool `koanf:"reindex_on_start"`
	// AreasFile is an optional JSON list of areas seeded on start.
	AreasFile string `koanf:"areas_file"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
}

// MutationConfig configures the optimistic read-modify-write loop.
type MutationConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	Backoff     time.Duration `koanf:"backoff"`
	MaxBackoff  time.Duration `koanf:"max_backoff"`
}

// SessionsConfig configures session lifetime and expiry sweeping.
type SessionsConfig struct {
	ExpirationDays int           `koanf:"expiration_days"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig holds API pagination, rate limiting and CORS settings
type APIConfig struct {
	DefaultPageSize   int           `koanf:"default_page_size"`
	MaxPageSize       int           `koanf:"max_page_size"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// OverviewCacheTTL bounds how long overview results are reused. 0 disables
	// the cache.
	OverviewCacheTTL  time.Duration `koanf:"overview_cache_ttl"`
	OverviewCacheSize int           `koanf:"overview_cache_size"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration using koanf (defaults, optional YAML file, environment).
func Load() (*Config, error) {
	return LoadWithKoanf()
}
