// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset or missing.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wcd/config.yaml",
	"/etc/wcd/config.yml",
}

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig is the bottom configuration layer.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:               "/data/wcd",
			SyncWrites:         true,
			Compression:        "snappy",
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
			BreakerInterval:    time.Minute,
		},
		Mutation: MutationConfig{
			MaxAttempts: 3,
			Backoff:     0, // 0 = retry immediately
			MaxBackoff:  time.Second,
		},
		Sessions: SessionsConfig{
			ExpirationDays: 30,
			SweepInterval:  time.Hour,
		},
		Server: ServerConfig{
			Port:    3000,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize:   10,
			MaxPageSize:       100,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
			OverviewCacheTTL:  30 * time.Second,
			OverviewCacheSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, the optional YAML file and the mapped
// environment variables, in that order, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path, ok := configFile(); ok {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	// STORE_PATH -> store.path, RETRY_CONFLICTS -> mutation.max_attempts
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	for _, path := range listKeys {
		if err := splitList(k, path); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// configFile picks CONFIG_PATH when it exists, else the first default path
// that does.
func configFile() (string, bool) {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// listKeys are the settings an environment variable supplies as a
// comma-separated string.
var listKeys = []string{"api.cors_origins"}

func splitList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	"store_path":                 "store.path",
	"store_in_memory":            "store.in_memory",
	"store_sync_writes":          "store.sync_writes",
	"store_compression":          "store.compression",
	"store_memtable_size":        "store.memtable_size",
	"store_reindex_on_start":     "store.reindex_on_start",
	"store_areas_file":           "store.areas_file",
	"store_breaker_max_failures": "store.breaker_max_failures",
	"store_breaker_timeout":      "store.breaker_timeout",
	"store_breaker_interval":     "store.breaker_interval",

	"mutation_max_attempts": "mutation.max_attempts",
	"mutation_backoff":      "mutation.backoff",
	"mutation_max_backoff":  "mutation.max_backoff",

	// RETRY_CONFLICTS is the historical name for the attempt bound.
	"retry_conflicts": "mutation.max_attempts",

	"session_expiration_days":  "sessions.expiration_days",
	"session_sweep_interval":   "sessions.sweep_interval",
	"sessions_expiration_days": "sessions.expiration_days",
	"sessions_sweep_interval":  "sessions.sweep_interval",

	"http_port":      "server.port",
	"http_host":      "server.host",
	"server_timeout": "server.timeout",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",
	"rate_limit_requests":   "api.rate_limit_requests",
	"rate_limit_window":     "api.rate_limit_window",
	"disable_rate_limit":    "api.rate_limit_disabled",
	"cors_origins":          "api.cors_origins",
	"overview_cache_ttl":    "api.overview_cache_ttl",
	"overview_cache_size":   "api.overview_cache_size",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" so that unrelated environment variables are ignored.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
