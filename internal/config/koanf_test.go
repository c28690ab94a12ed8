// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Mutation.MaxAttempts != 3 {
		t.Errorf("Mutation.MaxAttempts = %d, want 3", cfg.Mutation.MaxAttempts)
	}
	if cfg.Mutation.Backoff != 0 {
		t.Errorf("Mutation.Backoff = %v, want 0", cfg.Mutation.Backoff)
	}
	if cfg.Sessions.ExpirationDays != 30 {
		t.Errorf("Sessions.ExpirationDays = %d, want 30", cfg.Sessions.ExpirationDays)
	}
	if cfg.Store.Compression != "snappy" {
		t.Errorf("Store.Compression = %q, want snappy", cfg.Store.Compression)
	}
	if cfg.API.DefaultPageSize != 10 {
		t.Errorf("API.DefaultPageSize = %d, want 10", cfg.API.DefaultPageSize)
	}
	if cfg.API.OverviewCacheTTL != 30*time.Second || cfg.API.OverviewCacheSize != 1024 {
		t.Errorf("API overview cache = %v/%d, want 30s/1024", cfg.API.OverviewCacheTTL, cfg.API.OverviewCacheSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc tests environment variable name mapping
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"STORE_PATH", "store.path"},
		{"STORE_IN_MEMORY", "store.in_memory"},
		{"MUTATION_MAX_ATTEMPTS", "mutation.max_attempts"},
		{"RETRY_CONFLICTS", "mutation.max_attempts"},
		{"SESSION_EXPIRATION_DAYS", "sessions.expiration_days"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"CORS_ORIGINS", "api.cors_origins"},
		{"OVERVIEW_CACHE_TTL", "api.overview_cache_ttl"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("STORE_IN_MEMORY", "true")
	t.Setenv("STORE_PATH", "")
	t.Setenv("MUTATION_MAX_ATTEMPTS", "5")
	t.Setenv("MUTATION_BACKOFF", "10ms")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if !cfg.Store.InMemory {
		t.Error("Store.InMemory should be true")
	}
	if cfg.Mutation.MaxAttempts != 5 {
		t.Errorf("Mutation.MaxAttempts = %d, want 5", cfg.Mutation.MaxAttempts)
	}
	if cfg.Mutation.Backoff != 10*time.Millisecond {
		t.Errorf("Mutation.Backoff = %v, want 10ms", cfg.Mutation.Backoff)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("API.CORSOrigins = %v, want two trimmed origins", cfg.API.CORSOrigins)
	}

	// Defaults still apply for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Sessions.ExpirationDays != 30 {
		t.Errorf("Sessions.ExpirationDays = %d, want 30 (default)", cfg.Sessions.ExpirationDays)
	}
}

// TestLoadWithKoanfConfigFile tests file loading and that env overrides the file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
store:
  path: /var/lib/wcd
  compression: zstd
mutation:
  max_attempts: 7
sessions:
  expiration_days: 14
server:
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8181")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Store.Path != "/var/lib/wcd" {
		t.Errorf("Store.Path = %q, want /var/lib/wcd", cfg.Store.Path)
	}
	if cfg.Store.Compression != "zstd" {
		t.Errorf("Store.Compression = %q, want zstd", cfg.Store.Compression)
	}
	if cfg.Mutation.MaxAttempts != 7 {
		t.Errorf("Mutation.MaxAttempts = %d, want 7", cfg.Mutation.MaxAttempts)
	}
	if cfg.Sessions.ExpirationDays != 14 {
		t.Errorf("Sessions.ExpirationDays = %d, want 14", cfg.Sessions.ExpirationDays)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181 (env beats file)", cfg.Server.Port)
	}
}

// TestLoadWithKoanfValidation tests that invalid values are rejected
func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"zero attempts", map[string]string{"MUTATION_MAX_ATTEMPTS": "0"}, "MUTATION_MAX_ATTEMPTS"},
		{"negative backoff", map[string]string{"MUTATION_BACKOFF": "-1s"}, "MUTATION_BACKOFF"},
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad compression", map[string]string{"STORE_COMPRESSION": "lz4"}, "STORE_COMPRESSION"},
		{"empty path", map[string]string{"STORE_PATH": " "}, "STORE_PATH"},
		{"zero expiration", map[string]string{"SESSION_EXPIRATION_DAYS": "0"}, "SESSION_EXPIRATION_DAYS"},
		{"negative cache ttl", map[string]string{"OVERVIEW_CACHE_TTL": "-1s"}, "OVERVIEW_CACHE_TTL"},
		{"empty cache", map[string]string{"OVERVIEW_CACHE_SIZE": "0"}, "OVERVIEW_CACHE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("LoadWithKoanf() should fail for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %s", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestServerAddress(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := s.Address(); got != "127.0.0.1:3000" {
		t.Errorf("Address() = %q, want 127.0.0.1:3000", got)
	}
}
