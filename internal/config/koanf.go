// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

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

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediashelf/config.yaml",
	"/etc/mediashelf/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8420,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/mediashelf.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			ConflictRetries:        5,
			ConflictBackoff:        10 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Achievements: AchievementsConfig{
			SeedOnStartup:      true,
			RecomputeEnabled:   true,
			RecomputeInterval:  1 * time.Hour,
			RecomputeOnStartup: false,
			TierTimeout:        30 * time.Second,
		},
		Messaging: MessagingConfig{
			Enabled:              true,
			Transport:            "memory",
			Topic:                "entry.mutated",
			URL:                  "nats://127.0.0.1:4222",
			DurableName:          "achievement-recompute",
			QueueGroup:           "recompute",
			SubscribersCount:     2,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         30 * time.Second,
			HandlerTimeout:       30 * time.Second,
			EmbeddedServer:       false,
			EmbeddedHost:         "127.0.0.1",
			EmbeddedPort:         4222,
			StoreDir:             "/data/nats/jetstream",
			JetStreamMaxMemory:   64 * 1024 * 1024,
			JetStreamMaxStore:    1024 * 1024 * 1024,
		},
		Catalog: CatalogConfig{
			RemoteEnabled:      false,
			Timeout:            10 * time.Second,
			RequestsPerSecond:  5,
			Burst:              5,
			BreakerMaxFailures: 5,
			BreakerTimeout:     60 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 10000,
			TTL:      5 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Audit: AuditConfig{
			Enabled:         true,
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
			BufferSize:      1000,
			LogToStdout:     false,
		},
	}
}

// Load loads configuration using Koanf with layered sources.
//
// Precedence: ENV > File > Defaults
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",
	"duckdb_conflict_retries":         "database.conflict_retries",
	"duckdb_conflict_backoff":         "database.conflict_backoff",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Achievements
	"achievements_seed_on_startup":      "achievements.seed_on_startup",
	"achievements_recompute_enabled":    "achievements.recompute_enabled",
	"achievements_recompute_interval":   "achievements.recompute_interval",
	"achievements_recompute_on_startup": "achievements.recompute_on_startup",
	"achievements_tier_timeout":         "achievements.tier_timeout",

	// Messaging
	"messaging_enabled":         "messaging.enabled",
	"messaging_transport":       "messaging.transport",
	"messaging_topic":           "messaging.topic",
	"nats_url":                  "messaging.url",
	"nats_durable_name":         "messaging.durable_name",
	"nats_queue_group":          "messaging.queue_group",
	"nats_subscribers":          "messaging.subscribers_count",
	"messaging_retry_count":     "messaging.retry_count",
	"messaging_handler_timeout": "messaging.handler_timeout",
	"nats_embedded":             "messaging.embedded_server",
	"nats_embedded_host":        "messaging.embedded_host",
	"nats_embedded_port":        "messaging.embedded_port",
	"nats_store_dir":            "messaging.store_dir",
	"nats_max_memory":           "messaging.jetstream_max_memory",
	"nats_max_store":            "messaging.jetstream_max_store",

	// Catalog
	"catalog_remote_enabled":       "catalog.remote_enabled",
	"catalog_remote_url":           "catalog.remote_url",
	"catalog_api_key":              "catalog.api_key",
	"catalog_timeout":              "catalog.timeout",
	"catalog_requests_per_second":  "catalog.requests_per_second",
	"catalog_burst":                "catalog.burst",
	"catalog_breaker_max_failures": "catalog.breaker_max_failures",
	"catalog_breaker_timeout":      "catalog.breaker_timeout",

	// Cache
	"cache_enabled":  "cache.enabled",
	"cache_capacity": "cache.capacity",
	"cache_ttl":      "cache.ttl",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Audit
	"audit_enabled":          "audit.enabled",
	"audit_retention_days":   "audit.retention_days",
	"audit_cleanup_interval": "audit.cleanup_interval",
	"audit_buffer_size":      "audit.buffer_size",
	"audit_log_to_stdout":    "audit.log_to_stdout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - NATS_URL -> messaging.url
//
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
