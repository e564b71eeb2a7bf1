// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Database     DatabaseConfig     `koanf:"database"`
	Logging      LoggingConfig      `koanf:"logging"`
	Achievements AchievementsConfig `koanf:"achievements"`
	Messaging    MessagingConfig    `koanf:"messaging"`
	Catalog      CatalogConfig      `koanf:"catalog"`
	Cache        CacheConfig        `koanf:"cache"`
	Security     SecurityConfig     `koanf:"security"`
	Audit        AuditConfig        `koanf:"audit"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default is true

	// ConflictRetries bounds how often a write transaction is replayed after
	// DuckDB reports an optimistic concurrency conflict.
	ConflictRetries int           `koanf:"conflict_retries"`
	ConflictBackoff time.Duration `koanf:"conflict_backoff"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// AchievementsConfig controls catalog seeding and batch recomputation.
type AchievementsConfig struct {
	SeedOnStartup      bool          `koanf:"seed_on_startup"`
	RecomputeEnabled   bool          `koanf:"recompute_enabled"`
	RecomputeInterval  time.Duration `koanf:"recompute_interval"`
	RecomputeOnStartup bool          `koanf:"recompute_on_startup"`

	// TierTimeout bounds the evaluation of a single tier in a batch pass.
	TierTimeout time.Duration `koanf:"tier_timeout"`
}

// MessagingConfig controls entry-mutation event delivery.
type MessagingConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Transport string `koanf:"transport"` // memory or nats
	Topic     string `koanf:"topic"`

	URL              string `koanf:"url"`
	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count"`

	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	HandlerTimeout       time.Duration `koanf:"handler_timeout"`

	// Embedded JetStream server (transport nats only). When enabled, URL is
	// replaced by the embedded server's client URL.
	EmbeddedServer     bool   `koanf:"embedded_server"`
	EmbeddedHost       string `koanf:"embedded_host"`
	EmbeddedPort       int    `koanf:"embedded_port"` // -1 = random
	StoreDir           string `koanf:"store_dir"`
	JetStreamMaxMemory int64  `koanf:"jetstream_max_memory"`
	JetStreamMaxStore  int64  `koanf:"jetstream_max_store"`
}

// CatalogConfig controls the remote media metadata fallback.
type CatalogConfig struct {
	RemoteEnabled bool          `koanf:"remote_enabled"`
	RemoteURL     string        `koanf:"remote_url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`

	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// CacheConfig controls the read cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// SecurityConfig holds HTTP hardening settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AuditConfig controls the operator audit trail.
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BufferSize      int           `koanf:"buffer_size"`
	LogToStdout     bool          `koanf:"log_to_stdout"`
}
