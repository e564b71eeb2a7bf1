// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLogging,
		c.validateAchievements,
		c.validateMessaging,
		c.validateCatalog,
		c.validateCache,
		c.validateSecurity,
		c.validateAudit,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	if c.Database.ConflictRetries < 0 || c.Database.ConflictRetries > 50 {
		return fmt.Errorf("DUCKDB_CONFLICT_RETRIES must be between 0 and 50")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

const minRecomputeInterval = 1 * time.Minute

func (c *Config) validateAchievements() error {
	a := c.Achievements
	if a.RecomputeEnabled && a.RecomputeInterval < minRecomputeInterval {
		return fmt.Errorf("ACHIEVEMENTS_RECOMPUTE_INTERVAL must be at least %v", minRecomputeInterval)
	}
	if a.TierTimeout <= 0 {
		return fmt.Errorf("ACHIEVEMENTS_TIER_TIMEOUT must be positive")
	}
	return nil
}

// validTransports defines the allowed messaging transports
var validTransports = map[string]bool{
	"memory": true,
	"nats":   true,
}

func (c *Config) validateMessaging() error {
	m := c.Messaging
	if !m.Enabled {
		return nil
	}
	if !validTransports[m.Transport] {
		return fmt.Errorf("MESSAGING_TRANSPORT must be one of: memory, nats")
	}
	if m.Topic == "" {
		return fmt.Errorf("MESSAGING_TOPIC is required when messaging is enabled")
	}
	if m.EmbeddedServer && m.Transport != "nats" {
		return fmt.Errorf("NATS_EMBEDDED requires MESSAGING_TRANSPORT=nats")
	}
	if m.EmbeddedServer {
		if m.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		if m.EmbeddedPort < -1 || m.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be -1 (random) or between 0 and 65535")
		}
	}
	if m.Transport == "nats" {
		if m.URL == "" && !m.EmbeddedServer {
			return fmt.Errorf("NATS_URL is required when MESSAGING_TRANSPORT=nats")
		}
		if m.SubscribersCount < 1 || m.SubscribersCount > 64 {
			return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 64")
		}
	}
	if m.RetryCount < 0 {
		return fmt.Errorf("MESSAGING_RETRY_COUNT must be non-negative")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	cat := c.Catalog
	if !cat.RemoteEnabled {
		return nil
	}
	if cat.RemoteURL == "" {
		return fmt.Errorf("CATALOG_REMOTE_URL is required when CATALOG_REMOTE_ENABLED=true")
	}
	u, err := url.Parse(cat.RemoteURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CATALOG_REMOTE_URL must be an absolute http(s) URL")
	}
	if cat.RequestsPerSecond <= 0 {
		return fmt.Errorf("CATALOG_REQUESTS_PER_SECOND must be positive")
	}
	if cat.Burst < 1 {
		return fmt.Errorf("CATALOG_BURST must be at least 1")
	}
	if cat.BreakerMaxFailures == 0 {
		return fmt.Errorf("CATALOG_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1 when the cache is enabled")
	}
	return nil
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = 1 * time.Second
	maxRateLimitWindow   = 1 * time.Hour
)

func (c *Config) validateSecurity() error {
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	if c.Audit.RetentionDays < 1 || c.Audit.RetentionDays > 3650 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be between 1 and 3650")
	}
	if c.Audit.CleanupInterval < time.Minute {
		return fmt.Errorf("AUDIT_CLEANUP_INTERVAL must be at least 1m")
	}
	if c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive")
	}
	return nil
}

// IsProduction returns true when running in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
