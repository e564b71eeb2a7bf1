// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package config provides centralized configuration management for Mediashelf.

Configuration is layered with Koanf v2. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, or config.yaml in the working directory)
 3. Environment variables mapped explicitly by envTransformFunc

# Configuration Structure

  - ServerConfig: HTTP listener and shutdown timeouts
  - DatabaseConfig: DuckDB path, memory and conflict retry tuning
  - LoggingConfig: zerolog level, format and caller info
  - AchievementsConfig: catalog seeding and the periodic recompute pass
  - MessagingConfig: entry-mutation events (in-memory or NATS JetStream)
  - CatalogConfig: remote media metadata fallback
  - CacheConfig: read cache for stats and achievement views
  - SecurityConfig: CORS and per-IP rate limiting

# Environment Variables

Only mapped variables are read. Examples:

  - HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - ACHIEVEMENTS_RECOMPUTE_INTERVAL, ACHIEVEMENTS_TIER_TIMEOUT
  - MESSAGING_TRANSPORT (memory or nats), NATS_URL
  - CATALOG_REMOTE_ENABLED, CATALOG_REMOTE_URL, CATALOG_API_KEY
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	db, err := database.New(&cfg.Database)
*/
package config
