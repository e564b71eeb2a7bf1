// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package main is the entry point for the Mediashelf server.

Mediashelf keeps per-user and platform-wide statistics for media lists
(series, anime, movies, books, games, manga) up to date incrementally, and
awards tiered achievements computed from the stored entries.

# Application Architecture

	RootSupervisor ("mediashelf")
	├── MessagingSupervisor ("messaging-layer")
	│   └── event consumer (messaging.enabled)
	├── JobsSupervisor ("jobs-layer")
	│   ├── achievement recompute (achievements.recompute_enabled)
	│   ├── cache janitor (cache.enabled)
	│   └── audit retention (audit.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Initialization order:

 1. Configuration: koanf v2 (defaults, optional config file, environment)
 2. Logging: zerolog, bridged to slog for suture
 3. Database: DuckDB with schema migrations
 4. Achievement catalog: seeded from code, validated against the registry
 5. Media catalog: local store plus optional remote client
 6. Read cache, entries service, event pipeline
 7. Audit trail (DuckDB table, async writer)
 8. HTTP API (chi) and supervisor tree

# Configuration

	HTTP_PORT=8080
	DUCKDB_PATH=/data/mediashelf.duckdb
	MESSAGING_ENABLED=true
	MESSAGING_TRANSPORT=nats
	NATS_URL=nats://nats:4222
	NATS_EMBEDDED=false          # true runs JetStream in-process (NATS_STORE_DIR)
	CATALOG_REMOTE_ENABLED=true
	CATALOG_REMOTE_URL=https://metadata.example
	AUDIT_RETENTION_DAYS=90

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
server.shutdown_timeout, the consumer finishes in-flight events, then the
audit log is flushed and the publisher and database are closed.
*/
package main
