// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics in Prometheus text format:

	curl http://localhost:8420/metrics

# Available Metrics

Database:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - duckdb_transaction_conflicts_total: replayed write transactions

Mutations:
  - entry_mutations_total (action, category, outcome)
  - entry_mutation_duration_seconds (action)
  - stats_delta_apply_duration_seconds

Achievements:
  - achievement_recompute_pass_duration_seconds (category)
  - achievement_recompute_tier_duration_seconds (category)
  - achievement_recompute_tier_failures_total (category)
  - achievement_tiers_unlocked_total (category, difficulty)
  - achievement_seed_writes_total (category, kind)

Infrastructure:
  - read_cache_hits_total, read_cache_misses_total
  - catalog_remote_requests_total (outcome)
  - circuit_breaker_state, circuit_breaker_transitions_total
  - events_published_total, events_consumed_total (topic, outcome)
  - api_requests_total, api_request_duration_seconds, api_active_requests
*/
package metrics
