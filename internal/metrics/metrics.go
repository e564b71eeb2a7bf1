// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBTransactionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duckdb_transaction_conflicts_total",
			Help: "Write transactions replayed after an optimistic concurrency conflict",
		},
	)

	// Mutation Metrics
	EntryMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entry_mutations_total",
			Help: "List mutations by action, category and outcome",
		},
		[]string{"action", "category", "outcome"},
	)

	EntryMutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "entry_mutation_duration_seconds",
			Help:    "Duration of a list mutation including the stats transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"action"},
	)

	DeltaApplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_delta_apply_duration_seconds",
			Help:    "Duration of applying one delta to an aggregate row",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	// Achievement Metrics
	RecomputePassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "achievement_recompute_pass_duration_seconds",
			Help:    "Duration of a batch recompute pass per category",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"category"},
	)

	RecomputeTierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "achievement_recompute_tier_duration_seconds",
			Help:    "Duration of evaluating one tier in batch mode",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	RecomputeTierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_recompute_tier_failures_total",
			Help: "Tiers skipped during a batch pass because evaluation failed",
		},
		[]string{"category"},
	)

	AchievementsUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_tiers_unlocked_total",
			Help: "Tier completions observed by the single-user updater",
		},
		[]string{"category", "difficulty"},
	)

	SeedWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_seed_writes_total",
			Help: "Catalog rows written by the seeder",
		},
		[]string{"category", "kind"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "read_cache_hits_total",
			Help: "Total number of read cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "read_cache_misses_total",
			Help: "Total number of read cache misses",
		},
	)

	// Remote Catalog Metrics
	CatalogRemoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_remote_requests_total",
			Help: "Remote metadata requests by outcome",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Messaging Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events handled by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	// Audit Metrics
	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_total",
			Help: "Audit events by type and outcome (saved, error, dropped)",
		},
		[]string{"type", "outcome"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordTransactionConflict counts one replayed write transaction.
func RecordTransactionConflict() {
	DBTransactionConflicts.Inc()
}

// RecordEntryMutation records a list mutation and its latency.
func RecordEntryMutation(action, category string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EntryMutationsTotal.WithLabelValues(action, category, outcome).Inc()
	EntryMutationDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordDeltaApply records how long one aggregate row update took.
func RecordDeltaApply(duration time.Duration) {
	DeltaApplyDuration.Observe(duration.Seconds())
}

// RecordRecomputePass records one batch pass over a category.
func RecordRecomputePass(category string, duration time.Duration) {
	RecomputePassDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// RecordRecomputeTier records one tier evaluation in batch mode.
func RecordRecomputeTier(category string, duration time.Duration, err error) {
	RecomputeTierDuration.WithLabelValues(category).Observe(duration.Seconds())
	if err != nil {
		RecomputeTierFailures.WithLabelValues(category).Inc()
	}
}

// RecordUnlock counts a tier that became completed.
func RecordUnlock(category, difficulty string) {
	AchievementsUnlocked.WithLabelValues(category, difficulty).Inc()
}

// RecordSeedWrites adds seeder writes of one kind (achievement, tier, delete).
func RecordSeedWrites(category, kind string, n int) {
	if n > 0 {
		SeedWrites.WithLabelValues(category, kind).Add(float64(n))
	}
}

// RecordCacheHit records a read cache hit.
func RecordCacheHit() {
	CacheHits.Inc()
}

// RecordCacheMiss records a read cache miss.
func RecordCacheMiss() {
	CacheMisses.Inc()
}

// RecordCatalogRemote records a remote metadata request outcome.
func RecordCatalogRemote(outcome string) {
	CatalogRemoteRequests.WithLabelValues(outcome).Inc()
}

// SetCircuitBreakerState publishes a breaker state (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition counts a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}

// RecordEventConsumed records a handled event.
func RecordEventConsumed(topic string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EventsConsumed.WithLabelValues(topic, outcome).Inc()
}

// RecordAuditEvent records what happened to an audit event.
func RecordAuditEvent(eventType, outcome string) {
	AuditEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordAPIRequest records API request metrics
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements active request counter
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
