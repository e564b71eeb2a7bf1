// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	longErr := errors.New(strings.Repeat("x", 120))
	RecordDBQuery("SELECT", "aggregated_stats", time.Millisecond, longErr)

	got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "aggregated_stats", strings.Repeat("x", 50)))
	if got < 1 {
		t.Errorf("expected truncated error label to be recorded, got %v", got)
	}
}

func TestRecordEntryMutation(t *testing.T) {
	before := testutil.ToFloat64(EntryMutationsTotal.WithLabelValues("add", "series", "success"))
	RecordEntryMutation("add", "series", 3*time.Millisecond, nil)
	RecordEntryMutation("add", "series", 3*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(EntryMutationsTotal.WithLabelValues("add", "series", "success")); got != before+1 {
		t.Errorf("success counter = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(EntryMutationsTotal.WithLabelValues("add", "series", "error")); got < 1 {
		t.Errorf("error counter = %v, want >= 1", got)
	}
}

func TestRecordRecomputeTier(t *testing.T) {
	before := testutil.ToFloat64(RecomputeTierFailures.WithLabelValues("books"))
	RecordRecomputeTier("books", time.Millisecond, nil)
	RecordRecomputeTier("books", time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(RecomputeTierFailures.WithLabelValues("books")); got != before+1 {
		t.Errorf("tier failures = %v, want %v", got, before+1)
	}
}

func TestRecordSeedWrites_IgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(SeedWrites.WithLabelValues("games", "tier"))
	RecordSeedWrites("games", "tier", 0)
	RecordSeedWrites("games", "tier", 4)

	if got := testutil.ToFloat64(SeedWrites.WithLabelValues("games", "tier")); got != before+4 {
		t.Errorf("seed writes = %v, want %v", got, before+4)
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	SetCircuitBreakerState("catalog", 2)
	RecordCircuitBreakerTransition("catalog", "closed", "open")

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("catalog")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("catalog", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v, want >= 1", got)
	}
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/api/v1/platform/stats", "200", time.Millisecond)
	RecordCacheHit()
	RecordCacheMiss()
	RecordEventPublished("entry.mutated", nil)
	RecordEventConsumed("entry.mutated", nil)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint: %v", err)
	}
	for _, p := range problems {
		if strings.HasPrefix(p.Metric, "go_") || strings.HasPrefix(p.Metric, "process_") {
			continue
		}
		t.Errorf("lint problem on %s: %s", p.Metric, p.Text)
	}
}
