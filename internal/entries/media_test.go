// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/mediashelf/internal/catalog"
	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/delta"
	"github.com/tomtom215/mediashelf/internal/models"
)

// setupMediaStore routes metadata writes of svc through a MediaStore.
func setupMediaStore(t *testing.T, svc *Service, db *database.DB, inv *recordingInvalidator) *catalog.Resolver {
	t.Helper()
	store := NewMediaStore(db, delta.NewRegistry(), zerolog.Nop())
	store.now = func() time.Time { return testClock }
	store.SetInvalidator(inv)
	resolver := catalog.NewResolver(store, nil, zerolog.Nop())
	svc.media = resolver
	return resolver
}

func checkMatchesRebuild(t *testing.T, svc *Service, db *database.DB, scope models.StatsScope) *models.AggregatedStats {
	t.Helper()
	ctx := context.Background()

	stored, err := db.GetStats(ctx, scope)
	checkNoError(t, err)

	var rebuilt []*models.AggregatedStats
	if scope.IsPlatform() {
		rebuilt, err = svc.RebuildPlatformStats(ctx, &scope.Category)
	} else {
		rebuilt, err = svc.RebuildUserStats(ctx, scope.UserID, &scope.Category)
	}
	checkNoError(t, err)
	checkIntEqual(t, "rebuilt rows", len(rebuilt), 1)
	if !stored.SameTotals(rebuilt[0]) {
		t.Errorf("%s: stored %+v\nrebuilt %+v", scope, stored, rebuilt[0])
	}
	return stored
}

// ============================================================================
// Metadata changes
// ============================================================================

func TestLongerRuntimeStillRemovable(t *testing.T) {
	svc, db, _, inv := setupService(t)
	ctx := context.Background()
	resolver := setupMediaStore(t, svc, db, inv)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Duration: 100}))
	_, err := svc.Add(ctx, "u1", models.CategoryMovies, "m1", Input{Status: models.StatusCompleted})
	checkNoError(t, err)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Duration: 200}))

	stats := checkMatchesRebuild(t, svc, db, models.UserScope("u1", models.CategoryMovies))
	if !stats.TimeSpent.Equal(decimal.NewFromInt(200)) {
		t.Errorf("time spent after runtime change = %s, want 200", stats.TimeSpent)
	}

	change, err := svc.Remove(ctx, "u1", models.CategoryMovies, "m1")
	checkNoError(t, err)
	if !change.UserStats.SameTotals(models.NewAggregatedStats(models.UserScope("u1", models.CategoryMovies))) {
		t.Errorf("user row after removal = %+v, want zero", change.UserStats)
	}
	if !change.PlatformStats.TimeSpent.IsZero() {
		t.Errorf("platform time after removal = %s, want 0", change.PlatformStats.TimeSpent)
	}
}

func TestShorterRuntimeKeepsRowsConsistent(t *testing.T) {
	svc, db, _, inv := setupService(t)
	ctx := context.Background()
	resolver := setupMediaStore(t, svc, db, inv)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "m2", Category: models.CategoryMovies, Duration: 100}))
	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "m3", Category: models.CategoryMovies, Duration: 150}))
	for _, user := range []string{"u1", "u2"} {
		_, err := svc.Add(ctx, user, models.CategoryMovies, "m2", Input{Status: models.StatusCompleted})
		checkNoError(t, err)
	}
	_, err := svc.Add(ctx, "u2", models.CategoryMovies, "m3", Input{Status: models.StatusCompleted})
	checkNoError(t, err)

	inv.users = nil
	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "m2", Category: models.CategoryMovies, Duration: 50}))
	checkIntEqual(t, "invalidated users", len(inv.users), 2)

	u2 := checkMatchesRebuild(t, svc, db, models.UserScope("u2", models.CategoryMovies))
	if !u2.TimeSpent.Equal(decimal.NewFromInt(200)) {
		t.Errorf("u2 time spent = %s, want 200", u2.TimeSpent)
	}
	checkMatchesRebuild(t, svc, db, models.PlatformScope(models.CategoryMovies))

	change, err := svc.Remove(ctx, "u2", models.CategoryMovies, "m2")
	checkNoError(t, err)
	if !change.UserStats.TimeSpent.Equal(decimal.NewFromInt(150)) {
		t.Errorf("u2 time after removal = %s, want 150", change.UserStats.TimeSpent)
	}
	checkMatchesRebuild(t, svc, db, models.UserScope("u2", models.CategoryMovies))
}

func TestFewerSeasonsRemeasuresEpisodes(t *testing.T) {
	svc, db, _, inv := setupService(t)
	ctx := context.Background()
	resolver := setupMediaStore(t, svc, db, inv)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{
		ID: "s1", Category: models.CategorySeries, Duration: 30, Seasons: []int{10, 10},
	}))
	_, err := svc.Add(ctx, "u1", models.CategorySeries, "s1", Input{Status: models.StatusCompleted})
	checkNoError(t, err)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{
		ID: "s1", Category: models.CategorySeries, Duration: 30, Seasons: []int{10, 12},
	}))
	stats := checkMatchesRebuild(t, svc, db, models.UserScope("u1", models.CategorySeries))
	// Progress stays at season 2 episode 10; the first season is still 10.
	checkInt64Equal(t, "total specific", stats.TotalSpecific, 20)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{
		ID: "s1", Category: models.CategorySeries, Duration: 25, Seasons: []int{8, 12},
	}))
	stats = checkMatchesRebuild(t, svc, db, models.UserScope("u1", models.CategorySeries))
	checkInt64Equal(t, "total specific", stats.TotalSpecific, 18)
	if !stats.TimeSpent.Equal(decimal.NewFromInt(450)) {
		t.Errorf("time spent = %s, want 450", stats.TimeSpent)
	}
	checkMatchesRebuild(t, svc, db, models.PlatformScope(models.CategorySeries))
}

func TestUnheldMediaChangeTouchesNoStats(t *testing.T) {
	svc, db, _, inv := setupService(t)
	ctx := context.Background()
	resolver := setupMediaStore(t, svc, db, inv)

	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "b1", Category: models.CategoryBooks, TotalUnits: 300}))
	checkNoError(t, resolver.Register(ctx, &models.MediaMetadata{ID: "b1", Category: models.CategoryBooks, TotalUnits: 320}))

	checkIntEqual(t, "invalidated users", len(inv.users), 0)
	stats, err := db.ListStats(ctx, "", nil)
	checkNoError(t, err)
	checkIntEqual(t, "stats rows", len(stats), 0)

	media, err := resolver.Resolve(ctx, models.CategoryBooks, "b1")
	checkNoError(t, err)
	checkIntEqual(t, "total units", media.TotalUnits, 320)
}
