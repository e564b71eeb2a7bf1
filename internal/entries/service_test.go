// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/mediashelf/internal/catalog"
	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/delta"
	"github.com/tomtom215/mediashelf/internal/models"
)

var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:            ":memory:",
		MaxMemory:       "512MB",
		ConflictRetries: 50,
		ConflictBackoff: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close test database: %v", err)
		}
	})
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.EntryMutatedEvent
	err    error
}

func (p *recordingPublisher) PublishEntryMutated(_ context.Context, e *models.EntryMutatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type recordingInvalidator struct {
	mu       sync.Mutex
	users    []string
	platform int
}

func (c *recordingInvalidator) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = append(c.users, userID)
}

func (c *recordingInvalidator) InvalidatePlatform() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.platform++
}

var testClock = time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *database.DB, *recordingPublisher, *recordingInvalidator) {
	t.Helper()
	db := setupTestDB(t)

	svc := NewService(db, delta.NewRegistry(), catalog.NewResolver(db, nil, zerolog.Nop()), zerolog.Nop())
	svc.now = func() time.Time { return testClock }

	pub := &recordingPublisher{}
	inv := &recordingInvalidator{}
	svc.SetPublisher(pub)
	svc.SetInvalidator(inv)
	return svc, db, pub, inv
}

func registerMedia(t *testing.T, db *database.DB, media ...*models.MediaMetadata) {
	t.Helper()
	for _, m := range media {
		checkNoError(t, db.UpsertMedia(context.Background(), m, database.MediaSourceLocal))
	}
}

func statusPtr(s models.Status) *models.Status { return &s }
func boolPtr(b bool) *bool                       { return &b }
func ratingPtr(v int64) *decimal.Decimal         { d := decimal.NewFromInt(v); return &d }

func TestMovieScenarios(t *testing.T) {
	svc, db, pub, inv := setupService(t)
	ctx := context.Background()
	registerMedia(t, db, &models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Title: "Heat", Duration: 170})

	// A: plan to watch.
	a, err := svc.Add(ctx, "u1", models.CategoryMovies, "m1", Input{Status: models.StatusPlanToWatch})
	checkNoError(t, err)
	want := &models.DeltaStats{
		TotalEntries:    1,
		StatusCounts:    models.StatusCounts{models.StatusPlanToWatch: 1},
		TimeSpent:       decimal.Zero,
		SumEntriesRated: decimal.Zero,
	}
	if !a.Delta.Equal(want) {
		t.Errorf("scenario A delta: %+v", a.Delta)
	}
	if a.Before != nil || a.After == nil {
		t.Error("scenario A: expected only an after state")
	}
	if a.Activity != nil {
		t.Errorf("planning logs no activity: %+v", a.Activity)
	}

	// B: completed, rated 8, favorite.
	b, err := svc.Update(ctx, "u1", models.CategoryMovies, "m1", Patch{
		Status:   statusPtr(models.StatusCompleted),
		Rating:   ratingPtr(8),
		Favorite: boolPtr(true),
	})
	checkNoError(t, err)
	want = &models.DeltaStats{
		StatusCounts:     models.StatusCounts{models.StatusPlanToWatch: -1, models.StatusCompleted: 1},
		TimeSpent:        decimal.NewFromInt(170),
		TotalSpecific:    1,
		EntriesRated:     1,
		SumEntriesRated:  decimal.NewFromInt(8),
		EntriesFavorites: 1,
	}
	if !b.Delta.Equal(want) {
		t.Errorf("scenario B delta: %+v", b.Delta)
	}
	if b.Activity == nil || !b.Activity.IsCompleted || b.Activity.SpecificGained != 1 {
		t.Errorf("scenario B activity: %+v", b.Activity)
	}
	checkInt64Equal(t, "user rated", b.UserStats.EntriesRated, 1)
	checkInt64Equal(t, "platform favorites", b.PlatformStats.EntriesFavorites, 1)

	// C: remove reverses A and B exactly.
	c, err := svc.Remove(ctx, "u1", models.CategoryMovies, "m1")
	checkNoError(t, err)
	if !c.Delta.Equal(a.Delta.Add(b.Delta).Negate()) {
		t.Errorf("scenario C delta is not the inverse of A+B: %+v", c.Delta)
	}
	if c.After != nil {
		t.Error("scenario C: removal has no after state")
	}

	scope := models.UserScope("u1", models.CategoryMovies)
	stats, err := db.GetStats(ctx, scope)
	checkNoError(t, err)
	if !stats.SameTotals(models.NewAggregatedStats(scope)) {
		t.Errorf("user row not back to zero: %+v", stats)
	}
	platform, err := db.GetStats(ctx, models.PlatformScope(models.CategoryMovies))
	checkNoError(t, err)
	checkInt64Equal(t, "platform entries", platform.TotalEntries, 0)

	// Activity history survives removal.
	activity, err := db.ListActivity(ctx, "u1", "2026-05")
	checkNoError(t, err)
	checkIntEqual(t, "activity rows", len(activity), 1)

	checkIntEqual(t, "events", len(pub.events), 3)
	if pub.events[1].Action != models.ActionUpdate || !pub.events[1].Completed {
		t.Errorf("update event: %+v", pub.events[1])
	}
	checkIntEqual(t, "invalidations", len(inv.users), 3)
	checkIntEqual(t, "platform invalidations", inv.platform, 3)
}

func TestValidationErrorsWriteNothing(t *testing.T) {
	svc, db, pub, _ := setupService(t)
	ctx := context.Background()
	registerMedia(t, db,
		&models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Duration: 100},
		&models.MediaMetadata{ID: "b1", Category: models.CategoryBooks, TotalUnits: 300},
	)
	_, err := svc.Add(ctx, "u1", models.CategoryMovies, "m1", Input{Status: models.StatusCompleted})
	checkNoError(t, err)
	pub.events = nil

	tests := []struct {
		name   string
		run    func() error
		target error
	}{
		{"already in list", func() error {
			_, err := svc.Add(ctx, "u1", models.CategoryMovies, "m1", Input{Status: models.StatusCompleted})
			return err
		}, ErrAlreadyInList},
		{"update missing", func() error {
			_, err := svc.Update(ctx, "u1", models.CategoryBooks, "b1", Patch{Labels: new(int)})
			return err
		}, ErrNotInList},
		{"remove missing", func() error {
			_, err := svc.Remove(ctx, "u2", models.CategoryMovies, "m1")
			return err
		}, ErrNotInList},
		{"unknown media", func() error {
			_, err := svc.Add(ctx, "u1", models.CategoryMovies, "nope", Input{Status: models.StatusCompleted})
			return err
		}, ErrMediaNotFound},
		{"media of another category", func() error {
			_, err := svc.Add(ctx, "u1", models.CategoryBooks, "m1", Input{Status: models.StatusCompleted})
			return err
		}, ErrMediaNotFound},
		{"status of another category", func() error {
			_, err := svc.Add(ctx, "u1", models.CategoryBooks, "b1", Input{Status: models.StatusPlanToWatch})
			return err
		}, ErrInvalidStatus},
		{"rating out of range", func() error {
			_, err := svc.Update(ctx, "u1", models.CategoryMovies, "m1", Patch{Rating: ratingPtr(11)})
			return err
		}, ErrInvalidRating},
		{"pages beyond the book", func() error {
			_, err := svc.Add(ctx, "u1", models.CategoryBooks, "b1", Input{
				Status: models.StatusReading, Progress: models.Progress{Units: 301},
			})
			return err
		}, delta.ErrInvalidProgress},
		{"empty patch", func() error {
			_, err := svc.Update(ctx, "u1", models.CategoryMovies, "m1", Patch{})
			return err
		}, ErrEmptyPatch},
		{"no user", func() error {
			_, err := svc.Add(ctx, "", models.CategoryBooks, "b1", Input{Status: models.StatusReading})
			return err
		}, ErrInvalidUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			checkErrorIs(t, err, tt.target)
			if !IsValidation(err) {
				t.Errorf("IsValidation(%v) = false", err)
			}
		})
	}

	movies, err := db.GetStats(ctx, models.UserScope("u1", models.CategoryMovies))
	checkNoError(t, err)
	checkInt64Equal(t, "movie entries", movies.TotalEntries, 1)
	if movies.EntriesRated != 0 {
		t.Errorf("rejected rating leaked into stats: %d", movies.EntriesRated)
	}
	books, err := db.GetStats(ctx, models.UserScope("u1", models.CategoryBooks))
	checkNoError(t, err)
	checkInt64Equal(t, "book entries", books.TotalEntries, 0)
	checkIntEqual(t, "events for rejected mutations", len(pub.events), 0)
}

func TestEpisodicCompletionFillsProgress(t *testing.T) {
	svc, db, pub, _ := setupService(t)
	ctx := context.Background()
	registerMedia(t, db, &models.MediaMetadata{
		ID: "s1", Category: models.CategorySeries, Duration: 45, Seasons: []int{10, 8, 6},
	})

	_, err := svc.Add(ctx, "u1", models.CategorySeries, "s1", Input{
		Status: models.StatusWatching, Progress: models.Progress{Season: 1, Episode: 4},
	})
	checkNoError(t, err)

	change, err := svc.Update(ctx, "u1", models.CategorySeries, "s1", Patch{Status: statusPtr(models.StatusCompleted)})
	checkNoError(t, err)
	checkIntEqual(t, "season", change.After.Progress.Season, 3)
	checkIntEqual(t, "episode", change.After.Progress.Episode, 6)
	checkInt64Equal(t, "specific gained", change.Delta.TotalSpecific, 24-4)
	if !change.Delta.TimeSpent.Equal(decimal.NewFromInt(20 * 45)) {
		t.Errorf("time spent: %s", change.Delta.TimeSpent)
	}

	stored, err := db.GetEntry(ctx, "u1", models.CategorySeries, "s1")
	checkNoError(t, err)
	checkIntEqual(t, "stored season", stored.Progress.Season, 3)

	activity, err := db.ListActivity(ctx, "u1", models.ActivityBucket(testClock))
	checkNoError(t, err)
	checkIntEqual(t, "activity rows", len(activity), 1)
	checkInt64Equal(t, "episodes logged", activity[0].SpecificGained, 24)
	if !activity[0].IsCompleted {
		t.Error("completion not logged")
	}

	last := pub.events[len(pub.events)-1]
	if !last.Completed || last.UserID != "u1" || last.EventID == "" {
		t.Errorf("event: %+v", last)
	}
}

func TestFailedApplyRollsBackEverything(t *testing.T) {
	svc, db, _, _ := setupService(t)
	ctx := context.Background()
	registerMedia(t, db, &models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Duration: 90})

	_, err := svc.Add(ctx, "u1", models.CategoryMovies, "m1", Input{Status: models.StatusCompleted})
	checkNoError(t, err)

	// Corrupt the user row so the removal delta would drive it negative.
	scope := models.UserScope("u1", models.CategoryMovies)
	checkNoError(t, db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.ReplaceStats(ctx, models.NewAggregatedStats(scope))
	}))

	_, err = svc.Remove(ctx, "u1", models.CategoryMovies, "m1")
	checkErrorIs(t, err, models.ErrNegativeCount)
	if IsValidation(err) {
		t.Error("a broken aggregate is not a validation error")
	}

	_, err = db.GetEntry(ctx, "u1", models.CategoryMovies, "m1")
	checkNoError(t, err)
	platform, err := db.GetStats(ctx, models.PlatformScope(models.CategoryMovies))
	checkNoError(t, err)
	checkInt64Equal(t, "platform entries", platform.TotalEntries, 1)

	// Rebuilding repairs the row and the removal then succeeds.
	_, err = svc.RebuildUserStats(ctx, "u1", &scope.Category)
	checkNoError(t, err)
	_, err = svc.Remove(ctx, "u1", models.CategoryMovies, "m1")
	checkNoError(t, err)
}

func TestPublishFailureKeepsMutation(t *testing.T) {
	svc, db, pub, _ := setupService(t)
	ctx := context.Background()
	registerMedia(t, db, &models.MediaMetadata{ID: "g1", Category: models.CategoryGames})
	pub.err = errors.New("broker down")

	change, err := svc.Add(ctx, "u1", models.CategoryGames, "g1", Input{
		Status: models.StatusPlaying, Progress: models.Progress{Units: 600},
	})
	checkNoError(t, err)
	checkInt64Equal(t, "playtime", change.UserStats.TotalSpecific, 600)
	checkIntEqual(t, "publish attempts", len(pub.events), 1)
}

func TestConcurrentMutationsCompose(t *testing.T) {
	svc, db, _, _ := setupService(t)
	ctx := context.Background()

	const users, perUser = 4, 5
	for i := 0; i < perUser; i++ {
		registerMedia(t, db, &models.MediaMetadata{ID: fmt.Sprintf("m%d", i), Category: models.CategoryMovies, Duration: 100})
	}

	var wg sync.WaitGroup
	errs := make(chan error, users*perUser)
	for u := 0; u < users; u++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < perUser; i++ {
				_, err := svc.Add(ctx, user, models.CategoryMovies, fmt.Sprintf("m%d", i), Input{Status: models.StatusCompleted})
				errs <- err
			}
		}(fmt.Sprintf("u%d", u))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		checkNoError(t, err)
	}

	platform, err := db.GetStats(ctx, models.PlatformScope(models.CategoryMovies))
	checkNoError(t, err)
	checkInt64Equal(t, "platform entries", platform.TotalEntries, users*perUser)
	if !platform.TimeSpent.Equal(decimal.NewFromInt(users * perUser * 100)) {
		t.Errorf("platform time: %s", platform.TimeSpent)
	}
	checkInt64Equal(t, "platform completed", platform.StatusCounts[models.StatusCompleted], users*perUser)
}
