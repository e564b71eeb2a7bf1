// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package delta

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tomtom215/mediashelf/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func testMovie() *models.MediaMetadata {
	return &models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Title: "Heat", Duration: 170}
}

func movieEntry(status models.Status) *models.UserMediaEntry {
	return &models.UserMediaEntry{UserID: "u1", MediaID: "m1", Category: models.CategoryMovies, Status: status}
}

func checkDelta(t *testing.T, got, want *models.DeltaStats) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("delta mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

// Scenarios A, B and C: add as plan-to-watch, complete with rating and
// favorite, then remove.
func TestMovieLifecycleScenarios(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	media := testMovie()

	added := movieEntry(models.StatusPlanToWatch)
	if err := reg.Prepare(nil, added, media); err != nil {
		t.Fatal(err)
	}
	dA, err := reg.Compute(nil, added, media)
	if err != nil {
		t.Fatal(err)
	}
	wantA := models.NewDeltaStats()
	wantA.TotalEntries = 1
	wantA.StatusCounts[models.StatusPlanToWatch] = 1
	checkDelta(t, dA, wantA)

	completed := added.Clone()
	completed.Status = models.StatusCompleted
	completed.Rating = decPtr("8")
	completed.Favorite = true
	if err := reg.Prepare(added, completed, media); err != nil {
		t.Fatal(err)
	}
	dB, err := reg.Compute(added, completed, media)
	if err != nil {
		t.Fatal(err)
	}
	wantB := models.NewDeltaStats()
	wantB.StatusCounts[models.StatusPlanToWatch] = -1
	wantB.StatusCounts[models.StatusCompleted] = 1
	wantB.EntriesRated = 1
	wantB.SumEntriesRated = dec("8")
	wantB.EntriesFavorites = 1
	wantB.TimeSpent = dec("170")
	wantB.TotalSpecific = 1
	checkDelta(t, dB, wantB)

	dC, err := reg.Compute(completed, nil, media)
	if err != nil {
		t.Fatal(err)
	}
	wantC := models.NewDeltaStats()
	wantC.TotalEntries = -1
	wantC.StatusCounts[models.StatusCompleted] = -1
	wantC.EntriesRated = -1
	wantC.SumEntriesRated = dec("-8")
	wantC.EntriesFavorites = -1
	wantC.TimeSpent = dec("-170")
	wantC.TotalSpecific = -1
	checkDelta(t, dC, wantC)

	if !dA.Add(dB).Add(dC).IsZero() {
		t.Error("scenario C should exactly reverse scenarios A and B")
	}
}

func TestStatusGatesRatingCommentFavorite(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	media := &models.MediaMetadata{ID: "b1", Category: models.CategoryBooks, TotalUnits: 300}

	reading := &models.UserMediaEntry{
		UserID: "u1", MediaID: "b1", Category: models.CategoryBooks,
		Status: models.StatusReading, Rating: decPtr("7.5"), Comment: strPtr("slow start"), Favorite: true,
		Progress: models.Progress{Units: 100},
	}

	// Rated, commented and favorite while reading: nothing counted.
	d, err := reg.Compute(nil, reading, media)
	if err != nil {
		t.Fatal(err)
	}
	if d.EntriesRated != 0 || d.EntriesCommented != 0 || d.EntriesFavorites != 0 || !d.SumEntriesRated.IsZero() {
		t.Errorf("non-completed entry should not count rating/comment/favorite: %+v", d)
	}

	// Status change alone flips everything to counted.
	completed := reading.Clone()
	completed.Status = models.StatusCompleted
	d, err = reg.Compute(reading, completed, media)
	if err != nil {
		t.Fatal(err)
	}
	if d.EntriesRated != 1 || d.EntriesCommented != 1 || d.EntriesFavorites != 1 || !d.SumEntriesRated.Equal(dec("7.5")) {
		t.Errorf("completing should count rating/comment/favorite: %+v", d)
	}

	// Field change while completed: rating delta is the difference only.
	rerated := completed.Clone()
	rerated.Rating = decPtr("9")
	rerated.Comment = strPtr("")
	d, err = reg.Compute(completed, rerated, media)
	if err != nil {
		t.Fatal(err)
	}
	if d.EntriesRated != 0 || !d.SumEntriesRated.Equal(dec("1.5")) || d.EntriesCommented != -1 {
		t.Errorf("re-rating while completed: %+v", d)
	}

	// Leaving completed un-counts with the old value.
	dropped := rerated.Clone()
	dropped.Status = models.StatusDropped
	d, err = reg.Compute(rerated, dropped, media)
	if err != nil {
		t.Fatal(err)
	}
	if d.EntriesRated != -1 || !d.SumEntriesRated.Equal(dec("-9")) || d.EntriesFavorites != -1 {
		t.Errorf("leaving completed: %+v", d)
	}
}

func TestEpisodicTimeSpent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	media := &models.MediaMetadata{ID: "s1", Category: models.CategorySeries, Duration: 45, Seasons: []int{10, 8, 12}}

	old := &models.UserMediaEntry{
		UserID: "u1", MediaID: "s1", Category: models.CategorySeries, Status: models.StatusWatching,
		Progress: models.Progress{Season: 2, Episode: 3, RedoSeasons: []int{0, 0, 0}},
	}
	next := old.Clone()
	next.Progress.Season = 3
	next.Progress.Episode = 2
	next.Progress.RedoSeasons = []int{1, 0, 0}

	d, err := reg.Compute(old, next, media)
	if err != nil {
		t.Fatal(err)
	}
	// old: 10 + 3 = 13; new: 10 + 8 + 2 + 1*10 = 30
	if d.TotalSpecific != 17 {
		t.Errorf("TotalSpecific = %d, want 17", d.TotalSpecific)
	}
	if !d.TimeSpent.Equal(dec("765")) {
		t.Errorf("TimeSpent = %s, want 765", d.TimeSpent)
	}
	if d.TotalRedo != 1 {
		t.Errorf("TotalRedo = %d, want 1", d.TotalRedo)
	}
}

func TestPaginatedUsesExactMultiplier(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	book := &models.MediaMetadata{ID: "b1", Category: models.CategoryBooks, TotalUnits: 333}
	entry := &models.UserMediaEntry{
		UserID: "u1", MediaID: "b1", Category: models.CategoryBooks, Status: models.StatusReading,
		Progress: models.Progress{Units: 3},
	}

	d, err := reg.Compute(nil, entry, book)
	if err != nil {
		t.Fatal(err)
	}
	// 3 pages x 1.7 must be exactly 5.1, not a float approximation.
	if !d.TimeSpent.Equal(dec("5.1")) {
		t.Errorf("TimeSpent = %s, want 5.1", d.TimeSpent)
	}

	manga := &models.MediaMetadata{ID: "k1", Category: models.CategoryManga, TotalUnits: 100}
	mangaEntry := &models.UserMediaEntry{
		UserID: "u1", MediaID: "k1", Category: models.CategoryManga, Status: models.StatusCompleted,
		Progress: models.Progress{Units: 100, Redo: 1},
	}
	d, err = reg.Compute(nil, mangaEntry, manga)
	if err != nil {
		t.Fatal(err)
	}
	if d.TotalSpecific != 200 || !d.TimeSpent.Equal(dec("1400")) || d.TotalRedo != 1 {
		t.Errorf("manga delta = %+v", d)
	}
}

func TestPlaytimeHasNoRedo(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	game := &models.MediaMetadata{ID: "g1", Category: models.CategoryGames}
	old := &models.UserMediaEntry{
		UserID: "u1", MediaID: "g1", Category: models.CategoryGames, Status: models.StatusPlaying,
		Progress: models.Progress{Units: 600},
	}
	next := old.Clone()
	next.Progress.Units = 1200
	next.Progress.Redo = 3
	if err := reg.Prepare(old, next, game); err != nil {
		t.Fatal(err)
	}

	d, err := reg.Compute(old, next, game)
	if err != nil {
		t.Fatal(err)
	}
	if !d.TimeSpent.Equal(dec("600")) || d.TotalSpecific != 600 || d.TotalRedo != 0 {
		t.Errorf("games delta = %+v", d)
	}
}

func TestComputeRejectsBadTransitions(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	media := testMovie()

	if _, err := reg.Compute(nil, nil, media); !errors.Is(err, ErrNoTransition) {
		t.Errorf("nil/nil error = %v, want ErrNoTransition", err)
	}

	other := movieEntry(models.StatusCompleted)
	other.UserID = "u2"
	if _, err := reg.Compute(movieEntry(models.StatusCompleted), other, media); !errors.Is(err, ErrMismatchedStates) {
		t.Errorf("mismatched error = %v, want ErrMismatchedStates", err)
	}

	if _, err := reg.Compute(nil, movieEntry(models.StatusCompleted), &models.MediaMetadata{Category: "podcasts"}); err == nil {
		t.Error("unknown category should fail")
	}
}

func TestActivity(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	media := testMovie()
	plan := movieEntry(models.StatusPlanToWatch)
	done := movieEntry(models.StatusCompleted)
	rewatched := done.Clone()
	rewatched.Progress.Redo = 1

	tests := []struct {
		name      string
		old, next *models.UserMediaEntry
		want      ActivityChange
	}{
		{"add planned", nil, plan, ActivityChange{}},
		{"complete", plan, done, ActivityChange{SpecificGained: 1, Completed: true}},
		{"rewatch", done, rewatched, ActivityChange{SpecificGained: 1, Redo: true}},
		{"remove", done, nil, ActivityChange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Activity(tt.old, tt.next, media)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Activity() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRemeasure(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	t.Run("movie runtime changes time only", func(t *testing.T) {
		before := testMovie()
		after := testMovie()
		after.Duration = 200

		e := movieEntry(models.StatusCompleted)
		e.Rating = decPtr("8")
		e.Progress.Redo = 1

		d, err := reg.Remeasure(e, before, after)
		if err != nil {
			t.Fatal(err)
		}
		want := models.NewDeltaStats()
		want.TimeSpent = dec("60") // 2 watches * (200 - 170)
		checkDelta(t, d, want)
	})

	t.Run("fewer seasons shrink specific total", func(t *testing.T) {
		before := &models.MediaMetadata{ID: "s1", Category: models.CategorySeries, Duration: 30, Seasons: []int{10, 10}}
		after := &models.MediaMetadata{ID: "s1", Category: models.CategorySeries, Duration: 30, Seasons: []int{10, 6}}
		e := &models.UserMediaEntry{
			UserID: "u1", MediaID: "s1", Category: models.CategorySeries, Status: models.StatusWatching,
			Progress: models.Progress{Season: 2, Episode: 4, RedoSeasons: []int{0, 1}},
		}

		d, err := reg.Remeasure(e, before, after)
		if err != nil {
			t.Fatal(err)
		}
		// before: 10 + 4 + 1*10 = 24; after: 10 + 4 + 1*6 = 20
		if d.TotalSpecific != -4 || !d.TimeSpent.Equal(dec("-120")) {
			t.Errorf("delta = %+v", d)
		}
		if d.TotalEntries != 0 || len(d.StatusCounts) != 0 || d.TotalRedo != 0 {
			t.Errorf("counts should not move: %+v", d)
		}

		stats := models.NewAggregatedStats(models.UserScope("u1", models.CategorySeries))
		add, _ := reg.Compute(nil, e, before)
		if err := stats.Apply(add); err != nil {
			t.Fatal(err)
		}
		if err := stats.Apply(d); err != nil {
			t.Fatal(err)
		}
		rebuilt, err := reg.Rebuild(stats.Scope(), []EntryWithMedia{{Entry: e, Media: after}})
		if err != nil {
			t.Fatal(err)
		}
		if !stats.SameTotals(rebuilt) {
			t.Errorf("remeasured row %+v != rebuilt %+v", stats, rebuilt)
		}
	})

	t.Run("category change rejected", func(t *testing.T) {
		other := testMovie()
		other.Category = models.CategoryBooks
		if _, err := reg.Remeasure(movieEntry(models.StatusCompleted), testMovie(), other); err == nil {
			t.Error("expected error for category change")
		}
	})
}
