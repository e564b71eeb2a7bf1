// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/mediashelf/internal/models"
)

// seedCriteriaFixture registers three movies and a small set of entries:
//
//	m1  90 min, en, drama, director Nolan
//	m2 150 min, fr, drama + thriller
//	m3  45 min, en, comedy
//
//	u1: m1 completed rated favorite, m2 completed commented, m3 plan
//	u2: m1 completed with 2 redos, m3 completed
//	u3: m2 plan with a rating (not counted)
func seedCriteriaFixture(t *testing.T, db *DB) {
	t.Helper()
	seedMedia(t, db,
		&models.MediaMetadata{ID: "m1", Category: models.CategoryMovies, Title: "One", Duration: 90, Language: "en",
			Classifications: []models.Classification{
				{Dimension: models.DimensionGenre, Value: "drama"},
				{Dimension: models.DimensionPerson, Value: "Nolan", Role: "director"},
			}},
		&models.MediaMetadata{ID: "m2", Category: models.CategoryMovies, Title: "Two", Duration: 150, Language: "fr",
			Classifications: []models.Classification{
				{Dimension: models.DimensionGenre, Value: "drama"},
				{Dimension: models.DimensionGenre, Value: "thriller"},
			}},
		&models.MediaMetadata{ID: "m3", Category: models.CategoryMovies, Title: "Three", Duration: 45, Language: "en",
			Classifications: []models.Classification{
				{Dimension: models.DimensionGenre, Value: "comedy"},
			}},
	)

	rating := decimal.NewFromInt(8)
	comment := "great"

	u1m1 := newEntry("u1", "m1", models.CategoryMovies, models.StatusCompleted)
	u1m1.Rating = &rating
	u1m1.Favorite = true
	u1m2 := newEntry("u1", "m2", models.CategoryMovies, models.StatusCompleted)
	u1m2.Comment = &comment
	u1m3 := newEntry("u1", "m3", models.CategoryMovies, models.StatusPlanToWatch)

	u2m1 := newEntry("u2", "m1", models.CategoryMovies, models.StatusCompleted)
	u2m1.Progress.Redo = 2
	u2m3 := newEntry("u2", "m3", models.CategoryMovies, models.StatusCompleted)

	u3m2 := newEntry("u3", "m2", models.CategoryMovies, models.StatusPlanToWatch)
	u3m2.Rating = &rating

	putEntries(t, db, u1m1, u1m2, u1m3, u2m1, u2m3, u3m2)
}

func countsByUser(counts []models.UserCount) map[string]int64 {
	m := make(map[string]int64, len(counts))
	for _, c := range counts {
		m[c.UserID] = c.Count
	}
	return m
}

func TestCountQualifying_Batch(t *testing.T) {
	db := setupTestDB(t)
	seedCriteriaFixture(t, db)

	movie := func(q models.CriteriaQuery) models.CriteriaQuery {
		q.Category = models.CategoryMovies
		return q
	}

	tests := []struct {
		name  string
		query models.CriteriaQuery
		want  map[string]int64
	}{
		{
			name:  "completed",
			query: movie(models.CriteriaQuery{Source: models.SourceEntries, Predicate: models.PredicateCompleted}),
			want:  map[string]int64{"u1": 2, "u2": 2},
		},
		{
			name:  "rated only when completed",
			query: movie(models.CriteriaQuery{Source: models.SourceEntries, Predicate: models.PredicateRated}),
			want:  map[string]int64{"u1": 1},
		},
		{
			name:  "commented",
			query: movie(models.CriteriaQuery{Source: models.SourceEntries, Predicate: models.PredicateCommented}),
			want:  map[string]int64{"u1": 1},
		},
		{
			name:  "favorite",
			query: movie(models.CriteriaQuery{Source: models.SourceEntries, Predicate: models.PredicateFavorite}),
			want:  map[string]int64{"u1": 1},
		},
		{
			name:  "redo",
			query: movie(models.CriteriaQuery{Source: models.SourceEntries, Predicate: models.PredicateRedo}),
			want:  map[string]int64{"u2": 1},
		},
		{
			name:  "genre",
			query: movie(models.CriteriaQuery{Source: models.SourceClassified, Dimension: models.DimensionGenre, Value: "drama"}),
			want:  map[string]int64{"u1": 2, "u2": 1},
		},
		{
			name: "person with role",
			query: movie(models.CriteriaQuery{Source: models.SourceClassified, Dimension: models.DimensionPerson,
				Value: "Nolan", Role: "director"}),
			want: map[string]int64{"u1": 1, "u2": 1},
		},
		{
			name: "person wrong role",
			query: movie(models.CriteriaQuery{Source: models.SourceClassified, Dimension: models.DimensionPerson,
				Value: "Nolan", Role: "actor"}),
			want: map[string]int64{},
		},
		{
			name:  "language",
			query: movie(models.CriteriaQuery{Source: models.SourceClassified, Dimension: models.DimensionLanguage, Value: "en"}),
			want:  map[string]int64{"u1": 1, "u2": 2},
		},
		{
			name: "duration bracket",
			query: movie(models.CriteriaQuery{Source: models.SourceClassified, Dimension: models.DimensionDuration,
				MinDuration: 60, MaxDuration: 120}),
			want: map[string]int64{"u1": 1, "u2": 1},
		},
		{
			name: "duration open ended",
			query: movie(models.CriteriaQuery{Source: models.SourceClassified, Dimension: models.DimensionDuration,
				MinDuration: 120}),
			want: map[string]int64{"u1": 1},
		},
		{
			name:  "distinct genres",
			query: movie(models.CriteriaQuery{Source: models.SourceDistinct, Dimension: models.DimensionGenre}),
			want:  map[string]int64{"u1": 2, "u2": 2},
		},
		{
			name:  "distinct languages",
			query: movie(models.CriteriaQuery{Source: models.SourceDistinct, Dimension: models.DimensionLanguage}),
			want:  map[string]int64{"u1": 2, "u2": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts, err := db.CountQualifying(context.Background(), tt.query)
			checkNoError(t, err)
			got := countsByUser(counts)
			checkIntEqual(t, "qualifying users", len(got), len(tt.want))
			for user, want := range tt.want {
				checkInt64Equal(t, user, got[user], want)
			}
		})
	}
}

func TestCountQualifying_SingleUser(t *testing.T) {
	db := setupTestDB(t)
	seedCriteriaFixture(t, db)
	ctx := context.Background()

	counts, err := db.CountQualifying(ctx, models.CriteriaQuery{
		Category: models.CategoryMovies, Source: models.SourceClassified,
		Dimension: models.DimensionGenre, Value: "drama", UserID: "u2",
	})
	checkNoError(t, err)
	checkIntEqual(t, "rows", len(counts), 1)
	checkStringEqual(t, "user", counts[0].UserID, "u2")
	checkInt64Equal(t, "count", counts[0].Count, 1)

	// No qualifying entries yields no row.
	counts, err = db.CountQualifying(ctx, models.CriteriaQuery{
		Category: models.CategoryMovies, Source: models.SourceEntries,
		Predicate: models.PredicateCompleted, UserID: "u3",
	})
	checkNoError(t, err)
	checkIntEqual(t, "rows for u3", len(counts), 0)
}

func TestCountQualifying_Stat(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := applyDelta(t, db, models.UserScope("u1", models.CategoryGames), completedDelta("250", ""))
	checkNoError(t, err)
	_, err = applyDelta(t, db, models.UserScope("u2", models.CategoryGames), completedDelta("59", ""))
	checkNoError(t, err)
	_, err = applyDelta(t, db, models.PlatformScope(models.CategoryGames), completedDelta("309", ""))
	checkNoError(t, err)

	counts, err := db.CountQualifying(ctx, models.CriteriaQuery{
		Category: models.CategoryGames, Source: models.SourceStat,
		Field: models.StatTimeSpent, Divisor: 60,
	})
	checkNoError(t, err)
	got := countsByUser(counts)
	checkIntEqual(t, "qualifying users", len(got), 1)
	checkInt64Equal(t, "u1 hours", got["u1"], 4)
}

func TestCountQualifying_InvalidQueries(t *testing.T) {
	db := setupTestDB(t)

	bad := []models.CriteriaQuery{
		{Category: "podcasts", Source: models.SourceEntries, Predicate: models.PredicateCompleted},
		{Category: models.CategoryMovies, Source: "bogus"},
		{Category: models.CategoryMovies, Source: models.SourceEntries, Predicate: "watched_twice"},
		{Category: models.CategoryMovies, Source: models.SourceClassified, Dimension: models.DimensionDuration},
		{Category: models.CategoryMovies, Source: models.SourceClassified, Dimension: "studio"},
		{Category: models.CategoryMovies, Source: models.SourceDistinct, Dimension: models.DimensionDuration},
		{Category: models.CategoryMovies, Source: models.SourceStat, Field: "labels; DROP TABLE media"},
	}
	for _, q := range bad {
		if _, err := db.CountQualifying(context.Background(), q); err == nil {
			t.Errorf("expected error for %+v", q)
		}
	}
}
