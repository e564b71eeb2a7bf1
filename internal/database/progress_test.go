// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/mediashelf/internal/models"
)

func TestUpsertProgress_CompletedAtSetOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	insertAchievement(t, db, models.Achievement{
		ID: "a1", CodeName: "completed_movies", Name: "Cinephile", Category: models.CategoryMovies,
	}, map[models.Difficulty]int64{models.DifficultyBronze: 10})

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	row := func(count int64, at time.Time) models.UserAchievementProgress {
		return models.UserAchievementProgress{
			UserID: "u1", TierID: "a1-bronze", Count: count,
			Progress: float64(min(count*10, 100)), Completed: count >= 10, LastCalculatedAt: at,
		}
	}

	checkNoError(t, db.UpsertProgress(ctx, []models.UserAchievementProgress{row(9, t0)}))
	got, err := db.ListUserProgress(ctx, "u1", nil)
	checkNoError(t, err)
	if got["a1-bronze"].CompletedAt != nil {
		t.Fatal("completedAt set before completion")
	}

	checkNoError(t, db.UpsertProgress(ctx, []models.UserAchievementProgress{row(10, t1)}))
	got, err = db.ListUserProgress(ctx, "u1", nil)
	checkNoError(t, err)
	p := got["a1-bronze"]
	checkBool(t, "completed", p.Completed, true)
	if p.CompletedAt == nil || !p.CompletedAt.Equal(t1) {
		t.Fatalf("completedAt: expected %v, got %v", t1, p.CompletedAt)
	}

	checkNoError(t, db.UpsertProgress(ctx, []models.UserAchievementProgress{row(12, t2)}))
	got, err = db.ListUserProgress(ctx, "u1", nil)
	checkNoError(t, err)
	p = got["a1-bronze"]
	checkInt64Equal(t, "count", p.Count, 12)
	if !p.LastCalculatedAt.Equal(t2) {
		t.Errorf("lastCalculatedAt: expected %v, got %v", t2, p.LastCalculatedAt)
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(t1) {
		t.Errorf("completedAt moved: expected %v, got %v", t1, p.CompletedAt)
	}
}

func TestApplyTierResults_ZeroesRegressedUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	insertAchievement(t, db, models.Achievement{
		ID: "a1", CodeName: "completed_movies", Name: "Cinephile", Category: models.CategoryMovies,
	}, map[models.Difficulty]int64{models.DifficultyBronze: 2})

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	checkNoError(t, db.ApplyTierResults(ctx, "a1-bronze", []models.UserAchievementProgress{
		{UserID: "u1", TierID: "a1-bronze", Count: 2, Progress: 100, Completed: true},
		{UserID: "u2", TierID: "a1-bronze", Count: 1, Progress: 50},
	}, first))

	// u1 lost their entries; only u2 qualifies now.
	second := first.Add(24 * time.Hour).Add(123 * time.Nanosecond)
	checkNoError(t, db.ApplyTierResults(ctx, "a1-bronze", []models.UserAchievementProgress{
		{UserID: "u2", TierID: "a1-bronze", Count: 2, Progress: 100, Completed: true},
	}, second))

	u1, err := db.ListUserProgress(ctx, "u1", nil)
	checkNoError(t, err)
	p := u1["a1-bronze"]
	checkInt64Equal(t, "u1 count", p.Count, 0)
	checkBool(t, "u1 completed", p.Completed, false)
	if p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Errorf("u1 completedAt must be kept: got %v", p.CompletedAt)
	}
	if !p.LastCalculatedAt.Equal(second.Truncate(time.Microsecond)) {
		t.Errorf("u1 lastCalculatedAt: expected %v, got %v", second, p.LastCalculatedAt)
	}

	u2, err := db.ListUserProgress(ctx, "u2", nil)
	checkNoError(t, err)
	p = u2["a1-bronze"]
	checkInt64Equal(t, "u2 count", p.Count, 2)
	checkBool(t, "u2 completed", p.Completed, true)
	if p.CompletedAt == nil {
		t.Error("u2 completedAt not set")
	}
}

func TestHighestTiers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insertAchievement(t, db, models.Achievement{
		ID: "a1", CodeName: "completed_series", Name: "Binger", Category: models.CategorySeries,
	}, map[models.Difficulty]int64{
		models.DifficultyBronze:   1,
		models.DifficultySilver:   5,
		models.DifficultyGold:     10,
		models.DifficultyPlatinum: 50,
	})
	insertAchievement(t, db, models.Achievement{
		ID: "a2", CodeName: "completed_books", Name: "Reader", Category: models.CategoryBooks,
	}, map[models.Difficulty]int64{models.DifficultyBronze: 1})

	done := func(user, tier string) models.UserAchievementProgress {
		return models.UserAchievementProgress{UserID: user, TierID: tier, Count: 1, Progress: 100,
			Completed: true, LastCalculatedAt: now}
	}
	checkNoError(t, db.UpsertProgress(ctx, []models.UserAchievementProgress{
		done("u1", "a1-bronze"),
		done("u1", "a1-silver"),
		done("u1", "a1-gold"),
		{UserID: "u1", TierID: "a1-platinum", Count: 12, Progress: 24, LastCalculatedAt: now},
		done("u1", "a2-bronze"),
		done("u2", "a1-bronze"),
	}))

	u1, err := db.HighestTiers(ctx, "u1", nil)
	checkNoError(t, err)
	checkIntEqual(t, "u1 badges", len(u1), 2)
	checkStringEqual(t, "a1 badge", string(u1[0].Difficulty), "gold")
	checkStringEqual(t, "a2 badge", string(u1[1].Difficulty), "bronze")

	series := models.CategorySeries
	everyone, err := db.HighestTiers(ctx, "", &series)
	checkNoError(t, err)
	checkIntEqual(t, "series badges", len(everyone), 2)
	checkStringEqual(t, "u2 badge", string(everyone[1].Difficulty), "bronze")

	filtered, err := db.ListUserProgress(ctx, "u1", &series)
	checkNoError(t, err)
	checkIntEqual(t, "u1 series progress", len(filtered), 4)
}
