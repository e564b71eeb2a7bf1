// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/database"
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

func mustRegistry(t *testing.T, defs []Definition) *Registry {
	t.Helper()
	r, err := NewRegistry(defs)
	checkNoError(t, err)
	return r
}

func bookDefinitions() []Definition {
	return []Definition{
		{
			CodeName: "completed_books", Name: "Reader", Description: "Finish books",
			Category: models.CategoryBooks, Strategy: Count{Predicate: models.PredicateCompleted},
			Tiers: ladder(count(0), 1, 5, 10, 20),
		},
		{
			CodeName: "fantasy_books", Name: "World Builder", Description: "Finish fantasy books",
			Category: models.CategoryBooks, Strategy: Classified{Dimension: models.DimensionGenre},
			Tiers: ladder(value("Fantasy"), 1, 3, 5, 10),
		},
	}
}

func TestSeeder_CreatesThenIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seeder := NewSeeder(db, mustRegistry(t, bookDefinitions()), zerolog.Nop())

	first, err := seeder.SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)
	checkIntEqual(t, "created", first.AchievementsCreated, 2)
	checkIntEqual(t, "tiers created", first.TiersCreated, 8)

	second, err := seeder.SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)
	checkIntEqual(t, "writes on second run", second.Writes(), 0)

	books := models.CategoryBooks
	persisted, err := db.ListAchievements(ctx, &books)
	checkNoError(t, err)
	checkIntEqual(t, "persisted", len(persisted), 2)
	checkNoError(t, seeder.registry.Validate(persisted))
}

func TestSeeder_SeedAllCategories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	registry := mustRegistry(t, DefaultCatalog())
	seeder := NewSeeder(db, registry, zerolog.Nop())

	reports, err := seeder.Seed(ctx)
	checkNoError(t, err)
	checkIntEqual(t, "reports", len(reports), len(models.AllCategories()))

	persisted, err := db.ListAchievements(ctx, nil)
	checkNoError(t, err)
	checkNoError(t, registry.Validate(persisted))

	again, err := seeder.Seed(ctx)
	checkNoError(t, err)
	for _, r := range again {
		checkIntEqual(t, string(r.Category)+" writes", r.Writes(), 0)
	}
}

func TestSeeder_UpdatesAndPrunes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, mustRegistry(t, bookDefinitions()), zerolog.Nop()).SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)

	books := models.CategoryBooks
	before, err := db.ListAchievements(ctx, &books)
	checkNoError(t, err)
	var completedID, platinumID string
	for _, a := range before {
		if a.CodeName == "completed_books" {
			completedID = a.ID
			platinumID = a.Tiers[3].ID
		}
	}

	// Progress on a tier that is about to disappear must go with it.
	checkNoError(t, db.UpsertProgress(ctx, []models.UserAchievementProgress{
		{UserID: "u1", TierID: platinumID, Count: 3, Progress: 15, LastCalculatedAt: time.Now()},
	}))

	// Rename, change one threshold, drop platinum, drop fantasy_books.
	changed := bookDefinitions()[:1]
	changed[0].Name = "Bookworm"
	changed[0].Tiers = ladder(count(0), 2, 5, 10, 20)[:3]

	report, err := NewSeeder(db, mustRegistry(t, changed), zerolog.Nop()).SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)
	checkIntEqual(t, "achievements updated", report.AchievementsUpdated, 1)
	checkIntEqual(t, "achievements deleted", report.AchievementsDeleted, 1)
	checkIntEqual(t, "tiers updated", report.TiersUpdated, 1)
	checkIntEqual(t, "tiers deleted", report.TiersDeleted, 1+4)
	checkIntEqual(t, "tiers created", report.TiersCreated, 0)

	after, err := db.ListAchievements(ctx, &books)
	checkNoError(t, err)
	checkIntEqual(t, "achievements", len(after), 1)
	a := after[0]
	if a.ID != completedID {
		t.Errorf("achievement id changed: %s -> %s", completedID, a.ID)
	}
	if a.Name != "Bookworm" {
		t.Errorf("name not updated: %s", a.Name)
	}
	checkIntEqual(t, "tiers", len(a.Tiers), 3)
	checkInt64Equal(t, "bronze threshold", a.Tiers[0].Criteria.Count, 2)

	progress, err := db.ListUserProgress(ctx, "u1", nil)
	checkNoError(t, err)
	checkIntEqual(t, "progress rows", len(progress), 0)
}

// A failure partway through a category must leave that category exactly as
// it was, including the writes that succeeded before the failure.
func TestSeeder_FailedCategoryWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, mustRegistry(t, bookDefinitions()), zerolog.Nop()).SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)

	books := models.CategoryBooks
	before, err := db.ListAchievements(ctx, &books)
	checkNoError(t, err)
	checkIntEqual(t, "achievements", len(before), 2)

	// completed_books is renamed and fantasy_books loses platinum before
	// short_books is inserted under an id that already exists.
	changed := bookDefinitions()
	changed[0].Name = "Bookworm"
	changed[1].Tiers = changed[1].Tiers[:3]
	changed = append(changed, Definition{
		CodeName: "short_books", Name: "Sprinter", Description: "Finish short books",
		Category: models.CategoryBooks, Strategy: Count{Predicate: models.PredicateCompleted},
		Tiers: ladder(count(0), 1, 2, 3, 4),
	})

	seeder := NewSeeder(db, mustRegistry(t, changed), zerolog.Nop())
	seeder.newID = func() string { return before[0].ID }

	report, err := seeder.SeedCategory(ctx, models.CategoryBooks)
	checkError(t, err)
	checkIntEqual(t, "writes reported", report.Writes(), 0)

	after, err := db.ListAchievements(ctx, &books)
	checkNoError(t, err)
	checkIntEqual(t, "achievements after failure", len(after), len(before))
	for i := range before {
		b, a := before[i], after[i]
		checkStringEqual(t, "code name", a.CodeName, b.CodeName)
		checkStringEqual(t, "name", a.Name, b.Name)
		checkIntEqual(t, b.CodeName+" tiers", len(a.Tiers), len(b.Tiers))
		for j := range b.Tiers {
			if j < len(a.Tiers) {
				checkStringEqual(t, "tier id", a.Tiers[j].ID, b.Tiers[j].ID)
			}
		}
	}

	// The same definitions apply cleanly once ids are fresh again.
	seeder.newID = uuid.NewString
	report, err = seeder.SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)
	checkIntEqual(t, "achievements created", report.AchievementsCreated, 1)
	checkIntEqual(t, "achievements updated", report.AchievementsUpdated, 1)
	checkIntEqual(t, "tiers deleted", report.TiersDeleted, 1)
}

func TestSeeder_LeavesOtherCategoriesAlone(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	games := []Definition{{
		CodeName: "completed_games", Name: "Gamer", Category: models.CategoryGames,
		Strategy: Count{Predicate: models.PredicateCompleted}, Tiers: ladder(count(0), 1, 2, 3, 4),
	}}
	_, err := NewSeeder(db, mustRegistry(t, games), zerolog.Nop()).SeedCategory(ctx, models.CategoryGames)
	checkNoError(t, err)

	// A books-only registry prunes nothing outside books.
	_, err = NewSeeder(db, mustRegistry(t, bookDefinitions()), zerolog.Nop()).SeedCategory(ctx, models.CategoryBooks)
	checkNoError(t, err)

	all, err := db.ListAchievements(ctx, nil)
	checkNoError(t, err)
	checkIntEqual(t, "achievements", len(all), 3)
}
