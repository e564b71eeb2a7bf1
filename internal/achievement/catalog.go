// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"fmt"

	"github.com/tomtom215/mediashelf/internal/models"
)

// Definition declares one achievement of the catalog together with the
// strategy that evaluates it.
type Definition struct {
	CodeName    string
	Name        string
	Description string
	Category    models.Category
	Value       *int64
	Strategy    Strategy
	Tiers       []TierDefinition
}

// TierDefinition declares one difficulty of an achievement.
type TierDefinition struct {
	Difficulty models.Difficulty
	Criteria   models.TierCriteria
}

// Validate checks a definition before it is registered or seeded.
func (d Definition) Validate() error {
	if d.CodeName == "" {
		return fmt.Errorf("achievement without code name")
	}
	if !d.Category.Valid() {
		return fmt.Errorf("achievement %s: invalid category %q", d.CodeName, d.Category)
	}
	if d.Strategy == nil {
		return fmt.Errorf("achievement %s: no strategy", d.CodeName)
	}
	if len(d.Tiers) == 0 {
		return fmt.Errorf("achievement %s: no tiers", d.CodeName)
	}

	seen := make(map[models.Difficulty]bool, len(d.Tiers))
	for _, t := range d.Tiers {
		if t.Difficulty.Ordinal() == 0 {
			return fmt.Errorf("achievement %s: unknown difficulty %q", d.CodeName, t.Difficulty)
		}
		if seen[t.Difficulty] {
			return fmt.Errorf("achievement %s: duplicate %s tier", d.CodeName, t.Difficulty)
		}
		seen[t.Difficulty] = true
		if t.Criteria.Count <= 0 {
			return fmt.Errorf("achievement %s: %s tier needs a positive count", d.CodeName, t.Difficulty)
		}
		if err := d.Strategy.validateTier(t.Criteria); err != nil {
			return fmt.Errorf("achievement %s: %s tier: %w", d.CodeName, t.Difficulty, err)
		}
	}
	return nil
}

// Achievement returns the persisted shape of the definition, without ids.
func (d Definition) Achievement() models.Achievement {
	a := models.Achievement{
		CodeName:    d.CodeName,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Value:       d.Value,
	}
	for _, t := range d.Tiers {
		a.Tiers = append(a.Tiers, models.AchievementTier{Difficulty: t.Difficulty, Criteria: t.Criteria})
	}
	return a
}

// ladder builds bronze to platinum tiers with the given thresholds and a
// shared classification filter.
func ladder(filter models.TierCriteria, bronze, silver, gold, platinum int64) []TierDefinition {
	counts := []int64{bronze, silver, gold, platinum}
	tiers := make([]TierDefinition, 0, len(counts))
	for i, d := range models.Difficulties() {
		c := filter
		c.Count = counts[i]
		tiers = append(tiers, TierDefinition{Difficulty: d, Criteria: c})
	}
	return tiers
}

func count(n int64) models.TierCriteria { return models.TierCriteria{Count: n} }

func value(v string) models.TierCriteria { return models.TierCriteria{Value: v} }

func person(name, role string) models.TierCriteria {
	return models.TierCriteria{Value: name, Role: role}
}

func int64Ptr(v int64) *int64 { return &v }

// minutesPerHour is the divisor of hour-based stat achievements.
const minutesPerHour = 60

// commonDefinitions declares the counter achievements every category has.
func commonDefinitions(c models.Category, noun string) []Definition {
	return []Definition{
		{
			CodeName:    "completed_" + string(c),
			Name:        "Completionist",
			Description: fmt.Sprintf("Complete %s", noun),
			Category:    c,
			Strategy:    Count{Predicate: models.PredicateCompleted},
			Tiers:       ladder(count(0), 10, 50, 150, 500),
		},
		{
			CodeName:    "rated_" + string(c),
			Name:        "Critic",
			Description: fmt.Sprintf("Rate completed %s", noun),
			Category:    c,
			Strategy:    Count{Predicate: models.PredicateRated},
			Tiers:       ladder(count(0), 5, 25, 100, 300),
		},
		{
			CodeName:    "commented_" + string(c),
			Name:        "Reviewer",
			Description: fmt.Sprintf("Comment on completed %s", noun),
			Category:    c,
			Strategy:    Count{Predicate: models.PredicateCommented},
			Tiers:       ladder(count(0), 1, 10, 50, 150),
		},
		{
			CodeName:    "favorite_" + string(c),
			Name:        "Devotee",
			Description: fmt.Sprintf("Favorite completed %s", noun),
			Category:    c,
			Strategy:    Count{Predicate: models.PredicateFavorite},
			Tiers:       ladder(count(0), 1, 10, 25, 50),
		},
		{
			CodeName:    "genres_" + string(c),
			Name:        "Explorer",
			Description: fmt.Sprintf("Complete %s across many genres", noun),
			Category:    c,
			Strategy:    Distinct{Dimension: models.DimensionGenre},
			Tiers:       ladder(count(0), 3, 6, 10, 15),
		},
	}
}

// DefaultCatalog returns the code-defined achievement catalog.
func DefaultCatalog() []Definition {
	var defs []Definition

	// Series
	defs = append(defs, commonDefinitions(models.CategorySeries, "series")...)
	defs = append(defs,
		Definition{
			CodeName: "rewatched_series", Name: "Second Look", Description: "Rewatch seasons of series",
			Category: models.CategorySeries, Strategy: Count{Predicate: models.PredicateRedo},
			Tiers: ladder(count(0), 1, 5, 15, 40),
		},
		Definition{
			CodeName: "drama_series", Name: "Drama Queen", Description: "Complete drama series",
			Category: models.CategorySeries, Strategy: Classified{Dimension: models.DimensionGenre},
			Tiers: ladder(value("Drama"), 5, 15, 40, 100),
		},
		Definition{
			CodeName: "hbo_series", Name: "Premium Cable", Description: "Complete series that aired on HBO",
			Category: models.CategorySeries, Strategy: Classified{Dimension: models.DimensionNetwork},
			Tiers: ladder(value("HBO"), 3, 10, 25, 50),
		},
		Definition{
			CodeName: "korean_series", Name: "Hallyu Wave", Description: "Complete Korean-language series",
			Category: models.CategorySeries, Strategy: Classified{Dimension: models.DimensionLanguage},
			Tiers: ladder(value("ko"), 3, 10, 25, 50),
		},
		Definition{
			CodeName: "hours_series", Name: "Couch Potato", Description: "Hours spent watching series",
			Category: models.CategorySeries, Value: int64Ptr(minutesPerHour), Strategy: Stat{Field: models.StatTimeSpent},
			Tiers: ladder(count(0), 100, 500, 2000, 5000),
		},
		Definition{
			CodeName: "episodes_series", Name: "One More Episode", Description: "Episodes watched",
			Category: models.CategorySeries, Strategy: Stat{Field: models.StatTotalSpecific},
			Tiers: ladder(count(0), 250, 1000, 5000, 15000),
		},
	)

	// Anime
	defs = append(defs, commonDefinitions(models.CategoryAnime, "anime")...)
	defs = append(defs,
		Definition{
			CodeName: "shonen_anime", Name: "Power of Friendship", Description: "Complete shonen anime",
			Category: models.CategoryAnime, Strategy: Classified{Dimension: models.DimensionGenre},
			Tiers: ladder(value("Shounen"), 5, 15, 40, 100),
		},
		Definition{
			CodeName: "studio_anime", Name: "Studio Regular", Description: "Complete anime from Madhouse",
			Category: models.CategoryAnime, Strategy: Classified{Dimension: models.DimensionNetwork},
			Tiers: ladder(value("Madhouse"), 3, 10, 20, 40),
		},
		Definition{
			CodeName: "hours_anime", Name: "Otaku", Description: "Hours spent watching anime",
			Category: models.CategoryAnime, Value: int64Ptr(minutesPerHour), Strategy: Stat{Field: models.StatTimeSpent},
			Tiers: ladder(count(0), 50, 250, 1000, 3000),
		},
	)

	// Movies
	defs = append(defs, commonDefinitions(models.CategoryMovies, "movies")...)
	defs = append(defs,
		Definition{
			CodeName: "rewatched_movies", Name: "Comfort Film", Description: "Rewatch movies",
			Category: models.CategoryMovies, Strategy: Count{Predicate: models.PredicateRedo},
			Tiers: ladder(count(0), 1, 10, 30, 75),
		},
		Definition{
			CodeName: "director_movies", Name: "Auteur", Description: "Complete movies directed by Christopher Nolan",
			Category: models.CategoryMovies, Strategy: Classified{Dimension: models.DimensionPerson},
			Tiers: ladder(person("Christopher Nolan", "director"), 1, 4, 8, 12),
		},
		Definition{
			CodeName: "short_movies", Name: "Short and Sweet", Description: "Complete movies under 90 minutes",
			Category: models.CategoryMovies, Strategy: Classified{Dimension: models.DimensionDuration},
			Tiers: ladder(models.TierCriteria{MaxDuration: 90}, 10, 30, 75, 150),
		},
		Definition{
			CodeName: "long_movies", Name: "Epic", Description: "Complete movies of 150 minutes or more",
			Category: models.CategoryMovies, Strategy: Classified{Dimension: models.DimensionDuration},
			Tiers: ladder(models.TierCriteria{MinDuration: 150}, 5, 15, 40, 80),
		},
		Definition{
			CodeName: "languages_movies", Name: "World Cinema", Description: "Complete movies in many languages",
			Category: models.CategoryMovies, Strategy: Distinct{Dimension: models.DimensionLanguage},
			Tiers: ladder(count(0), 3, 6, 10, 20),
		},
		Definition{
			CodeName: "hours_movies", Name: "Movie Marathon", Description: "Hours spent watching movies",
			Category: models.CategoryMovies, Value: int64Ptr(minutesPerHour), Strategy: Stat{Field: models.StatTimeSpent},
			Tiers: ladder(count(0), 50, 250, 1000, 2500),
		},
	)

	// Books
	defs = append(defs, commonDefinitions(models.CategoryBooks, "books")...)
	defs = append(defs,
		Definition{
			CodeName: "reread_books", Name: "Old Friends", Description: "Reread books",
			Category: models.CategoryBooks, Strategy: Count{Predicate: models.PredicateRedo},
			Tiers: ladder(count(0), 1, 5, 15, 30),
		},
		Definition{
			CodeName: "author_books", Name: "Constant Reader", Description: "Complete books by Stephen King",
			Category: models.CategoryBooks, Strategy: Classified{Dimension: models.DimensionPerson},
			Tiers: ladder(person("Stephen King", "author"), 1, 5, 15, 30),
		},
		Definition{
			CodeName: "fantasy_books", Name: "World Builder", Description: "Complete fantasy books",
			Category: models.CategoryBooks, Strategy: Classified{Dimension: models.DimensionGenre},
			Tiers: ladder(value("Fantasy"), 5, 20, 50, 120),
		},
		Definition{
			CodeName: "pages_books", Name: "Page Turner", Description: "Pages read",
			Category: models.CategoryBooks, Strategy: Stat{Field: models.StatTotalSpecific},
			Tiers: ladder(count(0), 2500, 10000, 50000, 150000),
		},
	)

	// Games
	defs = append(defs, commonDefinitions(models.CategoryGames, "games")...)
	defs = append(defs,
		Definition{
			CodeName: "developer_games", Name: "Brand Loyalty", Description: "Complete games developed by Nintendo",
			Category: models.CategoryGames, Strategy: Classified{Dimension: models.DimensionPerson},
			Tiers: ladder(person("Nintendo", "developer"), 3, 10, 25, 50),
		},
		Definition{
			CodeName: "rpg_games", Name: "Adventurer", Description: "Complete role-playing games",
			Category: models.CategoryGames, Strategy: Classified{Dimension: models.DimensionGenre},
			Tiers: ladder(value("RPG"), 3, 10, 25, 60),
		},
		Definition{
			CodeName: "hours_games", Name: "No Life", Description: "Hours played",
			Category: models.CategoryGames, Value: int64Ptr(minutesPerHour), Strategy: Stat{Field: models.StatTimeSpent},
			Tiers: ladder(count(0), 100, 500, 2000, 6000),
		},
	)

	// Manga
	defs = append(defs, commonDefinitions(models.CategoryManga, "manga")...)
	defs = append(defs,
		Definition{
			CodeName: "reread_manga", Name: "Back to Volume One", Description: "Reread manga",
			Category: models.CategoryManga, Strategy: Count{Predicate: models.PredicateRedo},
			Tiers: ladder(count(0), 1, 5, 15, 30),
		},
		Definition{
			CodeName: "mangaka_manga", Name: "Pirate King", Description: "Complete manga by Eiichiro Oda",
			Category: models.CategoryManga, Strategy: Classified{Dimension: models.DimensionPerson},
			Tiers: ladder(person("Eiichiro Oda", "author"), 1, 2, 3, 5),
		},
		Definition{
			CodeName: "chapters_manga", Name: "Weekly Jump", Description: "Chapters read",
			Category: models.CategoryManga, Strategy: Stat{Field: models.StatTotalSpecific},
			Tiers: ladder(count(0), 500, 2500, 10000, 25000),
		},
	)

	return defs
}
