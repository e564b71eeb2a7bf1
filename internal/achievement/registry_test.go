// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"errors"
	"testing"

	"github.com/tomtom215/mediashelf/internal/models"
)

func TestDefaultCatalog_BuildsRegistry(t *testing.T) {
	r, err := NewRegistry(DefaultCatalog())
	checkNoError(t, err)

	for _, c := range models.AllCategories() {
		defs := r.Definitions(c)
		if len(defs) == 0 {
			t.Errorf("category %s has no achievements", c)
		}
		for i := 1; i < len(defs); i++ {
			if defs[i-1].CodeName >= defs[i].CodeName {
				t.Errorf("%s definitions not sorted: %s before %s", c, defs[i-1].CodeName, defs[i].CodeName)
			}
		}
	}
}

func TestNewRegistry_RejectsInvalidDefinitions(t *testing.T) {
	valid := Definition{
		CodeName: "completed_books", Category: models.CategoryBooks,
		Strategy: Count{Predicate: models.PredicateCompleted},
		Tiers:    []TierDefinition{{Difficulty: models.DifficultyBronze, Criteria: models.TierCriteria{Count: 1}}},
	}

	tests := []struct {
		name   string
		mutate func(d *Definition)
	}{
		{"no code name", func(d *Definition) { d.CodeName = "" }},
		{"bad category", func(d *Definition) { d.Category = "podcasts" }},
		{"no strategy", func(d *Definition) { d.Strategy = nil }},
		{"no tiers", func(d *Definition) { d.Tiers = nil }},
		{"zero threshold", func(d *Definition) { d.Tiers[0].Criteria.Count = 0 }},
		{"unknown difficulty", func(d *Definition) { d.Tiers[0].Difficulty = "diamond" }},
		{"duplicate tier", func(d *Definition) { d.Tiers = append(d.Tiers, d.Tiers[0]) }},
		{"strategy rejects tier", func(d *Definition) { d.Strategy = Classified{Dimension: models.DimensionGenre} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			d.Tiers = append([]TierDefinition(nil), valid.Tiers...)
			tt.mutate(&d)
			_, err := NewRegistry([]Definition{d})
			checkError(t, err)
		})
	}

	_, err := NewRegistry([]Definition{valid, valid})
	checkError(t, err)
}

func TestRegistry_StrategyAndValidate(t *testing.T) {
	defs := []Definition{
		{
			CodeName: "completed_books", Category: models.CategoryBooks,
			Strategy: Count{Predicate: models.PredicateCompleted},
			Tiers:    ladder(count(0), 1, 2, 3, 4),
		},
		{
			CodeName: "completed_games", Category: models.CategoryGames,
			Strategy: Count{Predicate: models.PredicateCompleted},
			Tiers:    ladder(count(0), 1, 2, 3, 4),
		},
	}
	r, err := NewRegistry(defs)
	checkNoError(t, err)

	s, err := r.Strategy(models.CategoryBooks, "completed_books")
	checkNoError(t, err)
	if s.Kind() != "count:completed" {
		t.Errorf("kind: got %s", s.Kind())
	}

	_, err = r.Strategy(models.CategoryMovies, "completed_books")
	if !errors.Is(err, ErrUnregistered) {
		t.Errorf("expected ErrUnregistered, got %v", err)
	}

	persisted := []models.Achievement{
		{CodeName: "completed_books", Category: models.CategoryBooks},
		{CodeName: "completed_games", Category: models.CategoryGames},
	}
	checkNoError(t, r.Validate(persisted))

	// A persisted achievement without strategy.
	err = r.Validate(append(persisted, models.Achievement{CodeName: "legacy", Category: models.CategoryBooks}))
	if !errors.Is(err, ErrUnregistered) {
		t.Errorf("expected ErrUnregistered for unknown persisted achievement, got %v", err)
	}

	// A declared achievement that was never seeded.
	err = r.Validate(persisted[:1])
	if !errors.Is(err, ErrUnregistered) {
		t.Errorf("expected ErrUnregistered for unseeded achievement, got %v", err)
	}
}
