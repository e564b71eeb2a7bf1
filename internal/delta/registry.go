// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package delta

import (
	"fmt"

	"github.com/tomtom215/mediashelf/internal/models"
)

const (
	maxRedo            = 10
	maxPlaytimeMinutes = 600000
)

// Registry resolves a category to its Calculator. It is built once and never
// mutated; pass it by reference to whoever needs it.
type Registry struct {
	calculators map[models.Category]Calculator
}

// NewRegistry builds the registry of every supported category.
func NewRegistry() *Registry {
	return &Registry{
		calculators: map[models.Category]Calculator{
			models.CategorySeries: episodic{},
			models.CategoryAnime:  episodic{},
			models.CategoryMovies: movie{},
			models.CategoryBooks:  paginated{minutesPerUnit: MinutesPerPage},
			models.CategoryManga:  paginated{minutesPerUnit: MinutesPerChapter},
			models.CategoryGames:  playtime{},
		},
	}
}

// For returns the calculator of a category.
func (r *Registry) For(category models.Category) (Calculator, error) {
	calc, ok := r.calculators[category]
	if !ok {
		return nil, fmt.Errorf("delta: no calculator for category %q", category)
	}
	return calc, nil
}

// Compute resolves the media category and returns the transition delta.
func (r *Registry) Compute(old, next *models.UserMediaEntry, media *models.MediaMetadata) (*models.DeltaStats, error) {
	calc, err := r.For(media.Category)
	if err != nil {
		return nil, err
	}
	return Compute(calc, old, next, media)
}

// Prepare normalizes next for the status change and validates it. It must
// run before Compute so the delta sees the final state.
func (r *Registry) Prepare(old, next *models.UserMediaEntry, media *models.MediaMetadata) error {
	calc, err := r.For(media.Category)
	if err != nil {
		return err
	}
	calc.Normalize(old, next, media)
	return calc.Validate(next, media)
}

// Activity derives the activity-log change of a transition.
func (r *Registry) Activity(old, next *models.UserMediaEntry, media *models.MediaMetadata) (ActivityChange, error) {
	calc, err := r.For(media.Category)
	if err != nil {
		return ActivityChange{}, err
	}
	return Activity(calc, old, next, media), nil
}

// Remeasure returns the delta of an unchanged entry whose media metadata
// changed from before to after: its contribution under before is removed
// and its contribution under after is added. Applying it keeps a row equal
// to a rebuild against the new metadata.
func (r *Registry) Remeasure(e *models.UserMediaEntry, before, after *models.MediaMetadata) (*models.DeltaStats, error) {
	if before.Category != after.Category {
		return nil, fmt.Errorf("delta: media category changed from %q to %q", before.Category, after.Category)
	}
	calc, err := r.For(after.Category)
	if err != nil {
		return nil, err
	}
	removed, err := Compute(calc, e, nil, before)
	if err != nil {
		return nil, err
	}
	added, err := Compute(calc, nil, e, after)
	if err != nil {
		return nil, err
	}
	return removed.Add(added), nil
}

// EntryWithMedia pairs an entry with its metadata for rebuilds.
type EntryWithMedia struct {
	Entry *models.UserMediaEntry
	Media *models.MediaMetadata
}

// Rebuild re-derives an aggregate row from scratch as the sum of the
// addition deltas of every current entry.
func (r *Registry) Rebuild(scope models.StatsScope, entries []EntryWithMedia) (*models.AggregatedStats, error) {
	stats := models.NewAggregatedStats(scope)
	for _, em := range entries {
		d, err := r.Compute(nil, em.Entry, em.Media)
		if err != nil {
			return nil, err
		}
		if err := stats.Apply(d); err != nil {
			return nil, fmt.Errorf("rebuild %s: %w", scope, err)
		}
	}
	return stats, nil
}
