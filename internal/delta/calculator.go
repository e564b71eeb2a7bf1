// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

// Package delta computes the exact effect of a single list mutation on the
// precomputed aggregate statistics of a user.
//
// Every mutation is one of three transitions:
//
//	addition: old == nil, new != nil
//	removal:  old != nil, new == nil
//	update:   old != nil, new != nil
//
// Each transition has its own pure function returning a fully populated
// models.DeltaStats. All three are expressed through an entry's
// contribution (what a single entry adds to an aggregate row), so the sum of
// every delta ever produced for a row always equals the sum of the
// contributions of the entries currently in the list.
//
// Category-specific rules (what "specific progress" means, minutes per unit,
// redo counters, status side effects) live behind the Calculator interface.
// Calculators are resolved through an immutable Registry built once at
// startup.
package delta

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tomtom215/mediashelf/internal/models"
)

var (
	// ErrNoTransition is returned when both states are nil.
	ErrNoTransition = errors.New("delta: no transition, both states are nil")

	// ErrMismatchedStates is returned when old and new describe different entries.
	ErrMismatchedStates = errors.New("delta: old and new states describe different entries")

	// ErrInvalidProgress is returned when progress fields fall outside media bounds.
	ErrInvalidProgress = errors.New("delta: invalid progress")
)

// Calculator holds the rules of one category family.
type Calculator interface {
	// SpecificTotal returns the cumulative progress units of an entry
	// (episodes, pages, chapters, playtime minutes, watches).
	SpecificTotal(e *models.UserMediaEntry, media *models.MediaMetadata) int64

	// UnitWeight returns the minutes one specific unit is worth.
	UnitWeight(media *models.MediaMetadata) decimal.Decimal

	// Redo returns the redo counter of an entry.
	Redo(e *models.UserMediaEntry) int64

	// Normalize applies the progress side effects of a status change to next.
	// old is nil on addition.
	Normalize(old, next *models.UserMediaEntry, media *models.MediaMetadata)

	// Validate checks progress fields against the media bounds.
	Validate(e *models.UserMediaEntry, media *models.MediaMetadata) error
}

// contribution is everything one entry adds to an aggregate row.
type contribution struct {
	status    models.Status
	specific  int64
	timeSpent decimal.Decimal
	redo      int64
	rated     int64
	ratingSum decimal.Decimal
	commented int64
	favorite  int64
	labels    int64
}

// contributionOf evaluates an entry. Rating, comment and favorite only count
// while the entry is completed.
func contributionOf(calc Calculator, e *models.UserMediaEntry, media *models.MediaMetadata) contribution {
	specific := calc.SpecificTotal(e, media)
	c := contribution{
		status:    e.Status,
		specific:  specific,
		timeSpent: decimal.NewFromInt(specific).Mul(calc.UnitWeight(media)),
		redo:      calc.Redo(e),
		ratingSum: decimal.Zero,
		labels:    int64(e.Labels),
	}
	if e.IsCompleted() {
		if e.HasRating() {
			c.rated = 1
			c.ratingSum = *e.Rating
		}
		if e.HasComment() {
			c.commented = 1
		}
		if e.Favorite {
			c.favorite = 1
		}
	}
	return c
}

// additionDelta is the delta of adding next to the list.
func additionDelta(next contribution) *models.DeltaStats {
	return &models.DeltaStats{
		TotalEntries:     1,
		StatusCounts:     models.StatusCounts{next.status: 1},
		TimeSpent:        next.timeSpent,
		TotalRedo:        next.redo,
		TotalSpecific:    next.specific,
		EntriesRated:     next.rated,
		SumEntriesRated:  next.ratingSum,
		EntriesCommented: next.commented,
		EntriesFavorites: next.favorite,
		TotalLabels:      next.labels,
	}
}

// removalDelta is the delta of removing old from the list.
func removalDelta(old contribution) *models.DeltaStats {
	return &models.DeltaStats{
		TotalEntries:     -1,
		StatusCounts:     models.StatusCounts{old.status: -1},
		TimeSpent:        old.timeSpent.Neg(),
		TotalRedo:        -old.redo,
		TotalSpecific:    -old.specific,
		EntriesRated:     -old.rated,
		SumEntriesRated:  old.ratingSum.Neg(),
		EntriesCommented: -old.commented,
		EntriesFavorites: -old.favorite,
		TotalLabels:      -old.labels,
	}
}

// updateDelta is the delta of replacing old by next.
func updateDelta(old, next contribution) *models.DeltaStats {
	statusCounts := models.StatusCounts{}
	if old.status != next.status {
		statusCounts[old.status] = -1
		statusCounts[next.status] = 1
	}
	return &models.DeltaStats{
		TotalEntries:     0,
		StatusCounts:     statusCounts,
		TimeSpent:        next.timeSpent.Sub(old.timeSpent),
		TotalRedo:        next.redo - old.redo,
		TotalSpecific:    next.specific - old.specific,
		EntriesRated:     next.rated - old.rated,
		SumEntriesRated:  next.ratingSum.Sub(old.ratingSum),
		EntriesCommented: next.commented - old.commented,
		EntriesFavorites: next.favorite - old.favorite,
		TotalLabels:      next.labels - old.labels,
	}
}

// Compute returns the delta of the transition old -> next using calc.
func Compute(calc Calculator, old, next *models.UserMediaEntry, media *models.MediaMetadata) (*models.DeltaStats, error) {
	switch {
	case old == nil && next == nil:
		return nil, ErrNoTransition
	case old == nil:
		return additionDelta(contributionOf(calc, next, media)), nil
	case next == nil:
		return removalDelta(contributionOf(calc, old, media)), nil
	default:
		if old.UserID != next.UserID || old.MediaID != next.MediaID || old.Category != next.Category {
			return nil, fmt.Errorf("%w: %s/%s vs %s/%s",
				ErrMismatchedStates, old.UserID, old.MediaID, next.UserID, next.MediaID)
		}
		return updateDelta(contributionOf(calc, old, media), contributionOf(calc, next, media)), nil
	}
}

// ActivityChange is what the activity log records for one transition.
type ActivityChange struct {
	SpecificGained int64
	Completed      bool
	Redo           bool
}

// IsEmpty reports whether the change is worth logging.
func (a ActivityChange) IsEmpty() bool {
	return a.SpecificGained == 0 && !a.Completed && !a.Redo
}

// Activity derives the activity change of a transition. Removals never
// produce activity.
func Activity(calc Calculator, old, next *models.UserMediaEntry, media *models.MediaMetadata) ActivityChange {
	if next == nil {
		return ActivityChange{}
	}
	var oldSpecific, oldRedo int64
	if old != nil {
		oldSpecific = calc.SpecificTotal(old, media)
		oldRedo = calc.Redo(old)
	}
	return ActivityChange{
		SpecificGained: calc.SpecificTotal(next, media) - oldSpecific,
		Completed:      next.IsCompleted() && !old.IsCompleted(),
		Redo:           calc.Redo(next) > oldRedo,
	}
}
