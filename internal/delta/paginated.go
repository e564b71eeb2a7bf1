// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package delta

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tomtom215/mediashelf/internal/models"
)

// Minutes per unit for paginated media.
var (
	MinutesPerPage    = decimal.RequireFromString("1.7")
	MinutesPerChapter = decimal.NewFromInt(7)
)

// paginated handles books (pages) and manga (chapters). Each full re-read
// adds the total unit count of the media.
type paginated struct {
	minutesPerUnit decimal.Decimal
}

func (paginated) SpecificTotal(e *models.UserMediaEntry, media *models.MediaMetadata) int64 {
	return int64(e.Progress.Units) + int64(e.Progress.Redo)*int64(media.TotalUnits)
}

func (p paginated) UnitWeight(_ *models.MediaMetadata) decimal.Decimal {
	return p.minutesPerUnit
}

func (paginated) Redo(e *models.UserMediaEntry) int64 {
	return int64(e.Progress.Redo)
}

func (paginated) Normalize(old, next *models.UserMediaEntry, media *models.MediaMetadata) {
	switch next.Status {
	case models.StatusCompleted:
		if !old.IsCompleted() && media.TotalUnits > 0 {
			next.Progress.Units = media.TotalUnits
		}
	case models.StatusPlanToRead:
		next.Progress.Units = 0
		next.Progress.Redo = 0
	}
}

func (paginated) Validate(e *models.UserMediaEntry, media *models.MediaMetadata) error {
	p := e.Progress
	if p.Units < 0 {
		return fmt.Errorf("%w: negative units %d", ErrInvalidProgress, p.Units)
	}
	if media.TotalUnits > 0 && p.Units > media.TotalUnits {
		return fmt.Errorf("%w: units %d exceed total %d", ErrInvalidProgress, p.Units, media.TotalUnits)
	}
	if p.Redo < 0 || p.Redo > maxRedo {
		return fmt.Errorf("%w: redo %d out of range 0..%d", ErrInvalidProgress, p.Redo, maxRedo)
	}
	return nil
}
