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

// movie counts one watch for a completed entry plus its re-watches, each
// worth the movie runtime.
type movie struct{}

func (movie) SpecificTotal(e *models.UserMediaEntry, _ *models.MediaMetadata) int64 {
	watches := int64(e.Progress.Redo)
	if e.IsCompleted() {
		watches++
	}
	return watches
}

func (movie) UnitWeight(media *models.MediaMetadata) decimal.Decimal {
	return decimal.NewFromInt(int64(media.Duration))
}

func (movie) Redo(e *models.UserMediaEntry) int64 {
	return int64(e.Progress.Redo)
}

func (movie) Normalize(_, next *models.UserMediaEntry, _ *models.MediaMetadata) {
	if next.Status == models.StatusPlanToWatch {
		next.Progress.Redo = 0
	}
}

func (movie) Validate(e *models.UserMediaEntry, _ *models.MediaMetadata) error {
	if e.Progress.Redo < 0 || e.Progress.Redo > maxRedo {
		return fmt.Errorf("%w: redo %d out of range 0..%d", ErrInvalidProgress, e.Progress.Redo, maxRedo)
	}
	if e.Progress.Redo > 0 && !e.IsCompleted() {
		return fmt.Errorf("%w: redo requires completed status", ErrInvalidProgress)
	}
	return nil
}
