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

// playtime handles games. Units are minutes played and count as-is; games
// have no redo concept.
type playtime struct{}

func (playtime) SpecificTotal(e *models.UserMediaEntry, _ *models.MediaMetadata) int64 {
	return int64(e.Progress.Units)
}

func (playtime) UnitWeight(_ *models.MediaMetadata) decimal.Decimal {
	return decimal.NewFromInt(1)
}

func (playtime) Redo(_ *models.UserMediaEntry) int64 {
	return 0
}

func (playtime) Normalize(_, next *models.UserMediaEntry, _ *models.MediaMetadata) {
	next.Progress.Redo = 0
	if next.Status == models.StatusPlanToPlay {
		next.Progress.Units = 0
	}
}

func (playtime) Validate(e *models.UserMediaEntry, _ *models.MediaMetadata) error {
	if e.Progress.Units < 0 || e.Progress.Units > maxPlaytimeMinutes {
		return fmt.Errorf("%w: playtime %d out of range 0..%d", ErrInvalidProgress, e.Progress.Units, maxPlaytimeMinutes)
	}
	return nil
}
