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

// episodic handles series and anime. Specific units are episodes: those
// watched up to the current position plus every re-watched season weighted
// by its episode count. Each episode is worth the media's episode duration.
type episodic struct{}

func (episodic) SpecificTotal(e *models.UserMediaEntry, media *models.MediaMetadata) int64 {
	return int64(watchedEpisodes(e.Progress, media.Seasons) + rewatchedEpisodes(e.Progress.RedoSeasons, media.Seasons))
}

func (episodic) UnitWeight(media *models.MediaMetadata) decimal.Decimal {
	return decimal.NewFromInt(int64(media.Duration))
}

func (episodic) Redo(e *models.UserMediaEntry) int64 {
	var total int64
	for _, n := range e.Progress.RedoSeasons {
		total += int64(n)
	}
	return total
}

func (episodic) Normalize(old, next *models.UserMediaEntry, media *models.MediaMetadata) {
	next.Progress.RedoSeasons = resizeRedo(next.Progress.RedoSeasons, len(media.Seasons))

	switch next.Status {
	case models.StatusCompleted:
		if old.IsCompleted() {
			return
		}
		if season, episodes, ok := lastSeason(media.Seasons); ok {
			next.Progress.Season = season
			next.Progress.Episode = episodes
		}
	case models.StatusPlanToWatch:
		next.Progress.Season = 1
		next.Progress.Episode = 0
	}
	if next.Progress.Season == 0 && len(media.Seasons) > 0 {
		next.Progress.Season = 1
	}
}

func (episodic) Validate(e *models.UserMediaEntry, media *models.MediaMetadata) error {
	p := e.Progress
	if len(media.Seasons) == 0 {
		if p.Season > 1 || p.Episode > 0 {
			return fmt.Errorf("%w: media %s has no seasons", ErrInvalidProgress, media.ID)
		}
		return nil
	}
	episodes, ok := seasonAt(media.Seasons, p.Season-1)
	if !ok {
		return fmt.Errorf("%w: season %d out of range 1..%d", ErrInvalidProgress, p.Season, len(media.Seasons))
	}
	if p.Episode < 0 || p.Episode > episodes {
		return fmt.Errorf("%w: episode %d out of range 0..%d", ErrInvalidProgress, p.Episode, episodes)
	}
	if len(p.RedoSeasons) > len(media.Seasons) {
		return fmt.Errorf("%w: %d redo counters for %d seasons", ErrInvalidProgress, len(p.RedoSeasons), len(media.Seasons))
	}
	for i, n := range p.RedoSeasons {
		if n < 0 || n > maxRedo {
			return fmt.Errorf("%w: season %d redo %d out of range 0..%d", ErrInvalidProgress, i+1, n, maxRedo)
		}
	}
	return nil
}

// watchedEpisodes counts the episodes of every season before the current
// one plus the episodes watched in the current season.
func watchedEpisodes(p models.Progress, seasons []int) int {
	total := 0
	for i := 0; i < p.Season-1 && i < len(seasons); i++ {
		total += seasons[i]
	}
	return total + p.Episode
}

// rewatchedEpisodes weights each season's redo counter by its episode count.
func rewatchedEpisodes(redo, seasons []int) int {
	total := 0
	for i, n := range redo {
		if eps, ok := seasonAt(seasons, i); ok {
			total += n * eps
		}
	}
	return total
}

// seasonAt is a bounds-checked season lookup. Negative indexes find nothing.
func seasonAt(seasons []int, index int) (int, bool) {
	if index < 0 || index >= len(seasons) {
		return 0, false
	}
	return seasons[index], true
}

// lastSeason returns the 1-based number and episode count of the last
// season by catalog position.
func lastSeason(seasons []int) (season, episodes int, ok bool) {
	if len(seasons) == 0 {
		return 0, 0, false
	}
	return len(seasons), seasons[len(seasons)-1], true
}

// resizeRedo pads or truncates per-season redo counters to the season count.
func resizeRedo(redo []int, seasons int) []int {
	if len(redo) == seasons {
		return redo
	}
	out := make([]int, seasons)
	copy(out, redo)
	return out
}
