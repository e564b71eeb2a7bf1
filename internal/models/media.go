// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package models

import (
	"fmt"
	"strings"
)

// Category identifies a family of media items that share a list layout.
type Category string

// Supported media categories.
const (
	CategorySeries Category = "series"
	CategoryAnime  Category = "anime"
	CategoryMovies Category = "movies"
	CategoryBooks  Category = "books"
	CategoryGames  Category = "games"
	CategoryManga  Category = "manga"
)

// AllCategories returns every supported category in display order.
func AllCategories() []Category {
	return []Category{
		CategorySeries,
		CategoryAnime,
		CategoryMovies,
		CategoryBooks,
		CategoryGames,
		CategoryManga,
	}
}

// ParseCategory converts a path or query value to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown media category %q", s)
	}
	return c, nil
}

// Valid reports whether c is a supported category.
func (c Category) Valid() bool {
	switch c {
	case CategorySeries, CategoryAnime, CategoryMovies, CategoryBooks, CategoryGames, CategoryManga:
		return true
	}
	return false
}

// Status is the list state of an entry. Allowed values depend on the category.
type Status string

// Entry statuses across all categories.
const (
	StatusWatching    Status = "watching"
	StatusReading     Status = "reading"
	StatusPlaying     Status = "playing"
	StatusCompleted   Status = "completed"
	StatusOnHold      Status = "on_hold"
	StatusDropped     Status = "dropped"
	StatusMultiplayer Status = "multiplayer"
	StatusEndless     Status = "endless"
	StatusPlanToWatch Status = "plan_to_watch"
	StatusPlanToRead  Status = "plan_to_read"
	StatusPlanToPlay  Status = "plan_to_play"
)

// Statuses returns the status state machine of a category.
func (c Category) Statuses() []Status {
	switch c {
	case CategorySeries, CategoryAnime:
		return []Status{StatusWatching, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToWatch}
	case CategoryMovies:
		return []Status{StatusCompleted, StatusPlanToWatch}
	case CategoryBooks, CategoryManga:
		return []Status{StatusReading, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToRead}
	case CategoryGames:
		return []Status{StatusPlaying, StatusCompleted, StatusMultiplayer, StatusEndless, StatusDropped, StatusPlanToPlay}
	}
	return nil
}

// AllowsStatus reports whether s belongs to the category's state machine.
func (c Category) AllowsStatus(s Status) bool {
	for _, allowed := range c.Statuses() {
		if allowed == s {
			return true
		}
	}
	return false
}

// Dimension is a classification axis used by entity-specific achievements.
type Dimension string

// Classification dimensions.
const (
	DimensionGenre    Dimension = "genre"
	DimensionPerson   Dimension = "person"
	DimensionNetwork  Dimension = "network"
	DimensionLanguage Dimension = "language"
	DimensionDuration Dimension = "duration"
)

// Classification links a media item to a classification entity. Role is only
// meaningful for DimensionPerson (director, actor, author, developer, ...).
type Classification struct {
	Dimension Dimension `json:"dimension" validate:"required,oneof=genre person network"`
	Value     string    `json:"value" validate:"required,max=200"`
	Role      string    `json:"role,omitempty" validate:"max=50"`
}

// MediaMetadata is the read-only catalog information the engine needs about
// a media item.
type MediaMetadata struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Title    string   `json:"title"`

	// Duration is minutes per episode for episodic media and the runtime for
	// movies. Unused for paginated media and games.
	Duration int `json:"duration"`

	// Seasons holds the episode count of each season in catalog order.
	Seasons []int `json:"seasons,omitempty"`

	// TotalUnits is the page count of a book or chapter count of a manga.
	TotalUnits int `json:"total_units,omitempty"`

	Language        string           `json:"language,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
}

// TotalEpisodes returns the episode count summed over all seasons.
func (m *MediaMetadata) TotalEpisodes() int {
	total := 0
	for _, eps := range m.Seasons {
		total += eps
	}
	return total
}
