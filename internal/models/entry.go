// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Progress is the category-specific consumption state of an entry.
type Progress struct {
	// Season and Episode locate the last watched episode of episodic media.
	// Season is 1-based; Episode is the count watched within that season.
	Season  int `json:"season,omitempty"`
	Episode int `json:"episode,omitempty"`

	// Units is pages read (books), chapters read (manga) or playtime in
	// minutes (games).
	Units int `json:"units,omitempty"`

	// Redo counts full re-consumptions for movies, books and manga.
	Redo int `json:"redo,omitempty"`

	// RedoSeasons counts re-watches per season for episodic media.
	RedoSeasons []int `json:"redo_seasons,omitempty"`
}

// UserMediaEntry is a media item in a user's list. At most one entry exists
// per (user, media); its existence is the only signal of list membership.
type UserMediaEntry struct {
	UserID   string   `json:"user_id"`
	MediaID  string   `json:"media_id"`
	Category Category `json:"category"`

	Status   Status           `json:"status"`
	Rating   *decimal.Decimal `json:"rating,omitempty"`
	Comment  *string          `json:"comment,omitempty"`
	Favorite bool             `json:"favorite"`
	Labels   int              `json:"labels"`
	Progress Progress         `json:"progress"`

	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCompleted reports whether the entry is in the completed status.
func (e *UserMediaEntry) IsCompleted() bool {
	return e != nil && e.Status == StatusCompleted
}

// HasRating reports whether the entry carries a rating.
func (e *UserMediaEntry) HasRating() bool {
	return e != nil && e.Rating != nil
}

// HasComment reports whether the entry carries a non-empty comment.
func (e *UserMediaEntry) HasComment() bool {
	return e != nil && e.Comment != nil && *e.Comment != ""
}

// Clone returns a deep copy of the entry.
func (e *UserMediaEntry) Clone() *UserMediaEntry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Rating != nil {
		r := *e.Rating
		c.Rating = &r
	}
	if e.Comment != nil {
		s := *e.Comment
		c.Comment = &s
	}
	if e.Progress.RedoSeasons != nil {
		c.Progress.RedoSeasons = append([]int(nil), e.Progress.RedoSeasons...)
	}
	return &c
}
