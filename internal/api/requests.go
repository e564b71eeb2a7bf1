// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"github.com/shopspring/decimal"

	"github.com/tomtom215/mediashelf/internal/entries"
	"github.com/tomtom215/mediashelf/internal/models"
)

// Request structs carry go-playground/validator tags. Shape checks live
// here; rules that depend on the category or on stored state (allowed
// statuses, rating precision, progress within the media) are enforced by the
// entries service.

type entryPathRequest struct {
	UserID   string `json:"user_id" validate:"required,max=128"`
	Category string `json:"category" validate:"required,media_category"`
	MediaID  string `json:"media_id" validate:"required,max=128"`
}

type userPathRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

type progressRequest struct {
	Season      int   `json:"season" validate:"min=0,max=1000"`
	Episode     int   `json:"episode" validate:"min=0,max=100000"`
	Units       int   `json:"units" validate:"min=0,max=100000000"`
	Redo        int   `json:"redo" validate:"min=0,max=10000"`
	RedoSeasons []int `json:"redo_seasons" validate:"omitempty,max=1000,dive,min=0,max=10000"`
}

func (p *progressRequest) toModel() models.Progress {
	if p == nil {
		return models.Progress{}
	}
	return models.Progress{
		Season:      p.Season,
		Episode:     p.Episode,
		Units:       p.Units,
		Redo:        p.Redo,
		RedoSeasons: append([]int(nil), p.RedoSeasons...),
	}
}

// AddEntryRequest is the body of POST /users/{userID}/entries/{category}/{mediaID}.
type AddEntryRequest struct {
	Status   string           `json:"status" validate:"required,max=32"`
	Rating   *decimal.Decimal `json:"rating,omitempty"`
	Comment  *string          `json:"comment,omitempty" validate:"omitempty,max=5000"`
	Favorite bool             `json:"favorite"`
	Labels   int              `json:"labels" validate:"min=0,max=10000"`
	Progress *progressRequest `json:"progress,omitempty"`
}

func (req *AddEntryRequest) toInput() entries.Input {
	return entries.Input{
		Status:   models.Status(req.Status),
		Rating:   req.Rating,
		Comment:  req.Comment,
		Favorite: req.Favorite,
		Labels:   req.Labels,
		Progress: req.Progress.toModel(),
	}
}

// UpdateEntryRequest is the body of PATCH /users/{userID}/entries/{category}/{mediaID}.
// Absent fields are unchanged; clear_rating and clear_comment remove a value.
type UpdateEntryRequest struct {
	Status       *string          `json:"status,omitempty" validate:"omitempty,max=32"`
	Rating       *decimal.Decimal `json:"rating,omitempty"`
	Comment      *string          `json:"comment,omitempty" validate:"omitempty,max=5000"`
	Favorite     *bool            `json:"favorite,omitempty"`
	Labels       *int             `json:"labels,omitempty" validate:"omitempty,min=0,max=10000"`
	Progress     *progressRequest `json:"progress,omitempty"`
	ClearRating  bool             `json:"clear_rating"`
	ClearComment bool             `json:"clear_comment"`
}

func (req *UpdateEntryRequest) toPatch() entries.Patch {
	patch := entries.Patch{
		Rating:       req.Rating,
		Comment:      req.Comment,
		Favorite:     req.Favorite,
		Labels:       req.Labels,
		ClearRating:  req.ClearRating,
		ClearComment: req.ClearComment,
	}
	if req.Status != nil {
		s := models.Status(*req.Status)
		patch.Status = &s
	}
	if req.Progress != nil {
		p := req.Progress.toModel()
		patch.Progress = &p
	}
	return patch
}

// MediaRequest is the body of PUT /media/{category}/{mediaID}.
type MediaRequest struct {
	Title           string                  `json:"title" validate:"max=500"`
	Duration        int                     `json:"duration" validate:"min=0,max=100000"`
	Seasons         []int                   `json:"seasons,omitempty" validate:"omitempty,max=1000,dive,min=0,max=100000"`
	TotalUnits      int                     `json:"total_units" validate:"min=0,max=100000000"`
	Language        string                  `json:"language,omitempty" validate:"omitempty,max=35"`
	Classifications []models.Classification `json:"classifications,omitempty" validate:"omitempty,max=500,dive"`
}

func (req *MediaRequest) toModel(category models.Category, mediaID string) *models.MediaMetadata {
	return &models.MediaMetadata{
		ID:              mediaID,
		Category:        category,
		Title:           req.Title,
		Duration:        req.Duration,
		Seasons:         append([]int(nil), req.Seasons...),
		TotalUnits:      req.TotalUnits,
		Language:        req.Language,
		Classifications: append([]models.Classification(nil), req.Classifications...),
	}
}

type activityRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	Month  string `json:"month" validate:"required,activity_month"`
}
