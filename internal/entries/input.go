// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/mediashelf/internal/models"
)

var maxRating = decimal.NewFromInt(10)

// Input is the initial state of a new list entry.
type Input struct {
	Status   models.Status
	Rating   *decimal.Decimal
	Comment  *string
	Favorite bool
	Labels   int
	Progress models.Progress
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Status   *models.Status
	Rating   *decimal.Decimal
	Comment  *string
	Favorite *bool
	Labels   *int
	Progress *models.Progress

	ClearRating  bool
	ClearComment bool
}

// IsEmpty reports whether the patch touches no field.
func (p *Patch) IsEmpty() bool {
	return p.Status == nil && p.Rating == nil && p.Comment == nil && p.Favorite == nil &&
		p.Labels == nil && p.Progress == nil && !p.ClearRating && !p.ClearComment
}

func (p *Patch) applyTo(e *models.UserMediaEntry) {
	if p.Status != nil {
		e.Status = *p.Status
	}
	switch {
	case p.ClearRating:
		e.Rating = nil
	case p.Rating != nil:
		r := *p.Rating
		e.Rating = &r
	}
	switch {
	case p.ClearComment:
		e.Comment = nil
	case p.Comment != nil:
		c := *p.Comment
		e.Comment = &c
	}
	if p.Favorite != nil {
		e.Favorite = *p.Favorite
	}
	if p.Labels != nil {
		e.Labels = *p.Labels
	}
	if p.Progress != nil {
		e.Progress = *p.Progress
		if p.Progress.RedoSeasons != nil {
			e.Progress.RedoSeasons = append([]int(nil), p.Progress.RedoSeasons...)
		}
	}
}

func (in *Input) entry(userID string, category models.Category, mediaID string) *models.UserMediaEntry {
	e := &models.UserMediaEntry{
		UserID:   userID,
		MediaID:  mediaID,
		Category: category,
		Status:   in.Status,
		Favorite: in.Favorite,
		Labels:   in.Labels,
		Progress: in.Progress,
	}
	if in.Rating != nil {
		r := *in.Rating
		e.Rating = &r
	}
	if in.Comment != nil {
		c := *in.Comment
		e.Comment = &c
	}
	if in.Progress.RedoSeasons != nil {
		e.Progress.RedoSeasons = append([]int(nil), in.Progress.RedoSeasons...)
	}
	return e
}

// checkFields validates what the category calculators do not.
func checkFields(e *models.UserMediaEntry) error {
	if !e.Category.AllowsStatus(e.Status) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidStatus, e.Status, e.Category)
	}
	if e.Rating != nil {
		r := *e.Rating
		if r.IsNegative() || r.GreaterThan(maxRating) || !r.Equal(r.Round(2)) {
			return fmt.Errorf("%w: %s", ErrInvalidRating, r)
		}
	}
	if e.Labels < 0 {
		return ErrInvalidLabels
	}
	return nil
}
