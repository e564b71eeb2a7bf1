// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"errors"

	"github.com/tomtom215/mediashelf/internal/delta"
)

// Validation errors. They are raised before anything is written and are
// never retried.
var (
	ErrMediaNotFound = errors.New("media not found")
	ErrAlreadyInList = errors.New("media already in list")
	ErrNotInList     = errors.New("media not in list")
	ErrInvalidStatus = errors.New("invalid status for category")
	ErrInvalidRating = errors.New("rating must be between 0 and 10 with at most two decimals")
	ErrInvalidLabels = errors.New("labels must not be negative")
	ErrEmptyPatch    = errors.New("update changes nothing")
	ErrInvalidUser   = errors.New("user id is required")
)

// IsValidation reports whether err is a caller mistake rather than a
// storage failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrMediaNotFound, ErrAlreadyInList, ErrNotInList, ErrInvalidStatus,
		ErrInvalidRating, ErrInvalidLabels, ErrEmptyPatch, ErrInvalidUser, delta.ErrInvalidProgress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
