// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata, so every request struct is parsed a single time per process.
// Field names in messages are the JSON names of the fields, so a client sees
// "labels must be at least 0" rather than the Go field name.
//
// # Custom tags
//
//   - media_category: one of the supported categories (anime, tv, movies, books, manga, games)
//   - activity_month: a YYYY-MM activity bucket
//
// # Usage
//
//	type ActivityRequest struct {
//	    Month string `validate:"required,activity_month"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
