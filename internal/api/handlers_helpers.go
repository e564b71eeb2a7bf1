// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mediashelf/internal/audit"
	"github.com/tomtom215/mediashelf/internal/catalog"
	"github.com/tomtom215/mediashelf/internal/entries"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/models"
	"github.com/tomtom215/mediashelf/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Error codes
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeRemoteDisabled   = "REMOTE_CATALOG_DISABLED"
	ErrCodeAuditDisabled    = "AUDIT_DISABLED"
	ErrCodeServiceNotReady  = "SERVICE_UNAVAILABLE"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError sends a prepared APIError with 400.
func respondAPIError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entries.ErrMediaNotFound), errors.Is(err, catalog.ErrMediaNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Media not found", nil)
	case errors.Is(err, entries.ErrNotInList):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Media is not in the list", nil)
	case errors.Is(err, entries.ErrAlreadyInList):
		respondError(w, http.StatusConflict, ErrCodeConflict, "Media is already in the list", nil)
	case errors.Is(err, catalog.ErrRemoteDisabled):
		respondError(w, http.StatusConflict, ErrCodeRemoteDisabled, "Remote catalog is disabled", nil)
	case errors.Is(err, audit.ErrDisabled):
		respondError(w, http.StatusConflict, ErrCodeAuditDisabled, "Audit logging is disabled", nil)
	case entries.IsValidation(err), errors.Is(err, catalog.ErrInvalidMedia):
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out", err)
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("Request failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}

// validateRequest validates a struct using go-playground/validator.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// errBodyTooLarge is returned by decodeJSON when the body exceeds maxBodyBytes.
var errBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)

// decodeJSON reads a JSON body into v. Only a body of zero bytes leaves v
// untouched; anything else must be exactly one JSON value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: unexpected data after value")
	}
	return nil
}

// respondDecodeError writes the response for a decodeJSON failure.
func respondDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, err.Error(), nil)
		return
	}
	respondError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
}

// categoryParam reads the {category} path segment.
func categoryParam(r *http.Request) (models.Category, error) {
	return models.ParseCategory(chi.URLParam(r, "category"))
}

// categoryQuery reads the optional ?category= filter. Nil means all.
func categoryQuery(r *http.Request) (*models.Category, error) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return nil, nil
	}
	c, err := models.ParseCategory(raw)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// entryTarget reads and checks the user, category and media path segments.
func entryTarget(w http.ResponseWriter, r *http.Request) (userID string, category models.Category, mediaID string, ok bool) {
	req := entryPathRequest{
		UserID:   chi.URLParam(r, "userID"),
		Category: strings.ToLower(chi.URLParam(r, "category")),
		MediaID:  chi.URLParam(r, "mediaID"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return "", "", "", false
	}
	return req.UserID, models.Category(req.Category), req.MediaID, true
}
