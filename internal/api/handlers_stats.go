// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediashelf/internal/models"
)

// UserStats returns a user's aggregate stats rows.
//
// @Summary Get a user's aggregate stats
// @Description Returns one row per category, or the requested category only. Categories without entries are reported zeroed.
// @Tags Stats
// @Produce json
// @Param userID path string true "User ID"
// @Param category query string false "Media category"
// @Success 200 {object} models.APIResponse{data=[]models.AggregatedStats}
// @Failure 400 {object} models.APIResponse
// @Router /users/{userID}/stats [get]
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := userPathRequest{UserID: chi.URLParam(r, "userID")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return
	}
	category, err := categoryQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	rows, cached, err := h.cache.UserStats(req.UserID, category, func() ([]*models.AggregatedStats, error) {
		return h.db.ListStats(r.Context(), req.UserID, category)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, start, cached)
}

// PlatformStats returns the platform-wide aggregate stats rows.
//
// @Summary Get platform aggregate stats
// @Tags Stats
// @Produce json
// @Param category query string false "Media category"
// @Success 200 {object} models.APIResponse{data=[]models.AggregatedStats}
// @Router /platform/stats [get]
func (h *Handler) PlatformStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category, err := categoryQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	rows, cached, err := h.cache.PlatformStats(category, func() ([]*models.AggregatedStats, error) {
		return h.db.ListStats(r.Context(), "", category)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, start, cached)
}
