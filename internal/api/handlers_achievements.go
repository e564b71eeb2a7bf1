// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediashelf/internal/audit"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/models"
)

// UserAchievements returns the achievement catalog with the user's progress
// per tier and the highest completed tier of each achievement.
//
// @Summary Get a user's achievements
// @Tags Achievements
// @Produce json
// @Param userID path string true "User ID"
// @Param category query string false "Media category"
// @Success 200 {object} models.APIResponse{data=[]models.AchievementView}
// @Router /users/{userID}/achievements [get]
func (h *Handler) UserAchievements(w http.ResponseWriter, r *http.Request) {
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

	views, cached, err := h.cache.UserAchievements(req.UserID, category, func() ([]models.AchievementView, error) {
		return h.achievements.UserAchievements(r.Context(), req.UserID, category)
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, views, start, cached)
}

// RecomputeAchievements runs a batch recomputation pass on demand.
//
// @Summary Recompute every achievement tier
// @Description Evaluates every tier for every user. Tier failures are reported and do not abort the pass.
// @Tags Admin
// @Produce json
// @Param category query string false "Limit the pass to one category"
// @Success 200 {object} models.APIResponse{data=achievement.PassReport}
// @Router /admin/achievements/recompute [post]
func (h *Handler) RecomputeAchievements(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category, err := categoryQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	report, err := h.achievements.RecomputeAll(r.Context(), category)
	h.cache.InvalidateAchievements()
	if err != nil {
		h.audit.RecordRequest(r, audit.EventTypeRecompute, categoryTarget(category), err, nil)
		writeServiceError(w, r, err)
		return
	}
	h.audit.RecordRequest(r, audit.EventTypeRecompute, categoryTarget(category), nil, map[string]interface{}{
		"tiers":        report.Tiers,
		"users_scored": report.UsersScored,
		"failures":     len(report.Failures),
	})

	logging.Ctx(r.Context()).Info().
		Int("tiers", report.Tiers).
		Int("failures", len(report.Failures)).
		Dur("duration", report.Duration).
		Msg("On-demand achievement recompute finished")
	respondSuccess(w, http.StatusOK, report, start, false)
}
