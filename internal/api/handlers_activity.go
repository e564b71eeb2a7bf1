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
)

// Activity lists a user's activity log for one month.
//
// @Summary List activity for a month
// @Tags Activity
// @Produce json
// @Param userID path string true "User ID"
// @Param month query string true "Month bucket (YYYY-MM)"
// @Success 200 {object} models.APIResponse{data=[]models.ActivityLogEntry}
// @Router /users/{userID}/activity [get]
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := activityRequest{
		UserID: chi.URLParam(r, "userID"),
		Month:  r.URL.Query().Get("month"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return
	}

	rows, err := h.db.ListActivity(r.Context(), req.UserID, req.Month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, start, false)
}

// DeleteActivity deletes a user's activity history for one media item.
// Aggregate stats and achievements are not affected.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, category, mediaID, ok := entryTarget(w, r)
	if !ok {
		return
	}

	deleted, err := h.db.DeleteActivity(r.Context(), userID, category, mediaID)
	h.audit.RecordRequest(r, audit.EventTypeActivityDeleted, &audit.Target{ID: userID, Type: "user"}, err, map[string]interface{}{
		"category": category,
		"media_id": mediaID,
		"deleted":  deleted,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]int64{"deleted": deleted}, start, false)
}
