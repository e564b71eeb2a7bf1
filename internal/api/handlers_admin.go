// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediashelf/internal/audit"
	"github.com/tomtom215/mediashelf/internal/models"
)

// RebuildUserStats re-derives a user's aggregate rows from their entries.
//
// @Summary Rebuild a user's stats
// @Tags Admin
// @Produce json
// @Param userID path string true "User ID"
// @Param category query string false "Media category"
// @Success 200 {object} models.APIResponse{data=[]models.AggregatedStats}
// @Router /admin/stats/rebuild/{userID} [post]
func (h *Handler) RebuildUserStats(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.entries.RebuildUserStats(r.Context(), req.UserID, category)
	h.audit.RecordRequest(r, audit.EventTypeUserRebuild, &audit.Target{ID: req.UserID, Type: "user"}, err, map[string]interface{}{
		"category": categoryLabel(category),
		"rows":     len(rows),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, start, false)
}

// RebuildPlatformStats re-derives the platform rows from every entry.
func (h *Handler) RebuildPlatformStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category, err := categoryQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	rows, err := h.entries.RebuildPlatformStats(r.Context(), category)
	h.audit.RecordRequest(r, audit.EventTypePlatformRebuild, categoryTarget(category), err, map[string]interface{}{
		"rows": len(rows),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, rows, start, false)
}

// AuditEventsResponse is a page of audit events.
type AuditEventsResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
}

// AuditEvents lists recorded operator actions, newest first.
//
// @Summary List audit events
// @Tags Admin
// @Produce json
// @Param type query string false "Event type (repeatable)"
// @Param outcome query string false "success or failure"
// @Param target_type query string false "user, media or category"
// @Param target_id query string false "Target ID"
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=AuditEventsResponse}
// @Failure 409 {object} models.APIResponse
// @Router /admin/audit [get]
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	events, total, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respondSuccess(w, http.StatusOK, AuditEventsResponse{Events: events, Total: total}, start, false)
}

func auditFilterFromQuery(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()
	filter := audit.DefaultQueryFilter()

	for _, t := range q["type"] {
		eventType := audit.EventType(t)
		if !audit.IsKnownType(eventType) {
			return filter, fmt.Errorf("unknown audit event type %q", t)
		}
		filter.Types = append(filter.Types, eventType)
	}
	switch outcome := q.Get("outcome"); outcome {
	case "":
	case string(audit.OutcomeSuccess), string(audit.OutcomeFailure):
		filter.Outcomes = []audit.Outcome{audit.Outcome(outcome)}
	default:
		return filter, fmt.Errorf("outcome must be success or failure")
	}
	filter.TargetType = q.Get("target_type")
	filter.TargetID = q.Get("target_id")

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > audit.MaxQueryLimit {
			return filter, fmt.Errorf("limit must be between 1 and %d", audit.MaxQueryLimit)
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}

// categoryTarget names the scope of a category-wide operation. A nil
// category means every category.
func categoryTarget(category *models.Category) *audit.Target {
	return &audit.Target{ID: categoryLabel(category), Type: "category"}
}

func categoryLabel(category *models.Category) string {
	if category == nil {
		return "*"
	}
	return string(*category)
}
