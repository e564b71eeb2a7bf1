// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mediashelf/internal/models"
)

// Version is set at build time.
var Version = "dev"

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, remote catalog breaker state and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		CachedEntries:     h.cache.Len(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.remote != nil {
		health.RemoteCatalog = h.remote.State()
	}

	respondSuccess(w, http.StatusOK, health, start, false)
}

// HealthLive returns 200 if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now(), false)
}

// HealthReady returns 200 only when the database answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	if !dbConnected {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceNotReady, "Database is not reachable", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"ready":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now(), false)
}
