// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediashelf/internal/audit"
	"github.com/tomtom215/mediashelf/internal/models"
)

type mediaPathRequest struct {
	Category string `json:"category" validate:"required,media_category"`
	MediaID  string `json:"media_id" validate:"required,max=128"`
}

func mediaTarget(w http.ResponseWriter, r *http.Request) (models.Category, string, bool) {
	req := mediaPathRequest{
		Category: strings.ToLower(chi.URLParam(r, "category")),
		MediaID:  chi.URLParam(r, "mediaID"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return "", "", false
	}
	return models.Category(req.Category), req.MediaID, true
}

func mediaAuditTarget(category models.Category, mediaID string) *audit.Target {
	return &audit.Target{ID: string(category) + "/" + mediaID, Type: "media"}
}

// GetMedia returns media metadata, fetching it from the remote catalog when
// it is not known locally and the remote is enabled.
//
// @Summary Get media metadata
// @Tags Media
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.MediaMetadata}
// @Failure 404 {object} models.APIResponse
// @Router /media/{category}/{mediaID} [get]
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category, mediaID, ok := mediaTarget(w, r)
	if !ok {
		return
	}

	media, err := h.media.Resolve(r.Context(), category, mediaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, media, start, false)
}

// PutMedia registers or replaces media metadata. Stats of users who already
// hold the media are re-measured against the new metadata.
//
// @Summary Register media metadata
// @Tags Media
// @Accept json
// @Produce json
// @Param request body MediaRequest true "Metadata"
// @Success 200 {object} models.APIResponse{data=models.MediaMetadata}
// @Router /media/{category}/{mediaID} [put]
func (h *Handler) PutMedia(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category, mediaID, ok := mediaTarget(w, r)
	if !ok {
		return
	}
	var req MediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return
	}

	media := req.toModel(category, mediaID)
	err := h.media.Register(r.Context(), media)
	h.audit.RecordRequest(r, audit.EventTypeMediaRegistered, mediaAuditTarget(category, mediaID), err, nil)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, media, start, false)
}

// RefreshMedia re-fetches metadata from the remote catalog.
func (h *Handler) RefreshMedia(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category, mediaID, ok := mediaTarget(w, r)
	if !ok {
		return
	}

	media, err := h.media.Refresh(r.Context(), category, mediaID)
	h.audit.RecordRequest(r, audit.EventTypeMediaRefreshed, mediaAuditTarget(category, mediaID), err, nil)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, media, start, false)
}
