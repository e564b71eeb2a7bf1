// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"net/http"
	"time"
)

// AddEntry adds a media item to a user's list.
//
// @Summary Add a list entry
// @Description Creates the entry and returns the entry, the stats delta and the updated aggregate rows.
// @Tags Entries
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param category path string true "Media category"
// @Param mediaID path string true "Media ID"
// @Param request body AddEntryRequest true "Initial entry state"
// @Success 201 {object} models.APIResponse{data=entries.Change}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /users/{userID}/entries/{category}/{mediaID} [post]
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, category, mediaID, ok := entryTarget(w, r)
	if !ok {
		return
	}
	var req AddEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return
	}

	change, err := h.entries.Add(r.Context(), userID, category, mediaID, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, change, start, false)
}

// UpdateEntry applies a partial update to a list entry.
//
// @Summary Update a list entry
// @Tags Entries
// @Accept json
// @Produce json
// @Param request body UpdateEntryRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=entries.Change}
// @Router /users/{userID}/entries/{category}/{mediaID} [patch]
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, category, mediaID, ok := entryTarget(w, r)
	if !ok {
		return
	}
	var req UpdateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, apiErr)
		return
	}

	change, err := h.entries.Update(r.Context(), userID, category, mediaID, req.toPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, change, start, false)
}

// RemoveEntry removes a media item from a user's list.
//
// @Summary Remove a list entry
// @Tags Entries
// @Produce json
// @Success 200 {object} models.APIResponse{data=entries.Change}
// @Router /users/{userID}/entries/{category}/{mediaID} [delete]
func (h *Handler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, category, mediaID, ok := entryTarget(w, r)
	if !ok {
		return
	}

	change, err := h.entries.Remove(r.Context(), userID, category, mediaID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, change, start, false)
}
