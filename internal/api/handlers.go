// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package api

import (
	"time"

	"github.com/tomtom215/mediashelf/internal/achievement"
	"github.com/tomtom215/mediashelf/internal/audit"
	"github.com/tomtom215/mediashelf/internal/cache"
	"github.com/tomtom215/mediashelf/internal/catalog"
	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/entries"
)

// RemoteCatalog reports the state of the remote metadata client.
type RemoteCatalog interface {
	State() string
}

// Handler holds the dependencies of every HTTP handler.
//
// Handler files:
//   - handlers_stats.go: aggregate stats reads
//   - handlers_achievements.go: achievement catalog with progress, batch recompute
//   - handlers_entries.go: list mutations
//   - handlers_activity.go: activity log
//   - handlers_media.go: media metadata
//   - handlers_admin.go: stats rebuild, audit trail
//   - handlers_health.go: health probes
type Handler struct {
	db           *database.DB
	entries      *entries.Service
	achievements *achievement.Updater
	media        *catalog.Resolver
	cache        *cache.ReadCache // nil disables caching
	remote       RemoteCatalog    // nil when the remote catalog is disabled
	audit        *audit.Logger    // nil disables the audit trail
	startTime    time.Time
}

// NewHandler creates the API handler. readCache may be nil.
//
// Example:
//
//	handler := api.NewHandler(db, entriesService, updater, resolver, readCache)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
func NewHandler(db *database.DB, entriesSvc *entries.Service, updater *achievement.Updater, resolver *catalog.Resolver, readCache *cache.ReadCache) *Handler {
	return &Handler{
		db:           db,
		entries:      entriesSvc,
		achievements: updater,
		media:        resolver,
		cache:        readCache,
		startTime:    time.Now(),
	}
}

// SetRemoteCatalog exposes the remote client state on the health endpoint.
func (h *Handler) SetRemoteCatalog(remote RemoteCatalog) {
	h.remote = remote
}

// SetAuditLogger enables the operator audit trail.
func (h *Handler) SetAuditLogger(l *audit.Logger) {
	h.audit = l
}
