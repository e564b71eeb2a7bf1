// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

// Package audit records operator actions that change shared state outside
// the normal list flow.
//
// Recorded event types:
//   - admin.achievements_recompute: on-demand batch recomputation
//   - admin.user_stats_rebuild, admin.platform_stats_rebuild: stats rebuilds
//   - media.registered, media.refreshed: metadata changes
//   - activity.deleted: activity history removal
//
// List mutations are not audited; they already leave a trail in the
// activity log.
//
// # Architecture
//
//	Logger.Log() -> buffered chan -> async writer -> Store (DuckDB)
//
// Log never blocks. When the buffer is full the event is dropped, counted in
// audit_events_total{outcome="dropped"} and logged at warn level. Close
// drains whatever is still queued.
//
// Retention is enforced by Prune, which the supervisor runs on
// AUDIT_CLEANUP_INTERVAL.
//
// # Usage
//
//	store := audit.NewDuckDBStore(db.Conn())
//	if err := store.CreateTable(ctx); err != nil { ... }
//	auditLog := audit.NewLogger(store, &cfg.Audit) // nil when disabled
//	defer auditLog.Close()
//
//	auditLog.RecordRequest(r, audit.EventTypeRecompute, nil, err, map[string]interface{}{"tiers": 12})
//
// A nil *Logger is valid: Log and RecordRequest are no-ops and Query returns
// ErrDisabled.
package audit
