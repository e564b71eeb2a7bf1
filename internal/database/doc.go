// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

// Package database provides the DuckDB-backed persistence layer for Mediashelf.
//
// # Overview
//
// All state lives in one DuckDB database accessed through database/sql and
// github.com/duckdb/duckdb-go/v2:
//
//   - media, media_classifications: read-only catalog metadata
//   - user_media_entries: one row per (user, category, media)
//   - aggregated_stats: one row per (user, category) plus a platform row
//     per category (owner_id = '')
//   - activity_log: additive per (user, media, month) activity
//   - achievements, achievement_tiers: catalog managed by the seeder
//   - user_achievement_progress: per (user, tier) evaluation results
//
// # Files
//
//   - database.go: lifecycle (New, Close, Ping, Checkpoint)
//   - database_connection.go: pool configuration and error classification
//   - schema.go, migrations.go: table creation and versioned migrations
//   - tx.go: WithTx with write-conflict replay
//   - stats.go: Aggregate Stats Store (ApplyDelta, GetStats, ListStats)
//   - entries.go, media.go, activity.go: point reads and writes
//   - criteria.go: set-based achievement criteria queries
//   - progress.go: progress upserts, regression reset and highest tier
//   - achievements.go: catalog persistence used by the seeder
//
// # Transactions
//
// DuckDB uses optimistic concurrency control. Two transactions writing the
// same aggregate row conflict and the loser is replayed by WithTx, so
// concurrent deltas on one row compose additively without a global lock.
// Exact values (time spent, rating sums) are stored as DECIMAL(18,4) and
// exchanged as strings with github.com/shopspring/decimal.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.WithTx(ctx, func(tx *database.Tx) error {
//	    _, err := tx.ApplyDelta(ctx, models.UserScope("u1", models.CategorySeries), d, now)
//	    return err
//	})
package database
