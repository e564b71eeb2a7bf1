// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the CREATE TABLE statements.
//
// DuckDB foreign keys block updates of referenced rows, so relationships
// are kept by the write paths instead (see DeleteAchievement).
func getTableCreationQueries() []string {
	return []string{
		// Read-only catalog metadata. seasons holds the per-season episode
		// counts as a JSON array.
		`CREATE TABLE IF NOT EXISTS media (
			category TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0,
			seasons TEXT NOT NULL DEFAULT '[]',
			total_units INTEGER NOT NULL DEFAULT 0,
			language TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT 'local',
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (category, id)
		);`,

		`CREATE TABLE IF NOT EXISTS media_classifications (
			category TEXT NOT NULL,
			media_id TEXT NOT NULL,
			dimension TEXT NOT NULL,
			value TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (category, media_id, dimension, value, role)
		);`,

		// redo_total mirrors progress redo counters (movie/paginated redo
		// plus the per-season sum) so criteria can filter without parsing JSON.
		`CREATE TABLE IF NOT EXISTS user_media_entries (
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			media_id TEXT NOT NULL,
			status TEXT NOT NULL,
			rating DECIMAL(6,2),
			comment TEXT,
			favorite BOOLEAN NOT NULL DEFAULT false,
			labels INTEGER NOT NULL DEFAULT 0,
			season INTEGER NOT NULL DEFAULT 0,
			episode INTEGER NOT NULL DEFAULT 0,
			units INTEGER NOT NULL DEFAULT 0,
			redo INTEGER NOT NULL DEFAULT 0,
			redo_seasons TEXT NOT NULL DEFAULT '[]',
			redo_total BIGINT NOT NULL DEFAULT 0,
			added_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, category, media_id)
		);`,

		// owner_id is '' for the platform-wide row of a category.
		`CREATE TABLE IF NOT EXISTS aggregated_stats (
			owner_id TEXT NOT NULL,
			category TEXT NOT NULL,
			total_entries BIGINT NOT NULL DEFAULT 0,
			status_counts TEXT NOT NULL DEFAULT '{}',
			time_spent DECIMAL(18,4) NOT NULL DEFAULT 0,
			total_redo BIGINT NOT NULL DEFAULT 0,
			total_specific BIGINT NOT NULL DEFAULT 0,
			entries_rated BIGINT NOT NULL DEFAULT 0,
			sum_entries_rated DECIMAL(18,4) NOT NULL DEFAULT 0,
			entries_commented BIGINT NOT NULL DEFAULT 0,
			entries_favorites BIGINT NOT NULL DEFAULT 0,
			total_labels BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (owner_id, category)
		);`,

		`CREATE TABLE IF NOT EXISTS activity_log (
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			media_id TEXT NOT NULL,
			bucket TEXT NOT NULL,
			specific_gained BIGINT NOT NULL DEFAULT 0,
			is_completed BOOLEAN NOT NULL DEFAULT false,
			is_redo BOOLEAN NOT NULL DEFAULT false,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, category, media_id, bucket)
		);`,

		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			code_name TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			value BIGINT,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (category, code_name)
		);`,

		// criteria is the JSON encoding of models.TierCriteria.
		`CREATE TABLE IF NOT EXISTS achievement_tiers (
			id TEXT PRIMARY KEY,
			achievement_id TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			criteria TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (achievement_id, difficulty)
		);`,

		`CREATE TABLE IF NOT EXISTS user_achievement_progress (
			user_id TEXT NOT NULL,
			tier_id TEXT NOT NULL,
			count BIGINT NOT NULL DEFAULT 0,
			progress DOUBLE NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT false,
			completed_at TIMESTAMPTZ,
			last_calculated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, tier_id)
		);`,
	}
}

// createIndexes creates secondary indexes used by the criteria queries.
// Only columns that are never updated in place are indexed.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_entries_category ON user_media_entries(category);`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_lookup ON media_classifications(category, dimension, value);`,
		`CREATE INDEX IF NOT EXISTS idx_tiers_achievement ON achievement_tiers(achievement_id);`,
		`CREATE INDEX IF NOT EXISTS idx_progress_tier ON user_achievement_progress(tier_id);`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}
	return nil
}
