// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mediashelf/internal/models"
)

// LogActivity merges an activity record into its (user, media, bucket) row.
// Units add up and the completed/redo flags stick once set.
func (t *Tx) LogActivity(ctx context.Context, a models.ActivityLogEntry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO activity_log (
			user_id, category, media_id, bucket, specific_gained, is_completed, is_redo, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, media_id, bucket) DO UPDATE SET
			specific_gained = specific_gained + EXCLUDED.specific_gained,
			is_completed = is_completed OR EXCLUDED.is_completed,
			is_redo = is_redo OR EXCLUDED.is_redo,
			updated_at = EXCLUDED.updated_at`,
		a.UserID, string(a.Category), a.MediaID, a.Bucket, a.SpecificGained,
		a.IsCompleted, a.IsRedo, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// ListActivity returns a user's activity for one month bucket (YYYY-MM),
// most recently updated first.
func (db *DB) ListActivity(ctx context.Context, userID, bucket string) ([]models.ActivityLogEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, category, media_id, bucket, specific_gained, is_completed, is_redo, updated_at
		FROM activity_log
		WHERE user_id = ? AND bucket = ?
		ORDER BY updated_at DESC, category, media_id`,
		userID, bucket)
	if err != nil {
		recordQuery("SELECT", "activity_log", start, err)
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer closeWithLog(rows, "activity rows")

	entries := []models.ActivityLogEntry{}
	for rows.Next() {
		var a models.ActivityLogEntry
		var category string
		if err := rows.Scan(&a.UserID, &category, &a.MediaID, &a.Bucket, &a.SpecificGained,
			&a.IsCompleted, &a.IsRedo, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Category = models.Category(category)
		entries = append(entries, a)
	}
	err = rows.Err()
	recordQuery("SELECT", "activity_log", start, err)
	return entries, err
}

// DeleteActivity removes every bucket of a user's history for one media and
// returns the number of rows removed.
func (db *DB) DeleteActivity(ctx context.Context, userID string, category models.Category, mediaID string) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM activity_log WHERE user_id = ? AND category = ? AND media_id = ?`,
		userID, string(category), mediaID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete activity: %w", err)
	}
	return res.RowsAffected()
}
