// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/mediashelf/internal/database/query"
	"github.com/tomtom215/mediashelf/internal/models"
)

// upsertProgressSQL writes one (user, tier) row. completed_at is only taken
// from the new values while the stored one is NULL, so the first completion
// time survives later regressions and re-completions.
const upsertProgressSQL = `
	INSERT INTO user_achievement_progress (
		user_id, tier_id, count, progress, completed, completed_at, last_calculated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, tier_id) DO UPDATE SET
		count = EXCLUDED.count,
		progress = EXCLUDED.progress,
		completed = EXCLUDED.completed,
		completed_at = COALESCE(completed_at, EXCLUDED.completed_at),
		last_calculated_at = EXCLUDED.last_calculated_at`

func (t *Tx) upsertProgress(ctx context.Context, p models.UserAchievementProgress) error {
	var completedAt interface{}
	if p.Completed {
		ts := p.LastCalculatedAt
		if p.CompletedAt != nil {
			ts = *p.CompletedAt
		}
		completedAt = ts
	}
	_, err := t.tx.ExecContext(ctx, upsertProgressSQL,
		p.UserID, p.TierID, p.Count, p.Progress, p.Completed, completedAt, p.LastCalculatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert progress %s/%s: %w", p.UserID, p.TierID, err)
	}
	return nil
}

// UpsertProgress writes a user's progress rows in one transaction.
func (db *DB) UpsertProgress(ctx context.Context, rows []models.UserAchievementProgress) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	err := db.WithTx(ctx, func(tx *Tx) error {
		for _, p := range rows {
			if err := tx.upsertProgress(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	recordQuery("UPSERT", "user_achievement_progress", start, err)
	return err
}

// ApplyTierResults stores a batch evaluation of one tier. Every row in rows
// is upserted, then any other row of the tier that this pass did not touch
// is recalculated to zero: count and progress 0, completed false,
// completed_at kept and last_calculated_at set to calculatedAt.
func (db *DB) ApplyTierResults(ctx context.Context, tierID string, rows []models.UserAchievementProgress, calculatedAt time.Time) error {
	start := time.Now()
	// TIMESTAMP columns hold microseconds
	calculatedAt = calculatedAt.UTC().Truncate(time.Microsecond)
	err := db.WithTx(ctx, func(tx *Tx) error {
		for _, p := range rows {
			p.LastCalculatedAt = calculatedAt
			if err := tx.upsertProgress(ctx, p); err != nil {
				return err
			}
		}
		_, err := tx.tx.ExecContext(ctx, `
			UPDATE user_achievement_progress
			SET count = 0, progress = 0, completed = false, last_calculated_at = ?
			WHERE tier_id = ? AND last_calculated_at < ?`,
			calculatedAt, tierID, calculatedAt)
		if err != nil {
			return fmt.Errorf("failed to reset regressed progress for tier %s: %w", tierID, err)
		}
		return nil
	})
	recordQuery("UPSERT", "user_achievement_progress", start, err)
	return err
}

// ListUserProgress returns a user's progress rows keyed by tier id,
// optionally restricted to one category.
func (db *DB) ListUserProgress(ctx context.Context, userID string, category *models.Category) (map[string]models.UserAchievementProgress, error) {
	wb := query.NewWhereBuilder().AddClause("p.user_id = ?", userID)
	if category != nil {
		wb.AddClause("a.category = ?", string(*category))
	}
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.user_id, p.tier_id, p.count, p.progress, p.completed, p.completed_at, p.last_calculated_at
		FROM user_achievement_progress p
		JOIN achievement_tiers t ON t.id = p.tier_id
		JOIN achievements a ON a.id = t.achievement_id
		`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer closeWithLog(rows, "progress rows")

	result := make(map[string]models.UserAchievementProgress)
	for rows.Next() {
		var p models.UserAchievementProgress
		var completedAt sql.NullTime
		if err := rows.Scan(&p.UserID, &p.TierID, &p.Count, &p.Progress, &p.Completed,
			&completedAt, &p.LastCalculatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		if completedAt.Valid {
			ts := completedAt.Time
			p.CompletedAt = &ts
		}
		result[p.TierID] = p
	}
	return result, rows.Err()
}

// difficultyOrdinalSQL ranks difficulties bronze=1 < silver=2 < gold=3 < platinum=4.
const difficultyOrdinalSQL = `CASE t.difficulty
	WHEN 'bronze' THEN 1
	WHEN 'silver' THEN 2
	WHEN 'gold' THEN 3
	WHEN 'platinum' THEN 4
	ELSE 0 END`

// HighestTiers returns, per achievement, the highest completed difficulty of
// a user, or of every user when userID is empty.
func (db *DB) HighestTiers(ctx context.Context, userID string, category *models.Category) ([]models.UserHighestTier, error) {
	start := time.Now()

	wb := query.NewWhereBuilder().
		AddClause("p.completed").
		AddIf(userID != "", "p.user_id = ?", userID)
	if category != nil {
		wb.AddClause("a.category = ?", string(*category))
	}
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.user_id, t.achievement_id, MAX(`+difficultyOrdinalSQL+`) AS ordinal
		FROM user_achievement_progress p
		JOIN achievement_tiers t ON t.id = p.tier_id
		JOIN achievements a ON a.id = t.achievement_id
		`+where+`
		GROUP BY p.user_id, t.achievement_id
		ORDER BY p.user_id, t.achievement_id`, args...)
	if err != nil {
		recordQuery("SELECT", "user_achievement_progress", start, err)
		return nil, fmt.Errorf("failed to query highest tiers: %w", err)
	}
	defer closeWithLog(rows, "highest tier rows")

	var result []models.UserHighestTier
	for rows.Next() {
		var h models.UserHighestTier
		var ordinal int
		if err := rows.Scan(&h.UserID, &h.AchievementID, &ordinal); err != nil {
			return nil, fmt.Errorf("failed to scan highest tier: %w", err)
		}
		d, ok := models.DifficultyFromOrdinal(ordinal)
		if !ok {
			continue
		}
		h.Difficulty = d
		result = append(result, h)
	}
	err = rows.Err()
	recordQuery("SELECT", "user_achievement_progress", start, err)
	return result, err
}
