// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediashelf/internal/database/query"
	"github.com/tomtom215/mediashelf/internal/models"
)

// ListAchievements returns the persisted catalog with tiers ordered bronze to
// platinum, optionally for one category.
func (db *DB) ListAchievements(ctx context.Context, category *models.Category) ([]models.Achievement, error) {
	start := time.Now()
	list, err := listAchievements(ctx, db.conn, category)
	recordQuery("SELECT", "achievements", start, err)
	return list, err
}

// ListAchievements reads the catalog inside the transaction.
func (t *Tx) ListAchievements(ctx context.Context, category models.Category) ([]models.Achievement, error) {
	return listAchievements(ctx, t.tx, &category)
}

func listAchievements(ctx context.Context, q queryer, category *models.Category) ([]models.Achievement, error) {
	wb := query.NewWhereBuilder()
	if category != nil {
		wb.AddClause("a.category = ?", string(*category))
	}
	where, args := wb.BuildWithPrefix()

	rows, err := q.QueryContext(ctx, `
		SELECT a.id, a.category, a.code_name, a.name, a.description, a.value,
			t.id, t.difficulty, t.criteria
		FROM achievements a
		LEFT JOIN achievement_tiers t ON t.achievement_id = a.id
		`+where+`
		ORDER BY a.category, a.code_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer closeWithLog(rows, "achievement rows")

	var list []models.Achievement
	index := make(map[string]int)
	for rows.Next() {
		var (
			a                  models.Achievement
			cat                string
			value              sql.NullInt64
			tierID, difficulty sql.NullString
			criteria           sql.NullString
		)
		if err := rows.Scan(&a.ID, &cat, &a.CodeName, &a.Name, &a.Description, &value,
			&tierID, &difficulty, &criteria); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}

		i, seen := index[a.ID]
		if !seen {
			a.Category = models.Category(cat)
			if value.Valid {
				v := value.Int64
				a.Value = &v
			}
			list = append(list, a)
			i = len(list) - 1
			index[a.ID] = i
		}

		if !tierID.Valid {
			continue
		}
		tier := models.AchievementTier{
			ID:            tierID.String,
			AchievementID: list[i].ID,
			Difficulty:    models.Difficulty(difficulty.String),
		}
		if err := json.Unmarshal([]byte(criteria.String), &tier.Criteria); err != nil {
			return nil, fmt.Errorf("failed to decode criteria of tier %s: %w", tier.ID, err)
		}
		list[i].Tiers = append(list[i].Tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		tiers := list[i].Tiers
		sort.Slice(tiers, func(a, b int) bool {
			return tiers[a].Difficulty.Ordinal() < tiers[b].Difficulty.Ordinal()
		})
	}
	return list, nil
}

// InsertAchievement creates an achievement row (tiers are written separately).
func (t *Tx) InsertAchievement(ctx context.Context, a *models.Achievement, now time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO achievements (id, category, code_name, name, description, value, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Category), a.CodeName, a.Name, a.Description, nullableInt(a.Value), now)
	if err != nil {
		return fmt.Errorf("failed to insert achievement %s: %w", a.CodeName, err)
	}
	return nil
}

// UpdateAchievement rewrites the descriptive fields of an achievement.
// The code name is its identity and never changes.
func (t *Tx) UpdateAchievement(ctx context.Context, a *models.Achievement, now time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE achievements SET name = ?, description = ?, value = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.Description, nullableInt(a.Value), now, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update achievement %s: %w", a.CodeName, err)
	}
	return nil
}

// DeleteAchievement removes an achievement with its tiers and their progress.
func (t *Tx) DeleteAchievement(ctx context.Context, achievementID string) error {
	stmts := []string{
		`DELETE FROM user_achievement_progress WHERE tier_id IN (
			SELECT id FROM achievement_tiers WHERE achievement_id = ?)`,
		`DELETE FROM achievement_tiers WHERE achievement_id = ?`,
		`DELETE FROM achievements WHERE id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := t.tx.ExecContext(ctx, stmt, achievementID); err != nil {
			return fmt.Errorf("failed to delete achievement %s: %w", achievementID, err)
		}
	}
	return nil
}

// InsertTier creates a tier row.
func (t *Tx) InsertTier(ctx context.Context, tier *models.AchievementTier, now time.Time) error {
	criteria, err := json.Marshal(tier.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO achievement_tiers (id, achievement_id, difficulty, criteria, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		tier.ID, tier.AchievementID, string(tier.Difficulty), string(criteria), now)
	if err != nil {
		return fmt.Errorf("failed to insert tier %s: %w", tier.Difficulty, err)
	}
	return nil
}

// UpdateTier rewrites a tier's criteria.
func (t *Tx) UpdateTier(ctx context.Context, tier *models.AchievementTier, now time.Time) error {
	criteria, err := json.Marshal(tier.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	_, err = t.tx.ExecContext(ctx,
		`UPDATE achievement_tiers SET criteria = ?, updated_at = ? WHERE id = ?`,
		string(criteria), now, tier.ID)
	if err != nil {
		return fmt.Errorf("failed to update tier %s: %w", tier.ID, err)
	}
	return nil
}

// DeleteTier removes a tier and its progress rows.
func (t *Tx) DeleteTier(ctx context.Context, tierID string) error {
	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM user_achievement_progress WHERE tier_id = ?`, tierID); err != nil {
		return fmt.Errorf("failed to delete progress of tier %s: %w", tierID, err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM achievement_tiers WHERE id = ?`, tierID); err != nil {
		return fmt.Errorf("failed to delete tier %s: %w", tierID, err)
	}
	return nil
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
