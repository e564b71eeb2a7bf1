// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/mediashelf/internal/database/query"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

const statsColumns = `owner_id, category, total_entries, status_counts,
	CAST(time_spent AS VARCHAR), total_redo, total_specific, entries_rated,
	CAST(sum_entries_rated AS VARCHAR), entries_commented, entries_favorites,
	total_labels, updated_at`

// ApplyDelta adds a delta into the scope's aggregate row inside the
// transaction and returns the new row. A missing row starts zeroed. If the
// result would break a counter invariant nothing is written and the error
// wraps models.ErrNegativeCount or models.ErrStatusInvariant.
func (t *Tx) ApplyDelta(ctx context.Context, scope models.StatsScope, d *models.DeltaStats, now time.Time) (*models.AggregatedStats, error) {
	start := time.Now()
	defer func() { metrics.RecordDeltaApply(time.Since(start)) }()

	stats, err := getStats(ctx, t.tx, scope)
	if err != nil {
		return nil, err
	}
	if err := stats.Apply(d); err != nil {
		return nil, err
	}
	stats.UpdatedAt = now
	if err := t.putStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ReplaceStats overwrites a scope's row with freshly rebuilt values.
func (t *Tx) ReplaceStats(ctx context.Context, stats *models.AggregatedStats) error {
	return t.putStats(ctx, stats)
}

func (t *Tx) putStats(ctx context.Context, s *models.AggregatedStats) error {
	counts, err := json.Marshal(s.StatusCounts)
	if err != nil {
		return fmt.Errorf("failed to encode status counts: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO aggregated_stats (
			owner_id, category, total_entries, status_counts, time_spent, total_redo,
			total_specific, entries_rated, sum_entries_rated, entries_commented,
			entries_favorites, total_labels, updated_at
		) VALUES (?, ?, ?, ?, CAST(? AS DECIMAL(18,4)), ?, ?, ?, CAST(? AS DECIMAL(18,4)), ?, ?, ?, ?)
		ON CONFLICT (owner_id, category) DO UPDATE SET
			total_entries = EXCLUDED.total_entries,
			status_counts = EXCLUDED.status_counts,
			time_spent = EXCLUDED.time_spent,
			total_redo = EXCLUDED.total_redo,
			total_specific = EXCLUDED.total_specific,
			entries_rated = EXCLUDED.entries_rated,
			sum_entries_rated = EXCLUDED.sum_entries_rated,
			entries_commented = EXCLUDED.entries_commented,
			entries_favorites = EXCLUDED.entries_favorites,
			total_labels = EXCLUDED.total_labels,
			updated_at = EXCLUDED.updated_at`,
		s.UserID, string(s.Category), s.TotalEntries, string(counts), s.TimeSpent.String(),
		s.TotalRedo, s.TotalSpecific, s.EntriesRated, s.SumEntriesRated.String(),
		s.EntriesCommented, s.EntriesFavorites, s.TotalLabels, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write stats for %s: %w", s.Scope(), err)
	}
	return nil
}

// GetStats returns the committed row of a scope, zeroed when none exists.
func (db *DB) GetStats(ctx context.Context, scope models.StatsScope) (*models.AggregatedStats, error) {
	start := time.Now()
	stats, err := getStats(ctx, db.conn, scope)
	recordQuery("SELECT", "aggregated_stats", start, err)
	return stats, err
}

func getStats(ctx context.Context, q queryer, scope models.StatsScope) (*models.AggregatedStats, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+statsColumns+` FROM aggregated_stats WHERE owner_id = ? AND category = ?`,
		scope.UserID, string(scope.Category))
	stats, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewAggregatedStats(scope), nil
	}
	return stats, err
}

// ListStats returns the committed rows of a user, or of the platform when
// userID is empty, optionally limited to one category. Categories without a
// row are reported zeroed so callers always see every requested category.
func (db *DB) ListStats(ctx context.Context, userID string, category *models.Category) ([]*models.AggregatedStats, error) {
	start := time.Now()

	wb := query.NewWhereBuilder().AddClause("owner_id = ?", userID)
	if category != nil {
		wb.AddClause("category = ?", string(*category))
	}
	where, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+statsColumns+` FROM aggregated_stats `+where, args...)
	if err != nil {
		recordQuery("SELECT", "aggregated_stats", start, err)
		return nil, fmt.Errorf("failed to list stats: %w", err)
	}
	defer closeWithLog(rows, "stats rows")

	found := make(map[models.Category]*models.AggregatedStats)
	for rows.Next() {
		s, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		found[s.Category] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	recordQuery("SELECT", "aggregated_stats", start, nil)

	categories := models.AllCategories()
	if category != nil {
		categories = []models.Category{*category}
	}
	result := make([]*models.AggregatedStats, 0, len(categories))
	for _, c := range categories {
		if s, ok := found[c]; ok {
			result = append(result, s)
			continue
		}
		result = append(result, models.NewAggregatedStats(models.StatsScope{UserID: userID, Category: c}))
	}
	return result, nil
}

func scanStats(row rowScanner) (*models.AggregatedStats, error) {
	var (
		s         models.AggregatedStats
		category  string
		counts    string
		timeSpent string
		sumRated  string
	)
	err := row.Scan(&s.UserID, &category, &s.TotalEntries, &counts, &timeSpent, &s.TotalRedo,
		&s.TotalSpecific, &s.EntriesRated, &sumRated, &s.EntriesCommented, &s.EntriesFavorites,
		&s.TotalLabels, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan stats: %w", err)
	}

	s.Category = models.Category(category)
	s.StatusCounts = models.StatusCounts{}
	if err := json.Unmarshal([]byte(counts), &s.StatusCounts); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}
	if s.TimeSpent, err = decimal.NewFromString(timeSpent); err != nil {
		return nil, fmt.Errorf("failed to parse time spent %q: %w", timeSpent, err)
	}
	if s.SumEntriesRated, err = decimal.NewFromString(sumRated); err != nil {
		return nil, fmt.Errorf("failed to parse rating sum %q: %w", sumRated, err)
	}
	return &s, nil
}
