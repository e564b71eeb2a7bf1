// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mediashelf/internal/database/query"
	"github.com/tomtom215/mediashelf/internal/models"
)

// entryPredicates maps an entry predicate to its SQL condition over
// user_media_entries aliased as e. Rating, comment and favorite only count
// on completed entries, matching the aggregate stats.
var entryPredicates = map[models.EntryPredicate]string{
	models.PredicateCompleted: "e.status = 'completed'",
	models.PredicateRated:     "e.status = 'completed' AND e.rating IS NOT NULL",
	models.PredicateCommented: "e.status = 'completed' AND e.comment IS NOT NULL AND e.comment <> ''",
	models.PredicateFavorite:  "e.status = 'completed' AND e.favorite",
	models.PredicateRedo:      "e.redo_total > 0",
}

// statColumns maps readable aggregate fields to their column.
var statColumns = map[models.StatField]string{
	models.StatTimeSpent:     "time_spent",
	models.StatTotalSpecific: "total_specific",
	models.StatTotalRedo:     "total_redo",
}

// CountQualifying evaluates one criteria query as a single set-based
// statement and returns one row per user with a positive count. An empty
// q.UserID runs in platform-wide batch mode; otherwise only that user is
// considered and an absent row means a count of zero.
func (db *DB) CountQualifying(ctx context.Context, q models.CriteriaQuery) ([]models.UserCount, error) {
	sqlText, args, err := buildCriteriaQuery(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		recordQuery("SELECT", "criteria_"+string(q.Source), start, err)
		return nil, fmt.Errorf("failed to run %s criteria: %w", q.Source, err)
	}
	defer closeWithLog(rows, "criteria rows")

	var counts []models.UserCount
	for rows.Next() {
		var uc models.UserCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan criteria row: %w", err)
		}
		counts = append(counts, uc)
	}
	err = rows.Err()
	recordQuery("SELECT", "criteria_"+string(q.Source), start, err)
	return counts, err
}

func buildCriteriaQuery(q models.CriteriaQuery) (string, []interface{}, error) {
	if !q.Category.Valid() {
		return "", nil, fmt.Errorf("invalid criteria category %q", q.Category)
	}

	switch q.Source {
	case models.SourceEntries:
		return buildEntriesQuery(q)
	case models.SourceClassified:
		return buildClassifiedQuery(q, "COUNT(DISTINCT e.media_id)")
	case models.SourceDistinct:
		return buildDistinctQuery(q)
	case models.SourceStat:
		return buildStatQuery(q)
	}
	return "", nil, fmt.Errorf("unknown criteria source %q", q.Source)
}

func buildEntriesQuery(q models.CriteriaQuery) (string, []interface{}, error) {
	pred, ok := entryPredicates[q.Predicate]
	if !ok {
		return "", nil, fmt.Errorf("unknown entry predicate %q", q.Predicate)
	}

	where, args := query.NewWhereBuilder().
		AddClause("e.category = ?", string(q.Category)).
		AddClause(pred).
		AddIf(q.UserID != "", "e.user_id = ?", q.UserID).
		BuildWithPrefix()

	return `SELECT e.user_id, COUNT(*) AS n
		FROM user_media_entries e ` + where + `
		GROUP BY e.user_id
		ORDER BY e.user_id`, args, nil
}

// buildClassifiedQuery counts completed entries whose media matches the
// dimension filter, aggregating with the given expression.
func buildClassifiedQuery(q models.CriteriaQuery, aggregate string) (string, []interface{}, error) {
	wb := query.NewWhereBuilder().
		AddClause("e.category = ?", string(q.Category)).
		AddClause("e.status = 'completed'")

	var join string
	switch q.Dimension {
	case models.DimensionGenre, models.DimensionPerson, models.DimensionNetwork:
		join = `JOIN media_classifications c
			ON c.category = e.category AND c.media_id = e.media_id`
		wb.AddClause("c.dimension = ?", string(q.Dimension))
		wb.AddIf(q.Value != "", "c.value = ?", q.Value)
		wb.AddIf(q.Role != "", "c.role = ?", q.Role)
	case models.DimensionLanguage:
		join = `JOIN media m ON m.category = e.category AND m.id = e.media_id`
		wb.AddClause("m.language <> ''")
		wb.AddIf(q.Value != "", "m.language = ?", q.Value)
	case models.DimensionDuration:
		if q.MinDuration <= 0 && q.MaxDuration <= 0 {
			return "", nil, fmt.Errorf("duration criteria needs a bracket")
		}
		join = `JOIN media m ON m.category = e.category AND m.id = e.media_id`
		wb.AddIf(q.MinDuration > 0, "m.duration >= ?", q.MinDuration)
		wb.AddIf(q.MaxDuration > 0, "m.duration < ?", q.MaxDuration)
	default:
		return "", nil, fmt.Errorf("unknown classification dimension %q", q.Dimension)
	}

	wb.AddIf(q.UserID != "", "e.user_id = ?", q.UserID)
	where, args := wb.BuildWithPrefix()

	return `SELECT e.user_id, ` + aggregate + ` AS n
		FROM user_media_entries e ` + join + ` ` + where + `
		GROUP BY e.user_id
		ORDER BY e.user_id`, args, nil
}

func buildDistinctQuery(q models.CriteriaQuery) (string, []interface{}, error) {
	switch q.Dimension {
	case models.DimensionGenre, models.DimensionPerson, models.DimensionNetwork:
		dq := q
		dq.Value = ""
		return buildClassifiedQuery(dq, "COUNT(DISTINCT c.value)")
	case models.DimensionLanguage:
		dq := q
		dq.Value = ""
		return buildClassifiedQuery(dq, "COUNT(DISTINCT m.language)")
	}
	return "", nil, fmt.Errorf("distinct criteria unsupported for dimension %q", q.Dimension)
}

func buildStatQuery(q models.CriteriaQuery) (string, []interface{}, error) {
	column, ok := statColumns[q.Field]
	if !ok {
		return "", nil, fmt.Errorf("unknown stat field %q", q.Field)
	}
	divisor := q.Divisor
	if divisor <= 0 {
		divisor = 1
	}

	where, args := query.NewWhereBuilder().
		AddClause("owner_id <> ''").
		AddClause("category = ?", string(q.Category)).
		AddClause(column+" >= ?", divisor).
		AddIf(q.UserID != "", "owner_id = ?", q.UserID).
		BuildWithPrefix()

	// column and divisor are code-controlled
	return fmt.Sprintf(`SELECT owner_id, CAST(FLOOR(%s / %d) AS BIGINT) AS n
		FROM aggregated_stats %s
		ORDER BY owner_id`, column, divisor, where), args, nil
}
