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
	"github.com/tomtom215/mediashelf/internal/models"
)

const entryColumns = `user_id, category, media_id, status, CAST(rating AS VARCHAR), comment,
	favorite, labels, season, episode, units, redo, redo_seasons, added_at, updated_at`

// GetEntry reads one list entry inside the transaction.
func (t *Tx) GetEntry(ctx context.Context, userID string, category models.Category, mediaID string) (*models.UserMediaEntry, error) {
	return getEntry(ctx, t.tx, userID, category, mediaID)
}

// GetEntry reads one committed list entry.
func (db *DB) GetEntry(ctx context.Context, userID string, category models.Category, mediaID string) (*models.UserMediaEntry, error) {
	start := time.Now()
	e, err := getEntry(ctx, db.conn, userID, category, mediaID)
	recordQuery("SELECT", "user_media_entries", start, err)
	return e, err
}

func getEntry(ctx context.Context, q queryer, userID string, category models.Category, mediaID string) (*models.UserMediaEntry, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM user_media_entries
		WHERE user_id = ? AND category = ? AND media_id = ?`,
		userID, string(category), mediaID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// PutEntry inserts or fully replaces a list entry.
func (t *Tx) PutEntry(ctx context.Context, e *models.UserMediaEntry) error {
	redoSeasons, err := json.Marshal(nonNilInts(e.Progress.RedoSeasons))
	if err != nil {
		return fmt.Errorf("failed to encode redo seasons: %w", err)
	}

	var rating interface{}
	if e.Rating != nil {
		rating = e.Rating.String()
	}
	var comment interface{}
	if e.Comment != nil {
		comment = *e.Comment
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO user_media_entries (
			user_id, category, media_id, status, rating, comment, favorite, labels,
			season, episode, units, redo, redo_seasons, redo_total, added_at, updated_at
		) VALUES (?, ?, ?, ?, CAST(? AS DECIMAL(6,2)), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, media_id) DO UPDATE SET
			status = EXCLUDED.status,
			rating = EXCLUDED.rating,
			comment = EXCLUDED.comment,
			favorite = EXCLUDED.favorite,
			labels = EXCLUDED.labels,
			season = EXCLUDED.season,
			episode = EXCLUDED.episode,
			units = EXCLUDED.units,
			redo = EXCLUDED.redo,
			redo_seasons = EXCLUDED.redo_seasons,
			redo_total = EXCLUDED.redo_total,
			updated_at = EXCLUDED.updated_at`,
		e.UserID, string(e.Category), e.MediaID, string(e.Status), rating, comment, e.Favorite, e.Labels,
		e.Progress.Season, e.Progress.Episode, e.Progress.Units, e.Progress.Redo, string(redoSeasons),
		redoTotal(e.Progress), e.AddedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put entry: %w", err)
	}
	return nil
}

// DeleteEntry removes a list entry. Returns ErrNotFound if absent.
func (t *Tx) DeleteEntry(ctx context.Context, userID string, category models.Category, mediaID string) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM user_media_entries WHERE user_id = ? AND category = ? AND media_id = ?`,
		userID, string(category), mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEntries returns committed entries of a category, for one user or for
// everyone when userID is empty, ordered by user then media.
func (db *DB) ListEntries(ctx context.Context, userID string, category models.Category) ([]*models.UserMediaEntry, error) {
	start := time.Now()
	entries, err := listEntries(ctx, db.conn, userID, category)
	recordQuery("SELECT", "user_media_entries", start, err)
	return entries, err
}

// ListEntries reads entries inside the transaction.
func (t *Tx) ListEntries(ctx context.Context, userID string, category models.Category) ([]*models.UserMediaEntry, error) {
	return listEntries(ctx, t.tx, userID, category)
}

// ListMediaEntries returns every user's entry for one media item, ordered
// by user.
func (t *Tx) ListMediaEntries(ctx context.Context, category models.Category, mediaID string) ([]*models.UserMediaEntry, error) {
	wb := query.NewWhereBuilder().
		AddClause("category = ?", string(category)).
		AddClause("media_id = ?", mediaID)
	return queryEntries(ctx, t.tx, wb)
}

func listEntries(ctx context.Context, q queryer, userID string, category models.Category) ([]*models.UserMediaEntry, error) {
	wb := query.NewWhereBuilder().
		AddClause("category = ?", string(category)).
		AddIf(userID != "", "user_id = ?", userID)
	return queryEntries(ctx, q, wb)
}

func queryEntries(ctx context.Context, q queryer, wb *query.WhereBuilder) ([]*models.UserMediaEntry, error) {
	where, args := wb.BuildWithPrefix()

	rows, err := q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM user_media_entries `+where+` ORDER BY user_id, media_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer closeWithLog(rows, "entry rows")

	var entries []*models.UserMediaEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEntryUsers returns the users holding at least one entry in a category.
func (db *DB) ListEntryUsers(ctx context.Context, category models.Category) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM user_media_entries WHERE category = ? ORDER BY user_id`,
		string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list entry users: %w", err)
	}
	defer closeWithLog(rows, "user rows")

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.UserMediaEntry, error) {
	var (
		e           models.UserMediaEntry
		category    string
		status      string
		rating      sql.NullString
		comment     sql.NullString
		redoSeasons string
	)
	err := row.Scan(&e.UserID, &category, &e.MediaID, &status, &rating, &comment,
		&e.Favorite, &e.Labels, &e.Progress.Season, &e.Progress.Episode, &e.Progress.Units,
		&e.Progress.Redo, &redoSeasons, &e.AddedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.Category = models.Category(category)
	e.Status = models.Status(status)
	if rating.Valid {
		r, err := decimal.NewFromString(rating.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rating %q: %w", rating.String, err)
		}
		e.Rating = &r
	}
	if comment.Valid {
		c := comment.String
		e.Comment = &c
	}
	if err := json.Unmarshal([]byte(redoSeasons), &e.Progress.RedoSeasons); err != nil {
		return nil, fmt.Errorf("failed to decode redo seasons: %w", err)
	}
	if len(e.Progress.RedoSeasons) == 0 {
		e.Progress.RedoSeasons = nil
	}
	return &e, nil
}

// redoTotal is the number of full or per-season re-consumptions recorded on
// an entry.
func redoTotal(p models.Progress) int64 {
	total := int64(p.Redo)
	for _, r := range p.RedoSeasons {
		total += int64(r)
	}
	return total
}
