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

	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

// MediaSource records where a media row came from.
type MediaSource string

// Media sources.
const (
	MediaSourceLocal  MediaSource = "local"
	MediaSourceRemote MediaSource = "remote"
)

// UpsertMedia stores metadata and replaces its classifications.
func (db *DB) UpsertMedia(ctx context.Context, media *models.MediaMetadata, source MediaSource) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		return tx.UpsertMedia(ctx, media, source)
	})
}

// UpsertMedia writes metadata inside the transaction.
func (t *Tx) UpsertMedia(ctx context.Context, media *models.MediaMetadata, source MediaSource) error {
	seasons, err := json.Marshal(nonNilInts(media.Seasons))
	if err != nil {
		return fmt.Errorf("failed to encode seasons: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO media (category, id, title, duration, seasons, total_units, language, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (category, id) DO UPDATE SET
			title = EXCLUDED.title,
			duration = EXCLUDED.duration,
			seasons = EXCLUDED.seasons,
			total_units = EXCLUDED.total_units,
			language = EXCLUDED.language,
			source = EXCLUDED.source,
			updated_at = EXCLUDED.updated_at`,
		string(media.Category), media.ID, media.Title, media.Duration, string(seasons),
		media.TotalUnits, media.Language, string(source), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert media: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM media_classifications WHERE category = ? AND media_id = ?`,
		string(media.Category), media.ID); err != nil {
		return fmt.Errorf("failed to clear classifications: %w", err)
	}

	for _, c := range media.Classifications {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO media_classifications (category, media_id, dimension, value, role)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			string(media.Category), media.ID, string(c.Dimension), c.Value, c.Role); err != nil {
			return fmt.Errorf("failed to insert classification: %w", err)
		}
	}
	return nil
}

// GetMedia loads metadata with its classifications. Returns ErrNotFound
// when the media is not registered.
func (db *DB) GetMedia(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	start := time.Now()
	media, err := getMedia(ctx, db.conn, category, mediaID)
	recordQuery("SELECT", "media", start, err)
	return media, err
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getMedia(ctx context.Context, q queryer, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	media := &models.MediaMetadata{ID: mediaID, Category: category}
	var seasons string
	err := q.QueryRowContext(ctx, `
		SELECT title, duration, seasons, total_units, language
		FROM media WHERE category = ? AND id = ?`,
		string(category), mediaID,
	).Scan(&media.Title, &media.Duration, &seasons, &media.TotalUnits, &media.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	if err := json.Unmarshal([]byte(seasons), &media.Seasons); err != nil {
		return nil, fmt.Errorf("failed to decode seasons for %s/%s: %w", category, mediaID, err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT dimension, value, role FROM media_classifications
		WHERE category = ? AND media_id = ?
		ORDER BY dimension, value, role`,
		string(category), mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get classifications: %w", err)
	}
	defer closeWithLog(rows, "classification rows")

	for rows.Next() {
		var c models.Classification
		var dim string
		if err := rows.Scan(&dim, &c.Value, &c.Role); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		c.Dimension = models.Dimension(dim)
		media.Classifications = append(media.Classifications, c)
	}
	return media, rows.Err()
}

// GetMedia reads metadata inside the transaction.
func (t *Tx) GetMedia(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	return getMedia(ctx, t.tx, category, mediaID)
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func recordQuery(operation, table string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
