// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/delta"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/models"
)

// MediaStore persists media metadata for the catalog resolver. Replacing
// metadata that entries already depend on re-measures those entries in the
// same transaction, so every aggregate row keeps matching a rebuild.
type MediaStore struct {
	db          *database.DB
	calculators *delta.Registry
	cache       Invalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMediaStore creates the metadata store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMediaStore(db *database.DB, calculators *delta.Registry, logger zerolog.Logger) *MediaStore {
	return &MediaStore{
		db:          db,
		calculators: calculators,
		logger:      logging.Component(logger, "media-store"),
		now:         time.Now,
	}
}

// SetInvalidator sets the cache to invalidate when stats are re-measured.
func (m *MediaStore) SetInvalidator(c Invalidator) {
	m.cache = c
}

// GetMedia returns stored metadata or database.ErrNotFound.
func (m *MediaStore) GetMedia(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	return m.db.GetMedia(ctx, category, mediaID)
}

// UpsertMedia stores metadata. When the media was already known, each entry
// holding it has its contribution under the old metadata swapped for its
// contribution under the new one, on the user rows and on the platform row.
func (m *MediaStore) UpsertMedia(ctx context.Context, media *models.MediaMetadata, source database.MediaSource) error {
	var users []string
	err := m.db.WithTx(ctx, func(tx *database.Tx) error {
		users = users[:0]

		before, err := tx.GetMedia(ctx, media.Category, media.ID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			return tx.UpsertMedia(ctx, media, source)
		case err != nil:
			return err
		}

		if err := tx.UpsertMedia(ctx, media, source); err != nil {
			return err
		}

		list, err := tx.ListMediaEntries(ctx, media.Category, media.ID)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		platform := models.NewDeltaStats()
		for _, e := range list {
			d, err := m.calculators.Remeasure(e, before, media)
			if err != nil {
				return fmt.Errorf("remeasure %s: %w", e.UserID, err)
			}
			if d.IsZero() {
				continue
			}
			if _, err := tx.ApplyDelta(ctx, models.UserScope(e.UserID, media.Category), d, now); err != nil {
				return fmt.Errorf("apply user stats: %w", err)
			}
			platform = platform.Add(d)
			users = append(users, e.UserID)
		}
		if platform.IsZero() {
			return nil
		}
		if _, err := tx.ApplyDelta(ctx, models.PlatformScope(media.Category), platform, now); err != nil {
			return fmt.Errorf("apply platform stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(users) == 0 {
		return nil
	}
	if m.cache != nil {
		for _, u := range users {
			m.cache.InvalidateUser(u)
		}
		m.cache.InvalidatePlatform()
	}
	m.logger.Info().
		Str("category", string(media.Category)).
		Str("media_id", media.ID).
		Int("entries", len(users)).
		Msg("Stats re-measured for changed media metadata")
	return nil
}
