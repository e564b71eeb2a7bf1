// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"context"
	"fmt"

	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/delta"
	"github.com/tomtom215/mediashelf/internal/models"
)

// RebuildUserStats re-derives a user's aggregate rows from the entries
// currently in the list and overwrites the stored rows. A nil category
// rebuilds every category.
func (s *Service) RebuildUserStats(ctx context.Context, userID string, category *models.Category) ([]*models.AggregatedStats, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return s.rebuild(ctx, userID, category)
}

// RebuildPlatformStats re-derives the platform rows from every entry.
func (s *Service) RebuildPlatformStats(ctx context.Context, category *models.Category) ([]*models.AggregatedStats, error) {
	return s.rebuild(ctx, "", category)
}

func (s *Service) rebuild(ctx context.Context, userID string, category *models.Category) ([]*models.AggregatedStats, error) {
	categories := models.AllCategories()
	if category != nil {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrMediaNotFound, *category)
		}
		categories = []models.Category{*category}
	}

	var result []*models.AggregatedStats
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		result = result[:0]
		now := s.now().UTC()

		for _, c := range categories {
			list, err := tx.ListEntries(ctx, userID, c)
			if err != nil {
				return err
			}

			paired := make([]delta.EntryWithMedia, 0, len(list))
			for _, e := range list {
				media, err := tx.GetMedia(ctx, c, e.MediaID)
				if err != nil {
					return fmt.Errorf("media %s/%s: %w", c, e.MediaID, err)
				}
				paired = append(paired, delta.EntryWithMedia{Entry: e, Media: media})
			}

			scope := models.PlatformScope(c)
			if userID != "" {
				scope = models.UserScope(userID, c)
			}
			stats, err := s.calculators.Rebuild(scope, paired)
			if err != nil {
				return err
			}
			stats.UpdatedAt = now
			if err := tx.ReplaceStats(ctx, stats); err != nil {
				return err
			}
			result = append(result, stats)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope := "platform"
	if userID != "" {
		scope = "user"
	}
	if s.cache != nil {
		if userID != "" {
			s.cache.InvalidateUser(userID)
		} else {
			s.cache.InvalidatePlatform()
		}
	}
	s.logger.Info().
		Str("scope", scope).
		Str("user_id", userID).
		Int("categories", len(result)).
		Msg("Aggregate stats rebuilt")
	return result, nil
}
