// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

// SeedReport counts the writes one category reconciliation performed.
type SeedReport struct {
	Category            models.Category `json:"category"`
	AchievementsCreated int             `json:"achievements_created"`
	AchievementsUpdated int             `json:"achievements_updated"`
	AchievementsDeleted int             `json:"achievements_deleted"`
	TiersCreated        int             `json:"tiers_created"`
	TiersUpdated        int             `json:"tiers_updated"`
	TiersDeleted        int             `json:"tiers_deleted"`
}

// Writes returns the total number of rows written.
func (r SeedReport) Writes() int {
	return r.AchievementsCreated + r.AchievementsUpdated + r.AchievementsDeleted +
		r.TiersCreated + r.TiersUpdated + r.TiersDeleted
}

// Seeder reconciles the declared catalog with the persisted one.
type Seeder struct {
	db       *database.DB
	registry *Registry
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewSeeder creates a seeder for the registry's catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSeeder(db *database.DB, registry *Registry, logger zerolog.Logger) *Seeder {
	return &Seeder{
		db:       db,
		registry: registry,
		logger:   logging.Component(logger, "achievement_seeder"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Seed reconciles every category. Each category is its own transaction; the
// first failing category aborts the run and earlier categories stay applied.
func (s *Seeder) Seed(ctx context.Context) ([]SeedReport, error) {
	reports := make([]SeedReport, 0, len(models.AllCategories()))
	for _, category := range models.AllCategories() {
		report, err := s.SeedCategory(ctx, category)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SeedCategory makes the persisted catalog of one category match the
// declared definitions: achievements are matched by code name and tiers by
// difficulty, changed rows are updated in place and undeclared rows are
// deleted with their progress. Nothing is written when both already agree.
func (s *Seeder) SeedCategory(ctx context.Context, category models.Category) (SeedReport, error) {
	var report SeedReport
	now := s.now()

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		// WithTx may replay this function after a conflict.
		report = SeedReport{Category: category}

		persisted, err := tx.ListAchievements(ctx, category)
		if err != nil {
			return err
		}
		byCode := make(map[string]models.Achievement, len(persisted))
		for _, a := range persisted {
			byCode[a.CodeName] = a
		}

		declared := s.registry.Definitions(category)
		keep := make(map[string]bool, len(declared))
		for _, d := range declared {
			keep[d.CodeName] = true
			existing, found := byCode[d.CodeName]
			if err := s.reconcile(ctx, tx, d, existing, found, now, &report); err != nil {
				return err
			}
		}

		for _, a := range persisted {
			if keep[a.CodeName] {
				continue
			}
			if err := tx.DeleteAchievement(ctx, a.ID); err != nil {
				return err
			}
			report.AchievementsDeleted++
			report.TiersDeleted += len(a.Tiers)
		}
		return nil
	})
	if err != nil {
		return SeedReport{Category: category}, fmt.Errorf("seed %s achievements: %w", category, err)
	}

	metrics.RecordSeedWrites(string(category), "achievement_created", report.AchievementsCreated)
	metrics.RecordSeedWrites(string(category), "achievement_updated", report.AchievementsUpdated)
	metrics.RecordSeedWrites(string(category), "achievement_deleted", report.AchievementsDeleted)
	metrics.RecordSeedWrites(string(category), "tier_created", report.TiersCreated)
	metrics.RecordSeedWrites(string(category), "tier_updated", report.TiersUpdated)
	metrics.RecordSeedWrites(string(category), "tier_deleted", report.TiersDeleted)

	if report.Writes() > 0 {
		s.logger.Info().
			Str("category", string(category)).
			Int("created", report.AchievementsCreated).
			Int("updated", report.AchievementsUpdated).
			Int("deleted", report.AchievementsDeleted).
			Int("tier_writes", report.TiersCreated+report.TiersUpdated+report.TiersDeleted).
			Msg("Achievement catalog reconciled")
	}
	return report, nil
}

func (s *Seeder) reconcile(ctx context.Context, tx *database.Tx, d Definition, existing models.Achievement,
	found bool, now time.Time, report *SeedReport) error {
	want := d.Achievement()

	if !found {
		want.ID = s.newID()
		if err := tx.InsertAchievement(ctx, &want, now); err != nil {
			return err
		}
		report.AchievementsCreated++
		for i := range want.Tiers {
			tier := want.Tiers[i]
			tier.ID = s.newID()
			tier.AchievementID = want.ID
			if err := tx.InsertTier(ctx, &tier, now); err != nil {
				return err
			}
			report.TiersCreated++
		}
		return nil
	}

	want.ID = existing.ID
	if want.Name != existing.Name || want.Description != existing.Description || !sameValue(want.Value, existing.Value) {
		if err := tx.UpdateAchievement(ctx, &want, now); err != nil {
			return err
		}
		report.AchievementsUpdated++
	}

	current := make(map[models.Difficulty]models.AchievementTier, len(existing.Tiers))
	for _, t := range existing.Tiers {
		current[t.Difficulty] = t
	}

	declared := make(map[models.Difficulty]bool, len(want.Tiers))
	for _, t := range want.Tiers {
		declared[t.Difficulty] = true
		have, ok := current[t.Difficulty]
		switch {
		case !ok:
			t.ID = s.newID()
			t.AchievementID = existing.ID
			if err := tx.InsertTier(ctx, &t, now); err != nil {
				return err
			}
			report.TiersCreated++
		case have.Criteria != t.Criteria:
			have.Criteria = t.Criteria
			if err := tx.UpdateTier(ctx, &have, now); err != nil {
				return err
			}
			report.TiersUpdated++
		}
	}

	for _, t := range existing.Tiers {
		if declared[t.Difficulty] {
			continue
		}
		if err := tx.DeleteTier(ctx, t.ID); err != nil {
			return err
		}
		report.TiersDeleted++
	}
	return nil
}

func sameValue(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
