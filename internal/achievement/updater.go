// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

// Store is the persistence the updater needs. *database.DB implements it.
type Store interface {
	ListAchievements(ctx context.Context, category *models.Category) ([]models.Achievement, error)
	CountQualifying(ctx context.Context, q models.CriteriaQuery) ([]models.UserCount, error)
	ApplyTierResults(ctx context.Context, tierID string, rows []models.UserAchievementProgress, calculatedAt time.Time) error
	UpsertProgress(ctx context.Context, rows []models.UserAchievementProgress) error
	ListUserProgress(ctx context.Context, userID string, category *models.Category) (map[string]models.UserAchievementProgress, error)
	HighestTiers(ctx context.Context, userID string, category *models.Category) ([]models.UserHighestTier, error)
}

// TierFailure records a tier that could not be evaluated during a pass.
type TierFailure struct {
	CodeName   string            `json:"code_name"`
	Category   models.Category   `json:"category"`
	Difficulty models.Difficulty `json:"difficulty"`
	Error      string            `json:"error"`
}

// PassReport summarizes a batch recomputation.
type PassReport struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Tiers       int           `json:"tiers"`
	UsersScored int           `json:"users_scored"`
	Failures    []TierFailure `json:"failures,omitempty"`
}

// Unlock is a tier a user completed during a single-user recomputation.
type Unlock struct {
	AchievementID string            `json:"achievement_id"`
	CodeName      string            `json:"code_name"`
	Name          string            `json:"name"`
	Category      models.Category   `json:"category"`
	TierID        string            `json:"tier_id"`
	Difficulty    models.Difficulty `json:"difficulty"`
}

// Updater evaluates tiers and writes per-user progress.
type Updater struct {
	store       Store
	registry    *Registry
	tierTimeout time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewUpdater creates an updater. tierTimeout bounds the evaluation of a
// single tier; zero disables it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewUpdater(store Store, registry *Registry, tierTimeout time.Duration, logger zerolog.Logger) *Updater {
	return &Updater{
		store:       store,
		registry:    registry,
		tierTimeout: tierTimeout,
		logger:      logging.Component(logger, "achievement_updater"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// UpdateTier evaluates one tier for every user in a single set-based query
// and stores the result. Users that no longer qualify are recalculated to
// zero. It returns the number of users with a positive count.
func (u *Updater) UpdateTier(ctx context.Context, a models.Achievement, tier models.AchievementTier) (int, error) {
	strategy, err := u.registry.Strategy(a.Category, a.CodeName)
	if err != nil {
		return 0, err
	}
	q, err := strategy.Query(a, tier, "")
	if err != nil {
		return 0, err
	}

	counts, err := u.store.CountQualifying(ctx, q)
	if err != nil {
		return 0, err
	}

	calculatedAt := u.now()
	rows := make([]models.UserAchievementProgress, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, progressRow(c.UserID, tier, c.Count, calculatedAt))
	}
	if err := u.store.ApplyTierResults(ctx, tier.ID, rows, calculatedAt); err != nil {
		return 0, err
	}
	return len(counts), nil
}

// RecomputeAll runs a batch pass over every tier, optionally restricted to
// one category. Each tier is evaluated under its own timeout and
// transaction; a failing tier is logged and skipped. Only cancellation of
// ctx stops the pass early.
func (u *Updater) RecomputeAll(ctx context.Context, category *models.Category) (*PassReport, error) {
	report := &PassReport{StartedAt: u.now()}
	start := time.Now()

	achievements, err := u.store.ListAchievements(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}

	for _, a := range achievements {
		for _, tier := range a.Tiers {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}

			report.Tiers++
			tierStart := time.Now()
			users, err := u.updateTierWithTimeout(ctx, a, tier)
			metrics.RecordRecomputeTier(string(a.Category), time.Since(tierStart), err)
			if err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					report.Duration = time.Since(start)
					return report, ctx.Err()
				}
				u.logger.Error().Err(err).
					Str("achievement", a.CodeName).
					Str("category", string(a.Category)).
					Str("difficulty", string(tier.Difficulty)).
					Msg("Tier recomputation failed, continuing")
				report.Failures = append(report.Failures, TierFailure{
					CodeName:   a.CodeName,
					Category:   a.Category,
					Difficulty: tier.Difficulty,
					Error:      err.Error(),
				})
				continue
			}
			report.UsersScored += users
		}
	}

	report.Duration = time.Since(start)
	label := "all"
	if category != nil {
		label = string(*category)
	}
	metrics.RecordRecomputePass(label, report.Duration)

	u.logger.Info().
		Str("category", label).
		Int("tiers", report.Tiers).
		Int("failed", len(report.Failures)).
		Dur("duration", report.Duration).
		Msg("Achievement recomputation pass complete")
	return report, nil
}

func (u *Updater) updateTierWithTimeout(ctx context.Context, a models.Achievement, tier models.AchievementTier) (int, error) {
	if u.tierTimeout <= 0 {
		return u.UpdateTier(ctx, a, tier)
	}
	tierCtx, cancel := context.WithTimeout(ctx, u.tierTimeout)
	defer cancel()
	return u.UpdateTier(tierCtx, a, tier)
}

// RecomputeUser evaluates every tier of a category for one user and returns
// the tiers that became completed. Tier failures are logged and skipped like
// in the batch pass.
func (u *Updater) RecomputeUser(ctx context.Context, userID string, category models.Category) ([]Unlock, error) {
	achievements, err := u.store.ListAchievements(ctx, &category)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	before, err := u.store.ListUserProgress(ctx, userID, &category)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	calculatedAt := u.now()
	var rows []models.UserAchievementProgress
	var unlocks []Unlock

	for _, a := range achievements {
		strategy, err := u.registry.Strategy(a.Category, a.CodeName)
		if err != nil {
			u.logger.Error().Err(err).Str("achievement", a.CodeName).Msg("Skipping unregistered achievement")
			continue
		}
		for _, tier := range a.Tiers {
			count, err := u.userCount(ctx, strategy, a, tier, userID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				u.logger.Error().Err(err).
					Str("user_id", userID).
					Str("achievement", a.CodeName).
					Str("difficulty", string(tier.Difficulty)).
					Msg("Tier evaluation failed, continuing")
				continue
			}

			row := progressRow(userID, tier, count, calculatedAt)
			if prev, ok := before[tier.ID]; !ok && count == 0 {
				// Never evaluated and nothing to show yet.
				continue
			} else if row.Completed && !prev.Completed {
				unlocks = append(unlocks, Unlock{
					AchievementID: a.ID,
					CodeName:      a.CodeName,
					Name:          a.Name,
					Category:      a.Category,
					TierID:        tier.ID,
					Difficulty:    tier.Difficulty,
				})
			}
			rows = append(rows, row)
		}
	}

	if err := u.store.UpsertProgress(ctx, rows); err != nil {
		return nil, fmt.Errorf("store progress: %w", err)
	}
	for _, un := range unlocks {
		metrics.RecordUnlock(string(un.Category), string(un.Difficulty))
	}
	return unlocks, nil
}

func (u *Updater) userCount(ctx context.Context, strategy Strategy, a models.Achievement, tier models.AchievementTier, userID string) (int64, error) {
	q, err := strategy.Query(a, tier, userID)
	if err != nil {
		return 0, err
	}
	if u.tierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.tierTimeout)
		defer cancel()
	}
	counts, err := u.store.CountQualifying(ctx, q)
	if err != nil {
		return 0, err
	}
	for _, c := range counts {
		if c.UserID == userID {
			return c.Count, nil
		}
	}
	return 0, nil
}

// progressRow evaluates a count against a tier. CompletedAt is left nil:
// the store stamps it on the first completed write and keeps it afterwards.
func progressRow(userID string, tier models.AchievementTier, count int64, calculatedAt time.Time) models.UserAchievementProgress {
	progress, completed := Evaluate(count, tier.Criteria)
	return models.UserAchievementProgress{
		UserID:           userID,
		TierID:           tier.ID,
		Count:            count,
		Progress:         progress,
		Completed:        completed,
		LastCalculatedAt: calculatedAt,
	}
}

// UserAchievements returns the catalog with the user's progress per tier and
// the highest completed tier of each achievement.
func (u *Updater) UserAchievements(ctx context.Context, userID string, category *models.Category) ([]models.AchievementView, error) {
	achievements, err := u.store.ListAchievements(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	progress, err := u.store.ListUserProgress(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	highest, err := u.store.HighestTiers(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("highest tiers: %w", err)
	}
	return BuildViews(achievements, progress, highest), nil
}

// BuildViews joins the catalog with a user's progress rows and highest tiers.
func BuildViews(achievements []models.Achievement, progress map[string]models.UserAchievementProgress,
	highest []models.UserHighestTier) []models.AchievementView {
	best := make(map[string]models.Difficulty, len(highest))
	for _, h := range highest {
		best[h.AchievementID] = h.Difficulty
	}

	views := make([]models.AchievementView, 0, len(achievements))
	for _, a := range achievements {
		v := models.AchievementView{
			ID:          a.ID,
			CodeName:    a.CodeName,
			Name:        a.Name,
			Description: a.Description,
			Category:    a.Category,
			Tiers:       make([]models.TierProgressView, 0, len(a.Tiers)),
		}
		for _, t := range a.Tiers {
			tv := models.TierProgressView{AchievementTier: t}
			if p, ok := progress[t.ID]; ok {
				p := p
				tv.Progress = &p
			}
			v.Tiers = append(v.Tiers, tv)
		}
		if d, ok := best[a.ID]; ok {
			d := d
			v.HighestTier = &d
		}
		views = append(views, v)
	}
	return views
}
