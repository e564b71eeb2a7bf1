// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/achievement"
	"github.com/tomtom215/mediashelf/internal/models"
)

// BatchRecomputer runs a full achievement pass.
type BatchRecomputer interface {
	RecomputeAll(ctx context.Context, category *models.Category) (*achievement.PassReport, error)
}

// AchievementInvalidator drops cached achievement views.
type AchievementInvalidator interface {
	InvalidateAchievements()
}

// RecomputeServiceConfig controls the periodic pass.
type RecomputeServiceConfig struct {
	// RunOnStartup runs a pass as soon as the service starts.
	RunOnStartup bool

	// Interval between passes. Default: 1h
	Interval time.Duration

	// Timeout bounds one pass. Default: 30m
	Timeout time.Duration
}

// RecomputeService re-evaluates every achievement tier on a schedule. A
// failed pass is logged and retried at the next tick; the service itself
// only stops with its context.
type RecomputeService struct {
	recomputer BatchRecomputer
	cache      AchievementInvalidator
	config     RecomputeServiceConfig
	logger     zerolog.Logger
	name       string
}

// NewRecomputeService creates the scheduler. cache may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecomputeService(recomputer BatchRecomputer, cache AchievementInvalidator, cfg RecomputeServiceConfig, logger zerolog.Logger) *RecomputeService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &RecomputeService{
		recomputer: recomputer,
		cache:      cache,
		config:     cfg,
		logger:     logger.With().Str("service", "achievement-recompute").Logger(),
		name:       "achievement-recompute",
	}
}

// Serve implements suture.Service.
func (s *RecomputeService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Achievement recompute scheduler starting")

	if s.config.RunOnStartup {
		s.runPass(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Achievement recompute scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *RecomputeService) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	report, err := s.recomputer.RecomputeAll(passCtx, nil)
	// Even a partial pass may have changed progress rows.
	if s.cache != nil {
		s.cache.InvalidateAchievements()
	}
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Achievement recompute pass failed")
		}
		return
	}

	event := s.logger.Info()
	if len(report.Failures) > 0 {
		event = s.logger.Warn().Int("failures", len(report.Failures))
	}
	event.
		Int("tiers", report.Tiers).
		Int("users_scored", report.UsersScored).
		Dur("duration", report.Duration).
		Msg("Achievement recompute pass complete")
}

// String implements fmt.Stringer for suture logs.
func (s *RecomputeService) String() string {
	return s.name
}
