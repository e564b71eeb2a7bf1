// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditPruner deletes audit events past their retention period.
type AuditPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// AuditRetentionService prunes the audit trail on a fixed interval. A
// failed prune is logged and retried on the next tick.
type AuditRetentionService struct {
	pruner   AuditPruner
	interval time.Duration
	logger   zerolog.Logger
}

// NewAuditRetentionService creates the pruner service. A non-positive
// interval uses 24h.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAuditRetentionService(pruner AuditPruner, interval time.Duration, logger zerolog.Logger) *AuditRetentionService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AuditRetentionService{
		pruner:   pruner,
		interval: interval,
		logger:   logger.With().Str("service", "audit-retention").Logger(),
	}
}

// Serve implements suture.Service.
func (s *AuditRetentionService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.pruner.Prune(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Audit retention cleanup failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int64("deleted", n).Msg("Cleaned up old audit events")
			}
		}
	}
}

func (s *AuditRetentionService) String() string {
	return "audit-retention"
}
