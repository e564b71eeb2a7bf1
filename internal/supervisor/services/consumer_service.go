// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// EventConsumer matches *eventprocessor.Consumer.
//
//   - Run(ctx) blocks until ctx is canceled or the router fails
//   - Close() stops the router and waits for in-flight handlers
type EventConsumer interface {
	Run(ctx context.Context) error
	Close() error
}

// ConsumerService runs the entry event consumer under supervision.
//
// A watermill router cannot be started twice, so a consumer that fails is
// not restarted: Serve returns suture.ErrDoNotRestart and the periodic
// recompute keeps achievements converging without it.
type ConsumerService struct {
	consumer     EventConsumer
	closeTimeout time.Duration
	logger       zerolog.Logger
}

// NewConsumerService wraps consumer. A non-positive closeTimeout uses 30s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumerService(consumer EventConsumer, closeTimeout time.Duration, logger zerolog.Logger) *ConsumerService {
	if closeTimeout <= 0 {
		closeTimeout = 30 * time.Second
	}
	return &ConsumerService{
		consumer:     consumer,
		closeTimeout: closeTimeout,
		logger:       logger.With().Str("service", "event-consumer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *ConsumerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.consumer.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Error().Err(err).Msg("Event consumer stopped, relying on periodic recompute")
		return suture.ErrDoNotRestart

	case <-ctx.Done():
		done := make(chan error, 1)
		go func() { done <- s.consumer.Close() }()

		select {
		case err := <-done:
			if err != nil {
				s.logger.Warn().Err(err).Msg("Event consumer close failed")
			}
		case <-time.After(s.closeTimeout):
			s.logger.Warn().Dur("timeout", s.closeTimeout).Msg("Event consumer close timed out")
		}
		return ctx.Err()
	}
}

func (s *ConsumerService) String() string {
	return "event-consumer"
}
