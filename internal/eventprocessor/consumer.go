// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/achievement"
	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

const handlerName = "achievement-recompute"

// Recomputer re-evaluates one user's tiers for a category.
// Implemented by achievement.Updater.
type Recomputer interface {
	RecomputeUser(ctx context.Context, userID string, category models.Category) ([]achievement.Unlock, error)
}

// Invalidator drops a user's cached reads.
type Invalidator interface {
	InvalidateUser(userID string)
}

// Consumer runs a Watermill router that turns entry events into
// single-user achievement recomputation.
type Consumer struct {
	router     *message.Router
	topic      string
	recomputer Recomputer
	cache      Invalidator
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewConsumer wires the router, middleware and handler. cache may be nil.
func NewConsumer(
	cfg *config.MessagingConfig,
	sub message.Subscriber,
	recomputer Recomputer,
	cache Invalidator,
	logger zerolog.Logger,
	wmLogger watermill.LoggerAdapter,
) (*Consumer, error) {
	if wmLogger == nil {
		wmLogger = watermill.NopLogger{}
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	c := &Consumer{
		router:     router,
		topic:      cfg.Topic,
		recomputer: recomputer,
		cache:      cache,
		timeout:    cfg.HandlerTimeout,
		logger:     logging.Component(logger, "event_consumer"),
	}
	if c.timeout <= 0 {
		c.timeout = 30 * time.Second
	}

	// Outer to inner: give up, recover panics, retry.
	router.AddMiddleware(c.dropAfterRetries)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      cfg.RetryCount,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     10 * cfg.RetryInitialInterval,
		Multiplier:      2,
		Logger:          wmLogger,
	}.Middleware)

	router.AddConsumerHandler(handlerName, cfg.Topic, sub, c.handle)
	return c, nil
}

// Run blocks until ctx is canceled or the router is closed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().Str("topic", c.topic).Msg("Entry event consumer starting")
	if err := c.router.Run(ctx); err != nil {
		return fmt.Errorf("run router: %w", err)
	}
	return nil
}

// Running is closed once the handler is subscribed.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close stops the router and waits for in-flight handlers.
func (c *Consumer) Close() error {
	return c.router.Close()
}

func (c *Consumer) handle(msg *message.Message) error {
	event, err := Unmarshal(msg.Payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Discarding malformed entry event")
		metrics.RecordEventConsumed(c.topic, err)
		return nil
	}

	ctx, cancel := context.WithTimeout(msg.Context(), c.timeout)
	defer cancel()

	unlocks, err := c.recomputer.RecomputeUser(ctx, event.UserID, event.Category)
	if err != nil {
		return fmt.Errorf("recompute %s/%s: %w", event.UserID, event.Category, err)
	}
	if c.cache != nil {
		c.cache.InvalidateUser(event.UserID)
	}
	metrics.RecordEventConsumed(c.topic, nil)

	for _, un := range unlocks {
		c.logger.Info().
			Str("user_id", event.UserID).
			Str("achievement", un.CodeName).
			Str("difficulty", string(un.Difficulty)).
			Msg("Achievement tier unlocked")
	}
	return nil
}

// dropAfterRetries acks a message whose handler still fails once the retry
// middleware has given up. The next batch pass covers the lost update.
func (c *Consumer) dropAfterRetries(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, context.Canceled) && msg.Context().Err() != nil {
			return nil, err
		}
		c.logger.Error().Err(err).Str("message_id", msg.UUID).Msg("Dropping entry event after retries")
		metrics.RecordEventConsumed(c.topic, err)
		return nil, nil
	}
}
