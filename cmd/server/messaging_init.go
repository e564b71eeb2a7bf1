// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/eventprocessor"
	"github.com/tomtom215/mediashelf/internal/logging"
)

// MessagingComponents holds the event pipeline between list mutations and
// single-user achievement recomputation.
type MessagingComponents struct {
	Publisher *eventprocessor.Publisher
	Consumer  *eventprocessor.Consumer
	Server    *eventprocessor.EmbeddedServer // nil unless NATS_EMBEDDED
}

// InitMessaging builds the transport, publisher and consumer. It returns
// nil, nil when messaging is disabled; achievements then only change on the
// periodic recompute.
func InitMessaging(cfg *config.MessagingConfig, recomputer eventprocessor.Recomputer, cache eventprocessor.Invalidator) (*MessagingComponents, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Messaging disabled, achievements update on the batch schedule only")
		return nil, nil
	}

	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())

	var embedded *eventprocessor.EmbeddedServer
	if cfg.EmbeddedServer {
		var err error
		embedded, err = eventprocessor.NewEmbeddedServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		local := *cfg
		local.URL = embedded.ClientURL()
		cfg = &local
		logging.Info().Str("url", cfg.URL).Str("store_dir", cfg.StoreDir).Msg("Embedded NATS JetStream server started")
	}

	pub, sub, err := eventprocessor.NewTransport(cfg, wmLogger)
	if err != nil {
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create %s transport: %w", cfg.Transport, err)
	}

	consumer, err := eventprocessor.NewConsumer(cfg, sub, recomputer, cache, logging.Logger(), wmLogger)
	if err != nil {
		if closeErr := pub.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Error closing event publisher")
		}
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create consumer: %w", err)
	}

	logging.Info().
		Str("transport", cfg.Transport).
		Str("topic", cfg.Topic).
		Msg("Entry event pipeline initialized")

	return &MessagingComponents{
		Publisher: eventprocessor.NewPublisher(pub, cfg.Topic),
		Consumer:  consumer,
		Server:    embedded,
	}, nil
}

// Close releases the publisher and stops the embedded server. The consumer
// is closed by its supervisor service.
func (m *MessagingComponents) Close() {
	if m == nil {
		return
	}
	if err := m.Publisher.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing event publisher")
	}
	shutdownEmbedded(m.Server)
}

func shutdownEmbedded(s *eventprocessor.EmbeddedServer) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("Embedded NATS server did not stop cleanly")
	}
}
