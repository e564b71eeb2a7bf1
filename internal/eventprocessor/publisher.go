// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

// Publisher sends entry-mutation events to one topic.
type Publisher struct {
	publisher message.Publisher
	topic     string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a Watermill publisher.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{publisher: pub, topic: topic}
}

// PublishEntryMutated serializes and publishes one event. The event id is
// both the Watermill message UUID and the JetStream dedup id.
func (p *Publisher) PublishEntryMutated(ctx context.Context, event *models.EntryMutatedEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	data, err := Marshal(event)
	if err != nil {
		metrics.RecordEventPublished(p.topic, err)
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("category", string(event.Category))
	msg.Metadata.Set("action", string(event.Action))

	err = p.publisher.Publish(p.topic, msg)
	metrics.RecordEventPublished(p.topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventID, err)
	}
	return nil
}

// Close shuts down the underlying publisher. Safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
