// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/achievement"
	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/models"
)

type recomputeCall struct {
	userID   string
	category models.Category
}

type fakeRecomputer struct {
	mu       sync.Mutex
	calls    []recomputeCall
	failFor  string
	panicFor string
}

func (f *fakeRecomputer) RecomputeUser(_ context.Context, userID string, category models.Category) ([]achievement.Unlock, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recomputeCall{userID, category})
	f.mu.Unlock()

	switch userID {
	case f.failFor:
		return nil, errors.New("database unavailable")
	case f.panicFor:
		panic("boom")
	}
	return []achievement.Unlock{{CodeName: "first_steps", Difficulty: models.DifficultyBronze}}, nil
}

func (f *fakeRecomputer) callsFor(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.userID == userID {
			n++
		}
	}
	return n
}

type signalingInvalidator struct {
	users chan string
}

func (s *signalingInvalidator) InvalidateUser(userID string) {
	s.users <- userID
}

func testMessagingConfig() *config.MessagingConfig {
	return &config.MessagingConfig{
		Enabled:              true,
		Transport:            "memory",
		Topic:                "entry.mutated",
		RetryCount:           2,
		RetryInitialInterval: time.Millisecond,
		CloseTimeout:         time.Second,
		HandlerTimeout:       time.Second,
	}
}

func testEvent(id, userID string) *models.EntryMutatedEvent {
	return &models.EntryMutatedEvent{
		EventID:    id,
		Action:     models.ActionAdd,
		UserID:     userID,
		Category:   models.CategoryAnime,
		MediaID:    "a1",
		Completed:  true,
		OccurredAt: time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC),
	}
}

// startConsumer runs a consumer over a fresh GoChannel and returns the
// publisher side.
func startConsumer(t *testing.T, rec Recomputer, inv Invalidator) (*Publisher, message.Publisher) {
	t.Helper()
	cfg := testMessagingConfig()

	pub, sub, err := NewTransport(cfg, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	consumer, err := NewConsumer(cfg, sub, rec, inv, zerolog.Nop(), watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		pub.Close() //nolint:errcheck
	})

	select {
	case <-consumer.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not start")
	}
	return NewPublisher(pub, cfg.Topic), pub
}

func waitForUser(t *testing.T, users <-chan string, want string) {
	t.Helper()
	select {
	case got := <-users:
		if got != want {
			t.Fatalf("invalidated %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestConsumer_RecomputesAndInvalidates(t *testing.T) {
	rec := &fakeRecomputer{}
	inv := &signalingInvalidator{users: make(chan string, 4)}
	publisher, _ := startConsumer(t, rec, inv)

	if err := publisher.PublishEntryMutated(context.Background(), testEvent("e1", "u1")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitForUser(t, inv.users, "u1")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 || rec.calls[0] != (recomputeCall{"u1", models.CategoryAnime}) {
		t.Errorf("calls = %+v", rec.calls)
	}
}

func TestConsumer_MalformedPayloadIsAcked(t *testing.T) {
	rec := &fakeRecomputer{}
	inv := &signalingInvalidator{users: make(chan string, 4)}
	publisher, raw := startConsumer(t, rec, inv)

	if err := raw.Publish("entry.mutated", message.NewMessage(watermill.NewUUID(), []byte("{not json"))); err != nil {
		t.Fatalf("publish raw: %v", err)
	}
	data := []byte(`{"event_id":"e2","action":"add","user_id":"u2","category":"podcasts","media_id":"p1"}`)
	if err := raw.Publish("entry.mutated", message.NewMessage("e2", data)); err != nil {
		t.Fatalf("publish raw: %v", err)
	}

	// A later valid event still gets through.
	if err := publisher.PublishEntryMutated(context.Background(), testEvent("e3", "u3")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	waitForUser(t, inv.users, "u3")

	if n := rec.callsFor("u2"); n != 0 {
		t.Errorf("malformed event reached the recomputer %d times", n)
	}
}

func TestConsumer_DropsAfterRetries(t *testing.T) {
	rec := &fakeRecomputer{failFor: "u1", panicFor: "u2"}
	inv := &signalingInvalidator{users: make(chan string, 4)}
	publisher, _ := startConsumer(t, rec, inv)

	ctx := context.Background()
	for i, user := range []string{"u1", "u2", "u3"} {
		if err := publisher.PublishEntryMutated(ctx, testEvent(string(rune('a'+i)), user)); err != nil {
			t.Fatalf("publish %s: %v", user, err)
		}
	}
	waitForUser(t, inv.users, "u3")

	// Errors get one attempt plus RetryCount retries. A panic is recovered
	// outside the retry middleware and dropped at once.
	ok := eventually(func() bool { return rec.callsFor("u1") == 3 && rec.callsFor("u2") == 1 })
	if !ok {
		t.Errorf("attempts: u1 = %d (want 3), u2 = %d (want 1)", rec.callsFor("u1"), rec.callsFor("u2"))
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestPublisher_RejectsInvalidEvent(t *testing.T) {
	pub, _, err := NewTransport(testMessagingConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	p := NewPublisher(pub, "entry.mutated")

	ev := testEvent("", "u1")
	if err := p.PublishEntryMutated(context.Background(), ev); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := p.PublishEntryMutated(context.Background(), testEvent("e1", "u1")); err == nil {
		t.Error("publish after close should fail")
	}
}

func TestNewTransport_UnknownTransport(t *testing.T) {
	cfg := testMessagingConfig()
	cfg.Transport = "kafka"
	if _, _, err := NewTransport(cfg, nil); err == nil {
		t.Error("expected an error for an unknown transport")
	}
}
