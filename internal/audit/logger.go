// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package audit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
)

// ErrDisabled is returned by queries when audit logging is off.
var ErrDisabled = errors.New("audit logging is disabled")

// Logger records audit events asynchronously. A nil *Logger is valid and
// records nothing.
type Logger struct {
	cfg    config.AuditConfig
	store  Store
	events chan *Event

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup

	dropped atomic.Int64
}

// NewLogger starts the async writer. Returns nil when auditing is disabled.
func NewLogger(store Store, cfg *config.AuditConfig) *Logger {
	if cfg == nil || !cfg.Enabled || store == nil {
		return nil
	}
	c := *cfg
	if c.BufferSize <= 0 {
		c.BufferSize = 1000
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}

	l := &Logger{
		cfg:    c,
		store:  store,
		events: make(chan *Event, c.BufferSize),
		stop:   make(chan struct{}),
	}
	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stop:
			for {
				select {
				case event := <-l.events:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.events:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.cfg.LogToStdout {
		if data, err := json.Marshal(event); err == nil {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		metrics.RecordAuditEvent(string(event.Type), "error")
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
		return
	}
	metrics.RecordAuditEvent(string(event.Type), "saved")
}

// Log queues an event. It never blocks: a full buffer drops the event.
func (l *Logger) Log(event *Event) {
	if l == nil || event == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case l.events <- event:
	default:
		l.dropped.Add(1)
		metrics.RecordAuditEvent(string(event.Type), "dropped")
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit event buffer full, dropping event")
	}
}

// RecordRequest logs an operator action taken through the API. A non-nil
// err marks the event as a failure.
func (l *Logger) RecordRequest(r *http.Request, eventType EventType, target *Target, err error, metadata map[string]interface{}) {
	if l == nil {
		return
	}
	source := SourceFromRequest(r)
	event := &Event{
		Type:          eventType,
		Severity:      SeverityInfo,
		Outcome:       OutcomeSuccess,
		Actor:         Actor{ID: source.IPAddress, Type: "client"},
		Target:        target,
		Source:        source,
		Action:        actions[eventType],
		Description:   descriptions[eventType],
		RequestID:     logging.RequestIDFromContext(r.Context()),
		CorrelationID: logging.CorrelationIDFromContext(r.Context()),
	}
	if err != nil {
		event.Severity = SeverityWarning
		event.Outcome = OutcomeFailure
		event.Description += ": " + err.Error()
	}
	if len(metadata) > 0 {
		event.Metadata = mustJSON(metadata)
	}
	l.Log(event)
}

// Query returns stored events. Queued events may not be visible yet.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, int64, error) {
	if l == nil {
		return nil, 0, ErrDisabled
	}
	total, err := l.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	events, err := l.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Prune deletes events older than the retention period.
func (l *Logger) Prune(ctx context.Context) (int64, error) {
	if l == nil {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -l.cfg.RetentionDays)
	return l.store.Delete(ctx, cutoff)
}

// Dropped returns how many events were lost to a full buffer.
func (l *Logger) Dropped() int64 {
	if l == nil {
		return 0
	}
	return l.dropped.Load()
}

// Close flushes queued events and stops the writer. Safe to call twice.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.stopOnce.Do(func() { close(l.stop) })
	l.wg.Wait()
	return nil
}

var actions = map[EventType]string{
	EventTypeRecompute:       "recompute",
	EventTypeUserRebuild:     "rebuild",
	EventTypePlatformRebuild: "rebuild",
	EventTypeMediaRegistered: "register",
	EventTypeMediaRefreshed:  "refresh",
	EventTypeActivityDeleted: "delete",
}

var descriptions = map[EventType]string{
	EventTypeRecompute:       "Achievement tiers recomputed",
	EventTypeUserRebuild:     "User stats rebuilt from entries",
	EventTypePlatformRebuild: "Platform stats rebuilt from entries",
	EventTypeMediaRegistered: "Media metadata registered",
	EventTypeMediaRefreshed:  "Media metadata refreshed from remote catalog",
	EventTypeActivityDeleted: "Activity history deleted",
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// SourceFromRequest extracts the client address. RemoteAddr is expected to
// have been rewritten by the RealIP middleware already.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Source{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
