// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

// Operator actions that change shared state outside the normal list flow.
const (
	EventTypeRecompute       EventType = "admin.achievements_recompute"
	EventTypeUserRebuild     EventType = "admin.user_stats_rebuild"
	EventTypePlatformRebuild EventType = "admin.platform_stats_rebuild"
	EventTypeMediaRegistered EventType = "media.registered"
	EventTypeMediaRefreshed  EventType = "media.refreshed"
	EventTypeActivityDeleted EventType = "activity.deleted"
)

// knownTypes is used to validate query filters.
var knownTypes = map[EventType]bool{
	EventTypeRecompute:       true,
	EventTypeUserRebuild:     true,
	EventTypePlatformRebuild: true,
	EventTypeMediaRegistered: true,
	EventTypeMediaRefreshed:  true,
	EventTypeActivityDeleted: true,
}

// IsKnownType reports whether t is an event type this package records.
func IsKnownType(t EventType) bool {
	return knownTypes[t]
}

// Severity indicates how much attention an event deserves.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`

	Actor  Actor   `json:"actor"`
	Target *Target `json:"target,omitempty"`
	Source Source  `json:"source"`

	Action      string          `json:"action"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

// Actor is who performed the action. There is no authentication layer, so
// API callers are identified by their address.
type Actor struct {
	ID   string `json:"id"`
	Type string `json:"type"` // client or system
}

// Target is the object of an action.
type Target struct {
	ID   string `json:"id"`
	Type string `json:"type"` // user, media or category
}

// Source is where a request came from.
type Source struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter defines filtering options for audit queries. Results are
// always newest first.
type QueryFilter struct {
	Types      []EventType `json:"types,omitempty"`
	Outcomes   []Outcome   `json:"outcomes,omitempty"`
	TargetID   string      `json:"target_id,omitempty"`
	TargetType string      `json:"target_type,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
	StartTime  *time.Time  `json:"start_time,omitempty"`
	EndTime    *time.Time  `json:"end_time,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Offset     int         `json:"offset,omitempty"`
}

// MaxQueryLimit caps a single page.
const MaxQueryLimit = 500

// DefaultQueryFilter returns the filter used when the caller sets nothing.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{Limit: 100}
}
