// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package models

import "time"

// MutationAction names the transition a list mutation performed.
type MutationAction string

const (
	ActionAdd    MutationAction = "add"
	ActionUpdate MutationAction = "update"
	ActionRemove MutationAction = "remove"
)

// EntryMutatedEvent is published after a list mutation commits.
type EntryMutatedEvent struct {
	EventID    string         `json:"event_id"`
	Action     MutationAction `json:"action"`
	UserID     string         `json:"user_id"`
	Category   Category       `json:"category"`
	MediaID    string         `json:"media_id"`
	Completed  bool           `json:"completed"`
	OccurredAt time.Time      `json:"occurred_at"`
}
