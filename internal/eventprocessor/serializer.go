// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediashelf/internal/models"
)

// ErrInvalidEvent marks a payload that can never be processed.
var ErrInvalidEvent = errors.New("invalid entry event")

// Marshal converts an event to JSON bytes.
func Marshal(event *models.EntryMutatedEvent) ([]byte, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal converts JSON bytes to an event and validates it.
func Unmarshal(data []byte) (*models.EntryMutatedEvent, error) {
	var event models.EntryMutatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := validateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

func validateEvent(event *models.EntryMutatedEvent) error {
	switch {
	case event == nil:
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	case event.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case event.UserID == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	case event.MediaID == "":
		return fmt.Errorf("%w: media_id is required", ErrInvalidEvent)
	case !event.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEvent, event.Category)
	}

	switch event.Action {
	case models.ActionAdd, models.ActionUpdate, models.ActionRemove:
		return nil
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, event.Action)
	}
}
