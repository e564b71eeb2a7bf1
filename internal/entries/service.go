// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package entries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/catalog"
	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/delta"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

// MediaResolver supplies metadata for the media being mutated.
type MediaResolver interface {
	Resolve(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error)
}

// Publisher announces committed mutations.
type Publisher interface {
	PublishEntryMutated(ctx context.Context, event *models.EntryMutatedEvent) error
}

// Invalidator drops cached reads.
type Invalidator interface {
	InvalidateUser(userID string)
	InvalidatePlatform()
}

// Change is the "what changed" payload of one committed mutation.
type Change struct {
	Action   models.MutationAction `json:"action"`
	UserID   string                `json:"user_id"`
	Category models.Category       `json:"category"`
	MediaID  string                `json:"media_id"`

	Before *models.UserMediaEntry `json:"before"`
	After  *models.UserMediaEntry `json:"after"`
	Delta  *models.DeltaStats     `json:"delta"`

	UserStats     *models.AggregatedStats  `json:"user_stats"`
	PlatformStats *models.AggregatedStats  `json:"platform_stats"`
	Activity      *models.ActivityLogEntry `json:"activity,omitempty"`
}

// Service applies list mutations. Each mutation writes the entry, the user
// and platform aggregate rows and the activity log in one transaction.
type Service struct {
	db          *database.DB
	calculators *delta.Registry
	media       MediaResolver
	publisher   Publisher
	cache       Invalidator
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates the mutation service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(db *database.DB, calculators *delta.Registry, media MediaResolver, logger zerolog.Logger) *Service {
	return &Service{
		db:          db,
		calculators: calculators,
		media:       media,
		logger:      logging.Component(logger, "entries"),
		now:         time.Now,
	}
}

// SetPublisher sets where committed mutations are announced.
func (s *Service) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetInvalidator sets the cache to invalidate after each mutation.
func (s *Service) SetInvalidator(c Invalidator) {
	s.cache = c
}

// Add puts a media item in the user's list.
func (s *Service) Add(ctx context.Context, userID string, category models.Category, mediaID string, in Input) (*Change, error) {
	return s.mutate(ctx, models.ActionAdd, userID, category, mediaID,
		func(old *models.UserMediaEntry, now time.Time) (*models.UserMediaEntry, error) {
			if old != nil {
				return nil, fmt.Errorf("%w: %s/%s", ErrAlreadyInList, category, mediaID)
			}
			next := in.entry(userID, category, mediaID)
			next.AddedAt = now
			next.UpdatedAt = now
			return next, nil
		})
}

// Update changes fields of an entry already in the user's list.
func (s *Service) Update(ctx context.Context, userID string, category models.Category, mediaID string, patch Patch) (*Change, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	return s.mutate(ctx, models.ActionUpdate, userID, category, mediaID,
		func(old *models.UserMediaEntry, now time.Time) (*models.UserMediaEntry, error) {
			if old == nil {
				return nil, fmt.Errorf("%w: %s/%s", ErrNotInList, category, mediaID)
			}
			next := old.Clone()
			patch.applyTo(next)
			next.UpdatedAt = now
			return next, nil
		})
}

// Remove deletes an entry from the user's list. Activity history is kept.
func (s *Service) Remove(ctx context.Context, userID string, category models.Category, mediaID string) (*Change, error) {
	return s.mutate(ctx, models.ActionRemove, userID, category, mediaID,
		func(old *models.UserMediaEntry, _ time.Time) (*models.UserMediaEntry, error) {
			if old == nil {
				return nil, fmt.Errorf("%w: %s/%s", ErrNotInList, category, mediaID)
			}
			return nil, nil
		})
}

// buildFunc derives the next state from the stored one. A nil result
// removes the entry.
type buildFunc func(old *models.UserMediaEntry, now time.Time) (*models.UserMediaEntry, error)

func (s *Service) mutate(ctx context.Context, action models.MutationAction, userID string, category models.Category, mediaID string, build buildFunc) (*Change, error) {
	start := time.Now()

	change, err := s.commit(ctx, action, userID, category, mediaID, build)
	metrics.RecordEntryMutation(string(action), string(category), time.Since(start), err)
	if err != nil {
		if !IsValidation(err) {
			s.logger.Error().Err(err).
				Str("action", string(action)).
				Str("user_id", userID).
				Str("category", string(category)).
				Str("media_id", mediaID).
				Msg("List mutation failed")
		}
		return nil, err
	}

	s.afterCommit(ctx, change)
	return change, nil
}

func (s *Service) commit(ctx context.Context, action models.MutationAction, userID string, category models.Category, mediaID string, build buildFunc) (*Change, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrMediaNotFound, category)
	}

	resolved, err := s.media.Resolve(ctx, category, mediaID)
	if errors.Is(err, catalog.ErrMediaNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrMediaNotFound, category, mediaID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media: %w", err)
	}

	var change *Change
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		change = nil
		now := s.now().UTC()

		// Deltas must use the metadata the stats rows were last measured
		// with, so a concurrent metadata replacement is read back here.
		media, err := tx.GetMedia(ctx, category, mediaID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			media = resolved
		case err != nil:
			return err
		}

		old, err := tx.GetEntry(ctx, userID, category, mediaID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			old = nil
		case err != nil:
			return err
		}

		next, err := build(old, now)
		if err != nil {
			return err
		}
		if next != nil {
			if err := s.calculators.Prepare(old, next, media); err != nil {
				return err
			}
			if err := checkFields(next); err != nil {
				return err
			}
		}

		d, err := s.calculators.Compute(old, next, media)
		if err != nil {
			return err
		}

		if next != nil {
			err = tx.PutEntry(ctx, next)
		} else {
			err = tx.DeleteEntry(ctx, userID, category, mediaID)
		}
		if err != nil {
			return err
		}

		userStats, err := tx.ApplyDelta(ctx, models.UserScope(userID, category), d, now)
		if err != nil {
			return fmt.Errorf("apply user stats: %w", err)
		}
		platformStats, err := tx.ApplyDelta(ctx, models.PlatformScope(category), d, now)
		if err != nil {
			return fmt.Errorf("apply platform stats: %w", err)
		}

		act, err := s.calculators.Activity(old, next, media)
		if err != nil {
			return err
		}
		var logged *models.ActivityLogEntry
		if !act.IsEmpty() {
			logged = &models.ActivityLogEntry{
				UserID:         userID,
				MediaID:        mediaID,
				Category:       category,
				Bucket:         models.ActivityBucket(now),
				SpecificGained: act.SpecificGained,
				IsCompleted:    act.Completed,
				IsRedo:         act.Redo,
				UpdatedAt:      now,
			}
			if err := tx.LogActivity(ctx, *logged); err != nil {
				return err
			}
		}

		change = &Change{
			Action:        action,
			UserID:        userID,
			Category:      category,
			MediaID:       mediaID,
			Before:        old,
			After:         next,
			Delta:         d,
			UserStats:     userStats,
			PlatformStats: platformStats,
			Activity:      logged,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// afterCommit runs side effects that must not undo a committed mutation.
func (s *Service) afterCommit(ctx context.Context, change *Change) {
	if s.cache != nil {
		s.cache.InvalidateUser(change.UserID)
		s.cache.InvalidatePlatform()
	}
	if s.publisher == nil {
		return
	}

	event := &models.EntryMutatedEvent{
		EventID:    uuid.NewString(),
		Action:     change.Action,
		UserID:     change.UserID,
		Category:   change.Category,
		MediaID:    change.MediaID,
		Completed:  change.Activity != nil && change.Activity.IsCompleted,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishEntryMutated(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn().Err(err).
			Str("user_id", change.UserID).
			Str("category", string(change.Category)).
			Msg("Failed to publish entry mutation")
	}
}
