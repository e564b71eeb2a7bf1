// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mediashelf/internal/database"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/models"
)

var (
	// ErrMediaNotFound means neither the local store nor the remote knows the media.
	ErrMediaNotFound = errors.New("media not found")

	// ErrRemoteDisabled is returned by Refresh when no remote is configured.
	ErrRemoteDisabled = errors.New("remote catalog disabled")

	// ErrInvalidMedia wraps metadata that cannot be stored.
	ErrInvalidMedia = errors.New("invalid media metadata")
)

// Store is the local metadata persistence used by the resolver.
type Store interface {
	GetMedia(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error)
	UpsertMedia(ctx context.Context, media *models.MediaMetadata, source database.MediaSource) error
}

// Fetcher retrieves metadata from outside the service.
type Fetcher interface {
	Fetch(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error)
}

// Resolver looks media up locally first and falls back to the remote
// fetcher, persisting whatever the remote returns.
type Resolver struct {
	store  Store
	remote Fetcher // nil when the remote is disabled
	logger zerolog.Logger
}

// NewResolver creates a resolver. remote may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResolver(store Store, remote Fetcher, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		remote: remote,
		logger: logging.Component(logger, "catalog"),
	}
}

// Resolve returns metadata for the media, fetching it remotely when the
// local store does not have it.
func (r *Resolver) Resolve(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	media, err := r.store.GetMedia(ctx, category, mediaID)
	if err == nil {
		return media, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if r.remote == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrMediaNotFound, category, mediaID)
	}
	return r.fetchAndStore(ctx, category, mediaID)
}

// Refresh re-fetches metadata from the remote even when it is stored locally.
func (r *Resolver) Refresh(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	if r.remote == nil {
		return nil, ErrRemoteDisabled
	}
	return r.fetchAndStore(ctx, category, mediaID)
}

// Register stores locally supplied metadata.
func (r *Resolver) Register(ctx context.Context, media *models.MediaMetadata) error {
	if err := Validate(media); err != nil {
		return err
	}
	if err := r.store.UpsertMedia(ctx, media, database.MediaSourceLocal); err != nil {
		return err
	}
	r.logger.Debug().Str("category", string(media.Category)).Str("media_id", media.ID).Msg("Media registered")
	return nil
}

func (r *Resolver) fetchAndStore(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	media, err := r.remote.Fetch(ctx, category, mediaID)
	if err != nil {
		if !errors.Is(err, ErrMediaNotFound) {
			r.logger.Warn().Err(err).Str("category", string(category)).Str("media_id", mediaID).Msg("Remote metadata lookup failed")
		}
		return nil, err
	}
	if err := Validate(media); err != nil {
		return nil, err
	}
	if err := r.store.UpsertMedia(ctx, media, database.MediaSourceRemote); err != nil {
		return nil, fmt.Errorf("failed to persist remote metadata: %w", err)
	}
	r.logger.Info().Str("category", string(category)).Str("media_id", mediaID).Msg("Media fetched from remote catalog")
	return media, nil
}

// Validate checks the structural constraints the delta calculators rely on.
func Validate(media *models.MediaMetadata) error {
	if media == nil {
		return fmt.Errorf("%w: nil", ErrInvalidMedia)
	}
	if media.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidMedia)
	}
	if !media.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMedia, media.Category)
	}
	if media.Duration < 0 || media.TotalUnits < 0 {
		return fmt.Errorf("%w: negative duration or units", ErrInvalidMedia)
	}
	for i, eps := range media.Seasons {
		if eps < 0 {
			return fmt.Errorf("%w: season %d has negative episode count", ErrInvalidMedia, i+1)
		}
	}
	for _, c := range media.Classifications {
		if c.Value == "" {
			return fmt.Errorf("%w: empty %s classification", ErrInvalidMedia, c.Dimension)
		}
		switch c.Dimension {
		case models.DimensionGenre, models.DimensionPerson, models.DimensionNetwork:
		default:
			return fmt.Errorf("%w: classification dimension %q", ErrInvalidMedia, c.Dimension)
		}
	}
	return nil
}
