// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/logging"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

const breakerName = "catalog-remote"

// errRemoteNotFound is a definitive answer from the remote and does not count
// against the breaker.
var errRemoteNotFound = errors.New("remote: media not found")

// RemoteClient fetches media metadata from an external catalog service.
//
// GET {base}/media/{category}/{id} returns a MediaMetadata document; 404 means
// the media does not exist.
type RemoteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[*models.MediaMetadata]
}

// NewRemoteClient builds a client from the catalog configuration.
func NewRemoteClient(cfg *config.CatalogConfig) *RemoteClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = time.Minute
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	metrics.SetCircuitBreakerState(breakerName, 0)

	cb := gobreaker.NewCircuitBreaker[*models.MediaMetadata](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRemoteNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("[CIRCUIT BREAKER] State transition")
			metrics.SetCircuitBreakerState(name, stateToFloat(to))
			metrics.RecordCircuitBreakerTransition(name, stateToString(from), stateToString(to))
		},
	})

	return &RemoteClient{
		baseURL:    strings.TrimRight(cfg.RemoteURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cb:         cb,
	}
}

// Fetch retrieves metadata for one media item. Returns ErrMediaNotFound when
// the remote does not know the item.
func (c *RemoteClient) Fetch(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordCatalogRemote("rate_limited")
		return nil, fmt.Errorf("catalog rate limiter: %w", err)
	}

	media, err := c.cb.Execute(func() (*models.MediaMetadata, error) {
		return c.fetch(ctx, category, mediaID)
	})
	switch {
	case err == nil:
		metrics.RecordCatalogRemote("success")
		return media, nil
	case errors.Is(err, errRemoteNotFound):
		metrics.RecordCatalogRemote("not_found")
		return nil, fmt.Errorf("%w: %s/%s", ErrMediaNotFound, category, mediaID)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordCatalogRemote("rejected")
		return nil, fmt.Errorf("catalog remote unavailable: %w", err)
	default:
		metrics.RecordCatalogRemote("error")
		return nil, err
	}
}

// State reports the breaker state for health output.
func (c *RemoteClient) State() string {
	return stateToString(c.cb.State())
}

func (c *RemoteClient) fetch(ctx context.Context, category models.Category, mediaID string) (*models.MediaMetadata, error) {
	endpoint := fmt.Sprintf("%s/media/%s/%s", c.baseURL, url.PathEscape(string(category)), url.PathEscape(mediaID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errRemoteNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024)) //nolint:errcheck // best effort for the error message
		return nil, fmt.Errorf("catalog API returned status %d: %s", resp.StatusCode, string(body))
	}

	var media models.MediaMetadata
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if media.ID == "" {
		media.ID = mediaID
	}
	if media.Category == "" {
		media.Category = category
	}
	if media.ID != mediaID || media.Category != category {
		return nil, fmt.Errorf("catalog API returned %s/%s for %s/%s", media.Category, media.ID, category, mediaID)
	}
	return &media, nil
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
