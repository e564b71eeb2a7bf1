// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package cache

import (
	"sync"

	"github.com/tomtom215/mediashelf/internal/config"
	"github.com/tomtom215/mediashelf/internal/metrics"
	"github.com/tomtom215/mediashelf/internal/models"
)

// platformOwner tags platform-wide entries.
const platformOwner = ""

// ReadCache caches stats and achievement reads per user. A nil *ReadCache is
// valid and caches nothing.
//
// Each owner has a generation counter bumped on invalidation. A load that
// started before an invalidation is returned to its caller but not stored,
// so a slow read can never resurrect data a mutation already replaced.
type ReadCache struct {
	stats        *LRU[[]*models.AggregatedStats]
	achievements *LRU[[]models.AchievementView]

	mu    sync.Mutex
	gens  map[string]uint64
	epoch uint64 // bumped by InvalidateAchievements
}

type stamp struct {
	owner uint64
	epoch uint64
}

// New builds the read cache, or returns nil when caching is disabled.
func New(cfg *config.CacheConfig) *ReadCache {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &ReadCache{
		stats:        NewLRU[[]*models.AggregatedStats](cfg.Capacity, cfg.TTL),
		achievements: NewLRU[[]models.AchievementView](cfg.Capacity, cfg.TTL),
		gens:         make(map[string]uint64),
	}
}

// UserStats returns a user's stats rows, loading them on a miss.
func (c *ReadCache) UserStats(userID string, category *models.Category, load func() ([]*models.AggregatedStats, error)) ([]*models.AggregatedStats, bool, error) {
	if c == nil {
		v, err := load()
		return v, false, err
	}
	return getOrLoad(c, c.stats, userID, key(userID, category), load)
}

// PlatformStats returns the platform rows, loading them on a miss.
func (c *ReadCache) PlatformStats(category *models.Category, load func() ([]*models.AggregatedStats, error)) ([]*models.AggregatedStats, bool, error) {
	if c == nil {
		v, err := load()
		return v, false, err
	}
	return getOrLoad(c, c.stats, platformOwner, key(platformOwner, category), load)
}

// UserAchievements returns a user's achievement views, loading them on a miss.
func (c *ReadCache) UserAchievements(userID string, category *models.Category, load func() ([]models.AchievementView, error)) ([]models.AchievementView, bool, error) {
	if c == nil {
		v, err := load()
		return v, false, err
	}
	return getOrLoad(c, c.achievements, userID, key(userID, category), load)
}

// InvalidateUser drops everything cached for a user.
func (c *ReadCache) InvalidateUser(userID string) {
	if c == nil || userID == platformOwner {
		return
	}
	c.invalidate(userID)
}

// InvalidatePlatform drops the platform rows.
func (c *ReadCache) InvalidatePlatform() {
	if c == nil {
		return
	}
	c.invalidate(platformOwner)
}

// InvalidateAchievements drops every cached achievement view. Batch
// recomputation touches all users at once.
func (c *ReadCache) InvalidateAchievements() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
	c.achievements.Clear()
}

// Len returns the number of cached entries.
func (c *ReadCache) Len() int {
	if c == nil {
		return 0
	}
	return c.stats.Len() + c.achievements.Len()
}

// Cleanup removes expired entries.
func (c *ReadCache) Cleanup() int {
	if c == nil {
		return 0
	}
	return c.stats.CleanupExpired() + c.achievements.CleanupExpired()
}

func (c *ReadCache) invalidate(owner string) {
	c.mu.Lock()
	c.gens[owner]++
	c.mu.Unlock()
	c.stats.RemoveOwner(owner)
	c.achievements.RemoveOwner(owner)
}

func (c *ReadCache) stampOf(owner string) stamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stamp{owner: c.gens[owner], epoch: c.epoch}
}

func getOrLoad[V any](c *ReadCache, lru *LRU[V], owner, k string, load func() (V, error)) (V, bool, error) {
	if v, ok := lru.Get(k); ok {
		metrics.RecordCacheHit()
		return v, true, nil
	}
	metrics.RecordCacheMiss()

	before := c.stampOf(owner)
	v, err := load()
	if err != nil {
		return v, false, err
	}

	c.mu.Lock()
	if (stamp{owner: c.gens[owner], epoch: c.epoch}) == before {
		lru.Set(owner, k, v)
	}
	c.mu.Unlock()
	return v, false, nil
}

func key(owner string, category *models.Category) string {
	if category == nil {
		return owner + "|*"
	}
	return owner + "|" + string(*category)
}
