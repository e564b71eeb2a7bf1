// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package cache holds the read cache in front of stats and achievement queries.

LRU is a generic least recently used cache with a TTL. Every entry is tagged
with an owner (a user id, or "" for platform rows) so a mutation can drop
everything of one user in a single call.

ReadCache wires two LRUs to the read paths of the API:

	rows, cached, err := rc.UserStats(userID, category, func() ([]*models.AggregatedStats, error) {
	    return db.ListStats(ctx, userID, category)
	})

The mutation service calls InvalidateUser and InvalidatePlatform after every
commit; the recompute service calls InvalidateAchievements after a batch pass.
*/
package cache
