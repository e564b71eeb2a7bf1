// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package models defines the data structures shared across Mediashelf.

Model groups:

 1. Media catalog (media.go):
    - Category: series, anime, movies, books, games, manga
    - Status: per-category list statuses (watching, reading, playing...)
    - MediaMetadata, Classification: units, durations, genres and tags

 2. List entries (entry.go, activity.go):
    - UserMediaEntry: one media item in a user's list
    - Progress: units consumed plus redo (rewatch/reread) count
    - ActivityLogEntry: monthly-bucketed activity history

 3. Statistics (stats.go):
    - DeltaStats: signed change produced by one mutation
    - AggregatedStats: persisted totals for a user or the platform
    - StatsScope: which row a delta applies to

 4. Achievements (achievement.go):
    - Achievement, AchievementTier, TierCriteria: the catalog
    - UserAchievementProgress: per-user progress for a tier
    - CriteriaQuery: the declarative form tier strategies compile to
    - AchievementView: catalog plus progress as served by the API

 5. Events and API envelopes (events.go, api_responses.go):
    - EntryMutatedEvent: published after every committed mutation
    - APIResponse, APIError, Metadata, HealthStatus

Numeric fields that are summed across many entries (ratings, time spent)
use shopspring/decimal so totals stay exact under repeated add and remove.

Usage Example:

	entry := &models.UserMediaEntry{
	    UserID:   "u1",
	    Category: models.CategoryAnime,
	    MediaID:  "a1",
	    Status:   models.StatusWatching,
	    Progress: models.Progress{Season: 1, Episode: 3},
	}
	scope := models.UserScope(entry.UserID, entry.Category)
*/
package models
