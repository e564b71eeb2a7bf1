// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package models

import "time"

// ActivityBucketLayout is the time-bucket format of the activity log (monthly).
const ActivityBucketLayout = "2006-01"

// ActivityBucket returns the bucket key for t.
func ActivityBucket(t time.Time) string {
	return t.UTC().Format(ActivityBucketLayout)
}

// ActivityLogEntry records what a user did with one media item during one
// bucket. It is additive: later events in the same bucket accumulate.
type ActivityLogEntry struct {
	UserID         string    `json:"user_id"`
	MediaID        string    `json:"media_id"`
	Category       Category  `json:"category"`
	Bucket         string    `json:"bucket"`
	SpecificGained int64     `json:"specific_gained"`
	IsCompleted    bool      `json:"is_completed"`
	IsRedo         bool      `json:"is_redo"`
	UpdatedAt      time.Time `json:"updated_at"`
}
