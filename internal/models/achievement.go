// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package models

import "time"

// Difficulty is the tier level of an achievement.
type Difficulty string

// Tier difficulties, ordered bronze < silver < gold < platinum.
const (
	DifficultyBronze   Difficulty = "bronze"
	DifficultySilver   Difficulty = "silver"
	DifficultyGold     Difficulty = "gold"
	DifficultyPlatinum Difficulty = "platinum"
)

// Difficulties returns all difficulties in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyBronze, DifficultySilver, DifficultyGold, DifficultyPlatinum}
}

// Ordinal maps a difficulty to its rank (bronze=1 ... platinum=4). Unknown
// values rank 0.
func (d Difficulty) Ordinal() int {
	switch d {
	case DifficultyBronze:
		return 1
	case DifficultySilver:
		return 2
	case DifficultyGold:
		return 3
	case DifficultyPlatinum:
		return 4
	}
	return 0
}

// DifficultyFromOrdinal is the inverse of Ordinal.
func DifficultyFromOrdinal(ordinal int) (Difficulty, bool) {
	all := Difficulties()
	if ordinal < 1 || ordinal > len(all) {
		return "", false
	}
	return all[ordinal-1], true
}

// Achievement is a catalog entry. CodeName is its immutable identity.
type Achievement struct {
	ID          string            `json:"id"`
	CodeName    string            `json:"code_name"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    Category          `json:"category"`
	Value       *int64            `json:"value,omitempty"`
	Tiers       []AchievementTier `json:"tiers,omitempty"`
}

// TierCriteria is the completion rule of a tier: Count is the threshold,
// the remaining fields parameterize classified-entity strategies.
type TierCriteria struct {
	Count       int64  `json:"count"`
	Value       string `json:"value,omitempty"`
	Role        string `json:"role,omitempty"`
	MinDuration int    `json:"min_duration,omitempty"`
	MaxDuration int    `json:"max_duration,omitempty"`
}

// AchievementTier is one difficulty level of an achievement. Identity for
// reconciliation is (AchievementID, Difficulty).
type AchievementTier struct {
	ID            string       `json:"id"`
	AchievementID string       `json:"achievement_id"`
	Difficulty    Difficulty   `json:"difficulty"`
	Criteria      TierCriteria `json:"criteria"`
}

// UserAchievementProgress is the evaluation result of one (user, tier).
// CompletedAt is stamped on the first transition to completed and never
// cleared afterwards.
type UserAchievementProgress struct {
	UserID           string     `json:"user_id"`
	TierID           string     `json:"tier_id"`
	Count            int64      `json:"count"`
	Progress         float64    `json:"progress"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	LastCalculatedAt time.Time  `json:"last_calculated_at"`
}

// UserCount is one row of a criteria computation.
type UserCount struct {
	UserID string
	Count  int64
}

// UserHighestTier is the best completed tier of a user for an achievement.
type UserHighestTier struct {
	UserID        string     `json:"user_id"`
	AchievementID string     `json:"achievement_id"`
	Difficulty    Difficulty `json:"difficulty"`
}

// CriteriaSource selects what a criteria query counts.
type CriteriaSource string

// Criteria sources.
const (
	// SourceEntries counts entries matching a predicate.
	SourceEntries CriteriaSource = "entries"

	// SourceClassified counts completed entries whose classification matches.
	SourceClassified CriteriaSource = "classified"

	// SourceDistinct counts distinct classification values across completed entries.
	SourceDistinct CriteriaSource = "distinct"

	// SourceStat reads a field of the user's aggregate row.
	SourceStat CriteriaSource = "stat"
)

// EntryPredicate is a fixed filter for SourceEntries.
type EntryPredicate string

// Entry predicates.
const (
	PredicateCompleted EntryPredicate = "completed"
	PredicateRated     EntryPredicate = "rated"
	PredicateCommented EntryPredicate = "commented"
	PredicateFavorite  EntryPredicate = "favorite"
	PredicateRedo      EntryPredicate = "redo"
)

// StatField is a whitelisted aggregate column for SourceStat.
type StatField string

// Aggregate fields readable by stat criteria.
const (
	StatTimeSpent     StatField = "time_spent"
	StatTotalSpecific StatField = "total_specific"
	StatTotalRedo     StatField = "total_redo"
)

// CriteriaQuery is a storage-agnostic description of a set-based criteria
// computation. An empty UserID evaluates every user in one pass.
type CriteriaQuery struct {
	Category  Category
	Source    CriteriaSource
	Predicate EntryPredicate
	Dimension Dimension
	Role      string
	Value     string

	MinDuration int
	MaxDuration int

	Field   StatField
	Divisor int64

	UserID string
}

// TierProgressView is a tier together with a user's progress on it.
type TierProgressView struct {
	AchievementTier
	Progress *UserAchievementProgress `json:"progress,omitempty"`
}

// AchievementView is a catalog entry with a user's progress per tier and the
// single highest completed tier, if any.
type AchievementView struct {
	ID          string             `json:"id"`
	CodeName    string             `json:"code_name"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    Category           `json:"category"`
	Tiers       []TierProgressView `json:"tiers"`
	HighestTier *Difficulty        `json:"highest_tier,omitempty"`
}
