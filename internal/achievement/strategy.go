// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"fmt"

	"github.com/tomtom215/mediashelf/internal/models"
)

// Strategy turns an achievement tier into a set-based criteria query.
// Implementations are plain values so the catalog binds them at compile time.
type Strategy interface {
	// Kind names the strategy for logs and validation errors.
	Kind() string

	// Query builds the criteria query of one tier. An empty userID asks for
	// the platform-wide batch form.
	Query(a models.Achievement, tier models.AchievementTier, userID string) (models.CriteriaQuery, error)

	// validateTier checks a declared tier before it is seeded.
	validateTier(criteria models.TierCriteria) error
}

// Count counts the user's entries matching a fixed predicate.
type Count struct {
	Predicate models.EntryPredicate
}

// Kind implements Strategy.
func (s Count) Kind() string { return "count:" + string(s.Predicate) }

// Query implements Strategy.
func (s Count) Query(a models.Achievement, _ models.AchievementTier, userID string) (models.CriteriaQuery, error) {
	return models.CriteriaQuery{
		Category:  a.Category,
		Source:    models.SourceEntries,
		Predicate: s.Predicate,
		UserID:    userID,
	}, nil
}

func (s Count) validateTier(models.TierCriteria) error {
	switch s.Predicate {
	case models.PredicateCompleted, models.PredicateRated, models.PredicateCommented,
		models.PredicateFavorite, models.PredicateRedo:
		return nil
	}
	return fmt.Errorf("unknown entry predicate %q", s.Predicate)
}

// Classified counts completed entries whose media matches the tier's value
// along one classification dimension. Person tiers may also pin a role;
// duration tiers use the min/max bracket instead of a value.
type Classified struct {
	Dimension models.Dimension
}

// Kind implements Strategy.
func (s Classified) Kind() string { return "classified:" + string(s.Dimension) }

// Query implements Strategy.
func (s Classified) Query(a models.Achievement, tier models.AchievementTier, userID string) (models.CriteriaQuery, error) {
	if err := s.validateTier(tier.Criteria); err != nil {
		return models.CriteriaQuery{}, err
	}
	return models.CriteriaQuery{
		Category:    a.Category,
		Source:      models.SourceClassified,
		Dimension:   s.Dimension,
		Value:       tier.Criteria.Value,
		Role:        tier.Criteria.Role,
		MinDuration: tier.Criteria.MinDuration,
		MaxDuration: tier.Criteria.MaxDuration,
		UserID:      userID,
	}, nil
}

func (s Classified) validateTier(c models.TierCriteria) error {
	switch s.Dimension {
	case models.DimensionGenre, models.DimensionNetwork, models.DimensionLanguage:
		if c.Value == "" {
			return fmt.Errorf("%s tier needs a value", s.Dimension)
		}
	case models.DimensionPerson:
		if c.Value == "" && c.Role == "" {
			return fmt.Errorf("person tier needs a value or a role")
		}
	case models.DimensionDuration:
		if c.MinDuration <= 0 && c.MaxDuration <= 0 {
			return fmt.Errorf("duration tier needs a bracket")
		}
		if c.MaxDuration > 0 && c.MinDuration >= c.MaxDuration {
			return fmt.Errorf("duration bracket [%d, %d) is empty", c.MinDuration, c.MaxDuration)
		}
	default:
		return fmt.Errorf("unknown classification dimension %q", s.Dimension)
	}
	return nil
}

// Distinct counts distinct classification values across completed entries,
// e.g. how many genres a user has explored.
type Distinct struct {
	Dimension models.Dimension
}

// Kind implements Strategy.
func (s Distinct) Kind() string { return "distinct:" + string(s.Dimension) }

// Query implements Strategy.
func (s Distinct) Query(a models.Achievement, _ models.AchievementTier, userID string) (models.CriteriaQuery, error) {
	return models.CriteriaQuery{
		Category:  a.Category,
		Source:    models.SourceDistinct,
		Dimension: s.Dimension,
		UserID:    userID,
	}, nil
}

func (s Distinct) validateTier(models.TierCriteria) error {
	switch s.Dimension {
	case models.DimensionGenre, models.DimensionPerson, models.DimensionNetwork, models.DimensionLanguage:
		return nil
	}
	return fmt.Errorf("distinct strategy unsupported for dimension %q", s.Dimension)
}

// Stat reads a field of the user's aggregate row divided by the
// achievement's value (60 turns minutes into hours). A missing value
// divides by one.
type Stat struct {
	Field models.StatField
}

// Kind implements Strategy.
func (s Stat) Kind() string { return "stat:" + string(s.Field) }

// Query implements Strategy.
func (s Stat) Query(a models.Achievement, _ models.AchievementTier, userID string) (models.CriteriaQuery, error) {
	divisor := int64(1)
	if a.Value != nil {
		if *a.Value <= 0 {
			return models.CriteriaQuery{}, fmt.Errorf("stat achievement %s has non-positive value %d", a.CodeName, *a.Value)
		}
		divisor = *a.Value
	}
	return models.CriteriaQuery{
		Category: a.Category,
		Source:   models.SourceStat,
		Field:    s.Field,
		Divisor:  divisor,
		UserID:   userID,
	}, nil
}

func (s Stat) validateTier(models.TierCriteria) error {
	switch s.Field {
	case models.StatTimeSpent, models.StatTotalSpecific, models.StatTotalRedo:
		return nil
	}
	return fmt.Errorf("unknown stat field %q", s.Field)
}

// Evaluate compares a qualifying count with a tier threshold. Progress is
// the percentage of the threshold reached, capped at 100.
func Evaluate(count int64, criteria models.TierCriteria) (progress float64, completed bool) {
	if criteria.Count <= 0 {
		return 100, true
	}
	if count < 0 {
		count = 0
	}
	progress = float64(count) * 100 / float64(criteria.Count)
	if progress > 100 {
		progress = 100
	}
	return progress, count >= criteria.Count
}
