// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeCount is returned when applying a delta would drive an
	// aggregate counter below zero.
	ErrNegativeCount = errors.New("aggregate counter would become negative")

	// ErrStatusInvariant is returned when status counts would no longer sum
	// to the total entry count.
	ErrStatusInvariant = errors.New("status counts do not sum to total entries")
)

// StatusCounts maps a status to the number of entries in it.
type StatusCounts map[Status]int64

// Sum returns the total over all statuses.
func (sc StatusCounts) Sum() int64 {
	var total int64
	for _, n := range sc {
		total += n
	}
	return total
}

// equal compares two maps treating missing keys as zero.
func (sc StatusCounts) equal(other StatusCounts) bool {
	for k, v := range sc {
		if other[k] != v {
			return false
		}
	}
	for k, v := range other {
		if sc[k] != v {
			return false
		}
	}
	return true
}

// DeltaStats is the exact signed change one list mutation causes to every
// aggregate field. TimeSpent is in minutes.
type DeltaStats struct {
	TotalEntries     int64           `json:"total_entries"`
	StatusCounts     StatusCounts    `json:"status_counts"`
	TimeSpent        decimal.Decimal `json:"time_spent"`
	TotalRedo        int64           `json:"total_redo"`
	TotalSpecific    int64           `json:"total_specific"`
	EntriesRated     int64           `json:"entries_rated"`
	SumEntriesRated  decimal.Decimal `json:"sum_entries_rated"`
	EntriesCommented int64           `json:"entries_commented"`
	EntriesFavorites int64           `json:"entries_favorites"`
	TotalLabels      int64           `json:"total_labels"`
}

// NewDeltaStats returns a zero delta.
func NewDeltaStats() *DeltaStats {
	return &DeltaStats{
		StatusCounts:    StatusCounts{},
		TimeSpent:       decimal.Zero,
		SumEntriesRated: decimal.Zero,
	}
}

// Negate returns the exact inverse of d.
func (d *DeltaStats) Negate() *DeltaStats {
	n := &DeltaStats{
		TotalEntries:     -d.TotalEntries,
		StatusCounts:     make(StatusCounts, len(d.StatusCounts)),
		TimeSpent:        d.TimeSpent.Neg(),
		TotalRedo:        -d.TotalRedo,
		TotalSpecific:    -d.TotalSpecific,
		EntriesRated:     -d.EntriesRated,
		SumEntriesRated:  d.SumEntriesRated.Neg(),
		EntriesCommented: -d.EntriesCommented,
		EntriesFavorites: -d.EntriesFavorites,
		TotalLabels:      -d.TotalLabels,
	}
	for s, v := range d.StatusCounts {
		n.StatusCounts[s] = -v
	}
	return n
}

// Add returns the field-wise sum of d and o.
func (d *DeltaStats) Add(o *DeltaStats) *DeltaStats {
	sum := &DeltaStats{
		TotalEntries:     d.TotalEntries + o.TotalEntries,
		StatusCounts:     StatusCounts{},
		TimeSpent:        d.TimeSpent.Add(o.TimeSpent),
		TotalRedo:        d.TotalRedo + o.TotalRedo,
		TotalSpecific:    d.TotalSpecific + o.TotalSpecific,
		EntriesRated:     d.EntriesRated + o.EntriesRated,
		SumEntriesRated:  d.SumEntriesRated.Add(o.SumEntriesRated),
		EntriesCommented: d.EntriesCommented + o.EntriesCommented,
		EntriesFavorites: d.EntriesFavorites + o.EntriesFavorites,
		TotalLabels:      d.TotalLabels + o.TotalLabels,
	}
	for s, v := range d.StatusCounts {
		sum.StatusCounts[s] += v
	}
	for s, v := range o.StatusCounts {
		sum.StatusCounts[s] += v
	}
	for s, v := range sum.StatusCounts {
		if v == 0 {
			delete(sum.StatusCounts, s)
		}
	}
	return sum
}

// Equal reports whether two deltas carry the same change.
func (d *DeltaStats) Equal(o *DeltaStats) bool {
	return d.TotalEntries == o.TotalEntries &&
		d.StatusCounts.equal(o.StatusCounts) &&
		d.TimeSpent.Equal(o.TimeSpent) &&
		d.TotalRedo == o.TotalRedo &&
		d.TotalSpecific == o.TotalSpecific &&
		d.EntriesRated == o.EntriesRated &&
		d.SumEntriesRated.Equal(o.SumEntriesRated) &&
		d.EntriesCommented == o.EntriesCommented &&
		d.EntriesFavorites == o.EntriesFavorites &&
		d.TotalLabels == o.TotalLabels
}

// IsZero reports whether the delta changes nothing.
func (d *DeltaStats) IsZero() bool {
	return d.Equal(NewDeltaStats())
}

// StatsScope selects an aggregate row: a user's row for a category, or the
// platform-wide row when UserID is empty.
type StatsScope struct {
	UserID   string
	Category Category
}

// UserScope returns the scope of a user's row.
func UserScope(userID string, category Category) StatsScope {
	return StatsScope{UserID: userID, Category: category}
}

// PlatformScope returns the scope of the platform-wide row.
func PlatformScope(category Category) StatsScope {
	return StatsScope{Category: category}
}

// IsPlatform reports whether the scope is platform-wide.
func (s StatsScope) IsPlatform() bool {
	return s.UserID == ""
}

// String renders the scope for logs.
func (s StatsScope) String() string {
	if s.IsPlatform() {
		return fmt.Sprintf("platform/%s", s.Category)
	}
	return fmt.Sprintf("user:%s/%s", s.UserID, s.Category)
}

// AggregatedStats is the incrementally maintained summary of a scope. It is
// always equal to the sum of every delta ever applied to it.
type AggregatedStats struct {
	UserID   string   `json:"user_id,omitempty"`
	Category Category `json:"category"`

	TotalEntries     int64           `json:"total_entries"`
	StatusCounts     StatusCounts    `json:"status_counts"`
	TimeSpent        decimal.Decimal `json:"time_spent"`
	TotalRedo        int64           `json:"total_redo"`
	TotalSpecific    int64           `json:"total_specific"`
	EntriesRated     int64           `json:"entries_rated"`
	SumEntriesRated  decimal.Decimal `json:"sum_entries_rated"`
	EntriesCommented int64           `json:"entries_commented"`
	EntriesFavorites int64           `json:"entries_favorites"`
	TotalLabels      int64           `json:"total_labels"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewAggregatedStats returns a zeroed row for the scope.
func NewAggregatedStats(scope StatsScope) *AggregatedStats {
	return &AggregatedStats{
		UserID:          scope.UserID,
		Category:        scope.Category,
		StatusCounts:    StatusCounts{},
		TimeSpent:       decimal.Zero,
		SumEntriesRated: decimal.Zero,
	}
}

// Scope returns the scope the row belongs to.
func (s *AggregatedStats) Scope() StatsScope {
	return StatsScope{UserID: s.UserID, Category: s.Category}
}

// Apply adds d into the row field by field. The row is left untouched when
// the result would break a counter or the status invariant.
func (s *AggregatedStats) Apply(d *DeltaStats) error {
	next := s.asDelta().Add(d)

	if next.TotalEntries < 0 || next.TotalRedo < 0 || next.TotalSpecific < 0 ||
		next.EntriesRated < 0 || next.EntriesCommented < 0 || next.EntriesFavorites < 0 ||
		next.TotalLabels < 0 || next.TimeSpent.IsNegative() || next.SumEntriesRated.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeCount, s.Scope())
	}
	for status, n := range next.StatusCounts {
		if n < 0 {
			return fmt.Errorf("%w: %s status %s", ErrNegativeCount, s.Scope(), status)
		}
	}
	if next.StatusCounts.Sum() != next.TotalEntries {
		return fmt.Errorf("%w: %s has %d entries, %d by status",
			ErrStatusInvariant, s.Scope(), next.TotalEntries, next.StatusCounts.Sum())
	}

	s.TotalEntries = next.TotalEntries
	s.StatusCounts = next.StatusCounts
	s.TimeSpent = next.TimeSpent
	s.TotalRedo = next.TotalRedo
	s.TotalSpecific = next.TotalSpecific
	s.EntriesRated = next.EntriesRated
	s.SumEntriesRated = next.SumEntriesRated
	s.EntriesCommented = next.EntriesCommented
	s.EntriesFavorites = next.EntriesFavorites
	s.TotalLabels = next.TotalLabels
	return nil
}

// SameTotals reports whether two rows hold identical aggregates, ignoring
// scope and timestamps.
func (s *AggregatedStats) SameTotals(o *AggregatedStats) bool {
	return s.asDelta().Equal(o.asDelta())
}

func (s *AggregatedStats) asDelta() *DeltaStats {
	d := &DeltaStats{
		TotalEntries:     s.TotalEntries,
		StatusCounts:     make(StatusCounts, len(s.StatusCounts)),
		TimeSpent:        s.TimeSpent,
		TotalRedo:        s.TotalRedo,
		TotalSpecific:    s.TotalSpecific,
		EntriesRated:     s.EntriesRated,
		SumEntriesRated:  s.SumEntriesRated,
		EntriesCommented: s.EntriesCommented,
		EntriesFavorites: s.EntriesFavorites,
		TotalLabels:      s.TotalLabels,
	}
	for k, v := range s.StatusCounts {
		d.StatusCounts[k] = v
	}
	return d
}

// MeanRating returns the average rating of rated completed entries rounded
// to two places for display, or zero when nothing is rated.
func (s *AggregatedStats) MeanRating() decimal.Decimal {
	if s.EntriesRated == 0 {
		return decimal.Zero
	}
	return s.SumEntriesRated.DivRound(decimal.NewFromInt(s.EntriesRated), 2)
}

// TimeSpentHours returns time spent in hours rounded to one place for display.
func (s *AggregatedStats) TimeSpentHours() decimal.Decimal {
	return s.TimeSpent.DivRound(decimal.NewFromInt(60), 1)
}
