// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package achievement

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/mediashelf/internal/models"
)

// ErrUnregistered is returned when a code name has no strategy.
var ErrUnregistered = errors.New("achievement not registered")

// Registry maps (category, code name) to the definition that evaluates it.
// It is built once from the declared catalog and never mutated.
type Registry struct {
	byCategory map[models.Category]map[string]Definition
}

// NewRegistry validates every definition and indexes them per category.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{byCategory: make(map[models.Category]map[string]Definition)}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		cat, ok := r.byCategory[d.Category]
		if !ok {
			cat = make(map[string]Definition)
			r.byCategory[d.Category] = cat
		}
		if _, dup := cat[d.CodeName]; dup {
			return nil, fmt.Errorf("achievement %s declared twice in %s", d.CodeName, d.Category)
		}
		cat[d.CodeName] = d
	}
	return r, nil
}

// Strategy resolves the strategy of a persisted achievement.
func (r *Registry) Strategy(category models.Category, codeName string) (Strategy, error) {
	d, ok := r.byCategory[category][codeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnregistered, category, codeName)
	}
	return d.Strategy, nil
}

// Definitions returns the declared definitions of a category sorted by code name.
func (r *Registry) Definitions(category models.Category) []Definition {
	cat := r.byCategory[category]
	defs := make([]Definition, 0, len(cat))
	for _, d := range cat {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].CodeName < defs[j].CodeName })
	return defs
}

// Validate checks the persisted catalog against the registry in both
// directions: every persisted achievement must resolve to a strategy and
// every declared achievement must be persisted. Run it after seeding so a
// mismatch stops startup instead of failing the first recompute.
func (r *Registry) Validate(persisted []models.Achievement) error {
	var problems []string

	stored := make(map[models.Category]map[string]bool)
	for _, a := range persisted {
		if stored[a.Category] == nil {
			stored[a.Category] = make(map[string]bool)
		}
		stored[a.Category][a.CodeName] = true
		if _, err := r.Strategy(a.Category, a.CodeName); err != nil {
			problems = append(problems, fmt.Sprintf("persisted %s/%s has no strategy", a.Category, a.CodeName))
		}
	}

	for _, category := range models.AllCategories() {
		for _, d := range r.Definitions(category) {
			if !stored[category][d.CodeName] {
				problems = append(problems, fmt.Sprintf("declared %s/%s is not persisted", category, d.CodeName))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrUnregistered, strings.Join(problems, "; "))
	}
	return nil
}
