package planner

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"dinner-planner/internal/catalog"
)

// ErrConstraintUnsatisfiable is returned when no catalog meal fits a day.
// Retrying with the same inputs cannot succeed.
var ErrConstraintUnsatisfiable = errors.New("constraint unsatisfiable")

// Rand is the entropy the selector and the shopping list builder draw from.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a seeded source; equal seeds give equal plans.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Select assigns a meal to each day in order. For every day it narrows the
// catalog to the meals allowed by the constraints and draws one of them
// uniformly; it fails instead of resampling when nothing is allowed.
func Select(cat *catalog.Catalog, days []string, c Constraints, rng Rand) (*MealPlan, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrConstraintUnsatisfiable)
	}
	if err := c.Validate(days); err != nil {
		return nil, err
	}
	if c.ChefAware() {
		if err := cat.RequireChefs(); err != nil {
			return nil, err
		}
	}

	meals := cat.Meals()
	chosen := make(map[string]struct{}, len(days))
	history := make(map[string]struct{})
	plan := &MealPlan{Plan: make([]DayPlan, 0, len(days))}

	for _, day := range days {
		var chef string
		if c.ChefAware() {
			chef = c.ChefResponsibilities[day]
			if chef == Unassigned {
				plan.Plan = append(plan.Plan, DayPlan{Day: day, MealID: Unplanned})
				continue
			}
		}

		eligible := make([]catalog.Meal, 0, len(meals))
		for _, m := range meals {
			if chef != "" && !m.CookableBy(chef) {
				continue
			}
			if _, used := chosen[m.ID]; used && c.RequireUniqueMeals {
				continue
			}
			if c.CategoryWindow != WindowNone && m.SharesCategory(history) {
				continue
			}
			eligible = append(eligible, m)
		}

		if len(eligible) == 0 {
			if chef != "" {
				return nil, fmt.Errorf("%w: no eligible meal for %s (chef %s)", ErrConstraintUnsatisfiable, day, chef)
			}
			return nil, fmt.Errorf("%w: no eligible meal for %s", ErrConstraintUnsatisfiable, day)
		}

		pick := eligible[rng.IntN(len(eligible))]
		chosen[pick.ID] = struct{}{}

		switch c.CategoryWindow {
		case WindowConsecutive:
			history = make(map[string]struct{}, len(pick.Categories))
			fallthrough
		case WindowWeekly:
			for _, category := range pick.Categories {
				history[category] = struct{}{}
			}
		}

		plan.Plan = append(plan.Plan, DayPlan{Day: day, MealID: pick.ID, Chef: chef})
	}

	return plan, nil
}
