package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidPools is returned when the shared ingredient pools overlap or repeat items.
var ErrInvalidPools = errors.New("invalid ingredient pools")

// Pool names as stored in the database and shown in error messages.
const (
	PoolStaples          = "staples"
	PoolFreshVegetables  = "fresh_vegetables"
	PoolFrozenVegetables = "frozen_vegetables"
	PoolToppings         = "toppings"
)

// SharedIngredientPools is the configured, meal-independent ingredient data.
type SharedIngredientPools struct {
	Staples          []string `json:"staples"`
	FreshVegetables  []string `json:"fresh_vegetables"`
	FrozenVegetables []string `json:"frozen_vegetables"`
	Toppings         []string `json:"toppings"`
}

// Named returns the pools keyed by their stored name.
func (p SharedIngredientPools) Named() map[string][]string {
	return map[string][]string{
		PoolStaples:          p.Staples,
		PoolFreshVegetables:  p.FreshVegetables,
		PoolFrozenVegetables: p.FrozenVegetables,
		PoolToppings:         p.Toppings,
	}
}

// Validate checks that no item repeats inside a pool or appears in two pools.
func (p SharedIngredientPools) Validate() error {
	owner := make(map[string]string)
	for _, name := range []string{PoolStaples, PoolFreshVegetables, PoolFrozenVegetables, PoolToppings} {
		for _, item := range p.Named()[name] {
			if prev, ok := owner[item]; ok {
				if prev == name {
					return fmt.Errorf("%w: %q repeated in %s", ErrInvalidPools, item, name)
				}
				return fmt.Errorf("%w: %q is in both %s and %s", ErrInvalidPools, item, prev, name)
			}
			owner[item] = name
		}
	}
	return nil
}

// IsStaple reports whether item is in the staples pool.
func (p SharedIngredientPools) IsStaple(item string) bool {
	return slices.Contains(p.Staples, item)
}

// SortedStaples returns a sorted copy of the staples pool.
func (p SharedIngredientPools) SortedStaples() []string {
	out := slices.Clone(p.Staples)
	slices.Sort(out)
	return out
}
