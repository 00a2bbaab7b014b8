package shopping

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/planner"
)

var (
	// ErrInsufficientPoolSize is returned when a sample asks for more items than a pool holds.
	ErrInsufficientPoolSize = errors.New("insufficient pool size")
	// ErrUnknownMeal is returned when a plan names a meal the catalog does not have.
	ErrUnknownMeal = errors.New("unknown meal")
)

// Build derives the shopping list for a plan. The veggies and toppings column
// is sampled first and never depends on the plan.
func Build(
	plan *planner.MealPlan,
	cat *catalog.Catalog,
	pools catalog.SharedIngredientPools,
	sizes SampleSizes,
	rng planner.Rand,
) (*ShoppingList, error) {
	veggies, err := sampleVeggiesAndToppings(pools, sizes, rng)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, day := range plan.Planned() {
		meal, ok := cat.Get(day.MealID)
		if !ok {
			return nil, fmt.Errorf("%w: %q planned for %s", ErrUnknownMeal, day.MealID, day.Day)
		}
		for _, ing := range meal.UniqueIngredients() {
			if pools.IsStaple(ing) {
				continue
			}
			counts[ing]++
		}
	}

	items := make([]Item, 0, len(counts))
	for name, n := range counts {
		items = append(items, Item{Name: name, Count: n})
	}
	slices.SortFunc(items, func(a, b Item) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return &ShoppingList{
		Staples:            pools.SortedStaples(),
		VeggiesAndToppings: veggies,
		MealIngredients:    items,
	}, nil
}

func sampleVeggiesAndToppings(pools catalog.SharedIngredientPools, sizes SampleSizes, rng planner.Rand) ([]string, error) {
	draws := []struct {
		name string
		pool []string
		k    int
	}{
		{catalog.PoolFreshVegetables, pools.FreshVegetables, sizes.FreshVegetables},
		{catalog.PoolFrozenVegetables, pools.FrozenVegetables, sizes.FrozenVegetables},
		{catalog.PoolToppings, pools.Toppings, sizes.Toppings},
	}

	// Check every pool before drawing so a failed build consumes no entropy.
	for _, d := range draws {
		if d.k < 0 || d.k > len(d.pool) {
			return nil, fmt.Errorf("%w: asked for %d %s, pool has %d", ErrInsufficientPoolSize, d.k, d.name, len(d.pool))
		}
	}

	out := make([]string, 0, sizes.Total())
	for _, d := range draws {
		out = append(out, sample(d.pool, d.k, rng)...)
	}
	slices.Sort(out)
	return out, nil
}

// sample draws k distinct items with a partial Fisher-Yates shuffle over a copy of pool.
func sample(pool []string, k int, rng planner.Rand) []string {
	items := slices.Clone(pool)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(items)-i)
		items[i], items[j] = items[j], items[i]
	}
	return items[:k]
}
