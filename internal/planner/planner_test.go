package planner

import (
	"errors"
	"testing"

	"dinner-planner/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCatalog(t *testing.T, meals ...catalog.Meal) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(meals)
	require.NoError(t, err)
	return cat
}

func weeknightCatalog(t *testing.T) *catalog.Catalog {
	return mustCatalog(t,
		catalog.Meal{ID: "spaghetti", Categories: []string{"pasta"}, Ingredients: []string{"noodles", "tomato"}},
		catalog.Meal{ID: "pesto pasta", Categories: []string{"pasta"}, Ingredients: []string{"noodles", "basil"}},
		catalog.Meal{ID: "tacos", Categories: []string{"mexican"}, Ingredients: []string{"tortillas", "beans"}},
		catalog.Meal{ID: "burrito bowl", Categories: []string{"mexican"}, Ingredients: []string{"rice", "beans"}},
		catalog.Meal{ID: "minestrone", Categories: []string{"soup", "vegetarian"}, Ingredients: []string{"beans", "kale"}},
		catalog.Meal{ID: "lentil soup", Categories: []string{"soup"}, Ingredients: []string{"lentils"}},
		catalog.Meal{ID: "veggie stir fry", Categories: []string{"vegetarian"}, Ingredients: []string{"rice", "broccoli"}},
	)
}

func categoriesOf(t *testing.T, cat *catalog.Catalog, id string) []string {
	t.Helper()
	m, ok := cat.Get(id)
	require.True(t, ok, "meal %q not in catalog", id)
	return m.Categories
}

func TestSelect_WeeklyWindow(t *testing.T) {
	cat := weeknightCatalog(t)

	for seed := uint64(0); seed < 200; seed++ {
		plan, err := Select(cat, DefaultDays, DefaultConstraints(), NewRand(seed))
		require.NoError(t, err, "seed %d", seed)
		require.Len(t, plan.Plan, len(DefaultDays))

		seenMeals := map[string]bool{}
		seenCategories := map[string]bool{}
		for i, d := range plan.Plan {
			assert.Equal(t, DefaultDays[i], d.Day)
			assert.False(t, seenMeals[d.MealID], "seed %d: meal %q repeated", seed, d.MealID)
			seenMeals[d.MealID] = true
			for _, c := range categoriesOf(t, cat, d.MealID) {
				assert.False(t, seenCategories[c], "seed %d: category %q repeated", seed, c)
				seenCategories[c] = true
			}
		}
	}
}

func TestSelect_ConsecutiveWindow(t *testing.T) {
	cat := weeknightCatalog(t)
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	c := Constraints{CategoryWindow: WindowConsecutive}

	for seed := uint64(0); seed < 200; seed++ {
		plan, err := Select(cat, days, c, NewRand(seed))
		require.NoError(t, err, "seed %d", seed)

		for i := 1; i < len(plan.Plan); i++ {
			prev := categoriesOf(t, cat, plan.Plan[i-1].MealID)
			curr := categoriesOf(t, cat, plan.Plan[i].MealID)
			for _, category := range curr {
				assert.NotContains(t, prev, category, "seed %d: %s and %s share %q", seed, plan.Plan[i-1].Day, plan.Plan[i].Day, category)
			}
		}
	}
}

func TestSelect_UniqueMeals(t *testing.T) {
	cat := weeknightCatalog(t)
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	c := Constraints{RequireUniqueMeals: true, CategoryWindow: WindowNone}

	for seed := uint64(0); seed < 100; seed++ {
		plan, err := Select(cat, days, c, NewRand(seed))
		require.NoError(t, err)
		ids := plan.MealIDs()
		assert.ElementsMatch(t, cat.IDs(), ids, "seven days over seven meals must use each once")
	}
}

func TestSelect_RepeatsAllowedWithoutUniqueness(t *testing.T) {
	cat := mustCatalog(t, catalog.Meal{ID: "toast", Categories: []string{"breakfast"}})
	c := Constraints{CategoryWindow: WindowNone}

	plan, err := Select(cat, []string{"Mon", "Tue"}, c, NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"toast", "toast"}, plan.MealIDs())
}

func TestSelect_ChefAware(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Meal{ID: "spaghetti", Categories: []string{"pasta"}, Chefs: []string{"zack", "sam"}},
		catalog.Meal{ID: "tacos", Categories: []string{"mexican"}, Chefs: []string{"zack"}},
		catalog.Meal{ID: "lentil soup", Categories: []string{"soup"}, Chefs: []string{"sam"}},
		catalog.Meal{ID: "curry", Categories: []string{"curry"}, Chefs: []string{"sam", "zack"}},
	)
	days := []string{"Monday", "Tuesday", "Wednesday"}
	c := DefaultConstraints()
	c.ChefResponsibilities = map[string]string{
		"Monday":    "zack",
		"Tuesday":   Unassigned,
		"Wednesday": "sam",
	}

	for seed := uint64(0); seed < 200; seed++ {
		plan, err := Select(cat, days, c, NewRand(seed))
		require.NoError(t, err, "seed %d", seed)

		tuesday := plan.Plan[1]
		assert.False(t, tuesday.IsPlanned(), "unassigned day must stay unplanned")
		assert.Equal(t, Unplanned, tuesday.MealID)

		for _, d := range plan.Planned() {
			m, ok := cat.Get(d.MealID)
			require.True(t, ok)
			assert.Equal(t, c.ChefResponsibilities[d.Day], d.Chef)
			assert.Contains(t, m.Chefs, d.Chef, "seed %d: %s cannot cook %s", seed, d.Chef, d.MealID)
		}
	}
}

func TestSelect_UnassignedDayDoesNotResetHistory(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Meal{ID: "spaghetti", Categories: []string{"pasta"}, Chefs: []string{"zack"}},
		catalog.Meal{ID: "lasagna", Categories: []string{"pasta"}, Chefs: []string{"zack"}},
	)
	c := Constraints{
		RequireUniqueMeals: true,
		CategoryWindow:     WindowConsecutive,
		ChefResponsibilities: map[string]string{
			"Mon": "zack",
			"Tue": Unassigned,
			"Wed": "zack",
		},
	}

	_, err := Select(cat, []string{"Mon", "Tue", "Wed"}, c, NewRand(3))
	assert.ErrorIs(t, err, ErrConstraintUnsatisfiable)
}

func TestSelect_Unsatisfiable(t *testing.T) {
	t.Run("ChefOnlyCooksUsedCategory", func(t *testing.T) {
		cat := mustCatalog(t,
			catalog.Meal{ID: "spaghetti", Categories: []string{"pasta"}, Chefs: []string{"sam"}},
			catalog.Meal{ID: "lasagna", Categories: []string{"pasta"}, Chefs: []string{"zack"}},
			catalog.Meal{ID: "mac and cheese", Categories: []string{"pasta"}, Chefs: []string{"zack"}},
		)
		c := DefaultConstraints()
		c.ChefResponsibilities = map[string]string{"Monday": "sam", "Tuesday": "zack"}

		for seed := uint64(0); seed < 20; seed++ {
			_, err := Select(cat, []string{"Monday", "Tuesday"}, c, NewRand(seed))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConstraintUnsatisfiable), "got %v", err)
			assert.Contains(t, err.Error(), "Tuesday")
		}
	})

	t.Run("MoreDaysThanMeals", func(t *testing.T) {
		cat := mustCatalog(t,
			catalog.Meal{ID: "tacos", Categories: []string{"mexican"}},
			catalog.Meal{ID: "curry", Categories: []string{"indian"}},
		)
		_, err := Select(cat, DefaultDays, DefaultConstraints(), NewRand(1))
		assert.ErrorIs(t, err, ErrConstraintUnsatisfiable)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		_, err := Select(mustCatalog(t), DefaultDays, DefaultConstraints(), NewRand(1))
		assert.ErrorIs(t, err, ErrConstraintUnsatisfiable)
	})
}

func TestSelect_MissingChefList(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Meal{ID: "tacos", Categories: []string{"mexican"}, Chefs: []string{"zack"}},
		catalog.Meal{ID: "curry", Categories: []string{"indian"}},
	)
	c := DefaultConstraints()
	c.ChefResponsibilities = map[string]string{"Monday": "zack"}

	_, err := Select(cat, []string{"Monday"}, c, NewRand(1))
	assert.ErrorIs(t, err, catalog.ErrMalformedMealRecord)
}

func TestSelect_InvalidConstraints(t *testing.T) {
	cat := weeknightCatalog(t)

	_, err := Select(cat, DefaultDays, Constraints{CategoryWindow: "monthly"}, NewRand(1))
	assert.ErrorContains(t, err, "unknown category window")

	_, err = Select(cat, nil, DefaultConstraints(), NewRand(1))
	assert.ErrorContains(t, err, "no days to plan")

	_, err = Select(cat, []string{"Mon", "Mon"}, DefaultConstraints(), NewRand(1))
	assert.ErrorContains(t, err, "listed twice")

	c := DefaultConstraints()
	c.ChefResponsibilities = map[string]string{"Monday": "zack"}
	_, err = Select(cat, []string{"Monday", "Tuesday"}, c, NewRand(1))
	assert.ErrorContains(t, err, "no chef assigned to Tuesday")
}

func TestSelect_Deterministic(t *testing.T) {
	cat := weeknightCatalog(t)

	first, err := Select(cat, DefaultDays, DefaultConstraints(), NewRand(42))
	require.NoError(t, err)
	second, err := Select(cat, DefaultDays, DefaultConstraints(), NewRand(42))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSelect_DrawsEveryEligibleMeal(t *testing.T) {
	cat := mustCatalog(t,
		catalog.Meal{ID: "a", Categories: []string{"x"}},
		catalog.Meal{ID: "b", Categories: []string{"y"}},
		catalog.Meal{ID: "c", Categories: []string{"z"}},
	)
	rng := NewRand(7)
	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		plan, err := Select(cat, []string{"Mon"}, DefaultConstraints(), rng)
		require.NoError(t, err)
		counts[plan.Plan[0].MealID]++
	}
	for _, id := range cat.IDs() {
		assert.Greater(t, counts[id], 800, "meal %q drawn %d times", id, counts[id])
	}
}
