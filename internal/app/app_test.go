package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/config"
	"dinner-planner/internal/database"
	"dinner-planner/internal/export"
	"dinner-planner/internal/ghost"
	"dinner-planner/internal/planner"
	"dinner-planner/internal/shopping"
	"dinner-planner/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipper struct {
	meal catalog.Meal
	err  error
}

func (f *fakeClipper) ClipURL(ctx context.Context, url string) (catalog.Meal, error) {
	return f.meal, f.err
}

type fakePublisher struct {
	title   string
	html    string
	publish bool
}

func (f *fakePublisher) CreatePost(ctx context.Context, title, html string, publish bool) (*ghost.Post, error) {
	f.title, f.html, f.publish = title, html, publish
	status := "draft"
	if publish {
		status = "published"
	}
	return &ghost.Post{ID: "post-1", Title: title, Status: status}, nil
}

func newTestApp(t *testing.T, clipper MealClipper, publisher ghost.Publisher) *App {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "dinners.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewApp(catalog.NewRepository(db.SQL), clipper, publisher)
}

func record(name, category string, ingredients ...string) storage.MealRecord {
	return storage.MealRecord{Name: name, Category: category, Ingredients: ingredients, Prep: []string{}}
}

func dinnersFile() *storage.CatalogFile {
	return &storage.CatalogFile{
		Meals: []storage.MealRecord{
			record("tacos", "mexican", "tortillas", "beans", "salt"),
			record("enchiladas", "mexican", "tortillas", "cheese"),
			record("curry", "indian", "rice", "chickpeas"),
			record("dal", "indian", "lentils", "rice"),
			record("pad thai", "thai", "rice noodles", "peanuts"),
			record("ramen", "japanese", "noodles", "eggs"),
		},
		SharedIngredients: catalog.SharedIngredientPools{
			Staples:          []string{"salt", "olive oil"},
			FreshVegetables:  []string{"spinach", "peppers", "kale", "carrots"},
			FrozenVegetables: []string{"peas", "corn"},
			Toppings:         []string{"feta", "cilantro", "sesame"},
		},
	}
}

func seeded(pc config.PlanConfig, seed uint64) config.PlanConfig {
	pc.Seed = &seed
	return pc
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)

	n, err := a.ImportCatalog(ctx, dinnersFile())
	require.NoError(t, err)
	require.Equal(t, 6, n)

	t.Run("DefaultRun", func(t *testing.T) {
		res, err := a.Plan(ctx, seeded(config.DefaultPlanConfig(), 11))
		require.NoError(t, err)

		require.Len(t, res.Plan.Plan, 3)
		assert.NotEmpty(t, res.Plan.RunID)
		assert.Equal(t, uint64(11), res.Plan.Seed)

		seen := map[string]bool{}
		for _, d := range res.Plan.Plan {
			meal, ok := res.Catalog.Get(d.MealID)
			require.True(t, ok, "planned meal %q must be in the catalog", d.MealID)
			for _, c := range meal.Categories {
				assert.False(t, seen[c], "category %q used twice in a week", c)
				seen[c] = true
			}
		}

		assert.Equal(t, []string{"olive oil", "salt"}, res.List.Staples)
		assert.Len(t, res.List.VeggiesAndToppings, 5)
		for _, item := range res.List.MealIngredients {
			assert.NotEqual(t, "salt", item.Name, "staples never appear as meal ingredients")
		}
	})

	t.Run("SameSeedSameResult", func(t *testing.T) {
		first, err := a.Plan(ctx, seeded(config.DefaultPlanConfig(), 2024))
		require.NoError(t, err)
		second, err := a.Plan(ctx, seeded(config.DefaultPlanConfig(), 2024))
		require.NoError(t, err)

		assert.Equal(t, first.Plan.Plan, second.Plan.Plan)
		assert.Equal(t, first.List, second.List)
		assert.NotEqual(t, first.Plan.RunID, second.Plan.RunID)
	})

	t.Run("RandomSeedWhenUnset", func(t *testing.T) {
		orig := a.newSeed
		a.newSeed = func() uint64 { return 77 }
		defer func() { a.newSeed = orig }()

		res, err := a.Plan(ctx, config.DefaultPlanConfig())
		require.NoError(t, err)
		assert.Equal(t, uint64(77), res.Plan.Seed)
	})

	t.Run("Unsatisfiable", func(t *testing.T) {
		pc := config.DefaultPlanConfig()
		pc.Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
		_, err := a.Plan(ctx, seeded(pc, 1))
		assert.ErrorIs(t, err, planner.ErrConstraintUnsatisfiable)
	})

	t.Run("InsufficientPool", func(t *testing.T) {
		pc := config.DefaultPlanConfig()
		pc.SampleSizes.FrozenVegetables = 3
		_, err := a.Plan(ctx, seeded(pc, 1))
		assert.ErrorIs(t, err, shopping.ErrInsufficientPoolSize)
	})

	t.Run("MissingChefLists", func(t *testing.T) {
		pc := config.DefaultPlanConfig()
		pc.ChefResponsibilities = map[string]string{"Monday": "zack", "Tuesday": "zack", "Wednesday": "zack"}
		_, err := a.Plan(ctx, seeded(pc, 1))
		assert.ErrorIs(t, err, catalog.ErrMalformedMealRecord)
	})
}

func TestPlanCountsSharedIngredients(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)

	file := &storage.CatalogFile{Meals: []storage.MealRecord{
		record("a", "one", "x", "y"),
		record("b", "two", "y", "z"),
		record("c", "three", "y"),
	}}
	_, err := a.ImportCatalog(ctx, file)
	require.NoError(t, err)

	pc := config.DefaultPlanConfig()
	pc.SampleSizes = shopping.SampleSizes{}
	res, err := a.Plan(ctx, seeded(pc, 5))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, res.Plan.MealIDs())
	assert.Equal(t, []string{"x", "y (3 meals)", "z"}, res.List.Ingredients())
	assert.Empty(t, res.List.VeggiesAndToppings)
}

func TestPlanWithChefs(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)

	file := &storage.CatalogFile{Meals: []storage.MealRecord{
		{Name: "tacos", Category: "mexican", Ingredients: []string{"tortillas"}, Chefs: []string{"zack"}},
		{Name: "curry", Category: "indian", Ingredients: []string{"rice"}, Chefs: []string{"zack", "rachel"}},
		{Name: "ramen", Category: "japanese", Ingredients: []string{"noodles"}, Chefs: []string{"rachel"}},
		{Name: "toast", Category: "breakfast", Ingredients: []string{"bread"}, Chefs: []string{}},
	}}
	_, err := a.ImportCatalog(ctx, file)
	require.NoError(t, err)

	pc := config.DefaultPlanConfig()
	pc.SampleSizes = shopping.SampleSizes{}
	pc.ChefResponsibilities = map[string]string{
		"Monday":    "zack",
		"Tuesday":   planner.Unassigned,
		"Wednesday": "rachel",
	}

	for seed := uint64(0); seed < 20; seed++ {
		res, err := a.Plan(ctx, seeded(pc, seed))
		require.NoError(t, err)

		tue := res.Plan.Plan[1]
		assert.False(t, tue.IsPlanned())
		for _, d := range res.Plan.Planned() {
			meal, _ := res.Catalog.Get(d.MealID)
			assert.True(t, meal.CookableBy(d.Chef), "%s cannot cook %s", d.Chef, d.MealID)
			assert.NotEqual(t, "toast", d.MealID)
		}
	}
}

func TestImportCatalogRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)

	_, err := a.ImportCatalog(ctx, &storage.CatalogFile{Meals: []storage.MealRecord{{Name: "mystery"}}})
	assert.ErrorIs(t, err, catalog.ErrMalformedMealRecord)

	bad := dinnersFile()
	bad.SharedIngredients.Toppings = append(bad.SharedIngredients.Toppings, "salt")
	_, err = a.ImportCatalog(ctx, bad)
	assert.ErrorIs(t, err, catalog.ErrInvalidPools)
}

func TestImportCatalogReplacesStoredCatalog(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)

	n, err := a.ImportCatalog(ctx, dinnersFile())
	require.NoError(t, err)
	require.Equal(t, 6, n)

	smaller := dinnersFile()
	smaller.Meals = []storage.MealRecord{record("soup", "soup", "broth")}
	n, err = a.ImportCatalog(ctx, smaller)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cat, _, err := a.catalogRepo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"soup"}, cat.IDs())

	pc := config.DefaultPlanConfig()
	pc.Days = []string{"Monday"}
	res, err := a.Plan(ctx, seeded(pc, 9))
	require.NoError(t, err)
	assert.Equal(t, []string{"soup"}, res.Plan.MealIDs())

	// A rejected file leaves the stored catalog as it was.
	bad := dinnersFile()
	bad.SharedIngredients.Toppings = append(bad.SharedIngredients.Toppings, "salt")
	_, err = a.ImportCatalog(ctx, bad)
	require.ErrorIs(t, err, catalog.ErrInvalidPools)
	cat, _, err = a.catalogRepo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestRemoveMeal(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)
	_, err := a.ImportCatalog(ctx, dinnersFile())
	require.NoError(t, err)

	removed, err := a.RemoveMeal(ctx, "ramen")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = a.RemoveMeal(ctx, "ramen")
	require.NoError(t, err)
	assert.False(t, removed)

	count, err := a.catalogRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestDumpCatalog(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil, nil)
	_, err := a.ImportCatalog(ctx, dinnersFile())
	require.NoError(t, err)

	dumped, err := a.DumpCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, dumped.Meals, 6)
	assert.Equal(t, "curry", dumped.Meals[0].Name)
	assert.Equal(t, []string{"mexican"}, dumped.Meals[len(dumped.Meals)-1].Categories)
}

func TestClipMeal(t *testing.T) {
	ctx := context.Background()

	t.Run("NotConfigured", func(t *testing.T) {
		a := newTestApp(t, nil, nil)
		_, err := a.ClipMeal(ctx, "https://example.com")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("SavesMeal", func(t *testing.T) {
		clipped := catalog.Meal{ID: "tacos", Categories: []string{"mexican"}, Ingredients: []string{"tortillas", "avocado"}, Prep: []string{}}
		a := newTestApp(t, &fakeClipper{meal: clipped}, nil)
		_, err := a.ImportCatalog(ctx, &storage.CatalogFile{Meals: []storage.MealRecord{
			{Name: "tacos", Category: "mexican", Ingredients: []string{"tortillas"}, Chefs: []string{"zack"}},
		}})
		require.NoError(t, err)

		meal, err := a.ClipMeal(ctx, "https://example.com/tacos")
		require.NoError(t, err)
		assert.Equal(t, []string{"zack"}, meal.Chefs, "existing chef list is kept")

		stored, err := a.catalogRepo.Get(ctx, "tacos")
		require.NoError(t, err)
		assert.Equal(t, []string{"tortillas", "avocado"}, stored.Ingredients)
	})

	t.Run("ClipperError", func(t *testing.T) {
		a := newTestApp(t, &fakeClipper{err: errors.New("boom")}, nil)
		_, err := a.ClipMeal(ctx, "https://example.com/tacos")
		assert.Error(t, err)
	})
}

func TestExportAndPublish(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	a := newTestApp(t, nil, pub)
	_, err := a.ImportCatalog(ctx, dinnersFile())
	require.NoError(t, err)

	res, err := a.Plan(ctx, seeded(config.DefaultPlanConfig(), 3))
	require.NoError(t, err)

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	path, err := a.Export(res, dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, export.FileName(now)), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	post, err := a.Publish(ctx, res, now, true)
	require.NoError(t, err)
	assert.Equal(t, "published", post.Status)
	assert.Equal(t, "Dinners for the week of March 2, 2026", pub.title)
	assert.Contains(t, pub.html, "<h2>Shopping</h2>")
	assert.True(t, pub.publish)

	t.Run("ExportRunUsesOwnFile", func(t *testing.T) {
		other, err := a.Plan(ctx, seeded(config.DefaultPlanConfig(), 4))
		require.NoError(t, err)

		first, err := a.ExportRun(res, dir, now)
		require.NoError(t, err)
		second, err := a.ExportRun(other, dir, now)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Contains(t, filepath.Base(first), res.Plan.RunID)
		for _, p := range []string{first, second} {
			_, err := os.Stat(p)
			assert.NoError(t, err)
		}
	})

	t.Run("PublishNotConfigured", func(t *testing.T) {
		b := newTestApp(t, nil, nil)
		_, err := b.Publish(ctx, res, now, false)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}
