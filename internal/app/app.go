package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/config"
	"dinner-planner/internal/export"
	"dinner-planner/internal/ghost"
	"dinner-planner/internal/logger"
	"dinner-planner/internal/planner"
	"dinner-planner/internal/shopping"
	"dinner-planner/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when an operation needs a collaborator the
// App was built without.
var ErrNotConfigured = errors.New("not configured")

// MealClipper turns a recipe URL into a catalog meal.
type MealClipper interface {
	ClipURL(ctx context.Context, url string) (catalog.Meal, error)
}

// Result is one planning run: the plan, its shopping list and the catalog
// snapshot both were drawn from.
type Result struct {
	Plan    *planner.MealPlan
	List    *shopping.ShoppingList
	Catalog *catalog.Catalog
}

// App holds the application's dependencies.
type App struct {
	catalogRepo *catalog.Repository
	clipper     MealClipper
	publisher   ghost.Publisher
	newSeed     func() uint64
}

// NewApp creates and initializes a new App instance. clipper and publisher
// may be nil when those features are not configured.
func NewApp(catalogRepo *catalog.Repository, clipper MealClipper, publisher ghost.Publisher) *App {
	return &App{
		catalogRepo: catalogRepo,
		clipper:     clipper,
		publisher:   publisher,
		newSeed:     rand.Uint64,
	}
}

// Plan selects meals for the configured days and builds the matching
// shopping list. Both draw from one generator seeded from pc.Seed, or from a
// fresh seed when none is set, so a run can be repeated exactly.
func (a *App) Plan(ctx context.Context, pc config.PlanConfig) (*Result, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}

	cat, pools, err := a.catalogRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var seed uint64
	if pc.Seed != nil {
		seed = *pc.Seed
	} else {
		seed = a.newSeed()
	}
	rng := planner.NewRand(seed)
	runID := uuid.NewString()

	plan, err := planner.Select(cat, pc.Days, pc.Constraints, rng)
	if err != nil {
		logger.Warn("meal selection failed", zap.String("run_id", runID), zap.Uint64("seed", seed), zap.Error(err))
		return nil, err
	}
	plan.RunID = runID
	plan.Seed = seed

	list, err := shopping.Build(plan, cat, pools, pc.SampleSizes, rng)
	if err != nil {
		logger.Warn("shopping list failed", zap.String("run_id", runID), zap.Uint64("seed", seed), zap.Error(err))
		return nil, err
	}

	logger.Info("plan generated",
		zap.String("run_id", runID),
		zap.Uint64("seed", seed),
		zap.Strings("meals", plan.MealIDs()),
		zap.Int("ingredients", len(list.MealIngredients)),
	)
	return &Result{Plan: plan, List: list, Catalog: cat}, nil
}

// ImportCatalog validates a catalog file and makes it the stored catalog.
// Stored meals the file no longer lists are removed. It returns the number
// of meals stored afterwards.
func (a *App) ImportCatalog(ctx context.Context, file *storage.CatalogFile) (int, error) {
	cat, err := file.Catalog()
	if err != nil {
		return 0, err
	}
	pools, err := file.Pools()
	if err != nil {
		return 0, err
	}

	if err := a.catalogRepo.Replace(ctx, cat, pools); err != nil {
		return 0, fmt.Errorf("failed to store catalog: %w", err)
	}

	count, err := a.catalogRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("catalog imported", zap.Int("meals", count), zap.Int("staples", len(pools.Staples)))
	return count, nil
}

// RemoveMeal deletes a meal from the stored catalog. It reports whether the
// meal was there.
func (a *App) RemoveMeal(ctx context.Context, id string) (bool, error) {
	existing, err := a.catalogRepo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if err := a.catalogRepo.Delete(ctx, id); err != nil {
		return false, err
	}
	logger.Info("meal removed", zap.String("meal", id))
	return true, nil
}

// DumpCatalog reads the stored catalog back into file form.
func (a *App) DumpCatalog(ctx context.Context) (*storage.CatalogFile, error) {
	cat, pools, err := a.catalogRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return storage.NewCatalogFile(cat, pools), nil
}

// ClipMeal imports the recipe at url into the catalog.
func (a *App) ClipMeal(ctx context.Context, url string) (catalog.Meal, error) {
	if a.clipper == nil {
		return catalog.Meal{}, fmt.Errorf("clipper %w", ErrNotConfigured)
	}

	meal, err := a.clipper.ClipURL(ctx, url)
	if err != nil {
		return catalog.Meal{}, err
	}

	existing, err := a.catalogRepo.Get(ctx, meal.ID)
	if err != nil {
		return catalog.Meal{}, err
	}
	if existing != nil {
		// Keep capability lists someone already curated by hand.
		meal.Chefs = existing.Chefs
		logger.Info("replacing clipped meal", zap.String("meal", meal.ID))
	}

	if err := a.catalogRepo.Save(ctx, meal); err != nil {
		return catalog.Meal{}, fmt.Errorf("failed to save meal %q: %w", meal.ID, err)
	}
	return meal, nil
}

// Export writes the result as a workbook in dir and returns its path. The
// file is named after the date, so a later export that day replaces it.
func (a *App) Export(result *Result, dir string, now time.Time) (string, error) {
	return a.writeWorkbook(result, filepath.Join(dir, export.FileName(now)))
}

// ExportRun is like Export but names the file after the run, so concurrent
// exports never overwrite each other. Callers remove the file when done.
func (a *App) ExportRun(result *Result, dir string, now time.Time) (string, error) {
	return a.writeWorkbook(result, filepath.Join(dir, export.RunFileName(now, result.Plan.RunID)))
}

func (a *App) writeWorkbook(result *Result, path string) (string, error) {
	if err := export.WriteWorkbook(path, result.Plan, result.Catalog, result.List); err != nil {
		return "", err
	}
	logger.Info("plan exported", zap.String("run_id", result.Plan.RunID), zap.String("path", path))
	return path, nil
}

// Publish posts the result to Ghost, as a draft unless publish is set.
func (a *App) Publish(ctx context.Context, result *Result, now time.Time, publish bool) (*ghost.Post, error) {
	if a.publisher == nil {
		return nil, fmt.Errorf("ghost publisher %w", ErrNotConfigured)
	}

	title := fmt.Sprintf("Dinners for the week of %s", now.Format("January 2, 2006"))
	post, err := a.publisher.CreatePost(ctx, title, export.HTML(result.Plan, result.Catalog, result.List), publish)
	if err != nil {
		return nil, fmt.Errorf("failed to publish plan: %w", err)
	}

	logger.Info("plan published", zap.String("run_id", result.Plan.RunID), zap.String("post_id", post.ID), zap.String("status", post.Status))
	return post, nil
}
