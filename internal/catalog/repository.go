package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	catalogdb "dinner-planner/internal/catalog/catalog_db"
)

// Repository is a database-backed store for meals and ingredient pools.
type Repository struct {
	queries *catalogdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: catalogdb.New(d),
		db:      d,
	}
}

// Save inserts or updates a meal.
func (r *Repository) Save(ctx context.Context, m Meal) error {
	if err := m.Validate(false); err != nil {
		return err
	}
	mealJSON, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal meal to JSON: %w", err)
	}

	return r.queries.UpsertMeal(ctx, catalogdb.UpsertMealParams{
		ID:        m.ID,
		Data:      string(mealJSON),
		UpdatedAt: time.Now().UTC(),
	})
}

// Get retrieves a meal by its ID. A missing meal is reported as (nil, nil).
func (r *Repository) Get(ctx context.Context, id string) (*Meal, error) {
	row, err := r.queries.GetMealByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal by ID: %w", err)
	}

	var m Meal
	if err := json.Unmarshal([]byte(row.Data), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal %q: %w", row.ID, err)
	}
	return &m, nil
}

// List returns every stored meal ordered by ID.
func (r *Repository) List(ctx context.Context) ([]Meal, error) {
	rows, err := r.queries.ListMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	meals := make([]Meal, 0, len(rows))
	for _, row := range rows {
		var m Meal
		if err := json.Unmarshal([]byte(row.Data), &m); err != nil {
			return nil, fmt.Errorf("%w: stored meal %q: %v", ErrMalformedMealRecord, row.ID, err)
		}
		meals = append(meals, m)
	}
	return meals, nil
}

// Count returns the number of stored meals.
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.queries.CountMeals(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count meals: %w", err)
	}
	return int(count), nil
}

// Delete removes a meal. Deleting a missing meal is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.queries.DeleteMeal(ctx, id); err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}

// SavePools replaces the stored ingredient pools in a single transaction.
func (r *Repository) SavePools(ctx context.Context, pools SharedIngredientPools) error {
	if err := pools.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replacePools(ctx, r.queries.WithTx(tx), pools); err != nil {
		return err
	}
	return tx.Commit()
}

// Replace makes the stored catalog match cat and pools exactly, in a single
// transaction. Stored meals missing from cat are removed.
func (r *Repository) Replace(ctx context.Context, cat *Catalog, pools SharedIngredientPools) error {
	if err := pools.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	rows, err := q.ListMeals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list meals: %w", err)
	}

	keep := make(map[string]struct{}, cat.Len())
	for _, id := range cat.IDs() {
		keep[id] = struct{}{}
	}
	for _, row := range rows {
		if _, ok := keep[row.ID]; ok {
			continue
		}
		if err := q.DeleteMeal(ctx, row.ID); err != nil {
			return fmt.Errorf("failed to delete meal %q: %w", row.ID, err)
		}
	}

	now := time.Now().UTC()
	for _, m := range cat.Meals() {
		mealJSON, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal meal to JSON: %w", err)
		}
		err = q.UpsertMeal(ctx, catalogdb.UpsertMealParams{
			ID:        m.ID,
			Data:      string(mealJSON),
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to save meal %q: %w", m.ID, err)
		}
	}

	if err := replacePools(ctx, q, pools); err != nil {
		return err
	}
	return tx.Commit()
}

func replacePools(ctx context.Context, q *catalogdb.Queries, pools SharedIngredientPools) error {
	if err := q.DeletePoolItems(ctx); err != nil {
		return fmt.Errorf("failed to clear pools: %w", err)
	}
	for pool, items := range pools.Named() {
		for i, item := range items {
			err := q.InsertPoolItem(ctx, catalogdb.InsertPoolItemParams{
				Pool:     pool,
				Item:     item,
				Position: int64(i),
			})
			if err != nil {
				return fmt.Errorf("failed to insert %s item %q: %w", pool, item, err)
			}
		}
	}
	return nil
}

// LoadPools reads the stored ingredient pools, keeping each pool's saved order.
func (r *Repository) LoadPools(ctx context.Context) (SharedIngredientPools, error) {
	rows, err := r.queries.ListPoolItems(ctx)
	if err != nil {
		return SharedIngredientPools{}, fmt.Errorf("failed to list pool items: %w", err)
	}

	var pools SharedIngredientPools
	for _, row := range rows {
		switch row.Pool {
		case PoolStaples:
			pools.Staples = append(pools.Staples, row.Item)
		case PoolFreshVegetables:
			pools.FreshVegetables = append(pools.FreshVegetables, row.Item)
		case PoolFrozenVegetables:
			pools.FrozenVegetables = append(pools.FrozenVegetables, row.Item)
		case PoolToppings:
			pools.Toppings = append(pools.Toppings, row.Item)
		default:
			return SharedIngredientPools{}, fmt.Errorf("%w: unknown pool %q", ErrInvalidPools, row.Pool)
		}
	}
	return pools, nil
}

// Load builds a Catalog and the shared pools from the database.
func (r *Repository) Load(ctx context.Context) (*Catalog, SharedIngredientPools, error) {
	meals, err := r.List(ctx)
	if err != nil {
		return nil, SharedIngredientPools{}, err
	}
	cat, err := New(meals)
	if err != nil {
		return nil, SharedIngredientPools{}, err
	}
	pools, err := r.LoadPools(ctx)
	if err != nil {
		return nil, SharedIngredientPools{}, err
	}
	return cat, pools, nil
}
