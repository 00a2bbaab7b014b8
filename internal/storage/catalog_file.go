package storage

import (
	"fmt"

	"dinner-planner/internal/catalog"
)

// CatalogFile is the on-disk catalog: meals plus the shared ingredient pools.
type CatalogFile struct {
	Meals             []MealRecord                  `json:"meals"`
	SharedIngredients catalog.SharedIngredientPools `json:"shared_ingredients"`
}

// MealRecord is one meal as written in a catalog file. Older files carry a
// single "category" string instead of a "categories" list.
type MealRecord struct {
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Ingredients []string `json:"ingredients"`
	Prep        []string `json:"prep"`
	Chefs       []string `json:"chefs"`
}

// Meal converts the record into a catalog meal.
func (r MealRecord) Meal() catalog.Meal {
	categories := r.Categories
	if len(categories) == 0 && r.Category != "" {
		categories = []string{r.Category}
	}
	return catalog.Meal{
		ID:          r.Name,
		Categories:  categories,
		Ingredients: r.Ingredients,
		Prep:        r.Prep,
		Chefs:       r.Chefs,
	}
}

// NewMealRecord converts a catalog meal into its file form.
func NewMealRecord(m catalog.Meal) MealRecord {
	return MealRecord{
		Name:        m.ID,
		Categories:  m.Categories,
		Ingredients: m.Ingredients,
		Prep:        m.Prep,
		Chefs:       m.Chefs,
	}
}

// Catalog builds the read-only catalog view from the file's meals.
func (f *CatalogFile) Catalog() (*catalog.Catalog, error) {
	meals := make([]catalog.Meal, 0, len(f.Meals))
	for _, r := range f.Meals {
		meals = append(meals, r.Meal())
	}
	cat, err := catalog.New(meals)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}
	return cat, nil
}

// Pools returns the validated shared ingredient pools.
func (f *CatalogFile) Pools() (catalog.SharedIngredientPools, error) {
	if err := f.SharedIngredients.Validate(); err != nil {
		return catalog.SharedIngredientPools{}, fmt.Errorf("invalid catalog file: %w", err)
	}
	return f.SharedIngredients, nil
}

// NewCatalogFile converts a catalog and its pools into file form.
func NewCatalogFile(cat *catalog.Catalog, pools catalog.SharedIngredientPools) *CatalogFile {
	f := &CatalogFile{SharedIngredients: pools}
	for _, m := range cat.Meals() {
		f.Meals = append(f.Meals, NewMealRecord(m))
	}
	return f
}
