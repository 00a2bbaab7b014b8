package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrMalformedMealRecord is returned when a catalog entry lacks a required attribute.
	ErrMalformedMealRecord = errors.New("malformed meal record")
	// ErrDuplicateMeal is returned when two catalog entries share an identifier.
	ErrDuplicateMeal = errors.New("duplicate meal")
)

// Meal is a single catalog entry.
type Meal struct {
	ID          string   `json:"name"`
	Categories  []string `json:"categories"`
	Ingredients []string `json:"ingredients"`
	Prep        []string `json:"prep"`
	// Chefs lists who can cook the meal. A nil slice means the record carries
	// no capability list at all, which is not the same as an empty one.
	Chefs []string `json:"chefs"`
}

// Validate checks the record's required attributes. When requireChefs is set
// the record must also carry a capability list.
func (m Meal) Validate(requireChefs bool) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: meal has no name", ErrMalformedMealRecord)
	}
	if len(m.Categories) == 0 {
		return fmt.Errorf("%w: meal %q has no categories", ErrMalformedMealRecord, m.ID)
	}
	for _, c := range m.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: meal %q has a blank category", ErrMalformedMealRecord, m.ID)
		}
	}
	if requireChefs && m.Chefs == nil {
		return fmt.Errorf("%w: meal %q has no chef list", ErrMalformedMealRecord, m.ID)
	}
	return nil
}

// CookableBy reports whether chef appears in the meal's capability list.
func (m Meal) CookableBy(chef string) bool {
	return slices.Contains(m.Chefs, chef)
}

// SharesCategory reports whether the meal carries any of the given categories.
func (m Meal) SharesCategory(categories map[string]struct{}) bool {
	for _, c := range m.Categories {
		if _, ok := categories[c]; ok {
			return true
		}
	}
	return false
}

// UniqueIngredients returns the meal's ingredients with duplicates removed,
// keeping first-seen order.
func (m Meal) UniqueIngredients() []string {
	seen := make(map[string]struct{}, len(m.Ingredients))
	out := make([]string, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		if _, ok := seen[ing]; ok {
			continue
		}
		seen[ing] = struct{}{}
		out = append(out, ing)
	}
	return out
}

// Catalog is a read-only view over the known meals. Iteration order is the
// order the meals were given in, so seeded runs are reproducible.
type Catalog struct {
	meals []Meal
	index map[string]int
}

// New builds a Catalog, rejecting malformed and duplicate entries.
func New(meals []Meal) (*Catalog, error) {
	c := &Catalog{
		meals: make([]Meal, 0, len(meals)),
		index: make(map[string]int, len(meals)),
	}
	for _, m := range meals {
		if err := m.Validate(false); err != nil {
			return nil, err
		}
		if _, exists := c.index[m.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMeal, m.ID)
		}
		c.index[m.ID] = len(c.meals)
		c.meals = append(c.meals, cloneMeal(m))
	}
	return c, nil
}

// Get looks up a meal by identifier.
func (c *Catalog) Get(id string) (Meal, bool) {
	i, ok := c.index[id]
	if !ok {
		return Meal{}, false
	}
	return cloneMeal(c.meals[i]), true
}

// Meals returns a copy of every meal in catalog order.
func (c *Catalog) Meals() []Meal {
	out := make([]Meal, len(c.meals))
	for i, m := range c.meals {
		out[i] = cloneMeal(m)
	}
	return out
}

// IDs returns meal identifiers in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.meals))
	for i, m := range c.meals {
		ids[i] = m.ID
	}
	return ids
}

// Len returns the number of meals.
func (c *Catalog) Len() int {
	return len(c.meals)
}

// RequireChefs checks that every meal carries a capability list.
func (c *Catalog) RequireChefs() error {
	for _, m := range c.meals {
		if err := m.Validate(true); err != nil {
			return err
		}
	}
	return nil
}

func cloneMeal(m Meal) Meal {
	m.Categories = slices.Clone(m.Categories)
	m.Ingredients = slices.Clone(m.Ingredients)
	m.Prep = slices.Clone(m.Prep)
	if m.Chefs != nil {
		m.Chefs = slices.Clone(m.Chefs)
	}
	return m
}
