package shopping

import "fmt"

// Column headers, in display order.
const (
	HeaderStaples            = "Check Staples"
	HeaderVeggiesAndToppings = "Veggies and Toppings"
	HeaderMealIngredients    = "Meal Ingredients"
)

// Headers lists the shopping table's columns.
var Headers = []string{HeaderStaples, HeaderVeggiesAndToppings, HeaderMealIngredients}

// SampleSizes is how many items to draw from each supplementary pool.
type SampleSizes struct {
	FreshVegetables  int `yaml:"fresh_vegetables" json:"fresh_vegetables"`
	FrozenVegetables int `yaml:"frozen_vegetables" json:"frozen_vegetables"`
	Toppings         int `yaml:"toppings" json:"toppings"`
}

// DefaultSampleSizes draws two fresh vegetables, one frozen, and two toppings.
func DefaultSampleSizes() SampleSizes {
	return SampleSizes{FreshVegetables: 2, FrozenVegetables: 1, Toppings: 2}
}

// Total is the size of the veggies and toppings column.
func (s SampleSizes) Total() int {
	return s.FreshVegetables + s.FrozenVegetables + s.Toppings
}

// Item is a non-staple ingredient and how many planned days use it.
type Item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// String renders the item for the shopping table.
func (i Item) String() string {
	if i.Count > 1 {
		return fmt.Sprintf("%s (%d meals)", i.Name, i.Count)
	}
	return i.Name
}

// ShoppingList holds three independent columns. Rows line up only for display.
type ShoppingList struct {
	Staples            []string `json:"staples"`
	VeggiesAndToppings []string `json:"veggies_and_toppings"`
	MealIngredients    []Item   `json:"meal_ingredients"`
}

// Ingredients returns the rendered meal ingredients column.
func (l *ShoppingList) Ingredients() []string {
	out := make([]string, len(l.MealIngredients))
	for i, item := range l.MealIngredients {
		out[i] = item.String()
	}
	return out
}

// Rows lays the columns side by side, padding shorter ones with empty cells.
func (l *ShoppingList) Rows() [][]string {
	columns := [][]string{l.Staples, l.VeggiesAndToppings, l.Ingredients()}

	height := 0
	for _, col := range columns {
		height = max(height, len(col))
	}

	rows := make([][]string, height)
	for r := range rows {
		row := make([]string, len(columns))
		for c, col := range columns {
			if r < len(col) {
				row[c] = col[r]
			}
		}
		rows[r] = row
	}
	return rows
}
