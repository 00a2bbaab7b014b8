package planner

import (
	"errors"
	"fmt"
)

// Unassigned marks a day in ChefResponsibilities that nobody cooks.
const Unassigned = "unassigned"

// CategoryWindow selects how far back category conflicts are checked.
type CategoryWindow string

const (
	WindowNone        CategoryWindow = "none"
	WindowWeekly      CategoryWindow = "weekly"
	WindowConsecutive CategoryWindow = "consecutive"
)

// DefaultDays are the days planned when no configuration says otherwise.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday"}

var errInvalidConstraints = errors.New("invalid constraints")

// Constraints configures the schedule selector.
type Constraints struct {
	RequireUniqueMeals bool           `yaml:"require_unique_meals" json:"require_unique_meals"`
	CategoryWindow     CategoryWindow `yaml:"category_window" json:"category_window"`
	// ChefResponsibilities maps each day to the chef cooking it, or to
	// Unassigned. A nil map turns chef constraints off.
	ChefResponsibilities map[string]string `yaml:"chefs" json:"chefs,omitempty"`
}

// DefaultConstraints returns one meal per category per week, no repeats.
func DefaultConstraints() Constraints {
	return Constraints{
		RequireUniqueMeals: true,
		CategoryWindow:     WindowWeekly,
	}
}

// ChefAware reports whether chef capability constraints are active.
func (c Constraints) ChefAware() bool {
	return c.ChefResponsibilities != nil
}

// Validate checks the constraints against the days being planned.
func (c Constraints) Validate(days []string) error {
	switch c.CategoryWindow {
	case WindowNone, WindowWeekly, WindowConsecutive:
	case "":
		return fmt.Errorf("%w: category window not set", errInvalidConstraints)
	default:
		return fmt.Errorf("%w: unknown category window %q", errInvalidConstraints, c.CategoryWindow)
	}

	if len(days) == 0 {
		return fmt.Errorf("%w: no days to plan", errInvalidConstraints)
	}
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if _, dup := seen[d]; dup {
			return fmt.Errorf("%w: day %q listed twice", errInvalidConstraints, d)
		}
		seen[d] = struct{}{}
	}

	if c.ChefAware() {
		for _, d := range days {
			chef, ok := c.ChefResponsibilities[d]
			if !ok || chef == "" {
				return fmt.Errorf("%w: no chef assigned to %s", errInvalidConstraints, d)
			}
		}
	}
	return nil
}
