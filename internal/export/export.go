// Package export renders a meal plan and its shopping list for people to read.
package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/planner"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnplannedLabel is shown in place of a meal on days nobody cooks.
const UnplannedLabel = "Unplanned"

// Schedule is the plan as a table, one row per day.
type Schedule struct {
	Headers []string
	Rows    [][]string
}

// NewSchedule lays out the plan. The Chef column appears only when some day
// has a chef.
func NewSchedule(plan *planner.MealPlan, cat *catalog.Catalog) Schedule {
	withChef := false
	for _, d := range plan.Plan {
		if d.Chef != "" {
			withChef = true
			break
		}
	}

	s := Schedule{Headers: []string{"Day", "Meal"}}
	if withChef {
		s.Headers = append(s.Headers, "Chef")
	}
	s.Headers = append(s.Headers, "Ingredients", "Prep")

	for _, d := range plan.Plan {
		row := []string{d.Day}
		if !d.IsPlanned() {
			row = append(row, UnplannedLabel)
			if withChef {
				row = append(row, "")
			}
			row = append(row, "", "")
			s.Rows = append(s.Rows, row)
			continue
		}

		meal, _ := cat.Get(d.MealID)
		row = append(row, Title(d.MealID))
		if withChef {
			row = append(row, Title(d.Chef))
		}
		row = append(row, strings.Join(meal.Ingredients, ", "), strings.Join(meal.Prep, ", "))
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Title title-cases a meal or chef name for display. Every run of letters
// starts a new word, so "mac_and_cheese" becomes "Mac_And_Cheese".
func Title(s string) string {
	caser := cases.Title(language.English)
	var sb strings.Builder
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			sb.WriteString(caser.String(s[start:i]))
			start = -1
		}
		sb.WriteRune(r)
	}
	if start >= 0 {
		sb.WriteString(caser.String(s[start:]))
	}
	return sb.String()
}

// FileName is the workbook name for a plan made on the given date.
func FileName(t time.Time) string {
	return fmt.Sprintf("dinners_%s.xlsx", t.Format("2006_01_02"))
}

// RunFileName is like FileName but unique to one planning run, so
// concurrent exports into the same directory never collide.
func RunFileName(t time.Time, runID string) string {
	if runID == "" {
		return FileName(t)
	}
	return fmt.Sprintf("dinners_%s_%s.xlsx", t.Format("2006_01_02"), runID)
}
