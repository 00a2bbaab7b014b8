package planner

// Unplanned is the MealID of a day that has no meal, because nobody is
// cooking that day.
const Unplanned = ""

// DayPlan represents the plan for a single day.
type DayPlan struct {
	Day    string `json:"day"`
	MealID string `json:"meal_id"`
	Chef   string `json:"chef,omitempty"`
}

// IsPlanned reports whether a real meal was chosen for the day.
func (d DayPlan) IsPlanned() bool {
	return d.MealID != Unplanned
}

// MealPlan represents one planning run's day-to-meal assignment.
type MealPlan struct {
	RunID string    `json:"run_id,omitempty"`
	Seed  uint64    `json:"seed"`
	Plan  []DayPlan `json:"plan"`
}

// Planned returns the days that received a real meal, in day order.
func (p *MealPlan) Planned() []DayPlan {
	var out []DayPlan
	for _, d := range p.Plan {
		if d.IsPlanned() {
			out = append(out, d)
		}
	}
	return out
}

// MealIDs returns the chosen meal identifiers of planned days, in day order.
func (p *MealPlan) MealIDs() []string {
	var ids []string
	for _, d := range p.Planned() {
		ids = append(ids, d.MealID)
	}
	return ids
}
