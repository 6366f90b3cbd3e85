package model

import (
	"sort"
	"time"
)

// PlanRow is one month of a savings plan: the sampled price and the grams
// the monthly budget buys at that price.
type PlanRow struct {
	Date           time.Time
	PricePerGram   float64
	GramsForBudget float64
}

// ChildPlan is a registered savings plan for one child.
type ChildPlan struct {
	ChildID        string
	Name           string
	BirthDate      time.Time
	TargetAgeYears *int // nil means the plan runs until today
	MonthlyBudget  float64
	Rows           []PlanRow
}

// TargetDate returns the date the plan aims for. Plans without a target age
// run until today.
func (p ChildPlan) TargetDate(today time.Time) time.Time {
	if p.TargetAgeYears == nil {
		return DateOf(today)
	}
	return AddYears(p.BirthDate, *p.TargetAgeYears)
}

// LastRow returns the most recent plan row, or false if the plan is empty.
func (p ChildPlan) LastRow() (PlanRow, bool) {
	if len(p.Rows) == 0 {
		return PlanRow{}, false
	}
	return p.Rows[len(p.Rows)-1], true
}

// PlanCollection maps child IDs to plans for a single user.
type PlanCollection map[string]ChildPlan

// IDs returns the child IDs in ascending order.
func (c PlanCollection) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
