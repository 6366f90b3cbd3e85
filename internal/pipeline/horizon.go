package pipeline

import (
	"time"

	"github.com/theirongolddev/goldplan/internal/model"
)

// Horizon is the time left until a plan's target date, in whole months.
type Horizon struct {
	TargetDate      time.Time
	TotalMonths     int // birth date to target date
	ElapsedMonths   int // birth date to the last plan row, at least the row count
	RemainingMonths int
}

// Years returns the remaining horizon in years.
func (h Horizon) Years() float64 {
	return float64(h.RemainingMonths) / 12
}

// HorizonFor computes how many months remain between the plan's history and
// its target date.
func HorizonFor(plan model.ChildPlan, today time.Time) Horizon {
	h := Horizon{TargetDate: plan.TargetDate(today)}
	h.TotalMonths = model.MonthsBetweenExact(plan.BirthDate, h.TargetDate)

	if last, ok := plan.LastRow(); ok {
		h.ElapsedMonths = model.MonthsBetweenExact(plan.BirthDate, last.Date)
	}
	if n := len(plan.Rows); n > h.ElapsedMonths {
		h.ElapsedMonths = n
	}

	h.RemainingMonths = h.TotalMonths - h.ElapsedMonths
	if h.RemainingMonths < 0 {
		h.RemainingMonths = 0
	}
	return h
}
