package pipeline

import (
	"time"

	"github.com/theirongolddev/goldplan/internal/model"
)

// MinRecommendedRows is the plan length below which front-ends should warn
// that the plan rests on too little price history.
const MinRecommendedRows = 6

// BuildPlanRows converts sampled points into plan rows for a fixed monthly
// budget. Prices must be positive.
func BuildPlanRows(points []model.PricePoint, monthlyBudget float64) []model.PlanRow {
	rows := make([]model.PlanRow, 0, len(points))
	for _, p := range points {
		perGram := p.PricePerGram()
		rows = append(rows, model.PlanRow{
			Date:           p.Date,
			PricePerGram:   perGram,
			GramsForBudget: monthlyBudget / perGram,
		})
	}
	return rows
}

// ChildInfo is the registration data for a new plan.
type ChildInfo struct {
	ChildID        string
	Name           string
	BirthDate      time.Time
	TargetAgeYears *int
	MonthlyBudget  float64
}

// Planner builds child plans from a price history.
type Planner struct {
	DayPriority []int            // nil uses DefaultDayPriority
	Now         func() time.Time // nil uses time.Now
}

// Register builds a complete plan for the child from the full price history.
// The plan covers birth date to target date (or today) sampled monthly.
func (p Planner) Register(info ChildInfo, history []model.PricePoint) model.ChildPlan {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	plan := model.ChildPlan{
		ChildID:        info.ChildID,
		Name:           info.Name,
		BirthDate:      model.DateOf(info.BirthDate),
		TargetAgeYears: info.TargetAgeYears,
		MonthlyBudget:  info.MonthlyBudget,
	}

	target := plan.TargetDate(now())
	period := FilterPeriod(history, plan.BirthDate, target)
	monthly := PickMonthly(period, p.DayPriority)
	plan.Rows = BuildPlanRows(monthly, info.MonthlyBudget)
	return plan
}

// RegisterChild builds a plan with the default day priority and today's date.
func RegisterChild(info ChildInfo, history []model.PricePoint) model.ChildPlan {
	return Planner{}.Register(info, history)
}
