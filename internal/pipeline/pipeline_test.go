package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/goldplan/internal/model"
)

func pt(y int, m time.Month, d int, price float64) model.PricePoint {
	return model.PricePoint{Date: model.Date(y, m, d), Price: price}
}

func TestPickMonthlyPrefersPriorityDays(t *testing.T) {
	points := []model.PricePoint{
		pt(2024, 1, 16, 1),
		pt(2024, 1, 19, 2),
		pt(2024, 1, 20, 3),
		pt(2024, 1, 31, 4),
		pt(2024, 2, 16, 5),
		pt(2024, 2, 17, 6),
		pt(2024, 2, 29, 7),
		pt(2024, 3, 2, 8),
		pt(2024, 3, 28, 9),
	}

	got := PickMonthly(points, nil)
	require.Len(t, got, 3)
	assert.Equal(t, 3.0, got[0].Price, "day 20 wins in January")
	assert.Equal(t, 6.0, got[1].Price, "day 17 beats 16 in February")
	assert.Equal(t, 9.0, got[2].Price, "latest date without priority days")
}

func TestPickMonthlySkipsEmptyMonthsAndSorts(t *testing.T) {
	points := []model.PricePoint{
		pt(2024, 5, 20, 3),
		pt(2023, 12, 1, 1),
		pt(2024, 2, 20, 2),
	}

	got := PickMonthly(points, nil)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date))
	}
	assert.Equal(t, model.Date(2023, 12, 1), got[0].Date)
}

func TestPickMonthlyCustomPriority(t *testing.T) {
	points := []model.PricePoint{pt(2024, 1, 1, 1), pt(2024, 1, 20, 2)}
	got := PickMonthly(points, []int{1})
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].Price)
}

func TestFilterPeriodInclusive(t *testing.T) {
	points := []model.PricePoint{
		pt(2020, 1, 1, 1),
		pt(2020, 1, 2, 2),
		pt(2020, 1, 3, 3),
		pt(2020, 1, 4, 4),
	}
	got := FilterPeriod(points, model.Date(2020, 1, 2), model.Date(2020, 1, 3))
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].Price)
	assert.Equal(t, 3.0, got[1].Price)
}

func TestBuildPlanRowsBudgetIdentity(t *testing.T) {
	points := []model.PricePoint{pt(2024, 1, 20, 1850.5), pt(2024, 2, 20, 1999.99), pt(2024, 3, 20, 2210)}
	rows := BuildPlanRows(points, 150)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.InDelta(t, 150, r.GramsForBudget*r.PricePerGram, 1e-9)
	}
}

func TestRegisterChildSinglePoint(t *testing.T) {
	history := []model.PricePoint{pt(2024, 6, 20, 2000)}
	info := ChildInfo{
		ChildID:       "kid",
		Name:          "Anna",
		BirthDate:     model.Date(2024, 1, 1),
		MonthlyBudget: 200,
	}
	p := Planner{Now: func() time.Time { return model.Date(2024, 12, 31) }}

	plan := p.Register(info, history)
	require.Len(t, plan.Rows, 1)
	assert.InDelta(t, 64.3067, plan.Rows[0].PricePerGram, 1e-4)
	assert.InDelta(t, 3.1100, plan.Rows[0].GramsForBudget, 1e-4)
	assert.Less(t, len(plan.Rows), MinRecommendedRows)
}

func TestRegisterChildTargetAgeBoundsPeriod(t *testing.T) {
	var history []model.PricePoint
	for y := 2010; y <= 2024; y++ {
		for m := time.January; m <= time.December; m++ {
			history = append(history, pt(y, m, 20, 1000))
		}
	}
	age := 3
	info := ChildInfo{ChildID: "a", BirthDate: model.Date(2015, 3, 10), TargetAgeYears: &age, MonthlyBudget: 100}

	plan := RegisterChild(info, history)
	last, ok := plan.LastRow()
	require.True(t, ok)
	assert.Equal(t, model.Date(2015, 3, 20), plan.Rows[0].Date)
	assert.Equal(t, model.Date(2018, 2, 20), last.Date)
	assert.Len(t, plan.Rows, 36)
}

func TestCalcYearStats(t *testing.T) {
	rows := []model.PlanRow{
		{Date: model.Date(2023, 11, 20), GramsForBudget: 1.5},
		{Date: model.Date(2023, 12, 20), GramsForBudget: 2},
		{Date: model.Date(2024, 1, 20), GramsForBudget: 0.25},
	}
	stats := CalcYearStats(rows)
	assert.Equal(t, []int{2023, 2024}, SortedYears(stats))
	assert.InDelta(t, 3.5, stats[2023], 1e-12)
	assert.InDelta(t, 0.25, stats[2024], 1e-12)
	assert.InDelta(t, 3.75, TotalGrams(rows), 1e-12)
}

func TestMonthlyStatus(t *testing.T) {
	rows := []model.PlanRow{
		{GramsForBudget: 2}, {GramsForBudget: 2}, {GramsForBudget: 2}, {GramsForBudget: 2},
	}
	got := MonthlyStatus(rows, 5)
	want := []Fulfillment{Covered, Covered, Partial, Missing}
	require.Len(t, got, len(want))
	for i, st := range got {
		assert.Equal(t, want[i], st.Status, "row %d", i)
	}

	for _, st := range MonthlyStatus(rows, 0) {
		assert.Equal(t, Missing, st.Status)
	}
}

func TestHorizonFor(t *testing.T) {
	age := 18
	plan := model.ChildPlan{
		BirthDate:      model.Date(2020, 1, 15),
		TargetAgeYears: &age,
		Rows: []model.PlanRow{
			{Date: model.Date(2020, 1, 20)},
			{Date: model.Date(2020, 2, 20)},
			{Date: model.Date(2020, 3, 20)},
		},
	}
	h := HorizonFor(plan, model.Date(2024, 1, 1))
	assert.Equal(t, model.Date(2038, 1, 15), h.TargetDate)
	assert.Equal(t, 216, h.TotalMonths)
	assert.Equal(t, 3, h.ElapsedMonths)
	assert.Equal(t, 213, h.RemainingMonths)

	plan.TargetAgeYears = nil
	h = HorizonFor(plan, model.Date(2020, 2, 1))
	assert.Equal(t, 0, h.RemainingMonths)
}
