package pipeline

import (
	"sort"

	"github.com/theirongolddev/goldplan/internal/model"
)

// CalcYearStats sums planned grams per calendar year.
func CalcYearStats(rows []model.PlanRow) map[int]float64 {
	byYear := make(map[int]float64)
	for _, r := range rows {
		byYear[r.Date.Year()] += r.GramsForBudget
	}
	return byYear
}

// SortedYears returns the years of a year-stats map in ascending order.
func SortedYears(stats map[int]float64) []int {
	years := make([]int, 0, len(stats))
	for y := range stats {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// TotalGrams sums planned grams across all rows.
func TotalGrams(rows []model.PlanRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.GramsForBudget
	}
	return total
}

// TotalCost sums what the plan's purchases cost at their own prices.
func TotalCost(rows []model.PlanRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.GramsForBudget * r.PricePerGram
	}
	return total
}
