package forecast

import (
	"math"

	"github.com/theirongolddev/goldplan/internal/model"
)

const defaultGeometricReturn = 0.003

// GeometricReturn is the constant monthly rate that compounds the first row's
// price into the last row's over the complete months between them.
// Degenerate input yields 0.003.
func GeometricReturn(rows []model.PlanRow) float64 {
	return geometricReturn(rows, defaultGeometricReturn)
}

func geometricReturn(rows []model.PlanRow, fallback float64) float64 {
	if len(rows) < 2 {
		return fallback
	}
	first, last := rows[0], rows[len(rows)-1]
	if first.PricePerGram <= 0 || last.PricePerGram <= 0 {
		return fallback
	}

	months := model.MonthsBetweenExact(first.Date, last.Date)
	if months < 1 {
		months = 1
	}

	r := math.Pow(last.PricePerGram/first.PricePerGram, 1/float64(months)) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return fallback
	}
	return r
}
