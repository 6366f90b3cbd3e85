package simulate

import (
	"math"

	"github.com/theirongolddev/goldplan/internal/forecast"
	"github.com/theirongolddev/goldplan/internal/model"
)

const (
	dripEpsilon   = 1e-6
	dripCapFactor = 5
)

// AheadResult compares buying a weight today with buying it month by month
// at the plan's pace.
type AheadResult struct {
	WeightNow float64
	CostNow   float64

	MonthsCovered     int
	CoverageRemainder float64 // grams left after the last fully covered month

	Rate       float64
	DripCost   float64
	DripMonths int
	Unpriced   float64 // grams still unbought when the month cap was reached

	Diff float64 // DripCost - CostNow
}

// BuyingNowCheaper reports whether the lump sum today beats the drip.
func (r AheadResult) BuyingNowCheaper() bool {
	return r.Diff > 0
}

// BuyAhead prices weightNow grams bought today against the same grams bought
// at the plan's monthly pace at forecast prices. The forecast rate is
// estimated over a horizon equal to the plan length.
func BuyAhead(est forecast.Estimator, rows []model.PlanRow, weightNow, lastPrice float64) (AheadResult, error) {
	res := AheadResult{WeightNow: weightNow, CostNow: lastPrice * weightNow}
	if len(rows) == 0 {
		return res, ErrEmptyPlan
	}

	res.MonthsCovered, res.CoverageRemainder = coverage(rows, weightNow)

	n := len(rows)
	res.Rate = est.Rate(rows, n)

	remaining := weightNow
	month := 1
	for remaining > dripEpsilon && month <= n*dripCapFactor {
		price := forecast.ForecastPrice(lastPrice, res.Rate, month)
		planned := rows[min(month-1, n-1)].GramsForBudget
		buy := math.Min(planned, remaining)
		res.DripCost += buy * price
		remaining -= buy
		res.DripMonths = month
		month++
	}
	if remaining > dripEpsilon {
		res.Unpriced = remaining
	}

	res.Diff = res.DripCost - res.CostNow
	return res, nil
}

// coverage spends weight on plan months in order and counts the months it
// pays for in full. It stops at the first month it cannot cover.
func coverage(rows []model.PlanRow, weight float64) (int, float64) {
	left := weight
	covered := 0
	for _, r := range rows {
		if left < r.GramsForBudget {
			break
		}
		left -= r.GramsForBudget
		covered++
	}
	return covered, left
}
