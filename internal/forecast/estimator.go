package forecast

import (
	"math"
	"time"

	"github.com/theirongolddev/goldplan/internal/model"
)

// Estimate is a bounded monthly growth rate and how it was reached.
type Estimate struct {
	Rate         float64
	TargetMonths int
	HorizonYears float64
	Band         RateBand

	// Zero when the estimate fell back to the band default.
	CurrentPrice     float64
	MaxAllowedReturn float64
	HistoricalRate   float64
	PenalizedRate    float64
	HistoryRows      int
	FromDefault      bool
}

// AnnualRate converts the monthly rate to a compounded yearly rate.
func (e Estimate) AnnualRate() float64 {
	return math.Pow(1+e.Rate, 12) - 1
}

// ProjectedPrice compounds the current price over the target horizon.
func (e Estimate) ProjectedPrice() float64 {
	if e.TargetMonths <= 0 {
		return e.CurrentPrice
	}
	return e.CurrentPrice * math.Pow(1+e.Rate, float64(e.TargetMonths))
}

// Estimator derives a monthly return from trailing plan history.
type Estimator struct {
	Tables Tables
}

// NewEstimator returns an estimator over the default tables.
func NewEstimator() Estimator {
	return Estimator{Tables: DefaultTables()}
}

// AverageMonthlyReturnWithTarget estimates with the default tables.
func AverageMonthlyReturnWithTarget(rows []model.PlanRow, targetMonths int) float64 {
	return NewEstimator().Rate(rows, targetMonths)
}

// Rate returns only the estimated monthly rate.
func (e Estimator) Rate(rows []model.PlanRow, targetMonths int) float64 {
	return e.Estimate(rows, targetMonths).Rate
}

// Estimate derives the monthly return for a horizon of targetMonths. The
// result always lies within the horizon's band.
func (e Estimator) Estimate(rows []model.PlanRow, targetMonths int) Estimate {
	t := e.Tables
	years := t.NoHorizonYears
	if targetMonths > 0 {
		years = float64(targetMonths) / 12
	}
	band := t.Band(years)

	est := Estimate{TargetMonths: targetMonths, HorizonYears: years, Band: band}
	if len(rows) < 2 {
		est.Rate = band.Default
		est.FromDefault = true
		if len(rows) == 1 {
			est.CurrentPrice = rows[0].PricePerGram
		}
		return est
	}

	last := rows[len(rows)-1]
	est.CurrentPrice = last.PricePerGram

	est.MaxAllowedReturn = t.NoHorizonMaxReturn
	if targetMonths > 0 {
		maxTarget := est.CurrentPrice * t.Ceiling(years)
		est.MaxAllowedReturn = math.Pow(maxTarget/est.CurrentPrice, 1/float64(targetMonths)) - 1
	}

	window := trailing(rows, model.AddYears(last.Date, -t.HistoryYears))
	est.HistoryRows = len(window)
	est.HistoricalRate = t.FallbackHistRate
	if len(window) >= t.MinHistoryRows {
		est.HistoricalRate = geometricReturn(window, t.GeometricFallback)
	}

	est.PenalizedRate = est.HistoricalRate
	if est.CurrentPrice > t.PenaltyThreshold && t.PenaltyStep > 0 {
		penalty := (est.CurrentPrice - t.PenaltyThreshold) / t.PenaltyStep * t.PenaltyPerStep
		est.PenalizedRate = math.Max(est.HistoricalRate-penalty, t.PenaltyFloor)
	}

	rate := math.Min(est.PenalizedRate, est.MaxAllowedReturn)
	est.Rate = clamp(rate, band.Lo, band.Hi)
	return est
}

// trailing returns the rows dated on or after since.
func trailing(rows []model.PlanRow, since time.Time) []model.PlanRow {
	var out []model.PlanRow
	for _, r := range rows {
		if !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
