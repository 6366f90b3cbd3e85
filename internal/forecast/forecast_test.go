package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/goldplan/internal/model"
)

// monthlyRows builds n rows on the 20th of consecutive months ending at the
// given price and growing at rate per month.
func monthlyRows(n int, lastPrice, rate float64) []model.PlanRow {
	rows := make([]model.PlanRow, n)
	start := model.Date(2015, 1, 20)
	for i := 0; i < n; i++ {
		price := lastPrice / math.Pow(1+rate, float64(n-1-i))
		rows[i] = model.PlanRow{
			Date:           start.AddDate(0, i, 0),
			PricePerGram:   price,
			GramsForBudget: 100 / price,
		}
	}
	return rows
}

func TestEstimateDefaultsWithoutHistory(t *testing.T) {
	tests := []struct {
		months int
		want   float64
	}{
		{0, 0.004},
		{-5, 0.004},
		{12, 0.005},
		{60, 0.005},
		{61, 0.004},
		{120, 0.004},
		{240, 0.0035},
		{241, 0.003},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AverageMonthlyReturnWithTarget(nil, tt.months), "months=%d", tt.months)
	}

	one := monthlyRows(1, 60, 0)
	est := NewEstimator().Estimate(one, 60)
	assert.True(t, est.FromDefault)
	assert.Equal(t, 0.005, est.Rate)
}

func TestEstimateFlatHistoryClampsToBandFloor(t *testing.T) {
	est := NewEstimator().Estimate(monthlyRows(24, 50, 0), 120)
	assert.InDelta(t, 0, est.HistoricalRate, 1e-12)
	assert.Equal(t, 0.004, est.Rate)
}

func TestEstimateShortWindowUsesFallbackRate(t *testing.T) {
	est := NewEstimator().Estimate(monthlyRows(6, 50, 0.02), 120)
	assert.Equal(t, 6, est.HistoryRows)
	assert.Equal(t, 0.004, est.HistoricalRate)
	assert.Equal(t, 0.004, est.Rate)
}

func TestEstimateHistoryWindowIsFiveYears(t *testing.T) {
	est := NewEstimator().Estimate(monthlyRows(100, 50, 0.001), 120)
	// 2015-01-20 + 99 months = 2023-04-20; window starts 2018-04-20.
	assert.Equal(t, 61, est.HistoryRows)
}

func TestEstimateSteepHistoryHitsBandCeiling(t *testing.T) {
	est := NewEstimator().Estimate(monthlyRows(13, 80, 0.05), 12)
	assert.InDelta(t, 0.05, est.HistoricalRate, 1e-9)
	assert.InDelta(t, math.Pow(2, 1.0/12)-1, est.MaxAllowedReturn, 1e-12)
	assert.Equal(t, 0.008, est.Rate)
}

func TestEstimatePricePenaltyAndCeiling(t *testing.T) {
	est := NewEstimator().Estimate(monthlyRows(24, 120, 0.01), 360)
	require.InDelta(t, 0.01, est.HistoricalRate, 1e-9)
	assert.InDelta(t, 0.01-0.0009, est.PenalizedRate, 1e-9)

	maxAllowed := math.Pow(3.5, 1.0/360) - 1
	assert.InDelta(t, maxAllowed, est.MaxAllowedReturn, 1e-12)
	assert.InDelta(t, maxAllowed, est.Rate, 1e-12)
}

func TestEstimatePenaltyFloor(t *testing.T) {
	est := NewEstimator().Estimate(monthlyRows(24, 500, 0.004), 240)
	assert.Equal(t, 0.0025, est.PenalizedRate)
	assert.Equal(t, 0.0035, est.Rate)
}

func TestEstimateAlwaysWithinBand(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := NewEstimator()
	for i := 0; i < 500; i++ {
		n := rng.Intn(120)
		rows := make([]model.PlanRow, n)
		d := model.Date(2000+rng.Intn(20), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
		for j := range rows {
			rows[j] = model.PlanRow{Date: d.AddDate(0, j, 0), PricePerGram: 1 + rng.Float64()*300}
		}
		months := rng.Intn(400) - 20

		got := e.Rate(rows, months)
		years := 10.0
		if months > 0 {
			years = float64(months) / 12
		}
		band := e.Tables.Band(years)
		assert.GreaterOrEqual(t, got, band.Lo, "n=%d months=%d", n, months)
		assert.LessOrEqual(t, got, band.Hi, "n=%d months=%d", n, months)
	}
}

func TestEstimatorCustomTables(t *testing.T) {
	tables := DefaultTables()
	tables.Bands = []RateBand{{MaxYears: 0, Default: 0.01, Lo: 0.01, Hi: 0.02}}
	e := Estimator{Tables: tables}
	assert.Equal(t, 0.01, e.Rate(nil, 600))
	assert.Equal(t, 0.01, e.Rate(monthlyRows(24, 50, 0), 600))
}

func TestEstimateAnnualAndProjected(t *testing.T) {
	est := Estimate{Rate: 0.005, TargetMonths: 24, CurrentPrice: 60}
	assert.InDelta(t, math.Pow(1.005, 12)-1, est.AnnualRate(), 1e-12)
	assert.InDelta(t, 60*math.Pow(1.005, 24), est.ProjectedPrice(), 1e-9)

	est.TargetMonths = 0
	assert.Equal(t, 60.0, est.ProjectedPrice())
}

func TestGeometricReturn(t *testing.T) {
	assert.Equal(t, 0.003, GeometricReturn(nil))
	assert.Equal(t, 0.003, GeometricReturn(monthlyRows(1, 10, 0)))

	rows := []model.PlanRow{
		{Date: model.Date(2020, 1, 20), PricePerGram: 50},
		{Date: model.Date(2022, 1, 20), PricePerGram: 100},
	}
	assert.InDelta(t, math.Pow(2, 1.0/24)-1, GeometricReturn(rows), 1e-12)

	rows[0].PricePerGram = 0
	assert.Equal(t, 0.003, GeometricReturn(rows))

	same := []model.PlanRow{
		{Date: model.Date(2020, 1, 20), PricePerGram: 50},
		{Date: model.Date(2020, 1, 25), PricePerGram: 55},
	}
	assert.InDelta(t, 0.1, GeometricReturn(same), 1e-12, "sub-month span counts as one month")
}

func TestForecastPrice(t *testing.T) {
	for _, p := range []float64{0.5, 60, 150, 2000} {
		for _, r := range []float64{-0.01, 0, 0.005, 0.2} {
			assert.Equal(t, p, ForecastPrice(p, r, 0))
			assert.Equal(t, p, ForecastPrice(p, r, -3))
			for _, m := range []int{1, 12, 120, 1200} {
				assert.LessOrEqual(t, ForecastPrice(p, r, m), p*3.5)
			}
		}
	}

	assert.InDelta(t, 60*math.Pow(1.005, 12), ForecastPrice(60, 0.005, 12), 1e-9)
	assert.InDelta(t, 150*math.Pow(1+0.005*0.9, 12), ForecastPrice(150, 0.005, 12), 1e-9)
	assert.Equal(t, 60*3.5, ForecastPrice(60, 0.1, 600))
}

func TestSchedule(t *testing.T) {
	points := Schedule(60, 0.005, nil)
	require.Len(t, points, len(DefaultScheduleMonths))
	for i, p := range points {
		assert.Equal(t, DefaultScheduleMonths[i], p.Months)
		assert.InDelta(t, ForecastPrice(60, 0.005, p.Months), p.Price, 1e-12)
		assert.InDelta(t, p.Price/60-1, p.Change, 1e-12)
	}
}
