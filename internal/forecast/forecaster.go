package forecast

import "math"

const (
	dampenAbove   = 100.0
	dampenFactor  = 0.9
	maxPriceRatio = 3.5
)

// ForecastPrice projects lastPrice monthsAhead months forward at a monthly
// rate. Prices above 100 grow at 90% of the rate, and the result never
// exceeds 3.5x lastPrice.
func ForecastPrice(lastPrice, rate float64, monthsAhead int) float64 {
	if monthsAhead <= 0 {
		return lastPrice
	}
	if lastPrice > dampenAbove {
		rate *= dampenFactor
	}
	price := lastPrice * math.Pow(1+rate, float64(monthsAhead))
	return math.Min(price, lastPrice*maxPriceRatio)
}

// DefaultScheduleMonths are the horizons shown in a forecast schedule.
var DefaultScheduleMonths = []int{1, 3, 6, 12, 24}

// Point is one forecast horizon and its projected price.
type Point struct {
	Months int
	Price  float64
	Change float64 // fraction relative to the base price
}

// Schedule forecasts lastPrice at each horizon in months.
// A nil months uses DefaultScheduleMonths.
func Schedule(lastPrice, rate float64, months []int) []Point {
	if months == nil {
		months = DefaultScheduleMonths
	}
	points := make([]Point, 0, len(months))
	for _, m := range months {
		p := ForecastPrice(lastPrice, rate, m)
		var change float64
		if lastPrice != 0 {
			change = p/lastPrice - 1
		}
		points = append(points, Point{Months: m, Price: p, Change: change})
	}
	return points
}
