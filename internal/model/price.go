// Package model defines domain types for goldplan price history and savings plans.
package model

import "time"

// GramsPerOunce converts a troy-ounce quote into a per-gram price.
const GramsPerOunce = 31.1034768

// PricePoint is one daily close from the price feed, in EUR per troy ounce.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// PricePerGram returns the point's price converted to EUR per gram.
func (p PricePoint) PricePerGram() float64 {
	return p.Price / GramsPerOunce
}

// PriceRange returns the first and last dates of an ascending series.
// ok is false for an empty series.
func PriceRange(points []PricePoint) (first, last time.Time, ok bool) {
	if len(points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return points[0].Date, points[len(points)-1].Date, true
}
