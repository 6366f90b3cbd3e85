// Package pipeline turns a price history into monthly savings plans and the
// summaries derived from them.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/goldplan/internal/model"
)

// DefaultDayPriority is the order in which days of the month are preferred
// when picking one price per month.
var DefaultDayPriority = []int{20, 19, 18, 17, 16}

// FilterPeriod returns the points dated within [start, end], inclusive.
func FilterPeriod(points []model.PricePoint, start, end time.Time) []model.PricePoint {
	var result []model.PricePoint
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		result = append(result, p)
	}
	return result
}

type monthKey struct {
	year  int
	month time.Month
}

// PickMonthly reduces points to one per calendar month. Within a month the
// first day in priority that has a quote wins; without any priority day the
// month's latest quote is used. Months without quotes produce nothing.
// A nil priority uses DefaultDayPriority.
func PickMonthly(points []model.PricePoint, priority []int) []model.PricePoint {
	if priority == nil {
		priority = DefaultDayPriority
	}

	byMonth := make(map[monthKey][]model.PricePoint)
	for _, p := range points {
		k := monthKey{p.Date.Year(), p.Date.Month()}
		byMonth[k] = append(byMonth[k], p)
	}

	picked := make([]model.PricePoint, 0, len(byMonth))
	for _, bucket := range byMonth {
		picked = append(picked, pickFromMonth(bucket, priority))
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Date.Before(picked[j].Date)
	})
	return picked
}

func pickFromMonth(bucket []model.PricePoint, priority []int) model.PricePoint {
	for _, day := range priority {
		for _, p := range bucket {
			if p.Date.Day() == day {
				return p
			}
		}
	}

	latest := bucket[0]
	for _, p := range bucket[1:] {
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	return latest
}
