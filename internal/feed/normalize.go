package feed

import (
	"sort"

	"github.com/theirongolddev/goldplan/internal/model"
)

// Normalize returns the points sorted by date with non-positive prices
// dropped and one point per date. When a date repeats the later entry wins.
func Normalize(points []model.PricePoint) []model.PricePoint {
	byDate := make(map[string]model.PricePoint, len(points))
	for _, p := range points {
		if p.Price <= 0 || p.Date.IsZero() {
			continue
		}
		p.Date = model.DateOf(p.Date)
		byDate[model.FormatDate(p.Date)] = p
	}

	out := make([]model.PricePoint, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
