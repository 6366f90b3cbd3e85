package pipeline

import "github.com/theirongolddev/goldplan/internal/model"

// Fulfillment describes how much of a planned month the current holding covers.
type Fulfillment int

const (
	Missing Fulfillment = iota
	Partial
	Covered
)

func (f Fulfillment) String() string {
	switch f {
	case Covered:
		return "covered"
	case Partial:
		return "partial"
	default:
		return "missing"
	}
}

// RowStatus pairs a plan row with its fulfillment.
type RowStatus struct {
	Row    model.PlanRow
	Status Fulfillment
}

// MonthlyStatus walks the plan in order and spends haveGrams on each month.
// A month that fits entirely is covered; the first month that does not fit
// while grams remain is partial and takes the rest; later months are missing.
func MonthlyStatus(rows []model.PlanRow, haveGrams float64) []RowStatus {
	left := haveGrams
	statuses := make([]RowStatus, 0, len(rows))
	for _, r := range rows {
		st := Missing
		switch {
		case left >= r.GramsForBudget:
			st = Covered
			left -= r.GramsForBudget
		case left > 0:
			st = Partial
			left = 0
		}
		statuses = append(statuses, RowStatus{Row: r, Status: st})
	}
	return statuses
}
