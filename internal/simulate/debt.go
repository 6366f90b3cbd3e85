// Package simulate compares purchase strategies against a savings plan at
// forecast prices.
package simulate

import (
	"errors"

	"github.com/theirongolddev/goldplan/internal/forecast"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
)

var (
	// ErrInvalidInstallments is returned when a shortfall is split over fewer than one month.
	ErrInvalidInstallments = errors.New("simulate: installments must be at least 1")
	// ErrEmptyPlan is returned when a simulation needs plan rows and has none.
	ErrEmptyPlan = errors.New("simulate: plan has no rows")
)

// DebtInput describes a holding measured against a plan.
type DebtInput struct {
	Rows        []model.PlanRow
	HaveGrams   float64
	Rate        float64 // monthly return used to forecast installment prices
	LastPrice   float64 // current price per gram
	Months      int     // number of installments
	IncludeBase bool    // add the plan's average monthly grams to every installment
}

// Installment is one month of a shortfall repayment.
type Installment struct {
	Month      int
	Price      float64
	DebtGrams  float64
	BaseGrams  float64
	TotalGrams float64
	Cost       float64
}

// DebtResult is the outcome of measuring a holding against a plan.
type DebtResult struct {
	PlanGrams float64

	Surplus      bool
	SurplusGrams float64
	SurplusValue float64

	DebtGrams        float64
	DebtValueNow     float64 // the whole shortfall bought at the current price
	PartGrams        float64
	Installments     []Installment
	InstallmentsCost float64
	Diff             float64 // InstallmentsCost - DebtValueNow
}

// InstallmentsCheaper reports whether spreading the shortfall costs no more
// than closing it today.
func (r DebtResult) InstallmentsCheaper() bool {
	return r.Diff <= 0
}

// Debt computes the surplus or shortfall of a holding against the plan and,
// for a shortfall, prices an equal-grams installment schedule.
func Debt(in DebtInput) (DebtResult, error) {
	res := DebtResult{PlanGrams: pipeline.TotalGrams(in.Rows)}

	if in.HaveGrams >= res.PlanGrams {
		res.Surplus = true
		res.SurplusGrams = in.HaveGrams - res.PlanGrams
		res.SurplusValue = res.SurplusGrams * in.LastPrice
		return res, nil
	}

	res.DebtGrams = res.PlanGrams - in.HaveGrams
	res.DebtValueNow = res.DebtGrams * in.LastPrice
	if in.Months < 1 {
		return res, ErrInvalidInstallments
	}
	if in.IncludeBase && len(in.Rows) == 0 {
		return res, ErrEmptyPlan
	}

	res.PartGrams = res.DebtGrams / float64(in.Months)
	var base float64
	if in.IncludeBase {
		base = res.PlanGrams / float64(len(in.Rows))
	}

	res.Installments = make([]Installment, 0, in.Months)
	for i := 1; i <= in.Months; i++ {
		price := forecast.ForecastPrice(in.LastPrice, in.Rate, i)
		grams := res.PartGrams + base
		inst := Installment{
			Month:      i,
			Price:      price,
			DebtGrams:  res.PartGrams,
			BaseGrams:  base,
			TotalGrams: grams,
			Cost:       grams * price,
		}
		res.InstallmentsCost += inst.Cost
		res.Installments = append(res.Installments, inst)
	}

	res.Diff = res.InstallmentsCost - res.DebtValueNow
	return res, nil
}
