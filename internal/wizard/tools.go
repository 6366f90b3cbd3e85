package wizard

import (
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/simulate"
)

// StatusRequest asks how the current holding covers the plan.
type StatusRequest struct {
	Have float64 `validate:"gte=0"`
}

// Validate checks the collected values.
func (r StatusRequest) Validate() error { return check(r) }

// Form builds the status dialog.
func (r *StatusRequest) Form() *Dialog {
	d := &Dialog{}
	d.Form = huh.NewForm(huh.NewGroup(
		d.amountField("Grams you already have for this child", &r.Have),
	))
	return d
}

// DebtRequest carries the answers of the shortfall dialog.
type DebtRequest struct {
	Have        float64 `validate:"gte=0"`
	Months      int     `validate:"gte=1,lte=600"`
	IncludeBase bool
}

// Validate checks the holding. The installment answers are only needed
// once the holding turns out to be short of the plan.
func (r DebtRequest) Validate() error { return checkPartial(r, "Have") }

// ValidateInstallments checks every answer, including the installment count.
func (r DebtRequest) ValidateInstallments() error { return check(r) }

// Input builds the simulator input for a plan at the given rate and price.
func (r DebtRequest) Input(rows []model.PlanRow, rate, lastPrice float64) simulate.DebtInput {
	return simulate.DebtInput{
		Rows:        rows,
		HaveGrams:   r.Have,
		Rate:        rate,
		LastPrice:   lastPrice,
		Months:      r.Months,
		IncludeBase: r.IncludeBase,
	}
}

// HoldingForm asks for the grams already held.
func (r *DebtRequest) HoldingForm() *Dialog {
	d := &Dialog{}
	d.Form = huh.NewForm(huh.NewGroup(
		d.amountField("Grams you currently have for this child", &r.Have),
	))
	return d
}

// InstallmentForm asks how to split a shortfall.
func (r *DebtRequest) InstallmentForm() *Dialog {
	d := &Dialog{}
	d.Form = huh.NewForm(huh.NewGroup(
		d.intField("Split the shortfall over how many months?", &r.Months),
		huh.NewConfirm().Title("Include the base monthly plan in each installment?").Value(&r.IncludeBase),
	))
	return d
}

// AheadRequest carries the answer of the buy-ahead dialog.
type AheadRequest struct {
	Weight float64 `validate:"gt=0"`
}

// Validate checks the collected values.
func (r AheadRequest) Validate() error { return check(r) }

// Form builds the buy-ahead dialog.
func (r *AheadRequest) Form() *Dialog {
	d := &Dialog{}
	d.Form = huh.NewForm(huh.NewGroup(
		d.amountField("Grams to buy now at the current price", &r.Weight),
	))
	return d
}
