package wizard

import (
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/theirongolddev/goldplan/internal/pipeline"
)

// Registration is the data collected when adding a child.
type Registration struct {
	ChildID   string    `validate:"omitempty,childid"`
	Name      string    `validate:"required,max=100"`
	BirthDate time.Time `validate:"required,notfuture"`
	TargetAge *int      `validate:"omitempty,gte=1,lte=100"`
	Budget    float64   `validate:"gt=0"`
}

// Validate checks the collected values.
func (r Registration) Validate() error {
	return check(r)
}

// ChildInfo converts the registration into planner input. A blank child ID
// is replaced by a short random one.
func (r Registration) ChildInfo() pipeline.ChildInfo {
	id := strings.TrimSpace(r.ChildID)
	if id == "" {
		id = NewChildID()
	}
	return pipeline.ChildInfo{
		ChildID:        id,
		Name:           strings.TrimSpace(r.Name),
		BirthDate:      r.BirthDate,
		TargetAgeYears: r.TargetAge,
		MonthlyBudget:  r.Budget,
	}
}

// NewChildID returns an 8-character random identifier.
func NewChildID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Form builds the registration dialog, prefilled with r's current values.
func (r *Registration) Form() *Dialog {
	d := &Dialog{}
	d.Form = huh.NewForm(
		huh.NewGroup(
			d.textField("Child ID", "blank for a generated one", &r.ChildID),
			d.textField("Name", "", &r.Name),
			d.dateField("Birth date", &r.BirthDate),
		).Title("Child"),
		huh.NewGroup(
			d.optionalIntField("Target age (years)", &r.TargetAge),
			d.amountField("Monthly budget (EUR)", &r.Budget),
		).Title("Plan"),
	)
	return d
}
