package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/goldplan/internal/model"
)

func intPtr(v int) *int { return &v }

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{
		ChildID:   "anna",
		Name:      "Anna",
		BirthDate: model.Date(2019, 5, 3),
		TargetAge: intPtr(18),
		Budget:    150,
	}
	require.NoError(t, valid.Validate())

	noID := valid
	noID.ChildID = ""
	noID.TargetAge = nil
	assert.NoError(t, noID.Validate())

	tests := []struct {
		name   string
		mutate func(*Registration)
		msg    string
	}{
		{"name", func(r *Registration) { r.Name = "" }, "Name is required"},
		{"birth missing", func(r *Registration) { r.BirthDate = time.Time{} }, "BirthDate is required"},
		{"birth future", func(r *Registration) { r.BirthDate = time.Now().AddDate(1, 0, 0) }, "BirthDate cannot be in the future"},
		{"target age", func(r *Registration) { r.TargetAge = intPtr(0) }, "TargetAge must be at least 1"},
		{"budget", func(r *Registration) { r.Budget = 0 }, "Budget must be greater than 0"},
		{"id slash", func(r *Registration) { r.ChildID = "a/b" }, "ChildID must be 1-64 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRegistrationChildInfo(t *testing.T) {
	r := Registration{Name: "  Anna ", BirthDate: model.Date(2019, 5, 3), Budget: 100}
	info := r.ChildInfo()
	assert.Len(t, info.ChildID, 8)
	assert.Equal(t, "Anna", info.Name)
	assert.Nil(t, info.TargetAgeYears)

	r.ChildID = "kid"
	assert.Equal(t, "kid", r.ChildInfo().ChildID)
}

func TestToolRequestsValidate(t *testing.T) {
	assert.NoError(t, DebtRequest{Have: 0, Months: 3}.Validate())
	assert.NoError(t, DebtRequest{Have: 1, Months: 0}.Validate(), "months are not needed to measure the holding")
	assert.Error(t, DebtRequest{Have: -1, Months: 2}.Validate())
	assert.NoError(t, DebtRequest{Have: 1, Months: 3}.ValidateInstallments())
	assert.Error(t, DebtRequest{Have: 1, Months: 0}.ValidateInstallments())
	assert.Error(t, DebtRequest{Have: 1, Months: 601}.ValidateInstallments())
	assert.NoError(t, AheadRequest{Weight: 2.5}.Validate())
	assert.Error(t, AheadRequest{}.Validate())
	assert.Error(t, StatusRequest{Have: -0.1}.Validate())
}

func TestDebtRequestInput(t *testing.T) {
	rows := []model.PlanRow{{GramsForBudget: 1}}
	in := DebtRequest{Have: 0.5, Months: 2, IncludeBase: true}.Input(rows, 0.004, 60)
	assert.Equal(t, 0.5, in.HaveGrams)
	assert.Equal(t, 2, in.Months)
	assert.True(t, in.IncludeBase)
	assert.Equal(t, 0.004, in.Rate)
	assert.Equal(t, 60.0, in.LastPrice)
}

func TestParsers(t *testing.T) {
	v, err := ParseAmount(" 12,5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)
	_, err = ParseAmount("abc")
	assert.Error(t, err)

	n, err := ParseOptionalInt("")
	require.NoError(t, err)
	assert.Nil(t, n)
	n, err = ParseOptionalInt("18")
	require.NoError(t, err)
	assert.Equal(t, 18, *n)

	assert.True(t, ParseYesNo("Да"))
	assert.True(t, ParseYesNo("y"))
	assert.False(t, ParseYesNo("nope"))
}

func TestDialogApplyParsesDefaults(t *testing.T) {
	r := Registration{BirthDate: model.Date(2019, 5, 3), TargetAge: intPtr(18), Budget: 150.5}
	d := r.Form()
	require.NoError(t, d.Apply())
	assert.Equal(t, model.Date(2019, 5, 3), r.BirthDate)
	assert.Equal(t, 18, *r.TargetAge)
	assert.Equal(t, 150.5, r.Budget)
}
