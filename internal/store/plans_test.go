package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/goldplan/internal/model"
)

func samplePlan(id, name string) model.ChildPlan {
	age := 18
	return model.ChildPlan{
		ChildID:        id,
		Name:           name,
		BirthDate:      model.Date(2019, 5, 3),
		TargetAgeYears: &age,
		MonthlyBudget:  150,
		Rows: []model.PlanRow{
			{Date: model.Date(2019, 5, 20), PricePerGram: 38.123456789, GramsForBudget: 3.93461},
			{Date: model.Date(2019, 6, 20), PricePerGram: 40.5, GramsForBudget: 3.7037037037},
		},
	}
}

func TestPlansRoundTrip(t *testing.T) {
	s := NewPlans(t.TempDir())
	in := model.PlanCollection{
		"a": samplePlan("a", "Аня"),
		"b": samplePlan("b", "Ben & Jerry"),
	}
	noTarget := samplePlan("c", "Cleo")
	noTarget.TargetAgeYears = nil
	in["c"] = noTarget

	require.NoError(t, s.Save("42", in))

	res, err := s.Load("42")
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.Equal(t, in, res.Plans)

	path, _ := s.Path("42")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Аня"`)
	assert.Contains(t, string(data), `"name": "Ben & Jerry"`)
	assert.Contains(t, string(data), `"target_age_years": null`)
	assert.Contains(t, string(data), `"monthly_budget_eur": 150`)
}

func TestPlansSaveOverwrites(t *testing.T) {
	s := NewPlans(t.TempDir())
	require.NoError(t, s.Save("u", model.PlanCollection{"a": samplePlan("a", "A"), "b": samplePlan("b", "B")}))
	require.NoError(t, s.Save("u", model.PlanCollection{"b": samplePlan("b", "B2")}))

	res, err := s.Load("u")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, res.Plans.IDs())
	assert.Equal(t, "B2", res.Plans["b"].Name)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestPlansMissingFile(t *testing.T) {
	res, err := NewPlans(t.TempDir()).Load("nobody")
	require.NoError(t, err)
	assert.Empty(t, res.Plans)
	assert.Empty(t, res.Issues)
}

func TestPlansMalformedEntryDropped(t *testing.T) {
	dir := t.TempDir()
	s := NewPlans(dir)
	require.NoError(t, s.Save("7", model.PlanCollection{"good": samplePlan("good", "Good")}))

	path, _ := s.Path("7")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	broken := strings.Replace(string(data), "{\n", `{
  "bad_date": {"child_id": "bad_date", "name": "x", "birth_date": "2020-13-01", "target_age_years": null, "monthly_budget_eur": 1, "plan_rows": []},
  "no_name": {"child_id": "no_name", "birth_date": "2020-01-01", "monthly_budget_eur": 1, "plan_rows": []},
  "not_object": 12,
`, 1)
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o600))

	res, err := s.Load("7")
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, res.Plans.IDs())
	require.Len(t, res.Issues, 3)
	assert.Equal(t, "bad_date", res.Issues[0].ChildID)
	assert.Equal(t, "no_name", res.Issues[1].ChildID)
	assert.ErrorIs(t, res.Issues[1].Err, errMissingField)
	assert.Equal(t, "not_object", res.Issues[2].ChildID)
}

func TestPlansUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	s := NewPlans(dir)
	path, _ := s.Path("9")
	require.NoError(t, os.WriteFile(path, []byte("[1, 2"), 0o600))

	res, err := s.Load("9")
	require.NoError(t, err)
	assert.Empty(t, res.Plans)
	require.Len(t, res.Issues, 1)
	assert.Empty(t, res.Issues[0].ChildID)
}

func TestPlansInvalidUser(t *testing.T) {
	s := NewPlans(t.TempDir())
	for _, u := range []string{"", "..", "a/b", `a\b`} {
		_, err := s.Load(u)
		assert.ErrorIs(t, err, ErrInvalidUser, "user %q", u)
		assert.ErrorIs(t, s.Save(u, nil), ErrInvalidUser, "user %q", u)
	}
}

func TestPlansUsers(t *testing.T) {
	dir := t.TempDir()
	s := NewPlans(filepath.Join(dir, "plans"))
	require.NoError(t, s.Save("1", model.PlanCollection{}))
	require.NoError(t, s.Save("alice", model.PlanCollection{}))

	users, err := s.Users()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "alice"}, users)
}
