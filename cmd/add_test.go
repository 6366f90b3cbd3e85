package cmd

import (
	"testing"

	"github.com/theirongolddev/goldplan/internal/model"
)

func TestUpsertPlanReplacesExistingChild(t *testing.T) {
	plans, replaced := upsertPlan(nil, model.ChildPlan{ChildID: "ann", Name: "Ann", MonthlyBudget: 100})
	if replaced != nil {
		t.Fatalf("replaced = %+v on first registration, want nil", replaced)
	}
	if len(plans) != 1 {
		t.Fatalf("plans = %d, want 1", len(plans))
	}

	plans, replaced = upsertPlan(plans, model.ChildPlan{ChildID: "ann", Name: "Ann", MonthlyBudget: 250})
	if replaced == nil || replaced.MonthlyBudget != 100 {
		t.Fatalf("replaced = %+v, want the 100 EUR plan", replaced)
	}
	if len(plans) != 1 {
		t.Fatalf("plans = %d after re-registering, want 1", len(plans))
	}
	if got := plans["ann"].MonthlyBudget; got != 250 {
		t.Fatalf("stored budget = %v, want 250", got)
	}

	plans, replaced = upsertPlan(plans, model.ChildPlan{ChildID: "bob", Name: "Bob"})
	if replaced != nil || len(plans) != 2 {
		t.Fatalf("adding a second child: replaced = %+v, plans = %d", replaced, len(plans))
	}
}
