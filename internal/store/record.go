package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/theirongolddev/goldplan/internal/model"
)

type planRecord struct {
	ChildID        *string      `json:"child_id"`
	Name           *string      `json:"name"`
	BirthDate      *string      `json:"birth_date"`
	TargetAgeYears *int         `json:"target_age_years"`
	MonthlyBudget  *float64     `json:"monthly_budget_eur"`
	Rows           *[]rowRecord `json:"plan_rows"`
}

type rowRecord struct {
	Date           *string  `json:"date"`
	PricePerGram   *float64 `json:"price_per_gram_eur"`
	GramsForBudget *float64 `json:"grams_for_budget"`
}

var errMissingField = errors.New("missing field")

func encodePlan(p model.ChildPlan) planRecord {
	birth := model.FormatDate(p.BirthDate)
	budget := p.MonthlyBudget
	rows := make([]rowRecord, len(p.Rows))
	for i, r := range p.Rows {
		date := model.FormatDate(r.Date)
		price, grams := r.PricePerGram, r.GramsForBudget
		rows[i] = rowRecord{Date: &date, PricePerGram: &price, GramsForBudget: &grams}
	}
	id, name := p.ChildID, p.Name
	return planRecord{
		ChildID:        &id,
		Name:           &name,
		BirthDate:      &birth,
		TargetAgeYears: p.TargetAgeYears,
		MonthlyBudget:  &budget,
		Rows:           &rows,
	}
}

func decodePlan(msg json.RawMessage) (model.ChildPlan, error) {
	var rec planRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		return model.ChildPlan{}, err
	}

	switch {
	case rec.ChildID == nil:
		return model.ChildPlan{}, fmt.Errorf("%w: child_id", errMissingField)
	case rec.Name == nil:
		return model.ChildPlan{}, fmt.Errorf("%w: name", errMissingField)
	case rec.BirthDate == nil:
		return model.ChildPlan{}, fmt.Errorf("%w: birth_date", errMissingField)
	case rec.MonthlyBudget == nil:
		return model.ChildPlan{}, fmt.Errorf("%w: monthly_budget_eur", errMissingField)
	case rec.Rows == nil:
		return model.ChildPlan{}, fmt.Errorf("%w: plan_rows", errMissingField)
	}

	birth, err := model.ParseDate(*rec.BirthDate)
	if err != nil {
		return model.ChildPlan{}, fmt.Errorf("parsing birth_date: %w", err)
	}

	plan := model.ChildPlan{
		ChildID:        *rec.ChildID,
		Name:           *rec.Name,
		BirthDate:      birth,
		TargetAgeYears: rec.TargetAgeYears,
		MonthlyBudget:  *rec.MonthlyBudget,
		Rows:           make([]model.PlanRow, 0, len(*rec.Rows)),
	}
	for i, r := range *rec.Rows {
		if r.Date == nil || r.PricePerGram == nil || r.GramsForBudget == nil {
			return model.ChildPlan{}, fmt.Errorf("%w in plan_rows[%d]", errMissingField, i)
		}
		d, err := model.ParseDate(*r.Date)
		if err != nil {
			return model.ChildPlan{}, fmt.Errorf("parsing plan_rows[%d].date: %w", i, err)
		}
		plan.Rows = append(plan.Rows, model.PlanRow{
			Date:           d,
			PricePerGram:   *r.PricePerGram,
			GramsForBudget: *r.GramsForBudget,
		})
	}
	return plan, nil
}
