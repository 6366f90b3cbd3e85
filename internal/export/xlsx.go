package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
)

const (
	planSheet  = "Plan"
	yearsSheet = "Years"
)

// ExportXLSX writes the plan rows and the per-year totals to an Excel
// workbook at path.
func ExportXLSX(plan model.ChildPlan, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", planSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(yearsSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	numFmt := "0.0000"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	if err := writeRow(f, planSheet, 1, toAny(Header)); err != nil {
		return err
	}
	for i, r := range plan.Rows {
		row := []any{model.FormatDate(r.Date), r.PricePerGram, r.GramsForBudget}
		if err := writeRow(f, planSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, yearsSheet, 1, []any{"year", "grams"}); err != nil {
		return err
	}
	stats := pipeline.CalcYearStats(plan.Rows)
	for i, y := range pipeline.SortedYears(stats) {
		if err := writeRow(f, yearsSheet, i+2, []any{y, stats[y]}); err != nil {
			return err
		}
	}

	if err := f.SetColStyle(planSheet, "B:C", style); err != nil {
		return fmt.Errorf("styling columns: %w", err)
	}
	if err := f.SetColStyle(yearsSheet, "B", style); err != nil {
		return fmt.Errorf("styling columns: %w", err)
	}
	_ = f.SetColWidth(planSheet, "A", "C", 20)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
