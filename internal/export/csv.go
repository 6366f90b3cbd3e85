// Package export writes savings plans to CSV and Excel files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/goldplan/internal/model"
)

// Header is the CSV column layout.
var Header = []string{"date", "price_per_gram_eur", "grams_for_budget"}

// Fixed renders v with four decimal places, rounding the exact binary value
// of v rather than its shortest decimal form.
func Fixed(v float64) string {
	return decimal.NewFromFloatWithExponent(v, -4).StringFixed(4)
}

// WriteCSV writes the plan rows as CSV.
func WriteCSV(w io.Writer, plan model.ChildPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range plan.Rows {
		rec := []string{model.FormatDate(r.Date), Fixed(r.PricePerGram), Fixed(r.GramsForBudget)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the plan to a CSV file at path, replacing it.
func ExportCSV(plan model.ChildPlan, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	if err := WriteCSV(f, plan); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing csv: %w", err)
	}
	return f.Close()
}

// DefaultFileName is the export file name for a plan and extension.
func DefaultFileName(plan model.ChildPlan, ext string) string {
	return plan.ChildID + "_plan." + ext
}
