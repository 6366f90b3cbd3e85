package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/goldplan/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportOut    string
	flagExportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export [child-id]",
	Short: "Write a plan to CSV or Excel",
	Args:  childArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default <child-id>_plan.<format>)")
	exportCmd.Flags().StringVar(&flagExportFormat, "format", "", "csv or xlsx (default from the output extension, else csv)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}

	format := strings.ToLower(flagExportFormat)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(flagExportOut)), ".")
	}
	if format == "" {
		format = "csv"
	}

	out := flagExportOut
	if out == "" {
		out = export.DefaultFileName(plan, format)
	}

	switch format {
	case "csv":
		err = export.ExportCSV(plan, out)
	case "xlsx":
		err = export.ExportXLSX(plan, out)
	default:
		return fmt.Errorf("unknown export format %q (want csv or xlsx)", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Exported %d months for %s to %s\n", len(plan.Rows), plan.ChildID, out)
	return nil
}
