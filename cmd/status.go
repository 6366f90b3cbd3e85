package cmd

import (
	"fmt"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
	"github.com/theirongolddev/goldplan/internal/wizard"

	"github.com/spf13/cobra"
)

var flagStatusHave float64

var statusCmd = &cobra.Command{
	Use:   "status [child-id]",
	Short: "Show which plan months your holding covers",
	Args:  childArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Float64Var(&flagStatusHave, "have", 0, "Grams already held for the child")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}

	req := wizard.StatusRequest{Have: flagStatusHave}
	if !cmd.Flags().Changed("have") && isTerminal() {
		if err := req.Form().Run(); err != nil {
			return err
		}
	}
	if err := req.Validate(); err != nil {
		return err
	}

	statuses := pipeline.MonthlyStatus(plan.Rows, req.Have)
	rows := make([][]string, 0, len(statuses))
	covered := 0
	cum := 0.0
	for _, st := range statuses {
		cum += st.Row.GramsForBudget
		if st.Status == pipeline.Covered {
			covered++
		}
		rows = append(rows, []string{
			model.FormatDate(st.Row.Date),
			cli.FormatPricePerGram(st.Row.PricePerGram),
			cli.FormatGrams(st.Row.GramsForBudget),
			cli.FormatGrams(cum),
			st.Status.String(),
		})
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("PLAN STATUS  %s", plan.Name)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Price", "Grams", "Cumulative", "Status"},
		Rows:    rows,
	}))
	summary := fmt.Sprintf("Holding %s covers %d of %d months (plan total %s)",
		cli.FormatGrams(req.Have), covered, len(statuses), cli.FormatGrams(pipeline.TotalGrams(plan.Rows)))
	if covered == len(statuses) {
		fmt.Printf("  %s\n", cli.Good(summary))
	} else {
		fmt.Printf("  %s\n", cli.Warn(summary))
	}
	fmt.Println()
	return nil
}
