package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/simulate"
	"github.com/theirongolddev/goldplan/internal/wizard"

	"github.com/spf13/cobra"
)

var flagAheadWeight float64

var aheadCmd = &cobra.Command{
	Use:   "ahead [child-id]",
	Short: "Compare buying gold today with buying it at the plan's pace",
	Args:  childArgs,
	RunE:  runAhead,
}

func init() {
	aheadCmd.Flags().Float64Var(&flagAheadWeight, "weight", 0, "Grams to buy now")
	rootCmd.AddCommand(aheadCmd)
}

func runAhead(cmd *cobra.Command, args []string) error {
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}
	pc, err := newPlanContext(plan)
	if err != nil {
		return err
	}

	req := wizard.AheadRequest{Weight: flagAheadWeight}
	if !cmd.Flags().Changed("weight") {
		if !isTerminal() {
			return errors.New("--weight is required when not running in a terminal")
		}
		if err := req.Form().Run(); err != nil {
			return err
		}
	}
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := simulate.BuyAhead(estimator(), plan.Rows, req.Weight, pc.lastPrice)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("BUY AHEAD  %s", plan.Name)))
	fmt.Println()
	fmt.Printf("  Buy now:        %s at %s = %s\n",
		cli.FormatGrams(res.WeightNow), cli.FormatPricePerGram(pc.lastPrice), cli.FormatEUR(res.CostNow))
	fmt.Printf("  Covers:         %s of the plan (%s left over)\n",
		cli.FormatMonths(res.MonthsCovered), cli.FormatGrams(res.CoverageRemainder))
	fmt.Printf("  Forecast rate:  %s per month\n", cli.FormatRate(res.Rate))
	fmt.Printf("  Monthly buying: %s over %s\n", cli.FormatEUR(res.DripCost), cli.FormatMonths(res.DripMonths))
	if res.Unpriced > 0 {
		fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("%s not priced, the plan pace is too slow", cli.FormatGrams(res.Unpriced))))
	}
	fmt.Println()

	if res.BuyingNowCheaper() {
		fmt.Printf("  %s saves %s\n", cli.Good("Buying now"), cli.FormatEUR(res.Diff))
	} else {
		fmt.Printf("  %s saves %s\n", cli.Warn("Buying monthly"), cli.FormatEUR(-res.Diff))
	}
	fmt.Println()
	return nil
}
