package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/pipeline"

	"github.com/spf13/cobra"
)

var yearsCmd = &cobra.Command{
	Use:   "years [child-id]",
	Short: "Grams the plan buys per calendar year",
	Args:  childArgs,
	RunE:  runYears,
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}

func runYears(_ *cobra.Command, args []string) error {
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}

	stats := pipeline.CalcYearStats(plan.Rows)
	years := pipeline.SortedYears(stats)
	if len(years) == 0 {
		fmt.Println("\n  No plan rows yet.")
		fmt.Println()
		return nil
	}

	var maxGrams, total float64
	for _, y := range years {
		maxGrams = max(maxGrams, stats[y])
		total += stats[y]
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("GRAMS PER YEAR  %s", plan.Name)))
	fmt.Println()
	for _, y := range years {
		label := fmt.Sprintf("%s  %12s", strconv.Itoa(y), cli.FormatGrams(stats[y]))
		fmt.Println(cli.RenderHorizontalBar(label, stats[y], maxGrams, 40))
	}
	fmt.Println()
	fmt.Printf("  Total %s over %d years\n", cli.FormatGrams(total), len(years))
	fmt.Println()
	return nil
}
