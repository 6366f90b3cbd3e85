package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/forecast"

	"github.com/spf13/cobra"
)

var flagForecastMonths int

var forecastCmd = &cobra.Command{
	Use:   "forecast [child-id]",
	Short: "Project the gold price from the plan's history",
	Args:  childArgs,
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().IntVarP(&flagForecastMonths, "months", "m", 0, "Also project this many months ahead")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, args []string) error {
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}
	if len(plan.Rows) < 2 {
		return errors.New("not enough plan months for a forecast (need at least 2)")
	}
	if flagForecastMonths < 0 {
		return fmt.Errorf("--months must be positive, got %d", flagForecastMonths)
	}
	pc, err := newPlanContext(plan)
	if err != nil {
		return err
	}

	est := estimator().Estimate(plan.Rows, pc.horizon.RemainingMonths)

	fmt.Println(cli.RenderTitle(fmt.Sprintf("PRICE FORECAST  %s", plan.Name)))
	fmt.Println()
	if pc.horizon.RemainingMonths > 0 {
		fmt.Printf("  Horizon:        %s (%.1f years)\n", cli.FormatMonths(est.TargetMonths), est.HorizonYears)
	} else {
		fmt.Printf("  Horizon:        none left, assuming %.0f years\n", est.HorizonYears)
	}
	fmt.Printf("  Band:           %s to %s\n", cli.FormatRate(est.Band.Lo), cli.FormatRate(est.Band.Hi))
	if est.FromDefault {
		fmt.Printf("  History:        %s\n", cli.Warn("too short, using the band default"))
	} else {
		fmt.Printf("  Historical:     %s per month over %d months\n", cli.FormatRate(est.HistoricalRate), est.HistoryRows)
		fmt.Printf("  After penalty:  %s (ceiling %s)\n", cli.FormatRate(est.PenalizedRate), cli.FormatRate(est.MaxAllowedReturn))
	}
	fmt.Printf("  Monthly rate:   %s (%s a year)\n", cli.FormatRate(est.Rate), cli.FormatRate(est.AnnualRate()))
	fmt.Println()

	months := slices.Clone(forecast.DefaultScheduleMonths)
	if flagForecastMonths > 0 && !slices.Contains(months, flagForecastMonths) {
		months = append(months, flagForecastMonths)
		slices.Sort(months)
	}

	rows := make([][]string, 0, len(months))
	prices := make([]float64, 0, len(months)+1)
	prices = append(prices, pc.lastPrice)
	for _, p := range forecast.Schedule(pc.lastPrice, est.Rate, months) {
		rows = append(rows, []string{
			"+" + cli.FormatMonths(p.Months),
			cli.FormatPricePerGram(p.Price),
			fmt.Sprintf("%+.1f%%", p.Change*100),
		})
		prices = append(prices, p.Price)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "From " + cli.FormatPricePerGram(pc.lastPrice) + " (last plan month)",
		Headers: []string{"Ahead", "Price", "Change"},
		Rows:    rows,
	}))
	fmt.Printf("  %s\n", cli.RenderSparkline(prices))
	fmt.Println()
	return nil
}
