package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/simulate"
	"github.com/theirongolddev/goldplan/internal/wizard"

	"github.com/spf13/cobra"
)

var (
	flagDebtHave   float64
	flagDebtMonths int
	flagDebtBase   bool
)

var debtCmd = &cobra.Command{
	Use:   "debt [child-id]",
	Short: "Compare closing a shortfall now with paying it off monthly",
	Long: "Measure your holding against the plan. A surplus is valued at the last\n" +
		"plan price; a shortfall is priced both as a purchase today and as equal\n" +
		"monthly installments at forecast prices.",
	Args: childArgs,
	RunE: runDebt,
}

func init() {
	debtCmd.Flags().Float64Var(&flagDebtHave, "have", 0, "Grams already held for the child")
	debtCmd.Flags().IntVar(&flagDebtMonths, "months", 0, "Number of monthly installments to split a shortfall over")
	debtCmd.Flags().BoolVar(&flagDebtBase, "base", false, "Add the plan's average monthly grams to each installment")
	rootCmd.AddCommand(debtCmd)
}

func runDebt(cmd *cobra.Command, args []string) error {
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}
	pc, err := newPlanContext(plan)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	req := wizard.DebtRequest{Have: flagDebtHave, Months: flagDebtMonths, IncludeBase: flagDebtBase}
	if !flags.Changed("have") {
		if !isTerminal() {
			return errors.New("--have is required when not running in a terminal")
		}
		if err := req.HoldingForm().Run(); err != nil {
			return err
		}
	}

	printHeader := func(res simulate.DebtResult) {
		fmt.Println(cli.RenderTitle(fmt.Sprintf("CATCH-UP  %s", plan.Name)))
		fmt.Println()
		fmt.Printf("  Plan total:    %s\n", cli.FormatGrams(res.PlanGrams))
		fmt.Printf("  You have:      %s\n", cli.FormatGrams(req.Have))
		fmt.Printf("  Last price:    %s\n", cli.FormatPricePerGram(pc.lastPrice))
		fmt.Println()
	}

	rate := estimator().Rate(plan.Rows, pc.horizon.RemainingMonths)
	res, err := resolveDebt(&req, func(r wizard.DebtRequest) simulate.DebtInput {
		return r.Input(plan.Rows, rate, pc.lastPrice)
	}, func(r *wizard.DebtRequest, short simulate.DebtResult) error {
		printHeader(short)
		fmt.Printf("  %s %s, %s if bought now\n",
			cli.Bad("Shortfall:"), cli.FormatGrams(short.DebtGrams), cli.FormatEUR(short.DebtValueNow))
		fmt.Printf("  Forecast rate: %s per month\n", cli.FormatRate(rate))
		fmt.Println()
		if flags.Changed("months") {
			return nil
		}
		if !isTerminal() {
			return errors.New("--months is required to split a shortfall when not running in a terminal")
		}
		return r.InstallmentForm().Run()
	})
	if err != nil {
		return err
	}

	if res.Surplus {
		printHeader(res)
		fmt.Printf("  %s %s ahead of plan, worth %s at the last price.\n",
			cli.Good("Surplus:"), cli.FormatGrams(res.SurplusGrams), cli.FormatEUR(res.SurplusValue))
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(res.Installments)+2)
	for _, inst := range res.Installments {
		rows = append(rows, []string{
			fmt.Sprintf("%d", inst.Month),
			cli.FormatPricePerGram(inst.Price),
			cli.FormatGrams(inst.DebtGrams),
			cli.FormatGrams(inst.BaseGrams),
			cli.FormatGrams(inst.TotalGrams),
			cli.FormatEUR(inst.Cost),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", "", "", "", cli.FormatEUR(res.InstallmentsCost)})

	headers := []string{"Month", "Price", "Debt", "Base", "Grams", "Cost"}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%d installments of %s", len(res.Installments), cli.FormatGrams(res.PartGrams)),
		Headers: headers,
		Rows:    rows,
	}))

	verdict := cli.Good("Installments are cheaper by " + cli.FormatEUR(-res.Diff))
	if !res.InstallmentsCheaper() {
		verdict = cli.Warn("Buying now is cheaper by " + cli.FormatEUR(res.Diff))
	}
	fmt.Printf("  Difference: %s  %s\n", cli.FormatSignedEUR(res.Diff), verdict)
	if req.IncludeBase {
		fmt.Println(cli.Muted("  Installments include the base plan; compare against the debt alone with care."))
	}
	fmt.Println()
	return nil
}

// resolveDebt measures the holding first and only asks for the installment
// answers when the holding falls short of the plan.
func resolveDebt(
	req *wizard.DebtRequest,
	input func(wizard.DebtRequest) simulate.DebtInput,
	askInstallments func(*wizard.DebtRequest, simulate.DebtResult) error,
) (simulate.DebtResult, error) {
	if err := req.Validate(); err != nil {
		return simulate.DebtResult{}, err
	}

	res, err := simulate.Debt(input(*req))
	if res.Surplus {
		return res, nil
	}
	if err != nil && !errors.Is(err, simulate.ErrInvalidInstallments) {
		return res, err
	}

	if err := askInstallments(req, res); err != nil {
		return res, err
	}
	if err := req.ValidateInstallments(); err != nil {
		return res, err
	}
	return simulate.Debt(input(*req))
}
