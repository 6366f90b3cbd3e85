package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
	"github.com/theirongolddev/goldplan/internal/wizard"

	"github.com/spf13/cobra"
)

var (
	flagAddID        string
	flagAddName      string
	flagAddBirth     string
	flagAddTargetAge int
	flagAddBudget    float64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a child and build their savings plan",
	Long: "Register a child and build a monthly plan from the price history.\n" +
		"Registering an existing child ID replaces its plan.\n" +
		"Missing fields are asked for interactively when running in a terminal.",
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddID, "id", "", "Child ID (generated when blank)")
	addCmd.Flags().StringVar(&flagAddName, "name", "", "Child name")
	addCmd.Flags().StringVar(&flagAddBirth, "birth", "", "Birth date (YYYY-MM-DD)")
	addCmd.Flags().IntVar(&flagAddTargetAge, "target-age", 0, "Age in years the plan aims for (0 plans until today)")
	addCmd.Flags().Float64Var(&flagAddBudget, "budget", 0, "Monthly budget in EUR")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, _ []string) error {
	reg, err := registrationFromFlags()
	if err != nil {
		return err
	}

	missing := reg.Name == "" || reg.BirthDate.IsZero() || reg.Budget == 0
	if missing {
		if !isTerminal() {
			return fmt.Errorf("--name, --birth and --budget are required when not running in a terminal")
		}
		if err := reg.Form().Run(); err != nil {
			return err
		}
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	ps, plans, err := loadPlans()
	if err != nil {
		return err
	}
	history, err := loadHistory(context.Background())
	if err != nil {
		return err
	}

	plan := planner().Register(reg.ChildInfo(), history)
	plans, replaced := upsertPlan(plans, plan)
	if err := ps.Save(cfg.General.User, plans); err != nil {
		return err
	}
	logger.Debug("plan saved", "child_id", plan.ChildID, "rows", len(plan.Rows), "replaced", replaced != nil)

	fmt.Println()
	if replaced != nil {
		fmt.Printf("  Replaced the plan for %q (%d months)\n", replaced.Name, len(replaced.Rows))
	}
	fmt.Printf("  Plan for %q saved as %s\n", plan.Name, plan.ChildID)
	fmt.Printf("  Months in plan: %d\n", len(plan.Rows))
	if last, ok := plan.LastRow(); ok {
		fmt.Printf("  Total: %s for %s\n", cli.FormatGrams(pipeline.TotalGrams(plan.Rows)),
			cli.FormatEUR(pipeline.TotalCost(plan.Rows)))
		fmt.Printf("  Last price: %s on %s\n", cli.FormatPricePerGram(last.PricePerGram), model.FormatDate(last.Date))
	}
	if len(plan.Rows) < pipeline.MinRecommendedRows {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.Warn(fmt.Sprintf(
			"Only %d months of price history; forecasts will use default rates.", len(plan.Rows))))
	}
	fmt.Println()
	return nil
}

// upsertPlan stores plan under its child ID and returns the entry it
// replaced, if any.
func upsertPlan(plans model.PlanCollection, plan model.ChildPlan) (model.PlanCollection, *model.ChildPlan) {
	if plans == nil {
		plans = model.PlanCollection{}
	}
	var replaced *model.ChildPlan
	if prev, ok := plans[plan.ChildID]; ok {
		replaced = &prev
	}
	plans[plan.ChildID] = plan
	return plans, replaced
}

func registrationFromFlags() (wizard.Registration, error) {
	reg := wizard.Registration{
		ChildID: strings.TrimSpace(flagAddID),
		Name:    strings.TrimSpace(flagAddName),
		Budget:  flagAddBudget,
	}
	if flagAddBirth != "" {
		t, err := model.ParseDate(flagAddBirth)
		if err != nil {
			return reg, fmt.Errorf("invalid --birth %q, want YYYY-MM-DD", flagAddBirth)
		}
		reg.BirthDate = t
	}
	if flagAddTargetAge > 0 {
		age := flagAddTargetAge
		reg.TargetAge = &age
	}
	return reg, nil
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the saved plans",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	_, plans, err := loadPlans()
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Printf("\n  No plans for %s yet. Add one with: goldplan add\n", cfg.General.User)
		if users, err := planStore().Users(); err == nil && len(users) > 0 {
			fmt.Printf("  Other users with plans: %s (switch with --user)\n", strings.Join(users, ", "))
		}
		fmt.Println()
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(plans))
	for _, id := range plans.IDs() {
		p := plans[id]
		h := pipeline.HorizonFor(p, now)
		target := "today"
		if p.TargetAgeYears != nil {
			target = fmt.Sprintf("%d y", *p.TargetAgeYears)
		}
		rows = append(rows, []string{
			p.ChildID,
			p.Name,
			model.FormatDate(p.BirthDate),
			target,
			cli.FormatEUR(p.MonthlyBudget),
			cli.FormatNumber(int64(len(p.Rows))),
			cli.FormatGrams(pipeline.TotalGrams(p.Rows)),
			cli.FormatMonths(h.RemainingMonths),
		})
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("GOLD PLANS  %s", cfg.General.User)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Name", "Born", "Target", "Budget", "Months", "Grams", "Left"},
		Rows:    rows,
	}))
	return nil
}

var flagRemoveYes bool

var removeCmd = &cobra.Command{
	Use:     "remove <child-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved plan",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&flagRemoveYes, "yes", "y", false, "Skip the confirmation")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(_ *cobra.Command, args []string) error {
	ps, plans, err := loadPlans()
	if err != nil {
		return err
	}
	plan, ok := plans[args[0]]
	if !ok {
		return fmt.Errorf("no plan for child %q", args[0])
	}

	if !flagRemoveYes {
		if !isTerminal() {
			return fmt.Errorf("refusing to delete without --yes")
		}
		ok, err := confirm(fmt.Sprintf("Delete the plan for %s (%s)?", plan.Name, plan.ChildID))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	delete(plans, plan.ChildID)
	if err := ps.Save(cfg.General.User, plans); err != nil {
		return err
	}
	fmt.Printf("  Removed plan %s\n", plan.ChildID)
	return nil
}
