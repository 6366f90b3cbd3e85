// Package cmd implements the goldplan CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/config"
	"github.com/theirongolddev/goldplan/internal/feed"
	"github.com/theirongolddev/goldplan/internal/forecast"
	"github.com/theirongolddev/goldplan/internal/logging"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
	"github.com/theirongolddev/goldplan/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagUser    string
	flagDataDir string
	flagQuiet   bool
	flagNoCache bool
	flagVerbose bool
)

// Loaded once per invocation by the root pre-run hook.
var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goldplan",
	Short: "Gold savings plans for children",
	Long: "Plan monthly gold purchases for each child against the historical XAU/EUR\n" +
		"price, and simulate catching up, buying ahead and future prices.",
	SilenceUsage:      true,
	PersistentPreRunE: setupRun,
	RunE:              runList,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "Plan owner (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding plan files")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Ignore the cached price history and fetch")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
}

func setupRun(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if flagUser != "" {
		cfg.General.User = flagUser
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}

	// Quiet runs only report problems.
	logCfg := cfg.Logging
	if flagQuiet && !flagVerbose {
		logCfg.Level = "error"
	}
	logger = logging.Setup(logCfg, os.Stderr)
	cli.SetLocale(cfg.General.Locale)
	return nil
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func planStore() *store.Plans {
	return store.NewPlans(cfg.PlansDir())
}

// loadPlans reads the current user's plans, reporting dropped entries.
func loadPlans() (*store.Plans, model.PlanCollection, error) {
	ps := planStore()
	res, err := ps.Load(cfg.General.User)
	if err != nil {
		return nil, nil, err
	}
	for _, issue := range res.Issues {
		logger.Warn("skipped unreadable plan", "child_id", issue.ChildID, "error", issue.Err)
	}
	return ps, res.Plans, nil
}

var errNoPlans = errors.New("no plans yet, add one with `goldplan add`")

// selectPlan resolves the child named in args. With no argument it picks the
// only plan, or asks when running in a terminal.
func selectPlan(args []string) (model.ChildPlan, error) {
	_, plans, err := loadPlans()
	if err != nil {
		return model.ChildPlan{}, err
	}
	if len(plans) == 0 {
		return model.ChildPlan{}, errNoPlans
	}

	if len(args) > 0 {
		p, ok := plans[args[0]]
		if !ok {
			return model.ChildPlan{}, fmt.Errorf("no plan for child %q (have: %v)", args[0], plans.IDs())
		}
		return p, nil
	}

	if len(plans) == 1 {
		return plans[plans.IDs()[0]], nil
	}
	if !isTerminal() {
		return model.ChildPlan{}, fmt.Errorf("several plans exist, name one of %v", plans.IDs())
	}
	id, err := pickChild(plans)
	if err != nil {
		return model.ChildPlan{}, err
	}
	return plans[id], nil
}

// priceService wires the cached feed: Stooq first, then Investing.com.
func priceService() (*feed.Service, func(), error) {
	timeout := cfg.FeedTimeout()
	src := &feed.Fallback{
		Primary:   feed.NewStooq(cfg.Feed.PrimaryURL, timeout),
		Secondary: feed.NewInvesting(cfg.Feed.FallbackURL, timeout, cfg.Feed.ChromePath),
		Logger:    logger,
	}
	svc := &feed.Service{Source: src, MaxAge: cfg.CacheMaxAge(), Logger: logger}

	if err := os.MkdirAll(config.CacheDir(), 0o750); err != nil {
		logger.Warn("price cache unavailable", "error", err)
		return svc, func() {}, nil
	}
	cache, err := store.OpenPriceCache(config.PriceCachePath())
	if err != nil {
		logger.Warn("price cache unavailable", "error", err)
		return svc, func() {}, nil
	}
	svc.Cache = cache
	return svc, func() { _ = cache.Close() }, nil
}

// loadHistory returns the price history for this run.
func loadHistory(ctx context.Context) ([]model.PricePoint, error) {
	svc, closeFn, err := priceService()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	progress("Loading XAU/EUR price history...")
	var points []model.PricePoint
	if flagNoCache {
		points, err = svc.Refresh(ctx)
	} else {
		points, err = svc.History(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("loading price history: %w", err)
	}

	st := svc.Status()
	if st.Stale {
		progress("Price feed unreachable, using cached history from %s", cli.FormatAge(st.FetchedAt, time.Now()))
	}
	if first, last, ok := model.PriceRange(points); ok {
		progress("%s daily prices from %s to %s (%s)", cli.FormatNumber(int64(len(points))),
			model.FormatDate(first), model.FormatDate(last), st.Source)
	}
	return points, nil
}

func estimator() forecast.Estimator {
	return forecast.Estimator{Tables: cfg.EstimatorTables()}
}

func planner() pipeline.Planner {
	return pipeline.Planner{DayPriority: cfg.DayPriority()}
}

// planContext gathers what the per-child tools need from a plan.
type planContext struct {
	plan      model.ChildPlan
	horizon   pipeline.Horizon
	lastPrice float64
}

func newPlanContext(plan model.ChildPlan) (planContext, error) {
	last, ok := plan.LastRow()
	if !ok {
		return planContext{}, fmt.Errorf("plan for %q is empty", plan.ChildID)
	}
	return planContext{
		plan:      plan,
		horizon:   pipeline.HorizonFor(plan, time.Now()),
		lastPrice: last.PricePerGram,
	}, nil
}

func childArgs(cmd *cobra.Command, args []string) error {
	return cobra.MaximumNArgs(1)(cmd, args)
}
