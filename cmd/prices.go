package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/config"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
	"github.com/theirongolddev/goldplan/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagPricesRefresh bool
	flagPricesClear   bool
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show the cached XAU/EUR price history",
	Args:  cobra.NoArgs,
	RunE:  runPrices,
}

func init() {
	pricesCmd.Flags().BoolVarP(&flagPricesRefresh, "refresh", "r", false, "Fetch the history even if the cache is fresh")
	pricesCmd.Flags().BoolVar(&flagPricesClear, "clear", false, "Drop the cached history")
	rootCmd.AddCommand(pricesCmd)
}

func runPrices(_ *cobra.Command, _ []string) error {
	if flagPricesClear {
		return clearPriceCache()
	}

	svc, closeFn, err := priceService()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	progress("Loading XAU/EUR price history...")
	var points []model.PricePoint
	if flagPricesRefresh || flagNoCache {
		points, err = svc.Refresh(ctx)
	} else {
		points, err = svc.History(ctx)
	}
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return errors.New("price history is empty")
	}

	st := svc.Status()
	first, last, _ := model.PriceRange(points)
	latest := points[len(points)-1]

	fmt.Println(cli.RenderTitle("XAU/EUR PRICE HISTORY"))
	fmt.Println()
	fmt.Printf("  Latest:    %s / oz  %s  on %s\n", cli.FormatEUR(latest.Price),
		cli.FormatPricePerGram(latest.PricePerGram()), model.FormatDate(last))
	fmt.Printf("  History:   %s days from %s\n", cli.FormatNumber(int64(len(points))), model.FormatDate(first))
	fmt.Printf("  Source:    %s, fetched %s\n", st.Source, cli.FormatAge(st.FetchedAt, time.Now()))
	if st.Stale {
		fmt.Printf("  %s\n", cli.Warn("Feed unreachable, showing cached history"))
	}

	// Last two years of monthly samples.
	since := model.AddYears(model.DateOf(last), -2)
	monthly := pipeline.PickMonthly(pipeline.FilterPeriod(points, since, last), cfg.DayPriority())
	if len(monthly) > 1 {
		values := make([]float64, len(monthly))
		for i, p := range monthly {
			values[i] = p.PricePerGram()
		}
		fmt.Println()
		fmt.Printf("  24 months: %s\n", cli.RenderSparkline(values))
	}
	fmt.Println()
	return nil
}

func clearPriceCache() error {
	cache, err := store.OpenPriceCache(config.PriceCachePath())
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	n, err := cache.PriceCount()
	if err != nil {
		return err
	}
	if err := cache.Clear(); err != nil {
		return err
	}
	fmt.Printf("  Cleared %s cached prices\n", cli.FormatNumber(int64(n)))
	return nil
}
