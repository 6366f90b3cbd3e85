package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagTUIHave    float64
	flagTUIOffline bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui [child-id]",
	Short: "Browse a plan in the interactive dashboard",
	Args:  childArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().Float64Var(&flagTUIHave, "have", 0, "Grams already held for the child")
	tuiCmd.Flags().BoolVar(&flagTUIOffline, "offline", false, "Skip fetching the market price")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, args []string) error {
	if flagTUIHave < 0 {
		return fmt.Errorf("--have cannot be negative")
	}
	plan, err := selectPlan(args)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Theme:     cfg.Appearance.Theme,
		Estimator: estimator(),
		HaveGrams: flagTUIHave,
	}

	if !flagTUIOffline {
		svc, closeFn, err := priceService()
		if err != nil {
			return err
		}
		defer closeFn()

		// The first load may come from the cache; reloads always fetch.
		loaded := false
		opts.LoadPrice = func(ctx context.Context) (float64, error) {
			var points []model.PricePoint
			var err error
			if loaded || flagNoCache {
				points, err = svc.Refresh(ctx)
			} else {
				points, err = svc.History(ctx)
			}
			if err != nil {
				return 0, err
			}
			if len(points) == 0 {
				return 0, errors.New("empty price history")
			}
			loaded = true
			return points[len(points)-1].PricePerGram(), nil
		}
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(plan, opts)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
