package cmd

import (
	"fmt"

	"github.com/theirongolddev/goldplan/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    User:        %s\n", cfg.General.User)
	fmt.Printf("    Locale:      %s\n", cfg.General.Locale)
	fmt.Printf("    Data dir:    %s\n", cfg.DataDir())
	fmt.Println()

	fmt.Println("  [Feed]")
	fmt.Printf("    Primary:     %s\n", cfg.Feed.PrimaryURL)
	fmt.Printf("    Fallback:    %s\n", cfg.Feed.FallbackURL)
	fmt.Printf("    Timeout:     %s\n", cfg.FeedTimeout())
	fmt.Printf("    Cache age:   %s\n", cfg.CacheMaxAge())
	fmt.Printf("    Cache file:  %s\n", config.PriceCachePath())
	if cfg.Feed.ChromePath != "" {
		fmt.Printf("    Chrome:      %s\n", cfg.Feed.ChromePath)
	}
	fmt.Println()

	fmt.Println("  [Sampling]")
	fmt.Printf("    Day priority: %v\n", cfg.DayPriority())
	fmt.Println()

	fmt.Println("  [Estimator]")
	tables := cfg.EstimatorTables()
	for _, b := range tables.Bands {
		upTo := "beyond"
		if b.MaxYears > 0 {
			upTo = fmt.Sprintf("up to %gy", b.MaxYears)
		}
		fmt.Printf("    Band %-9s %.4f .. %.4f (default %.4f)\n", upTo, b.Lo, b.Hi, b.Default)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.DaemonInterval())
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  Run `goldplan setup` to reconfigure.")
	return nil
}
