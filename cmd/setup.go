package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/goldplan/internal/config"
	"github.com/theirongolddev/goldplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	if !isTerminal() {
		return fmt.Errorf("setup needs a terminal; edit %s instead", config.ConfigPath())
	}

	// Start from the file, not from flag overrides.
	saved, _ := config.LoadFile(config.ConfigPath())

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	timeout := strconv.Itoa(saved.Feed.TimeoutSec)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Description("Plans are stored per user.").
				Value(&saved.General.User).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" || strings.ContainsAny(s, "/\\") {
						return fmt.Errorf("enter a name without slashes")
					}
					return nil
				}),
			huh.NewInput().
				Title("Data directory").
				Placeholder(config.DefaultDataDir()).
				Value(&saved.General.DataDir),
		).Title("Welcome to goldplan"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Number format").
				Options(huh.NewOption("English (1,234.56)", "en"), huh.NewOption("Russian (1 234,56)", "ru")).
				Value(&saved.General.Locale),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&saved.Appearance.Theme),
			huh.NewInput().
				Title("Price feed timeout (seconds)").
				Value(&timeout).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
		).Title("Preferences"),
	)
	if err := form.Run(); err != nil {
		return err
	}

	saved.General.User = strings.TrimSpace(saved.General.User)
	saved.General.DataDir = strings.TrimSpace(saved.General.DataDir)
	saved.Feed.TimeoutSec, _ = strconv.Atoi(strings.TrimSpace(timeout))

	if err := config.Save(saved); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `goldplan setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
