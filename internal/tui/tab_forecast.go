package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/tui/components"
	"github.com/theirongolddev/goldplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	est := a.estimate
	halves := components.LayoutRow(cw, 2)

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	line := func(b *strings.Builder, k, v string) {
		b.WriteString(label.Render(fmt.Sprintf("%-18s", k)))
		b.WriteString(value.Render(v))
		b.WriteString("\n")
	}

	var left strings.Builder
	if a.horizon.RemainingMonths > 0 {
		line(&left, "Horizon", fmt.Sprintf("%s (%.1f years)", cli.FormatMonths(est.TargetMonths), est.HorizonYears))
	} else {
		line(&left, "Horizon", fmt.Sprintf("none, assuming %.0f years", est.HorizonYears))
	}
	line(&left, "Band", fmt.Sprintf("%s … %s (default %s)",
		cli.FormatRate(est.Band.Lo), cli.FormatRate(est.Band.Hi), cli.FormatRate(est.Band.Default)))
	if est.FromDefault {
		line(&left, "History", "too short, using band default")
	} else {
		line(&left, "History rows", cli.FormatNumber(int64(est.HistoryRows)))
		line(&left, "Historical", cli.FormatRate(est.HistoricalRate))
		line(&left, "After penalty", cli.FormatRate(est.PenalizedRate))
		line(&left, "Ceiling", cli.FormatRate(est.MaxAllowedReturn))
	}
	line(&left, "Monthly rate", cli.FormatRate(est.Rate))
	line(&left, "Annualized", cli.FormatRate(est.AnnualRate()))
	if est.TargetMonths > 0 && est.CurrentPrice > 0 {
		line(&left, "At target", cli.FormatPricePerGram(est.ProjectedPrice()))
	}

	var right strings.Builder
	prices := make([]float64, len(a.schedule))
	for i, p := range a.schedule {
		prices[i] = p.Price
	}
	right.WriteString(components.Sparkline(prices, t.Accent))
	right.WriteString("\n\n")
	for _, p := range a.schedule {
		change := cli.Good(fmt.Sprintf("%+.1f%%", p.Change*100))
		if p.Change < 0 {
			change = cli.Bad(fmt.Sprintf("%+.1f%%", p.Change*100))
		}
		right.WriteString(label.Render(fmt.Sprintf("%-8s", "+"+cli.FormatMonths(p.Months))))
		right.WriteString(value.Render(fmt.Sprintf("%-16s", cli.FormatPricePerGram(p.Price))))
		right.WriteString(change)
		right.WriteString("\n")
	}
	right.WriteString(label.Render("from " + cli.FormatPricePerGram(a.lastPrice) + " (last plan month)"))
	if a.priceKnown && a.lastPrice > 0 {
		right.WriteString("\n")
		right.WriteString(label.Render(fmt.Sprintf("market now %s (%+.1f%%)",
			cli.FormatPricePerGram(a.price), (a.price/a.lastPrice-1)*100)))
	}

	return components.CardRow([]string{
		components.ContentCard("Return estimate", strings.TrimRight(left.String(), "\n"), halves[0]),
		components.ContentCard("Price forecast", strings.TrimRight(right.String(), "\n"), halves[1]),
	})
}
