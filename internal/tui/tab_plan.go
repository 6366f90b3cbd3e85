package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
	"github.com/theirongolddev/goldplan/internal/tui/components"
	"github.com/theirongolddev/goldplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func newPlanTable(statuses []pipeline.RowStatus, withStatus bool) table.Model {
	t := theme.Active

	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Date", Width: 10},
		{Title: "EUR/g", Width: 10},
		{Title: "Grams", Width: 10},
	}
	if withStatus {
		cols = append(cols, table.Column{Title: "Status", Width: 9})
	}

	rows := make([]table.Row, len(statuses))
	for i, st := range statuses {
		row := table.Row{
			fmt.Sprintf("%d", i+1),
			model.FormatDate(st.Row.Date),
			fmt.Sprintf("%.2f", st.Row.PricePerGram),
			fmt.Sprintf("%.4f", st.Row.GramsForBudget),
		}
		if withStatus {
			row = append(row, st.Status.String())
		}
		rows[i] = row
	}

	tbl := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(minContentHeight),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.TextMuted).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)
	styles.Selected = styles.Selected.
		Foreground(t.AccentBright).
		Background(t.Highlight).
		Bold(true)
	tbl.SetStyles(styles)

	// Open on the most recent month.
	if n := len(rows); n > 0 {
		tbl.SetCursor(n - 1)
	}
	return tbl
}

func (a App) renderPlanTab(cw int) string {
	var b strings.Builder

	rows := a.plan.Rows
	total := pipeline.TotalGrams(rows)
	cost := pipeline.TotalCost(rows)

	avg := 0.0
	if total > 0 {
		avg = cost / total
	}

	metrics := []components.Metric{
		{Label: "Months", Value: cli.FormatNumber(int64(len(rows))), Note: a.rangeNote()},
		{Label: "Total gold", Value: cli.FormatGrams(total)},
		{Label: "Invested", Value: cli.FormatEUR(cost)},
		{Label: "Avg price", Value: cli.FormatPricePerGram(avg)},
	}
	if a.opts.HaveGrams > 0 {
		metrics = append(metrics, components.Metric{
			Label: "Held",
			Value: cli.FormatGrams(a.opts.HaveGrams),
			Note:  coverageNote(a.statuses),
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	if a.horizon.TotalMonths > 0 {
		pct := float64(a.horizon.ElapsedMonths) / float64(a.horizon.TotalMonths)
		note := cli.FormatMonths(a.horizon.RemainingMonths) + " to go"
		b.WriteString(components.ProgressBar("Horizon", pct, note, 8, max(cw/2, 20)))
		b.WriteString("\n")
	}

	if len(rows) < pipeline.MinRecommendedRows {
		warn := lipgloss.NewStyle().Foreground(theme.Active.Orange).Background(theme.Active.Surface)
		b.WriteString(warn.Render(fmt.Sprintf("Only %d months of history; estimates fall back to defaults.", len(rows))))
		b.WriteString("\n")
	}

	b.WriteString(a.table.View())
	return b.String()
}

func (a App) rangeNote() string {
	if len(a.plan.Rows) == 0 {
		return "no history"
	}
	first := a.plan.Rows[0].Date.Format("Jan 2006")
	last := a.plan.Rows[len(a.plan.Rows)-1].Date.Format("Jan 2006")
	return first + " – " + last
}

func coverageNote(statuses []pipeline.RowStatus) string {
	covered := 0
	for _, st := range statuses {
		if st.Status == pipeline.Covered {
			covered++
		}
	}
	return fmt.Sprintf("%d of %d months covered", covered, len(statuses))
}
