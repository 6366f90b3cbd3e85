package tui

import (
	"strconv"
	"strings"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/tui/components"
)

func (a App) renderYearsTab(cw int) string {
	if len(a.years) == 0 {
		return components.ContentCard("Grams per year", "No plan rows yet.", cw)
	}

	labels := make([]string, len(a.years))
	values := make([]float64, len(a.years))
	total := 0.0
	for i, y := range a.years {
		labels[i] = strconv.Itoa(y)
		values[i] = a.yearStat[y]
		total += values[i]
	}

	var b strings.Builder
	b.WriteString(components.HBarChart(labels, values, components.CardInnerWidth(cw), cli.FormatGrams))
	b.WriteString("\n\n")
	b.WriteString("Total " + cli.FormatGrams(total) + " over " + cli.FormatNumber(int64(len(a.years))) + " calendar years")

	return components.ContentCard("Grams per year", b.String(), cw)
}
