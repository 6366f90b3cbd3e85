package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/goldplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline scaled between the series min and max.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(blocks) - 1
		if span > 0 {
			idx = int((v - lo) / span * float64(len(blocks)-1))
		}
		idx = min(max(idx, 0), len(blocks)-1)
		buf.WriteRune(blocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// HBarChart renders one horizontal bar per label, scaled to the largest
// value. format renders the value printed after each bar.
func HBarChart(labels []string, values []float64, width int, format func(float64) string) string {
	if len(values) == 0 || len(labels) != len(values) {
		return ""
	}
	t := theme.Active

	labelW := 0
	peak := 0.0
	valueTexts := make([]string, len(values))
	valueW := 0
	for i, v := range values {
		labelW = max(labelW, lipgloss.Width(labels[i]))
		peak = max(peak, v)
		valueTexts[i] = format(v)
		valueW = max(valueW, lipgloss.Width(valueTexts[i]))
	}
	if peak == 0 {
		peak = 1
	}

	barMax := max(width-labelW-valueW-4, 5)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	rows := make([]string, len(values))
	for i, v := range values {
		pct := v / peak
		filled := int(pct * float64(barMax))
		if v > 0 && filled == 0 {
			filled = 1
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor(pct)).Background(t.Surface)
		rows[i] = labelStyle.Render(fmt.Sprintf("%*s", labelW, labels[i])) +
			space.Render(" ") +
			barStyle.Render(strings.Repeat("█", filled)) +
			space.Render(strings.Repeat(" ", barMax-filled+1)) +
			valueStyle.Render(fmt.Sprintf("%*s", valueW, valueTexts[i]))
	}
	return strings.Join(rows, "\n")
}

func barColor(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct > 0.8:
		return t.AccentBright
	case pct > 0.4:
		return t.Accent
	default:
		return t.Yellow
	}
}
