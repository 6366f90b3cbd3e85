package components

import (
	"strings"

	"github.com/theirongolddev/goldplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  string
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Plan", Key: "p"},
	{Name: "Years", Key: "y"},
	{Name: "Forecast", Key: "f"},
}

func tabStyles(active bool) (name, key lipgloss.Style) {
	t := theme.Active
	name = lipgloss.NewStyle().Padding(0, 1).Background(t.Surface).Foreground(t.TextMuted)
	key = lipgloss.NewStyle().Background(t.Surface).Foreground(t.TextDim)
	if active {
		name = name.Foreground(t.AccentBright).Background(t.Highlight).Bold(true)
		key = key.Background(t.Highlight).Foreground(t.Accent)
	}
	return name, key
}

func renderTab(tab Tab, active bool) string {
	nameStyle, keyStyle := tabStyles(active)
	return nameStyle.Render(tab.Name) + keyStyle.Render("["+tab.Key+"]")
}

// TabVisualWidth returns the rendered width of a tab, used for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
