// Package tui provides the interactive Bubble Tea plan browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/goldplan/internal/cli"
	"github.com/theirongolddev/goldplan/internal/forecast"
	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/pipeline"
	"github.com/theirongolddev/goldplan/internal/tui/components"
	"github.com/theirongolddev/goldplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PriceFunc returns the current market price per gram.
type PriceFunc func(ctx context.Context) (float64, error)

// Options configures the plan browser.
type Options struct {
	Theme     string
	Estimator forecast.Estimator
	HaveGrams float64 // grams already held; marks plan rows covered
	LoadPrice PriceFunc
	Now       func() time.Time
}

// PriceLoadedMsg is sent when the current price fetch completes.
type PriceLoadedMsg struct {
	PricePerGram float64
	Err          error
}

// App is the root Bubble Tea model.
type App struct {
	plan     model.ChildPlan
	opts     Options
	horizon  pipeline.Horizon
	years    []int
	yearStat map[int]float64
	estimate forecast.Estimate
	statuses []pipeline.RowStatus

	lastPrice float64
	schedule  []forecast.Point

	// Market price fetched in the background
	price      float64
	priceErr   error
	priceAt    time.Time
	loading    bool
	priceKnown bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	table     table.Model
	spinner   spinner.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5
	fetchTimeout     = 45 * time.Second
)

// NewApp creates the browser for one plan.
func NewApp(plan model.ChildPlan, opts Options) App {
	theme.SetActive(opts.Theme)
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		plan:    plan,
		opts:    opts,
		spinner: sp,
		loading: opts.LoadPrice != nil,
	}
	a.recompute()
	a.table = newPlanTable(a.statuses, opts.HaveGrams > 0)
	return a
}

func (a *App) recompute() {
	now := a.opts.Now()
	a.horizon = pipeline.HorizonFor(a.plan, now)
	a.yearStat = pipeline.CalcYearStats(a.plan.Rows)
	a.years = pipeline.SortedYears(a.yearStat)
	a.estimate = a.opts.Estimator.Estimate(a.plan.Rows, a.horizon.RemainingMonths)
	a.statuses = pipeline.MonthlyStatus(a.plan.Rows, a.opts.HaveGrams)

	// Forecasts start from the last planned price; the market price is context.
	if last, ok := a.plan.LastRow(); ok {
		a.lastPrice = last.PricePerGram
	}
	a.schedule = forecast.Schedule(a.lastPrice, a.estimate.Rate, scheduleMonths(a.horizon.RemainingMonths))
}

// scheduleMonths extends the default horizons with the plan's own target.
func scheduleMonths(remaining int) []int {
	months := append([]int(nil), forecast.DefaultScheduleMonths...)
	if remaining > months[len(months)-1] {
		months = append(months, remaining)
	}
	return months
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.opts.LoadPrice != nil {
		cmds = append(cmds, a.spinner.Tick, loadPriceCmd(a.opts.LoadPrice))
	}
	return tea.Batch(cmds...)
}

func (a *App) startLoad() tea.Cmd {
	if a.opts.LoadPrice == nil || a.loading {
		return nil
	}
	a.loading = true
	return tea.Batch(a.spinner.Tick, loadPriceCmd(a.opts.LoadPrice))
}

func loadPriceCmd(load PriceFunc) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		p, err := load(ctx)
		return PriceLoadedMsg{PricePerGram: p, Err: err}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeTable()
		return a, nil

	case tea.MouseMsg:
		if a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
			return a, nil
		case tea.MouseButtonWheelUp:
			if a.activeTab == 0 {
				a.table.MoveUp(1)
			}
			return a, nil
		case tea.MouseButtonWheelDown:
			if a.activeTab == 0 {
				a.table.MoveDown(1)
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || key == "q" {
			return a, tea.Quit
		}
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "r":
			return a, a.startLoad()
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
		if idx := components.TabIdxByKey(key); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}

		if a.activeTab == 0 {
			var cmd tea.Cmd
			a.table, cmd = a.table.Update(msg)
			return a, cmd
		}
		return a, nil

	case PriceLoadedMsg:
		a.loading = false
		a.priceAt = a.opts.Now()
		if msg.Err != nil {
			a.priceErr = msg.Err
			return a, nil
		}
		a.priceErr = nil
		a.price = msg.PricePerGram
		a.priceKnown = true
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a *App) resizeTable() {
	a.table.SetWidth(a.contentWidth())
	// header + tab bar + cards + progress + status bar
	a.table.SetHeight(max(a.height-12, minContentHeight))
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  goldplan needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderPlanPill(w)
	statusBar := components.RenderStatusBar(w, a.priceInfo())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderPlanTab(cw)
	case 1:
		content = a.renderYearsTab(cw)
	case 2:
		content = a.renderForecastTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderPlanPill(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	target := "no target age"
	if a.plan.TargetAgeYears != nil {
		target = fmt.Sprintf("target %s (age %d)", model.FormatDate(a.horizon.TargetDate), *a.plan.TargetAgeYears)
	}
	s := dim.Render(" ") + accent.Render(a.plan.Name) +
		dim.Render(" │ "+a.plan.ChildID+" │ born "+model.FormatDate(a.plan.BirthDate)+" │ ") +
		accent.Render(cli.FormatEUR(a.plan.MonthlyBudget)+"/month") +
		dim.Render(" │ "+target+" ")
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(s)
}

func (a App) priceInfo() string {
	switch {
	case a.priceErr != nil:
		return "price unavailable: " + truncStr(a.priceErr.Error(), 40)
	case a.priceKnown:
		return "market " + cli.FormatPricePerGram(a.price) + " · " + cli.FormatAge(a.priceAt, a.opts.Now())
	case a.loading:
		return a.spinner.View() + " fetching price"
	default:
		return "offline"
	}
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"p y f", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k ↑ ↓", "Move through plan rows"},
		{"r", "Reload market price"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
