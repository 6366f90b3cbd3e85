package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/theirongolddev/goldplan/internal/model"
)

// DefaultInvestingURL is the XAU/EUR historical data page on investing.com.
const DefaultInvestingURL = "https://www.investing.com/currencies/xau-eur-historical-data"

const tableCellsJS = `(() => {
	const table = document.querySelector('table');
	if (!table) return [];
	return Array.from(table.querySelectorAll('tr')).map(tr =>
		Array.from(tr.querySelectorAll('td')).map(td => td.innerText.trim()));
})()`

var investingDateLayouts = []string{
	"02.01.2006",
	"Jan 02, 2006",
	"01/02/2006",
	model.DateLayout,
}

// Investing scrapes the historical data table of investing.com with a
// headless browser. The page renders its table client-side.
type Investing struct {
	url        string
	timeout    time.Duration
	chromePath string
}

// NewInvesting creates an Investing source. chromePath may be empty to let
// chromedp locate a browser.
func NewInvesting(url string, timeout time.Duration, chromePath string) *Investing {
	if url == "" {
		url = DefaultInvestingURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Investing{url: url, timeout: timeout, chromePath: chromePath}
}

// Name implements Source.
func (s *Investing) Name() string { return "investing" }

// Fetch implements Source.
func (s *Investing) Fetch(ctx context.Context) ([]model.PricePoint, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("Mozilla/5.0 (compatible; goldplan/1.0)"),
	)
	if s.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, s.timeout)
	defer cancel()

	var cells [][]string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(s.url),
		chromedp.WaitVisible("table", chromedp.ByQuery),
		chromedp.Evaluate(tableCellsJS, &cells),
	)
	if err != nil {
		return nil, &Error{Source: s.Name(), Err: fmt.Errorf("scraping table: %w", err)}
	}

	points := ParseInvestingRows(cells)
	if len(points) == 0 {
		return nil, &Error{Source: s.Name(), Err: ErrEmpty}
	}
	return points, nil
}

// ParseInvestingRows converts table cells into price points. The first cell
// of a row is the date, the second the closing price. Rows that do not parse
// are skipped.
func ParseInvestingRows(rows [][]string) []model.PricePoint {
	var points []model.PricePoint
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		d, ok := parseInvestingDate(strings.TrimSpace(cells[0]))
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(cells[1]), ",", ""), 64)
		if err != nil {
			continue
		}
		points = append(points, model.PricePoint{Date: d, Price: price})
	}
	return Normalize(points)
}

func parseInvestingDate(s string) (time.Time, bool) {
	for _, layout := range investingDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
