package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/theirongolddev/goldplan/internal/model"
)

const (
	// DefaultStooqURL is the daily XAU/EUR history as CSV.
	DefaultStooqURL = "https://stooq.com/q/d/l/?s=xaueur&i=d"
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 10 * time.Second

	maxBodySize = 16 << 20 // 16 MB
	userAgent   = "goldplan/1.0"
)

// stooqLimiter allows one request to stooq.com every five seconds for the
// whole process. Every Stooq value waits on it, so repeated refreshes from
// the TUI or the daemon cannot hammer the site.
var stooqLimiter = rate.NewLimiter(rate.Every(5*time.Second), 1)

// Stooq downloads the price history as CSV from stooq.com.
type Stooq struct {
	url     string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
}

// NewStooq creates a Stooq source. An empty url uses DefaultStooqURL and a
// zero timeout uses DefaultTimeout. All sources share one rate limit.
func NewStooq(url string, timeout time.Duration) *Stooq {
	if url == "" {
		url = DefaultStooqURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Stooq{
		url:     url,
		timeout: timeout,
		http:    &http.Client{},
		limiter: stooqLimiter,
	}
}

// Name implements Source.
func (s *Stooq) Name() string { return "stooq" }

// Fetch implements Source.
func (s *Stooq) Fetch(ctx context.Context) ([]model.PricePoint, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &Error{Source: s.Name(), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &Error{Source: s.Name(), Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &Error{Source: s.Name(), Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Source: s.Name(), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	points, err := ParseStooqCSV(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Source: s.Name(), Err: err}
	}
	if len(points) == 0 {
		return nil, &Error{Source: s.Name(), Err: ErrEmpty}
	}
	return points, nil
}

// ParseStooqCSV reads a Stooq daily CSV. Only the Date and Close columns are
// used; rows that fail to parse are skipped.
func ParseStooqCSV(r io.Reader) ([]model.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	dateCol, closeCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		// Stooq answers with plain text such as "No data" for unknown symbols.
		return nil, nil
	}

	var points []model.PricePoint
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		if dateCol >= len(rec) || closeCol >= len(rec) {
			continue
		}
		d, err := model.ParseDate(strings.TrimSpace(rec[dateCol]))
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[closeCol]), 64)
		if err != nil {
			continue
		}
		points = append(points, model.PricePoint{Date: d, Price: price})
	}
	return Normalize(points), nil
}
