package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/store"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const stooqCSV = `Date,Open,High,Low,Close,Volume
2024-01-03,1850,1860,1840,1855.5,0
2024-01-02,1840,1850,1830,1845.25,0
bad-date,1,1,1,1,0
2024-01-04,1850,1860,1840,n/a,0
2024-01-05,1850,1860,1840,0,0
`

func TestParseStooqCSV(t *testing.T) {
	points, err := ParseStooqCSV(strings.NewReader(stooqCSV))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, model.Date(2024, 1, 2), points[0].Date)
	assert.Equal(t, 1845.25, points[0].Price)
	assert.Equal(t, 1855.5, points[1].Price)

	points, err = ParseStooqCSV(strings.NewReader("No data"))
	require.NoError(t, err)
	assert.Empty(t, points)
}

// newTestStooq returns a source that skips the shared rate limit.
func newTestStooq(url string) *Stooq {
	s := NewStooq(url, time.Second)
	s.limiter = rate.NewLimiter(rate.Inf, 1)
	return s
}

func TestStooqFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, stooqCSV)
	}))
	defer srv.Close()

	points, err := newTestStooq(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestStooqFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		is      error
	}{
		{"status", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) }, ErrFeed},
		{"empty", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "No data") }, ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestStooq(srv.URL).Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			var fe *Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "stooq", fe.Source)
		})
	}
}

func TestParseInvestingRows(t *testing.T) {
	rows := [][]string{
		{},
		{"Date", "Price"},
		{"20.06.2024", "2,165.40", "2,150.00"},
		{"Jun 19, 2024", "2,150.10"},
		{"06/18/2024", "2140"},
		{"20.06.2024", "oops"},
		{"only one"},
	}
	points := ParseInvestingRows(rows)
	require.Len(t, points, 3)
	assert.Equal(t, model.Date(2024, 6, 18), points[0].Date)
	assert.Equal(t, 2140.0, points[0].Price)
	assert.Equal(t, 2150.10, points[1].Price)
	assert.Equal(t, 2165.40, points[2].Price)
}

func TestNormalize(t *testing.T) {
	in := []model.PricePoint{
		{Date: time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC), Price: 3},
		{Date: model.Date(2024, 1, 1), Price: 1},
		{Date: model.Date(2024, 1, 3), Price: 4},
		{Date: model.Date(2024, 1, 2), Price: -1},
		{Price: 9},
	}
	got := Normalize(in)
	require.Len(t, got, 2)
	assert.Equal(t, model.Date(2024, 1, 1), got[0].Date)
	assert.Equal(t, model.Date(2024, 1, 3), got[1].Date)
	assert.Equal(t, 4.0, got[1].Price)
}

type fakeSource struct {
	name   string
	points []model.PricePoint
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(context.Context) ([]model.PricePoint, error) {
	f.calls++
	return f.points, f.err
}

func onePoint(price float64) []model.PricePoint {
	return []model.PricePoint{{Date: model.Date(2024, 6, 20), Price: price}}
}

func TestFallback(t *testing.T) {
	primaryErr := &Error{Source: "a", Err: errors.New("down")}
	secondaryErr := &Error{Source: "b", Err: ErrEmpty}

	a := &fakeSource{name: "a", points: onePoint(1)}
	b := &fakeSource{name: "b", points: onePoint(2)}
	f := &Fallback{Primary: a, Secondary: b, Logger: quiet}

	points, name, err := f.FetchNamed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	assert.Equal(t, 1.0, points[0].Price)
	assert.Zero(t, b.calls)

	a.err = primaryErr
	points, name, err = f.FetchNamed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	assert.Equal(t, 2.0, points[0].Price)

	b.err = secondaryErr
	_, err = f.Fetch(context.Background())
	assert.Same(t, secondaryErr, err)
	assert.ErrorIs(t, err, ErrFeed)
	assert.Equal(t, 3, a.calls)
	assert.Equal(t, 2, b.calls)
}

type memCache struct {
	points []model.PricePoint
	info   store.FetchInfo
	ok     bool
	saves  int
}

func (m *memCache) SavePrices(source string, points []model.PricePoint) error {
	m.saves++
	m.points = points
	m.info = store.FetchInfo{Source: source, FetchedAt: time.Now(), Points: len(points)}
	m.ok = true
	return nil
}

func (m *memCache) LoadPrices() ([]model.PricePoint, error) { return m.points, nil }

func (m *memCache) LastFetch() (store.FetchInfo, bool, error) { return m.info, m.ok, nil }

func TestServiceFetchesOncePerRun(t *testing.T) {
	src := &fakeSource{name: "a", points: onePoint(5)}
	cache := &memCache{}
	s := &Service{Source: src, Cache: cache, MaxAge: time.Hour, Logger: quiet}

	for i := 0; i < 3; i++ {
		points, err := s.History(context.Background())
		require.NoError(t, err)
		require.Len(t, points, 1)
	}
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, cache.saves)
	assert.Equal(t, "a", s.Status().Source)

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestServiceUsesFreshCache(t *testing.T) {
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	cache := &memCache{
		points: onePoint(7),
		info:   store.FetchInfo{Source: "stooq", FetchedAt: now.Add(-time.Hour)},
		ok:     true,
	}
	src := &fakeSource{name: "a", points: onePoint(5)}
	s := &Service{Source: src, Cache: cache, MaxAge: 24 * time.Hour, Logger: quiet, Now: func() time.Time { return now }}

	points, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.0, points[0].Price)
	assert.Zero(t, src.calls)
}

func TestServiceStaleCacheOnFailure(t *testing.T) {
	now := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
	cache := &memCache{
		points: onePoint(7),
		info:   store.FetchInfo{Source: "stooq", FetchedAt: now.Add(-72 * time.Hour)},
		ok:     true,
	}
	src := &fakeSource{name: "a", err: &Error{Source: "a", Err: fmt.Errorf("boom")}}
	s := &Service{Source: src, Cache: cache, MaxAge: 24 * time.Hour, Logger: quiet, Now: func() time.Time { return now }}

	points, err := s.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.0, points[0].Price)
	assert.Equal(t, 1, src.calls)
	assert.True(t, s.Status().Stale)
}

func TestServiceFailsWithoutCache(t *testing.T) {
	src := &fakeSource{name: "a", err: &Error{Source: "a", Err: ErrEmpty}}
	s := &Service{Source: src, Logger: quiet}

	_, err := s.History(context.Background())
	assert.ErrorIs(t, err, ErrFeed)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStooqSharesRateLimit(t *testing.T) {
	a := NewStooq("http://a.invalid", 0)
	b := NewStooq("http://b.invalid", 0)
	assert.Same(t, a.limiter, b.limiter)
	assert.Same(t, stooqLimiter, a.limiter)
}

func TestStooqFetchWaitsForLimiter(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, stooqCSV)
	}))
	defer srv.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	first := NewStooq(srv.URL, time.Second)
	first.limiter = limiter
	second := NewStooq(srv.URL, time.Second)
	second.limiter = limiter

	_, err := first.Fetch(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = second.Fetch(ctx)
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int32(1), hits.Load())
}
