package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/goldplan/internal/feed"
	"github.com/theirongolddev/goldplan/internal/model"
)

type stubFeed struct {
	points []model.PricePoint
	err    error
}

func (f *stubFeed) Refresh(context.Context) ([]model.PricePoint, error) {
	return f.points, f.err
}

func (f *stubFeed) Status() feed.Status {
	return feed.Status{Source: "stub", Points: len(f.points)}
}

func history(prices ...float64) []model.PricePoint {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Price: p}
	}
	return out
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{PricePerGram: 60.25, Points: 100}
	curr := Snapshot{PricePerGram: 61.00, Points: 101}

	delta := diffSnapshots(prev, curr)
	if math.Abs(delta.PricePerGram-0.75) > 1e-9 {
		t.Fatalf("PricePerGram delta = %.4f, want 0.75", delta.PricePerGram)
	}
	if delta.Points != 1 {
		t.Fatalf("Points delta = %d, want 1", delta.Points)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should diff to zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, &stubFeed{})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnceEmitsOnChange(t *testing.T) {
	src := &stubFeed{points: history(1900, 1910)}
	s := New(Config{}, src)

	s.pollOnce(context.Background())
	s.pollOnce(context.Background()) // unchanged, no event

	src.points = history(1900, 1910, 1935)
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.PollCount != 3 {
		t.Fatalf("PollCount = %d, want 3", st.PollCount)
	}
	if st.EventCount != 2 {
		t.Fatalf("EventCount = %d, want 2", st.EventCount)
	}
	if st.Price.Date != "2024-01-03" {
		t.Fatalf("Price.Date = %q, want 2024-01-03", st.Price.Date)
	}
	want := 1935 / model.GramsPerOunce
	if math.Abs(st.Price.PricePerGram-want) > 1e-9 {
		t.Fatalf("PricePerGram = %f, want %f", st.Price.PricePerGram, want)
	}

	s.mu.RLock()
	last := s.events[len(s.events)-1]
	s.mu.RUnlock()
	if last.Type != "price_update" || last.Delta.Points != 1 {
		t.Fatalf("last event = %+v, want price_update with one new point", last)
	}
}

func TestPollOnceRecordsError(t *testing.T) {
	src := &stubFeed{points: history(1900)}
	s := New(Config{}, src)
	s.pollOnce(context.Background())

	src.err = errors.New("feed down")
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError != "feed down" {
		t.Fatalf("LastError = %q, want %q", st.LastError, "feed down")
	}
	if st.Price.PricePerOunce != 1900 {
		t.Fatalf("snapshot price = %v, want previous 1900 kept", st.Price.PricePerOunce)
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRoutes(t *testing.T) {
	s := New(Config{}, &stubFeed{points: history(1800, 1850)})
	h := s.Handler()

	if rec := get(t, h, "/v1/price"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("/v1/price before poll = %d, want 503", rec.Code)
	}

	s.pollOnce(context.Background())

	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("/healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = get(t, h, "/v1/price")
	if rec.Code != http.StatusOK {
		t.Fatalf("/v1/price = %d, want 200", rec.Code)
	}
	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode price: %v", err)
	}
	if snap.PricePerOunce != 1850 || snap.Points != 2 || snap.Source != "stub" {
		t.Fatalf("price = %+v", snap)
	}

	rec = get(t, h, "/v1/status")
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.PollCount != 1 || st.EventCount != 1 {
		t.Fatalf("status = %+v", st)
	}

	rec = get(t, h, "/v1/events")
	var events []Event
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].Type != "snapshot" {
		t.Fatalf("events = %+v", events)
	}

	rec = get(t, h, "/metrics")
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"goldplan_price_per_gram_eur", "goldplan_polls_total 1"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("/metrics missing %q", name)
		}
	}
}

func TestHandlerCORS(t *testing.T) {
	s := New(Config{AllowedOrigins: []string{"http://localhost:3000"}}, &stubFeed{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
