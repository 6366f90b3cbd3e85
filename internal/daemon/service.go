// Package daemon provides the long-running background price refresher.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/goldplan/internal/feed"
	"github.com/theirongolddev/goldplan/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Refresher is the part of feed.Service the daemon drives.
type Refresher interface {
	Refresh(ctx context.Context) ([]model.PricePoint, error)
	Status() feed.Status
}

// Config controls the daemon runtime behavior.
type Config struct {
	Interval       time.Duration
	Addr           string
	EventsBuffer   int
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Snapshot is the latest known price state.
type Snapshot struct {
	At            time.Time `json:"at"`
	Date          string    `json:"date"`
	PricePerOunce float64   `json:"price_per_ounce_eur"`
	PricePerGram  float64   `json:"price_per_gram_eur"`
	Points        int       `json:"points"`
	Source        string    `json:"source"`
	Stale         bool      `json:"stale"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	PricePerGram float64 `json:"price_per_gram_eur"`
	Points       int     `json:"points"`
}

func (d Delta) isZero() bool {
	return d.PricePerGram == 0 && d.Points == 0
}

// Event is emitted whenever the price snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Price           Snapshot  `json:"price"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

type metrics struct {
	registry     *prometheus.Registry
	pricePerGram prometheus.Gauge
	points       prometheus.Gauge
	polls        prometheus.Counter
	pollErrors   prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		pricePerGram: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goldplan",
			Name:      "price_per_gram_eur",
			Help:      "Latest gold price per gram in EUR.",
		}),
		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goldplan",
			Name:      "history_points",
			Help:      "Number of daily points in the price history.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goldplan",
			Name:      "polls_total",
			Help:      "Price refresh attempts.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goldplan",
			Name:      "poll_errors_total",
			Help:      "Price refresh attempts that failed.",
		}),
	}
	m.registry.MustRegister(m.pricePerGram, m.points, m.polls, m.pollErrors)
	return m
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	feed    Refresher
	log     *slog.Logger
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service polling src.
func New(cfg Config, src Refresher) *Service {
	if cfg.Interval < time.Minute {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		feed:      src,
		log:       logger.With("component", "daemon"),
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.With(render.SetContentType(render.ContentTypeJSON)).Group(func(r chi.Router) {
			r.Get("/status", s.handleStatus)
			r.Get("/events", s.handleEvents)
			r.Get("/price", s.handlePrice)
		})
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run serves the HTTP API and polls the feed until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Seed so status is useful immediately.
		s.pollOnce(gctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})
	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	s.metrics.polls.Inc()
	points, err := s.feed.Refresh(ctx)
	if err == nil && len(points) == 0 {
		err = feed.ErrEmpty
	}
	now := time.Now()
	if err != nil {
		s.metrics.pollErrors.Inc()
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("price poll failed", "error", err)
		return
	}

	snap := snapshotFromHistory(points, s.feed.Status(), now)
	s.metrics.pricePerGram.Set(snap.PricePerGram)
	s.metrics.points.Set(float64(snap.Points))

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	switch {
	case !prevExists:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	default:
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() || prev.Date != snap.Date {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: "price_update", Timestamp: now, Snapshot: snap, Delta: delta}
			publish = true
		}
	}
	s.mu.Unlock()

	s.log.Info("price poll", "date", snap.Date, "price_per_gram", snap.PricePerGram,
		"points", snap.Points, "stale", snap.Stale)
	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromHistory(points []model.PricePoint, st feed.Status, at time.Time) Snapshot {
	last := points[len(points)-1]
	return Snapshot{
		At:            at,
		Date:          model.FormatDate(last.Date),
		PricePerOunce: last.Price,
		PricePerGram:  last.PricePerGram(),
		Points:        len(points),
		Source:        st.Source,
		Stale:         st.Stale,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		PricePerGram: curr.PricePerGram - prev.PricePerGram,
		Points:       curr.Points - prev.Points,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Price:           s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	render.JSON(w, r, events)
}

func (s *Service) handlePrice(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap, ok := s.snapshot, s.hasSnapshot
	s.mu.RUnlock()

	if !ok {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"error": "no price yet"})
		return
	}
	render.JSON(w, r, snap)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Price,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
