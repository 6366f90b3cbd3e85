package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/theirongolddev/goldplan/internal/model"
	"github.com/theirongolddev/goldplan/internal/store"
)

// Cache persists fetched histories between runs.
type Cache interface {
	SavePrices(source string, points []model.PricePoint) error
	LoadPrices() ([]model.PricePoint, error)
	LastFetch() (store.FetchInfo, bool, error)
}

// Status describes the history currently held by a Service.
type Status struct {
	Source    string
	FetchedAt time.Time
	Points    int
	Stale     bool // the last refresh failed and cached data was served
}

// Service owns the price history for one run. It fetches at most once unless
// Refresh is called, and keeps a persistent copy in Cache when one is set.
type Service struct {
	Source Source
	Cache  Cache         // optional
	MaxAge time.Duration // cached copies older than this are refetched
	Logger *slog.Logger
	Now    func() time.Time

	mu     sync.Mutex
	points []model.PricePoint
	status Status
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// History returns the price history, loading it on first use from a fresh
// cache copy or from the source.
func (s *Service) History(ctx context.Context) ([]model.PricePoint, error) {
	s.mu.Lock()
	if s.points != nil {
		points := s.points
		s.mu.Unlock()
		return points, nil
	}
	s.mu.Unlock()

	if points, info, ok := s.fromCache(true); ok {
		s.set(points, Status{Source: info.Source, FetchedAt: info.FetchedAt, Points: len(points)})
		s.logger().Debug("price history from cache", "source", info.Source, "points", len(points),
			"fetched_at", info.FetchedAt)
		return points, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the history from the source, replacing what the service
// holds. When the fetch fails and a cached copy of any age exists, the cached
// copy is served and the failure is logged.
func (s *Service) Refresh(ctx context.Context) ([]model.PricePoint, error) {
	points, name, err := fetchNamed(ctx, s.Source)
	if err != nil {
		if cached, info, ok := s.fromCache(false); ok {
			s.logger().Warn("price fetch failed, using stale cache",
				"error", err, "source", info.Source, "fetched_at", info.FetchedAt)
			s.set(cached, Status{Source: info.Source, FetchedAt: info.FetchedAt, Points: len(cached), Stale: true})
			return cached, nil
		}
		return nil, err
	}

	points = Normalize(points)
	if s.Cache != nil {
		if err := s.Cache.SavePrices(name, points); err != nil {
			s.logger().Warn("saving price cache", "error", err)
		}
	}
	s.set(points, Status{Source: name, FetchedAt: s.now(), Points: len(points)})
	s.logger().Info("price history fetched", "source", name, "points", len(points))
	return points, nil
}

// Status reports what the service currently holds.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) set(points []model.PricePoint, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = points
	s.status = st
}

// fromCache loads the cached history. With fresh set, copies older than
// MaxAge are ignored.
func (s *Service) fromCache(fresh bool) ([]model.PricePoint, store.FetchInfo, bool) {
	if s.Cache == nil {
		return nil, store.FetchInfo{}, false
	}
	info, ok, err := s.Cache.LastFetch()
	if err != nil {
		s.logger().Warn("reading price cache", "error", err)
		return nil, store.FetchInfo{}, false
	}
	if !ok {
		return nil, store.FetchInfo{}, false
	}
	if fresh && s.MaxAge > 0 && s.now().Sub(info.FetchedAt) > s.MaxAge {
		return nil, store.FetchInfo{}, false
	}

	points, err := s.Cache.LoadPrices()
	if err != nil {
		s.logger().Warn("reading price cache", "error", err)
		return nil, store.FetchInfo{}, false
	}
	if len(points) == 0 {
		return nil, store.FetchInfo{}, false
	}
	return points, info, true
}
