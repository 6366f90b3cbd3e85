package feed

import (
	"context"
	"log/slog"

	"github.com/theirongolddev/goldplan/internal/model"
)

// Fallback tries Primary and, on any failure, Secondary exactly once.
type Fallback struct {
	Primary   Source
	Secondary Source
	Logger    *slog.Logger
}

// Name implements Source.
func (f *Fallback) Name() string {
	return f.Primary.Name() + "|" + f.Secondary.Name()
}

// Fetch implements Source.
func (f *Fallback) Fetch(ctx context.Context) ([]model.PricePoint, error) {
	points, _, err := f.FetchNamed(ctx)
	return points, err
}

// FetchNamed fetches like Fetch and reports which source answered. The
// secondary's error is returned as is.
func (f *Fallback) FetchNamed(ctx context.Context) ([]model.PricePoint, string, error) {
	points, name, err := fetchNamed(ctx, f.Primary)
	if err == nil {
		return points, name, nil
	}

	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("primary price source failed, trying fallback",
		"primary", f.Primary.Name(), "fallback", f.Secondary.Name(), "error", err)

	return fetchNamed(ctx, f.Secondary)
}
