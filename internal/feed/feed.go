// Package feed fetches the daily XAU/EUR price history from public sources.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/goldplan/internal/model"
)

var (
	// ErrFeed matches every error produced by a price source.
	ErrFeed = errors.New("feed: price source failed")
	// ErrEmpty indicates a source answered but yielded no usable prices.
	ErrEmpty = errors.New("feed: empty dataset")
)

// Error is a failure of a named price source.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("feed: %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports true for ErrFeed so callers can match any source failure.
func (e *Error) Is(target error) bool { return target == ErrFeed }

// Source supplies a price history. Implementations return points in
// ascending date order with positive prices.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.PricePoint, error)
}

// namedSource is implemented by sources that delegate to others and can
// report which one answered.
type namedSource interface {
	FetchNamed(ctx context.Context) ([]model.PricePoint, string, error)
}

func fetchNamed(ctx context.Context, src Source) ([]model.PricePoint, string, error) {
	if ns, ok := src.(namedSource); ok {
		return ns.FetchNamed(ctx)
	}
	points, err := src.Fetch(ctx)
	return points, src.Name(), err
}
