// Package store persists savings plans as per-user JSON documents and caches
// the price history in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/goldplan/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// PriceCache provides SQLite-backed price history caching.
type PriceCache struct {
	db *sql.DB
}

// OpenPriceCache opens or creates the cache database at the given path.
func OpenPriceCache(dbPath string) (*PriceCache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &PriceCache{db: db}, nil
}

// Close closes the cache database.
func (c *PriceCache) Close() error {
	return c.db.Close()
}

// FetchInfo describes the most recent successful fetch.
type FetchInfo struct {
	Source    string
	FetchedAt time.Time
	Points    int
}

// SavePrices stores a fetched series and records the fetch.
func (c *PriceCache) SavePrices(source string, points []model.PricePoint) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO prices (date, price, source) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		if _, err := stmt.Exec(model.FormatDate(p.Date), p.Price, source); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO fetch_log (source, fetched_at, points) VALUES (?, ?, ?)`,
		source, now, len(points))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadPrices reads the cached series in ascending date order.
func (c *PriceCache) LoadPrices() ([]model.PricePoint, error) {
	rows, err := c.db.Query("SELECT date, price FROM prices ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var points []model.PricePoint
	for rows.Next() {
		var dateStr string
		var p model.PricePoint
		if err := rows.Scan(&dateStr, &p.Price); err != nil {
			return nil, err
		}
		d, err := model.ParseDate(dateStr)
		if err != nil {
			continue
		}
		p.Date = d
		points = append(points, p)
	}
	return points, rows.Err()
}

// LastFetch returns the most recent fetch. ok is false if nothing was ever fetched.
func (c *PriceCache) LastFetch() (info FetchInfo, ok bool, err error) {
	var fetched string
	err = c.db.QueryRow(`SELECT source, fetched_at, points FROM fetch_log
		ORDER BY id DESC LIMIT 1`).Scan(&info.Source, &fetched, &info.Points)
	if errors.Is(err, sql.ErrNoRows) {
		return FetchInfo{}, false, nil
	}
	if err != nil {
		return FetchInfo{}, false, err
	}
	info.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
	return info, true, nil
}

// PriceCount returns the number of cached price points.
func (c *PriceCache) PriceCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM prices").Scan(&count)
	return count, err
}

// Clear drops all cached prices and the fetch log.
func (c *PriceCache) Clear() error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM prices"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM fetch_log"); err != nil {
		return err
	}
	return tx.Commit()
}
