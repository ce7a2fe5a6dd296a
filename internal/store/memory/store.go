// Package memory provides an in-memory store.Store used by tests and
// store-free dry runs. InTx takes a deep snapshot and restores it when the
// closure fails, matching the per-market rollback semantics of the
// Postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	markets map[string]*model.Market
	points  map[string]map[int64]model.PricePoint // unix-nano keyed per ticker
	windows map[string]map[int]model.ChangeWindow
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		now:     time.Now,
		markets: make(map[string]*model.Market),
		points:  make(map[string]map[int64]model.PricePoint),
		windows: make(map[string]map[int]model.ChangeWindow),
	}
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// UpsertMarket creates or updates a market. Ticker and CreatedAt are
// immutable; everything else mutable is refreshed along with UpdatedAt.
func (s *Store) UpsertMarket(_ context.Context, m *model.Market) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	existing, ok := s.markets[m.Ticker]
	if !ok {
		stored := *m
		stored.CreatedAt = now
		stored.UpdatedAt = now
		s.markets[m.Ticker] = &stored
		return true, nil
	}

	stored := *m
	stored.CreatedAt = existing.CreatedAt
	stored.CurrentPrice = existing.CurrentPrice
	if m.CurrentPrice != 0 {
		stored.CurrentPrice = m.CurrentPrice
	}
	stored.UpdatedAt = now
	s.markets[m.Ticker] = &stored
	return false, nil
}

// GetMarket returns a copy of the stored market.
func (s *Store) GetMarket(_ context.Context, ticker string) (*model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.markets[ticker]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

// InsertPoints merges points, skipping timestamps already stored or already
// seen earlier in the batch.
func (s *Store) InsertPoints(_ context.Context, ticker string, points []model.PricePoint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.points[ticker]
	if !ok {
		series = make(map[int64]model.PricePoint)
		s.points[ticker] = series
	}

	inserted := 0
	for _, p := range points {
		key := p.Timestamp.UTC().UnixNano()
		if _, exists := series[key]; exists {
			continue
		}
		p.Timestamp = p.Timestamp.UTC()
		series[key] = p
		inserted++
	}

	return inserted, nil
}

// LatestPoint returns the max-timestamp point for the market.
func (s *Store) LatestPoint(_ context.Context, ticker string) (*model.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.points[ticker]
	if len(series) == 0 {
		return nil, store.ErrNotFound
	}

	var latest model.PricePoint
	var latestKey int64 = -1
	for key, p := range series {
		if key > latestKey {
			latestKey = key
			latest = p
		}
	}
	return &latest, nil
}

// ReadPointsSince returns points with timestamp >= since, ascending.
func (s *Store) ReadPointsSince(_ context.Context, ticker string, since time.Time) ([]model.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.PricePoint
	for _, p := range s.points[ticker] {
		if !p.Timestamp.Before(since) {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// SetCurrentPrice updates the market's current price.
func (s *Store) SetCurrentPrice(_ context.Context, ticker string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.markets[ticker]
	if !ok {
		return store.ErrNotFound
	}
	m.CurrentPrice = price
	m.UpdatedAt = s.now().UTC()
	return nil
}

// UpsertChangeWindow inserts or replaces the (ticker, windowDays) row.
func (s *Store) UpsertChangeWindow(_ context.Context, cw *model.ChangeWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byWindow, ok := s.windows[cw.Ticker]
	if !ok {
		byWindow = make(map[int]model.ChangeWindow)
		s.windows[cw.Ticker] = byWindow
	}
	byWindow[cw.WindowDays] = *cw
	return nil
}

// GetChangeWindow returns a copy of the stored row.
func (s *Store) GetChangeWindow(_ context.Context, ticker string, windowDays int) (*model.ChangeWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cw, ok := s.windows[ticker][windowDays]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &cw, nil
}

// InTx snapshots the store, runs fn against it, and restores the snapshot
// when fn fails.
func (s *Store) InTx(_ context.Context, fn func(store.Store) error) error {
	snapshot := s.snapshot()

	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type state struct {
	markets map[string]*model.Market
	points  map[string]map[int64]model.PricePoint
	windows map[string]map[int]model.ChangeWindow
}

func (s *Store) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := state{
		markets: make(map[string]*model.Market, len(s.markets)),
		points:  make(map[string]map[int64]model.PricePoint, len(s.points)),
		windows: make(map[string]map[int]model.ChangeWindow, len(s.windows)),
	}
	for k, v := range s.markets {
		copied := *v
		snap.markets[k] = &copied
	}
	for k, series := range s.points {
		copiedSeries := make(map[int64]model.PricePoint, len(series))
		for ts, p := range series {
			copiedSeries[ts] = p
		}
		snap.points[k] = copiedSeries
	}
	for k, byWindow := range s.windows {
		copiedWindows := make(map[int]model.ChangeWindow, len(byWindow))
		for w, cw := range byWindow {
			copiedWindows[w] = cw
		}
		snap.windows[k] = copiedWindows
	}
	return snap
}

func (s *Store) restore(snap state) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markets = snap.markets
	s.points = snap.points
	s.windows = snap.windows
}
