// Package store defines the persistent-store boundary the pipeline writes
// through. Implementations live in the postgres and memory subpackages.
package store

import (
	"context"
	"time"

	"github.com/marketlens/marketdata/internal/model"
)

// Store is the operation set the pipeline needs. Markets are upserted,
// points merged idempotently by timestamp, and change windows overwritten
// per (market, window). InTx groups one market's writes into a unit.
type Store interface {
	// UpsertMarket creates m on first sight or updates its mutable fields,
	// refreshing UpdatedAt. Ticker and CreatedAt never change. Returns true
	// when the market was created.
	UpsertMarket(ctx context.Context, m *model.Market) (created bool, err error)

	// GetMarket returns the stored market, or ErrNotFound.
	GetMarket(ctx context.Context, ticker string) (*model.Market, error)

	// InsertPoints inserts points whose timestamp is not already present
	// for the market, in-batch duplicates included. Stored points are
	// immutable. Returns the number actually inserted.
	InsertPoints(ctx context.Context, ticker string, points []model.PricePoint) (inserted int, err error)

	// LatestPoint returns the stored point with the maximum timestamp, or
	// ErrNotFound when the market has no points.
	LatestPoint(ctx context.Context, ticker string) (*model.PricePoint, error)

	// ReadPointsSince returns stored points with timestamp >= since,
	// ordered ascending.
	ReadPointsSince(ctx context.Context, ticker string, since time.Time) ([]model.PricePoint, error)

	// SetCurrentPrice updates the market's served current price.
	SetCurrentPrice(ctx context.Context, ticker string, price float64) error

	// UpsertChangeWindow inserts or replaces the row for
	// (cw.Ticker, cw.WindowDays).
	UpsertChangeWindow(ctx context.Context, cw *model.ChangeWindow) error

	// GetChangeWindow returns the stored row, or ErrNotFound.
	GetChangeWindow(ctx context.Context, ticker string, windowDays int) (*model.ChangeWindow, error)

	// InTx runs fn against a transactional view of the store. If fn
	// returns an error every write made through that view is rolled back.
	InTx(ctx context.Context, fn func(Store) error) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
