// Package merge folds canonical descriptors and price points into the
// persistent store idempotently.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/store"
)

// Engine owns all Market writes. Construct one per store view; it is cheap
// enough to rebuild inside a transaction closure.
type Engine struct {
	st     store.Store
	logger *slog.Logger
}

// New creates an Engine over st.
func New(st store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{st: st, logger: logger}
}

// UpsertMarket creates the market on first sighting or refreshes its
// mutable fields. Returns true when the market was created.
func (e *Engine) UpsertMarket(ctx context.Context, desc model.MarketDescriptor) (bool, error) {
	m := descriptorToMarket(desc)

	created, err := e.st.UpsertMarket(ctx, &m)
	if err != nil {
		return false, fmt.Errorf("upsert market %s: %w", desc.Ticker, err)
	}

	if created {
		e.logger.Info("created market", "ticker", desc.Ticker, "title", desc.Title)
	} else {
		e.logger.Debug("updated market", "ticker", desc.Ticker)
	}

	return created, nil
}

// MergePoints inserts the points not already stored for the market, then
// refreshes the market's current price from the freshest stored point so
// the served value stays correct across partial merges within a cycle.
// Returns the number of points actually inserted.
func (e *Engine) MergePoints(ctx context.Context, ticker string, points []model.PricePoint) (int, error) {
	inserted, err := e.st.InsertPoints(ctx, ticker, points)
	if err != nil {
		return 0, fmt.Errorf("merge points %s: %w", ticker, err)
	}

	latest, err := e.st.LatestPoint(ctx, ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No stored history at all; nothing to refresh.
			return inserted, nil
		}
		return inserted, fmt.Errorf("latest point %s: %w", ticker, err)
	}

	if err := e.st.SetCurrentPrice(ctx, ticker, latest.Price); err != nil {
		return inserted, fmt.Errorf("set current price %s: %w", ticker, err)
	}

	e.logger.Debug("merged points",
		"ticker", ticker,
		"offered", len(points),
		"inserted", inserted,
		"current_price", latest.Price,
	)

	return inserted, nil
}

// descriptorToMarket maps the canonical descriptor onto the stored shape.
// The listing's price snapshot seeds CurrentPrice; the merge overwrites it
// once points exist.
func descriptorToMarket(d model.MarketDescriptor) model.Market {
	return model.Market{
		Ticker:         d.Ticker,
		Title:          d.Title,
		Subtitle:       d.Subtitle,
		Category:       d.Category,
		Status:         d.Status,
		CurrentPrice:   d.LastPrice,
		Volume24h:      d.Volume24h,
		Liquidity:      d.Liquidity,
		OpenTime:       d.OpenTime,
		CloseTime:      d.CloseTime,
		ExpirationTime: d.ExpirationTime,
		Tags:           d.Tags,
	}
}
