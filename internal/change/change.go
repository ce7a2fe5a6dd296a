// Package change computes fixed-window price-change statistics from the
// merged store.
//
// The temporal anchor for every window is the timestamp of the market's
// most recent stored point, not wall-clock time, so change figures stay
// meaningful when upstream data lags. The reported change is the signed
// max-magnitude excursion: whichever of (current - min) and (current - max)
// has the larger absolute value, sign preserved.
package change

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/store"
)

// Calculator recomputes change windows for one market at a time.
type Calculator struct {
	st     store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the time source stamped on CalculatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

// New creates a Calculator over st.
func New(st store.Store, logger *slog.Logger, opts ...Option) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Calculator{st: st, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute recomputes and upserts every window in model.ChangeWindowDays for
// the market. Windows with fewer than two points are left absent rather
// than written. Returns the number of windows written.
func (c *Calculator) Compute(ctx context.Context, ticker string) (int, error) {
	market, err := c.st.GetMarket(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("get market %s: %w", ticker, err)
	}

	latest, err := c.st.LatestPoint(ctx, ticker)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No points, no windows.
			return 0, nil
		}
		return 0, fmt.Errorf("latest point %s: %w", ticker, err)
	}
	anchor := latest.Timestamp

	computed := 0
	for _, windowDays := range model.ChangeWindowDays {
		since := anchor.Add(-time.Duration(windowDays) * 24 * time.Hour)

		points, err := c.st.ReadPointsSince(ctx, ticker, since)
		if err != nil {
			return computed, fmt.Errorf("read points %s: %w", ticker, err)
		}
		if len(points) < 2 {
			continue
		}

		cw := compute(ticker, windowDays, market.CurrentPrice, points)
		cw.CalculatedAt = c.now().UTC()

		if err := c.st.UpsertChangeWindow(ctx, &cw); err != nil {
			return computed, fmt.Errorf("upsert change window %s/%d: %w", ticker, windowDays, err)
		}
		computed++
	}

	c.logger.Debug("computed change windows", "ticker", ticker, "windows", computed)

	return computed, nil
}

// compute derives one window's statistics from its selected points.
func compute(ticker string, windowDays int, currentPrice float64, points []model.PricePoint) model.ChangeWindow {
	minPrice := points[0].Price
	maxPrice := points[0].Price
	for _, p := range points[1:] {
		if p.Price < minPrice {
			minPrice = p.Price
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
	}

	changeFromMin := currentPrice - minPrice
	changeFromMax := currentPrice - maxPrice

	// The most dramatic excursion, directionally.
	priceChange := changeFromMin
	if math.Abs(changeFromMax) > math.Abs(changeFromMin) {
		priceChange = changeFromMax
	}

	changePercentage := 0.0
	if currentPrice > 0 {
		changePercentage = priceChange / currentPrice * 100
	}

	return model.ChangeWindow{
		Ticker:           ticker,
		WindowDays:       windowDays,
		PriceChange:      priceChange,
		MinPrice:         minPrice,
		MaxPrice:         maxPrice,
		ChangePercentage: changePercentage,
	}
}
