// Package backfill walks a market's history backward from now toward its
// open time in fixed-size windows, overcoming the venue's per-call span and
// count ceilings.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marketlens/marketdata/internal/model"
)

// Fetcher is the slice of the adapter contract the backfiller drives.
type Fetcher interface {
	FetchTicks(ctx context.Context, desc model.MarketDescriptor, from, to time.Time) ([]model.RawTick, error)
	MaxSpan() time.Duration
	PageCap() int
}

// ExitReason enumerates why a backfill loop stopped.
type ExitReason int

const (
	// ExitRangeExhausted: the walk reached the market's open time.
	ExitRangeExhausted ExitReason = iota + 1

	// ExitShortPage: a chunk returned fewer ticks than the page cap,
	// signalling the venue has no earlier history.
	ExitShortPage

	// ExitMaxChunks: the chunk budget ran out before the range did.
	// Pathological inputs (e.g., a far-future anchor) land here.
	ExitMaxChunks
)

func (r ExitReason) String() string {
	switch r {
	case ExitRangeExhausted:
		return "range_exhausted"
	case ExitShortPage:
		return "short_page"
	case ExitMaxChunks:
		return "max_chunks"
	default:
		return "unknown"
	}
}

// Config holds backfill guards.
type Config struct {
	DefaultLookback time.Duration // Used when a market's open time is unknown (default: 30 days)
	MaxChunks       int           // Hard cap on fetches per market (default: 48)
}

// Backfiller drives one adapter through repeated bounded fetches.
type Backfiller struct {
	src    Fetcher
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Backfiller.
type Option func(*Backfiller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Backfiller) { b.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backfiller) { b.logger = logger }
}

// New creates a Backfiller over src.
func New(src Fetcher, cfg Config, opts ...Option) *Backfiller {
	if cfg.DefaultLookback <= 0 {
		cfg.DefaultLookback = 30 * 24 * time.Hour
	}
	if cfg.MaxChunks <= 0 {
		cfg.MaxChunks = 48
	}

	b := &Backfiller{
		src:    src,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fetch collects desc's full available history. It walks backward from now
// in MaxSpan windows, appending each chunk, until one of the enumerated
// exit conditions fires.
func (b *Backfiller) Fetch(ctx context.Context, desc model.MarketDescriptor) ([]model.RawTick, ExitReason, error) {
	now := b.now().UTC()

	openTime := now.Add(-b.cfg.DefaultLookback)
	if desc.OpenTime != nil {
		openTime = desc.OpenTime.UTC()
	}
	if !openTime.Before(now) {
		// Nothing to walk; also neutralizes far-future anchors.
		return nil, ExitRangeExhausted, nil
	}

	maxSpan := b.src.MaxSpan()
	pageCap := b.src.PageCap()

	var (
		all       []model.RawTick
		windowEnd = now
		chunks    int
		reason    ExitReason
	)

	for windowEnd.After(openTime) {
		if chunks >= b.cfg.MaxChunks {
			reason = ExitMaxChunks
			break
		}

		windowStart := windowEnd.Add(-maxSpan)
		if windowStart.Before(openTime) {
			windowStart = openTime
		}

		ticks, err := b.src.FetchTicks(ctx, desc, windowStart, windowEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("fetch chunk [%s, %s]: %w",
				windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339), err)
		}
		chunks++
		all = append(all, ticks...)

		if len(ticks) < pageCap {
			reason = ExitShortPage
			break
		}

		windowEnd = windowStart
	}

	if reason == 0 {
		reason = ExitRangeExhausted
	}

	b.logger.Debug("backfill complete",
		"ticker", desc.Ticker,
		"chunks", chunks,
		"ticks", len(all),
		"exit", reason.String(),
	)

	return all, reason, nil
}
