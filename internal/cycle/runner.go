// Package cycle orchestrates one ingestion pass: discover markets on every
// venue, backfill and normalize each market's history, merge it, and
// recompute change windows, aggregating the outcome into a summary.
//
// Markets are processed sequentially to respect venue rate limits. Failures
// are per-market: a market that fails after discovery loses only its own
// remaining stages. Auth failures and an unreachable store abort the whole
// cycle.
package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marketlens/marketdata/internal/backfill"
	"github.com/marketlens/marketdata/internal/change"
	"github.com/marketlens/marketdata/internal/merge"
	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/normalize"
	"github.com/marketlens/marketdata/internal/source"
	"github.com/marketlens/marketdata/internal/store"
)

// Runner executes ingestion cycles over a fixed adapter set.
type Runner struct {
	st       store.Store
	adapters []source.Adapter
	bfCfg    backfill.Config
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithBackfillConfig overrides the backfill guards.
func WithBackfillConfig(cfg backfill.Config) Option {
	return func(r *Runner) { r.bfCfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner.
func New(st store.Store, adapters []source.Adapter, opts ...Option) *Runner {
	r := &Runner{
		st:       st,
		adapters: adapters,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one cycle. The returned summary is valid even when err is
// non-nil; err means the cycle itself aborted (auth failure, unreachable
// store, or cancellation), not that individual markets failed.
func (r *Runner) Run(ctx context.Context) (*model.CycleSummary, error) {
	summary := &model.CycleSummary{
		RunID:     uuid.NewString(),
		StartedAt: r.now().UTC(),
	}
	logger := r.logger.With("run_id", summary.RunID)

	logger.Info("cycle started", "venues", len(r.adapters))

	var abortErr error

	for _, adapter := range r.adapters {
		if err := r.runVenue(ctx, logger, adapter, summary); err != nil {
			abortErr = err
			break
		}
	}

	summary.Duration = r.now().UTC().Sub(summary.StartedAt)

	logger.Info("cycle complete",
		"discovered", summary.Discovered,
		"created", summary.Created,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"points_merged", summary.PointsMerged,
		"ticks_dropped", summary.TicksDropped,
		"records_skipped", summary.RecordsSkipped,
		"duration", summary.Duration,
		"aborted", abortErr != nil,
	)

	return summary, abortErr
}

// runVenue processes one adapter's markets. A returned error aborts the
// whole cycle; venue-local failures are logged and counted instead.
func (r *Runner) runVenue(ctx context.Context, logger *slog.Logger, adapter source.Adapter, summary *model.CycleSummary) error {
	venue := adapter.Name()
	logger = logger.With("venue", venue)

	if err := adapter.Probe(ctx); err != nil {
		if source.IsAuth(err) {
			return fmt.Errorf("venue %s preflight: %w", venue, err)
		}
		logger.Error("venue unreachable, skipping venue", "error", err)
		return nil
	}

	result, err := adapter.Discover(ctx)
	if err != nil {
		if source.IsAuth(err) {
			return fmt.Errorf("venue %s discovery: %w", venue, err)
		}
		logger.Error("discovery failed, skipping venue", "error", err)
		return nil
	}

	summary.Discovered += len(result.Markets)
	summary.RecordsSkipped += result.Skipped

	bf := backfill.New(adapter, r.bfCfg, backfill.WithLogger(logger), backfill.WithClock(r.now))
	norm := normalize.New(logger)

	for _, desc := range result.Markets {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := r.processMarket(ctx, logger, bf, norm, desc, summary); err != nil {
			switch {
			case source.IsAuth(err):
				return fmt.Errorf("market %s: %w", desc.Ticker, err)
			case source.IsNetwork(err):
				logger.Warn("market skipped after retries", "ticker", desc.Ticker, "error", err)
				summary.Skipped++
			default:
				// A dead store means every remaining market would fail
				// the same way; bail out of the cycle.
				if pingErr := r.st.Ping(ctx); pingErr != nil {
					return fmt.Errorf("store unreachable after %s: %w", desc.Ticker, pingErr)
				}
				logger.Error("market pipeline failed", "ticker", desc.Ticker, "error", err)
				summary.Failed++
			}
		}
	}

	return nil
}

// processMarket runs one market through its stages: history fetch,
// normalization, then a single transaction covering the market upsert, the
// point merge, and the window recompute.
func (r *Runner) processMarket(
	ctx context.Context,
	logger *slog.Logger,
	bf *backfill.Backfiller,
	norm *normalize.Normalizer,
	desc model.MarketDescriptor,
	summary *model.CycleSummary,
) error {
	ticks, exit, err := bf.Fetch(ctx, desc)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	res := norm.Normalize(ticks)
	summary.TicksDropped += res.Dropped

	var created bool
	var inserted, windows int

	err = r.st.InTx(ctx, func(tx store.Store) error {
		eng := merge.New(tx, logger)
		calc := change.New(tx, logger, change.WithClock(r.now))

		var err error
		created, err = eng.UpsertMarket(ctx, desc)
		if err != nil {
			return err
		}

		inserted, err = eng.MergePoints(ctx, desc.Ticker, res.Points)
		if err != nil {
			return err
		}

		windows, err = calc.Compute(ctx, desc.Ticker)
		return err
	})
	if err != nil {
		return err
	}

	if created {
		summary.Created++
	} else {
		summary.Updated++
	}
	summary.PointsMerged += inserted

	logger.Debug("market processed",
		"ticker", desc.Ticker,
		"created", created,
		"ticks", len(ticks),
		"points_inserted", inserted,
		"windows", windows,
		"backfill_exit", exit.String(),
	)

	return nil
}
