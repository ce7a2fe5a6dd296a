package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketlens/marketdata/internal/backfill"
	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/source"
	"github.com/marketlens/marketdata/internal/store/memory"
)

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

// stubAdapter serves canned discovery and tick responses.
type stubAdapter struct {
	name     string
	probeErr error

	markets     []model.MarketDescriptor
	skipped     int
	discoverErr error

	ticks map[string][]model.RawTick // keyed by ticker
	// fetchErr fails FetchTicks for the named tickers.
	fetchErr map[string]error
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Probe(context.Context) error { return a.probeErr }

func (a *stubAdapter) Discover(context.Context) (*source.DiscoverResult, error) {
	if a.discoverErr != nil {
		return nil, a.discoverErr
	}
	return &source.DiscoverResult{Markets: a.markets, Skipped: a.skipped}, nil
}

func (a *stubAdapter) FetchTicks(_ context.Context, desc model.MarketDescriptor, _, _ time.Time) ([]model.RawTick, error) {
	if err := a.fetchErr[desc.Ticker]; err != nil {
		return nil, err
	}
	return a.ticks[desc.Ticker], nil
}

func (a *stubAdapter) MaxSpan() time.Duration { return 30 * 24 * time.Hour }
func (a *stubAdapter) PageCap() int           { return 10000 }

func desc(ticker string) model.MarketDescriptor {
	open := fixedNow().Add(-48 * time.Hour)
	return model.MarketDescriptor{Ticker: ticker, Title: "Market " + ticker, OpenTime: &open}
}

func trade(hoursAgo int, price float64) model.RawTick {
	return model.TradeTick{
		Timestamp: fixedNow().Add(-time.Duration(hoursAgo) * time.Hour).Unix(),
		Price:     price,
	}
}

func newTestRunner(st *memory.Store, adapters ...source.Adapter) *Runner {
	return New(st, adapters,
		WithBackfillConfig(backfill.Config{MaxChunks: 4}),
		WithClock(fixedNow),
	)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("full pass", func(t *testing.T) {
		st := memory.New().WithClock(fixedNow)
		adapter := &stubAdapter{
			name:    "stub",
			markets: []model.MarketDescriptor{desc("A"), desc("B")},
			skipped: 1,
			ticks: map[string][]model.RawTick{
				"A": {trade(4, 0.20), trade(2, 0.50), trade(0, 0.30)},
				"B": {trade(1, 0.70), model.TradeTick{Timestamp: -1, Price: 0.5}},
			},
		}

		summary, err := newTestRunner(st, adapter).Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if summary.RunID == "" {
			t.Error("RunID is empty")
		}
		if summary.Discovered != 2 {
			t.Errorf("Discovered = %d, want 2", summary.Discovered)
		}
		if summary.Created != 2 {
			t.Errorf("Created = %d, want 2", summary.Created)
		}
		if summary.Updated != 0 {
			t.Errorf("Updated = %d, want 0", summary.Updated)
		}
		if summary.PointsMerged != 4 {
			t.Errorf("PointsMerged = %d, want 4", summary.PointsMerged)
		}
		if summary.TicksDropped != 1 {
			t.Errorf("TicksDropped = %d, want 1", summary.TicksDropped)
		}
		if summary.RecordsSkipped != 1 {
			t.Errorf("RecordsSkipped = %d, want 1", summary.RecordsSkipped)
		}

		m, err := st.GetMarket(ctx, "A")
		if err != nil {
			t.Fatalf("GetMarket() error = %v", err)
		}
		if m.CurrentPrice != 0.30 {
			t.Errorf("CurrentPrice = %v, want 0.30", m.CurrentPrice)
		}

		cw, err := st.GetChangeWindow(ctx, "A", 1)
		if err != nil {
			t.Fatalf("GetChangeWindow() error = %v", err)
		}
		if cw.PriceChange > -0.19 || cw.PriceChange < -0.21 {
			t.Errorf("PriceChange = %v, want about -0.20", cw.PriceChange)
		}
	})

	t.Run("candle pipeline end to end", func(t *testing.T) {
		st := memory.New().WithClock(fixedNow)
		candle := func(hoursAgo int, bid, ask float64) model.RawTick {
			return model.Candle{
				EndPeriodTS: fixedNow().Add(-time.Duration(hoursAgo) * time.Hour).Unix(),
				YesBidClose: bid,
				YesAskClose: ask,
			}
		}
		adapter := &stubAdapter{
			name:    "stub",
			markets: []model.MarketDescriptor{desc("C")},
			ticks: map[string][]model.RawTick{
				"C": {candle(4, 40, 42), candle(2, 50, 52), candle(0, 60, 62)},
			},
		}

		summary, err := newTestRunner(st, adapter).Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.PointsMerged != 3 {
			t.Errorf("PointsMerged = %d, want 3", summary.PointsMerged)
		}

		m, err := st.GetMarket(ctx, "C")
		if err != nil {
			t.Fatalf("GetMarket() error = %v", err)
		}
		if m.CurrentPrice != 0.61 {
			t.Errorf("CurrentPrice = %v, want 0.61", m.CurrentPrice)
		}

		cw, err := st.GetChangeWindow(ctx, "C", 1)
		if err != nil {
			t.Fatalf("GetChangeWindow() error = %v", err)
		}
		if cw.MinPrice != 0.41 || cw.MaxPrice != 0.61 {
			t.Errorf("min/max = %v/%v, want 0.41/0.61", cw.MinPrice, cw.MaxPrice)
		}
		// Rise from the min dominates: +0.20 against a flat top.
		if cw.PriceChange < 0.19 || cw.PriceChange > 0.21 {
			t.Errorf("PriceChange = %v, want about +0.20", cw.PriceChange)
		}
		if cw.ChangePercentage < 32.7 || cw.ChangePercentage > 32.9 {
			t.Errorf("ChangePercentage = %v, want about 32.79", cw.ChangePercentage)
		}
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		st := memory.New().WithClock(fixedNow)
		adapter := &stubAdapter{
			name:    "stub",
			markets: []model.MarketDescriptor{desc("A")},
			ticks:   map[string][]model.RawTick{"A": {trade(2, 0.50), trade(0, 0.30)}},
		}
		runner := newTestRunner(st, adapter)

		if _, err := runner.Run(ctx); err != nil {
			t.Fatalf("first Run() error = %v", err)
		}
		summary, err := runner.Run(ctx)
		if err != nil {
			t.Fatalf("second Run() error = %v", err)
		}

		if summary.Created != 0 {
			t.Errorf("Created = %d, want 0 on re-run", summary.Created)
		}
		if summary.Updated != 1 {
			t.Errorf("Updated = %d, want 1 on re-run", summary.Updated)
		}
		if summary.PointsMerged != 0 {
			t.Errorf("PointsMerged = %d, want 0 on re-run", summary.PointsMerged)
		}
	})

	t.Run("auth failure on probe aborts cycle", func(t *testing.T) {
		st := memory.New()
		bad := &stubAdapter{name: "bad", probeErr: source.AuthError("bad", errors.New("rejected"))}
		good := &stubAdapter{name: "good", markets: []model.MarketDescriptor{desc("A")}}

		_, err := newTestRunner(st, bad, good).Run(ctx)
		if err == nil {
			t.Fatal("expected abort error")
		}
		// The later venue must not have run.
		if _, err := st.GetMarket(ctx, "A"); err == nil {
			t.Error("market A was processed after abort")
		}
	})

	t.Run("unreachable venue is skipped not fatal", func(t *testing.T) {
		st := memory.New().WithClock(fixedNow)
		down := &stubAdapter{name: "down", probeErr: source.NetworkError("down", errors.New("timeout"))}
		up := &stubAdapter{
			name:    "up",
			markets: []model.MarketDescriptor{desc("A")},
			ticks:   map[string][]model.RawTick{"A": {trade(0, 0.5)}},
		}

		summary, err := newTestRunner(st, down, up).Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Discovered != 1 {
			t.Errorf("Discovered = %d, want 1 from the healthy venue", summary.Discovered)
		}
	})

	t.Run("network failure skips the market", func(t *testing.T) {
		st := memory.New().WithClock(fixedNow)
		adapter := &stubAdapter{
			name:     "stub",
			markets:  []model.MarketDescriptor{desc("A"), desc("B")},
			ticks:    map[string][]model.RawTick{"B": {trade(0, 0.5)}},
			fetchErr: map[string]error{"A": source.NetworkError("stub", errors.New("timeout"))},
		}

		summary, err := newTestRunner(st, adapter).Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", summary.Skipped)
		}
		if summary.Created != 1 {
			t.Errorf("Created = %d, want 1 (B still processed)", summary.Created)
		}
		if _, err := st.GetMarket(ctx, "A"); err == nil {
			t.Error("skipped market A was written")
		}
	})

	t.Run("auth failure mid-venue aborts cycle", func(t *testing.T) {
		st := memory.New().WithClock(fixedNow)
		adapter := &stubAdapter{
			name:     "stub",
			markets:  []model.MarketDescriptor{desc("A"), desc("B")},
			ticks:    map[string][]model.RawTick{"B": {trade(0, 0.5)}},
			fetchErr: map[string]error{"A": source.AuthError("stub", errors.New("expired"))},
		}

		_, err := newTestRunner(st, adapter).Run(ctx)
		if err == nil {
			t.Fatal("expected abort error")
		}
	})

	t.Run("cancellation stops the cycle", func(t *testing.T) {
		st := memory.New()
		adapter := &stubAdapter{name: "stub", markets: []model.MarketDescriptor{desc("A")}}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newTestRunner(st, adapter).Run(cancelled)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
