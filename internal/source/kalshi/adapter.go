package kalshi

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/source"
)

// candleCap is the venue's maximum candle count per candlesticks call.
const candleCap = 5000

// AdapterConfig holds discovery and history settings.
type AdapterConfig struct {
	Status        string // Listing status filter (default: open)
	PageLimit     int    // Markets per listing page (default: venue max)
	PeriodMinutes int    // Candle width (default: 60)
}

// Adapter implements source.Adapter against the signed venue.
type Adapter struct {
	client *Client
	cfg    AdapterConfig
	logger *slog.Logger

	// Series tickers resolved via market detail, cached per ticker.
	seriesMu sync.Mutex
	series   map[string]string
}

var _ source.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter over an existing client.
func NewAdapter(client *Client, cfg AdapterConfig, logger *slog.Logger) *Adapter {
	if cfg.Status == "" {
		cfg.Status = "open"
	}
	if cfg.PeriodMinutes <= 0 {
		cfg.PeriodMinutes = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client: client,
		cfg:    cfg,
		logger: logger,
		series: make(map[string]string),
	}
}

// Name identifies the venue.
func (a *Adapter) Name() string { return venueName }

// Probe lists a single market to verify connectivity and credentials.
func (a *Adapter) Probe(ctx context.Context) error {
	_, err := a.client.getMarkets(ctx, marketsOptions{Limit: 1, Status: a.cfg.Status})
	return err
}

// Discover pages through the status-filtered listing and converts each
// record, dropping and counting the malformed ones.
func (a *Adapter) Discover(ctx context.Context) (*source.DiscoverResult, error) {
	markets, err := a.client.getAllMarkets(ctx, a.cfg.Status, a.cfg.PageLimit)
	if err != nil {
		return nil, err
	}

	res := &source.DiscoverResult{
		Markets: make([]model.MarketDescriptor, 0, len(markets)),
	}
	for i := range markets {
		desc, ok := markets[i].toDescriptor()
		if !ok {
			a.logger.Warn("skipping malformed market record", "ticker", markets[i].Ticker)
			res.Skipped++
			continue
		}
		res.Markets = append(res.Markets, desc)
	}

	a.logger.Info("discovered markets",
		"venue", venueName,
		"count", len(res.Markets),
		"skipped", res.Skipped,
	)

	return res, nil
}

// FetchTicks fetches candles for desc within [from, to]. An empty candle
// list means the market has no tradable history in the range.
func (a *Adapter) FetchTicks(ctx context.Context, desc model.MarketDescriptor, from, to time.Time) ([]model.RawTick, error) {
	series, err := a.resolveSeries(ctx, desc)
	if err != nil {
		return nil, err
	}

	candles, err := a.client.getCandlesticks(ctx, series, desc.Ticker, a.cfg.PeriodMinutes, from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}

	return toRawTicks(candles), nil
}

// MaxSpan is the widest range one candlesticks call can cover.
func (a *Adapter) MaxSpan() time.Duration {
	return time.Duration(a.cfg.PeriodMinutes) * time.Minute * candleCap
}

// PageCap is the venue's per-call candle ceiling.
func (a *Adapter) PageCap() int { return candleCap }

// resolveSeries finds the series ticker addressing desc's candlestick
// endpoint. Listings usually carry it; otherwise the market detail is
// fetched once and cached.
func (a *Adapter) resolveSeries(ctx context.Context, desc model.MarketDescriptor) (string, error) {
	if desc.SeriesTicker != "" {
		return desc.SeriesTicker, nil
	}

	a.seriesMu.Lock()
	cached, ok := a.series[desc.Ticker]
	a.seriesMu.Unlock()
	if ok {
		return cached, nil
	}

	detail, err := a.client.getMarket(ctx, desc.Ticker)
	if err != nil {
		return "", err
	}

	series := detail.SeriesTicker
	if series == "" {
		series = detail.EventTicker
	}
	if series == "" {
		series = desc.Ticker
	}

	a.seriesMu.Lock()
	a.series[desc.Ticker] = series
	a.seriesMu.Unlock()

	return series, nil
}
