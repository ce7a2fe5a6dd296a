package polymarket

import (
	"context"
	"log/slog"
	"time"

	"github.com/marketlens/marketdata/internal/model"
	"github.com/marketlens/marketdata/internal/source"
)

// historyCap is a generous per-call ceiling. The CLOB endpoint does not
// paginate, so a full page in practice never fills this and the backfiller
// stops after one chunk.
const historyCap = 10000

// defaultMaxSpan bounds one prices-history call.
const defaultMaxSpan = 30 * 24 * time.Hour

// AdapterConfig holds discovery settings.
type AdapterConfig struct {
	MinVolume  float64 // Discovery volume floor (default: 1000)
	PageLimit  int     // Listing page size (default: 100)
	MaxMarkets int     // Hard cap on collected markets (default: 500)
}

// Adapter implements source.Adapter against the hybrid venue.
type Adapter struct {
	client *Client
	cfg    AdapterConfig
	logger *slog.Logger
}

var _ source.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter over an existing client.
func NewAdapter(client *Client, cfg AdapterConfig, logger *slog.Logger) *Adapter {
	if cfg.MinVolume <= 0 {
		cfg.MinVolume = 1000
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}
	if cfg.MaxMarkets <= 0 {
		cfg.MaxMarkets = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{client: client, cfg: cfg, logger: logger}
}

// Name identifies the venue.
func (a *Adapter) Name() string { return venueName }

// Probe lists a single market to verify connectivity.
func (a *Adapter) Probe(ctx context.Context) error {
	_, err := a.client.getMarkets(ctx, 1, 0)
	return err
}

// Discover walks the paged listing and keeps active, open markets that have
// CLOB token ids and clear the volume floor. Malformed records are dropped
// and counted; the walk stops on a short page or at the collection cap.
func (a *Adapter) Discover(ctx context.Context) (*source.DiscoverResult, error) {
	res := &source.DiscoverResult{}
	offset := 0

	for len(res.Markets) < a.cfg.MaxMarkets {
		page, err := a.client.getMarkets(ctx, a.cfg.PageLimit, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			m := &page[i]

			desc, ok := m.toDescriptor()
			if !ok {
				a.logger.Warn("skipping malformed market record", "id", string(m.ID))
				res.Skipped++
				continue
			}

			if !m.Active || m.Closed || len(m.TokenIDs) == 0 {
				continue
			}
			if float64(m.VolumeClob) < a.cfg.MinVolume && float64(m.Volume24hr) < a.cfg.MinVolume {
				continue
			}

			res.Markets = append(res.Markets, desc)
			if len(res.Markets) >= a.cfg.MaxMarkets {
				break
			}
		}

		if len(page) < a.cfg.PageLimit {
			break
		}
		offset += a.cfg.PageLimit
	}

	a.logger.Info("discovered markets",
		"venue", venueName,
		"count", len(res.Markets),
		"skipped", res.Skipped,
	)

	return res, nil
}

// FetchTicks queries the tick endpoint for desc's primary token within
// [from, to]. Only the first token id, conventionally the "yes" outcome,
// feeds the canonical series.
func (a *Adapter) FetchTicks(ctx context.Context, desc model.MarketDescriptor, from, to time.Time) ([]model.RawTick, error) {
	if len(desc.TokenIDs) == 0 {
		// Discovery filters these out; an empty series is the safe answer
		// if one slips through.
		return nil, nil
	}

	points, err := a.client.getPriceHistory(ctx, desc.TokenIDs[0], from.Unix(), to.Unix())
	if err != nil {
		return nil, err
	}

	return toRawTicks(points), nil
}

// MaxSpan bounds one history call.
func (a *Adapter) MaxSpan() time.Duration { return defaultMaxSpan }

// PageCap is the per-call tick ceiling.
func (a *Adapter) PageCap() int { return historyCap }
