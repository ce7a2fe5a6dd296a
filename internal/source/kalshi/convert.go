package kalshi

import (
	"time"

	"github.com/marketlens/marketdata/internal/model"
)

// parseTimestamp parses an ISO 8601 timestamp. Returns nil for empty or
// unparsable input so callers can store "unknown" rather than a zero time.
func parseTimestamp(iso string) *time.Time {
	if iso == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return nil
		}
	}

	utc := t.UTC()
	return &utc
}

// toDescriptor converts a venue market to the canonical descriptor. Returns
// false when the record is too malformed to use.
func (m *apiMarket) toDescriptor() (model.MarketDescriptor, bool) {
	if m.Ticker == "" || m.Title == "" {
		return model.MarketDescriptor{}, false
	}

	category := m.Category
	if category == "" {
		category = "Other"
	}

	status := m.Status
	if status == "" {
		status = "open"
	}

	series := m.SeriesTicker
	if series == "" {
		series = m.EventTicker
	}

	return model.MarketDescriptor{
		Ticker:         m.Ticker,
		Title:          m.Title,
		Subtitle:       m.Subtitle,
		Category:       category,
		Status:         status,
		LastPrice:      float64(m.LastPrice) / 100, // cents to probability
		Volume24h:      m.Volume24h,
		Liquidity:      m.Liquidity,
		OpenTime:       parseTimestamp(m.OpenTime),
		CloseTime:      parseTimestamp(m.CloseTime),
		ExpirationTime: parseTimestamp(m.ExpirationTime),
		Tags:           m.Tags,
		SeriesTicker:   series,
	}, true
}

// toRawTicks converts venue candles to the canonical raw-tick set.
func toRawTicks(candles []apiCandle) []model.RawTick {
	ticks := make([]model.RawTick, 0, len(candles))
	for _, c := range candles {
		ticks = append(ticks, model.Candle{
			EndPeriodTS: c.EndPeriodTS,
			YesBidClose: c.YesBid.Close,
			YesAskClose: c.YesAsk.Close,
			Volume:      c.Volume,
		})
	}
	return ticks
}
