package polymarket

import (
	"github.com/marketlens/marketdata/internal/model"
)

// toDescriptor converts a Gamma market to the canonical descriptor. Returns
// false when the record is too malformed to use. The venue-internal market
// id doubles as the ticker; lifecycle timestamps are not reported by the
// listing and stay unknown.
func (m *gammaMarket) toDescriptor() (model.MarketDescriptor, bool) {
	if m.ID == "" {
		return model.MarketDescriptor{}, false
	}

	title := m.Question
	if title == "" {
		title = m.Title
	}
	if title == "" {
		return model.MarketDescriptor{}, false
	}

	subtitle := m.Description
	if subtitle == "" {
		subtitle = m.Subtitle
	}

	category := m.Category
	if category == "" {
		category = "Other"
	}

	status := "inactive"
	if m.Active {
		status = "active"
	}

	volume := int64(m.VolumeClob)
	if volume == 0 {
		volume = int64(m.Volume24hr)
	}

	return model.MarketDescriptor{
		Ticker:    string(m.ID),
		Title:     title,
		Subtitle:  subtitle,
		Category:  category,
		Status:    status,
		Volume24h: volume,
		Liquidity: int64(m.Liquidity),
		Tags:      m.Tags,
		TokenIDs:  m.TokenIDs,
	}, true
}

// toRawTicks converts CLOB observations to the canonical raw-tick set.
// Prices are already on the 0-1 probability scale; timestamps may be unix
// seconds or milliseconds and are disambiguated by the normalizer.
func toRawTicks(points []historyPoint) []model.RawTick {
	ticks := make([]model.RawTick, 0, len(points))
	for _, p := range points {
		ticks = append(ticks, model.TradeTick{
			Timestamp: int64(p.T),
			Price:     float64(p.P),
		})
	}
	return ticks
}
