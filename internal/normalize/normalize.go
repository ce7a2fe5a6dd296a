// Package normalize converts source-native raw ticks into canonical price
// points, dropping and counting anything unparsable or out of range.
//
// Scale conventions, fixed per variant:
//   - Candle quotes are venue cents (0-100); the point price is the bid/ask
//     close midpoint divided by 100, rounded to 4 decimals.
//   - TradeTick prices are already probabilities (0-1) and are used as-is.
package normalize

import (
	"log/slog"
	"math"
	"time"

	"github.com/marketlens/marketdata/internal/model"
)

// msThreshold separates unix-second from unix-millisecond timestamps.
const msThreshold = int64(1e12)

// pricePrecision is the decimal precision of normalized candle prices.
const pricePrecision = 4

// Result is the outcome of one normalization pass.
type Result struct {
	Points  []model.PricePoint
	Dropped int // Ticks rejected for bad timestamps or out-of-range prices
}

// Normalizer converts raw ticks to price points.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a Normalizer.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize converts ticks, skipping invalid ones with a count. The output
// preserves input order and may contain duplicate timestamps; dedup belongs
// to the merge.
func (n *Normalizer) Normalize(ticks []model.RawTick) Result {
	res := Result{Points: make([]model.PricePoint, 0, len(ticks))}

	for _, tick := range ticks {
		point, ok := n.convert(tick)
		if !ok {
			res.Dropped++
			continue
		}
		res.Points = append(res.Points, point)
	}

	if res.Dropped > 0 {
		n.logger.Warn("dropped invalid ticks", "dropped", res.Dropped, "kept", len(res.Points))
	}

	return res
}

func (n *Normalizer) convert(tick model.RawTick) (model.PricePoint, bool) {
	switch t := tick.(type) {
	case model.Candle:
		if t.EndPeriodTS <= 0 {
			return model.PricePoint{}, false
		}
		price := roundTo((t.YesBidClose+t.YesAskClose)/2/100, pricePrecision)
		if price < 0 || price > 1 {
			return model.PricePoint{}, false
		}
		volume := t.Volume
		if volume < 0 {
			volume = 0
		}
		return model.PricePoint{
			Timestamp: time.Unix(t.EndPeriodTS, 0).UTC(),
			Price:     price,
			Volume:    volume,
		}, true

	case model.TradeTick:
		ts := t.Timestamp
		if ts > msThreshold {
			ts /= 1000
		}
		if ts <= 0 {
			return model.PricePoint{}, false
		}
		if t.Price < 0 || t.Price > 1 {
			return model.PricePoint{}, false
		}
		return model.PricePoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Price:     t.Price,
			Volume:    0,
		}, true

	default:
		return model.PricePoint{}, false
	}
}

func roundTo(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
