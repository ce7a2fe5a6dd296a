package model

import "time"

// ChangeWindowDays is the fixed set of lookback windows, in days, for which
// change statistics are computed. Not extensible at runtime.
var ChangeWindowDays = []int{1, 7, 30, 90}

// Market is a tradeable prediction market as stored. Created on first
// sighting, updated every cycle thereafter, never deleted by the pipeline.
type Market struct {
	Ticker         string     // Primary key, source-specific
	Title          string     // Display title
	Subtitle       string     // Optional subtitle
	Category       string     // Category (e.g., "Politics")
	Status         string     // open, active, closed, inactive
	CurrentPrice   float64    // Probability of the freshest stored point
	Volume24h      int64      // 24-hour volume
	Liquidity      int64      // Venue-reported liquidity
	OpenTime       *time.Time // Market open, nil when unknown
	CloseTime      *time.Time // Market close, nil when unknown
	ExpirationTime *time.Time // Expiration, nil when unknown
	Tags           []string   // Free-form tag list
	CreatedAt      time.Time  // First sighting, immutable
	UpdatedAt      time.Time  // Refreshed every cycle
}

// MarketDescriptor is the canonical output of adapter discovery. It carries
// everything needed to upsert a Market plus the venue-internal hints needed
// to resolve the market's price-history stream.
type MarketDescriptor struct {
	Ticker         string
	Title          string
	Subtitle       string
	Category       string
	Status         string
	LastPrice      float64 // Listing-time probability snapshot, 0 when unknown
	Volume24h      int64
	Liquidity      int64
	OpenTime       *time.Time
	CloseTime      *time.Time
	ExpirationTime *time.Time
	Tags           []string

	// History resolution hints. SeriesTicker addresses the candlestick
	// endpoint of the signed venue; TokenIDs are the hybrid venue's CLOB
	// token ids, first entry being the "yes" outcome.
	SeriesTicker string
	TokenIDs     []string
}

// PricePoint is one canonical observation in a market's series. At most one
// point exists per (market, timestamp); stored points are never rewritten.
type PricePoint struct {
	Timestamp time.Time // Series key, UTC
	Price     float64   // Probability in [0, 1]
	Volume    int64     // 0 when the source does not report it
}

// ChangeWindow holds fixed-window change statistics for one market, keyed by
// (market, WindowDays). Fully recomputed and overwritten every cycle.
type ChangeWindow struct {
	Ticker           string
	WindowDays       int     // One of ChangeWindowDays
	PriceChange      float64 // Signed max-magnitude excursion from current price
	MinPrice         float64
	MaxPrice         float64
	ChangePercentage float64
	CalculatedAt     time.Time
}
