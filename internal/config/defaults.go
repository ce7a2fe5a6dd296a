package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultLogLevel = "info"

	DefaultKalshiRestURL       = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultKalshiStatus        = "open"
	DefaultKalshiPageLimit     = 1000
	DefaultKalshiPeriodMinutes = 60

	DefaultGammaURL             = "https://gamma-api.polymarket.com"
	DefaultClobURL              = "https://clob.polymarket.com"
	DefaultPolymarketMinVolume  = 1000
	DefaultPolymarketPageLimit  = 100
	DefaultPolymarketMaxMarkets = 500

	DefaultAPITimeout = 30 * time.Second
	DefaultMaxRetries = 2

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultBackfillLookback  = 30 * 24 * time.Hour
	DefaultBackfillMaxChunks = 48
)

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Kalshi defaults
	if c.Kalshi.RestURL == "" {
		c.Kalshi.RestURL = DefaultKalshiRestURL
	}
	if c.Kalshi.Timeout == 0 {
		c.Kalshi.Timeout = DefaultAPITimeout
	}
	if c.Kalshi.MaxRetries == 0 {
		c.Kalshi.MaxRetries = DefaultMaxRetries
	}
	if c.Kalshi.Status == "" {
		c.Kalshi.Status = DefaultKalshiStatus
	}
	if c.Kalshi.PageLimit == 0 {
		c.Kalshi.PageLimit = DefaultKalshiPageLimit
	}
	if c.Kalshi.PeriodMinutes == 0 {
		c.Kalshi.PeriodMinutes = DefaultKalshiPeriodMinutes
	}

	// Polymarket defaults
	if c.Polymarket.GammaURL == "" {
		c.Polymarket.GammaURL = DefaultGammaURL
	}
	if c.Polymarket.ClobURL == "" {
		c.Polymarket.ClobURL = DefaultClobURL
	}
	if c.Polymarket.Timeout == 0 {
		c.Polymarket.Timeout = DefaultAPITimeout
	}
	if c.Polymarket.MaxRetries == 0 {
		c.Polymarket.MaxRetries = DefaultMaxRetries
	}
	if c.Polymarket.MinVolume == 0 {
		c.Polymarket.MinVolume = DefaultPolymarketMinVolume
	}
	if c.Polymarket.PageLimit == 0 {
		c.Polymarket.PageLimit = DefaultPolymarketPageLimit
	}
	if c.Polymarket.MaxMarkets == 0 {
		c.Polymarket.MaxMarkets = DefaultPolymarketMaxMarkets
	}

	// Backfill defaults
	if c.Backfill.DefaultLookback == 0 {
		c.Backfill.DefaultLookback = DefaultBackfillLookback
	}
	if c.Backfill.MaxChunks == 0 {
		c.Backfill.MaxChunks = DefaultBackfillMaxChunks
	}
}
