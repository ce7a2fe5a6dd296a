package config

import "time"

// Config is the root configuration for the ingestion service.
type Config struct {
	Instance   InstanceConfig   `yaml:"instance"`
	Log        LogConfig        `yaml:"log"`
	Database   DBConfig         `yaml:"database"`
	Kalshi     KalshiConfig     `yaml:"kalshi"`
	Polymarket PolymarketConfig `yaml:"polymarket"`
	Backfill   BackfillConfig   `yaml:"backfill"`
	Cycle      CycleConfig      `yaml:"cycle"`
}

// InstanceConfig identifies this runner.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// KalshiConfig holds the signed venue's settings.
type KalshiConfig struct {
	Enabled        bool          `yaml:"enabled"`
	RestURL        string        `yaml:"rest_url"`
	APIKey         string        `yaml:"api_key"`          // Key ID (KALSHI-ACCESS-KEY header)
	PrivateKeyPath string        `yaml:"private_key_path"` // Path to RSA private key PEM file
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	Status         string        `yaml:"status"`     // Listing status filter
	PageLimit      int           `yaml:"page_limit"` // Markets per listing page
	PeriodMinutes  int           `yaml:"period_minutes"`
}

// PolymarketConfig holds the hybrid venue's settings.
type PolymarketConfig struct {
	Enabled    bool          `yaml:"enabled"`
	GammaURL   string        `yaml:"gamma_url"`
	ClobURL    string        `yaml:"clob_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	MinVolume  float64       `yaml:"min_volume"`
	PageLimit  int           `yaml:"page_limit"`
	MaxMarkets int           `yaml:"max_markets"`
}

// BackfillConfig holds history backfill guards.
type BackfillConfig struct {
	DefaultLookback time.Duration `yaml:"default_lookback"` // Used when open time is unknown
	MaxChunks       int           `yaml:"max_chunks"`       // Hard cap on fetches per market
}

// CycleConfig holds scheduling settings.
type CycleConfig struct {
	Interval time.Duration `yaml:"interval"` // 0 means run once and exit
}
