package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if !c.Kalshi.Enabled && !c.Polymarket.Enabled {
		return errors.New("at least one venue must be enabled")
	}

	if c.Kalshi.Enabled {
		if c.Kalshi.APIKey == "" {
			return errors.New("kalshi.api_key is required when kalshi is enabled")
		}
		if c.Kalshi.PrivateKeyPath == "" {
			return errors.New("kalshi.private_key_path is required when kalshi is enabled")
		}
		if c.Kalshi.PeriodMinutes < 1 {
			return errors.New("kalshi.period_minutes must be >= 1")
		}
	}

	if c.Polymarket.Enabled {
		if c.Polymarket.PageLimit < 1 {
			return errors.New("polymarket.page_limit must be >= 1")
		}
		if c.Polymarket.MaxMarkets < 1 {
			return errors.New("polymarket.max_markets must be >= 1")
		}
	}

	if c.Backfill.MaxChunks < 1 {
		return errors.New("backfill.max_chunks must be >= 1")
	}
	if c.Cycle.Interval < 0 {
		return errors.New("cycle.interval must not be negative")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
