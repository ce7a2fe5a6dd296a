package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketlens/marketdata/internal/backfill"
	"github.com/marketlens/marketdata/internal/config"
	"github.com/marketlens/marketdata/internal/cycle"
	"github.com/marketlens/marketdata/internal/source"
	"github.com/marketlens/marketdata/internal/source/kalshi"
	"github.com/marketlens/marketdata/internal/source/polymarket"
	"github.com/marketlens/marketdata/internal/store/migrations"
	"github.com/marketlens/marketdata/internal/store/postgres"
	"github.com/marketlens/marketdata/internal/version"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ingestion cycles",
	Long: `Run the ingestion pipeline: discover markets on each enabled venue,
backfill price history, merge points, and recompute change windows.

With cycle.interval set in the config the pipeline repeats on that
interval until interrupted; with it unset (or 0) it runs once and exits.

Example:
  ingestd run --config configs/ingestd.local.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runConfigPath, "config", "configs/ingestd.local.yaml", "path to config file")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndValidate(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingestd",
		"version", version.Version,
		"commit", version.Commit,
		"instance_id", cfg.Instance.ID,
		"config", runConfigPath,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := migrations.Run(ctx, pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database ready")

	adapters, err := buildAdapters(cfg, logger)
	if err != nil {
		return err
	}

	runner := cycle.New(postgres.New(pool), adapters,
		cycle.WithBackfillConfig(backfill.Config{
			DefaultLookback: cfg.Backfill.DefaultLookback,
			MaxChunks:       cfg.Backfill.MaxChunks,
		}),
		cycle.WithLogger(logger),
	)

	for {
		summary, err := runner.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("shutting down")
				return nil
			}
			return fmt.Errorf("ingestion cycle: %w", err)
		}
		logger.Info("cycle complete",
			"run_id", summary.RunID,
			"duration", summary.Duration,
			"discovered", summary.Discovered,
			"points_merged", summary.PointsMerged,
		)

		if cfg.Cycle.Interval <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-time.After(cfg.Cycle.Interval):
		}
	}
}

func buildAdapters(cfg *config.Config, logger *slog.Logger) ([]source.Adapter, error) {
	var adapters []source.Adapter

	if cfg.Kalshi.Enabled {
		creds, err := kalshi.LoadCredentials(cfg.Kalshi.APIKey, cfg.Kalshi.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load kalshi credentials: %w", err)
		}
		client := kalshi.NewClient(cfg.Kalshi.RestURL, creds,
			kalshi.WithTimeout(cfg.Kalshi.Timeout),
			kalshi.WithRetries(cfg.Kalshi.MaxRetries, time.Second),
			kalshi.WithLogger(logger),
		)
		adapters = append(adapters, kalshi.NewAdapter(client, kalshi.AdapterConfig{
			Status:        cfg.Kalshi.Status,
			PageLimit:     cfg.Kalshi.PageLimit,
			PeriodMinutes: cfg.Kalshi.PeriodMinutes,
		}, logger))
	}

	if cfg.Polymarket.Enabled {
		client := polymarket.NewClient(cfg.Polymarket.GammaURL, cfg.Polymarket.ClobURL,
			polymarket.WithTimeout(cfg.Polymarket.Timeout),
			polymarket.WithRetries(cfg.Polymarket.MaxRetries, time.Second),
			polymarket.WithLogger(logger),
		)
		adapters = append(adapters, polymarket.NewAdapter(client, polymarket.AdapterConfig{
			MinVolume:  cfg.Polymarket.MinVolume,
			PageLimit:  cfg.Polymarket.PageLimit,
			MaxMarkets: cfg.Polymarket.MaxMarkets,
		}, logger))
	}

	return adapters, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
