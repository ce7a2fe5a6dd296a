package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ingestd",
	Short: "Prediction-market data ingestion daemon",
	Long: `ingestd collects prediction-market data from Kalshi and Polymarket,
normalizes it into a unified probability scale, and maintains price history
and rolling change windows in Postgres.

It provides:
  - Market discovery and metadata upserts for both venues
  - Bounded historical backfill of price points
  - Idempotent point merging with per-market transactional writes
  - Rolling 1/7/30/90 day change-window aggregation`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
