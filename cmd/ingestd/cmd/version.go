package cmd

import (
	"fmt"

	"github.com/marketlens/marketdata/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ingestd %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
