package main

import (
	"os"

	"github.com/marketlens/marketdata/cmd/ingestd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
