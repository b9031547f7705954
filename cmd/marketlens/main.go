package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	dataDir   string
	priceFeed string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:   "marketlens",
	Short: "MarketLens - daily stock analytics and trading signals",
	Long: `MarketLens analyzes daily OHLCV data for a configured stock universe,
scores each stock across technical and sentiment components, and manages
the lifecycle of the trading signals it emits.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "data/prices", "directory of per-symbol OHLCV CSV files")
	rootCmd.PersistentFlags().StringVar(&priceFeed, "feed", "csv", "price feed: csv or yahoo")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	// A missing .env is fine; environment variables still apply.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
