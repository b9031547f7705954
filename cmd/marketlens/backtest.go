package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketlens/marketlens/internal/backtest"
)

var (
	backtestFrom string
	backtestTo   string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the pipeline over a historical range",
	Long:  "Run the daily analysis for every trading day in a range and report how the generated signals resolved.",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	p, signals, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := backtest.New(p, signals, log).Run(ctx, fromDate, toDate)
	if err != nil {
		return err
	}

	stats := result.Stats
	fmt.Println("=== MarketLens Backtest ===")
	fmt.Printf("Period:      %s to %s (%d trading days)\n",
		backtestFrom, backtestTo, result.DaysRun)
	fmt.Printf("Signals:     %d\n", stats.TotalSignals)
	fmt.Printf("Wins:        %d\n", stats.Wins)
	fmt.Printf("Stop-outs:   %d\n", stats.StopOuts)
	fmt.Printf("Expired:     %d\n", stats.Expired)
	fmt.Printf("Still open:  %d\n", stats.StillOpen)
	fmt.Printf("Win rate:    %.1f%%\n", stats.WinRate)
	fmt.Printf("Avg RR:      %.2f\n", stats.AvgRealizedRR)
	fmt.Printf("Net return:  %.2f%%\n", stats.TotalReturn)
	fmt.Printf("Max drawdown: %.2f%%\n", stats.MaxDrawdown)

	return nil
}
