package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketlens/marketlens/internal/core"
)

var (
	analyzeDate string
	analyzeTop  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one daily analysis batch",
	Long: `Analyze every stock in the configured universe for one trading day,
persist the results, and advance the lifecycle of open signals.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "trading date YYYY-MM-DD (default today)")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 10, "number of top picks to print")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if analyzeDate != "" {
		date, err = time.Parse("2006-01-02", analyzeDate)
		if err != nil {
			return fmt.Errorf("invalid date (expected YYYY-MM-DD): %w", err)
		}
	}

	p, _, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.RunDay(ctx, date)
	if err != nil {
		return err
	}

	fmt.Printf("=== MarketLens %s ===\n", core.DateKey(report.Date))
	fmt.Printf("Analyzed: %d  Failed: %d  Market: %s\n",
		report.Analyzed, report.Failed, report.Breadth)
	fmt.Println()

	if len(report.Signals) > 0 {
		fmt.Println("Signals:")
		for _, sig := range report.Signals {
			fmt.Printf("  %-6s %-4s %-8s entry %.2f  t1 %.2f  t2 %.2f  stop %.2f  rr %.2f\n",
				sig.Symbol, sig.Type, sig.Strength,
				sig.EntryPrice, sig.Target1, sig.Target2, sig.StopLoss, sig.RewardRatio1)
		}
		fmt.Println()
	}

	if len(report.Transitions) > 0 {
		fmt.Println("Transitions:")
		for _, tr := range report.Transitions {
			fmt.Printf("  %-6s %s -> %s at %.2f\n", tr.Symbol, tr.From, tr.To, tr.TriggerPrice)
		}
		fmt.Println()
	}

	if picks := report.TopPicks(analyzeTop); len(picks) > 0 {
		fmt.Printf("Top %d picks:\n", len(picks))
		for i, pick := range picks {
			fmt.Printf("  %2d. %-6s score %.1f\n", i+1, pick.Symbol, pick.Breakdown.TotalScore)
		}
	}

	for symbol, serr := range report.Errors {
		fmt.Printf("  error %s: %v\n", symbol, serr)
	}

	return nil
}
