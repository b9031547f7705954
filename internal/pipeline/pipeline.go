// Package pipeline runs the daily analysis batch over the configured
// universe and advances the lifecycle of open signals.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/archive"
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/core"
	"github.com/marketlens/marketlens/internal/indicator"
	"github.com/marketlens/marketlens/internal/lifecycle"
	"github.com/marketlens/marketlens/internal/metrics"
	"github.com/marketlens/marketlens/internal/notifier"
	"github.com/marketlens/marketlens/internal/prices"
	"github.com/marketlens/marketlens/internal/scoring"
	"github.com/marketlens/marketlens/internal/sentiment"
	"github.com/marketlens/marketlens/internal/signalgen"
	"github.com/marketlens/marketlens/internal/storage/analysis"
	"github.com/marketlens/marketlens/internal/storage/signalstore"
)

// MarketBreadth classifies the day from the ratio of bullish and bearish
// scores across the universe.
type MarketBreadth string

const (
	BreadthBullish MarketBreadth = "BULLISH"
	BreadthBearish MarketBreadth = "BEARISH"
	BreadthNeutral MarketBreadth = "NEUTRAL"
)

// breadthRatio is the share of bullish (or bearish) stocks that tips the
// market classification away from neutral.
const breadthRatio = 0.3

// Pipeline wires the analysis stages together for one batch run.
type Pipeline struct {
	cfg       *config.Config
	logger    *zap.Logger
	prices    prices.Provider
	sentiment sentiment.Provider
	scorer    *scoring.Engine
	generator *signalgen.Generator
	tracker   *lifecycle.Tracker
	signals   signalstore.Store
	analysis  analysis.Store
	archiver  *archive.Archiver
	notifiers *notifier.Registry
	metrics   *metrics.Registry
}

// Options carries the optional collaborators.
type Options struct {
	Archiver  *archive.Archiver
	Notifiers *notifier.Registry
	Metrics   *metrics.Registry
}

// New creates a pipeline over the given stores and providers.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	priceProvider prices.Provider,
	sentimentProvider sentiment.Provider,
	signals signalstore.Store,
	analysisStore analysis.Store,
	opts Options,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	retries := cfg.Pipeline.SentimentRetries
	if retries > 0 {
		sentimentProvider = sentiment.NewRetryProvider(
			sentimentProvider, retries, cfg.Pipeline.SentimentBackoff)
	}

	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		prices:    priceProvider,
		sentiment: sentimentProvider,
		scorer:    scoring.NewEngine(cfg),
		generator: signalgen.New(cfg, signals, logger),
		tracker:   lifecycle.New(cfg, signals, logger),
		signals:   signals,
		analysis:  analysisStore,
		archiver:  opts.Archiver,
		notifiers: opts.Notifiers,
		metrics:   opts.Metrics,
	}
}

// StockResult is the per-symbol outcome of one batch run.
type StockResult struct {
	Symbol    string
	Breakdown *core.ScoreBreakdown
	Signal    *core.Signal
	Err       error
}

// RunReport aggregates one batch run.
type RunReport struct {
	Date        time.Time
	Analyzed    int
	Failed      int
	Breadth     MarketBreadth
	Results     []StockResult
	Signals     []core.Signal
	Transitions []core.Transition
	Errors      map[string]error
	Duration    time.Duration
}

// TopPicks returns the n highest-scoring analyzed stocks.
func (r *RunReport) TopPicks(n int) []StockResult {
	picks := make([]StockResult, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil && res.Breakdown != nil {
			picks = append(picks, res)
		}
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Breakdown.TotalScore > picks[j].Breakdown.TotalScore
	})
	if n > 0 && len(picks) > n {
		picks = picks[:n]
	}
	return picks
}

// RunDay analyzes every universe symbol for the given date, persists the
// results, advances open signals, and fans new events out to notifiers.
// Per-stock failures never abort the batch.
func (p *Pipeline) RunDay(ctx context.Context, date time.Time) (*RunReport, error) {
	start := time.Now()

	universe := p.cfg.Universe
	if p.metrics != nil {
		p.metrics.SetUniverseSize(len(universe))
	}
	p.logger.Info("starting daily batch",
		zap.String("date", core.DateKey(date)),
		zap.Int("universe", len(universe)),
	)

	results := p.analyzeUniverse(ctx, date, universe)

	report := &RunReport{
		Date:    date,
		Results: results,
		Errors:  make(map[string]error),
	}

	dayBars := make(map[string]core.PriceBar)
	for _, res := range results {
		if res.Err != nil {
			report.Failed++
			report.Errors[res.Symbol] = res.Err
			continue
		}
		report.Analyzed++
		if res.Signal != nil {
			report.Signals = append(report.Signals, *res.Signal)
		}
	}

	// Lifecycle needs the day's bar for every symbol with an open signal,
	// including symbols that failed analysis upstream.
	for _, item := range universe {
		if bar, err := p.latestBar(ctx, item.Symbol, date); err == nil {
			dayBars[item.Symbol] = *bar
		}
	}

	dayResult, err := p.tracker.EvaluateDay(ctx, dayBars)
	if err != nil {
		return nil, err
	}
	report.Transitions = dayResult.Transitions
	for symbol, ferr := range dayResult.Failures {
		if _, exists := report.Errors[symbol]; !exists {
			report.Errors[symbol] = ferr
		}
	}

	report.Breadth = classifyBreadth(results)
	report.Duration = time.Since(start)

	p.record(report)
	p.notify(ctx, report)
	p.archiveDay(ctx, report)

	p.logger.Info("daily batch complete",
		zap.String("date", core.DateKey(date)),
		zap.Int("analyzed", report.Analyzed),
		zap.Int("failed", report.Failed),
		zap.Int("signals", len(report.Signals)),
		zap.Int("transitions", len(report.Transitions)),
		zap.String("breadth", string(report.Breadth)),
		zap.Duration("duration", report.Duration),
	)

	return report, nil
}

// analyzeUniverse fans the per-stock work out to a bounded worker pool.
func (p *Pipeline) analyzeUniverse(ctx context.Context, date time.Time, universe []config.UniverseItem) []StockResult {
	workers := p.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan config.UniverseItem)
	results := make([]StockResult, 0, len(universe))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				res := p.analyzeStock(ctx, item.Symbol, date)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}

	for _, item := range universe {
		if ctx.Err() != nil {
			break
		}
		jobs <- item
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Symbol < results[j].Symbol
	})
	return results
}

// analyzeStock runs indicators, sentiment, scoring, and signal generation
// for one symbol. Every error is captured in the result, never propagated.
func (p *Pipeline) analyzeStock(ctx context.Context, symbol string, date time.Time) StockResult {
	res := StockResult{Symbol: symbol}

	bars, err := p.prices.History(ctx, symbol, date, p.cfg.Pipeline.MinLookbackBars)
	if err != nil {
		res.Err = err
		p.recordFailure("prices")
		return res
	}
	// A history ending before the run date would score a stale snapshot.
	if last := bars[len(bars)-1]; !core.SameDay(last.Date, date) {
		res.Err = core.WrapError(core.ErrNoData,
			fmt.Errorf("last bar for %s is %s, want %s",
				symbol, core.DateKey(last.Date), core.DateKey(date)))
		p.recordFailure("prices")
		return res
	}

	snap, err := indicator.Latest(bars)
	if err != nil {
		res.Err = err
		p.recordFailure("indicators")
		return res
	}

	score, degraded := p.sentimentScore(ctx, symbol, date)
	breakdown := p.scorer.Score(scoring.Input{
		Snapshot:          *snap,
		Sentiment:         score,
		SentimentDegraded: degraded,
	})
	res.Breakdown = &breakdown

	if err := p.analysis.SaveSnapshot(ctx, *snap); err != nil {
		res.Err = err
		p.recordFailure("storage")
		return res
	}
	if err := p.analysis.SaveBreakdown(ctx, breakdown); err != nil {
		res.Err = err
		p.recordFailure("storage")
		return res
	}

	sig, err := p.generator.Generate(ctx, signalgen.Input{
		Breakdown: breakdown,
		Snapshot:  *snap,
		Bars:      bars,
	})
	if err != nil {
		res.Err = err
		p.recordFailure("signalgen")
		return res
	}

	if sig != nil {
		if err := p.signals.Save(ctx, *sig); err != nil {
			res.Err = err
			p.recordFailure("storage")
			return res
		}
		res.Signal = sig
		if p.metrics != nil {
			p.metrics.RecordSignal(string(sig.Type), string(sig.Strength))
		}
	}

	if p.metrics != nil {
		p.metrics.RecordStockAnalyzed()
	}
	return res
}

// sentimentScore fetches sentiment and degrades to neutral on failure.
func (p *Pipeline) sentimentScore(ctx context.Context, symbol string, date time.Time) (float64, bool) {
	score, err := p.sentiment.Score(ctx, symbol, date)
	if err != nil {
		p.logger.Warn("sentiment unavailable, using neutral",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		if p.metrics != nil {
			p.metrics.RecordSentimentFallback()
		}
		return 0, true
	}
	return score, false
}

func (p *Pipeline) latestBar(ctx context.Context, symbol string, date time.Time) (*core.PriceBar, error) {
	bars, err := p.prices.History(ctx, symbol, date, 1)
	if err != nil {
		return nil, err
	}
	bar := bars[len(bars)-1]
	if !core.SameDay(bar.Date, date) {
		return nil, core.ErrNoData
	}
	return &bar, nil
}

func classifyBreadth(results []StockResult) MarketBreadth {
	var total, bullish, bearish int
	for _, res := range results {
		if res.Err != nil || res.Breakdown == nil {
			continue
		}
		total++
		if res.Breakdown.IsBullish {
			bullish++
		} else if res.Breakdown.IsBearish {
			bearish++
		}
	}
	if total == 0 {
		return BreadthNeutral
	}
	switch {
	case float64(bullish)/float64(total) > breadthRatio:
		return BreadthBullish
	case float64(bearish)/float64(total) > breadthRatio:
		return BreadthBearish
	default:
		return BreadthNeutral
	}
}

func (p *Pipeline) record(report *RunReport) {
	if p.metrics == nil {
		return
	}
	for _, tr := range report.Transitions {
		p.metrics.RecordTransition(string(tr.To))
	}
	p.metrics.RecordBatch(report.Duration.Seconds())
}

func (p *Pipeline) notify(ctx context.Context, report *RunReport) {
	if p.notifiers == nil || p.notifiers.Len() == 0 {
		return
	}
	for name, err := range p.notifiers.NotifySignals(ctx, report.Signals) {
		p.logger.Warn("signal notification failed",
			zap.String("notifier", name), zap.Error(err))
	}
	for name, err := range p.notifiers.NotifyTransitions(ctx, report.Transitions) {
		p.logger.Warn("transition notification failed",
			zap.String("notifier", name), zap.Error(err))
	}
}

func (p *Pipeline) archiveDay(ctx context.Context, report *RunReport) {
	if p.archiver == nil {
		return
	}

	rec := archive.DayRecord{
		Date:        core.DateKey(report.Date),
		Signals:     report.Signals,
		Transitions: report.Transitions,
	}
	for _, res := range report.Results {
		if res.Err == nil && res.Breakdown != nil {
			rec.Breakdowns = append(rec.Breakdowns, *res.Breakdown)
		}
	}

	if err := p.archiver.StoreDay(ctx, rec); err != nil {
		p.logger.Warn("archive write failed",
			zap.String("date", rec.Date), zap.Error(err))
	}
}

func (p *Pipeline) recordFailure(stage string) {
	if p.metrics != nil {
		p.metrics.RecordStockFailure(stage)
	}
}
