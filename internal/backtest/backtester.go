// Package backtest replays the daily pipeline over a historical range and
// reports how the generated signals resolved.
package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/core"
	"github.com/marketlens/marketlens/internal/pipeline"
	"github.com/marketlens/marketlens/internal/storage/signalstore"
)

// Replayer walks a date range one trading day at a time, running the full
// analysis batch for each day.
type Replayer struct {
	pipeline *pipeline.Pipeline
	signals  signalstore.Store
	logger   *zap.Logger
}

// New creates a replayer over the given pipeline and signal store.
func New(p *pipeline.Pipeline, signals signalstore.Store, logger *zap.Logger) *Replayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Replayer{
		pipeline: p,
		signals:  signals,
		logger:   logger,
	}
}

// Run replays every weekday in [start, end] and aggregates the outcomes.
func (r *Replayer) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	if end.Before(start) {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("replay end %s before start %s", core.DateKey(end), core.DateKey(start)))
	}

	result := &Result{
		StartDate: start,
		EndDate:   end,
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		report, err := r.pipeline.RunDay(ctx, day)
		if err != nil {
			return nil, err
		}
		result.DaysRun++
		result.Transitions = append(result.Transitions, report.Transitions...)

		r.logger.Debug("replayed day",
			zap.String("date", core.DateKey(day)),
			zap.Int("signals", len(report.Signals)),
			zap.Int("transitions", len(report.Transitions)),
		)
	}

	signals, err := r.signals.List(ctx, signalstore.ListFilter{
		From: start,
		To:   end,
	})
	if err != nil {
		return nil, err
	}
	result.Signals = signals

	outcomes := BuildOutcomes(signals)
	SortByDate(outcomes)
	result.Stats = CalculateStats(outcomes)

	r.logger.Info("replay complete",
		zap.Int("days", result.DaysRun),
		zap.Int("signals", result.Stats.TotalSignals),
		zap.Float64("win_rate", result.Stats.WinRate),
		zap.Float64("avg_rr", result.Stats.AvgRealizedRR),
	)

	return result, nil
}
