package lifecycle

import (
	"context"
	"fmt"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/core"
	"go.uber.org/zap"
)

// Store is the slice of signal persistence the tracker needs.
type Store interface {
	ListOpen(ctx context.Context) ([]core.Signal, error)
	Update(ctx context.Context, sig core.Signal) error
}

// Tracker advances open signals through their lifecycle against each new
// daily bar. Transitions are applied exactly once per signal per day,
// de-duplicated by (signal ID, evaluation date).
type Tracker struct {
	cfg    config.SignalsConfig
	store  Store
	logger *zap.Logger
}

// New creates a lifecycle tracker.
func New(cfg *config.Config, store Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{cfg: cfg.Signals, store: store, logger: logger}
}

// DayResult aggregates one day's lifecycle pass. Failures share the
// symbol keying of the batch report's error map.
type DayResult struct {
	Transitions []core.Transition
	Failures    map[string]error // symbol -> evaluation failure
}

// EvaluateDay runs one lifecycle pass over all open signals using the
// day's bars, keyed by symbol. A signal whose symbol has no bar for the day
// is reported and left unchanged until the next successful evaluation.
func (t *Tracker) EvaluateDay(ctx context.Context, bars map[string]core.PriceBar) (*DayResult, error) {
	open, err := t.store.ListOpen(ctx)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}

	result := &DayResult{Failures: make(map[string]error)}

	for _, sig := range open {
		bar, ok := bars[sig.Symbol]
		if !ok {
			result.Failures[sig.Symbol] = core.WrapError(core.ErrNoData,
				fmt.Errorf("no bar for %s (signal %s)", sig.Symbol, sig.ID))
			continue
		}

		transition, changed, err := t.Evaluate(&sig, bar)
		if err != nil {
			result.Failures[sig.Symbol] = err
			continue
		}
		if changed {
			if err := t.store.Update(ctx, sig); err != nil {
				result.Failures[sig.Symbol] = core.WrapError(core.ErrStoreFailed, err)
				continue
			}
		}
		if transition != nil {
			result.Transitions = append(result.Transitions, *transition)
			t.logger.Info("signal transition",
				zap.String("signal_id", transition.SignalID),
				zap.String("symbol", transition.Symbol),
				zap.String("from", string(transition.From)),
				zap.String("to", string(transition.To)),
				zap.Float64("trigger", transition.TriggerPrice))
		}
	}

	return result, nil
}

// Evaluate applies the day's bar to one signal, mutating it in place.
// Transition priority is strict: stop-loss first (protecting capital beats
// capturing gains when both levels are touched intraday), then target_2,
// target_1, and finally expiry. Returns the transition if one fired and
// whether the signal was modified.
func (t *Tracker) Evaluate(sig *core.Signal, bar core.PriceBar) (*core.Transition, bool, error) {
	if sig.Status.IsTerminal() {
		return nil, false, nil
	}
	// HIT_TARGET_1 resolves the signal when target_2 tracking is disabled.
	if sig.Status == core.StatusHitTarget1 && !t.cfg.Target2Enabled {
		return nil, false, nil
	}
	if bar.Symbol != sig.Symbol {
		return nil, false, core.WrapError(core.ErrInvalidBar,
			fmt.Errorf("bar for %s applied to signal on %s", bar.Symbol, sig.Symbol))
	}

	// At most one evaluation per signal per day.
	if !sig.LastEvaluated.IsZero() && core.SameDay(sig.LastEvaluated, bar.Date) {
		return nil, false, nil
	}
	sig.LastEvaluated = bar.Date

	from := sig.Status

	if t.stopBreached(sig, bar) {
		sig.Status = core.StatusStoppedOut
		return transition(sig, from, bar, sig.StopLoss, "stop-loss breached"), true, nil
	}

	if t.cfg.Target2Enabled && t.target2Reached(sig, bar) {
		sig.Status = core.StatusHitTarget2
		return transition(sig, from, bar, sig.Target2, "second target reached"), true, nil
	}

	if sig.Status == core.StatusActive && t.target1Reached(sig, bar) {
		sig.Status = core.StatusHitTarget1
		sig.Target1Hit = true
		note := "first target reached"
		if t.cfg.Target2Enabled && t.cfg.TrailToBreakeven {
			sig.StopLoss = sig.EntryPrice
			note = "first target reached, stop trailed to breakeven"
		}
		return transition(sig, from, bar, sig.Target1, note), true, nil
	}

	if sig.ExpiryDate.Before(bar.Date) {
		sig.Status = core.StatusExpired
		return transition(sig, from, bar, bar.Close, "expired without trigger"), true, nil
	}

	// No trigger; LastEvaluated still advanced.
	return nil, true, nil
}

func (t *Tracker) stopBreached(sig *core.Signal, bar core.PriceBar) bool {
	if sig.Type == core.SignalBuy {
		return bar.Low <= sig.StopLoss
	}
	return bar.High >= sig.StopLoss
}

func (t *Tracker) target2Reached(sig *core.Signal, bar core.PriceBar) bool {
	if sig.Type == core.SignalBuy {
		return bar.High >= sig.Target2
	}
	return bar.Low <= sig.Target2
}

func (t *Tracker) target1Reached(sig *core.Signal, bar core.PriceBar) bool {
	if sig.Type == core.SignalBuy {
		return bar.High >= sig.Target1
	}
	return bar.Low <= sig.Target1
}

func transition(sig *core.Signal, from core.SignalStatus, bar core.PriceBar, trigger float64, note string) *core.Transition {
	return &core.Transition{
		SignalID:     sig.ID,
		Symbol:       sig.Symbol,
		From:         from,
		To:           sig.Status,
		TriggerPrice: trigger,
		Date:         bar.Date,
		Note:         note,
	}
}
