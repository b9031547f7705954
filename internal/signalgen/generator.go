package signalgen

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/core"
	"go.uber.org/zap"
)

// resistanceLookback is the trailing window scanned for the nearest
// resistance/support level used by target_2.
const resistanceLookback = 20

// stopFallbackPct is the stop distance used when no structural stop
// candidate is usable.
const stopFallbackPct = 0.02

// ActiveChecker answers whether a symbol already has an outstanding ACTIVE
// signal. The generator must consult lifecycle state before emitting.
type ActiveChecker interface {
	HasActive(ctx context.Context, symbol string) (bool, error)
	ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error)
}

// Generator turns a score breakdown and indicator snapshot into at most one
// signal per stock per day.
type Generator struct {
	cfg    *config.Config
	active ActiveChecker
	logger *zap.Logger
}

// New creates a signal generator.
func New(cfg *config.Config, active ActiveChecker, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, active: active, logger: logger}
}

// Input carries the generator's per-day inputs. Bars are the trailing
// window ending at the evaluation day.
type Input struct {
	Breakdown core.ScoreBreakdown
	Snapshot  core.IndicatorSnapshot
	Bars      []core.PriceBar
}

// Generate emits a BUY or SELL signal when the total score crosses a
// threshold, or nil when no signal is warranted. Risk-rule rejections are
// logged, never returned as errors.
func (g *Generator) Generate(ctx context.Context, in Input) (*core.Signal, error) {
	if len(in.Bars) < 2 {
		return nil, core.WrapError(core.ErrDataInsufficient,
			fmt.Errorf("need at least 2 bars, got %d", len(in.Bars)))
	}

	last := in.Bars[len(in.Bars)-1]
	prev := in.Bars[len(in.Bars)-2]
	total := in.Breakdown.TotalScore
	th := g.cfg.Thresholds

	// Universe filters
	if last.Close < th.MinPrice || last.Volume < th.MinVolume {
		return nil, nil
	}

	buyQualifies := total >= th.BuyScore
	sellQualifies := total <= th.SellScore

	// Contradictory qualification suppresses emission entirely.
	if buyQualifies == sellQualifies {
		return nil, nil
	}

	sigType := core.SignalBuy
	if sellQualifies {
		sigType = core.SignalSell
	}

	active, err := g.active.HasActive(ctx, last.Symbol)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	if active {
		g.logger.Debug("signal suppressed, active signal outstanding",
			zap.String("symbol", last.Symbol))
		return nil, nil
	}

	// Idempotence: re-running the day's batch must not duplicate signals.
	exists, err := g.active.ExistsForDate(ctx, last.Symbol, last.Date)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	if exists {
		return nil, nil
	}

	entry := g.entryPrice(sigType, last, prev, in.Snapshot)
	stop := g.stopLoss(sigType, entry, last, in.Bars, in.Snapshot)

	risk := math.Abs(entry - stop)
	if risk <= 0 {
		g.logger.Info("signal rejected, zero risk distance",
			zap.String("symbol", last.Symbol),
			zap.Float64("entry", entry),
			zap.Float64("stop", stop))
		return nil, nil
	}

	dir := 1.0
	if sigType == core.SignalSell {
		dir = -1.0
	}

	target1 := entry + dir*g.cfg.Signals.RiskTarget1Mult*risk
	target2 := g.target2(sigType, entry, risk, in.Bars, in.Snapshot)

	rr1 := math.Abs(target1-entry) / risk
	rr2 := math.Abs(target2-entry) / risk

	if rr1 < th.MinRewardRatio {
		g.logger.Info("signal rejected, reward ratio below minimum",
			zap.String("symbol", last.Symbol),
			zap.String("type", string(sigType)),
			zap.Float64("reward_ratio", rr1),
			zap.Float64("minimum", th.MinRewardRatio))
		return nil, nil
	}

	sig := &core.Signal{
		ID:           uuid.NewString(),
		Symbol:       last.Symbol,
		SignalDate:   last.Date,
		Type:         sigType,
		Strength:     g.strength(sigType, total),
		EntryPrice:   entry,
		Target1:      target1,
		Target2:      target2,
		StopLoss:     stop,
		RiskAmount:   risk,
		RewardRatio1: rr1,
		RewardRatio2: rr2,
		Rationale:    buildRationale(in.Breakdown, in.Snapshot),
		Status:       core.StatusActive,
		ExpiryDate:   last.Date.AddDate(0, 0, g.cfg.Signals.ExpiryDays),
		CreatedAt:    time.Now(),

		// Lifecycle evaluation starts on the next bar; the creation-day
		// bar already informed the entry and must not trigger it.
		LastEvaluated: last.Date,
	}

	g.logger.Info("signal generated",
		zap.String("symbol", sig.Symbol),
		zap.String("type", string(sig.Type)),
		zap.String("strength", string(sig.Strength)),
		zap.Float64("score", total),
		zap.Float64("entry", sig.EntryPrice),
		zap.Float64("stop", sig.StopLoss))

	return sig, nil
}

// entryPrice implements the breakout-or-mean-reversion entry rule: the
// previous day's extreme when price has broken through it, otherwise the
// ema_20 value, keeping the more conservative of the two.
func (g *Generator) entryPrice(t core.SignalType, last, prev core.PriceBar, snap core.IndicatorSnapshot) float64 {
	ema := last.Close
	if snap.EMA20 != nil {
		ema = *snap.EMA20
	}

	if t == core.SignalBuy {
		if last.Close > prev.High {
			return math.Min(prev.High, ema)
		}
		return ema
	}

	if last.Close < prev.Low {
		return math.Max(prev.Low, ema)
	}
	return ema
}

// stopLoss picks between the direction-consistent SuperTrend value and the
// trailing swing extreme: the tighter candidate wins as long as it is not
// inside the last bar's range. With no usable candidate the stop falls back
// to a fixed percentage from entry.
func (g *Generator) stopLoss(t core.SignalType, entry float64, last core.PriceBar, bars []core.PriceBar, snap core.IndicatorSnapshot) float64 {
	var candidates []float64

	if snap.SupertrendValue != nil {
		if (t == core.SignalBuy && snap.SupertrendDirection == core.TrendUp) ||
			(t == core.SignalSell && snap.SupertrendDirection == core.TrendDown) {
			candidates = append(candidates, *snap.SupertrendValue)
		}
	}

	window := bars
	if n := g.cfg.Signals.SwingLookback; len(window) > n {
		window = window[len(window)-n:]
	}
	if t == core.SignalBuy {
		lowest := window[0].Low
		for _, b := range window[1:] {
			if b.Low < lowest {
				lowest = b.Low
			}
		}
		candidates = append(candidates, lowest)
	} else {
		highest := window[0].High
		for _, b := range window[1:] {
			if b.High > highest {
				highest = b.High
			}
		}
		candidates = append(candidates, highest)
	}

	best := math.NaN()
	for _, c := range candidates {
		// Stop must sit on the protective side of entry.
		if t == core.SignalBuy && c >= entry {
			continue
		}
		if t == core.SignalSell && c <= entry {
			continue
		}
		// Not inside the last bar's intraday range.
		if c >= last.Low && c <= last.High {
			continue
		}
		if math.IsNaN(best) || math.Abs(entry-c) < math.Abs(entry-best) {
			best = c
		}
	}

	if !math.IsNaN(best) {
		return best
	}
	if t == core.SignalBuy {
		return entry * (1 - stopFallbackPct)
	}
	return entry * (1 + stopFallbackPct)
}

// target2 is the ATR-projected target or the trailing resistance/support
// level, whichever sits farther from entry.
func (g *Generator) target2(t core.SignalType, entry, risk float64, bars []core.PriceBar, snap core.IndicatorSnapshot) float64 {
	dir := 1.0
	if t == core.SignalSell {
		dir = -1.0
	}

	var atrTarget float64
	haveATR := snap.ATR14 != nil
	if haveATR {
		atrTarget = entry + dir*g.cfg.Signals.ATRTargetMult*(*snap.ATR14)
	}

	window := bars
	if len(window) > resistanceLookback {
		window = window[len(window)-resistanceLookback:]
	}
	level := window[0].High
	if t == core.SignalBuy {
		for _, b := range window[1:] {
			if b.High > level {
				level = b.High
			}
		}
	} else {
		level = window[0].Low
		for _, b := range window[1:] {
			if b.Low < level {
				level = b.Low
			}
		}
	}

	levelUsable := (t == core.SignalBuy && level > entry) || (t == core.SignalSell && level < entry)

	switch {
	case haveATR && levelUsable:
		if math.Abs(level-entry) > math.Abs(atrTarget-entry) {
			return level
		}
		return atrTarget
	case haveATR:
		return atrTarget
	case levelUsable:
		return level
	default:
		return entry + dir*2.5*risk
	}
}

// strength buckets the total score: STRONG >= 85, MODERATE >= 75, WEAK
// otherwise, mirrored around the sell threshold for SELL signals.
func (g *Generator) strength(t core.SignalType, total float64) core.SignalStrength {
	if t == core.SignalBuy {
		switch {
		case total >= 85:
			return core.StrengthStrong
		case total >= 75:
			return core.StrengthModerate
		default:
			return core.StrengthWeak
		}
	}
	switch {
	case total <= 15:
		return core.StrengthStrong
	case total <= 25:
		return core.StrengthModerate
	default:
		return core.StrengthWeak
	}
}
