package scoring

import (
	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/core"
)

// neutralScore substitutes for a component whose indicator input is missing.
// Scoring for the stock always proceeds; only the affected component degrades.
const neutralScore = 50.0

// Engine computes component scores and the weighted total for one symbol.
// It is a pure function of its inputs; all tuning comes from the immutable
// config passed at construction.
type Engine struct {
	weights    config.WeightsConfig
	thresholds config.ThresholdsConfig
}

// NewEngine creates a scoring engine. The config is assumed validated
// (weights summing to 1.0 is enforced at load).
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		weights:    cfg.Weights,
		thresholds: cfg.Thresholds,
	}
}

// Input carries everything the engine needs for one (symbol, day).
type Input struct {
	Snapshot core.IndicatorSnapshot

	// Sentiment is the externally supplied aggregate score in [-1, 1].
	Sentiment float64

	// SentimentDegraded marks a neutral substitute after a provider failure.
	SentimentDegraded bool
}

// Score produces the full breakdown for one day. Scores are oriented
// bullish-high: 100 is maximally bullish, 0 maximally bearish, so a single
// scale serves both signal directions.
func (e *Engine) Score(in Input) core.ScoreBreakdown {
	snap := in.Snapshot

	b := core.ScoreBreakdown{
		Symbol:            snap.Symbol,
		Date:              snap.Date,
		MAAlignment:       maAlignmentScore(snap),
		Supertrend:        supertrendScore(snap.SupertrendDirection),
		RSI:               rsiScore(snap.RSI14),
		Volume:            volumeScore(snap.VolumeRatio),
		Sentiment:         sentimentScore(in.Sentiment),
		SentimentDegraded: in.SentimentDegraded,
	}

	total := b.MAAlignment*e.weights.MAAlignment +
		b.Supertrend*e.weights.Supertrend +
		b.RSI*e.weights.RSI +
		b.Volume*e.weights.Volume +
		b.Sentiment*e.weights.Sentiment

	b.TotalScore = clamp(total, 0, 100)
	b.IsBullish = b.TotalScore >= e.thresholds.BuyScore
	b.IsBearish = b.TotalScore <= e.thresholds.SellScore

	return b
}

// maAlignmentScore awards 25 points per bullish pairwise ordering in the
// stack close > ema20 > sma20 > sma50 > sma100. A pair with a missing
// operand contributes half credit so a stock short of sma_100 history is
// neither rewarded nor punished for the unknown ordering.
func maAlignmentScore(snap core.IndicatorSnapshot) float64 {
	close := snap.Close
	pairs := [4][2]*float64{
		{&close, snap.EMA20},
		{snap.EMA20, snap.SMA20},
		{snap.SMA20, snap.SMA50},
		{snap.SMA50, snap.SMA100},
	}

	var score float64
	for _, p := range pairs {
		switch {
		case p[0] == nil || p[1] == nil:
			score += 12.5
		case *p[0] > *p[1]:
			score += 25
		}
	}
	return score
}

// supertrendScore is binary: full marks when the trend is up, zero when
// down. No partial credit.
func supertrendScore(dir core.TrendDirection) float64 {
	switch dir {
	case core.TrendUp:
		return 100
	case core.TrendDown:
		return 0
	default:
		return neutralScore
	}
}

// rsiScore peaks on the 50-65 momentum band and degrades linearly above 70
// (overbought exhaustion) and below 30 (oversold).
func rsiScore(rsi *float64) float64 {
	if rsi == nil {
		return neutralScore
	}
	r := *rsi
	switch {
	case r >= 70:
		return clamp(60-(r-70)*2, 0, 100)
	case r >= 65:
		return 100 - (r-65)*8
	case r >= 50:
		return 100
	case r >= 30:
		return 30 + (r-30)*3.5
	default:
		return clamp(r, 0, 100)
	}
}

// volumeScore scales with the volume ratio, capped at 2.0x average for full
// marks; at or below average volume the score stays proportionally low.
func volumeScore(ratio *float64) float64 {
	if ratio == nil {
		return neutralScore
	}
	r := *ratio
	switch {
	case r >= 2.0:
		return 100
	case r > 1.0:
		return 50 + (r-1.0)*50
	default:
		return clamp(r*50, 0, 50)
	}
}

// sentimentScore remaps [-1, 1] linearly onto [0, 100].
func sentimentScore(s float64) float64 {
	return clamp((s+1)*50, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
