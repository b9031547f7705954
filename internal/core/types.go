package core

import "time"

// TrendDirection is the directional state of the SuperTrend indicator.
type TrendDirection string

const (
	TrendUp   TrendDirection = "UP"
	TrendDown TrendDirection = "DOWN"
)

// SignalType represents the direction of a trading signal.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// SignalStrength buckets a signal by its total score.
type SignalStrength string

const (
	StrengthStrong   SignalStrength = "STRONG"
	StrengthModerate SignalStrength = "MODERATE"
	StrengthWeak     SignalStrength = "WEAK"
)

// SignalStatus is the lifecycle state of a signal.
type SignalStatus string

const (
	StatusActive     SignalStatus = "ACTIVE"
	StatusHitTarget1 SignalStatus = "HIT_TARGET_1"
	StatusHitTarget2 SignalStatus = "HIT_TARGET_2"
	StatusStoppedOut SignalStatus = "STOPPED_OUT"
	StatusExpired    SignalStatus = "EXPIRED"
)

// IsTerminal reports whether the status ends lifecycle tracking.
func (s SignalStatus) IsTerminal() bool {
	switch s {
	case StatusHitTarget2, StatusStoppedOut, StatusExpired:
		return true
	}
	return false
}

// PriceBar is one daily OHLCV bar. Bars are ordered chronologically per
// symbol and immutable once recorded.
type PriceBar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// IsValid checks the OHLC containment invariant.
func (b PriceBar) IsValid() bool {
	if b.Volume < 0 {
		return false
	}
	hi := b.Open
	if b.Close > hi {
		hi = b.Close
	}
	if b.Low > hi {
		hi = b.Low
	}
	lo := b.Open
	if b.Close < lo {
		lo = b.Close
	}
	if b.High < lo {
		lo = b.High
	}
	return b.High >= hi && b.Low <= lo
}

// DateKey formats a time as the canonical per-day key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDay reports whether two timestamps fall on the same calendar day (UTC).
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// IndicatorSnapshot holds per-day derived indicator values for one symbol.
// A nil field means the trailing window for that indicator is not yet
// satisfied; zero is a legitimate value and never stands in for "no data".
type IndicatorSnapshot struct {
	Symbol string
	Date   time.Time

	SMA20  *float64
	SMA50  *float64
	SMA100 *float64
	EMA20  *float64
	EMA50  *float64

	RSI14 *float64
	ATR14 *float64

	SupertrendValue     *float64
	SupertrendUpper     *float64
	SupertrendLower     *float64
	SupertrendDirection TrendDirection // empty until the 10-bar ATR window fills

	VolumeAvg20 *float64
	VolumeRatio *float64

	Close float64
}

// ScoreBreakdown holds the five component scores and the weighted total for
// one symbol on one day. Recomputed fresh each run, never mutated.
type ScoreBreakdown struct {
	Symbol string
	Date   time.Time

	MAAlignment float64
	Supertrend  float64
	RSI         float64
	Volume      float64
	Sentiment   float64

	TotalScore float64
	IsBullish  bool
	IsBearish  bool

	// SentimentDegraded marks a breakdown whose sentiment input fell back
	// to neutral because the external provider failed.
	SentimentDegraded bool
}

// ReasonCode enumerates rationale entry categories.
type ReasonCode string

const (
	ReasonMAAlignment        ReasonCode = "MA_ALIGNMENT"
	ReasonSupertrendBullish  ReasonCode = "SUPERTREND_BULLISH"
	ReasonSupertrendBearish  ReasonCode = "SUPERTREND_BEARISH"
	ReasonRSIMomentum        ReasonCode = "RSI_MOMENTUM"
	ReasonVolumeConfirmation ReasonCode = "VOLUME_CONFIRMATION"
	ReasonSentimentPositive  ReasonCode = "SENTIMENT_POSITIVE"
	ReasonSentimentNegative  ReasonCode = "SENTIMENT_NEGATIVE"
	ReasonRSIOverbought      ReasonCode = "RSI_OVERBOUGHT"
	ReasonRSIOversold        ReasonCode = "RSI_OVERSOLD"
	ReasonHighVolatility     ReasonCode = "HIGH_VOLATILITY"
	ReasonSentimentFallback  ReasonCode = "SENTIMENT_FALLBACK"
)

// Reason is one tagged rationale entry.
type Reason struct {
	Code   ReasonCode `json:"code"`
	Detail string     `json:"detail"`
}

// Rationale is the structured explanation attached to a signal. It is
// descriptive only and never feeds back into decisioning.
type Rationale struct {
	Reasons          []Reason `json:"reasons"`
	TechnicalFactors []Reason `json:"technical_factors"`
	RiskFactors      []Reason `json:"risk_factors"`
}

// Signal is a generated trading recommendation. Price fields and dates are
// immutable after creation; only Status (and the advisory Target1Hit /
// trailed StopLoss maintained by the lifecycle tracker) change afterwards.
type Signal struct {
	ID         string
	Symbol     string
	SignalDate time.Time

	Type     SignalType
	Strength SignalStrength

	EntryPrice float64
	Target1    float64
	Target2    float64
	StopLoss   float64

	RiskAmount   float64
	RewardRatio1 float64
	RewardRatio2 float64

	Rationale Rationale

	Status     SignalStatus
	ExpiryDate time.Time

	// Target1Hit records the advisory first-target touch when target_2
	// tracking keeps the signal open.
	Target1Hit bool

	// LastEvaluated is the de-duplication key for lifecycle evaluation:
	// the tracker applies at most one transition per signal per day.
	LastEvaluated time.Time

	CreatedAt time.Time
}

// Transition records one lifecycle status change for reporting.
type Transition struct {
	SignalID     string
	Symbol       string
	From         SignalStatus
	To           SignalStatus
	TriggerPrice float64
	Date         time.Time
	Note         string
}
