package indicator

import (
	"github.com/marketlens/marketlens/internal/core"
)

// Standard windows for the daily snapshot.
const (
	SMAShortPeriod  = 20
	SMAMidPeriod    = 50
	SMALongPeriod   = 100
	EMAShortPeriod  = 20
	EMAMidPeriod    = 50
	RSIPeriod       = 14
	ATRPeriod       = 14
	SupertrendPer   = 10
	SupertrendMult  = 3.0
	VolumeAvgPeriod = 20
)

// ComputeSeries turns an ordered bar sequence for one symbol into one
// IndicatorSnapshot per bar. Indicators whose trailing window is not yet
// satisfied are left nil on the snapshot; a short history never blocks the
// indicators whose window is full.
func ComputeSeries(bars []core.PriceBar) ([]core.IndicatorSnapshot, error) {
	if len(bars) == 0 {
		return nil, core.ErrNoData
	}
	for _, b := range bars {
		if !b.IsValid() {
			return nil, core.WrapError(core.ErrInvalidBar, nil)
		}
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = float64(b.Volume)
	}

	sma20 := SMA(closes, SMAShortPeriod)
	sma50 := SMA(closes, SMAMidPeriod)
	sma100 := SMA(closes, SMALongPeriod)
	ema20 := EMA(closes, EMAShortPeriod)
	ema50 := EMA(closes, EMAMidPeriod)
	rsi14 := RSI(closes, RSIPeriod)
	atr14 := ATR(bars, ATRPeriod)
	st := Supertrend(bars, SupertrendPer, SupertrendMult)
	volAvg := SMA(volumes, VolumeAvgPeriod)

	snapshots := make([]core.IndicatorSnapshot, len(bars))
	for i, b := range bars {
		snap := core.IndicatorSnapshot{
			Symbol: b.Symbol,
			Date:   b.Date,
			Close:  b.Close,
		}

		snap.SMA20 = at(sma20, i, SMAShortPeriod-1)
		snap.SMA50 = at(sma50, i, SMAMidPeriod-1)
		snap.SMA100 = at(sma100, i, SMALongPeriod-1)
		snap.EMA20 = at(ema20, i, EMAShortPeriod-1)
		snap.EMA50 = at(ema50, i, EMAMidPeriod-1)
		snap.RSI14 = at(rsi14, i, RSIPeriod)
		snap.ATR14 = at(atr14, i, ATRPeriod-1)

		if i >= SupertrendPer-1 {
			p := st[i-(SupertrendPer-1)]
			v, up, lo := p.Value, p.Upper, p.Lower
			snap.SupertrendValue = &v
			snap.SupertrendUpper = &up
			snap.SupertrendLower = &lo
			snap.SupertrendDirection = p.Direction
		}

		if avg := at(volAvg, i, VolumeAvgPeriod-1); avg != nil {
			snap.VolumeAvg20 = avg
			if *avg > 0 {
				ratio := float64(b.Volume) / *avg
				snap.VolumeRatio = &ratio
			}
		}

		snapshots[i] = snap
	}

	return snapshots, nil
}

// Latest computes the snapshot for the most recent bar only.
func Latest(bars []core.PriceBar) (*core.IndicatorSnapshot, error) {
	series, err := ComputeSeries(bars)
	if err != nil {
		return nil, err
	}
	snap := series[len(series)-1]
	return &snap, nil
}

// at maps bar index i into a series whose first value corresponds to bar
// index firstIdx, returning nil while the window is unsatisfied.
func at(series []float64, i, firstIdx int) *float64 {
	if i < firstIdx || i-firstIdx >= len(series) {
		return nil
	}
	v := series[i-firstIdx]
	return &v
}
