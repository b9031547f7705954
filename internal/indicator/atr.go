package indicator

import "github.com/marketlens/marketlens/internal/core"

// TrueRange computes the per-bar True Range series. The first bar has no
// previous close, so its true range is high - low.
func TrueRange(bars []core.PriceBar) []float64 {
	result := make([]float64, len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prevClose := bars[i-1].Close
			if d := abs(b.High - prevClose); d > tr {
				tr = d
			}
			if d := abs(b.Low - prevClose); d > tr {
				tr = d
			}
		}
		result[i] = tr
	}
	return result
}

// ATR calculates the Wilder-smoothed Average True Range.
// The first value corresponds to bar index period-1 (the arithmetic mean of
// the first period true ranges); the slice has length len(bars) - period + 1.
func ATR(bars []core.PriceBar, period int) []float64 {
	if period < 1 || len(bars) < period {
		return []float64{}
	}

	tr := TrueRange(bars)
	result := make([]float64, 0, len(bars)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	atr := sum / float64(period)
	result = append(result, atr)

	for i := period; i < len(tr); i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		result = append(result, atr)
	}

	return result
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
