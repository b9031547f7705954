package indicator

import "github.com/marketlens/marketlens/internal/core"

// SupertrendPoint is one day of SuperTrend state.
type SupertrendPoint struct {
	Value     float64
	Upper     float64
	Lower     float64
	Direction core.TrendDirection
}

// Supertrend calculates the SuperTrend indicator as an explicit fold over
// the bar sequence, carrying the previous final bands and direction.
// The first value corresponds to bar index period-1 (the first bar with an
// ATR value); the slice has length len(bars) - period + 1.
//
// Band recurrence: the final upper band only decreases or carries forward
// while price stays below it, the final lower band only increases or carries
// forward while price stays above it. Direction flips to UP when the close
// crosses above the final lower band, to DOWN when it crosses below the
// final upper band; the value tracks the active band.
func Supertrend(bars []core.PriceBar, period int, multiplier float64) []SupertrendPoint {
	atr := ATR(bars, period)
	if len(atr) == 0 {
		return []SupertrendPoint{}
	}

	offset := period - 1
	result := make([]SupertrendPoint, 0, len(atr))

	// Seed on the first bar with an ATR value. The seed direction is DOWN
	// with the value on the upper band; the fold corrects it on the next
	// close that crosses a band.
	seed := bars[offset]
	mid := (seed.High + seed.Low) / 2
	prev := SupertrendPoint{
		Upper:     mid + multiplier*atr[0],
		Lower:     mid - multiplier*atr[0],
		Direction: core.TrendDown,
	}
	prev.Value = prev.Upper
	result = append(result, prev)

	for i := offset + 1; i < len(bars); i++ {
		bar := bars[i]
		prevClose := bars[i-1].Close
		mid := (bar.High + bar.Low) / 2
		basicUpper := mid + multiplier*atr[i-offset]
		basicLower := mid - multiplier*atr[i-offset]

		curr := SupertrendPoint{Upper: prev.Upper, Lower: prev.Lower}
		if basicUpper < prev.Upper || prevClose > prev.Upper {
			curr.Upper = basicUpper
		}
		if basicLower > prev.Lower || prevClose < prev.Lower {
			curr.Lower = basicLower
		}

		if prev.Direction == core.TrendDown {
			if bar.Close <= curr.Upper {
				curr.Value = curr.Upper
				curr.Direction = core.TrendDown
			} else {
				curr.Value = curr.Lower
				curr.Direction = core.TrendUp
			}
		} else {
			if bar.Close >= curr.Lower {
				curr.Value = curr.Lower
				curr.Direction = core.TrendUp
			} else {
				curr.Value = curr.Upper
				curr.Direction = core.TrendDown
			}
		}

		result = append(result, curr)
		prev = curr
	}

	return result
}
