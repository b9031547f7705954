package backtest

import (
	"sort"

	"github.com/marketlens/marketlens/internal/core"
)

// BuildOutcomes converts replayed signals into realized outcomes.
func BuildOutcomes(signals []core.Signal) []Outcome {
	outcomes := make([]Outcome, 0, len(signals))
	for _, sig := range signals {
		outcomes = append(outcomes, outcomeFor(sig))
	}
	return outcomes
}

func outcomeFor(sig core.Signal) Outcome {
	o := Outcome{Signal: sig}
	if sig.EntryPrice <= 0 || sig.RiskAmount <= 0 {
		return o
	}

	dir := 1.0
	if sig.Type == core.SignalSell {
		dir = -1
	}

	var exit float64
	switch sig.Status {
	case core.StatusHitTarget2:
		exit = sig.Target2
	case core.StatusHitTarget1:
		exit = sig.Target1
	case core.StatusStoppedOut:
		exit = sig.StopLoss
	default:
		return o
	}

	move := dir * (exit - sig.EntryPrice)
	o.Return = move / sig.EntryPrice
	o.RealizedRR = move / sig.RiskAmount
	return o
}

// CalculateStats computes performance statistics from outcomes.
func CalculateStats(outcomes []Outcome) Stats {
	stats := Stats{TotalSignals: len(outcomes)}
	if len(outcomes) == 0 {
		return stats
	}

	var closed int
	var rrSum float64
	var returns []float64

	for _, o := range outcomes {
		switch o.Signal.Status {
		case core.StatusHitTarget1, core.StatusHitTarget2:
			stats.Wins++
		case core.StatusStoppedOut:
			stats.StopOuts++
		case core.StatusExpired:
			stats.Expired++
		default:
			stats.StillOpen++
			continue
		}
		closed++
		rrSum += o.RealizedRR
		stats.TotalReturn += o.Return
		returns = append(returns, o.Return)
	}

	if closed > 0 {
		stats.WinRate = float64(stats.Wins) / float64(closed) * 100
		stats.AvgRealizedRR = rrSum / float64(closed)
	}
	stats.TotalReturn *= 100
	stats.MaxDrawdown = maxDrawdown(returns) * 100

	return stats
}

// SortByDate orders outcomes chronologically by signal date.
func SortByDate(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Signal.SignalDate.Before(outcomes[j].Signal.SignalDate)
	})
}

// maxDrawdown finds the largest peak-to-trough decline of the compounded
// return series.
func maxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var maxDD float64
	var peak float64
	cumulative := 1.0

	for _, r := range returns {
		cumulative *= (1 + r)
		if cumulative > peak {
			peak = cumulative
		}
		if peak > 0 {
			dd := (peak - cumulative) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}
