package backtest

import (
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Result holds the complete replay output.
type Result struct {
	StartDate   time.Time
	EndDate     time.Time
	DaysRun     int
	Signals     []core.Signal
	Transitions []core.Transition
	Stats       Stats
}

// Outcome is one signal's realized result after the replay.
type Outcome struct {
	Signal core.Signal
	// Return is the realized fractional price move, signed so that a
	// favorable move is positive for both BUY and SELL signals.
	Return float64
	// RealizedRR is the realized reward measured in risk units. Stopped
	// out is -1, expiry is 0.
	RealizedRR float64
}

// Stats holds replay performance statistics.
type Stats struct {
	TotalSignals  int
	Wins          int     // closed at target 1 or target 2
	StopOuts      int
	Expired       int
	StillOpen     int
	WinRate       float64 // percentage of closed signals that hit a target
	AvgRealizedRR float64 // mean realized reward in risk units
	TotalReturn   float64 // net return percentage across closed signals
	MaxDrawdown   float64 // largest peak-to-trough decline, percentage
}

// IsClosed reports whether the signal produced a realized result. Signals
// that hit target 1 count as closed even when target 2 is still pending.
func (o Outcome) IsClosed() bool {
	return o.Signal.Status.IsTerminal() || o.Signal.Status == core.StatusHitTarget1
}

// IsWin reports whether the signal reached a target.
func (o Outcome) IsWin() bool {
	return o.Signal.Status == core.StatusHitTarget1 || o.Signal.Status == core.StatusHitTarget2
}
