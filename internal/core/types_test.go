package core

import (
	"testing"
	"time"
)

func TestSignalStatus_IsTerminal(t *testing.T) {
	terminal := []SignalStatus{StatusHitTarget2, StatusStoppedOut, StatusExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	open := []SignalStatus{StatusActive, StatusHitTarget1}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestPriceBar_IsValid(t *testing.T) {
	tests := []struct {
		name string
		bar  PriceBar
		want bool
	}{
		{"normal", PriceBar{Open: 100, High: 105, Low: 98, Close: 103, Volume: 1000}, true},
		{"flat", PriceBar{Open: 100, High: 100, Low: 100, Close: 100}, true},
		{"high below close", PriceBar{Open: 100, High: 101, Low: 98, Close: 102}, false},
		{"low above open", PriceBar{Open: 100, High: 105, Low: 101, Close: 104}, false},
		{"high below low", PriceBar{Open: 100, High: 97, Low: 98, Close: 97.5}, false},
		{"negative volume", PriceBar{Open: 100, High: 105, Low: 98, Close: 103, Volume: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bar.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)
	nextDay := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Error("same calendar day should match")
	}
	if SameDay(evening, nextDay) {
		t.Error("different days should not match")
	}

	// Comparison happens in UTC regardless of the input zone.
	est := time.FixedZone("EST", -5*3600)
	lateNight := time.Date(2024, 6, 3, 22, 0, 0, 0, est) // 03:00 UTC June 4
	if SameDay(morning, lateNight) {
		t.Error("zone-shifted timestamp crosses the UTC day boundary")
	}
}

func TestDateKey(t *testing.T) {
	d := time.Date(2024, 6, 3, 15, 4, 5, 0, time.UTC)
	if got := DateKey(d); got != "2024-06-03" {
		t.Errorf("DateKey = %q, want 2024-06-03", got)
	}
}
