package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/core"
)

type fakeStore struct {
	open    []core.Signal
	updated []core.Signal
}

func (f *fakeStore) ListOpen(ctx context.Context) ([]core.Signal, error) {
	return f.open, nil
}

func (f *fakeStore) Update(ctx context.Context, sig core.Signal) error {
	f.updated = append(f.updated, sig)
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func buySignal() core.Signal {
	return core.Signal{
		ID:         "sig-1",
		Symbol:     "AAPL",
		SignalDate: day(3),
		Type:       core.SignalBuy,
		EntryPrice: 100,
		Target1:    107.5,
		Target2:    110,
		StopLoss:   95,
		RiskAmount: 5,
		Status:     core.StatusActive,
		ExpiryDate: day(10),
	}
}

func aaplBar(d int, high, low, close float64) core.PriceBar {
	return core.PriceBar{
		Symbol: "AAPL", Date: day(d),
		Open: close, High: high, Low: low, Close: close, Volume: 500000,
	}
}

func newTracker(mutate func(*config.Config)) (*Tracker, *fakeStore) {
	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}
	store := &fakeStore{}
	return New(cfg, store, nil), store
}

func TestEvaluate_StopBeatsTargetsIntraday(t *testing.T) {
	// The bar spans both the stop and target_2; capital protection wins.
	tr, _ := newTracker(nil)
	sig := buySignal()

	transition, changed, err := tr.Evaluate(&sig, aaplBar(4, 111, 94, 108))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected signal modified")
	}
	if sig.Status != core.StatusStoppedOut {
		t.Errorf("status = %s, want STOPPED_OUT", sig.Status)
	}
	if transition == nil || transition.To != core.StatusStoppedOut {
		t.Fatalf("transition = %+v, want STOPPED_OUT", transition)
	}
	if transition.TriggerPrice != 95 {
		t.Errorf("trigger = %f, want stop 95", transition.TriggerPrice)
	}
}

func TestEvaluate_TargetTwoBeatsTargetOne(t *testing.T) {
	tr, _ := newTracker(nil)
	sig := buySignal()

	transition, _, err := tr.Evaluate(&sig, aaplBar(4, 112, 106, 111))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusHitTarget2 {
		t.Errorf("status = %s, want HIT_TARGET_2", sig.Status)
	}
	if transition.TriggerPrice != 110 {
		t.Errorf("trigger = %f, want target2 110", transition.TriggerPrice)
	}
}

func TestEvaluate_TargetOneKeepsSignalOpen(t *testing.T) {
	tr, _ := newTracker(nil)
	sig := buySignal()

	transition, _, err := tr.Evaluate(&sig, aaplBar(4, 108, 104, 107))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusHitTarget1 {
		t.Errorf("status = %s, want HIT_TARGET_1", sig.Status)
	}
	if !sig.Target1Hit {
		t.Error("expected Target1Hit set")
	}
	if sig.Status.IsTerminal() {
		t.Error("HIT_TARGET_1 must stay open while target_2 tracking is on")
	}
	if transition.From != core.StatusActive {
		t.Errorf("from = %s, want ACTIVE", transition.From)
	}

	// Next day the remaining position can still reach target_2.
	transition, _, err = tr.Evaluate(&sig, aaplBar(5, 111, 107, 110))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusHitTarget2 {
		t.Errorf("status = %s, want HIT_TARGET_2", sig.Status)
	}
	if transition.From != core.StatusHitTarget1 {
		t.Errorf("from = %s, want HIT_TARGET_1", transition.From)
	}
}

func TestEvaluate_TrailToBreakeven(t *testing.T) {
	tr, _ := newTracker(func(cfg *config.Config) {
		cfg.Signals.TrailToBreakeven = true
	})
	sig := buySignal()

	_, _, err := tr.Evaluate(&sig, aaplBar(4, 108, 104, 107))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.StopLoss != sig.EntryPrice {
		t.Errorf("stop = %f, want trailed to entry %f", sig.StopLoss, sig.EntryPrice)
	}
}

func TestEvaluate_Target1TerminalWhenTarget2Disabled(t *testing.T) {
	tr, _ := newTracker(func(cfg *config.Config) {
		cfg.Signals.Target2Enabled = false
	})
	sig := buySignal()

	_, _, err := tr.Evaluate(&sig, aaplBar(4, 108, 104, 107))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusHitTarget1 {
		t.Errorf("status = %s, want HIT_TARGET_1", sig.Status)
	}

	// Further bars must not advance the resolved signal.
	transition, changed, err := tr.Evaluate(&sig, aaplBar(5, 115, 107, 114))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transition != nil || changed {
		t.Error("resolved HIT_TARGET_1 signal must not be re-evaluated")
	}
}

func TestEvaluate_SellDirections(t *testing.T) {
	tr, _ := newTracker(nil)
	sig := core.Signal{
		ID: "sig-2", Symbol: "AAPL", SignalDate: day(3),
		Type:       core.SignalSell,
		EntryPrice: 100, Target1: 92.5, Target2: 90, StopLoss: 105,
		RiskAmount: 5,
		Status:     core.StatusActive,
		ExpiryDate: day(10),
	}

	// High through the stop wins even though the low reached target_2.
	_, _, err := tr.Evaluate(&sig, aaplBar(4, 106, 89, 104))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusStoppedOut {
		t.Errorf("status = %s, want STOPPED_OUT", sig.Status)
	}
}

func TestEvaluate_Expiry(t *testing.T) {
	tr, _ := newTracker(nil)
	sig := buySignal()

	transition, _, err := tr.Evaluate(&sig, aaplBar(11, 103, 101, 102))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusExpired {
		t.Errorf("status = %s, want EXPIRED", sig.Status)
	}
	if transition.Note != "expired without trigger" {
		t.Errorf("note = %q", transition.Note)
	}
}

func TestEvaluate_ExpiryLosesToTrigger(t *testing.T) {
	// A trigger on the expiry-day bar still fires before expiry.
	tr, _ := newTracker(nil)
	sig := buySignal()

	_, _, err := tr.Evaluate(&sig, aaplBar(11, 111, 106, 110))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != core.StatusHitTarget2 {
		t.Errorf("status = %s, want HIT_TARGET_2 over EXPIRED", sig.Status)
	}
}

func TestEvaluate_SameDayDeduplication(t *testing.T) {
	tr, _ := newTracker(nil)
	sig := buySignal()

	bar := aaplBar(4, 103, 101, 102)
	_, changed, err := tr.Evaluate(&sig, bar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("first evaluation should advance LastEvaluated")
	}

	transition, changed, err := tr.Evaluate(&sig, bar)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transition != nil || changed {
		t.Error("second evaluation on the same day must be a no-op")
	}
}

func TestEvaluate_SymbolMismatch(t *testing.T) {
	tr, _ := newTracker(nil)
	sig := buySignal()

	bar := aaplBar(4, 103, 101, 102)
	bar.Symbol = "MSFT"
	if _, _, err := tr.Evaluate(&sig, bar); err == nil {
		t.Error("expected error applying a foreign bar")
	}
}

func TestEvaluateDay_MissingBarIsolated(t *testing.T) {
	tr, store := newTracker(nil)

	other := buySignal()
	other.ID = "sig-9"
	other.Symbol = "MSFT"
	store.open = []core.Signal{buySignal(), other}

	result, err := tr.EvaluateDay(context.Background(), map[string]core.PriceBar{
		"AAPL": aaplBar(4, 112, 106, 111),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Transitions) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(result.Transitions))
	}
	if result.Transitions[0].To != core.StatusHitTarget2 {
		t.Errorf("transition to %s, want HIT_TARGET_2", result.Transitions[0].To)
	}
	if _, ok := result.Failures["MSFT"]; !ok {
		t.Error("expected failure recorded for the symbol without a bar")
	}
	if _, ok := result.Failures["sig-9"]; ok {
		t.Error("failures must be keyed by symbol, not signal ID")
	}
	if len(store.updated) != 1 {
		t.Errorf("expected 1 store update, got %d", len(store.updated))
	}
}
