package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/marketlens/marketlens/internal/core"
)

type stubNotifier struct {
	name        string
	err         error
	signals     int
	transitions int
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) SendSignals(ctx context.Context, signals []core.Signal) error {
	s.signals += len(signals)
	return s.err
}

func (s *stubNotifier) SendTransitions(ctx context.Context, transitions []core.Transition) error {
	s.transitions += len(transitions)
	return s.err
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&stubNotifier{name: "a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&stubNotifier{name: "a"}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}

	if _, err := r.Get("a"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown notifier")
	}
}

func TestRegistry_FanOutIsolatesFailures(t *testing.T) {
	r := NewRegistry()
	good := &stubNotifier{name: "good"}
	bad := &stubNotifier{name: "bad", err: errors.New("boom")}

	if err := r.Register(good); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(bad); err != nil {
		t.Fatal(err)
	}

	signals := []core.Signal{{ID: "s1"}, {ID: "s2"}}
	errs := r.NotifySignals(context.Background(), signals)

	if len(errs) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(errs))
	}
	if _, ok := errs["bad"]; !ok {
		t.Error("expected failure recorded under the failing notifier")
	}
	if good.signals != 2 {
		t.Errorf("good notifier received %d signals, want 2", good.signals)
	}

	errs = r.NotifyTransitions(context.Background(), []core.Transition{{SignalID: "s1"}})
	if len(errs) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(errs))
	}
	if good.transitions != 1 {
		t.Errorf("good notifier received %d transitions, want 1", good.transitions)
	}
}
