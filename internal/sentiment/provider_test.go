package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

type flakyProvider struct {
	failures int
	calls    int
	score    float64
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Score(ctx context.Context, symbol string, date time.Time) (float64, error) {
	p.calls++
	if p.calls <= p.failures {
		return 0, errors.New("transient")
	}
	return p.score, nil
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(map[string]float64{"AAPL": 0.6, "MSFT": 1.7})
	ctx := context.Background()

	score, err := p.Score(ctx, "AAPL", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.6 {
		t.Errorf("score = %f, want 0.6", score)
	}

	// Out-of-range configured values clamp into [-1, 1].
	score, err = p.Score(ctx, "MSFT", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1 {
		t.Errorf("score = %f, want clamped 1", score)
	}

	if _, err := p.Score(ctx, "UNKNOWN", time.Now()); !errors.Is(err, core.ErrSentimentUnavailable) {
		t.Errorf("expected ErrSentimentUnavailable, got %v", err)
	}
}

func TestRetryProvider_RecoversAfterFailures(t *testing.T) {
	inner := &flakyProvider{failures: 2, score: 0.4}
	p := NewRetryProvider(inner, 3, time.Millisecond)

	score, err := p.Score(context.Background(), "AAPL", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.4 {
		t.Errorf("score = %f, want 0.4", score)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryProvider_ExhaustsAttempts(t *testing.T) {
	inner := &flakyProvider{failures: 10}
	p := NewRetryProvider(inner, 3, time.Millisecond)

	_, err := p.Score(context.Background(), "AAPL", time.Now())
	if !errors.Is(err, core.ErrSentimentUnavailable) {
		t.Errorf("expected ErrSentimentUnavailable, got %v", err)
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3", inner.calls)
	}
}

func TestRetryProvider_ContextCancelled(t *testing.T) {
	inner := &flakyProvider{failures: 10}
	p := NewRetryProvider(inner, 5, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Score(ctx, "AAPL", time.Now()); err == nil {
		t.Error("expected error on cancelled context")
	}
}
