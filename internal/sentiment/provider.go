package sentiment

import (
	"context"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Provider supplies one aggregated sentiment score in [-1, 1] per stock per
// day. A provider failure is surfaced as an error; the pipeline substitutes
// a neutral score and flags the breakdown as sentiment-degraded.
type Provider interface {
	Name() string
	Score(ctx context.Context, symbol string, date time.Time) (float64, error)
}

// StaticProvider returns pre-configured scores. Used in tests and for
// offline runs.
type StaticProvider struct {
	scores map[string]float64
}

// NewStaticProvider creates a provider with fixed per-symbol scores.
func NewStaticProvider(scores map[string]float64) *StaticProvider {
	return &StaticProvider{scores: scores}
}

func (p *StaticProvider) Name() string { return "static" }

// Score returns the configured score, or an error for unknown symbols.
func (p *StaticProvider) Score(ctx context.Context, symbol string, date time.Time) (float64, error) {
	s, ok := p.scores[symbol]
	if !ok {
		return 0, core.ErrSentimentUnavailable
	}
	return clamp(s), nil
}

// RetryProvider retries a flaky provider with a fixed backoff. Sentiment is
// the pipeline's only network-bound input; retries happen here so the
// CPU-bound math never waits on policy.
type RetryProvider struct {
	inner    Provider
	attempts int
	backoff  time.Duration
}

// NewRetryProvider wraps a provider with bounded retries.
func NewRetryProvider(inner Provider, attempts int, backoff time.Duration) *RetryProvider {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryProvider{inner: inner, attempts: attempts, backoff: backoff}
}

func (p *RetryProvider) Name() string { return p.inner.Name() }

// Score delegates to the wrapped provider, retrying on failure.
func (p *RetryProvider) Score(ctx context.Context, symbol string, date time.Time) (float64, error) {
	var lastErr error
	for i := 0; i < p.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(p.backoff):
			}
		}
		score, err := p.inner.Score(ctx, symbol, date)
		if err == nil {
			return score, nil
		}
		lastErr = err
	}
	return 0, core.WrapError(core.ErrSentimentUnavailable, lastErr)
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
