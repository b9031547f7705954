package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/config"
	"github.com/marketlens/marketlens/internal/core"
	"github.com/marketlens/marketlens/internal/pipeline"
	"github.com/marketlens/marketlens/internal/prices"
	"github.com/marketlens/marketlens/internal/sentiment"
	"github.com/marketlens/marketlens/internal/storage/analysis"
	"github.com/marketlens/marketlens/internal/storage/signalstore"
)

// seedUptrend records a rising daily series for every calendar day ending
// on end, so each replayed weekday finds a fresh bar.
func seedUptrend(t *testing.T, p *prices.MemoryProvider, symbol string, n int, end time.Time) {
	t.Helper()
	price := 100.0
	for i := n - 1; i >= 0; i-- {
		require.NoError(t, p.Record(core.PriceBar{
			Symbol: symbol,
			Date:   end.AddDate(0, 0, -i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price + 0.5,
			Volume: 400000,
		}))
		price += 0.5
	}
}

func newReplayer(t *testing.T) (*Replayer, *prices.MemoryProvider) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Universe = []config.UniverseItem{{Symbol: "UPT", Name: "Uptrend Corp"}}
	cfg.Pipeline.Workers = 2
	cfg.Pipeline.SentimentRetries = 0

	provider := prices.NewMemoryProvider()
	signals := signalstore.NewMemoryStore(1000)
	sentiments := sentiment.NewStaticProvider(map[string]float64{"UPT": 1.0})

	p := pipeline.New(cfg, nil, provider, sentiments, signals, analysis.NewMemoryStore(), pipeline.Options{})
	return New(p, signals, nil), provider
}

func TestReplayer_Run(t *testing.T) {
	r, provider := newReplayer(t)

	// Monday through Friday; history covers every replayed day.
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	seedUptrend(t, provider, "UPT", 125, end)

	result, err := r.Run(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, 5, result.DaysRun)
	require.NotEmpty(t, result.Signals, "sustained uptrend should produce signals")

	stats := result.Stats
	assert.GreaterOrEqual(t, stats.Wins, 1)
	assert.Zero(t, stats.StopOuts, "the trend never revisits a stop")
	assert.Zero(t, stats.Expired)
	if stats.Wins > 0 {
		assert.Equal(t, 100.0, stats.WinRate)
	}
}

func TestReplayer_SkipsWeekends(t *testing.T) {
	r, provider := newReplayer(t)

	// Saturday and Sunday only.
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	seedUptrend(t, provider, "UPT", 120, end)

	result, err := r.Run(context.Background(), start, end)
	require.NoError(t, err)
	assert.Zero(t, result.DaysRun)
	assert.Empty(t, result.Signals)
}

func TestReplayer_RejectsInvertedRange(t *testing.T) {
	r, _ := newReplayer(t)

	start := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	_, err := r.Run(context.Background(), start, end)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}
