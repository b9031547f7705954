package prices

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Provider supplies the trailing price window for a symbol. A lookback of
// at least 100 bars unlocks every indicator.
type Provider interface {
	// History returns up to lookback bars ending at or before end, in
	// chronological order.
	History(ctx context.Context, symbol string, end time.Time, lookback int) ([]core.PriceBar, error)
}

// MemoryProvider is an in-memory bar store. Writes are append-only and
// idempotent per (symbol, date): recording the same day twice overwrites.
type MemoryProvider struct {
	bars map[string][]core.PriceBar
	mu   sync.RWMutex
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{bars: make(map[string][]core.PriceBar)}
}

// Record inserts or replaces one bar, keeping the series ordered.
func (p *MemoryProvider) Record(bar core.PriceBar) error {
	if !bar.IsValid() {
		return core.ErrInvalidBar
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	series := p.bars[bar.Symbol]
	for i := range series {
		if core.SameDay(series[i].Date, bar.Date) {
			series[i] = bar
			return nil
		}
	}

	series = append(series, bar)
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	p.bars[bar.Symbol] = series
	return nil
}

// RecordSeries inserts a batch of bars.
func (p *MemoryProvider) RecordSeries(bars []core.PriceBar) error {
	for _, b := range bars {
		if err := p.Record(b); err != nil {
			return err
		}
	}
	return nil
}

// History returns the trailing window for a symbol.
func (p *MemoryProvider) History(ctx context.Context, symbol string, end time.Time, lookback int) ([]core.PriceBar, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	series, ok := p.bars[symbol]
	if !ok {
		return nil, core.ErrSymbolNotFound
	}

	// Trim bars after end.
	cut := len(series)
	for cut > 0 && series[cut-1].Date.After(end) {
		cut--
	}
	window := series[:cut]
	if len(window) == 0 {
		return nil, core.ErrNoData
	}
	if lookback > 0 && len(window) > lookback {
		window = window[len(window)-lookback:]
	}

	result := make([]core.PriceBar, len(window))
	copy(result, window)
	return result, nil
}

// LatestBar returns the most recent bar at or before end.
func (p *MemoryProvider) LatestBar(ctx context.Context, symbol string, end time.Time) (*core.PriceBar, error) {
	bars, err := p.History(ctx, symbol, end, 1)
	if err != nil {
		return nil, err
	}
	bar := bars[len(bars)-1]
	return &bar, nil
}
