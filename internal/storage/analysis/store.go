package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Store persists per-day derived analytics. Writes are idempotent upserts
// keyed by (symbol, date): re-running a day's batch overwrites rather than
// duplicates.
type Store interface {
	SaveSnapshot(ctx context.Context, snap core.IndicatorSnapshot) error
	SaveBreakdown(ctx context.Context, b core.ScoreBreakdown) error
	GetSnapshot(ctx context.Context, symbol string, date time.Time) (*core.IndicatorSnapshot, error)
	GetBreakdown(ctx context.Context, symbol string, date time.Time) (*core.ScoreBreakdown, error)
	ListBreakdowns(ctx context.Context, date time.Time) ([]core.ScoreBreakdown, error)
}

// MemoryStore is the in-memory analysis store.
type MemoryStore struct {
	snapshots  map[string]map[string]core.IndicatorSnapshot
	breakdowns map[string]map[string]core.ScoreBreakdown
	mu         sync.RWMutex
}

// NewMemoryStore creates an empty in-memory analysis store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots:  make(map[string]map[string]core.IndicatorSnapshot),
		breakdowns: make(map[string]map[string]core.ScoreBreakdown),
	}
}

// SaveSnapshot upserts the snapshot for (symbol, date).
func (m *MemoryStore) SaveSnapshot(ctx context.Context, snap core.IndicatorSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate, ok := m.snapshots[snap.Symbol]
	if !ok {
		byDate = make(map[string]core.IndicatorSnapshot)
		m.snapshots[snap.Symbol] = byDate
	}
	byDate[core.DateKey(snap.Date)] = snap
	return nil
}

// SaveBreakdown upserts the breakdown for (symbol, date).
func (m *MemoryStore) SaveBreakdown(ctx context.Context, b core.ScoreBreakdown) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate, ok := m.breakdowns[b.Symbol]
	if !ok {
		byDate = make(map[string]core.ScoreBreakdown)
		m.breakdowns[b.Symbol] = byDate
	}
	byDate[core.DateKey(b.Date)] = b
	return nil
}

// GetSnapshot returns the snapshot for (symbol, date).
func (m *MemoryStore) GetSnapshot(ctx context.Context, symbol string, date time.Time) (*core.IndicatorSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if byDate, ok := m.snapshots[symbol]; ok {
		if snap, ok := byDate[core.DateKey(date)]; ok {
			return &snap, nil
		}
	}
	return nil, core.ErrNotFound
}

// GetBreakdown returns the breakdown for (symbol, date).
func (m *MemoryStore) GetBreakdown(ctx context.Context, symbol string, date time.Time) (*core.ScoreBreakdown, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if byDate, ok := m.breakdowns[symbol]; ok {
		if b, ok := byDate[core.DateKey(date)]; ok {
			return &b, nil
		}
	}
	return nil, core.ErrNotFound
}

// ListBreakdowns returns all breakdowns recorded for a day.
func (m *MemoryStore) ListBreakdowns(ctx context.Context, date time.Time) ([]core.ScoreBreakdown, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := core.DateKey(date)
	var result []core.ScoreBreakdown
	for _, byDate := range m.breakdowns {
		if b, ok := byDate[key]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}
