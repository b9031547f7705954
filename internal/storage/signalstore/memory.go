package signalstore

import (
	"context"
	"sync"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// MemoryStore is an in-memory signal store.
type MemoryStore struct {
	signals []core.Signal
	byID    map[string]int
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		signals: make([]core.Signal, 0, maxSize),
		byID:    make(map[string]int),
		maxSize: maxSize,
	}
}

// Save adds a signal to the store.
func (m *MemoryStore) Save(ctx context.Context, sig core.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[sig.ID]; exists {
		return core.ErrSignalExists
	}

	m.signals = append(m.signals, sig)
	m.byID[sig.ID] = len(m.signals) - 1

	// Trim if over capacity (remove oldest)
	if m.maxSize > 0 && len(m.signals) > m.maxSize {
		m.signals = m.signals[len(m.signals)-m.maxSize:]
		m.reindex()
	}

	return nil
}

// Update replaces a stored signal by ID.
func (m *MemoryStore) Update(ctx context.Context, sig core.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, exists := m.byID[sig.ID]
	if !exists {
		return core.ErrNotFound
	}
	m.signals[idx] = sig
	return nil
}

// GetByID retrieves a signal by ID.
func (m *MemoryStore) GetByID(ctx context.Context, id string) (*core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, exists := m.byID[id]
	if !exists {
		return nil, core.ErrNotFound
	}
	sig := m.signals[idx]
	return &sig, nil
}

// List returns signals matching the filter.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Signal
	for _, sig := range m.signals {
		if matches(sig, filter) {
			result = append(result, sig)
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []core.Signal{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// ListOpen returns all signals whose status is not terminal.
func (m *MemoryStore) ListOpen(ctx context.Context) ([]core.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Signal
	for _, sig := range m.signals {
		if !sig.Status.IsTerminal() {
			result = append(result, sig)
		}
	}
	return result, nil
}

// HasActive reports whether the symbol has an ACTIVE signal.
func (m *MemoryStore) HasActive(ctx context.Context, symbol string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sig := range m.signals {
		if sig.Symbol == symbol && sig.Status == core.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

// ExistsForDate reports whether any signal exists for (symbol, day).
func (m *MemoryStore) ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sig := range m.signals {
		if sig.Symbol == symbol && core.SameDay(sig.SignalDate, date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) reindex() {
	m.byID = make(map[string]int, len(m.signals))
	for i := range m.signals {
		m.byID[m.signals[i].ID] = i
	}
}

func matches(sig core.Signal, filter ListFilter) bool {
	if filter.Symbol != "" && sig.Symbol != filter.Symbol {
		return false
	}
	if filter.Type != "" && sig.Type != filter.Type {
		return false
	}
	if filter.Status != "" && sig.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && sig.SignalDate.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && sig.SignalDate.After(filter.To) {
		return false
	}
	return true
}
