package signalstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketlens/marketlens/internal/core"
)

func sig(id, symbol string, status core.SignalStatus, day int) core.Signal {
	return core.Signal{
		ID:         id,
		Symbol:     symbol,
		SignalDate: time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		Type:       core.SignalBuy,
		Status:     status,
	}
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusActive, 3)))

	got, err := store.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusActive, 3)))
	err := store.Save(ctx, sig("s1", "AAPL", core.StatusActive, 4))
	assert.ErrorIs(t, err, core.ErrSignalExists)
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	s := sig("s1", "AAPL", core.StatusActive, 3)
	require.NoError(t, store.Save(ctx, s))

	s.Status = core.StatusStoppedOut
	require.NoError(t, store.Update(ctx, s))

	got, err := store.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusStoppedOut, got.Status)

	assert.ErrorIs(t, store.Update(ctx, sig("nope", "AAPL", core.StatusActive, 3)), core.ErrNotFound)
}

func TestMemoryStore_HasActive(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusHitTarget1, 3)))
	require.NoError(t, store.Save(ctx, sig("s2", "MSFT", core.StatusActive, 3)))

	// HIT_TARGET_1 keeps the signal open but no longer blocks new entries.
	active, err := store.HasActive(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = store.HasActive(ctx, "MSFT")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestMemoryStore_ListOpen(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusActive, 3)))
	require.NoError(t, store.Save(ctx, sig("s2", "MSFT", core.StatusHitTarget1, 3)))
	require.NoError(t, store.Save(ctx, sig("s3", "GOOG", core.StatusStoppedOut, 3)))
	require.NoError(t, store.Save(ctx, sig("s4", "AMZN", core.StatusExpired, 3)))

	open, err := store.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "s1", open[0].ID)
	assert.Equal(t, "s2", open[1].ID)
}

func TestMemoryStore_ExistsForDate(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusExpired, 3)))

	// Status does not matter, only (symbol, day).
	exists, err := store.ExistsForDate(ctx, "AAPL", time.Date(2024, 6, 3, 16, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsForDate(ctx, "AAPL", time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.ExistsForDate(ctx, "MSFT", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_ListFilters(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusActive, 3)))
	require.NoError(t, store.Save(ctx, sig("s2", "AAPL", core.StatusStoppedOut, 4)))
	require.NoError(t, store.Save(ctx, sig("s3", "MSFT", core.StatusActive, 5)))

	bySymbol, err := store.List(ctx, ListFilter{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)

	byStatus, err := store.List(ctx, ListFilter{Status: core.StatusActive})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byRange, err := store.List(ctx, ListFilter{
		From: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, byRange, 2)
	assert.Equal(t, "s2", byRange[0].ID)

	paged, err := store.List(ctx, ListFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "s2", paged[0].ID)
}

func TestMemoryStore_CapacityTrim(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sig("s1", "AAPL", core.StatusExpired, 1)))
	require.NoError(t, store.Save(ctx, sig("s2", "MSFT", core.StatusExpired, 2)))
	require.NoError(t, store.Save(ctx, sig("s3", "GOOG", core.StatusActive, 3)))

	_, err := store.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := store.GetByID(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, "GOOG", got.Symbol)
}
