package signalstore

import (
	"context"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Store defines the interface for signal persistence.
type Store interface {
	// Save persists a newly generated signal.
	Save(ctx context.Context, sig core.Signal) error

	// Update persists lifecycle mutations (status, trailed stop, dedup key).
	Update(ctx context.Context, sig core.Signal) error

	// GetByID retrieves a signal by its ID.
	GetByID(ctx context.Context, id string) (*core.Signal, error)

	// List retrieves signals matching the filter.
	List(ctx context.Context, filter ListFilter) ([]core.Signal, error)

	// ListOpen retrieves all signals still subject to lifecycle tracking.
	ListOpen(ctx context.Context) ([]core.Signal, error)

	// HasActive reports whether the symbol has an outstanding ACTIVE signal.
	HasActive(ctx context.Context, symbol string) (bool, error)

	// ExistsForDate reports whether a signal was already generated for the
	// symbol on the given day. Keeps batch re-runs idempotent.
	ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error)
}

// ListFilter defines criteria for listing signals.
type ListFilter struct {
	Symbol string
	Type   core.SignalType
	Status core.SignalStatus
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
