package notifier

import (
	"context"

	"github.com/marketlens/marketlens/internal/core"
)

// Notifier delivers new signals and lifecycle transitions to an external
// channel. Delivery is best effort; the pipeline records failures and moves on.
type Notifier interface {
	// Name returns the unique identifier for this notifier.
	Name() string

	// SendSignals delivers a batch of freshly generated signals.
	SendSignals(ctx context.Context, signals []core.Signal) error

	// SendTransitions delivers a batch of lifecycle transitions.
	SendTransitions(ctx context.Context, transitions []core.Transition) error
}
