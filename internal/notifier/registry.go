package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/marketlens/marketlens/internal/core"
)

// Registry manages notifier instances and fans deliveries out to all of them.
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
}

// NewRegistry creates an empty notifier registry.
func NewRegistry() *Registry {
	return &Registry{
		notifiers: make(map[string]Notifier),
	}
}

// Register adds a notifier to the registry.
func (r *Registry) Register(n Notifier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if _, exists := r.notifiers[name]; exists {
		return fmt.Errorf("notifier %s already registered", name)
	}

	r.notifiers[name] = n
	return nil
}

// Get retrieves a notifier by name.
func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, exists := r.notifiers[name]
	if !exists {
		return nil, fmt.Errorf("notifier %s not found", name)
	}
	return n, nil
}

// Len returns the number of registered notifiers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notifiers)
}

// NotifySignals sends the batch to every notifier and collects per-notifier
// failures. One failing channel never blocks the others.
func (r *Registry) NotifySignals(ctx context.Context, signals []core.Signal) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errors := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.SendSignals(ctx, signals); err != nil {
			errors[name] = err
		}
	}
	return errors
}

// NotifyTransitions sends the transition batch to every notifier.
func (r *Registry) NotifyTransitions(ctx context.Context, transitions []core.Transition) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	errors := make(map[string]error)
	for name, n := range r.notifiers {
		if err := n.SendTransitions(ctx, transitions); err != nil {
			errors[name] = err
		}
	}
	return errors
}
