// Package interactor provides a reference ActivationUnit for graft nodes.
//
// An Interactor holds the business-logic lifecycle of a node. Activating an
// already active interactor, or deactivating an inactive one, is a no-op:
// callbacks and subscribers only observe real transitions.
package interactor

import (
	"log/slog"
	"sync"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
)

// Interactor is an ActivationUnit with optional callbacks and subscribers.
// Its zero value is not usable; build it with New.
type Interactor struct {
	mu    sync.Mutex
	state domain.ActivationState
	subs  []subscription
	next  int

	didBecomeActive  func()
	willResignActive func()
	logger           *slog.Logger
}

type subscription struct {
	id int
	fn func(domain.ActivationState)
}

// Option configures an Interactor.
type Option func(*Interactor)

// WithDidBecomeActive runs fn after every transition to Active.
func WithDidBecomeActive(fn func()) Option {
	return func(i *Interactor) {
		i.didBecomeActive = fn
	}
}

// WithWillResignActive runs fn before every transition to Inactive.
func WithWillResignActive(fn func()) Option {
	return func(i *Interactor) {
		i.willResignActive = fn
	}
}

// WithLogger configures a logger for ignored transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interactor) {
		i.logger = logger
	}
}

// New creates an inactive Interactor.
func New(opts ...Option) *Interactor {
	i := &Interactor{
		state:  domain.Inactive,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Activate transitions to Active. It is a no-op when already active.
func (i *Interactor) Activate() {
	i.mu.Lock()
	if i.state == domain.Active {
		i.mu.Unlock()
		i.logger.Debug("activate ignored", "state", domain.Active)
		return
	}
	i.state = domain.Active
	subs := i.snapshot()
	i.mu.Unlock()

	if i.didBecomeActive != nil {
		i.didBecomeActive()
	}
	notify(subs, domain.Active)
}

// Deactivate transitions to Inactive. It is a no-op when already inactive,
// including on an interactor that was never activated.
func (i *Interactor) Deactivate() {
	i.mu.Lock()
	if i.state == domain.Inactive {
		i.mu.Unlock()
		i.logger.Debug("deactivate ignored", "state", domain.Inactive)
		return
	}
	i.mu.Unlock()

	// willResignActive observes the unit while it is still active.
	if i.willResignActive != nil {
		i.willResignActive()
	}

	i.mu.Lock()
	i.state = domain.Inactive
	subs := i.snapshot()
	i.mu.Unlock()

	notify(subs, domain.Inactive)
}

// IsActive reports whether the interactor is active.
func (i *Interactor) IsActive() bool {
	return i.State() == domain.Active
}

// State returns the current activation state.
func (i *Interactor) State() domain.ActivationState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Subscribe registers fn for every subsequent transition.
// The returned function removes the subscription.
func (i *Interactor) Subscribe(fn func(domain.ActivationState)) (cancel func()) {
	i.mu.Lock()
	defer i.mu.Unlock()

	id := i.next
	i.next++
	i.subs = append(i.subs, subscription{id: id, fn: fn})

	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		for idx, s := range i.subs {
			if s.id == id {
				i.subs = append(i.subs[:idx:idx], i.subs[idx+1:]...)
				return
			}
		}
	}
}

// snapshot must be called with mu held.
func (i *Interactor) snapshot() []subscription {
	if len(i.subs) == 0 {
		return nil
	}
	out := make([]subscription, len(i.subs))
	copy(out, i.subs)
	return out
}

func notify(subs []subscription, state domain.ActivationState) {
	for _, s := range subs {
		s.fn(state)
	}
}
