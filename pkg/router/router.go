// Package router provides a reference Node: an activation unit paired with a
// load step that runs exactly once and an optional presentation surface.
package router

import (
	"log/slog"
	"sync"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/ports"
)

// activityReporter is implemented by units that can report their state,
// such as *interactor.Interactor.
type activityReporter interface {
	IsActive() bool
}

// Router is a ports.Node. Load is monotonic: the DidLoad callback runs on the
// first call only and later calls are no-ops.
type Router struct {
	id   string
	unit ports.ActivationUnit
	view any

	mu      sync.Mutex
	loaded  bool
	didLoad func()
	logger  *slog.Logger
}

// Ensure Router implements the node capabilities.
var (
	_ ports.Node         = (*Router)(nil)
	_ ports.Identifiable = (*Router)(nil)
	_ ports.Inspectable  = (*Router)(nil)
)

// Option configures a Router.
type Option func(*Router)

// WithDidLoad runs fn on the first Load, e.g. to install view content.
func WithDidLoad(fn func()) Option {
	return func(r *Router) {
		r.didLoad = fn
	}
}

// WithView attaches an optional presentation surface to the router.
func WithView(view any) Option {
	return func(r *Router) {
		r.view = view
	}
}

// WithLogger configures a logger for ignored loads.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates an unloaded Router owning unit.
func New(id string, unit ports.ActivationUnit, opts ...Option) *Router {
	r := &Router{
		id:     id,
		unit:   unit,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("node", id)
	return r
}

// NodeID returns the router identifier.
func (r *Router) NodeID() string { return r.id }

// Activation returns the activation unit owned by this router.
func (r *Router) Activation() ports.ActivationUnit { return r.unit }

// View returns the presentation surface, or nil for view-less routers.
func (r *Router) View() any { return r.view }

// Load transitions to Loaded. Only the first call has an effect.
func (r *Router) Load() {
	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		r.logger.Debug("load ignored", "state", domain.Loaded)
		return
	}
	r.loaded = true
	r.mu.Unlock()

	if r.didLoad != nil {
		r.didLoad()
	}
}

// Loaded reports whether Load has run.
func (r *Router) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Lifecycle returns the two-axis snapshot. Units that cannot report their
// state are seen as Inactive.
func (r *Router) Lifecycle() domain.Lifecycle {
	l := domain.Lifecycle{Activation: domain.Inactive, Load: domain.Unloaded}
	if rep, ok := r.unit.(activityReporter); ok && rep.IsActive() {
		l.Activation = domain.Active
	}
	if r.Loaded() {
		l.Load = domain.Loaded
	}
	return l
}
