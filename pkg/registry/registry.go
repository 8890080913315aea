package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/interactor"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/router"
)

// Factory builds a fresh, detached node with the given ID.
// Construction is the factory's concern; the registry only looks it up.
type Factory func(id string) (ports.Node, error)

// KindRouter is the built-in kind: an interactor owned by a router.
const KindRouter = "router"

// Registry manages the node kinds a host can build on demand.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Default creates a registry with the built-in kinds registered.
func Default(logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register(KindRouter, RouterFactory(logger))
	return r
}

// Register adds a factory to the registry.
// If a factory with the same kind exists, it is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = fn
}

// Build looks up a factory by kind and builds a node with it.
func (r *Registry) Build(kind, id string) (ports.Node, error) {
	r.mu.RLock()
	fn, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}

	node, err := fn(id)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s node %q: %w", kind, id, err)
	}
	return node, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// RouterFactory builds router nodes whose callbacks only log.
func RouterFactory(logger *slog.Logger) Factory {
	return func(id string) (ports.Node, error) {
		if id == "" {
			return nil, fmt.Errorf("node id is required")
		}
		log := logger.With("node", id)
		unit := interactor.New(
			interactor.WithLogger(log),
			interactor.WithDidBecomeActive(func() { log.Debug("did become active") }),
			interactor.WithWillResignActive(func() { log.Debug("will resign active") }),
		)
		return router.New(id, unit,
			router.WithLogger(logger),
			router.WithDidLoad(func() { log.Debug("did load") }),
		), nil
	}
}
