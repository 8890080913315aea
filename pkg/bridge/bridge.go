package bridge

import (
	"log/slog"
	"time"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/ports"
)

// Attach activates the node's unit and then loads the node.
// Both steps complete before Attach returns.
func Attach(node ports.Node) {
	node.Activation().Activate()
	node.Load()
}

// Detach deactivates the node's unit. The node is never unloaded.
func Detach(node ports.Node) {
	node.Activation().Deactivate()
}

// Bridge is a configured Attach/Detach pair that also logs and reports
// lifecycle events. It holds configuration only, never a node.
type Bridge struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets a structured logger for bridge operations.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bridge) {
		b.hooks = hooks
	}
}

// New creates a Bridge.
func New(opts ...Option) *Bridge {
	b := &Bridge{}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	return b
}

// Attach activates then loads node, and reports an EventAttach.
func (b *Bridge) Attach(node ports.Node) {
	before, observed := ports.Inspect(node)
	Attach(node)
	b.report(domain.EventAttach, node, before, observed, b.hooks.OnAttach)
}

// Detach deactivates node, and reports an EventDetach.
func (b *Bridge) Detach(node ports.Node) {
	before, observed := ports.Inspect(node)
	Detach(node)
	b.report(domain.EventDetach, node, before, observed, b.hooks.OnDetach)
}

func (b *Bridge) report(typ domain.EventType, node ports.Node, before domain.Lifecycle, observed bool, hook func(*domain.NodeEvent)) {
	event := &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      typ,
		NodeID:    ports.IDOf(node),
		Observed:  observed,
		Before:    before,
	}
	if observed {
		event.After, _ = ports.Inspect(node)
	}

	b.logger.Debug("bridge "+string(typ),
		"node", event.NodeID,
		"before", event.Before.String(),
		"after", event.After.String(),
		"observed", observed,
	)

	if hook != nil {
		hook(event)
	}
}
