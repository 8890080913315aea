package graft

import (
	"log/slog"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/bridge"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/observability"
	"github.com/aretw0/graft/pkg/ports"
)

// Version is the current graft release.
const Version = "0.1.0"

// Attach activates the node's unit and then loads the node.
func Attach(node ports.Node) { bridge.Attach(node) }

// Detach deactivates the node's unit without unloading it.
func Detach(node ports.Node) { bridge.Detach(node) }

// Host is the host-side entry point for attaching nodes. Embed it in the
// type that owns the nodes. A Host never stores the nodes it attaches.
type Host struct {
	Name   string
	bridge *bridge.Bridge
}

type hostConfig struct {
	logger  *slog.Logger
	hooks   []domain.LifecycleHooks
	metrics *observability.Metrics
}

// Option defines a functional option for configuring a Host.
type Option func(*hostConfig)

// WithLogger sets a custom structured logger for the host.
func WithLogger(logger *slog.Logger) Option {
	return func(c *hostConfig) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. It can be repeated.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *hostConfig) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithMetrics feeds attach/detach traffic into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *hostConfig) {
		c.metrics = m
	}
}

// NewHost creates a configured Host.
func NewHost(name string, opts ...Option) *Host {
	cfg := &hostConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if name != "" {
		cfg.logger = cfg.logger.With("host", name)
	}

	hooks := cfg.hooks
	if cfg.metrics != nil {
		hooks = append(hooks, cfg.metrics.Hooks())
	}

	return &Host{
		Name: name,
		bridge: bridge.New(
			bridge.WithLogger(cfg.logger),
			bridge.WithLifecycleHooks(observability.ComposeHooks(hooks...)),
		),
	}
}

// AttachNode activates then loads node. The caller must keep node reachable
// until the matching DetachNode.
func (h *Host) AttachNode(node ports.Node) {
	if h.bridge == nil {
		bridge.Attach(node)
		return
	}
	h.bridge.Attach(node)
}

// DetachNode deactivates node. The caller should drop its reference afterwards
// if the node is no longer needed.
func (h *Host) DetachNode(node ports.Node) {
	if h.bridge == nil {
		bridge.Detach(node)
		return
	}
	h.bridge.Detach(node)
}
