// Package nodehost is a host that builds and retains nodes by ID and drives
// the bridge on request. Transport adapters (HTTP, MCP) share it.
//
// The Host keeps the only strong reference to each node it builds. Release
// drops that reference without detaching, exactly like a host that forgets
// its obligation; a lifetime probe then reports when the node is reclaimed.
package nodehost

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/graft"
	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/adapters/memory"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/lifetime"
	"github.com/aretw0/graft/pkg/observability"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/registry"
)

// JournalTimeout bounds each journal append made from a bridge hook.
const JournalTimeout = 2 * time.Second

// NodeView describes a retained node.
type NodeView struct {
	ID         string                 `json:"id"`
	Kind       string                 `json:"kind"`
	Observed   bool                   `json:"observed"`
	Activation domain.ActivationState `json:"activation"`
	Load       domain.LoadState       `json:"load"`
	Phase      domain.Phase           `json:"phase,omitempty"`
}

// ReleasedView describes a node the host no longer references.
type ReleasedView struct {
	ID        string `json:"id"`
	Attached  bool   `json:"attached"`
	Detached  bool   `json:"detached"`
	Collected bool   `json:"collected"`
}

type entry struct {
	op sync.Mutex // serializes bridge calls and release of this node

	// Guarded by Host.mu.
	node     ports.Node // nil once released
	kind     string
	live     bool
	attached bool // attached at least once
	probe    *lifetime.Probe
}

type releasedEntry struct {
	attached bool
	detached bool
	probe    *lifetime.Probe
}

// Host retains nodes by ID. It is safe for concurrent use. Bridge calls on
// one node are serialized; they never block reads or calls on other nodes,
// even while slow hooks run.
type Host struct {
	graft.Host

	mu       sync.Mutex // guards the maps and entry state; never held across a bridge call
	nodes    map[string]*entry
	released map[string]releasedEntry

	registry *registry.Registry
	journal  ports.EventJournal
	logger   *slog.Logger
}

type config struct {
	logger   *slog.Logger
	registry *registry.Registry
	journal  ports.EventJournal
	metrics  *observability.Metrics
	hooks    []domain.LifecycleHooks
}

// Option configures the Host.
type Option func(*config)

// WithLogger configures a logger for the Host and its bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegistry sets the node kinds the host can build.
func WithRegistry(r *registry.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithJournal records every bridge event in j. The default is an in-memory
// journal.
func WithJournal(j ports.EventJournal) Option {
	return func(c *config) {
		c.journal = j
	}
}

// WithMetrics feeds attach/detach traffic into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithLifecycleHooks adds hooks to the host's bridge. It can be repeated.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks)
	}
}

// New creates a Host.
func New(name string, opts ...Option) *Host {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.registry == nil {
		cfg.registry = registry.Default(cfg.logger)
	}
	if cfg.journal == nil {
		cfg.journal = memory.NewJournal(memory.DefaultCapacity)
	}

	// Journals that carry their own hooks (Redis) keep their own timeout.
	journalHooks := observability.JournalHooks(cfg.journal, cfg.logger, JournalTimeout)
	if hooked, ok := cfg.journal.(interface{ Hooks() domain.LifecycleHooks }); ok {
		journalHooks = hooked.Hooks()
	}

	hostOpts := []graft.Option{
		graft.WithLogger(cfg.logger),
		graft.WithLifecycleHooks(observability.LoggingHooks(cfg.logger)),
		graft.WithLifecycleHooks(journalHooks),
	}
	if cfg.metrics != nil {
		hostOpts = append(hostOpts, graft.WithMetrics(cfg.metrics))
	}
	for _, h := range cfg.hooks {
		hostOpts = append(hostOpts, graft.WithLifecycleHooks(h))
	}

	return &Host{
		Host:     *graft.NewHost(name, hostOpts...),
		nodes:    make(map[string]*entry),
		released: make(map[string]releasedEntry),
		registry: cfg.registry,
		journal:  cfg.journal,
		logger:   cfg.logger,
	}
}

// Kinds lists the node kinds Create accepts.
func (h *Host) Kinds() []string {
	return h.registry.Kinds()
}

// Create builds a detached node of the given kind and retains it.
func (h *Host) Create(id, kind string) (NodeView, error) {
	if id == "" {
		return NodeView{}, fmt.Errorf("%w: id is required", domain.ErrInvalidNode)
	}
	if kind == "" {
		kind = registry.KindRouter
	}

	h.mu.Lock()
	_, exists := h.nodes[id]
	h.mu.Unlock()
	if exists {
		return NodeView{}, fmt.Errorf("%w: %s", domain.ErrNodeExists, id)
	}

	node, err := h.registry.Build(kind, id)
	if err != nil {
		return NodeView{}, err
	}

	e := &entry{node: node, kind: kind}
	if probe, err := lifetime.TrackAny(node, id); err == nil {
		e.probe = probe
	} else {
		h.logger.Debug("node not tracked", "node", id, "error", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.nodes[id]; exists {
		return NodeView{}, fmt.Errorf("%w: %s", domain.ErrNodeExists, id)
	}
	h.nodes[id] = e
	delete(h.released, id)
	return viewOf(id, kind, node), nil
}

// List returns every retained node sorted by ID.
func (h *Host) List() []NodeView {
	type snapshot struct {
		id, kind string
		node     ports.Node
	}
	h.mu.Lock()
	snaps := make([]snapshot, 0, len(h.nodes))
	for id, e := range h.nodes {
		snaps = append(snaps, snapshot{id: id, kind: e.kind, node: e.node})
	}
	h.mu.Unlock()

	views := make([]NodeView, 0, len(snaps))
	for _, sn := range snaps {
		views = append(views, viewOf(sn.id, sn.kind, sn.node))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// Get returns one retained node.
func (h *Host) Get(id string) (NodeView, error) {
	h.mu.Lock()
	e, ok := h.nodes[id]
	var kind string
	var node ports.Node
	if ok {
		kind, node = e.kind, e.node
	}
	h.mu.Unlock()
	if !ok {
		return NodeView{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return viewOf(id, kind, node), nil
}

// Attach activates then loads the node.
func (h *Host) Attach(id string) (NodeView, error) {
	return h.transition(id, true)
}

// Detach deactivates the node.
func (h *Host) Detach(id string) (NodeView, error) {
	return h.transition(id, false)
}

// Release drops the host's reference to the node. It does not detach.
// It waits for an in-flight bridge call on the same node.
func (h *Host) Release(id string) error {
	e, err := h.lookup(id)
	if err != nil {
		return err
	}

	e.op.Lock()
	defer e.op.Unlock()

	h.mu.Lock()
	if h.nodes[id] != e {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	delete(h.nodes, id)
	live := e.live
	h.released[id] = releasedEntry{attached: e.attached, detached: e.attached && !e.live, probe: e.probe}
	e.node = nil
	h.mu.Unlock()

	if live {
		h.logger.Warn("node released while attached; it will never be deactivated", "node", id)
	}
	return nil
}

// Released lists the nodes the host dropped, sorted by ID.
func (h *Host) Released() []ReleasedView {
	h.mu.Lock()
	views := make([]ReleasedView, 0, len(h.released))
	for id, rel := range h.released {
		v := ReleasedView{ID: id, Attached: rel.attached, Detached: rel.detached}
		if rel.probe != nil {
			v.Collected = rel.probe.Collected()
		}
		views = append(views, v)
	}
	h.mu.Unlock()

	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// Events returns up to limit journaled events; limit <= 0 means all.
func (h *Host) Events(ctx context.Context, limit int64) ([]domain.NodeEvent, error) {
	return h.journal.List(ctx, limit)
}

// Probe returns the lifetime probe of a node created by this host, whether
// it is still retained or already released.
func (h *Host) Probe(id string) (*lifetime.Probe, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.nodes[id]; ok && e.probe != nil {
		return e.probe, true
	}
	if rel, ok := h.released[id]; ok && rel.probe != nil {
		return rel.probe, true
	}
	return nil, false
}

func (h *Host) lookup(id string) (*entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return e, nil
}

func (h *Host) transition(id string, attach bool) (NodeView, error) {
	e, err := h.lookup(id)
	if err != nil {
		return NodeView{}, err
	}

	e.op.Lock()
	defer e.op.Unlock()

	h.mu.Lock()
	node, kind := e.node, e.kind
	h.mu.Unlock()
	if node == nil {
		return NodeView{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}

	if attach {
		h.AttachNode(node)
	} else {
		h.DetachNode(node)
	}

	h.mu.Lock()
	e.live = attach
	if attach {
		e.attached = true
	}
	h.mu.Unlock()

	return viewOf(id, kind, node), nil
}

func viewOf(id, kind string, node ports.Node) NodeView {
	v := NodeView{ID: id, Kind: kind}
	if l, ok := ports.Inspect(node); ok {
		v.Observed = true
		v.Activation = l.Activation
		v.Load = l.Load
		v.Phase = l.Phase()
	}
	return v
}
