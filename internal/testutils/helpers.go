package testutils

import (
	"sync"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/interactor"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/router"
)

// Counts is a snapshot of what a Recorder has seen.
// *Calls count every call made on the node; the other fields count effective
// transitions only.
type Counts struct {
	ActivateCalls   int
	DeactivateCalls int
	LoadCalls       int

	Activations   int
	Deactivations int
	Loads         int
}

// Recorder collects the ordered call log of an instrumented node.
// It is allocated separately so a test can keep it after dropping the node.
type Recorder struct {
	mu     sync.Mutex
	events []string
	counts Counts
}

func (r *Recorder) record(event string, bump func(*Counts)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if bump != nil {
		bump(&r.counts)
	}
}

// Events returns the call log, e.g. "activate:begin", "didBecomeActive", "load:end".
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Counts returns a snapshot of the counters.
func (r *Recorder) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts
}

// Node is a ports.Node backed by a real interactor and router, wrapped so
// that every call and every effective transition is recorded.
type Node struct {
	id     string
	unit   *Unit
	router *router.Router
	rec    *Recorder
}

// Unit wraps an interactor and records calls on it.
type Unit struct {
	inner *interactor.Interactor
	rec   *Recorder
}

var (
	_ ports.Node         = (*Node)(nil)
	_ ports.Identifiable = (*Node)(nil)
	_ ports.Inspectable  = (*Node)(nil)
)

// NewNode builds an instrumented node and the recorder observing it.
func NewNode(id string) (*Node, *Recorder) {
	rec := &Recorder{}
	inner := interactor.New(
		interactor.WithDidBecomeActive(func() {
			rec.record("didBecomeActive", func(c *Counts) { c.Activations++ })
		}),
		interactor.WithWillResignActive(func() {
			rec.record("willResignActive", func(c *Counts) { c.Deactivations++ })
		}),
	)
	r := router.New(id, inner, router.WithDidLoad(func() {
		rec.record("didLoad", func(c *Counts) { c.Loads++ })
	}))
	return &Node{
		id:     id,
		unit:   &Unit{inner: inner, rec: rec},
		router: r,
		rec:    rec,
	}, rec
}

func (u *Unit) Activate() {
	u.rec.record("activate:begin", func(c *Counts) { c.ActivateCalls++ })
	u.inner.Activate()
	u.rec.record("activate:end", nil)
}

func (u *Unit) Deactivate() {
	u.rec.record("deactivate:begin", func(c *Counts) { c.DeactivateCalls++ })
	u.inner.Deactivate()
	u.rec.record("deactivate:end", nil)
}

func (u *Unit) IsActive() bool { return u.inner.IsActive() }

func (n *Node) NodeID() string                   { return n.id }
func (n *Node) Activation() ports.ActivationUnit { return n.unit }
func (n *Node) Lifecycle() domain.Lifecycle      { return n.router.Lifecycle() }

func (n *Node) Load() {
	n.rec.record("load:begin", func(c *Counts) { c.LoadCalls++ })
	n.router.Load()
	n.rec.record("load:end", nil)
}
