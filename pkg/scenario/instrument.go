package scenario

import (
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/ports"
)

type loadReporter interface {
	Loaded() bool
}

// countedNode forwards every call to the wrapped node and counts it.
type countedNode struct {
	inner ports.Node
	c     *counter
}

type countedUnit struct {
	inner ports.ActivationUnit
	c     *counter
}

// inspectableNode is a countedNode whose wrapped node reports its lifecycle.
type inspectableNode struct {
	countedNode
}

func instrument(n ports.Node, c *counter) ports.Node {
	base := countedNode{inner: n, c: c}
	if _, ok := n.(ports.Inspectable); ok {
		return &inspectableNode{base}
	}
	return &base
}

func (n *countedNode) NodeID() string { return ports.IDOf(n.inner) }

func (n *countedNode) Activation() ports.ActivationUnit {
	return countedUnit{inner: n.inner.Activation(), c: n.c}
}

func (n *countedNode) Load() {
	before, known := n.loaded()
	n.inner.Load()
	after, _ := n.loaded()
	n.c.bump(func(c *Calls) {
		if !known {
			// Opaque nodes are assumed to load on their first call.
			before, after = c.LoadCalls > 0, true
		}
		c.LoadCalls++
		if !before && after {
			c.Loads++
		}
	})
}

func (n *countedNode) loaded() (bool, bool) {
	if r, ok := n.inner.(loadReporter); ok {
		return r.Loaded(), true
	}
	if l, ok := ports.Inspect(n.inner); ok {
		return l.Load == domain.Loaded, true
	}
	return false, false
}

func (n *inspectableNode) Lifecycle() domain.Lifecycle {
	l, _ := ports.Inspect(n.inner)
	return l
}

func (u countedUnit) Activate() {
	u.c.bump(func(c *Calls) { c.ActivateCalls++ })
	u.inner.Activate()
}

func (u countedUnit) Deactivate() {
	u.c.bump(func(c *Calls) { c.DeactivateCalls++ })
	u.inner.Deactivate()
}
