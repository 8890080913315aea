package ports

import "github.com/aretw0/graft/pkg/domain"

// ActivationUnit is the business-logic lifecycle capability of a node.
type ActivationUnit interface {
	// Activate transitions the unit to Active.
	Activate()
	// Deactivate transitions the unit to Inactive.
	Deactivate()
}

// Loadable is the one-way load capability of a node.
type Loadable interface {
	// Load transitions to Loaded. Implementations must never unload.
	Load()
}

// Node is anything the bridge can attach: a Loadable paired with the
// ActivationUnit it owns.
type Node interface {
	Loadable
	Activation() ActivationUnit
}

// Identifiable is implemented by nodes that carry a stable identifier.
type Identifiable interface {
	NodeID() string
}

// Inspectable is implemented by nodes (or units) that can report their lifecycle.
type Inspectable interface {
	Lifecycle() domain.Lifecycle
}

// IDOf returns the node identifier, or "" when n is not Identifiable.
func IDOf(n any) string {
	if id, ok := n.(Identifiable); ok {
		return id.NodeID()
	}
	return ""
}

// Inspect returns the node lifecycle when n is Inspectable.
func Inspect(n any) (domain.Lifecycle, bool) {
	if in, ok := n.(Inspectable); ok {
		return in.Lifecycle(), true
	}
	return domain.Lifecycle{}, false
}

// Compose pairs an independent ActivationUnit and Loadable into a Node.
// It is the shortest way to bridge collaborators that were not built as one type.
// The result is Inspectable when unit has IsActive() bool and loadable has
// Loaded() bool.
func Compose(unit ActivationUnit, loadable Loadable) Node {
	c := composite{unit: unit, loadable: loadable}
	_, reportsActivity := unit.(activityReporter)
	_, reportsLoad := loadable.(loadReporter)
	if reportsActivity && reportsLoad {
		return inspectableComposite{c}
	}
	return c
}

type activityReporter interface {
	IsActive() bool
}

type loadReporter interface {
	Loaded() bool
}

type composite struct {
	unit     ActivationUnit
	loadable Loadable
}

func (c composite) Load()                      { c.loadable.Load() }
func (c composite) Activation() ActivationUnit { return c.unit }

func (c composite) NodeID() string {
	if id := IDOf(c.loadable); id != "" {
		return id
	}
	return IDOf(c.unit)
}

type inspectableComposite struct {
	composite
}

func (c inspectableComposite) Lifecycle() domain.Lifecycle {
	l := domain.Lifecycle{Activation: domain.Inactive, Load: domain.Unloaded}
	if c.unit.(activityReporter).IsActive() {
		l.Activation = domain.Active
	}
	if c.loadable.(loadReporter).Loaded() {
		l.Load = domain.Loaded
	}
	return l
}
