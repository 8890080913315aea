/*
Package domain contains the core lifecycle model shared by every graft component.

A node is observed along two independent axes: whether its business-logic unit
is active, and whether its loadable part has been loaded. This package names
those axes, the phases their combinations form, and the events emitted when a
host attaches or detaches a node. It is kept free of I/O so that adapters and
the bridge can depend on it without cycles.

# Key Entities

  - ActivationState: Inactive or Active.
  - LoadState: Unloaded or Loaded. Loading is one-way.
  - Lifecycle: the two-axis snapshot of a node, with a derived Phase.
  - NodeEvent: what a bridge reports when it attaches or detaches a node.
  - LifecycleHooks: callbacks for observing those events.
*/
package domain
