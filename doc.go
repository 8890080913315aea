/*
Package graft attaches self-contained nodes to hosts that live outside a node tree.

A node pairs a business-logic unit (activated and deactivated as the node
joins or leaves a tree) with a loadable part that installs its content exactly
once. Inside a tree, parents manage this for their children. Graft covers the
boundary: a legacy screen, an HTTP handler or a CLI that wants to host a node
as a leaf without becoming part of the tree itself.

# Concept

The host owns the node. Graft owns nothing:

  - AttachNode activates the node's unit, then loads the node.
  - DetachNode deactivates the unit. The node stays loaded.
  - Neither call retains the node. The host keeps its reference from before
    AttachNode until after DetachNode, and drops it afterwards.

Dropping the reference without DetachNode lets the node be collected without
ever being deactivated. Graft cannot detect this at runtime; use package
lifetime in tests.

# Usage

Embed a Host in whatever owns the node:

	type settingsScreen struct {
		graft.Host
		child *router.Router
	}

	func (s *settingsScreen) open(child *router.Router) {
		s.child = child
		s.AttachNode(child)
	}

	func (s *settingsScreen) close() {
		s.DetachNode(s.child)
		s.child = nil
	}

The zero Host works. Use NewHost to add logging, hooks and metrics.
*/
package graft
