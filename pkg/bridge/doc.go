/*
Package bridge attaches graft nodes to hosts that are not part of a node tree.

Inside a tree, a parent node activates, loads and retains its children. A host
outside the tree (a presentation container owned by other code, an HTTP
handler, a CLI) has no such container, so it uses this package instead:

	bridge.Attach(node) // activate, then load
	...
	bridge.Detach(node) // deactivate; the node stays loaded

The bridge is stateless and never retains the node. The host must hold its own
reference from before Attach until after the matching Detach. A node whose last
reference is dropped without Detach is collected without ever being
deactivated; that is a caller bug which only tests can detect (see package
lifetime).

Calls on the same node must be serialized by the host. Whether repeated
Attach or Detach calls are harmless is decided by the node's own units; the
bridge passes every call through.
*/
package bridge
