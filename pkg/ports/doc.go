/*
Package ports defines the capabilities a node must expose to be attached by graft.

The bridge never depends on a concrete node type. Anything that can hand out an
ActivationUnit and can be loaded is a Node, regardless of how it is composed
internally.

# Key Interfaces

  - ActivationUnit: the business-logic lifecycle (Activate / Deactivate).
  - Loadable: the one-way load step (Load).
  - Node: a Loadable that owns an ActivationUnit.
  - Identifiable, Inspectable: optional extras used for logs, events and hosts.
*/
package ports
