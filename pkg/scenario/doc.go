/*
Package scenario runs scripted host sessions against the bridge.

A scenario file declares nodes and a sequence of steps played by a single
host. Each step may carry expectations, which makes scenario files a portable
way to pin lifecycle policies:

	name: round-trip
	nodes:
	  - id: leaf
	    kind: router
	steps:
	  - op: attach
	    node: leaf
	    expect: { phase: attached }
	  - op: detach
	    node: leaf
	    expect: { activation: inactive, load: loaded }
	  - op: attach
	    node: leaf
	    expect: { activate_calls: 2, loads: 1 }

# Operations

  - attach, detach: bridge calls made by the host.
  - release: the host drops its reference without any bridge call.
  - collect: wait (up to timeout, default 2s) for the node to be reclaimed.

Steps are decoded with mapstructure, so unknown keys are rejected.
*/
package scenario
