package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventAttach EventType = "attach"
	EventDetach EventType = "detach"
)

// NodeEvent describes one bridge operation on a node.
// It never references the node itself, only its identity and observed states.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	NodeID    string    `json:"node_id,omitempty"`

	// Before and After are only meaningful when Observed is true, i.e. when
	// the node could report its own lifecycle.
	Observed bool      `json:"observed"`
	Before   Lifecycle `json:"before"`
	After    Lifecycle `json:"after"`
}

// LifecycleHooks defines callbacks for bridge observability.
// Hooks run synchronously on the caller's goroutine after the operation completes.
type LifecycleHooks struct {
	OnAttach func(*NodeEvent)
	OnDetach func(*NodeEvent)
}
