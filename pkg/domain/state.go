package domain

import (
	"fmt"
	"strings"
)

// ActivationState is the state of a node's business-logic unit.
type ActivationState int

const (
	// Inactive is the initial state of every activation unit.
	Inactive ActivationState = iota
	// Active means the node is considered live in some tree or host.
	Active
)

func (s ActivationState) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("activation(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ActivationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ActivationState) UnmarshalText(text []byte) error {
	v, err := ParseActivationState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseActivationState parses "active" or "inactive" (case-insensitive).
func ParseActivationState(raw string) (ActivationState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inactive":
		return Inactive, nil
	case "active":
		return Active, nil
	default:
		return Inactive, fmt.Errorf("%w: activation %q", ErrInvalidState, raw)
	}
}

// LoadState is the state of a node's loadable part.
// There is no transition from Loaded back to Unloaded.
type LoadState int

const (
	// Unloaded is the initial state of every loadable.
	Unloaded LoadState = iota
	// Loaded is terminal for the lifetime of the node.
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("load(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LoadState) UnmarshalText(text []byte) error {
	v, err := ParseLoadState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseLoadState parses "loaded" or "unloaded" (case-insensitive).
func ParseLoadState(raw string) (LoadState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unloaded":
		return Unloaded, nil
	case "loaded":
		return Loaded, nil
	default:
		return Unloaded, fmt.Errorf("%w: load %q", ErrInvalidState, raw)
	}
}

// Phase names a combination of the two lifecycle axes.
type Phase string

const (
	// PhaseDetached is a freshly built node: inactive and unloaded.
	PhaseDetached Phase = "detached"
	// PhaseActivating is active but not yet loaded. The bridge only passes
	// through it between the two steps of an attach.
	PhaseActivating Phase = "activating"
	// PhaseAttached is active and loaded.
	PhaseAttached Phase = "attached"
	// PhaseParked is inactive but loaded, i.e. detached after an attach.
	PhaseParked Phase = "parked"
)

// ParsePhase parses one of the phase names.
func ParsePhase(raw string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PhaseDetached, PhaseActivating, PhaseAttached, PhaseParked:
		return p, nil
	default:
		return "", fmt.Errorf("%w: phase %q", ErrInvalidState, raw)
	}
}

// Lifecycle is the two-axis snapshot of a node.
type Lifecycle struct {
	Activation ActivationState `json:"activation" yaml:"activation"`
	Load       LoadState       `json:"load" yaml:"load"`
}

// Phase returns the named phase for this snapshot.
func (l Lifecycle) Phase() Phase {
	switch {
	case l.Activation == Active && l.Load == Loaded:
		return PhaseAttached
	case l.Activation == Active:
		return PhaseActivating
	case l.Load == Loaded:
		return PhaseParked
	default:
		return PhaseDetached
	}
}

// IsLive reports whether the node is considered part of a tree or host.
func (l Lifecycle) IsLive() bool {
	return l.Activation == Active
}

func (l Lifecycle) String() string {
	return l.Activation.String() + "/" + l.Load.String()
}
