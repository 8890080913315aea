// Package lifetime observes when the garbage collector reclaims an object.
//
// Hosts own the only strong reference to a bridged node. Dropping it without
// a Detach leaves no runtime trace, so the only way to catch the mistake is to
// watch for collection in tests. A Probe does exactly that.
package lifetime

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"
)

// ErrNotCollected is returned by Probe.Wait when the object is still reachable.
var ErrNotCollected = errors.New("object not collected")

const pollInterval = 5 * time.Millisecond

// Probe reports whether a tracked object has been reclaimed.
// A Probe never references the tracked object.
type Probe struct {
	label     string
	collected atomic.Bool
	done      chan struct{}
}

func newProbe(label string) *Probe {
	return &Probe{label: label, done: make(chan struct{})}
}

func (p *Probe) fire() {
	if p.collected.CompareAndSwap(false, true) {
		close(p.done)
	}
}

// Track watches ptr. The probe fires once ptr becomes unreachable and the
// garbage collector has run its cleanup.
func Track[T any](ptr *T, label string) *Probe {
	p := newProbe(label)
	runtime.AddCleanup(ptr, func(p *Probe) { p.fire() }, p)
	return p
}

// TrackAny watches a value whose dynamic type is a pointer, such as a node
// held through an interface. The object may reference itself; cycles do not
// delay the probe.
func TrackAny(v any, label string) (*Probe, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("lifetime: cannot track %T: not a non-nil pointer", v)
	}
	if rv.Type().Elem().Size() == 0 {
		return nil, fmt.Errorf("lifetime: cannot track %T: zero-sized objects are never collected", v)
	}
	p := newProbe(label)
	runtime.AddCleanup((*byte)(rv.UnsafePointer()), func(p *Probe) { p.fire() }, p)
	return p, nil
}

// Label returns the label given at tracking time.
func (p *Probe) Label() string { return p.label }

// Collected reports whether the object has been reclaimed.
func (p *Probe) Collected() bool { return p.collected.Load() }

// Done is closed when the object has been reclaimed.
func (p *Probe) Done() <-chan struct{} { return p.done }

// Wait forces garbage collection cycles until the object is reclaimed or ctx
// is done.
func (p *Probe) Wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		runtime.GC()
		select {
		case <-p.done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %w", ErrNotCollected, p.label, ctx.Err())
		case <-ticker.C:
		}
	}
}
