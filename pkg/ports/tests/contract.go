package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/graft/pkg/bridge"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/lifetime"
	"github.com/aretw0/graft/pkg/ports"
)

// NodeContractTest is a reusable test suite that verifies a ports.Node
// implementation behaves correctly under the bridge. newNode must return a
// fresh, detached node that also implements ports.Inspectable.
func NodeContractTest(t *testing.T, newNode func(id string) ports.Node) {
	t.Helper()

	inspect := func(t *testing.T, n ports.Node) domain.Lifecycle {
		t.Helper()
		l, ok := ports.Inspect(n)
		if !ok {
			t.Fatalf("%T does not implement ports.Inspectable", n)
		}
		return l
	}

	expect := func(t *testing.T, n ports.Node, want domain.Phase) {
		t.Helper()
		if got := inspect(t, n).Phase(); got != want {
			t.Errorf("phase = %s, want %s", got, want)
		}
	}

	// 1. Fresh nodes start detached
	t.Run("Fresh", func(t *testing.T) {
		expect(t, newNode("fresh"), domain.PhaseDetached)
	})

	// 2. Attach and detach
	t.Run("AttachDetach", func(t *testing.T) {
		n := newNode("cycle")
		bridge.Attach(n)
		expect(t, n, domain.PhaseAttached)
		bridge.Detach(n)
		expect(t, n, domain.PhaseParked)
	})

	// 3. Re-attach keeps the node loaded
	t.Run("Reattach", func(t *testing.T) {
		n := newNode("again")
		bridge.Attach(n)
		bridge.Detach(n)
		bridge.Attach(n)
		expect(t, n, domain.PhaseAttached)
	})

	// 4. Repeated calls are no-ops
	t.Run("Repeated", func(t *testing.T) {
		n := newNode("repeat")
		bridge.Detach(n)
		expect(t, n, domain.PhaseDetached)
		bridge.Attach(n)
		bridge.Attach(n)
		expect(t, n, domain.PhaseAttached)
		bridge.Detach(n)
		bridge.Detach(n)
		expect(t, n, domain.PhaseParked)
	})

	// 5. Only the host keeps the node alive
	t.Run("NotRetained", func(t *testing.T) {
		n := newNode("dropped")
		probe, err := lifetime.TrackAny(n, "dropped")
		if err != nil {
			t.Skipf("cannot track %T: %v", n, err)
		}
		bridge.Attach(n)
		n = nil

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := probe.Wait(ctx); err != nil {
			t.Errorf("node still reachable after the host dropped it: %v", err)
		}
	})
}
