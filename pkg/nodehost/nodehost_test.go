package nodehost_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/adapters/memory"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/interactor"
	"github.com/aretw0/graft/pkg/nodehost"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHost_Flow(t *testing.T) {
	h := nodehost.New("test")

	v, err := h.Create("leaf", "")
	require.NoError(t, err)
	assert.Equal(t, registry.KindRouter, v.Kind)
	assert.Equal(t, domain.PhaseDetached, v.Phase)

	v, err = h.Attach("leaf")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAttached, v.Phase)

	v, err = h.Detach("leaf")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseParked, v.Phase)

	v, err = h.Get("leaf")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseParked, v.Phase)

	events, err := h.Events(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventAttach, events[0].Type)
	assert.Equal(t, domain.EventDetach, events[1].Type)
}

func TestHost_CreateErrors(t *testing.T) {
	h := nodehost.New("test")

	_, err := h.Create("", "")
	assert.ErrorIs(t, err, domain.ErrInvalidNode)

	_, err = h.Create("x", "widget")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = h.Create("x", "")
	require.NoError(t, err)
	_, err = h.Create("x", "")
	assert.ErrorIs(t, err, domain.ErrNodeExists)

	_, err = h.Attach("missing")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.ErrorIs(t, h.Release("missing"), domain.ErrNodeNotFound)
}

func TestHost_ReleasedTracksAttachHistory(t *testing.T) {
	h := nodehost.New("test")
	for _, id := range []string{"fresh", "parked", "live"} {
		_, err := h.Create(id, "")
		require.NoError(t, err)
	}
	_, err := h.Attach("parked")
	require.NoError(t, err)
	_, err = h.Detach("parked")
	require.NoError(t, err)
	_, err = h.Attach("live")
	require.NoError(t, err)

	for _, id := range []string{"fresh", "parked", "live"} {
		require.NoError(t, h.Release(id))
	}

	released := h.Released()
	require.Len(t, released, 3)
	byID := map[string]nodehost.ReleasedView{}
	for _, r := range released {
		r.Collected = false
		byID[r.ID] = r
	}
	assert.Equal(t, nodehost.ReleasedView{ID: "fresh"}, byID["fresh"])
	assert.Equal(t, nodehost.ReleasedView{ID: "parked", Attached: true, Detached: true}, byID["parked"])
	assert.Equal(t, nodehost.ReleasedView{ID: "live", Attached: true}, byID["live"])

	_, err = h.Get("live")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestHost_SelfReferencingNodeIsCollected(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("cyclic", func(id string) (ports.Node, error) {
		unit := interactor.New()
		var r *router.Router
		r = router.New(id, unit, router.WithDidLoad(func() { _ = r.NodeID() }))
		return r, nil
	})
	h := nodehost.New("test", nodehost.WithRegistry(reg))

	_, err := h.Create("leaf", "cyclic")
	require.NoError(t, err)
	_, err = h.Attach("leaf")
	require.NoError(t, err)
	require.NoError(t, h.Release("leaf"))

	tracker, ok := h.Probe("leaf")
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tracker.Wait(ctx))

	released := h.Released()
	require.Len(t, released, 1)
	assert.True(t, released[0].Collected)
}

func TestHost_SlowHookDoesNotBlockOtherNodes(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	hooks := domain.LifecycleHooks{
		OnAttach: func(e *domain.NodeEvent) {
			if e.NodeID == "slow" {
				close(entered)
				<-unblock
			}
		},
	}
	h := nodehost.New("test", nodehost.WithLifecycleHooks(hooks), nodehost.WithLogger(logging.NewNop()))
	for _, id := range []string{"slow", "fast"} {
		_, err := h.Create(id, "")
		require.NoError(t, err)
	}

	attached := make(chan error, 1)
	go func() {
		_, err := h.Attach("slow")
		attached <- err
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.Attach("fast")
		_ = h.List()
		_ = h.Released()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("calls on other nodes waited for a slow hook")
	}

	close(unblock)
	require.NoError(t, <-attached)
	assert.Len(t, h.List(), 2)
}

func TestHost_JournalWithOwnHooks(t *testing.T) {
	j := &hookedJournal{Journal: memory.NewJournal(0)}
	h := nodehost.New("test", nodehost.WithJournal(j))

	_, err := h.Create("leaf", "")
	require.NoError(t, err)
	_, err = h.Attach("leaf")
	require.NoError(t, err)

	assert.Equal(t, 1, j.viaHooks)
	assert.Equal(t, 0, j.Len(), "the journal's own hooks replace the default append")
}

// hookedJournal counts events delivered through its own Hooks.
type hookedJournal struct {
	*memory.Journal
	viaHooks int
}

func (j *hookedJournal) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttach: func(*domain.NodeEvent) { j.viaHooks++ },
		OnDetach: func(*domain.NodeEvent) { j.viaHooks++ },
	}
}
