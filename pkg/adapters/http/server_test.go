package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/graft/internal/logging"
	httpAdapter "github.com/aretw0/graft/pkg/adapters/http"
	"github.com/aretw0/graft/pkg/adapters/memory"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/interactor"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...httpAdapter.Option) (*httpAdapter.Server, http.Handler) {
	t.Helper()
	srv, err := httpAdapter.NewServer("test", opts...)
	require.NoError(t, err)
	return srv, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) httpAdapter.NodeView {
	t.Helper()
	var v httpAdapter.NodeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestServer_AttachDetachFlow(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/nodes", `{"id":"leaf"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	v := decodeView(t, w)
	assert.Equal(t, registry.KindRouter, v.Kind)
	assert.Equal(t, domain.PhaseDetached, v.Phase)

	w = do(t, h, http.MethodPost, "/nodes/leaf/attach", "")
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, domain.Active, v.Activation)
	assert.Equal(t, domain.Loaded, v.Load)

	w = do(t, h, http.MethodPost, "/nodes/leaf/detach", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PhaseParked, decodeView(t, w).Phase)

	w = do(t, h, http.MethodGet, "/nodes/leaf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.PhaseParked, decodeView(t, w).Phase)
}

func TestServer_ListNodesSorted(t *testing.T) {
	_, h := newTestServer(t)
	for _, id := range []string{"b", "a", "c"} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/nodes", `{"id":"`+id+`"}`).Code)
	}

	w := do(t, h, http.MethodGet, "/nodes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var views []httpAdapter.NodeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "a", views[0].ID)
	assert.Equal(t, "c", views[2].ID)
}

func TestServer_Errors(t *testing.T) {
	_, h := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/nodes", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/nodes", `{"kind":"router"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/nodes", `{"id":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/nodes", `{"id":7}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/nodes", `{"id":"x","kind":"widget"}`).Code)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/nodes", `{"id":"x"}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/nodes", `{"id":"x"}`).Code)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nodes/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/nodes/missing/attach", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/nodes/missing", "").Code)
}

func TestServer_ReleaseWithoutDetach(t *testing.T) {
	counts := map[string]int{}
	reg := registry.NewRegistry()
	reg.Register("counted", func(id string) (ports.Node, error) {
		base, err := registry.RouterFactory(logging.NewNop())(id)
		if err != nil {
			return nil, err
		}
		return &countingNode{Node: base, counts: counts}, nil
	})

	srv, h := newTestServer(t, httpAdapter.WithRegistry(reg))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/nodes", `{"id":"leaf","kind":"counted"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/nodes/leaf/attach", "").Code)
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/nodes/leaf", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nodes/leaf", "").Code)

	tracker, ok := srv.Host().Probe("leaf")
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tracker.Wait(ctx))

	assert.Equal(t, 1, counts["activate"])
	assert.Equal(t, 0, counts["deactivate"])

	w := do(t, h, http.MethodGet, "/released", "")
	var released []httpAdapter.ReleasedView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &released))
	require.Len(t, released, 1)
	assert.Equal(t, httpAdapter.ReleasedView{ID: "leaf", Attached: true, Detached: false, Collected: true}, released[0])
}

func TestServer_ReleaseNeverAttached(t *testing.T) {
	_, h := newTestServer(t)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/nodes", `{"id":"fresh"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/nodes", `{"id":"parked"}`).Code)
	do(t, h, http.MethodPost, "/nodes/parked/attach", "")
	do(t, h, http.MethodPost, "/nodes/parked/detach", "")
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/nodes/fresh", "").Code)
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/nodes/parked", "").Code)

	var released []httpAdapter.ReleasedView
	require.NoError(t, json.Unmarshal(do(t, h, http.MethodGet, "/released", "").Body.Bytes(), &released))
	require.Len(t, released, 2)
	assert.Equal(t, "fresh", released[0].ID)
	assert.False(t, released[0].Attached)
	assert.False(t, released[0].Detached, "a node that was never attached was never detached either")
	assert.Equal(t, "parked", released[1].ID)
	assert.True(t, released[1].Attached)
	assert.True(t, released[1].Detached)
}

func TestServer_ReleasedSelfReferencingNodeIsCollected(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Register("cyclic", func(id string) (ports.Node, error) {
		var r *router.Router
		r = router.New(id, interactor.New(), router.WithDidLoad(func() { _ = r.NodeID() }))
		return r, nil
	})
	srv, h := newTestServer(t, httpAdapter.WithRegistry(reg))

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/nodes", `{"id":"loop","kind":"cyclic"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/nodes/loop/attach", "").Code)
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/nodes/loop", "").Code)

	tracker, ok := srv.Host().Probe("loop")
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tracker.Wait(ctx))

	var released []httpAdapter.ReleasedView
	require.NoError(t, json.Unmarshal(do(t, h, http.MethodGet, "/released", "").Body.Bytes(), &released))
	require.Len(t, released, 1)
	assert.True(t, released[0].Collected)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, h := newTestServer(t, httpAdapter.WithPrometheus(reg))

	do(t, h, http.MethodPost, "/nodes", `{"id":"leaf"}`)
	do(t, h, http.MethodPost, "/nodes/leaf/attach", "")

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `graft_attach_total{node_id="leaf"} 1`)
	assert.Contains(t, w.Body.String(), "graft_attached_nodes 1")
}

func TestServer_Events(t *testing.T) {
	_, h := newTestServer(t)

	do(t, h, http.MethodPost, "/nodes", `{"id":"leaf"}`)
	do(t, h, http.MethodPost, "/nodes/leaf/attach", "")
	do(t, h, http.MethodPost, "/nodes/leaf/detach", "")

	w := do(t, h, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []domain.NodeEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventAttach, events[0].Type)
	assert.Equal(t, domain.EventDetach, events[1].Type)
	assert.Equal(t, "leaf", events[1].NodeID)

	w = do(t, h, http.MethodGet, "/events?limit=1", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.Len(t, events, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/events?limit=x", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/events?limit=-1", "").Code)
}

func TestServer_ExternalJournal(t *testing.T) {
	journal := memory.NewJournal(0)
	_, h := newTestServer(t, httpAdapter.WithJournal(journal))

	do(t, h, http.MethodPost, "/nodes", `{"id":"leaf"}`)
	do(t, h, http.MethodPost, "/nodes/leaf/attach", "")
	assert.Equal(t, 1, journal.Len())
}

func TestServer_CORSPreflight(t *testing.T) {
	_, h := newTestServer(t)
	w := do(t, h, http.MethodOptions, "/nodes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// countingNode wraps a router node and counts unit calls in a map that
// outlives the node.
type countingNode struct {
	ports.Node
	counts map[string]int
}

type countingUnit struct {
	inner  ports.ActivationUnit
	counts map[string]int
}

func (n *countingNode) Activation() ports.ActivationUnit {
	return countingUnit{inner: n.Node.Activation(), counts: n.counts}
}

func (n *countingNode) NodeID() string { return ports.IDOf(n.Node) }

func (u countingUnit) Activate()   { u.counts["activate"]++; u.inner.Activate() }
func (u countingUnit) Deactivate() { u.counts["deactivate"]++; u.inner.Deactivate() }
