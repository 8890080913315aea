package observability

import (
	"fmt"
	"sync"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records bridge traffic in Prometheus.
type Metrics struct {
	attaches *prometheus.CounterVec
	detaches *prometheus.CounterVec
	live     prometheus.Gauge

	// opaque tracks live nodes that cannot report their lifecycle, by id.
	mu     sync.Mutex
	opaque map[string]bool
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		opaque: make(map[string]bool),
		attaches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graft_attach_total",
				Help: "Total number of bridge attach calls",
			},
			[]string{"node_id"},
		),
		detaches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graft_detach_total",
				Help: "Total number of bridge detach calls",
			},
			[]string{"node_id"},
		),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "graft_attached_nodes",
			Help: "Number of nodes currently attached through a bridge",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.attaches, m.detaches, m.live} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register metrics: %w", err)
			}
		}
	}
	return m, nil
}

// Hooks returns LifecycleHooks that feed these metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttach: m.observeAttach,
		OnDetach: m.observeDetach,
	}
}

func (m *Metrics) observeAttach(e *domain.NodeEvent) {
	m.attaches.WithLabelValues(e.NodeID).Inc()
	if !e.Observed {
		m.setOpaque(e.NodeID, true)
		return
	}
	if !e.Before.IsLive() && e.After.IsLive() {
		m.live.Inc()
	}
}

func (m *Metrics) observeDetach(e *domain.NodeEvent) {
	m.detaches.WithLabelValues(e.NodeID).Inc()
	if !e.Observed {
		m.setOpaque(e.NodeID, false)
		return
	}
	if e.Before.IsLive() && !e.After.IsLive() {
		m.live.Dec()
	}
}

// setOpaque assumes an attach makes an opaque node live and a detach ends
// it; repeated calls for the same id do not move the gauge.
func (m *Metrics) setOpaque(id string, live bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opaque[id] == live {
		return
	}
	if live {
		m.opaque[id] = true
		m.live.Inc()
	} else {
		delete(m.opaque, id)
		m.live.Dec()
	}
}
