package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/graft"
	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/lifetime"
	"github.com/aretw0/graft/pkg/ports"
	"github.com/aretw0/graft/pkg/registry"
)

// Calls counts what a node has seen. It lives outside the node so it
// survives a release.
type Calls struct {
	ActivateCalls   int `json:"activate_calls"`
	DeactivateCalls int `json:"deactivate_calls"`
	LoadCalls       int `json:"load_calls"`
	Loads           int `json:"loads"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index     int               `json:"index"`
	Op        Op                `json:"op"`
	Node      string            `json:"node"`
	Lifecycle *domain.Lifecycle `json:"lifecycle,omitempty"`
	Calls     Calls             `json:"calls"`
	Collected bool              `json:"collected"`
	Err       error             `json:"-"`
}

// Report is the outcome of a scenario run.
type Report struct {
	Scenario string       `json:"scenario"`
	Steps    []StepResult `json:"steps"`
}

// Passed reports whether every step met its expectations.
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return true
}

type runConfig struct {
	registry *registry.Registry
	logger   *slog.Logger
	hostOpts []graft.Option
}

// Option configures a run.
type Option func(*runConfig)

// WithRegistry sets the registry used to build declared nodes.
func WithRegistry(r *registry.Registry) Option {
	return func(c *runConfig) {
		c.registry = r
	}
}

// WithLogger sets the logger for the run and its host.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithHostOptions passes options to the host playing the scenario.
func WithHostOptions(opts ...graft.Option) Option {
	return func(c *runConfig) {
		c.hostOpts = append(c.hostOpts, opts...)
	}
}

// session is the host playing a scenario. nodes holds the only strong
// references to the scenario's nodes.
type session struct {
	host   *graft.Host
	nodes  map[string]ports.Node
	calls  map[string]*counter
	probes map[string]*lifetime.Probe
	logger *slog.Logger
}

// Run plays sc and returns its report. The first failed step stops the run
// and its error is returned alongside the partial report.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Report, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.registry == nil {
		cfg.registry = registry.Default(cfg.logger)
	}

	hostOpts := append([]graft.Option{graft.WithLogger(cfg.logger)}, cfg.hostOpts...)
	s := &session{
		host:   graft.NewHost(sc.Name, hostOpts...),
		nodes:  make(map[string]ports.Node),
		calls:  make(map[string]*counter),
		probes: make(map[string]*lifetime.Probe),
		logger: cfg.logger.With("scenario", sc.Name),
	}

	for _, spec := range sc.Nodes {
		if err := s.build(cfg.registry, spec); err != nil {
			return nil, err
		}
	}

	report := &Report{Scenario: sc.Name}
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := s.play(ctx, i+1, step)
		report.Steps = append(report.Steps, res)
		if res.Err != nil {
			s.logger.Warn("step failed", "step", res.Index, "op", step.Op, "node", step.Node, "error", res.Err)
			return report, res.Err
		}
		s.logger.Debug("step passed", "step", res.Index, "op", step.Op, "node", step.Node)
	}
	return report, nil
}

func (s *session) build(reg *registry.Registry, spec NodeSpec) error {
	kind := spec.Kind
	if kind == "" {
		kind = registry.KindRouter
	}
	node, err := reg.Build(kind, spec.ID)
	if err != nil {
		return err
	}

	probe, err := lifetime.TrackAny(node, spec.ID)
	if err != nil {
		return fmt.Errorf("node %q: %w", spec.ID, err)
	}

	c := &counter{}
	s.nodes[spec.ID] = instrument(node, c)
	s.calls[spec.ID] = c
	s.probes[spec.ID] = probe
	return nil
}

func (s *session) play(ctx context.Context, index int, step Step) StepResult {
	res := StepResult{Index: index, Op: step.Op, Node: step.Node}

	switch step.Op {
	case OpAttach, OpDetach:
		node, ok := s.nodes[step.Node]
		if !ok {
			res.Err = fmt.Errorf("step %d: %w: %s was released", index, domain.ErrNodeNotFound, step.Node)
			return res
		}
		if step.Op == OpAttach {
			s.host.AttachNode(node)
		} else {
			s.host.DetachNode(node)
		}
		if l, ok := ports.Inspect(node); ok {
			res.Lifecycle = &l
		}

	case OpRelease:
		delete(s.nodes, step.Node)

	case OpCollect:
		timeout := step.Timeout
		if timeout == 0 {
			timeout = DefaultCollectTimeout
		}
		wctx, cancel := context.WithTimeout(ctx, timeout)
		err := s.probes[step.Node].Wait(wctx)
		cancel()
		res.Collected = err == nil
	}

	res.Calls = s.calls[step.Node].snapshot()
	res.Err = check(index, step, res)
	return res
}

func check(index int, step Step, res StepResult) error {
	fail := func(what string, got, want any) error {
		return fmt.Errorf("step %d (%s %s): %w: %s = %v, want %v",
			index, step.Op, step.Node, domain.ErrExpectation, what, got, want)
	}

	e := step.Expect
	if e == nil {
		// A bare collect asserts that the node was reclaimed.
		if step.Op == OpCollect && !res.Collected {
			return fail("collected", false, true)
		}
		return nil
	}

	if e.Activation != nil || e.Load != nil || e.Phase != nil {
		if res.Lifecycle == nil {
			return fmt.Errorf("step %d: %w: node %s does not report its lifecycle", index, domain.ErrExpectation, step.Node)
		}
		l := *res.Lifecycle
		if e.Activation != nil {
			want, _ := domain.ParseActivationState(*e.Activation)
			if l.Activation != want {
				return fail("activation", l.Activation, want)
			}
		}
		if e.Load != nil {
			want, _ := domain.ParseLoadState(*e.Load)
			if l.Load != want {
				return fail("load", l.Load, want)
			}
		}
		if e.Phase != nil {
			want, _ := domain.ParsePhase(*e.Phase)
			if l.Phase() != want {
				return fail("phase", l.Phase(), want)
			}
		}
	}

	if step.Op == OpCollect {
		want := true
		if e.Collected != nil {
			want = *e.Collected
		}
		if res.Collected != want {
			return fail("collected", res.Collected, want)
		}
	}

	counters := []struct {
		name string
		want *int
		got  int
	}{
		{"activate_calls", e.ActivateCalls, res.Calls.ActivateCalls},
		{"deactivate_calls", e.DeactivateCalls, res.Calls.DeactivateCalls},
		{"load_calls", e.LoadCalls, res.Calls.LoadCalls},
		{"loads", e.Loads, res.Calls.Loads},
	}
	for _, c := range counters {
		if c.want != nil && *c.want != c.got {
			return fail(c.name, c.got, *c.want)
		}
	}
	return nil
}

type counter struct {
	mu sync.Mutex
	c  Calls
}

func (c *counter) bump(fn func(*Calls)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.c)
}

func (c *counter) snapshot() Calls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c
}
