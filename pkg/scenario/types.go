package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Op is a host action in a scenario.
type Op string

const (
	OpAttach  Op = "attach"
	OpDetach  Op = "detach"
	OpRelease Op = "release"
	OpCollect Op = "collect"
)

// ErrInvalidScenario is returned when a scenario file is malformed.
var ErrInvalidScenario = errors.New("invalid scenario")

// DefaultCollectTimeout bounds collect steps without an explicit timeout.
const DefaultCollectTimeout = 2 * time.Second

// Scenario is a parsed scenario file.
type Scenario struct {
	Name  string
	Nodes []NodeSpec
	Steps []Step
}

// NodeSpec declares a node the host builds before the first step.
type NodeSpec struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
}

// Step is one host action.
type Step struct {
	Op      Op            `mapstructure:"op"`
	Node    string        `mapstructure:"node"`
	Timeout time.Duration `mapstructure:"timeout"`
	Expect  *Expect       `mapstructure:"expect"`
}

// Expect lists the observations a step must produce. Nil fields are not checked.
type Expect struct {
	Activation *string `mapstructure:"activation"`
	Load       *string `mapstructure:"load"`
	Phase      *string `mapstructure:"phase"`
	Collected  *bool   `mapstructure:"collected"`

	// Call counters, as seen by the node since it was built.
	ActivateCalls   *int `mapstructure:"activate_calls"`
	DeactivateCalls *int `mapstructure:"deactivate_calls"`
	LoadCalls       *int `mapstructure:"load_calls"`
	// Effective load transitions (at most one for a monotonic node).
	Loads *int `mapstructure:"loads"`
}

type rawScenario struct {
	Name  string           `yaml:"name"`
	Nodes []NodeSpec       `yaml:"nodes"`
	Steps []map[string]any `yaml:"steps"`
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var raw rawScenario
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	sc := &Scenario{Name: raw.Name, Nodes: raw.Nodes}
	for i, rs := range raw.Steps {
		step, err := decodeStep(rs)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidScenario, i+1, err)
		}
		sc.Steps = append(sc.Steps, step)
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func decodeStep(in map[string]any) (Step, error) {
	var step Step
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &step,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Step{}, err
	}
	if err := dec.Decode(in); err != nil {
		return Step{}, err
	}
	return step, nil
}

// Validate checks node declarations, operations and expectations.
func (s *Scenario) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidScenario, fmt.Sprintf(format, args...))
	}

	declared := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return invalid("node %d: id is required", i+1)
		}
		if declared[n.ID] {
			return invalid("node %q declared twice", n.ID)
		}
		declared[n.ID] = true
	}

	for i, st := range s.Steps {
		idx := i + 1
		switch st.Op {
		case OpAttach, OpDetach, OpRelease, OpCollect:
		case "":
			return invalid("step %d: op is required", idx)
		default:
			return invalid("step %d: unknown op %q", idx, st.Op)
		}
		if !declared[st.Node] {
			return invalid("step %d: unknown node %q", idx, st.Node)
		}
		if st.Timeout != 0 && st.Op != OpCollect {
			return invalid("step %d: timeout only applies to collect", idx)
		}
		if err := st.Expect.validate(st.Op); err != nil {
			return invalid("step %d: %v", idx, err)
		}
	}
	return nil
}

func (e *Expect) validate(op Op) error {
	if e == nil {
		return nil
	}
	gone := op == OpRelease || op == OpCollect
	if gone && (e.Activation != nil || e.Load != nil || e.Phase != nil) {
		return fmt.Errorf("lifecycle expectations need a retained node, not %s", op)
	}
	if e.Collected != nil && op != OpCollect {
		return fmt.Errorf("collected only applies to collect")
	}
	if e.Activation != nil {
		if _, err := domain.ParseActivationState(*e.Activation); err != nil {
			return err
		}
	}
	if e.Load != nil {
		if _, err := domain.ParseLoadState(*e.Load); err != nil {
			return err
		}
	}
	if e.Phase != nil {
		if _, err := domain.ParsePhase(*e.Phase); err != nil {
			return err
		}
	}
	return nil
}
