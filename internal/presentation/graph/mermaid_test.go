package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/graft/internal/presentation/graph"
	"github.com/aretw0/graft/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScenario(t *testing.T, doc string) *scenario.Report {
	t.Helper()
	sc, err := scenario.Parse([]byte(doc))
	require.NoError(t, err)
	report, _ := scenario.Run(context.Background(), sc)
	require.NotNil(t, report)
	return report
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name        string
		report      *scenario.Report
		contains    []string
		notContains []string
	}{
		{
			name: "Static Diagram",
			contains: []string{
				"graph TD",
				"detached((\"detached\"))",
				"attached[[\"attached\"]]",
				"parked[\"parked\"]",
				"released[/\"released\"/]",
				"attached -- \"detach\" --> parked",
			},
			notContains: []string{"classDef", "parked -- \"detach\" --> detached"},
		},
		{
			name: "Visited Overlay",
			report: runScenario(t, `
name: trip
nodes: [{id: a}]
steps:
  - {op: attach, node: a}
  - {op: detach, node: a}
`),
			contains: []string{
				"class attached visited;",
				"class parked visited;",
			},
			notContains: []string{"current;", "class detached visited;"},
		},
		{
			name: "Failed Step Is Current",
			report: runScenario(t, `
name: wrong
nodes: [{id: a}]
steps:
  - op: attach
    node: a
    expect: {phase: parked}
`),
			contains: []string{"class attached current;"},
		},
		{
			name: "Release Overlay",
			report: runScenario(t, `
name: drop
nodes: [{id: a}]
steps:
  - {op: attach, node: a}
  - {op: release, node: a}
`),
			contains: []string{"class released visited;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.report)
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(out, want), "missing %q in:\n%s", want, out)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}
