package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/scenario"
)

// phases in the order they are declared on the diagram.
var phases = []domain.Phase{
	domain.PhaseDetached,
	domain.PhaseActivating,
	domain.PhaseAttached,
	domain.PhaseParked,
}

// GenerateMermaid produces a Mermaid flowchart of the lifecycle phases and
// the bridge operations between them. When a report is given, the phases it
// visited and the transitions it took are highlighted; a failed step marks
// its node as current.
// Shapes:
// - Detached: ((Circle))
// - Attached: [[Subroutine]]
// - Released: [/Parallelogram/]
// - Default: [Rectangle]
func GenerateMermaid(report *scenario.Report) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, p := range phases {
		opener, closer := "[", "]"
		switch p {
		case domain.PhaseDetached:
			opener, closer = "((", "))"
		case domain.PhaseAttached:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(string(p)), opener, p, closer))
	}
	sb.WriteString("    released[/\"released\"/]\n")

	// Bridge operations. A detach never unloads, so the diagram has no edge
	// back to detached.
	sb.WriteString("    detached -- \"attach\" --> attached\n")
	sb.WriteString("    activating -- \"attach\" --> attached\n")
	sb.WriteString("    attached -- \"detach\" --> parked\n")
	sb.WriteString("    parked -- \"attach\" --> attached\n")
	sb.WriteString("    attached -. \"release\" .-> released\n")
	sb.WriteString("    parked -. \"release\" .-> released\n")

	if report == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	visited := make(map[string]bool)
	mark := func(id string) {
		if !visited[id] {
			visited[id] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", id))
		}
	}

	current := ""
	for _, step := range report.Steps {
		switch {
		case step.Lifecycle != nil:
			current = sanitizeMermaidID(string(step.Lifecycle.Phase()))
			mark(current)
		case step.Op == scenario.OpRelease:
			current = "released"
			mark(current)
		}
	}
	if !report.Passed() && current != "" {
		sb.WriteString(fmt.Sprintf("    class %s current;\n", current))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
