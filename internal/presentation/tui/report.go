package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/graft/pkg/scenario"
	"github.com/muesli/termenv"
)

// ReportMarkdown renders a scenario report as a markdown table.
func ReportMarkdown(r *scenario.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Scenario)
	sb.WriteString("| # | op | node | lifecycle | activate | deactivate | load | loads | result |\n")
	sb.WriteString("|---|----|------|-----------|----------|------------|------|-------|--------|\n")

	for _, s := range r.Steps {
		lifecycle := "-"
		if s.Lifecycle != nil {
			lifecycle = fmt.Sprintf("%s (%s)", s.Lifecycle, s.Lifecycle.Phase())
		}
		if s.Op == scenario.OpCollect {
			lifecycle = "retained"
			if s.Collected {
				lifecycle = "collected"
			}
		}

		result := "ok"
		if s.Err != nil {
			result = "FAIL"
		}

		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %d | %d | %d | %d | %s |\n",
			s.Index, s.Op, s.Node, lifecycle,
			s.Calls.ActivateCalls, s.Calls.DeactivateCalls, s.Calls.LoadCalls, s.Calls.Loads,
			result)
	}

	for _, s := range r.Steps {
		if s.Err != nil {
			fmt.Fprintf(&sb, "\n> %s\n", strings.ReplaceAll(s.Err.Error(), "|", "\\|"))
		}
	}
	return sb.String()
}

// Verdict returns a one-line colored summary of the report.
func Verdict(r *scenario.Report) string {
	p := termenv.ColorProfile()
	if r.Passed() {
		return termenv.String(fmt.Sprintf("PASS %s (%d steps)", r.Scenario, len(r.Steps))).
			Foreground(p.Color("#34d399")).Bold().String()
	}
	return termenv.String(fmt.Sprintf("FAIL %s (at step %d)", r.Scenario, len(r.Steps))).
		Foreground(p.Color("#fb7185")).Bold().String()
}
