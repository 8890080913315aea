package tui_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/graft/internal/presentation/tui"
	"github.com/aretw0/graft/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(t *testing.T, doc string) *scenario.Report {
	t.Helper()
	sc, err := scenario.Parse([]byte(doc))
	require.NoError(t, err)
	r, _ := scenario.Run(context.Background(), sc)
	require.NotNil(t, r)
	return r
}

func TestReportMarkdown(t *testing.T) {
	r := report(t, `
name: trip
nodes: [{id: leaf}]
steps:
  - {op: attach, node: leaf}
  - {op: detach, node: leaf}
`)

	md := tui.ReportMarkdown(r)
	assert.Contains(t, md, "# trip")
	assert.Contains(t, md, "| 1 | attach | leaf | active/loaded (attached) | 1 | 0 | 1 | 1 | ok |")
	assert.Contains(t, md, "| 2 | detach | leaf | inactive/loaded (parked) | 1 | 1 | 1 | 1 | ok |")
}

func TestReportMarkdown_Failure(t *testing.T) {
	r := report(t, `
name: wrong
nodes: [{id: leaf}]
steps:
  - op: attach
    node: leaf
    expect: {loads: 2}
`)

	md := tui.ReportMarkdown(r)
	assert.Contains(t, md, "| FAIL |")
	assert.Contains(t, md, "> step 1 (attach leaf)")
	assert.Contains(t, tui.Verdict(r), "FAIL wrong (at step 1)")
}

func TestVerdict_Pass(t *testing.T) {
	r := report(t, "name: empty\n")
	assert.Contains(t, tui.Verdict(r), "PASS empty (0 steps)")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
