package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the graft banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                   __ _   ", "#34d399"},
		{"   __ _ _ __ __ _ / _| |_ ", "#2dd4bf"},
		{"  / _` | '__/ _` | |_| __|", "#22d3ee"},
		{" | (_| | | | (_| |  _| |_ ", "#38bdf8"},
		{"  \\__, |_|  \\__,_|_|  \\__|", "#60a5fa"},
		{"  |___/                   ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
