// Package ui formats analysis results for the terminal.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/chemloop/chemloop/cycle"
	"github.com/chemloop/chemloop/network"
	"github.com/chemloop/chemloop/search"
)

// Reporter writes formatted analysis output to a single destination.
type Reporter struct {
	writer  io.Writer
	noColor bool
}

// NewReporter creates a reporter. Set noColor for plain output.
func NewReporter(w io.Writer, noColor bool) *Reporter {
	return &Reporter{writer: w, noColor: noColor}
}

// BuildReport summarizes a network build: node and edge counts plus every
// rejected candidate with its reason.
func (r *Reporter) BuildReport(net *network.Network, report *network.BuildReport) {
	reactions, releases := net.EdgeCount()

	green := color.New(color.FgGreen)
	if r.noColor {
		green.DisableColor()
	}
	green.Fprint(r.writer, "✓")
	fmt.Fprintf(r.writer, " network %s: %d nodes, %d reaction edges, %d release edges\n",
		net.ID(), net.NodeCount(), reactions, releases)
	fmt.Fprintf(r.writer, "  %d reaction(s) accepted\n", report.Accepted)

	if report.Clean() {
		return
	}

	red := color.New(color.FgRed)
	if r.noColor {
		red.DisableColor()
	}
	red.Fprintf(r.writer, "✗ %d reaction(s) rejected:\n", len(report.Rejected))
	for _, rej := range report.Rejected {
		fmt.Fprintf(r.writer, "  %s\n    %s\n", rej.Reaction, rej.Err)
	}
}

// Pathways renders ranked pathways as a table followed by per-step detail.
func (r *Reporter) Pathways(paths []search.Pathway) {
	if len(paths) == 0 {
		fmt.Fprintln(r.writer, "no pathways found")
		return
	}

	Header(r.writer, fmt.Sprintf("Pathways (%d)", len(paths)), r.noColor)

	table := NewTable(r.writer, []string{"#", "COST", "STEPS", "ROUTE"}, r.noColor)
	for i, p := range paths {
		table.AddRow(
			strconv.Itoa(i+1),
			formatCost(p.CumulativeCost),
			strconv.Itoa(p.Steps()),
			p.Start()+" -> "+p.End(),
		)
	}
	table.Render()

	for i, p := range paths {
		fmt.Fprintf(r.writer, "\n%d.\n%s", i+1, indent(p.String()))
	}
}

// Cycles renders ranked cycles with both legs and their scores.
func (r *Reporter) Cycles(cycles []cycle.Cycle) {
	if len(cycles) == 0 {
		fmt.Fprintln(r.writer, "no cycles found")
		return
	}

	Header(r.writer, fmt.Sprintf("Cycles (%d)", len(cycles)), r.noColor)

	table := NewTable(r.writer, []string{"#", "SCORE", "COST", "PENALTY", "SCALE"}, r.noColor)
	for i, c := range cycles {
		table.AddRow(
			strconv.Itoa(i+1),
			formatCost(c.Score()),
			formatCost(c.CombinedCost),
			formatCost(c.Penalty),
			strconv.FormatFloat(c.Scale, 'g', -1, 64),
		)
	}
	table.Render()

	for i, c := range cycles {
		fmt.Fprintf(r.writer, "\n%d. reduction:\n%s", i+1, indent(c.Reduction.String()))
		fmt.Fprintf(r.writer, "   oxidation:\n%s", indent(c.Oxidation.String()))
	}
}

// Error renders a failure in red.
func (r *Reporter) Error(err error) {
	red := color.New(color.FgRed)
	if r.noColor {
		red.DisableColor()
	}
	red.Fprintf(r.writer, "✗ %s\n", err)
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func indent(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString("   ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
