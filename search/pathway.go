// Package search finds low-cost multi-step pathways through a built
// reaction network. The engine is a bounded best-first search: a priority
// queue ordered by cumulative cost with deterministic tie-breaking, a hop
// bound to guarantee termination on cyclic graphs, and relaxed per-node
// pruning that keeps up to k near-optimal partial paths per node.
//
// Engines only read the network, so any number of searches may run
// concurrently against the same built graph.
package search

import (
	"fmt"
	"strings"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/network"
)

// Pathway is an ordered walk of edges from a start node to a target node.
// It is a read-only view over the network's edges; callers must not modify
// the slice.
type Pathway struct {
	// Edges holds the walk in order, including zero-cost release edges.
	Edges []*network.Edge

	// CumulativeCost is the sum of all edge weights.
	CumulativeCost float64
}

// Length returns the number of edges in the walk.
func (p Pathway) Length() int { return len(p.Edges) }

// Steps returns the number of reaction edges, excluding releases.
func (p Pathway) Steps() int {
	n := 0
	for _, e := range p.Edges {
		if !e.Release {
			n++
		}
	}
	return n
}

// Reactions returns the reactions along the walk in order.
func (p Pathway) Reactions() []*chem.Reaction {
	out := make([]*chem.Reaction, 0, len(p.Edges))
	for _, e := range p.Edges {
		if e.Reaction != nil {
			out = append(out, e.Reaction)
		}
	}
	return out
}

// Start returns the key of the walk's first node ("" for an empty walk).
func (p Pathway) Start() string {
	if len(p.Edges) == 0 {
		return ""
	}
	return p.Edges[0].From
}

// End returns the key of the walk's last node ("" for an empty walk).
func (p Pathway) End() string {
	if len(p.Edges) == 0 {
		return ""
	}
	return p.Edges[len(p.Edges)-1].To
}

// nodeTrail returns the concatenated node keys along the walk. Used as the
// final lexicographic tie-break so that identical inputs always rank equal
// pathways identically.
func (p Pathway) nodeTrail() string {
	if len(p.Edges) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(p.Edges[0].From)
	for _, e := range p.Edges {
		b.WriteString("|")
		b.WriteString(e.To)
	}
	return b.String()
}

// String renders the pathway one step per line with per-step and cumulative
// costs.
func (p Pathway) String() string {
	var b strings.Builder
	for _, e := range p.Edges {
		if e.Release {
			fmt.Fprintf(&b, "release -> %s\n", e.To)
			continue
		}
		fmt.Fprintf(&b, "%s (cost %.4g)\n", e.Reaction, e.Weight)
	}
	fmt.Fprintf(&b, "cumulative cost %.4g over %d step(s)", p.CumulativeCost, p.Steps())
	return b.String()
}
