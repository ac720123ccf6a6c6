// Package network assembles annotated reactions into a directed multigraph.
// Nodes are sets of coexisting phases identified by a canonical key; edges
// are individual reactions weighted by their cost, plus zero-cost release
// edges that drop spectator phases so multi-step walks can compose.
//
// A Network is mutable only through its Builder. Once Build returns, the
// graph is read-only and safe to share across concurrent searches.
package network

import (
	"sort"
	"strings"

	"github.com/chemloop/chemloop/chem"
)

// Node is a deduplicated set of coexisting phases.
type Node struct {
	// Key is the canonical node key: the sorted reduced formulas of the
	// phase set joined with "+".
	Key string

	// Phases holds the node's phases sorted by reduced formula.
	Phases []*chem.Phase
}

// Unstable returns how many of the node's phases are flagged as
// practically unstable.
func (n *Node) Unstable() int {
	count := 0
	for _, p := range n.Phases {
		if p.Unstable() {
			count++
		}
	}
	return count
}

// Edge is a directed connection between two nodes. Reaction edges carry the
// reaction and its cost; release edges carry a nil Reaction and zero
// weight.
type Edge struct {
	From     string
	To       string
	Reaction *chem.Reaction
	Weight   float64
	Release  bool
}

// Network is the built, immutable reaction graph.
type Network struct {
	id    string
	nodes map[string]*Node
	edges map[string][]*Edge
	keys  []string

	reactionCount int
	releaseCount  int
}

// ID returns the build run identifier.
func (n *Network) ID() string { return n.id }

// Node looks up a node by canonical key.
func (n *Network) Node(key string) (*Node, bool) {
	node, ok := n.nodes[key]
	return node, ok
}

// Keys returns all node keys in sorted order.
func (n *Network) Keys() []string { return n.keys }

// EdgesFrom returns the outgoing edges of the node in deterministic order.
func (n *Network) EdgesFrom(key string) []*Edge { return n.edges[key] }

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of reaction and release edges.
func (n *Network) EdgeCount() (reactions, releases int) {
	return n.reactionCount, n.releaseCount
}

// KeyFor returns the canonical node key for a set of compositions.
func KeyFor(comps []chem.Composition) string {
	formulas := make([]string, len(comps))
	for i, c := range comps {
		formulas[i] = c.ReducedFormula()
	}
	sort.Strings(formulas)
	return strings.Join(formulas, "+")
}

// keyForPhases is KeyFor over phases.
func keyForPhases(phases []*chem.Phase) string {
	formulas := make([]string, len(phases))
	for i, p := range phases {
		formulas[i] = p.Formula()
	}
	sort.Strings(formulas)
	return strings.Join(formulas, "+")
}

// phaseSubset reports whether every formula of inner's phase set occurs in
// outer's, and that inner is strictly smaller.
func phaseSubset(inner, outer *Node) bool {
	if len(inner.Phases) >= len(outer.Phases) {
		return false
	}
	have := make(map[string]struct{}, len(outer.Phases))
	for _, p := range outer.Phases {
		have[p.Formula()] = struct{}{}
	}
	for _, p := range inner.Phases {
		if _, ok := have[p.Formula()]; !ok {
			return false
		}
	}
	return true
}
