package search

import "github.com/chemloop/chemloop/network"

// partial is a walk under construction. trail is the "|"-joined node keys,
// used both for the deterministic tie-break and for O(1) construction of
// the next trail.
type partial struct {
	node  string
	edges []*network.Edge
	cost  float64
	trail string
}

// extend returns a new partial with edge appended. The edge slice is copied
// so sibling expansions never share backing arrays.
func (p *partial) extend(edge *network.Edge) *partial {
	edges := make([]*network.Edge, len(p.edges)+1)
	copy(edges, p.edges)
	edges[len(p.edges)] = edge
	return &partial{
		node:  edge.To,
		edges: edges,
		cost:  p.cost + edge.Weight,
		trail: p.trail + "|" + edge.To,
	}
}

// visited reports whether the walk already passed through the node key.
// Walks are kept simple; the hop bound alone would terminate, but cycles
// within one walk never improve a minimum-cost query.
func (p *partial) visited(key string) bool {
	if p.node == key {
		return true
	}
	for _, e := range p.edges {
		if e.From == key {
			return true
		}
	}
	return false
}

// pathHeap is a min-heap of partial walks ordered by cumulative cost, then
// fewer edges, then lexicographic node trail.
type pathHeap []*partial

func (h pathHeap) Len() int { return len(h) }

func (h pathHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if len(h[i].edges) != len(h[j].edges) {
		return len(h[i].edges) < len(h[j].edges)
	}
	return h[i].trail < h[j].trail
}

func (h pathHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pathHeap) Push(x any) { *h = append(*h, x.(*partial)) }

func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
