package search

import (
	"container/heap"
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/network"
)

// Default search parameters.
const (
	DefaultMaxPathLength = 10
	DefaultK             = 5
)

// Options configures one pathway query.
type Options struct {
	// MaxPathLength bounds the number of edges in a walk. The underlying
	// reaction graph may contain cycles (reversible reactions), so the
	// bound is what guarantees termination. Defaults to
	// DefaultMaxPathLength when zero.
	MaxPathLength int

	// CostTolerance is the slack allowed above a node's best known
	// cumulative cost before a partial path is pruned.
	CostTolerance float64

	// MaxStepCost excludes individual reaction steps costlier than this
	// value. Nil leaves steps uncapped: the admissible cost range
	// depends on the weighting the network was annotated with (softplus
	// costs are strictly positive), so callers set the cap on the
	// weighting's own scale. Release edges are always admissible.
	MaxStepCost *float64

	// K caps both the number of near-optimal partial paths retained per
	// node and the number of returned pathways. Defaults to DefaultK
	// when zero.
	K int
}

func (o Options) withDefaults() Options {
	if o.MaxPathLength <= 0 {
		o.MaxPathLength = DefaultMaxPathLength
	}
	if o.K <= 0 {
		o.K = DefaultK
	}
	return o
}

// Engine runs pathway queries against an immutable network.
type Engine struct {
	net *network.Network
	log *zap.Logger
}

// NewEngine returns an Engine over the built network. A nil logger defaults
// to zap.NewNop.
func NewEngine(net *network.Network, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{net: net, log: log}
}

// Network returns the engine's underlying network.
func (e *Engine) Network() *network.Network { return e.net }

// FindPathways returns up to opts.K pathways from the start phase set to
// the target phase set, ranked by ascending cumulative cost with ties
// broken by fewer edges and then by the lexicographic order of the node
// trail. Identical inputs always yield identical output.
//
// A node matches the target when the target's phases are all present in it
// (byproducts are allowed). Returns *PathNotFoundError when the start set
// is not in the network or no walk within the bound reaches the target,
// and ErrCancelled when ctx is done.
func (e *Engine) FindPathways(ctx context.Context, start, target []chem.Composition, opts Options) ([]Pathway, error) {
	opts = opts.withDefaults()
	startKey := network.KeyFor(start)
	targetKey := network.KeyFor(target)
	notFound := &PathNotFoundError{Start: startKey, Target: targetKey, MaxLength: opts.MaxPathLength}

	if _, ok := e.net.Node(startKey); !ok {
		e.log.Debug("start node not in network", zap.String("start", startKey))
		return nil, notFound
	}
	targetFormulas := targetSet(target)

	frontier := &pathHeap{}
	heap.Init(frontier)
	heap.Push(frontier, &partial{node: startKey, trail: startKey})

	best := map[string]float64{}
	visits := map[string]int{}
	var complete []Pathway

	for frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			e.log.Debug("search cancelled", zap.String("start", startKey), zap.Error(err))
			return nil, ErrCancelled
		}
		cur := heap.Pop(frontier).(*partial)

		if len(cur.edges) > 0 && nodeMatches(e.net, cur.node, targetFormulas) {
			complete = append(complete, Pathway{
				Edges:          cur.edges,
				CumulativeCost: cur.cost,
			})
			continue
		}
		if len(cur.edges) >= opts.MaxPathLength {
			continue
		}

		for _, edge := range e.net.EdgesFrom(cur.node) {
			if !edge.Release && opts.MaxStepCost != nil && edge.Weight > *opts.MaxStepCost {
				continue
			}
			if cur.visited(edge.To) {
				continue
			}
			next := cur.extend(edge)
			if seen, ok := best[edge.To]; ok && next.cost >= seen {
				// The K budget applies only within the tolerance band
				// above the node's best known cost.
				if next.cost > seen+opts.CostTolerance {
					continue
				}
				if visits[edge.To] >= opts.K {
					continue
				}
				visits[edge.To]++
			} else {
				// First arrival or a strict improvement: always admit
				// and restart the band budget at the new best.
				best[edge.To] = next.cost
				visits[edge.To] = 1
			}
			heap.Push(frontier, next)
		}
	}

	if len(complete) == 0 {
		e.log.Debug("no pathway found",
			zap.String("start", startKey),
			zap.String("target", targetKey),
			zap.Int("max_path_length", opts.MaxPathLength))
		return nil, notFound
	}

	sort.SliceStable(complete, func(i, j int) bool {
		if complete[i].CumulativeCost != complete[j].CumulativeCost {
			return complete[i].CumulativeCost < complete[j].CumulativeCost
		}
		if len(complete[i].Edges) != len(complete[j].Edges) {
			return len(complete[i].Edges) < len(complete[j].Edges)
		}
		return complete[i].nodeTrail() < complete[j].nodeTrail()
	})
	if len(complete) > opts.K {
		complete = complete[:opts.K]
	}
	return complete, nil
}

// targetSet collects the reduced formulas the target node must contain.
func targetSet(target []chem.Composition) map[string]struct{} {
	set := make(map[string]struct{}, len(target))
	for _, c := range target {
		set[c.ReducedFormula()] = struct{}{}
	}
	return set
}

// nodeMatches reports whether the node contains every target phase.
func nodeMatches(net *network.Network, key string, target map[string]struct{}) bool {
	node, ok := net.Node(key)
	if !ok {
		return false
	}
	have := make(map[string]struct{}, len(node.Phases))
	for _, p := range node.Phases {
		have[p.Formula()] = struct{}{}
	}
	for formula := range target {
		if _, ok := have[formula]; !ok {
			return false
		}
	}
	return true
}
