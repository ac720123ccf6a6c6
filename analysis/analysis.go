// Package analysis post-processes pathway search results: re-ranking a
// pathway collection by aggregate step cost, selecting the lowest-cost
// pathway, and summarising where along a pathway a product is formed.
package analysis

import (
	"fmt"
	"sort"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/search"
)

// Method selects the aggregate used to order pathways.
type Method int

const (
	// MethodCumulative keeps the engine's cumulative-cost order.
	MethodCumulative Method = iota

	// MethodArithmetic orders by the arithmetic mean of per-step costs,
	// so a long pathway of individually cheap steps ranks ahead of a
	// short expensive one.
	MethodArithmetic
)

// EmptySetError reports that the step bound left nothing to rank.
type EmptySetError struct {
	MaxSteps int
}

func (e *EmptySetError) Error() string {
	if e.MaxSteps > 0 {
		return fmt.Sprintf("analysis: no pathway within %d steps", e.MaxSteps)
	}
	return "analysis: empty pathway set"
}

// NoProducingStepError reports that no reaction step of the pathway has
// the phase among its products.
type NoProducingStepError struct {
	Formula string
}

func (e *NoProducingStepError) Error() string {
	return fmt.Sprintf("analysis: no step produces %s", e.Formula)
}

// Set ranks a pathway collection.
type Set struct {
	// Method selects the ordering aggregate.
	Method Method

	// MaxSteps drops pathways with more reaction steps before ranking.
	// Zero means no bound.
	MaxSteps int
}

// Rank returns the admitted pathways in the configured order. The input
// slice is left untouched.
func (s Set) Rank(paths []search.Pathway) []search.Pathway {
	out := make([]search.Pathway, 0, len(paths))
	for _, p := range paths {
		if s.MaxSteps > 0 && p.Steps() > s.MaxSteps {
			continue
		}
		out = append(out, p)
	}
	if s.Method == MethodArithmetic {
		sort.SliceStable(out, func(i, j int) bool {
			return MeanStepCost(out[i]) < MeanStepCost(out[j])
		})
	}
	return out
}

// Lowest returns the best-ranked pathway together with its aggregate cost
// under the configured method.
func (s Set) Lowest(paths []search.Pathway) (search.Pathway, float64, error) {
	ranked := s.Rank(paths)
	if len(ranked) == 0 {
		return search.Pathway{}, 0, &EmptySetError{MaxSteps: s.MaxSteps}
	}
	best := ranked[0]
	if s.Method == MethodArithmetic {
		return best, MeanStepCost(best), nil
	}
	return best, best.CumulativeCost, nil
}

// MeanStepCost returns the arithmetic mean of the pathway's reaction-step
// costs. Release edges are free and excluded from the mean.
func MeanStepCost(p search.Pathway) float64 {
	var sum float64
	n := 0
	for _, e := range p.Edges {
		if e.Release {
			continue
		}
		sum += e.Weight
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// LimitingStep returns the costliest reaction step of the pathway and its
// cost.
func LimitingStep(p search.Pathway) (*chem.Reaction, float64, error) {
	var (
		worst     *chem.Reaction
		worstCost float64
	)
	for _, e := range p.Edges {
		if e.Release || e.Reaction == nil {
			continue
		}
		if worst == nil || e.Weight > worstCost {
			worst = e.Reaction
			worstCost = e.Weight
		}
	}
	if worst == nil {
		return nil, 0, fmt.Errorf("analysis: pathway has no reaction steps")
	}
	return worst, worstCost, nil
}

// YieldCost returns the mean cost of forming one formula unit of the
// product along the pathway: each producing step's cost divided by the
// product's coefficient in that step, averaged over the producing steps.
func YieldCost(p search.Pathway, product chem.Composition) (float64, error) {
	formula := product.ReducedFormula()
	var sum float64
	n := 0
	for _, e := range p.Edges {
		if e.Release || e.Reaction == nil {
			continue
		}
		for _, t := range e.Reaction.Products() {
			if t.Phase.Formula() == formula {
				sum += e.Weight / t.Coeff
				n++
				break
			}
		}
	}
	if n == 0 {
		return 0, &NoProducingStepError{Formula: formula}
	}
	return sum / float64(n), nil
}
