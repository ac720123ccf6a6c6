package chem

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Term is one phase participating in a reaction with its stoichiometric
// coefficient. Coefficients are positive on both sides; the side determines
// the sign.
type Term struct {
	Phase *Phase
	Coeff float64
}

// Reaction is an ordered pair of reactant and product terms. The derived
// cost is computed once by the cost model and cached here; nothing else
// mutates a Reaction after construction.
type Reaction struct {
	reactants []Term
	products  []Term

	cost    float64
	costSet bool
}

// NewReaction builds a Reaction from reactant and product terms. Both sides
// must be non-empty and all coefficients strictly positive. Mass balance is
// not enforced here; the network builder validates it so that imbalanced
// input can be collected and reported in aggregate.
func NewReaction(reactants, products []Term) (*Reaction, error) {
	if len(reactants) == 0 || len(products) == 0 {
		return nil, fmt.Errorf("chem: reaction requires at least one reactant and one product")
	}
	for _, t := range append(append([]Term{}, reactants...), products...) {
		if t.Phase == nil {
			return nil, fmt.Errorf("chem: reaction term has nil phase")
		}
		if t.Coeff <= 0 {
			return nil, fmt.Errorf("chem: non-positive coefficient %g for %s", t.Coeff, t.Phase)
		}
	}
	return &Reaction{
		reactants: sortTerms(reactants),
		products:  sortTerms(products),
	}, nil
}

// Reactants returns the reactant terms in canonical (formula-sorted) order.
func (r *Reaction) Reactants() []Term { return r.reactants }

// Products returns the product terms in canonical (formula-sorted) order.
func (r *Reaction) Products() []Term { return r.products }

// ReactantPhases returns the sorted reduced formulas of the reactant side.
func (r *Reaction) ReactantPhases() []string { return termFormulas(r.reactants) }

// ProductPhases returns the sorted reduced formulas of the product side.
func (r *Reaction) ProductPhases() []string { return termFormulas(r.products) }

// sideComposition sums coeff-weighted compositions for one side.
func sideComposition(terms []Term) Composition {
	comp := Composition{}
	for _, t := range terms {
		comp = comp.Add(t.Phase.composition, t.Coeff)
	}
	return comp
}

// Skew returns the element with the largest mass-balance violation and its
// signed product-minus-reactant delta. A reaction is balanced when the
// returned delta is within tolerance.
func (r *Reaction) Skew() (string, float64) {
	diff := sideComposition(r.products).Add(sideComposition(r.reactants), -1)
	worstEl, worst := "", 0.0
	for _, el := range diff.Elements() {
		if d := math.Abs(diff[el]); d > math.Abs(worst) {
			worstEl, worst = el, diff[el]
		}
	}
	return worstEl, worst
}

// Balanced reports whether elemental mass balance holds within tol for
// every element.
func (r *Reaction) Balanced(tol float64) bool {
	_, delta := r.Skew()
	return math.Abs(delta) <= tol
}

// TotalAtoms returns the number of atoms on the reactant side (equal to the
// product side for a balanced reaction). The cost model normalizes reaction
// energies by this value.
func (r *Reaction) TotalAtoms() float64 {
	return sideComposition(r.reactants).Total()
}

// Cost returns the cached cost and whether it has been set.
func (r *Reaction) Cost() (float64, bool) {
	return r.cost, r.costSet
}

// SetCost caches the computed cost. The cost model calls this exactly once
// per reaction per analysis run.
func (r *Reaction) SetCost(cost float64) {
	r.cost = cost
	r.costSet = true
}

// SameEquation reports whether other has the same reactant and product
// phase sets, ignoring coefficients. The pathway filter uses this so that
// "A + B -> C" matches "2A + 2B -> 2C".
func (r *Reaction) SameEquation(other *Reaction) bool {
	return strings.Join(r.ReactantPhases(), "+") == strings.Join(other.ReactantPhases(), "+") &&
		strings.Join(r.ProductPhases(), "+") == strings.Join(other.ProductPhases(), "+")
}

// String renders the reaction as "Fe2O3 + 3 CO -> 2 Fe + 3 CO2".
func (r *Reaction) String() string {
	return renderSide(r.reactants) + " -> " + renderSide(r.products)
}

func renderSide(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		if math.Abs(t.Coeff-1) <= CountTolerance {
			parts[i] = t.Phase.Formula()
		} else {
			parts[i] = trimFloat(t.Coeff, 4) + " " + t.Phase.Formula()
		}
	}
	return strings.Join(parts, " + ")
}

func sortTerms(terms []Term) []Term {
	out := append([]Term{}, terms...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Phase.Formula() < out[j].Phase.Formula()
	})
	return out
}

func termFormulas(terms []Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Phase.Formula()
	}
	return out
}
