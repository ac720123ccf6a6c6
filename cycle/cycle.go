// Package cycle pairs independently-searched reduction and oxidation
// pathway legs into complete chemical looping cycles. A pair is a valid
// cycle only when the carrier phases produced by one leg are consumed by
// the other (up to a positive scaling between the legs), so the carrier
// returns to its original state each loop.
package cycle

import (
	"fmt"
	"math"
	"sort"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/search"
)

// DefaultBalanceTolerance is the per-phase tolerance for the carrier
// balance check.
const DefaultBalanceTolerance = 1e-6

// NoValidCycleError reports that no combination of legs closes the loop.
// Like search.PathNotFoundError this is a legitimate analysis result.
type NoValidCycleError struct {
	Carrier string
	Reason  string
}

// Error implements the error interface.
func (e *NoValidCycleError) Error() string {
	msg := fmt.Sprintf("cycle: no valid cycle for carrier %s", e.Carrier)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Cycle is a reduction leg and an oxidation leg that together return the
// carrier to its initial state.
type Cycle struct {
	// Reduction is the leg where the fuel reduces the carrier.
	Reduction search.Pathway

	// Oxidation is the regeneration leg re-oxidising the carrier.
	Oxidation search.Pathway

	// Scale is the positive factor applied to the oxidation leg's
	// stoichiometry to cancel the reduction leg's carrier change.
	Scale float64

	// CombinedCost is the sum of the two legs' cumulative costs.
	CombinedCost float64

	// Penalty is the feasibility penalty for practically unstable phases
	// traversed by either leg.
	Penalty float64
}

// Score is the ranking key: combined cost plus penalty.
func (c Cycle) Score() float64 { return c.CombinedCost + c.Penalty }

// Filter validates and ranks candidate leg pairs.
type Filter struct {
	// BalanceTolerance bounds the residual carrier-phase change after
	// scaling. Defaults to DefaultBalanceTolerance when zero.
	BalanceTolerance float64

	// InstabilityPenalty is charged once per unstable-phase occurrence
	// across both legs' reactions. The set of flagged phases is a policy
	// input carried on the phases themselves.
	InstabilityPenalty float64

	// Include, when non-empty, requires at least one reaction of the
	// cycle to match a member (by reactant/product phase sets).
	Include []*chem.Reaction

	// Exclude invalidates any cycle whose legs contain a matching
	// reaction.
	Exclude []*chem.Reaction
}

// Pair combines every reduction leg with every oxidation leg, keeps the
// pairs whose net carrier change cancels, and ranks them by combined cost
// plus instability penalty with deterministic tie-breaking. carrierElements
// selects which phases count as carrier phases: any phase containing one
// of the elements.
func (f *Filter) Pair(reduction, oxidation []search.Pathway, carrierElements []string) ([]Cycle, error) {
	tol := f.BalanceTolerance
	if tol <= 0 {
		tol = DefaultBalanceTolerance
	}
	carrier := make(map[string]struct{}, len(carrierElements))
	for _, el := range carrierElements {
		carrier[el] = struct{}{}
	}

	var cycles []Cycle
	for _, red := range reduction {
		if !f.admitted(red) {
			continue
		}
		netRed := carrierChange(red, carrier, tol)
		for _, oxi := range oxidation {
			if !f.admitted(oxi) {
				continue
			}
			netOxi := carrierChange(oxi, carrier, tol)
			scale, ok := cancels(netRed, netOxi, tol)
			if !ok {
				continue
			}
			c := Cycle{
				Reduction:    red,
				Oxidation:    oxi,
				Scale:        scale,
				CombinedCost: red.CumulativeCost + oxi.CumulativeCost,
				Penalty:      f.InstabilityPenalty * float64(unstableCount(red)+unstableCount(oxi)),
			}
			if len(f.Include) > 0 && !f.containsIncluded(c) {
				continue
			}
			cycles = append(cycles, c)
		}
	}

	if len(cycles) == 0 {
		return nil, &NoValidCycleError{Carrier: joinElements(carrierElements)}
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		if cycles[i].Score() != cycles[j].Score() {
			return cycles[i].Score() < cycles[j].Score()
		}
		if cycles[i].CombinedCost != cycles[j].CombinedCost {
			return cycles[i].CombinedCost < cycles[j].CombinedCost
		}
		li := cycles[i].Reduction.String() + cycles[i].Oxidation.String()
		lj := cycles[j].Reduction.String() + cycles[j].Oxidation.String()
		return li < lj
	})
	return cycles, nil
}

// admitted applies the exclude filter to one leg.
func (f *Filter) admitted(p search.Pathway) bool {
	for _, rxn := range p.Reactions() {
		for _, ex := range f.Exclude {
			if rxn.SameEquation(ex) {
				return false
			}
		}
	}
	return true
}

// containsIncluded reports whether any reaction of the cycle matches the
// include set.
func (f *Filter) containsIncluded(c Cycle) bool {
	for _, p := range []search.Pathway{c.Reduction, c.Oxidation} {
		for _, rxn := range p.Reactions() {
			for _, in := range f.Include {
				if rxn.SameEquation(in) {
					return true
				}
			}
		}
	}
	return false
}

// carrierChange sums the signed stoichiometric change of carrier phases
// over a leg: products positive, reactants negative, keyed by reduced
// formula. Phases without a carrier element (the externally exchanged
// fuel, oxidant, and gaseous products) are excluded.
func carrierChange(p search.Pathway, carrier map[string]struct{}, tol float64) map[string]float64 {
	net := map[string]float64{}
	add := func(terms []chem.Term, sign float64) {
		for _, t := range terms {
			if !containsAny(t.Phase.Composition(), carrier) {
				continue
			}
			net[t.Phase.Formula()] += sign * t.Coeff
		}
	}
	for _, rxn := range p.Reactions() {
		add(rxn.Reactants(), -1)
		add(rxn.Products(), +1)
	}
	for formula, v := range net {
		if math.Abs(v) <= tol {
			delete(net, formula)
		}
	}
	return net
}

// cancels reports whether a positive scale s exists such that
// netRed + s·netOxi is zero for every carrier phase within tol, and
// returns it.
func cancels(netRed, netOxi map[string]float64, tol float64) (float64, bool) {
	if len(netRed) == 0 || len(netOxi) == 0 {
		return 0, false
	}
	formulas := map[string]struct{}{}
	for f := range netRed {
		formulas[f] = struct{}{}
	}
	for f := range netOxi {
		formulas[f] = struct{}{}
	}
	ordered := make([]string, 0, len(formulas))
	for f := range formulas {
		ordered = append(ordered, f)
	}
	sort.Strings(ordered)

	scale := 0.0
	for _, f := range ordered {
		r, o := netRed[f], netOxi[f]
		if math.Abs(r) > tol && math.Abs(o) > tol {
			scale = -r / o
			break
		}
	}
	if scale <= 0 {
		return 0, false
	}
	for _, f := range ordered {
		if resid := netRed[f] + scale*netOxi[f]; math.Abs(resid) > tol*math.Max(1, scale) {
			return 0, false
		}
	}
	return scale, true
}

// unstableCount counts unstable-phase occurrences across a leg's reactions.
func unstableCount(p search.Pathway) int {
	n := 0
	for _, rxn := range p.Reactions() {
		for _, t := range rxn.Reactants() {
			if t.Phase.Unstable() {
				n++
			}
		}
		for _, t := range rxn.Products() {
			if t.Phase.Unstable() {
				n++
			}
		}
	}
	return n
}

func containsAny(c chem.Composition, elements map[string]struct{}) bool {
	for el := range elements {
		if c.Count(el) > 0 {
			return true
		}
	}
	return false
}

func joinElements(elements []string) string {
	out := ""
	for i, el := range elements {
		if i > 0 {
			out += ","
		}
		out += el
	}
	return out
}
