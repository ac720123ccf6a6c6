// Package costs implements the reaction cost model. A Calculator annotates
// each candidate reaction with a scalar cost derived from its per-atom
// reaction energy plus configurable penalties. Costs are what the search
// engine minimizes; the sign convention is fixed throughout the module:
// negative cost means thermodynamically favorable (exothermic, driving),
// positive cost means unfavorable.
package costs

import (
	"math"

	"github.com/chemloop/chemloop/chem"
)

// EnergyLookup resolves a phase's formation energy per atom. It is an
// explicit, injected read-only object rather than ambient global state so
// that concurrent builds against different databases stay isolated.
type EnergyLookup interface {
	// EnergyPerAtom returns the formation energy per atom for the reduced
	// formula, and whether an entry exists.
	EnergyPerAtom(formula string) (float64, bool)
}

// MapLookup is an EnergyLookup backed by a plain map keyed by reduced
// formula.
type MapLookup map[string]float64

// EnergyPerAtom implements EnergyLookup.
func (m MapLookup) EnergyPerAtom(formula string) (float64, bool) {
	e, ok := m[formula]
	return e, ok
}

// Weighting selects how reaction energies are mapped to edge costs.
type Weighting int

const (
	// WeightEnergy uses the raw reaction energy per atom. Favorable
	// reactions carry negative cost.
	WeightEnergy Weighting = iota

	// WeightSoftplus maps the reaction energy through Softplus at the
	// configured temperature, yielding strictly positive costs that
	// still rank favorable reactions lower.
	WeightSoftplus
)

// Penalties holds the optional additive cost terms.
type Penalties struct {
	// UndesirablePhases maps reduced formulas to the penalty charged when
	// the phase appears among a reaction's products.
	UndesirablePhases map[string]float64

	// ElementLoss maps target element symbols to the penalty charged when
	// the element is present among the reactants but absent from every
	// product phase.
	ElementLoss map[string]float64
}

// Calculator computes and caches reaction costs. It holds no mutable state
// of its own; Annotate writes the computed cost onto the reaction.
type Calculator struct {
	Lookup    EnergyLookup
	Penalties Penalties

	// Weighting and TemperatureK select the cost mapping. TemperatureK is
	// only consulted for WeightSoftplus.
	Weighting    Weighting
	TemperatureK float64
}

// ReactionEnergy returns the reaction energy per atom:
// (ΣE_products·n − ΣE_reactants·n) / total atoms in the reaction.
// Returns a chem.MissingDataError naming every phase without an energy
// entry.
func (c *Calculator) ReactionEnergy(rxn *chem.Reaction) (float64, error) {
	var missing []string
	sum := func(terms []chem.Term, sign float64) float64 {
		var e float64
		for _, t := range terms {
			perAtom, ok := c.Lookup.EnergyPerAtom(t.Phase.Formula())
			if !ok {
				missing = append(missing, t.Phase.Formula())
				continue
			}
			e += sign * perAtom * t.Phase.Composition().Total() * t.Coeff
		}
		return e
	}
	total := sum(rxn.Products(), +1) + sum(rxn.Reactants(), -1)
	if len(missing) > 0 {
		return 0, &chem.MissingDataError{Formulas: missing}
	}
	atoms := rxn.TotalAtoms()
	if atoms == 0 {
		return 0, nil
	}
	return total / atoms, nil
}

// Annotate computes the reaction's cost and caches it on the reaction.
// Already-annotated reactions are left untouched, so repeated queries never
// recompute costs.
func (c *Calculator) Annotate(rxn *chem.Reaction) error {
	if _, ok := rxn.Cost(); ok {
		return nil
	}
	energy, err := c.ReactionEnergy(rxn)
	if err != nil {
		return err
	}
	cost := energy
	if c.Weighting == WeightSoftplus {
		cost = Softplus(c.TemperatureK, energy)
	}
	cost += c.penalty(rxn)
	rxn.SetCost(cost)
	return nil
}

// penalty sums the configured additive penalty terms for the reaction.
func (c *Calculator) penalty(rxn *chem.Reaction) float64 {
	var p float64
	for _, t := range rxn.Products() {
		if w, ok := c.Penalties.UndesirablePhases[t.Phase.Formula()]; ok {
			p += w
		}
	}
	for el, w := range c.Penalties.ElementLoss {
		inReactants := false
		for _, t := range rxn.Reactants() {
			if t.Phase.Composition().Count(el) > 0 {
				inReactants = true
				break
			}
		}
		if !inReactants {
			continue
		}
		inProducts := false
		for _, t := range rxn.Products() {
			if t.Phase.Composition().Count(el) > 0 {
				inProducts = true
				break
			}
		}
		if !inProducts {
			p += w
		}
	}
	return p
}

// Softplus maps a reaction energy to a strictly positive cost at the given
// temperature: ln(1 + (273/T)·e^E). Lower energies still map to lower
// costs, so ranking is preserved while negative cycle weights are avoided.
func Softplus(temperatureK, energy float64) float64 {
	return math.Log(1 + (273/temperatureK)*math.Exp(energy))
}
