package loop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chemloop/chemloop/chem"
)

// NetReaction is the overall transformation one complete loop realizes,
// e.g. CO + 0.5 O2 -> CO2 for chemical looping combustion. The carrier does
// not appear: it is returned to its initial state by construction.
//
// Coefficients follow the reactant-negative convention: for
// N2 + 3 H2 -> 2 NH3 they are [-1, -3, 2], ordered oxidant, reducing
// agent, then products.
type NetReaction struct {
	Oxidant       chem.Composition
	ReducingAgent chem.Composition
	Products      []chem.Composition
	Coefficients  []float64
}

// Compositions returns oxidant, reducing agent, then products.
func (n NetReaction) Compositions() []chem.Composition {
	out := []chem.Composition{n.Oxidant, n.ReducingAgent}
	return append(out, n.Products...)
}

// ChemicalSystem returns every element in the net reaction, sorted.
func (n NetReaction) ChemicalSystem() []string {
	union := map[string]struct{}{}
	for _, c := range n.Compositions() {
		for _, el := range c.Elements() {
			union[el] = struct{}{}
		}
	}
	out := make([]string, 0, len(union))
	for el := range union {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// Equation renders the net reaction with unsigned coefficients, e.g.
// "1 N2 + 3 H2 -> 2 NH3".
func (n NetReaction) Equation() string {
	formulas := make([]string, 0, 2+len(n.Products))
	formulas = append(formulas, n.Oxidant.ReducedFormula(), n.ReducingAgent.ReducedFormula())
	for _, p := range n.Products {
		formulas = append(formulas, p.ReducedFormula())
	}
	terms := make([]string, len(formulas))
	for i, f := range formulas {
		coeff := 1.0
		if i < len(n.Coefficients) {
			coeff = n.Coefficients[i]
		}
		if coeff < 0 {
			coeff = -coeff
		}
		terms[i] = fmt.Sprintf("%g %s", coeff, f)
	}
	return strings.Join(terms[:2], " + ") + " -> " + strings.Join(terms[2:], " + ")
}
