package loop

import (
	"fmt"
	"strings"

	"github.com/chemloop/chemloop/chem"
)

// TwoStep is a two-step chemical looping process:
//
//	reduction: reducing agent + oxidised carrier -> products + reduced carrier
//	oxidation: oxidant + reduced carrier -> oxidised carrier
//
// The two balanced subreactions are derived at construction from the redox
// pair and the net reaction.
type TwoStep struct {
	redox *RedoxSet
	net   NetReaction

	oxidised chem.Composition
	reduced  chem.Composition

	reduction *chem.Reaction
	oxidation *chem.Reaction
}

// NewTwoStep orders the redox pair into its oxidised and reduced forms (by
// anion atoms per cation atom) and balances the two subreactions. The
// redox set must contain exactly two materials.
func NewTwoStep(redox *RedoxSet, net NetReaction) (*TwoStep, error) {
	if redox.Len() != 2 {
		return nil, fmt.Errorf("loop: two-step process requires exactly 2 redox materials, got %d", redox.Len())
	}
	mats := redox.Materials()
	r1, r2 := anionRatio(mats[0]), anionRatio(mats[1])
	if r1 == r2 {
		return nil, fmt.Errorf("loop: cannot order redox pair %s / %s: equal oxidation degree",
			mats[0].ReducedFormula(), mats[1].ReducedFormula())
	}
	oxidised, reduced := mats[0], mats[1]
	if r2 > r1 {
		oxidised, reduced = mats[1], mats[0]
	}

	ts := &TwoStep{redox: redox, net: net, oxidised: oxidised, reduced: reduced}

	reductionProducts := make([]*chem.Phase, 0, len(net.Products)+1)
	for _, p := range net.Products {
		ph, err := phaseFor(p)
		if err != nil {
			return nil, err
		}
		reductionProducts = append(reductionProducts, ph)
	}
	reducedPhase, err := phaseFor(reduced)
	if err != nil {
		return nil, err
	}
	oxidisedPhase, err := phaseFor(oxidised)
	if err != nil {
		return nil, err
	}
	agentPhase, err := phaseFor(net.ReducingAgent)
	if err != nil {
		return nil, err
	}
	oxidantPhase, err := phaseFor(net.Oxidant)
	if err != nil {
		return nil, err
	}

	ts.reduction, err = chem.Balance(
		[]*chem.Phase{agentPhase, oxidisedPhase},
		append(reductionProducts, reducedPhase),
	)
	if err != nil {
		return nil, fmt.Errorf("loop: balancing reduction leg: %w", err)
	}
	ts.oxidation, err = chem.Balance(
		[]*chem.Phase{oxidantPhase, reducedPhase},
		[]*chem.Phase{oxidisedPhase},
	)
	if err != nil {
		return nil, fmt.Errorf("loop: balancing oxidation leg: %w", err)
	}
	return ts, nil
}

// Steps returns the number of subreactions.
func (t *TwoStep) Steps() int { return 2 }

// Subreactions returns the reduction leg then the oxidation leg.
func (t *TwoStep) Subreactions() []*chem.Reaction {
	return []*chem.Reaction{t.reduction, t.oxidation}
}

// Oxidised returns the oxidised carrier form.
func (t *TwoStep) Oxidised() chem.Composition { return t.oxidised.Clone() }

// Reduced returns the reduced carrier form.
func (t *TwoStep) Reduced() chem.Composition { return t.reduced.Clone() }

// NetReaction returns the loop's net reaction.
func (t *TwoStep) NetReaction() NetReaction { return t.net }

// RedoxPair returns the carrier set.
func (t *TwoStep) RedoxPair() *RedoxSet { return t.redox }

// CarrierElements returns the shared cations of the redox pair: the
// elements the cycle filter requires to balance to zero across both legs.
func (t *TwoStep) CarrierElements() []string { return t.redox.Cations() }

// ChemicalSystem returns the union of the redox pair's and the net
// reaction's elements, sorted.
func (t *TwoStep) ChemicalSystem() []string {
	union := map[string]struct{}{}
	for _, el := range t.redox.ChemicalSystem() {
		union[el] = struct{}{}
	}
	for _, el := range t.net.ChemicalSystem() {
		union[el] = struct{}{}
	}
	return sortedKeys(union)
}

// Materials returns every phase appearing in the subreactions, in reaction
// order with duplicates removed.
func (t *TwoStep) Materials() []chem.Composition {
	var out []chem.Composition
	seen := map[string]struct{}{}
	for _, rxn := range t.Subreactions() {
		terms := make([]chem.Term, 0, len(rxn.Reactants())+len(rxn.Products()))
		terms = append(terms, rxn.Reactants()...)
		terms = append(terms, rxn.Products()...)
		for _, term := range terms {
			f := term.Phase.Formula()
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, term.Phase.Composition())
		}
	}
	return out
}

// String renders the two subreactions and the net equation.
func (t *TwoStep) String() string {
	lines := []string{
		t.reduction.String(),
		t.oxidation.String(),
	}
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}
	lines = append(lines, strings.Repeat("=", width))
	lines = append(lines, "Net rxn: "+t.net.Equation())
	return strings.Join(lines, "\n")
}

func phaseFor(c chem.Composition) (*chem.Phase, error) {
	return chem.NewPhase(c.ReducedFormula())
}
