package loop

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemloop/chemloop/chem"
)

func comp(t *testing.T, formula string) chem.Composition {
	t.Helper()
	c, err := chem.ParseFormula(formula)
	require.NoError(t, err)
	return c
}

func TestNewRedoxSet_SharedCation(t *testing.T) {
	set, err := NewRedoxSet([]chem.Composition{comp(t, "Fe2O3"), comp(t, "Fe")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fe"}, set.Cations())
	assert.Equal(t, []string{"O"}, set.Anions())
	assert.Equal(t, []string{"Fe", "O"}, set.ChemicalSystem())
}

func TestNewRedoxSet_NoSharedCation(t *testing.T) {
	_, err := NewRedoxSet([]chem.Composition{comp(t, "Fe2O3"), comp(t, "CuO")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share no cation")
}

func TestRedoxSet_MultipleAnions(t *testing.T) {
	// Nitride/oxide pair, as in chemical looping ammonia synthesis.
	set, err := NewRedoxSet([]chem.Composition{comp(t, "Mn3N2"), comp(t, "MnO")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mn"}, set.Cations())
	assert.Equal(t, []string{"N", "O"}, set.Anions())
}

// combustionLoop is chemical looping combustion of CO over the Fe2O3/Fe
// pair: net reaction CO + 0.5 O2 -> CO2.
func combustionLoop(t *testing.T) *TwoStep {
	t.Helper()
	redox, err := NewRedoxSet([]chem.Composition{comp(t, "Fe"), comp(t, "Fe2O3")})
	require.NoError(t, err)
	ts, err := NewTwoStep(redox, NetReaction{
		Oxidant:       comp(t, "O2"),
		ReducingAgent: comp(t, "CO"),
		Products:      []chem.Composition{comp(t, "CO2")},
		Coefficients:  []float64{-0.5, -1, 1},
	})
	require.NoError(t, err)
	return ts
}

func TestTwoStep_OrdersPair(t *testing.T) {
	ts := combustionLoop(t)
	assert.Equal(t, "Fe2O3", ts.Oxidised().ReducedFormula())
	assert.Equal(t, "Fe", ts.Reduced().ReducedFormula())
}

func TestTwoStep_Subreactions(t *testing.T) {
	ts := combustionLoop(t)
	subs := ts.Subreactions()
	require.Len(t, subs, 2)

	for _, rxn := range subs {
		assert.True(t, rxn.Balanced(1e-6), "subreaction %s not balanced", rxn)
	}

	// Reduction leg: 3 CO + Fe2O3 -> 3 CO2 + 2 Fe (scaled to min coeff 1).
	coeffOf := func(rxn *chem.Reaction, formula string) float64 {
		terms := append([]chem.Term{}, rxn.Reactants()...)
		terms = append(terms, rxn.Products()...)
		for _, term := range terms {
			if term.Phase.Formula() == formula {
				return term.Coeff
			}
		}
		return 0
	}
	red := subs[0]
	assert.InDelta(t, 3, coeffOf(red, "CO")/coeffOf(red, "Fe2O3"), 1e-6)
	assert.InDelta(t, 2, coeffOf(red, "Fe")/coeffOf(red, "Fe2O3"), 1e-6)

	// Oxidation leg: 2 Fe + 1.5 O2 -> Fe2O3.
	oxi := subs[1]
	ratio := coeffOf(oxi, "Fe") / coeffOf(oxi, "O2")
	assert.InDelta(t, 4.0/3.0, ratio, 1e-6)
}

func TestTwoStep_CarrierElements(t *testing.T) {
	ts := combustionLoop(t)
	assert.Equal(t, []string{"Fe"}, ts.CarrierElements())
	assert.Equal(t, []string{"C", "Fe", "O"}, ts.ChemicalSystem())
}

func TestTwoStep_Materials(t *testing.T) {
	ts := combustionLoop(t)
	formulas := map[string]bool{}
	for _, m := range ts.Materials() {
		formulas[m.ReducedFormula()] = true
	}
	for _, want := range []string{"Fe2O3", "Fe", "CO", "CO2", "O2"} {
		assert.True(t, formulas[want], "missing material %s", want)
	}
}

func TestTwoStep_MaterialsLeavesSubreactionsIntact(t *testing.T) {
	ts := combustionLoop(t)
	var before [][]chem.Term
	for _, rxn := range ts.Subreactions() {
		before = append(before, append([]chem.Term{}, rxn.Reactants()...))
	}
	ts.Materials()
	for i, rxn := range ts.Subreactions() {
		assert.Equal(t, before[i], rxn.Reactants())
	}
}

func TestTwoStep_RequiresPair(t *testing.T) {
	redox, err := NewRedoxSet([]chem.Composition{comp(t, "Fe2O3")})
	require.NoError(t, err)
	_, err = NewTwoStep(redox, NetReaction{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2")
}

func TestTwoStep_EqualOxidationDegree(t *testing.T) {
	redox, err := NewRedoxSet([]chem.Composition{comp(t, "FeO"), comp(t, "Fe2O2")})
	require.NoError(t, err)
	_, err = NewTwoStep(redox, NetReaction{
		Oxidant:       comp(t, "O2"),
		ReducingAgent: comp(t, "CO"),
		Products:      []chem.Composition{comp(t, "CO2")},
	})
	require.Error(t, err)
}

func TestNetReaction_Equation(t *testing.T) {
	net := NetReaction{
		Oxidant:       comp(t, "N2"),
		ReducingAgent: comp(t, "H2"),
		Products:      []chem.Composition{comp(t, "NH3")},
		Coefficients:  []float64{-1, -3, 2},
	}
	assert.Equal(t, "1 N2 + 3 H2 -> 2 NH3", net.Equation())
	assert.Equal(t, []string{"H", "N"}, net.ChemicalSystem())
}

func TestAnionRatio(t *testing.T) {
	if r := anionRatio(comp(t, "Fe2O3")); math.Abs(r-1.5) > 1e-9 {
		t.Errorf("anionRatio(Fe2O3) = %g, want 1.5", r)
	}
	if r := anionRatio(comp(t, "Fe")); r != 0 {
		t.Errorf("anionRatio(Fe) = %g, want 0", r)
	}
}
