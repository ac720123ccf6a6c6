package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/network"
	"github.com/chemloop/chemloop/search"
)

func phase(t *testing.T, formula string) *chem.Phase {
	t.Helper()
	p, err := chem.NewPhase(formula)
	require.NoError(t, err)
	return p
}

func comp(t *testing.T, formula string) chem.Composition {
	t.Helper()
	c, err := chem.ParseFormula(formula)
	require.NoError(t, err)
	return c
}

func rxn(t *testing.T, cost float64, reactants, products []chem.Term) *chem.Reaction {
	t.Helper()
	r, err := chem.NewReaction(reactants, products)
	require.NoError(t, err)
	r.SetCost(cost)
	return r
}

// step builds a single reaction edge with the given weight.
func step(t *testing.T, weight float64, reactants, products []chem.Term) *network.Edge {
	return &network.Edge{Reaction: rxn(t, weight, reactants, products), Weight: weight}
}

func reduction(t *testing.T, weight float64) *network.Edge {
	return step(t, weight,
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 1}, {Phase: phase(t, "CO"), Coeff: 3}},
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 2}, {Phase: phase(t, "CO2"), Coeff: 3}},
	)
}

func oxidation(t *testing.T, weight float64) *network.Edge {
	return step(t, weight,
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 2}, {Phase: phase(t, "O2"), Coeff: 1.5}},
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 1}},
	)
}

func pathway(edges ...*network.Edge) search.Pathway {
	var cost float64
	for _, e := range edges {
		cost += e.Weight
	}
	return search.Pathway{Edges: edges, CumulativeCost: cost}
}

func TestRank_ArithmeticPrefersCheapMeanStep(t *testing.T) {
	// Cumulatively the two-step route wins (-0.4 < -0.3), but its mean
	// step cost (-0.2) loses to the single -0.3 step.
	long := pathway(reduction(t, -0.2), oxidation(t, -0.2))
	short := pathway(reduction(t, -0.3))

	ranked := Set{Method: MethodArithmetic}.Rank([]search.Pathway{long, short})
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Steps())
	assert.Equal(t, 2, ranked[1].Steps())

	// Cumulative keeps the engine's order.
	ranked = Set{Method: MethodCumulative}.Rank([]search.Pathway{long, short})
	require.Len(t, ranked, 2)
	assert.Equal(t, 2, ranked[0].Steps())
}

func TestRank_MaxStepsBound(t *testing.T) {
	long := pathway(reduction(t, -0.2), oxidation(t, -0.2))
	short := pathway(reduction(t, -0.1))

	ranked := Set{MaxSteps: 1}.Rank([]search.Pathway{long, short})
	require.Len(t, ranked, 1)
	assert.Equal(t, 1, ranked[0].Steps())
}

func TestLowest(t *testing.T) {
	long := pathway(reduction(t, -0.2), oxidation(t, -0.2))
	short := pathway(reduction(t, -0.3))

	best, cost, err := Set{Method: MethodArithmetic}.Lowest([]search.Pathway{long, short})
	require.NoError(t, err)
	assert.Equal(t, 1, best.Steps())
	assert.InDelta(t, -0.3, cost, 1e-9)

	best, cost, err = Set{}.Lowest([]search.Pathway{long, short})
	require.NoError(t, err)
	assert.Equal(t, 2, best.Steps())
	assert.InDelta(t, -0.4, cost, 1e-9)
}

func TestLowest_EmptySet(t *testing.T) {
	long := pathway(reduction(t, -0.2), oxidation(t, -0.2))

	_, _, err := Set{MaxSteps: 1}.Lowest([]search.Pathway{long})
	var ese *EmptySetError
	require.ErrorAs(t, err, &ese)
	assert.Equal(t, 1, ese.MaxSteps)
}

func TestMeanStepCost_ExcludesReleases(t *testing.T) {
	p := pathway(reduction(t, -0.4))
	p.Edges = append(p.Edges, &network.Edge{Release: true})

	assert.InDelta(t, -0.4, MeanStepCost(p), 1e-9)
	assert.Zero(t, MeanStepCost(search.Pathway{}))
}

func TestLimitingStep(t *testing.T) {
	costly := oxidation(t, 0.3)
	p := pathway(reduction(t, -0.2), costly)

	worst, cost, err := LimitingStep(p)
	require.NoError(t, err)
	assert.Same(t, costly.Reaction, worst)
	assert.InDelta(t, 0.3, cost, 1e-9)

	_, _, err = LimitingStep(search.Pathway{})
	assert.Error(t, err)
}

func TestYieldCost(t *testing.T) {
	// The reduction forms 3 CO2 at -0.9, the oxidation none.
	p := pathway(reduction(t, -0.9), oxidation(t, -0.2))

	cost, err := YieldCost(p, comp(t, "CO2"))
	require.NoError(t, err)
	assert.InDelta(t, -0.3, cost, 1e-9)

	_, err = YieldCost(p, comp(t, "CH4"))
	var npe *NoProducingStepError
	require.ErrorAs(t, err, &npe)
	assert.Equal(t, "CH4", npe.Formula)
}
