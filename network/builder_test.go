package network

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemloop/chemloop/chem"
)

func phase(t *testing.T, formula string) *chem.Phase {
	t.Helper()
	p, err := chem.NewPhase(formula)
	require.NoError(t, err)
	return p
}

func annotated(t *testing.T, cost float64, reactants, products []chem.Term) *chem.Reaction {
	t.Helper()
	rxn, err := chem.NewReaction(reactants, products)
	require.NoError(t, err)
	rxn.SetCost(cost)
	return rxn
}

// ironReduction is Fe2O3 + 3 CO -> 2 Fe + 3 CO2 at cost -0.4.
func ironReduction(t *testing.T) *chem.Reaction {
	return annotated(t, -0.4,
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 1}, {Phase: phase(t, "CO"), Coeff: 3}},
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 2}, {Phase: phase(t, "CO2"), Coeff: 3}},
	)
}

// ironOxidation is 2 Fe + 1.5 O2 -> Fe2O3 at cost -0.9.
func ironOxidation(t *testing.T) *chem.Reaction {
	return annotated(t, -0.9,
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 2}, {Phase: phase(t, "O2"), Coeff: 1.5}},
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 1}},
	)
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(0, nil)
	b.AddReaction(ironReduction(t))
	b.AddReaction(ironOxidation(t))
	net, report := b.Build()

	assert.True(t, report.Clean())
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 4, net.NodeCount())

	node, ok := net.Node("CO+Fe2O3")
	require.True(t, ok)
	assert.Len(t, node.Phases, 2)

	// One reaction edge plus the release edge into the single-phase
	// {Fe2O3} node.
	edges := net.EdgesFrom("CO+Fe2O3")
	require.Len(t, edges, 2)
	assert.Equal(t, "CO2+Fe", edges[0].To)
	assert.Equal(t, -0.4, edges[0].Weight)
	assert.True(t, edges[1].Release)
	assert.Equal(t, "Fe2O3", edges[1].To)
}

func TestBuilder_NodeDeduplication(t *testing.T) {
	// Two distinct reactions over the same node pair stay as separate
	// edges (multigraph); the nodes are interned once.
	b := NewBuilder(0, nil)
	b.AddReaction(ironReduction(t))
	double := annotated(t, -0.3,
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 2}, {Phase: phase(t, "CO"), Coeff: 6}},
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 4}, {Phase: phase(t, "CO2"), Coeff: 6}},
	)
	b.AddReaction(double)
	net, report := b.Build()

	assert.True(t, report.Clean())
	assert.Equal(t, 2, net.NodeCount())
	edges := net.EdgesFrom("CO+Fe2O3")
	require.Len(t, edges, 2)
	// Deterministic order: lowest weight first.
	assert.Equal(t, -0.4, edges[0].Weight)
	assert.Equal(t, -0.3, edges[1].Weight)
}

func TestBuilder_RejectsImbalanced(t *testing.T) {
	b := NewBuilder(0, nil)
	b.AddReaction(ironReduction(t))
	bad := annotated(t, -0.1,
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 1}},
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 2}},
	)
	b.AddReaction(bad)
	net, report := b.Build()

	// The build continues past the bad reaction.
	assert.Equal(t, 1, report.Accepted)
	require.Len(t, report.Rejected, 1)
	var mbe *chem.MassBalanceError
	require.True(t, errors.As(report.Rejected[0].Err, &mbe))
	assert.Equal(t, "O", mbe.Element)
	assert.Equal(t, 2, net.NodeCount())
}

func TestBuilder_RejectsUnannotated(t *testing.T) {
	b := NewBuilder(0, nil)
	rxn, err := chem.NewReaction(
		[]chem.Term{{Phase: phase(t, "Fe2O3"), Coeff: 1}, {Phase: phase(t, "CO"), Coeff: 3}},
		[]chem.Term{{Phase: phase(t, "Fe"), Coeff: 2}, {Phase: phase(t, "CO2"), Coeff: 3}},
	)
	require.NoError(t, err)
	b.AddReaction(rxn)
	_, report := b.Build()
	require.Len(t, report.Rejected, 1)
	assert.Contains(t, report.Rejected[0].Err.Error(), "no annotated cost")
}

func TestBuilder_RejectsSelfLoop(t *testing.T) {
	b := NewBuilder(0, nil)
	loop := annotated(t, 0,
		[]chem.Term{{Phase: phase(t, "CO"), Coeff: 2}},
		[]chem.Term{{Phase: phase(t, "CO"), Coeff: 2}},
	)
	b.AddReaction(loop)
	_, report := b.Build()
	require.Len(t, report.Rejected, 1)
	assert.Contains(t, report.Rejected[0].Err.Error(), "self-loop")
}

func TestBuilder_ReleaseEdges(t *testing.T) {
	b := NewBuilder(0, nil)
	b.AddReaction(ironReduction(t))
	// CO2 -> C + O2 gives a single-phase node {CO2}, which {CO2, Fe} can
	// release into.
	split := annotated(t, 0.8,
		[]chem.Term{{Phase: phase(t, "CO2"), Coeff: 1}},
		[]chem.Term{{Phase: phase(t, "C"), Coeff: 1}, {Phase: phase(t, "O2"), Coeff: 1}},
	)
	b.AddReaction(split)
	net, report := b.Build()
	require.True(t, report.Clean())

	edges := net.EdgesFrom("CO2+Fe")
	var release *Edge
	for _, e := range edges {
		if e.Release {
			release = e
		}
	}
	require.NotNil(t, release, "expected a release edge from CO2+Fe")
	assert.Equal(t, "CO2", release.To)
	assert.Zero(t, release.Weight)
	assert.Nil(t, release.Reaction)
}

func TestBuilder_Idempotent(t *testing.T) {
	build := func() (*Network, *BuildReport) {
		b := NewBuilder(0, nil)
		b.AddReaction(ironReduction(t))
		b.AddReaction(ironOxidation(t))
		return b.Build()
	}
	n1, r1 := build()
	n2, r2 := build()

	assert.Equal(t, r1.Accepted, r2.Accepted)
	assert.Equal(t, n1.NodeCount(), n2.NodeCount())
	rx1, rel1 := n1.EdgeCount()
	rx2, rel2 := n2.EdgeCount()
	assert.Equal(t, rx1, rx2)
	assert.Equal(t, rel1, rel2)
	assert.Equal(t, n1.Keys(), n2.Keys())
	for _, key := range n1.Keys() {
		e1, e2 := n1.EdgesFrom(key), n2.EdgesFrom(key)
		require.Len(t, e2, len(e1))
		for i := range e1 {
			assert.Equal(t, e1[i].To, e2[i].To)
			assert.Equal(t, e1[i].Weight, e2[i].Weight)
		}
	}
}

func TestNetwork_SaveLoadRoundTrip(t *testing.T) {
	b := NewBuilder(0, nil)
	b.AddReaction(ironReduction(t))
	b.AddReaction(ironOxidation(t))
	net, report := b.Build()
	require.True(t, report.Clean())

	var buf bytes.Buffer
	require.NoError(t, net.Save(&buf))

	loaded, loadReport, err := Load(&buf, nil)
	require.NoError(t, err)
	assert.True(t, loadReport.Clean())
	assert.Equal(t, net.NodeCount(), loaded.NodeCount())
	rx1, rel1 := net.EdgeCount()
	rx2, rel2 := loaded.EdgeCount()
	assert.Equal(t, rx1, rx2)
	assert.Equal(t, rel1, rel2)
	assert.Equal(t, net.Keys(), loaded.Keys())

	edges := loaded.EdgesFrom("CO+Fe2O3")
	require.Len(t, edges, 2)
	assert.Equal(t, -0.4, edges[0].Weight)
}
