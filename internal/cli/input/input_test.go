package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const ironDataset = `
energies:
  CO: -0.5
  CO2: -0.9
  Fe2O3: -1.6
  Fe: 0.0
  O2: 0.0
unstable_phases: [FeO]
undesirable_phases:
  Fe3C: 0.25
element_loss:
  Fe: 0.2
reactions:
  - reactants:
      - {formula: CO, coeff: 3}
      - {formula: Fe2O3, coeff: 1}
    products:
      - {formula: CO2, coeff: 3}
      - {formula: Fe, coeff: 2}
  - reactants:
      - {formula: Fe}
      - {formula: O2}
    products:
      - {formula: Fe2O3}
`

func TestLoadDataset_YAML(t *testing.T) {
	path := writeFile(t, "iron.yaml", ironDataset)

	d, err := LoadDataset(path)
	require.NoError(t, err)

	assert.Len(t, d.Reactions, 2)
	assert.InDelta(t, -1.6, d.Energies["Fe2O3"], 1e-12)
	assert.Equal(t, []string{"FeO"}, d.UnstablePhases)
}

func TestLoadDataset_JSON(t *testing.T) {
	path := writeFile(t, "iron.json", `{
  "energies": {"CO": -0.5, "CO2": -0.9},
  "reactions": [
    {
      "reactants": [{"formula": "CO", "coeff": 2}, {"formula": "O2", "coeff": 1}],
      "products": [{"formula": "CO2", "coeff": 2}]
    }
  ]
}`)

	d, err := LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, d.Reactions, 1)
	assert.Equal(t, "O2", d.Reactions[0].Reactants[1].Formula)
}

func TestLoadDataset_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no reactions", "energies:\n  CO: -0.5\n"},
		{"bad formula", "reactions:\n  - reactants: [{formula: 'Xx('}]\n    products: [{formula: CO}]\n"},
		{"empty side", "reactions:\n  - reactants: [{formula: CO}]\n    products: []\n"},
		{"partial coeffs", "reactions:\n  - reactants: [{formula: CO, coeff: 2}, {formula: O2}]\n    products: [{formula: CO2, coeff: 2}]\n"},
		{"negative coeff", "reactions:\n  - reactants: [{formula: CO, coeff: -1}]\n    products: [{formula: CO2, coeff: 1}]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "bad.yaml", tc.content)
			_, err := LoadDataset(path)
			assert.Error(t, err)
		})
	}
}

func TestDataset_BuildReactions(t *testing.T) {
	path := writeFile(t, "iron.yaml", ironDataset)
	d, err := LoadDataset(path)
	require.NoError(t, err)

	reactions, err := d.BuildReactions()
	require.NoError(t, err)
	require.Len(t, reactions, 2)

	// Explicit coefficients are kept as given.
	assert.Equal(t, "3 CO + Fe2O3 -> 3 CO2 + 2 Fe", reactions[0].String())

	// The bare-formula entry is balanced automatically.
	assert.True(t, reactions[1].Balanced(1e-6))
	el, delta := reactions[1].Skew()
	assert.InDelta(t, 0.0, delta, 1e-6, "element %s out of balance", el)
}

func TestDataset_PhasesCarryUnstableFlag(t *testing.T) {
	path := writeFile(t, "wustite.yaml", `
unstable_phases: [FeO]
reactions:
  - reactants: [{formula: Fe, coeff: 2}, {formula: O2, coeff: 1}]
    products: [{formula: FeO, coeff: 2}]
`)
	d, err := LoadDataset(path)
	require.NoError(t, err)

	phases, err := d.Phases()
	require.NoError(t, err)

	require.Contains(t, phases, "FeO")
	assert.True(t, phases["FeO"].Unstable())
	assert.False(t, phases["Fe"].Unstable())
}

func TestDataset_EnergyLookupReducesFormulas(t *testing.T) {
	path := writeFile(t, "iron.yaml", `
energies:
  Fe4O6: -1.6
reactions:
  - reactants: [{formula: Fe2O3, coeff: 1}]
    products: [{formula: Fe2O3, coeff: 1}]
`)
	d, err := LoadDataset(path)
	require.NoError(t, err)

	lookup, err := d.EnergyLookup()
	require.NoError(t, err)

	e, ok := lookup.EnergyPerAtom("Fe2O3")
	require.True(t, ok)
	assert.InDelta(t, -1.6, e, 1e-12)
}

func TestDataset_Penalties(t *testing.T) {
	path := writeFile(t, "iron.yaml", ironDataset)
	d, err := LoadDataset(path)
	require.NoError(t, err)

	p, err := d.Penalties()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, p.UndesirablePhases["Fe3C"], 1e-12)
	assert.InDelta(t, 0.2, p.ElementLoss["Fe"], 1e-12)
}

func TestLoadQueries(t *testing.T) {
	path := writeFile(t, "queries.yaml", `
queries:
  - start: [Fe2O3, CO]
    target: [Fe, CO2]
  - start: [Fe, O2]
    target: [Fe2O3]
`)
	queries, err := LoadQueries(path)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Len(t, queries[0].Start, 2)
	assert.Len(t, queries[1].Target, 1)
}

func TestLoadQueries_Invalid(t *testing.T) {
	path := writeFile(t, "queries.yaml", "queries:\n  - start: [Fe]\n    target: []\n")
	_, err := LoadQueries(path)
	assert.Error(t, err)

	path = writeFile(t, "empty.yaml", "queries: []\n")
	_, err = LoadQueries(path)
	assert.Error(t, err)
}

func TestLoadCycleSpec(t *testing.T) {
	path := writeFile(t, "cycle.yaml", `
reduction:
  start: [Fe2O3, CO]
  target: [Fe, CO2]
oxidation:
  start: [Fe, O2]
  target: [Fe2O3]
carrier_elements: [Fe]
`)
	spec, err := LoadCycleSpec(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fe"}, spec.CarrierElements)
	assert.Len(t, spec.Reduction.Start, 2)
	assert.Len(t, spec.Oxidation.Target, 1)
}

func TestLoadLoopSpec(t *testing.T) {
	path := writeFile(t, "loop.yaml", `
materials: [Fe, Fe2O3]
net:
  oxidant: O2
  reducing_agent: CO
  products: [CO2]
  coefficients: [-0.5, -1, 1]
`)
	redox, net, err := LoadLoopSpec(path)
	require.NoError(t, err)
	assert.Equal(t, 2, redox.Len())
	assert.Equal(t, "0.5 O2 + 1 CO -> 1 CO2", net.Equation())
}

func TestLoadLoopSpec_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no shared cation", "materials: [Fe, CuO]\nnet:\n  oxidant: O2\n  reducing_agent: CO\n  products: [CO2]\n  coefficients: [-0.5, -1, 1]\n"},
		{"missing net", "materials: [Fe, Fe2O3]\n"},
		{"coefficient count", "materials: [Fe, Fe2O3]\nnet:\n  oxidant: O2\n  reducing_agent: CO\n  products: [CO2]\n  coefficients: [-0.5, -1]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "loop.yaml", tc.content)
			_, _, err := LoadLoopSpec(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadCycleSpec_MissingCarrier(t *testing.T) {
	path := writeFile(t, "cycle.yaml", `
reduction:
  start: [Fe2O3, CO]
  target: [Fe, CO2]
oxidation:
  start: [Fe, O2]
  target: [Fe2O3]
`)
	_, err := LoadCycleSpec(path)
	assert.Error(t, err)
}
