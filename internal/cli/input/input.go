// Package input loads reaction datasets and search queries from YAML or
// JSON files and turns them into domain values.
package input

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/costs"
)

// TermSpec is one phase entry on a reaction side. A zero coefficient
// means the side should be balanced automatically.
type TermSpec struct {
	Formula string  `yaml:"formula" json:"formula"`
	Coeff   float64 `yaml:"coeff,omitempty" json:"coeff,omitempty"`
}

// ReactionSpec is one reaction entry in a dataset file.
type ReactionSpec struct {
	Reactants []TermSpec `yaml:"reactants" json:"reactants"`
	Products  []TermSpec `yaml:"products" json:"products"`
}

// Dataset is the on-disk description of a reaction set: candidate
// reactions, per-formula energies, and cost-model annotations.
type Dataset struct {
	Energies          map[string]float64 `yaml:"energies" json:"energies"`
	UnstablePhases    []string           `yaml:"unstable_phases,omitempty" json:"unstable_phases,omitempty"`
	UndesirablePhases map[string]float64 `yaml:"undesirable_phases,omitempty" json:"undesirable_phases,omitempty"`
	ElementLoss       map[string]float64 `yaml:"element_loss,omitempty" json:"element_loss,omitempty"`
	Reactions         []ReactionSpec     `yaml:"reactions" json:"reactions"`
}

// LoadDataset reads a dataset file. The format is chosen by extension:
// .json is JSON, everything else is parsed as YAML.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var d Dataset
	if isJSON(path) {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Dataset) validate() error {
	if len(d.Reactions) == 0 {
		return fmt.Errorf("dataset contains no reactions")
	}
	for _, formula := range d.UnstablePhases {
		if _, err := chem.ParseFormula(formula); err != nil {
			return fmt.Errorf("unstable_phases: %w", err)
		}
	}
	for i, r := range d.Reactions {
		if len(r.Reactants) == 0 || len(r.Products) == 0 {
			return fmt.Errorf("reaction %d: both sides must be non-empty", i+1)
		}
		coeffs := 0
		for _, term := range append(append([]TermSpec{}, r.Reactants...), r.Products...) {
			if _, err := chem.ParseFormula(term.Formula); err != nil {
				return fmt.Errorf("reaction %d: %w", i+1, err)
			}
			if term.Coeff < 0 {
				return fmt.Errorf("reaction %d: coefficient for %s must not be negative", i+1, term.Formula)
			}
			if term.Coeff > 0 {
				coeffs++
			}
		}
		if coeffs != 0 && coeffs != len(r.Reactants)+len(r.Products) {
			return fmt.Errorf("reaction %d: give coefficients for every phase or none", i+1)
		}
	}
	return nil
}

// Phases builds the phase table for the dataset, honoring the
// unstable_phases list. Formulas are keyed in reduced form.
func (d *Dataset) Phases() (map[string]*chem.Phase, error) {
	unstable := make(map[string]bool, len(d.UnstablePhases))
	for _, formula := range d.UnstablePhases {
		comp, err := chem.ParseFormula(formula)
		if err != nil {
			return nil, err
		}
		unstable[comp.ReducedFormula()] = true
	}

	phases := make(map[string]*chem.Phase)
	add := func(formula string) error {
		comp, err := chem.ParseFormula(formula)
		if err != nil {
			return err
		}
		key := comp.ReducedFormula()
		if _, ok := phases[key]; ok {
			return nil
		}
		var p *chem.Phase
		if unstable[key] {
			p, err = chem.NewUnstablePhase(formula)
		} else {
			p, err = chem.NewPhase(formula)
		}
		if err != nil {
			return err
		}
		phases[key] = p
		return nil
	}

	for _, r := range d.Reactions {
		for _, term := range r.Reactants {
			if err := add(term.Formula); err != nil {
				return nil, err
			}
		}
		for _, term := range r.Products {
			if err := add(term.Formula); err != nil {
				return nil, err
			}
		}
	}
	return phases, nil
}

// BuildReactions turns the reaction specs into balanced reactions.
// Entries without coefficients are balanced automatically.
func (d *Dataset) BuildReactions() ([]*chem.Reaction, error) {
	phases, err := d.Phases()
	if err != nil {
		return nil, err
	}

	lookup := func(formula string) (*chem.Phase, error) {
		comp, err := chem.ParseFormula(formula)
		if err != nil {
			return nil, err
		}
		p, ok := phases[comp.ReducedFormula()]
		if !ok {
			return nil, fmt.Errorf("unknown phase %s", formula)
		}
		return p, nil
	}

	reactions := make([]*chem.Reaction, 0, len(d.Reactions))
	for i, spec := range d.Reactions {
		rxn, err := buildReaction(spec, lookup)
		if err != nil {
			return nil, fmt.Errorf("reaction %d: %w", i+1, err)
		}
		reactions = append(reactions, rxn)
	}
	return reactions, nil
}

func buildReaction(spec ReactionSpec, lookup func(string) (*chem.Phase, error)) (*chem.Reaction, error) {
	if spec.Reactants[0].Coeff == 0 {
		// Auto-balance from bare phase lists.
		reactants := make([]*chem.Phase, 0, len(spec.Reactants))
		products := make([]*chem.Phase, 0, len(spec.Products))
		for _, term := range spec.Reactants {
			p, err := lookup(term.Formula)
			if err != nil {
				return nil, err
			}
			reactants = append(reactants, p)
		}
		for _, term := range spec.Products {
			p, err := lookup(term.Formula)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
		return chem.Balance(reactants, products)
	}

	terms := func(specs []TermSpec) ([]chem.Term, error) {
		out := make([]chem.Term, 0, len(specs))
		for _, term := range specs {
			p, err := lookup(term.Formula)
			if err != nil {
				return nil, err
			}
			out = append(out, chem.Term{Phase: p, Coeff: term.Coeff})
		}
		return out, nil
	}

	reactants, err := terms(spec.Reactants)
	if err != nil {
		return nil, err
	}
	products, err := terms(spec.Products)
	if err != nil {
		return nil, err
	}
	return chem.NewReaction(reactants, products)
}

// EnergyLookup adapts the dataset's energy table for cost annotation.
// Formulas are matched in reduced form so "Fe2O3" and "Fe4O6" agree.
func (d *Dataset) EnergyLookup() (costs.MapLookup, error) {
	lookup := make(map[string]float64, len(d.Energies))
	for formula, energy := range d.Energies {
		comp, err := chem.ParseFormula(formula)
		if err != nil {
			return nil, fmt.Errorf("energies: %w", err)
		}
		lookup[comp.ReducedFormula()] = energy
	}
	return lookup, nil
}

// Penalties builds the cost penalty terms from the dataset's annotation
// tables, normalizing undesirable-phase formulas to reduced form.
func (d *Dataset) Penalties() (costs.Penalties, error) {
	p := costs.Penalties{ElementLoss: d.ElementLoss}
	if len(d.UndesirablePhases) > 0 {
		p.UndesirablePhases = make(map[string]float64, len(d.UndesirablePhases))
		for formula, weight := range d.UndesirablePhases {
			comp, err := chem.ParseFormula(formula)
			if err != nil {
				return costs.Penalties{}, fmt.Errorf("undesirable_phases: %w", err)
			}
			p.UndesirablePhases[comp.ReducedFormula()] = weight
		}
	}
	return p, nil
}

// Compositions parses a list of formulas into compositions, for search
// queries given on the command line or in query files.
func Compositions(formulas []string) ([]chem.Composition, error) {
	out := make([]chem.Composition, 0, len(formulas))
	for _, formula := range formulas {
		comp, err := chem.ParseFormula(formula)
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	return out, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
