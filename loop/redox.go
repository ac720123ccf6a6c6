// Package loop defines chemical looping processes: the redox carrier pair,
// the net reaction a loop realizes, and the derivation of the per-step
// subreactions whose pathways the search engine analyzes.
package loop

import (
	"fmt"
	"sort"

	"github.com/chemloop/chemloop/chem"
)

// anionElements are the anions of common chemical looping processes.
// Everything else in a carrier material counts as a cation.
var anionElements = map[string]struct{}{
	"N": {}, "O": {}, "H": {}, "F": {}, "S": {},
}

// RedoxSet is a set of carrier material compositions sharing at least one
// cation. The shared cations are what shuttle between the oxidised and
// reduced forms across the loop.
type RedoxSet struct {
	materials []chem.Composition
}

// NewRedoxSet validates that the materials share at least one cation and
// returns the set. Materials are kept in the order given.
func NewRedoxSet(materials []chem.Composition) (*RedoxSet, error) {
	if len(materials) == 0 {
		return nil, fmt.Errorf("loop: redox set requires at least one material")
	}
	shared := cationSet(materials[0])
	for _, m := range materials[1:] {
		next := cationSet(m)
		for el := range shared {
			if _, ok := next[el]; !ok {
				delete(shared, el)
			}
		}
	}
	if len(shared) == 0 {
		return nil, fmt.Errorf("loop: redox materials share no cation")
	}
	set := &RedoxSet{materials: make([]chem.Composition, len(materials))}
	for i, m := range materials {
		set.materials[i] = m.Clone()
	}
	return set, nil
}

// Materials returns copies of the member compositions.
func (s *RedoxSet) Materials() []chem.Composition {
	out := make([]chem.Composition, len(s.materials))
	for i, m := range s.materials {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of materials.
func (s *RedoxSet) Len() int { return len(s.materials) }

// Cations returns the cations shared by every material, sorted.
func (s *RedoxSet) Cations() []string {
	shared := cationSet(s.materials[0])
	for _, m := range s.materials[1:] {
		next := cationSet(m)
		for el := range shared {
			if _, ok := next[el]; !ok {
				delete(shared, el)
			}
		}
	}
	return sortedKeys(shared)
}

// Anions returns the union of anions over all materials, sorted.
func (s *RedoxSet) Anions() []string {
	union := map[string]struct{}{}
	for _, m := range s.materials {
		for _, el := range m.Elements() {
			if _, ok := anionElements[el]; ok {
				union[el] = struct{}{}
			}
		}
	}
	return sortedKeys(union)
}

// ChemicalSystem returns every element appearing in the set, sorted.
func (s *RedoxSet) ChemicalSystem() []string {
	union := map[string]struct{}{}
	for _, m := range s.materials {
		for _, el := range m.Elements() {
			union[el] = struct{}{}
		}
	}
	return sortedKeys(union)
}

// anionRatio returns the anion atoms per cation atom of a material, used to
// order a redox pair: the form with the higher ratio is the oxidised one.
func anionRatio(m chem.Composition) float64 {
	var anions, cations float64
	for _, el := range m.Elements() {
		if _, ok := anionElements[el]; ok {
			anions += m.Count(el)
		} else {
			cations += m.Count(el)
		}
	}
	if cations == 0 {
		return 0
	}
	return anions / cations
}

func cationSet(m chem.Composition) map[string]struct{} {
	out := map[string]struct{}{}
	for _, el := range m.Elements() {
		if _, ok := anionElements[el]; !ok {
			out[el] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for el := range set {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}
