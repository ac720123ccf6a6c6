// Package chem provides the core chemical types for pathway analysis:
// elemental compositions, phases, and mass-balanced reactions. Compositions
// are canonicalized so that equality and map keys are stable across runs,
// which the network builder and search engine rely on for determinism.
package chem

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// CountTolerance is the tolerance used when comparing per-element atom
// counts, matching the default mass-balance tolerance of the network
// builder.
const CountTolerance = 1e-6

// Composition maps element symbols to non-negative atom counts.
//
// A Composition is a value type: methods that transform it return a new
// Composition and never mutate the receiver's underlying map once it has
// been handed to another component.
type Composition map[string]float64

// NewComposition builds a Composition from an element→count map, dropping
// zero entries. Negative counts are rejected.
func NewComposition(counts map[string]float64) (Composition, error) {
	c := make(Composition, len(counts))
	for el, n := range counts {
		if n < 0 {
			return nil, fmt.Errorf("chem: negative count %g for element %s", n, el)
		}
		if n > 0 {
			c[el] = n
		}
	}
	return c, nil
}

// Elements returns the element symbols present, sorted alphabetically.
func (c Composition) Elements() []string {
	els := make([]string, 0, len(c))
	for el := range c {
		els = append(els, el)
	}
	sort.Strings(els)
	return els
}

// Total returns the total number of atoms.
func (c Composition) Total() float64 {
	var t float64
	for _, n := range c {
		t += n
	}
	return t
}

// Count returns the count for a single element (zero if absent).
func (c Composition) Count(el string) float64 {
	return c[el]
}

// Add returns the element-wise sum of c and other, with other scaled by
// factor. Factor may be negative; resulting counts within CountTolerance
// of zero are dropped.
func (c Composition) Add(other Composition, factor float64) Composition {
	out := make(Composition, len(c)+len(other))
	for el, n := range c {
		out[el] = n
	}
	for el, n := range other {
		out[el] += n * factor
	}
	for el, n := range out {
		if math.Abs(n) <= CountTolerance {
			delete(out, el)
		}
	}
	return out
}

// Scale returns c with every count multiplied by factor.
func (c Composition) Scale(factor float64) Composition {
	out := make(Composition, len(c))
	for el, n := range c {
		out[el] = n * factor
	}
	return out
}

// Fractional returns c normalized so that counts sum to one. The zero
// composition normalizes to itself.
func (c Composition) Fractional() Composition {
	total := c.Total()
	if total == 0 {
		return Composition{}
	}
	return c.Scale(1 / total)
}

// Key returns the canonical, scale-invariant key for the composition:
// elements in alphabetical order with their fractional counts rounded to
// six decimal places. Two compositions that differ only by overall scale
// produce identical keys.
func (c Composition) Key() string {
	frac := c.Fractional()
	var b strings.Builder
	for _, el := range frac.Elements() {
		b.WriteString(el)
		b.WriteString(trimFloat(frac[el], 6))
	}
	return b.String()
}

// ReducedFormula returns the conventional reduced formula with elements in
// alphabetical order, e.g. "Fe2O3" for {Fe:4, O:6}. Counts are divided by
// their greatest common integer divisor when all counts are integral;
// non-integral counts are scaled so the smallest count is one.
func (c Composition) ReducedFormula() string {
	if len(c) == 0 {
		return ""
	}
	counts := make(map[string]float64, len(c))
	allIntegral := true
	minCount := math.Inf(1)
	for el, n := range c {
		counts[el] = n
		if math.Abs(n-math.Round(n)) > CountTolerance {
			allIntegral = false
		}
		if n < minCount {
			minCount = n
		}
	}
	if allIntegral {
		g := 0
		for _, n := range counts {
			g = gcd(g, int(math.Round(n)))
		}
		if g > 1 {
			for el := range counts {
				counts[el] = math.Round(counts[el]) / float64(g)
			}
		}
	} else if minCount > 0 {
		for el := range counts {
			counts[el] /= minCount
		}
	}

	var b strings.Builder
	for _, el := range Composition(counts).Elements() {
		b.WriteString(el)
		n := counts[el]
		if math.Abs(n-1) > CountTolerance {
			b.WriteString(trimFloat(n, 4))
		}
	}
	return b.String()
}

// Equal reports whether two compositions have identical counts within
// CountTolerance per element.
func (c Composition) Equal(other Composition) bool {
	for el, n := range c {
		if math.Abs(n-other[el]) > CountTolerance {
			return false
		}
	}
	for el, n := range other {
		if _, ok := c[el]; !ok && math.Abs(n) > CountTolerance {
			return false
		}
	}
	return true
}

// SharesElements reports whether c and other have at least one element in
// common.
func (c Composition) SharesElements(other Composition) bool {
	for el := range c {
		if _, ok := other[el]; ok {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the composition.
func (c Composition) Clone() Composition {
	out := make(Composition, len(c))
	for el, n := range c {
		out[el] = n
	}
	return out
}

// String renders the composition as a plain formula.
func (c Composition) String() string {
	return c.ReducedFormula()
}

// trimFloat formats f with the given precision and strips trailing zeros
// and a trailing decimal point.
func trimFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
