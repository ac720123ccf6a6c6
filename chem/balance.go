package chem

import (
	"fmt"
	"math"
)

// balanceCoeffTol is the smallest coefficient magnitude accepted from the
// balancing solve. Solutions needing a zero or negative coefficient mean
// the requested species cannot all participate.
const balanceCoeffTol = 1e-8

// Balance finds positive stoichiometric coefficients such that the given
// reactant and product phases form a mass-balanced reaction. The first
// reactant's coefficient is fixed to one and the remaining coefficients are
// solved by least squares over the element-count matrix; the result is
// rescaled so the smallest coefficient is one.
//
// Returns a MassBalanceError when no balanced combination exists (residual
// above CountTolerance) and a plain error when the system is degenerate
// (ambiguous stoichiometry or non-positive coefficients).
func Balance(reactants, products []*Phase) (*Reaction, error) {
	if len(reactants) == 0 || len(products) == 0 {
		return nil, fmt.Errorf("chem: balance requires at least one reactant and one product")
	}
	species := make([]*Phase, 0, len(reactants)+len(products))
	signs := make([]float64, 0, len(reactants)+len(products))
	for _, p := range reactants {
		species = append(species, p)
		signs = append(signs, -1)
	}
	for _, p := range products {
		species = append(species, p)
		signs = append(signs, +1)
	}

	elements := map[string]struct{}{}
	for _, p := range species {
		for el := range p.composition {
			elements[el] = struct{}{}
		}
	}
	els := Composition{}
	for el := range elements {
		els[el] = 1
	}
	order := els.Elements()

	// a[e][j] = signed atom count of element e in species j.
	rows := len(order)
	cols := len(species)
	a := make([][]float64, rows)
	for i, el := range order {
		a[i] = make([]float64, cols)
		for j, p := range species {
			a[i][j] = signs[j] * p.composition.Count(el)
		}
	}

	// Fix x0 = 1, solve the remaining coefficients by least squares:
	// (M^T M) x = -M^T a0 with M the matrix without its first column.
	n := cols - 1
	if n == 0 {
		return nil, fmt.Errorf("chem: cannot balance a single-species reaction")
	}
	mtm := make([][]float64, n)
	rhs := make([]float64, n)
	for i := 0; i < n; i++ {
		mtm[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			for e := 0; e < rows; e++ {
				mtm[i][j] += a[e][i+1] * a[e][j+1]
			}
		}
		for e := 0; e < rows; e++ {
			rhs[i] -= a[e][i+1] * a[e][0]
		}
	}
	x, err := solveLinear(mtm, rhs)
	if err != nil {
		return nil, fmt.Errorf("chem: ambiguous stoichiometry for %v -> %v: %w",
			formulas(reactants), formulas(products), err)
	}

	coeffs := append([]float64{1}, x...)

	// Residual check: the least-squares solution only balances if the
	// system is actually solvable.
	var worst float64
	worstEl := ""
	for e, el := range order {
		var resid float64
		for j := range coeffs {
			resid += a[e][j] * coeffs[j]
		}
		if math.Abs(resid) > math.Abs(worst) {
			worst, worstEl = resid, el
		}
	}
	if math.Abs(worst) > CountTolerance {
		eq := fmt.Sprintf("%v -> %v", formulas(reactants), formulas(products))
		return nil, &MassBalanceError{Reaction: eq, Element: worstEl, Delta: worst}
	}

	minCoeff := math.Inf(1)
	for _, c := range coeffs {
		if c <= balanceCoeffTol {
			return nil, fmt.Errorf("chem: balancing %v -> %v requires non-positive coefficient %g",
				formulas(reactants), formulas(products), c)
		}
		if c < minCoeff {
			minCoeff = c
		}
	}
	for i := range coeffs {
		coeffs[i] /= minCoeff
	}

	rTerms := make([]Term, len(reactants))
	for i, p := range reactants {
		rTerms[i] = Term{Phase: p, Coeff: coeffs[i]}
	}
	pTerms := make([]Term, len(products))
	for i, p := range products {
		pTerms[i] = Term{Phase: p, Coeff: coeffs[len(reactants)+i]}
	}
	return NewReaction(rTerms, pTerms)
}

// solveLinear solves ax = b by Gaussian elimination with partial pivoting.
func solveLinear(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	for i := range a {
		m[i] = append(append([]float64{}, a[i]...), b[i])
	}
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < balanceCoeffTol {
			return nil, fmt.Errorf("singular system")
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = m[i][n] / m[i][i]
	}
	return x, nil
}

func formulas(phases []*Phase) []string {
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.Formula()
	}
	return out
}
