package chem

// Phase is a named, stable compound or solid-solution state. Phases are
// immutable once constructed; the thermodynamic data attached to them lives
// in the injected energy lookup, not on the Phase itself.
type Phase struct {
	formula     string
	composition Composition
	unstable    bool
}

// NewPhase parses formula and returns the corresponding Phase. The stored
// formula is the canonical reduced form, so two phases built from "Fe4O6"
// and "Fe2O3" compare equal by Formula.
func NewPhase(formula string) (*Phase, error) {
	comp, err := ParseFormula(formula)
	if err != nil {
		return nil, err
	}
	return &Phase{
		formula:     comp.ReducedFormula(),
		composition: comp,
	}, nil
}

// NewUnstablePhase is NewPhase with the practically-unstable flag set.
// Which phases are flagged is a policy decision supplied by configuration
// (volatile species, known sintering phases); the cycle filter charges a
// penalty for pathways that traverse them.
func NewUnstablePhase(formula string) (*Phase, error) {
	p, err := NewPhase(formula)
	if err != nil {
		return nil, err
	}
	p.unstable = true
	return p, nil
}

// Formula returns the canonical reduced formula.
func (p *Phase) Formula() string { return p.formula }

// Composition returns a copy of the phase's elemental composition.
func (p *Phase) Composition() Composition { return p.composition.Clone() }

// Unstable reports whether the phase is flagged as practically unstable.
func (p *Phase) Unstable() bool { return p.unstable }

// String implements fmt.Stringer.
func (p *Phase) String() string { return p.formula }
