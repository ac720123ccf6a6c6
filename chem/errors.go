package chem

import (
	"fmt"
	"strings"
)

// MassBalanceError reports a reaction whose elemental mass balance does not
// hold within tolerance. It is raised at network build time; the builder
// collects these rather than aborting the batch.
type MassBalanceError struct {
	Reaction string
	Element  string
	Delta    float64
}

// Error implements the error interface.
func (e *MassBalanceError) Error() string {
	return fmt.Sprintf("chem: reaction %q is not mass balanced: element %s off by %g",
		e.Reaction, e.Element, e.Delta)
}

// MissingDataError reports phases for which the energy lookup has no
// formation-energy entry.
type MissingDataError struct {
	Formulas []string
}

// Error implements the error interface.
func (e *MissingDataError) Error() string {
	return fmt.Sprintf("chem: no formation energy for: %s", strings.Join(e.Formulas, ", "))
}
