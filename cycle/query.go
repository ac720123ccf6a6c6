package cycle

import (
	"context"
	"errors"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/search"
)

// LegSpec is the start and target phase set of one leg.
type LegSpec struct {
	Start  []chem.Composition
	Target []chem.Composition
}

// Spec describes a full cycle query: the two legs plus the carrier elements
// that must balance across them.
type Spec struct {
	Reduction       LegSpec
	Oxidation       LegSpec
	CarrierElements []string
}

// FindCycles searches both legs against the engine's network and pairs the
// results into ranked cycles. A missing pathway on either leg yields a
// NoValidCycleError, since "no closable loop" is an analysis result, not a
// failure; cancellation surfaces as search.ErrCancelled.
func (f *Filter) FindCycles(ctx context.Context, engine *search.Engine, spec Spec, opts search.Options) ([]Cycle, error) {
	carrier := joinElements(spec.CarrierElements)

	reduction, err := engine.FindPathways(ctx, spec.Reduction.Start, spec.Reduction.Target, opts)
	if err != nil {
		return nil, legError(err, carrier, "reduction leg")
	}
	oxidation, err := engine.FindPathways(ctx, spec.Oxidation.Start, spec.Oxidation.Target, opts)
	if err != nil {
		return nil, legError(err, carrier, "oxidation leg")
	}
	return f.Pair(reduction, oxidation, spec.CarrierElements)
}

// legError maps a leg search failure onto the cycle error taxonomy.
func legError(err error, carrier, leg string) error {
	var nf *search.PathNotFoundError
	if errors.As(err, &nf) {
		return &NoValidCycleError{Carrier: carrier, Reason: leg + ": " + nf.Error()}
	}
	return err
}
