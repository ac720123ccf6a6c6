package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/costs"
	"github.com/chemloop/chemloop/internal/cli/config"
	"github.com/chemloop/chemloop/internal/cli/input"
	"github.com/chemloop/chemloop/network"
	"github.com/chemloop/chemloop/search"
)

// newLogger returns a development logger in verbose mode, nil otherwise.
// Builders and engines treat nil as no-op logging.
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return nil, nil
	}
	return zap.NewDevelopment()
}

// buildNetwork loads a dataset, annotates every reaction with the
// configured cost model, and assembles the reaction network.
func buildNetwork(cfg *config.Config, dataPath string, log *zap.Logger) (*network.Network, *network.BuildReport, error) {
	dataset, err := input.LoadDataset(dataPath)
	if err != nil {
		return nil, nil, err
	}

	reactions, err := dataset.BuildReactions()
	if err != nil {
		return nil, nil, err
	}

	lookup, err := dataset.EnergyLookup()
	if err != nil {
		return nil, nil, err
	}
	penalties, err := dataset.Penalties()
	if err != nil {
		return nil, nil, err
	}

	calc := &costs.Calculator{
		Lookup:       lookup,
		Penalties:    penalties,
		Weighting:    weighting(cfg.Costs.Weighting),
		TemperatureK: cfg.Costs.TemperatureK,
	}

	builder := network.NewBuilder(cfg.Network.BalanceTolerance, log)
	for _, rxn := range reactions {
		if err := calc.Annotate(rxn); err != nil {
			return nil, nil, fmt.Errorf("annotating %s: %w", rxn, err)
		}
		builder.AddReaction(rxn)
	}

	net, report := builder.Build()
	return net, report, nil
}

// loadNetwork restores a previously saved network snapshot.
func loadNetwork(path string, log *zap.Logger) (*network.Network, *network.BuildReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return network.Load(f, log)
}

func weighting(name string) costs.Weighting {
	if name == "softplus" {
		return costs.WeightSoftplus
	}
	return costs.WeightEnergy
}

// joinFormulas renders a phase set as "+"-joined reduced formulas.
func joinFormulas(comps []chem.Composition) string {
	formulas := make([]string, 0, len(comps))
	for _, c := range comps {
		formulas = append(formulas, c.ReducedFormula())
	}
	return strings.Join(formulas, " + ")
}

// searchOptions maps the loaded configuration onto engine options. The
// step-cost cap is a per-command flag, not configuration; when it is not
// given, the cap defaults to the cost of a tolerance-level step under the
// configured weighting. Softplus costs are strictly positive, so a raw
// tolerance cap would reject every softplus-weighted step.
func searchOptions(cfg *config.Config, maxStepCost float64, maxStepCostSet bool) search.Options {
	opts := search.Options{
		MaxPathLength: cfg.Search.MaxPathLength,
		CostTolerance: cfg.Search.CostTolerance,
		K:             cfg.Search.K,
	}
	switch {
	case maxStepCostSet:
		opts.MaxStepCost = &maxStepCost
	case weighting(cfg.Costs.Weighting) == costs.WeightSoftplus:
		// A tolerance-level step costs Softplus(T, tol) under softplus
		// weighting, not tol itself.
		limit := costs.Softplus(cfg.Costs.TemperatureK, cfg.Search.CostTolerance)
		opts.MaxStepCost = &limit
	default:
		limit := cfg.Search.CostTolerance
		opts.MaxStepCost = &limit
	}
	return opts
}
