package input

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chemloop/chemloop/cycle"
	"github.com/chemloop/chemloop/search"
)

// PathQuery is one pathway search given as start and target formulas.
type PathQuery struct {
	Start  []string `yaml:"start" json:"start"`
	Target []string `yaml:"target" json:"target"`
}

// queryFile is the on-disk shape for a batch of pathway queries.
type queryFile struct {
	Queries []PathQuery `yaml:"queries" json:"queries"`
}

// LoadQueries reads a pathway query file and resolves the formulas.
func LoadQueries(path string) ([]search.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}

	var qf queryFile
	if isJSON(path) {
		err = json.Unmarshal(data, &qf)
	} else {
		err = yaml.Unmarshal(data, &qf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if len(qf.Queries) == 0 {
		return nil, fmt.Errorf("%s contains no queries", filepath.Base(path))
	}

	queries := make([]search.Query, 0, len(qf.Queries))
	for i, q := range qf.Queries {
		query, err := resolveQuery(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i+1, err)
		}
		queries = append(queries, query)
	}
	return queries, nil
}

func resolveQuery(q PathQuery) (search.Query, error) {
	if len(q.Start) == 0 || len(q.Target) == 0 {
		return search.Query{}, fmt.Errorf("start and target must be non-empty")
	}
	start, err := Compositions(q.Start)
	if err != nil {
		return search.Query{}, err
	}
	target, err := Compositions(q.Target)
	if err != nil {
		return search.Query{}, err
	}
	return search.Query{Start: start, Target: target}, nil
}

// cycleFile is the on-disk shape for a cycle search.
type cycleFile struct {
	Reduction       PathQuery `yaml:"reduction" json:"reduction"`
	Oxidation       PathQuery `yaml:"oxidation" json:"oxidation"`
	CarrierElements []string  `yaml:"carrier_elements" json:"carrier_elements"`
}

// LoadCycleSpec reads a cycle query file describing the reduction and
// oxidation legs and the carrier elements that must close.
func LoadCycleSpec(path string) (cycle.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cycle.Spec{}, fmt.Errorf("failed to read cycle spec: %w", err)
	}

	var cf cycleFile
	if isJSON(path) {
		err = json.Unmarshal(data, &cf)
	} else {
		err = yaml.Unmarshal(data, &cf)
	}
	if err != nil {
		return cycle.Spec{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if len(cf.CarrierElements) == 0 {
		return cycle.Spec{}, fmt.Errorf("carrier_elements must be non-empty")
	}

	reduction, err := resolveLeg(cf.Reduction)
	if err != nil {
		return cycle.Spec{}, fmt.Errorf("reduction: %w", err)
	}
	oxidation, err := resolveLeg(cf.Oxidation)
	if err != nil {
		return cycle.Spec{}, fmt.Errorf("oxidation: %w", err)
	}

	return cycle.Spec{
		Reduction:       reduction,
		Oxidation:       oxidation,
		CarrierElements: cf.CarrierElements,
	}, nil
}

func resolveLeg(q PathQuery) (cycle.LegSpec, error) {
	if len(q.Start) == 0 || len(q.Target) == 0 {
		return cycle.LegSpec{}, fmt.Errorf("start and target must be non-empty")
	}
	start, err := Compositions(q.Start)
	if err != nil {
		return cycle.LegSpec{}, err
	}
	target, err := Compositions(q.Target)
	if err != nil {
		return cycle.LegSpec{}, err
	}
	return cycle.LegSpec{Start: start, Target: target}, nil
}
