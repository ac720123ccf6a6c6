package network

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/chemloop/chemloop/chem"
)

// snapshot is the serialized form of a built network: the phase list and
// the annotated reaction list. The graph itself is not stored; Load rebuilds
// it, which keeps the format independent of internal adjacency layout.
type snapshot struct {
	ID        string             `json:"id"`
	Phases    []phaseSnapshot    `json:"phases"`
	Reactions []reactionSnapshot `json:"reactions"`
}

type phaseSnapshot struct {
	Formula  string `json:"formula"`
	Unstable bool   `json:"unstable,omitempty"`
}

type termSnapshot struct {
	Formula string  `json:"formula"`
	Coeff   float64 `json:"coeff"`
}

type reactionSnapshot struct {
	Reactants []termSnapshot `json:"reactants"`
	Products  []termSnapshot `json:"products"`
	Cost      float64        `json:"cost"`
}

// Save writes the network as a JSON snapshot for reuse across runs.
func (n *Network) Save(w io.Writer) error {
	snap := snapshot{ID: n.id}

	seen := map[string]bool{}
	for _, key := range n.keys {
		for _, p := range n.nodes[key].Phases {
			if seen[p.Formula()] {
				continue
			}
			seen[p.Formula()] = true
			snap.Phases = append(snap.Phases, phaseSnapshot{
				Formula:  p.Formula(),
				Unstable: p.Unstable(),
			})
		}
	}
	sort.Slice(snap.Phases, func(i, j int) bool {
		return snap.Phases[i].Formula < snap.Phases[j].Formula
	})

	for _, key := range n.keys {
		for _, e := range n.edges[key] {
			if e.Reaction == nil {
				continue
			}
			snap.Reactions = append(snap.Reactions, reactionSnapshot{
				Reactants: terms(e.Reaction.Reactants()),
				Products:  terms(e.Reaction.Products()),
				Cost:      e.Weight,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Load reads a JSON snapshot and rebuilds the network. The returned
// BuildReport carries any reactions that no longer validate.
func Load(r io.Reader, log *zap.Logger) (*Network, *BuildReport, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("network: decoding snapshot: %w", err)
	}

	phases := map[string]*chem.Phase{}
	for _, ps := range snap.Phases {
		var (
			p   *chem.Phase
			err error
		)
		if ps.Unstable {
			p, err = chem.NewUnstablePhase(ps.Formula)
		} else {
			p, err = chem.NewPhase(ps.Formula)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("network: snapshot phase %q: %w", ps.Formula, err)
		}
		phases[p.Formula()] = p
	}

	builder := NewBuilder(0, log)
	for _, rs := range snap.Reactions {
		reactants, err := resolveTerms(rs.Reactants, phases)
		if err != nil {
			return nil, nil, err
		}
		products, err := resolveTerms(rs.Products, phases)
		if err != nil {
			return nil, nil, err
		}
		rxn, err := chem.NewReaction(reactants, products)
		if err != nil {
			return nil, nil, fmt.Errorf("network: snapshot reaction: %w", err)
		}
		rxn.SetCost(rs.Cost)
		builder.AddReaction(rxn)
	}
	net, report := builder.Build()
	return net, report, nil
}

func terms(ts []chem.Term) []termSnapshot {
	out := make([]termSnapshot, len(ts))
	for i, t := range ts {
		out[i] = termSnapshot{Formula: t.Phase.Formula(), Coeff: t.Coeff}
	}
	return out
}

func resolveTerms(ts []termSnapshot, phases map[string]*chem.Phase) ([]chem.Term, error) {
	out := make([]chem.Term, len(ts))
	for i, t := range ts {
		p, ok := phases[t.Formula]
		if !ok {
			return nil, fmt.Errorf("network: snapshot references unknown phase %q", t.Formula)
		}
		out[i] = chem.Term{Phase: p, Coeff: t.Coeff}
	}
	return out, nil
}
