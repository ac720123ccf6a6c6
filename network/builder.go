package network

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chemloop/chemloop/chem"
)

// DefaultBalanceTolerance is the per-element mass-balance tolerance applied
// to every candidate reaction at build time.
const DefaultBalanceTolerance = 1e-6

// RejectedReaction records a reaction the builder refused, with its typed
// reason. Rejections are collected, never silently dropped: a caller sees
// every problem in the batch at once.
type RejectedReaction struct {
	Reaction *chem.Reaction
	Err      error
}

// BuildReport summarizes one build: how many reactions were accepted and
// which were rejected and why.
type BuildReport struct {
	Accepted int
	Rejected []RejectedReaction
}

// Clean reports whether every candidate reaction was accepted.
func (r *BuildReport) Clean() bool { return len(r.Rejected) == 0 }

// Builder accumulates annotated reactions and assembles the graph.
//
// Thread Safety: a Builder is single-writer; do not call AddReaction or
// Build concurrently. The Network returned by Build is immutable and safe
// for concurrent readers.
type Builder struct {
	tolerance float64
	log       *zap.Logger
	reactions []*chem.Reaction
}

// NewBuilder returns a Builder with the given mass-balance tolerance
// (DefaultBalanceTolerance when zero) and logger (zap.NewNop when nil).
func NewBuilder(tolerance float64, log *zap.Logger) *Builder {
	if tolerance <= 0 {
		tolerance = DefaultBalanceTolerance
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{tolerance: tolerance, log: log}
}

// AddReaction queues a candidate reaction for the next Build.
func (b *Builder) AddReaction(rxn *chem.Reaction) {
	b.reactions = append(b.reactions, rxn)
}

// Build validates every queued reaction and assembles the graph. Invalid
// reactions are reported in the BuildReport; the build continues past them.
// A reaction is rejected when it lacks an annotated cost, fails elemental
// mass balance within the builder's tolerance, or is a degenerate self-loop
// (identical canonical composition on both sides).
func (b *Builder) Build() (*Network, *BuildReport) {
	net := &Network{
		id:    uuid.NewString(),
		nodes: map[string]*Node{},
		edges: map[string][]*Edge{},
	}
	report := &BuildReport{}

	for _, rxn := range b.reactions {
		if err := b.validate(rxn); err != nil {
			b.log.Debug("rejected reaction",
				zap.String("reaction", rxn.String()),
				zap.Error(err))
			report.Rejected = append(report.Rejected, RejectedReaction{Reaction: rxn, Err: err})
			continue
		}
		from := b.internNode(net, rxn.Reactants())
		to := b.internNode(net, rxn.Products())
		cost, _ := rxn.Cost()
		net.edges[from.Key] = append(net.edges[from.Key], &Edge{
			From:     from.Key,
			To:       to.Key,
			Reaction: rxn,
			Weight:   cost,
		})
		net.reactionCount++
		report.Accepted++
	}

	b.linkReleases(net)
	b.finalize(net)

	b.log.Info("network built",
		zap.String("id", net.id),
		zap.Int("nodes", net.NodeCount()),
		zap.Int("reactions", net.reactionCount),
		zap.Int("releases", net.releaseCount),
		zap.Int("rejected", len(report.Rejected)))
	return net, report
}

// validate applies the build-time acceptance rules to one reaction.
func (b *Builder) validate(rxn *chem.Reaction) error {
	if _, ok := rxn.Cost(); !ok {
		return fmt.Errorf("network: reaction %q has no annotated cost", rxn)
	}
	if !rxn.Balanced(b.tolerance) {
		el, delta := rxn.Skew()
		return &chem.MassBalanceError{Reaction: rxn.String(), Element: el, Delta: delta}
	}
	reactantKey := sideKey(rxn.Reactants())
	productKey := sideKey(rxn.Products())
	if reactantKey == productKey {
		return fmt.Errorf("network: degenerate self-loop reaction %q", rxn)
	}
	return nil
}

// internNode returns the deduplicated node for one reaction side, creating
// it on first sight.
func (b *Builder) internNode(net *Network, terms []chem.Term) *Node {
	phases := make([]*chem.Phase, len(terms))
	for i, t := range terms {
		phases[i] = t.Phase
	}
	key := keyForPhases(phases)
	if node, ok := net.nodes[key]; ok {
		return node
	}
	node := &Node{Key: key, Phases: phases}
	net.nodes[key] = node
	return node
}

// linkReleases adds a zero-cost edge from every node to every node whose
// phase set is a strict subset of it. These edges let a walk shed spectator
// phases between reaction steps.
func (b *Builder) linkReleases(net *Network) {
	keys := make([]string, 0, len(net.nodes))
	for k := range net.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, outerKey := range keys {
		outer := net.nodes[outerKey]
		for _, innerKey := range keys {
			if innerKey == outerKey {
				continue
			}
			inner := net.nodes[innerKey]
			if phaseSubset(inner, outer) {
				net.edges[outerKey] = append(net.edges[outerKey], &Edge{
					From:    outerKey,
					To:      innerKey,
					Weight:  0,
					Release: true,
				})
				net.releaseCount++
			}
		}
	}
}

// finalize freezes deterministic iteration order: node keys sorted, each
// adjacency list ordered by (weight, target key, reaction string).
func (b *Builder) finalize(net *Network) {
	net.keys = make([]string, 0, len(net.nodes))
	for k := range net.nodes {
		net.keys = append(net.keys, k)
	}
	sort.Strings(net.keys)

	for _, key := range net.keys {
		edges := net.edges[key]
		sort.SliceStable(edges, func(i, j int) bool {
			if edges[i].Weight != edges[j].Weight {
				return edges[i].Weight < edges[j].Weight
			}
			if edges[i].To != edges[j].To {
				return edges[i].To < edges[j].To
			}
			return edgeLabel(edges[i]) < edgeLabel(edges[j])
		})
	}
}

func edgeLabel(e *Edge) string {
	if e.Reaction == nil {
		return ""
	}
	return e.Reaction.String()
}

func sideKey(terms []chem.Term) string {
	phases := make([]*chem.Phase, len(terms))
	for i, t := range terms {
		phases[i] = t.Phase
	}
	return keyForPhases(phases)
}
