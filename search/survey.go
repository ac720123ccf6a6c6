package search

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/chemloop/chemloop/chem"
)

// Query is one start/target pair in a survey.
type Query struct {
	Start  []chem.Composition
	Target []chem.Composition
}

// SurveyResult pairs a query with its outcome. A *PathNotFoundError is a
// normal per-query outcome and lands in Err without failing the survey.
type SurveyResult struct {
	Query    Query
	Pathways []Pathway
	Err      error
}

// Survey runs many pathway queries in parallel against the same built
// network. The network is never mutated during search, so workers need no
// locking; each query gets its own priority queue and buffers. Results are
// returned in query order regardless of completion order.
//
// Cancellation stops the whole survey and returns ErrCancelled.
func Survey(ctx context.Context, engine *Engine, queries []Query, workers int, opts Options) ([]SurveyResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]SurveyResult, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			paths, err := engine.FindPathways(gctx, q.Start, q.Target, opts)
			if errors.Is(err, ErrCancelled) {
				return err
			}
			results[i] = SurveyResult{Query: q, Pathways: paths, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ErrCancelled
	}
	return results, nil
}
