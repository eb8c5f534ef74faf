package engine

import (
	"context"
	"fmt"

	"github.com/gyaneshwarpardhi/threadgraph/internal/thread"
)

// computeDepths runs the per-thread depth calculation on a worker pool.
// Results are merged in forest order so the outcome, including reported
// ambiguities, is identical to thread.ComputeDepths.
func computeDepths(ctx context.Context, f *thread.Forest, workers int, rep thread.Reporter) (thread.Depths, error) {
	graphs := f.Graphs()
	results := make([]thread.DepthResult, len(graphs))

	pool := newWorkerPool(ctx, workers, workers*4,
		func(ctx context.Context, i int) (thread.DepthResult, error) {
			if err := ctx.Err(); err != nil {
				return thread.DepthResult{}, err
			}
			return graphs[i].Depths(), nil
		},
		func(i int, r thread.DepthResult) { results[i] = r },
	)
	for i := range graphs {
		if err := pool.Submit(ctx, i); err != nil {
			pool.Drain() //nolint:errcheck
			return nil, fmt.Errorf("depth: %w", err)
		}
	}
	if err := pool.Drain(); err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	return thread.MergeDepths(results, rep), nil
}
