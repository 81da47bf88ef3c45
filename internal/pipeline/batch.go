package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a request with its outcome or error.
type BatchResult struct {
	VideoID string
	Outcome *Outcome
	Err     error
}

// RunBatch runs every request with at most workers in flight. Results keep
// the order of reqs. Once ctx is canceled, requests that have not started
// fail with the context error.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, req := range reqs {
		results[i].VideoID = req.VideoID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Outcome, results[i].Err = r.Run(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed counts results carrying an error.
func Failed(results []BatchResult) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
