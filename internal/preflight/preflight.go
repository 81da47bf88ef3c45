package preflight

import (
	"context"

	"subseg/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Frames directory", cfg.Paths.FramesDir),
	}
	if results[0].Passed {
		results = append(results, CheckFrames("Frames", cfg.Paths.FramesDir))
	}
	results = append(results,
		CheckWritableDirectory("Output directory", cfg.Paths.OutputDir),
		CheckWritableDirectory("State directory", cfg.Paths.StateDir),
	)

	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, "Run history", cfg.HistoryPath()))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
