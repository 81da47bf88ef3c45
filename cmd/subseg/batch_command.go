package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"subseg/internal/frames"
	"subseg/internal/pipeline"
	"subseg/internal/preflight"
	"subseg/internal/runctx"
	"subseg/internal/segment"
)

type batchItemJSON struct {
	VideoID    string `json:"video_id"`
	OK         bool   `json:"ok"`
	RunID      string `json:"run_id,omitempty"`
	Segments   int    `json:"segments"`
	Seconds    int    `json:"subtitle_seconds"`
	OutputPath string `json:"output_path,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		flags   segmentFlags
		all     bool
		workers int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "batch [video_id...]",
		Short: "Segment several videos concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return runctx.Wrap(runctx.ErrConfiguration, "cli", "flags", "--workers must be >= 1", nil)
				}
				cfg.Segmentation.Workers = workers
			}

			ids := uniqueIDs(args)
			if all {
				discovered, err := frames.DiscoverVideoIDs(cfg.Paths.FramesDir)
				if err != nil {
					return runctx.Wrap(runctx.ErrNotFound, "cli", "discover videos", "", err)
				}
				ids = uniqueIDs(append(ids, discovered...))
			}
			if len(ids) == 0 {
				return runctx.Wrap(runctx.ErrConfiguration, "cli", "batch", "no video ids given (pass ids or --all)", nil)
			}

			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				colorize := shouldColorize(cmd.ErrOrStderr())
				fmt.Fprintln(cmd.ErrOrStderr(), strings.Join(preflightLines(failed, colorize), "\n"))
				return runctx.Wrap(runctx.ErrConfiguration, "cli", "preflight", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
			}

			session, err := ctx.newRunnerSession(cmd.Context(), cfg, flags.metricsFile)
			if err != nil {
				return err
			}
			defer session.close()

			reqs := make([]pipeline.Request, 0, len(ids))
			for _, id := range ids {
				reqs = append(reqs, flags.request(cfg, id))
			}
			results := session.runner.RunBatch(cmd.Context(), reqs, cfg.Segmentation.Workers)

			if asJSON {
				if err := writeJSON(cmd, batchJSON(results)); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderBatchTable(results))
			}

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if failed := pipeline.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d videos failed", failed, len(results))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "Segment every video found in the frames directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "Videos to segment in parallel (defaults to segmentation.workers)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func renderBatchTable(results []pipeline.BatchResult) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			rows = append(rows, []string{res.VideoID, "failed", "", "", res.Err.Error()})
			continue
		}
		segs := res.Outcome.Result.Segments
		rows = append(rows, []string{
			res.VideoID,
			"ok",
			strconv.Itoa(len(segs)),
			segment.FormatClock(segment.TotalDuration(segs)),
			res.Outcome.OutputPath,
		})
	}
	failed := pipeline.Failed(results)
	return renderTable(tableSpec{
		Headers: []string{"Video", "Status", "Segments", "Coverage", "Output"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		Footer:  []string{fmt.Sprintf("%d videos", len(results)), fmt.Sprintf("%d failed", failed)},
	})
}

func batchJSON(results []pipeline.BatchResult) []batchItemJSON {
	items := make([]batchItemJSON, 0, len(results))
	for _, res := range results {
		item := batchItemJSON{VideoID: res.VideoID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			segs := res.Outcome.Result.Segments
			item.RunID = res.Outcome.RunID
			item.Segments = len(segs)
			item.Seconds = segment.TotalDuration(segs)
			item.OutputPath = res.Outcome.OutputPath
		}
		items = append(items, item)
	}
	return items
}
