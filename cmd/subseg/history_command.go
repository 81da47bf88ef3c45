package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subseg/internal/history"
	"subseg/internal/runctx"
	"subseg/internal/segment"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [video_id]",
		Short: "Show recorded segmentation runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return runctx.Wrap(runctx.ErrConfiguration, "cli", "history", "run history is disabled (history.enabled = false)", nil)
			}
			store, err := ctx.openHistory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			filter := history.Filter{Limit: limit}
			if len(args) == 1 {
				filter.VideoID = args[0]
			}
			runs, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if asJSON {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "Maximum runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func renderHistoryTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		detail := run.OutputPath
		if run.Status == history.StatusFailed {
			detail = run.ErrorMessage
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.VideoID,
			string(run.Status),
			strconv.Itoa(run.Frames),
			strconv.Itoa(run.Segments),
			segment.FormatClock(run.SubtitleSeconds),
			run.Elapsed().Round(time.Millisecond).String(),
			shortID(run.RunID),
			detail,
		})
	}
	return renderTable(tableSpec{
		Headers: []string{"Started", "Video", "Status", "Frames", "Segments", "Coverage", "Elapsed", "Run", "Detail"},
		Rows:    rows,
		Aligns: []columnAlignment{
			alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft,
		},
	})
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
