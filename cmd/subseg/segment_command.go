package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subseg/internal/config"
	"subseg/internal/pipeline"
	"subseg/internal/runctx"
	"subseg/internal/segment"
)

// segmentFlags holds the per-run overrides shared by segment and batch.
type segmentFlags struct {
	framesDir      string
	outputDir      string
	diffThreshold  float64
	blankThreshold float64
	minDuration    int
	srt            bool
	timestamps     bool
	metricsFile    string
}

func (f *segmentFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.framesDir, "frames-dir", "", "Directory holding {video_id}_NNNN.jpg frames")
	flags.StringVar(&f.outputDir, "output-dir", "", "Directory for segment JSON and sidecars")
	flags.Float64Var(&f.diffThreshold, "diff-threshold", segment.DefaultDiffThreshold, "Mean pixel difference below which frames show the same subtitle (0-255)")
	flags.Float64Var(&f.blankThreshold, "blank-threshold", segment.DefaultBlankThreshold, "Luminance standard deviation below which a frame is blank (0-255)")
	flags.IntVar(&f.minDuration, "min-duration", segment.DefaultMinSegmentDuration, "Drop segments shorter than this many seconds")
	flags.BoolVar(&f.srt, "srt", false, "Also write {video_id}_template.srt")
	flags.BoolVar(&f.timestamps, "timestamps", false, "Also write {video_id}_timestamps.tsv")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
}

// apply layers explicitly set flags over the loaded configuration.
func (f *segmentFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	flags := cmd.Flags()
	if flags.Changed("frames-dir") {
		expanded, err := config.ExpandPath(f.framesDir)
		if err != nil {
			return nil, err
		}
		out.Paths.FramesDir = expanded
	}
	if flags.Changed("output-dir") {
		expanded, err := config.ExpandPath(f.outputDir)
		if err != nil {
			return nil, err
		}
		out.Paths.OutputDir = expanded
	}
	if flags.Changed("diff-threshold") {
		out.Segmentation.DiffThreshold = f.diffThreshold
	}
	if flags.Changed("blank-threshold") {
		out.Segmentation.BlankThreshold = f.blankThreshold
	}
	if flags.Changed("min-duration") {
		out.Segmentation.MinSegmentDuration = f.minDuration
	}
	if err := out.Validate(); err != nil {
		return nil, runctx.Wrap(runctx.ErrConfiguration, "cli", "flags", "", err)
	}
	return &out, nil
}

func (f *segmentFlags) request(cfg *config.Config, videoID string) pipeline.Request {
	req := pipeline.RequestFromConfig(cfg, videoID)
	req.WriteSRT = f.srt
	req.WriteTimestamps = f.timestamps
	return req
}

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var (
		flags   segmentFlags
		summary bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "segment <video_id>",
		Short: "Segment one video's frames into subtitle intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			session, err := ctx.newRunnerSession(cmd.Context(), cfg, flags.metricsFile)
			if err != nil {
				return err
			}
			defer session.close()

			videoID := strings.TrimSpace(args[0])
			out, err := session.runner.Run(cmd.Context(), flags.request(cfg, videoID))
			if err != nil {
				return err
			}
			res := out.Result

			if asJSON {
				if err := writeJSON(cmd, res.Segments); err != nil {
					return err
				}
			} else {
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Created %s segments (%s after filtering) from %s frames\n",
					formatCount(len(res.Raw)), formatCount(len(res.Segments)), formatCount(res.Stats.Frames))
				fmt.Fprintf(stdout, "Saved %s segments to %s\n", formatCount(len(res.Segments)), out.OutputPath)
				for _, extra := range []string{out.SRTPath, out.TimestampsPath} {
					if extra != "" {
						fmt.Fprintf(stdout, "Wrote %s\n", extra)
					}
				}
			}

			if summary {
				target := cmd.OutOrStdout()
				if asJSON {
					target = cmd.ErrOrStderr()
				}
				fmt.Fprint(target, renderSegmentSummary(videoID, res.Segments))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a human-readable segment summary")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the segment list as JSON on stdout")
	return cmd
}
