package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"subseg/internal/config"
	"subseg/internal/export"
	"subseg/internal/fileutil"
	"subseg/internal/frames"
	"subseg/internal/history"
	"subseg/internal/logging"
	"subseg/internal/metrics"
	"subseg/internal/runctx"
	"subseg/internal/segment"
	"subseg/internal/segmentio"
)

// Request describes one video to segment.
type Request struct {
	VideoID         string
	FramesDir       string
	OutputDir       string
	Options         segment.Options
	WriteSRT        bool
	WriteTimestamps bool
}

// RequestFromConfig builds a request for videoID using configured paths and thresholds.
func RequestFromConfig(cfg *config.Config, videoID string) Request {
	return Request{
		VideoID:   videoID,
		FramesDir: cfg.Paths.FramesDir,
		OutputDir: cfg.Paths.OutputDir,
		Options: segment.Options{
			DiffThreshold:      cfg.Segmentation.DiffThreshold,
			BlankThreshold:     cfg.Segmentation.BlankThreshold,
			MinSegmentDuration: cfg.Segmentation.MinSegmentDuration,
		},
	}
}

// Outcome is what a successful run produced.
type Outcome struct {
	RunID          string          `json:"run_id"`
	VideoID        string          `json:"video_id"`
	Result         *segment.Result `json:"-"`
	OutputPath     string          `json:"output_path"`
	SRTPath        string          `json:"srt_path,omitempty"`
	TimestampsPath string          `json:"timestamps_path,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	Elapsed        time.Duration   `json:"elapsed_ns"`
}

// Options wires the runner's collaborators. History and Metrics are optional.
type Options struct {
	Logger  *slog.Logger
	History *history.Store
	Metrics *metrics.Metrics
}

// Runner executes requests. It is safe for concurrent use.
type Runner struct {
	logger  *slog.Logger
	history *history.Store
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// New constructs a Runner.
func New(opts Options) *Runner {
	return &Runner{
		logger:  logging.NewComponentLogger(opts.Logger, "pipeline"),
		history: opts.History,
		metrics: opts.Metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Run segments one video and persists its outputs. The returned error is
// classified with the runctx markers so callers can map it to an exit status.
func (r *Runner) Run(ctx context.Context, req Request) (*Outcome, error) {
	videoID := strings.TrimSpace(req.VideoID)
	started := r.now()
	out := &Outcome{RunID: r.newID(), VideoID: videoID, StartedAt: started}

	ctx = runctx.WithRunID(runctx.WithVideoID(ctx, videoID), out.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("frames_dir", req.FramesDir),
		logging.String("output_dir", req.OutputDir),
	)

	if err := validateVideoID(videoID); err != nil {
		return nil, r.fail(ctx, logger, out, req, runctx.Wrap(runctx.ErrConfiguration, "pipeline", "validate request", "", err))
	}

	seg, err := segment.New(req.Options, logger)
	if err != nil {
		return nil, r.fail(ctx, logger, out, req, runctx.Wrap(runctx.ErrConfiguration, "pipeline", "validate thresholds", "", err))
	}

	lock, err := segmentio.AcquireLock(req.OutputDir, videoID)
	if err != nil {
		return nil, r.fail(ctx, logger, out, req, runctx.Wrap(runctx.ErrOutput, "pipeline", "lock outputs", "", err))
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("output lock release failed", logging.Error(err))
		}
	}()

	res, err := seg.Run(ctx, videoID, frames.NewDir(req.FramesDir, videoID))
	if err != nil {
		return nil, r.fail(ctx, logger, out, req, runctx.Classify(err))
	}
	out.Result = res

	var sidecars []fileutil.File
	if req.WriteSRT {
		srt := export.SRTFile(req.OutputDir, videoID, res.Segments)
		sidecars = append(sidecars, srt)
		out.SRTPath = srt.Path
	}
	if req.WriteTimestamps {
		tsv := export.TimestampsFile(req.OutputDir, videoID, res.Frames)
		sidecars = append(sidecars, tsv)
		out.TimestampsPath = tsv.Path
	}
	if out.OutputPath, err = segmentio.Write(req.OutputDir, videoID, res.Segments, sidecars...); err != nil {
		out.SRTPath, out.TimestampsPath = "", ""
		return nil, r.fail(ctx, logger, out, req, runctx.Wrap(runctx.ErrOutput, "pipeline", "write outputs", "", err))
	}

	out.Elapsed = r.now().Sub(started)
	r.record(ctx, logger, out, req, nil)
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("segments", len(res.Segments)),
		logging.Int("subtitle_seconds", segment.TotalDuration(res.Segments)),
		logging.String("output", out.OutputPath),
		logging.Duration("elapsed", out.Elapsed),
	)
	return out, nil
}

// validateVideoID rejects ids that would place outputs outside the output directory.
func validateVideoID(id string) error {
	switch {
	case id == "":
		return errors.New("video id is required")
	case id == "." || id == "..", strings.ContainsAny(id, `/\`):
		return fmt.Errorf("video id %q must not contain path separators", id)
	}
	return nil
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, out *Outcome, req Request, runErr error) error {
	out.Elapsed = r.now().Sub(out.StartedAt)
	level := slog.LevelError
	if errors.Is(runErr, context.Canceled) {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "run failed",
		logging.String(logging.FieldEventType, "run_failure"),
		logging.Error(runErr),
	)
	r.record(ctx, logger, out, req, runErr)
	return runErr
}

// record writes history and metrics. Neither failure changes the run's outcome.
func (r *Runner) record(ctx context.Context, logger *slog.Logger, out *Outcome, req Request, runErr error) {
	sample := metrics.RunSample{VideoID: out.VideoID, Elapsed: out.Elapsed, Succeeded: runErr == nil}
	run := history.Run{
		RunID:              out.RunID,
		VideoID:            out.VideoID,
		Status:             history.StatusSucceeded,
		StartedAt:          out.StartedAt,
		FinishedAt:         out.StartedAt.Add(out.Elapsed),
		DiffThreshold:      req.Options.DiffThreshold,
		BlankThreshold:     req.Options.BlankThreshold,
		MinSegmentDuration: req.Options.MinSegmentDuration,
		OutputPath:         out.OutputPath,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	if res := out.Result; res != nil && runErr == nil {
		run.Frames = res.Stats.Frames
		run.BlankFrames = res.Stats.BlankFrames
		run.SegmentsRaw = len(res.Raw)
		run.Segments = len(res.Segments)
		run.SubtitleSeconds = segment.TotalDuration(res.Segments)
		sample.Frames = run.Frames
		sample.BlankFrames = run.BlankFrames
		sample.SegmentsRaw = run.SegmentsRaw
		sample.Segments = run.Segments
		sample.SubtitleSeconds = run.SubtitleSeconds
	}

	if r.metrics != nil && out.VideoID != "" {
		r.metrics.Observe(sample)
	}
	if r.history == nil || out.VideoID == "" {
		return
	}
	// A canceled run context must not prevent the failure from being recorded.
	if _, err := r.history.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("run history not recorded", logging.Error(err))
	}
}
