package segment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"subseg/internal/frames"
	"subseg/internal/logging"
	"subseg/internal/runctx"
)

// Source supplies a video's ordered frame references and decodes them on demand.
type Source interface {
	List(ctx context.Context) ([]frames.Frame, error)
	Load(ctx context.Context, frame frames.Frame) (*frames.Pixels, error)
}

// Options tunes the segmentation heuristics.
type Options struct {
	DiffThreshold      float64
	BlankThreshold     float64
	MinSegmentDuration int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		DiffThreshold:      DefaultDiffThreshold,
		BlankThreshold:     DefaultBlankThreshold,
		MinSegmentDuration: DefaultMinSegmentDuration,
	}
}

// Validate rejects thresholds outside the 0-255 sample range and negative durations.
func (o Options) Validate() error {
	if err := checkThreshold("diff threshold", o.DiffThreshold); err != nil {
		return err
	}
	if err := checkThreshold("blank threshold", o.BlankThreshold); err != nil {
		return err
	}
	if o.MinSegmentDuration < 0 {
		return fmt.Errorf("min segment duration must be >= 0, got %d", o.MinSegmentDuration)
	}
	return nil
}

func checkThreshold(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if value < 0 || value > 255 {
		return fmt.Errorf("%s must be between 0 and 255, got %g", name, value)
	}
	return nil
}

// Stats describes what a pass saw.
type Stats struct {
	Frames        int
	BlankFrames   int
	ContentFrames int
	Comparisons   int
}

// Result holds the outcome of one segmentation pass.
type Result struct {
	VideoID  string
	Segments []Segment
	Raw      []Segment
	Frames   []frames.Frame
	Stats    Stats
}

type state int

const (
	stateNoOpenSegment state = iota
	stateSegmentOpen
)

// Segmenter runs the forward pass for one video at a time. It holds no
// per-run state, so one value may be shared by concurrent runs.
type Segmenter struct {
	opts       Options
	classifier Classifier
	comparator Comparator
	logger     *slog.Logger
}

// New builds a Segmenter after validating opts.
func New(opts Options, logger *slog.Logger) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{
		opts:       opts,
		classifier: Classifier{BlankThreshold: opts.BlankThreshold},
		comparator: Comparator{DiffThreshold: opts.DiffThreshold},
		logger:     logging.NewComponentLogger(logger, "segmenter"),
	}, nil
}

// Run segments every frame src lists for videoID. Any listing or decode
// failure aborts the pass and no partial result is returned.
func (s *Segmenter) Run(ctx context.Context, videoID string, src Source) (*Result, error) {
	refs, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	ctx = runctx.WithVideoID(ctx, videoID)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("segmenting frames",
		logging.Int("frames", len(refs)),
		logging.Float64("diff_threshold", s.opts.DiffThreshold),
		logging.Float64("blank_threshold", s.opts.BlankThreshold),
		logging.Int("min_duration", s.opts.MinSegmentDuration),
	)

	var (
		raw       []Segment
		open      Segment
		current   = stateNoOpenSegment
		prev      *frames.Pixels
		prevBlank bool
		stats     Stats
	)

	closeOpen := func() {
		if current != stateSegmentOpen {
			return
		}
		open.SegmentID = len(raw) + 1
		raw = append(raw, open)
		logger.Debug("segment closed",
			logging.Int("segment_id", open.SegmentID),
			logging.Int("start_frame", open.StartFrame),
			logging.Int("end_frame", open.EndFrame),
		)
		current = stateNoOpenSegment
	}

	openAt := func(ref frames.Frame) {
		open = Segment{
			VideoID:             videoID,
			StartTime:           ref.Timestamp(),
			EndTime:             ref.Timestamp(),
			StartFrame:          ref.Number,
			EndFrame:            ref.Number,
			FrameCount:          1,
			RepresentativeFrame: ref.Name,
		}
		current = stateSegmentOpen
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pixels, err := src.Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		stats.Frames++

		blank, stddev := s.classifier.IsBlank(pixels)
		if blank {
			stats.BlankFrames++
			closeOpen()
			prev, prevBlank = pixels, true
			continue
		}
		stats.ContentFrames++

		same := false
		if current == stateSegmentOpen && prev != nil && !prevBlank {
			var diff float64
			same, diff, err = s.comparator.Same(prev, pixels)
			if err != nil {
				return nil, fmt.Errorf("compare %s: %w", ref.Name, err)
			}
			stats.Comparisons++
			logger.Debug("frame compared",
				logging.Int("frame", ref.Number),
				logging.Float64("stddev", stddev),
				logging.Float64("diff", diff),
				logging.Bool("same", same),
			)
		}

		if same {
			open.EndTime = ref.Timestamp()
			open.EndFrame = ref.Number
			open.FrameCount++
		} else {
			closeOpen()
			openAt(ref)
		}
		prev, prevBlank = pixels, false
	}
	closeOpen()

	if raw == nil {
		raw = []Segment{}
	}
	filtered := FilterMinDuration(raw, s.opts.MinSegmentDuration)
	logger.Info("segmentation complete",
		logging.Int("segments_raw", len(raw)),
		logging.Int("segments", len(filtered)),
		logging.Int("blank_frames", stats.BlankFrames),
	)
	return &Result{VideoID: videoID, Segments: filtered, Raw: raw, Frames: refs, Stats: stats}, nil
}
