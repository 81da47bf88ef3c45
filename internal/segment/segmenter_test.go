package segment_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"subseg/internal/frames"
	"subseg/internal/logging"
	"subseg/internal/segment"
	"subseg/internal/testsupport"
)

const videoID = "0-1"

var (
	blankFrame = gray(2, 2, 128, 128, 128, 128)
	lineA      = gray(2, 2, 0, 255, 255, 0)
	lineB      = gray(2, 2, 255, 0, 0, 255)

	// lineANear differs from lineA by exactly 5 in every sample.
	lineANear = gray(2, 2, 5, 250, 250, 5)
)

// memorySource serves pre-decoded frames keyed by frame number.
type memorySource struct {
	numbers []int
	pixels  map[int]*frames.Pixels
	failAt  int
}

func newMemorySource() *memorySource {
	return &memorySource{pixels: map[int]*frames.Pixels{}}
}

func (m *memorySource) add(number int, p *frames.Pixels) *memorySource {
	m.numbers = append(m.numbers, number)
	m.pixels[number] = p
	return m
}

func (m *memorySource) List(ctx context.Context) ([]frames.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.numbers) == 0 {
		return nil, frames.ErrNoFramesFound
	}
	out := make([]frames.Frame, 0, len(m.numbers))
	for _, n := range m.numbers {
		name := testsupport.FrameName(videoID, n)
		out = append(out, frames.Frame{Number: n, Name: name, Path: "/mem/" + name})
	}
	return out, nil
}

func (m *memorySource) Load(ctx context.Context, frame frames.Frame) (*frames.Pixels, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame.Number == m.failAt {
		return nil, &frames.LoadError{Path: frame.Path, Err: errors.New("corrupt jpeg")}
	}
	return m.pixels[frame.Number], nil
}

func newSegmenter(t *testing.T, opts segment.Options) *segment.Segmenter {
	t.Helper()
	s, err := segment.New(opts, logging.NewNop())
	if err != nil {
		t.Fatalf("segment.New failed: %v", err)
	}
	return s
}

func run(t *testing.T, opts segment.Options, src segment.Source) *segment.Result {
	t.Helper()
	res, err := newSegmenter(t, opts).Run(context.Background(), videoID, src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func TestBlankFrameSplitsSameSubtitle(t *testing.T) {
	src := newMemorySource()
	for n := 1; n <= 5; n++ {
		if n%2 == 0 {
			src.add(n, lineANear)
			continue
		}
		src.add(n, lineA)
	}
	src.add(6, blankFrame).add(7, lineANear)

	res := run(t, segment.DefaultOptions(), src)
	want := []segment.Segment{
		{VideoID: videoID, SegmentID: 1, StartTime: 0, EndTime: 4, StartFrame: 1, EndFrame: 5, FrameCount: 5, RepresentativeFrame: "0-1_0001.jpg"},
		{VideoID: videoID, SegmentID: 2, StartTime: 6, EndTime: 6, StartFrame: 7, EndFrame: 7, FrameCount: 1, RepresentativeFrame: "0-1_0007.jpg"},
	}
	if !reflect.DeepEqual(res.Segments, want) {
		t.Fatalf("unexpected segments:\n got %+v\nwant %+v", res.Segments, want)
	}
	if res.Stats.Frames != 7 || res.Stats.BlankFrames != 1 || res.Stats.ContentFrames != 6 || res.Stats.Comparisons != 4 {
		t.Fatalf("unexpected stats %+v", res.Stats)
	}
}

func TestContentChangeClosesSegment(t *testing.T) {
	src := newMemorySource().add(1, lineA).add(2, lineA).add(3, lineB).add(4, lineB)
	res := run(t, segment.DefaultOptions(), src)
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %+v", res.Segments)
	}
	if res.Segments[1].StartTime != 2 || res.Segments[1].EndTime != 3 || res.Segments[1].SegmentID != 2 {
		t.Fatalf("unexpected second segment %+v", res.Segments[1])
	}
}

func TestMinDurationDropsShortSegmentWithoutRenumbering(t *testing.T) {
	src := newMemorySource()
	for n := 1; n <= 5; n++ {
		src.add(n, lineA)
	}
	for n := 6; n <= 10; n++ {
		src.add(n, blankFrame)
	}
	src.add(11, lineB).add(12, blankFrame).add(13, lineA).add(14, lineA)

	opts := segment.DefaultOptions()
	opts.MinSegmentDuration = 2
	res := run(t, opts, src)

	if len(res.Raw) != 3 {
		t.Fatalf("expected 3 raw segments, got %+v", res.Raw)
	}
	if res.Raw[1].StartTime != 10 || res.Raw[1].EndTime != 10 {
		t.Fatalf("expected isolated 10..10 raw segment, got %+v", res.Raw[1])
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 kept segments, got %+v", res.Segments)
	}
	if res.Segments[0].SegmentID != 1 || res.Segments[1].SegmentID != 3 {
		t.Fatalf("expected ids 1 and 3 to survive, got %d and %d", res.Segments[0].SegmentID, res.Segments[1].SegmentID)
	}
}

func TestAllBlankYieldsNoSegments(t *testing.T) {
	src := newMemorySource()
	for n := 1; n <= 4; n++ {
		src.add(n, blankFrame)
	}
	res := run(t, segment.DefaultOptions(), src)
	if res.Segments == nil || len(res.Segments) != 0 {
		t.Fatalf("expected empty non-nil segment list, got %#v", res.Segments)
	}
	if res.Stats.Comparisons != 0 {
		t.Fatalf("expected no comparisons, got %d", res.Stats.Comparisons)
	}
}

func TestSingleContentFrame(t *testing.T) {
	src := newMemorySource().add(1, blankFrame).add(2, lineA).add(3, blankFrame)
	res := run(t, segment.DefaultOptions(), src)
	if len(res.Segments) != 1 || res.Segments[0].Duration() != 1 {
		t.Fatalf("expected one segment of duration 1, got %+v", res.Segments)
	}

	opts := segment.DefaultOptions()
	opts.MinSegmentDuration = 2
	res = run(t, opts, src)
	if len(res.Segments) != 0 || len(res.Raw) != 1 {
		t.Fatalf("expected the segment to be filtered, got %+v", res.Segments)
	}
}

func TestMissingFramesWidenSpanNotCount(t *testing.T) {
	src := newMemorySource().add(1, lineA).add(2, lineA).add(5, lineA)
	res := run(t, segment.DefaultOptions(), src)
	if len(res.Segments) != 1 {
		t.Fatalf("expected one segment, got %+v", res.Segments)
	}
	seg := res.Segments[0]
	if seg.FrameCount != 3 || seg.Duration() != 5 {
		t.Fatalf("expected frame_count 3 over a 5 second span, got %+v", seg)
	}
}

func TestCoverageAndOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	choices := []*frames.Pixels{blankFrame, lineA, lineB}
	src := newMemorySource()
	for n := 1; n <= 300; n++ {
		src.add(n, choices[rng.Intn(len(choices))])
	}

	opts := segment.DefaultOptions()
	opts.MinSegmentDuration = 0
	res := run(t, opts, src)

	covered := map[int]int{}
	for i, seg := range res.Raw {
		if seg.SegmentID != i+1 {
			t.Fatalf("expected consecutive ids, got %d at %d", seg.SegmentID, i)
		}
		if i > 0 && seg.StartTime <= res.Raw[i-1].EndTime {
			t.Fatalf("segments overlap or are unordered: %+v then %+v", res.Raw[i-1], seg)
		}
		for n := seg.StartFrame; n <= seg.EndFrame; n++ {
			covered[n]++
		}
	}
	for _, n := range src.numbers {
		blank := src.pixels[n] == blankFrame
		switch {
		case blank && covered[n] != 0:
			t.Fatalf("blank frame %d inside a segment", n)
		case !blank && covered[n] != 1:
			t.Fatalf("content frame %d covered %d times", n, covered[n])
		}
	}
	if !reflect.DeepEqual(res.Raw, res.Segments) {
		t.Fatal("min duration 0 should keep every raw segment")
	}
}

func TestHigherDiffThresholdNeverAddsSegments(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	src := newMemorySource()
	for n := 1; n <= 200; n++ {
		base := uint8(rng.Intn(56))
		src.add(n, gray(2, 1, base, base+200))
	}

	prev := -1
	for threshold := 0.0; threshold <= 60; threshold += 5 {
		opts := segment.DefaultOptions()
		opts.DiffThreshold = threshold
		opts.MinSegmentDuration = 0
		res := run(t, opts, src)
		if prev >= 0 && len(res.Segments) > prev {
			t.Fatalf("threshold %.0f produced %d segments, more than %d", threshold, len(res.Segments), prev)
		}
		prev = len(res.Segments)
	}
}

func TestHigherBlankThresholdNeverLosesBlankFrames(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	src := newMemorySource()
	for n := 1; n <= 200; n++ {
		base := uint8(rng.Intn(100))
		spread := uint8(rng.Intn(81))
		src.add(n, gray(2, 1, base, base+spread))
	}

	prev := -1
	for threshold := 0.0; threshold <= 45; threshold += 2.5 {
		opts := segment.DefaultOptions()
		opts.BlankThreshold = threshold
		opts.MinSegmentDuration = 0
		res := run(t, opts, src)
		if res.Stats.BlankFrames < prev {
			t.Fatalf("blank threshold %.1f classified %d blank frames, fewer than %d", threshold, res.Stats.BlankFrames, prev)
		}
		prev = res.Stats.BlankFrames
	}
	if prev != 200 {
		t.Fatalf("expected every frame blank at the top threshold, got %d", prev)
	}
}

func TestLoadErrorAbortsRun(t *testing.T) {
	src := newMemorySource().add(1, lineA).add(2, lineA).add(3, lineA)
	src.failAt = 2
	res, err := newSegmenter(t, segment.DefaultOptions()).Run(context.Background(), videoID, src)
	if !errors.Is(err, frames.ErrFrameLoad) {
		t.Fatalf("expected ErrFrameLoad, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no partial result, got %+v", res)
	}
}

func TestDimensionMismatchAbortsRun(t *testing.T) {
	src := newMemorySource().add(1, lineA).add(2, gray(2, 1, 0, 255))
	_, err := newSegmenter(t, segment.DefaultOptions()).Run(context.Background(), videoID, src)
	if !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNoFramesPropagates(t *testing.T) {
	_, err := newSegmenter(t, segment.DefaultOptions()).Run(context.Background(), videoID, newMemorySource())
	if !errors.Is(err, frames.ErrNoFramesFound) {
		t.Fatalf("expected ErrNoFramesFound, got %v", err)
	}
}

func TestCanceledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := newMemorySource().add(1, lineA)
	if _, err := newSegmenter(t, segment.DefaultOptions()).Run(ctx, videoID, src); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cases := []segment.Options{
		{DiffThreshold: -1, BlankThreshold: 30, MinSegmentDuration: 1},
		{DiffThreshold: 15, BlankThreshold: 256, MinSegmentDuration: 1},
		{DiffThreshold: 15, BlankThreshold: 30, MinSegmentDuration: -1},
	}
	for i, opts := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			if _, err := segment.New(opts, logging.NewNop()); err == nil {
				t.Fatalf("expected %+v to be rejected", opts)
			}
		})
	}
}

func TestRunOverJPEGFrames(t *testing.T) {
	dir := t.TempDir()
	for n := 1; n <= 5; n++ {
		testsupport.WriteFrame(t, dir, videoID, n, testsupport.StripedImage(false))
	}
	testsupport.WriteFrame(t, dir, videoID, 6, testsupport.UniformImage(128))
	testsupport.WriteFrame(t, dir, videoID, 7, testsupport.StripedImage(false))
	testsupport.WriteFrame(t, dir, videoID, 8, testsupport.StripedImage(true))
	testsupport.WriteFrame(t, dir, "0-2", 1, testsupport.StripedImage(true))

	res := run(t, segment.DefaultOptions(), frames.NewDir(dir, videoID))
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %+v", res.Segments)
	}
	first := res.Segments[0]
	if first.StartTime != 0 || first.EndTime != 4 || first.FrameCount != 5 {
		t.Fatalf("unexpected first segment %+v", first)
	}
	if res.Segments[1].StartTime != 6 || res.Segments[2].StartTime != 7 {
		t.Fatalf("unexpected later segments %+v", res.Segments[1:])
	}
	if res.Stats.Frames != 8 {
		t.Fatalf("expected frames from other videos to be ignored, got %d frames", res.Stats.Frames)
	}
}
