package segment_test

import (
	"errors"
	"math"
	"testing"

	"subseg/internal/frames"
	"subseg/internal/segment"
)

func gray(width, height int, values ...uint8) *frames.Pixels {
	return frames.NewPixels(width, height, 1, values)
}

func TestLuminanceStdDev(t *testing.T) {
	cases := []struct {
		name   string
		pixels *frames.Pixels
		want   float64
	}{
		{"uniform", gray(2, 2, 90, 90, 90, 90), 0},
		{"half black half white", gray(2, 1, 0, 255), 127.5},
		{"rgb averaged per pixel", frames.NewPixels(2, 1, 3, []uint8{0, 0, 30, 60, 60, 60}), 25},
		{"empty", frames.NewPixels(0, 0, 1, nil), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := segment.LuminanceStdDev(tc.pixels)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("LuminanceStdDev = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMeanAbsDiff(t *testing.T) {
	a := gray(2, 2, 10, 20, 30, 40)
	b := gray(2, 2, 20, 10, 30, 0)
	got, err := segment.MeanAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MeanAbsDiff failed: %v", err)
	}
	if got != 15 {
		t.Fatalf("MeanAbsDiff = %v, want 15", got)
	}

	// Differences never wrap around for 8-bit samples.
	got, err = segment.MeanAbsDiff(gray(1, 1, 0), gray(1, 1, 255))
	if err != nil {
		t.Fatalf("MeanAbsDiff failed: %v", err)
	}
	if got != 255 {
		t.Fatalf("MeanAbsDiff = %v, want 255", got)
	}
}

func TestMeanAbsDiffRejectsShapeMismatch(t *testing.T) {
	_, err := segment.MeanAbsDiff(gray(2, 1, 0, 0), gray(1, 2, 0, 0))
	if !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	_, err = segment.MeanAbsDiff(gray(1, 1, 0), frames.NewPixels(1, 1, 3, []uint8{0, 0, 0}))
	if !errors.Is(err, segment.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for channel mismatch, got %v", err)
	}
}

func TestClassifierAndComparatorUseStrictThresholds(t *testing.T) {
	p := gray(2, 1, 0, 60) // stddev 30
	if blank, _ := (segment.Classifier{BlankThreshold: 30}).IsBlank(p); blank {
		t.Fatal("stddev equal to the threshold must not be blank")
	}
	if blank, _ := (segment.Classifier{BlankThreshold: 30.5}).IsBlank(p); !blank {
		t.Fatal("stddev below the threshold must be blank")
	}

	a, b := gray(1, 1, 0), gray(1, 1, 15)
	if same, _, _ := (segment.Comparator{DiffThreshold: 15}).Same(a, b); same {
		t.Fatal("diff equal to the threshold must not be same")
	}
	if same, _, _ := (segment.Comparator{DiffThreshold: 16}).Same(a, b); !same {
		t.Fatal("diff below the threshold must be same")
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{0: "00:00:00", 59: "00:00:59", 61: "00:01:01", 3725: "01:02:05", -4: "00:00:00"}
	for in, want := range cases {
		if got := segment.FormatClock(in); got != want {
			t.Fatalf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterMinDurationKeepsIDs(t *testing.T) {
	segs := []segment.Segment{
		{SegmentID: 1, StartTime: 0, EndTime: 4},
		{SegmentID: 2, StartTime: 10, EndTime: 10},
		{SegmentID: 3, StartTime: 12, EndTime: 13},
	}
	kept := segment.FilterMinDuration(segs, 2)
	if len(kept) != 2 || kept[0].SegmentID != 1 || kept[1].SegmentID != 3 {
		t.Fatalf("unexpected filtered segments: %+v", kept)
	}
	if got := segment.TotalDuration(kept); got != 7 {
		t.Fatalf("TotalDuration = %d, want 7", got)
	}
	if all := segment.FilterMinDuration(segs, 0); len(all) != 3 {
		t.Fatalf("min duration 0 should keep everything, got %d", len(all))
	}
}
