package segment

import (
	"errors"
	"fmt"
	"math"

	"subseg/internal/frames"
)

const (
	// DefaultDiffThreshold is the mean sample difference below which two frames show the same subtitle.
	DefaultDiffThreshold = 15.0
	// DefaultBlankThreshold is the luminance standard deviation below which a frame is blank.
	DefaultBlankThreshold = 30.0
	// DefaultMinSegmentDuration is the shortest segment, in seconds, kept after filtering.
	DefaultMinSegmentDuration = 1
)

// ErrDimensionMismatch is returned when two frames of different shape are compared.
var ErrDimensionMismatch = errors.New("frame dimensions differ")

// LuminanceStdDev returns the population standard deviation of per-pixel
// luminance, where luminance is the mean of the pixel's channels.
func LuminanceStdDev(p *frames.Pixels) float64 {
	pixels := p.Width * p.Height
	if pixels == 0 || p.Channels == 0 {
		return 0
	}

	luma := make([]float64, pixels)
	channels := float64(p.Channels)
	var sum float64
	for i := 0; i < pixels; i++ {
		var acc float64
		base := i * p.Channels
		for c := 0; c < p.Channels; c++ {
			acc += float64(p.Data[base+c])
		}
		luma[i] = acc / channels
		sum += luma[i]
	}
	mean := sum / float64(pixels)

	var sq float64
	for _, v := range luma {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(pixels))
}

// MeanAbsDiff returns the mean absolute difference over every sample of two
// equally shaped frames. The result lies in [0, 255].
func MeanAbsDiff(a, b *frames.Pixels) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrDimensionMismatch,
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}
	if len(a.Data) == 0 {
		return 0, nil
	}
	var total float64
	for i := range a.Data {
		total += math.Abs(float64(a.Data[i]) - float64(b.Data[i]))
	}
	return total / float64(len(a.Data)), nil
}

// Classifier decides whether a frame carries subtitle content.
type Classifier struct {
	BlankThreshold float64
}

// IsBlank reports whether p is blank along with the measured deviation.
func (c Classifier) IsBlank(p *frames.Pixels) (bool, float64) {
	stddev := LuminanceStdDev(p)
	return stddev < c.BlankThreshold, stddev
}

// Comparator decides whether two content frames show the same subtitle.
type Comparator struct {
	DiffThreshold float64
}

// Same reports whether a and b show the same subtitle along with the measured difference.
func (c Comparator) Same(a, b *frames.Pixels) (bool, float64, error) {
	diff, err := MeanAbsDiff(a, b)
	if err != nil {
		return false, 0, err
	}
	return diff < c.DiffThreshold, diff, nil
}
