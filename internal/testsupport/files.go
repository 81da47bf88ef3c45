package testsupport

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// FrameSize is the edge length of generated test frames. It is a multiple of
// the JPEG block size so uniform and striped frames survive compression.
const FrameSize = 32

// UniformImage returns a single-valued grayscale frame, which classifies as blank.
func UniformImage(value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, FrameSize, FrameSize))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// StripedImage returns a frame of alternating black and white 8-pixel bands.
// Inverted stripes differ from the plain pattern in every sample.
func StripedImage(inverted bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, FrameSize, FrameSize))
	for y := 0; y < FrameSize; y++ {
		white := (y/8)%2 == 0
		if inverted {
			white = !white
		}
		var v uint8
		if white {
			v = 255
		}
		for x := 0; x < FrameSize; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// FrameName returns the on-disk name for a video frame.
func FrameName(videoID string, number int) string {
	return fmt.Sprintf("%s_%04d.jpg", videoID, number)
}

// WriteFrame encodes img as a maximum-quality JPEG named for videoID and
// number inside dir and returns its path.
func WriteFrame(t testing.TB, dir, videoID string, number int, img image.Image) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, FrameName(videoID, number))
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}

// WriteFile writes raw bytes, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
