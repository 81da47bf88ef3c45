package frames

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ErrFrameLoad marks failures to open or decode a frame image.
var ErrFrameLoad = errors.New("frame load failed")

// LoadError reports which frame could not be decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load frame %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFrameLoad) match any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrFrameLoad }

// Pixels holds decoded 8-bit samples in row-major, channel-interleaved order.
// Grayscale frames have one channel; everything else is reduced to RGB.
type Pixels struct {
	Width    int
	Height   int
	Channels int
	Data     []uint8
}

// NewPixels wraps raw samples. It panics if len(data) does not match the shape.
func NewPixels(width, height, channels int, data []uint8) *Pixels {
	if width*height*channels != len(data) {
		panic(fmt.Sprintf("frames: %dx%dx%d shape does not match %d samples", width, height, channels, len(data)))
	}
	return &Pixels{Width: width, Height: height, Channels: channels, Data: data}
}

// SameShape reports whether two frames can be compared sample by sample.
func (p *Pixels) SameShape(other *Pixels) bool {
	return p.Width == other.Width && p.Height == other.Height && p.Channels == other.Channels
}

// Load opens and decodes the image at path.
func Load(path string) (*Pixels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image into Pixels. Alpha is discarded.
func FromImage(img image.Image) *Pixels {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		data := make([]uint8, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			start := gray.PixOffset(bounds.Min.X, y)
			data = append(data, gray.Pix[start:start+width]...)
		}
		return &Pixels{Width: width, Height: height, Channels: 1, Data: data}
	}

	data := make([]uint8, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			data = append(data, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return &Pixels{Width: width, Height: height, Channels: 3, Data: data}
}
