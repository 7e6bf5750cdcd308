package pixels

import (
	"errors"
	"fmt"
)

// ErrInvalidInput reports empty, undecodable or undersized pixel data.
var ErrInvalidInput = errors.New("invalid input")

// Request describes the sample grid a kernel needs from a Source.
type Request struct {
	// Width and Height of the output grid in samples.
	Width  int
	Height int

	// Grayscale selects a single luminance channel instead of R, G, B.
	Grayscale bool

	// BlurRadius applies a Gaussian blur of this radius to the source image
	// before resizing. Zero disables blurring.
	BlurRadius float64
}

// Channels returns the channel count a Buffer satisfying r must have.
func (r Request) Channels() int {
	if r.Grayscale {
		return 1
	}
	return 3
}

// Buffer is an immutable grid of 8-bit samples.
type Buffer struct {
	Width    int
	Height   int
	Channels int

	// Pix holds samples in row-major order, Channels interleaved per pixel.
	Pix []uint8
}

// NewGrayBuffer wraps pix as a single-channel buffer without copying.
func NewGrayBuffer(width, height int, pix []uint8) *Buffer {
	return &Buffer{Width: width, Height: height, Channels: 1, Pix: pix}
}

// Validate checks that b is non-empty, internally consistent and exactly
// matches the dimensions and channel count requested by r.
func (b *Buffer) Validate(r Request) error {
	if b == nil || len(b.Pix) == 0 {
		return fmt.Errorf("%w: empty pixel buffer", ErrInvalidInput)
	}
	if b.Width <= 0 || b.Height <= 0 || (b.Channels != 1 && b.Channels != 3) {
		return fmt.Errorf("%w: malformed pixel buffer %dx%dx%d", ErrInvalidInput, b.Width, b.Height, b.Channels)
	}
	if len(b.Pix) != b.Width*b.Height*b.Channels {
		return fmt.Errorf("%w: pixel buffer holds %d samples, want %d",
			ErrInvalidInput, len(b.Pix), b.Width*b.Height*b.Channels)
	}
	if b.Width != r.Width || b.Height != r.Height || b.Channels != r.Channels() {
		return fmt.Errorf("%w: pixel buffer is %dx%dx%d, requested %dx%dx%d",
			ErrInvalidInput, b.Width, b.Height, b.Channels, r.Width, r.Height, r.Channels())
	}
	return nil
}

// Sample returns channel c of the pixel at (x, y).
func (b *Buffer) Sample(x, y, c int) uint8 {
	return b.Pix[(y*b.Width+x)*b.Channels+c]
}

// Gray returns the first channel of the pixel at (x, y) as a float.
func (b *Buffer) Gray(x, y int) float64 {
	return float64(b.Pix[(y*b.Width+x)*b.Channels])
}

// Grid copies the first channel into a [row][column] float matrix.
func (b *Buffer) Grid() [][]float64 {
	grid := make([][]float64, b.Height)
	for y := 0; y < b.Height; y++ {
		grid[y] = make([]float64, b.Width)
		for x := 0; x < b.Width; x++ {
			grid[y][x] = b.Gray(x, y)
		}
	}
	return grid
}
