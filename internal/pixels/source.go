package pixels

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source decodes encoded image bytes into a Buffer matching a Request.
//
// Implementations must be deterministic and safe for concurrent use.
type Source interface {
	Decode(data []byte, req Request) (*Buffer, error)
}

// ImagingSource is the default Source.
//
// The pipeline is decode, optional Gaussian blur, resize to exactly
// Width x Height (aspect ratio is not preserved), then either grayscale
// conversion or RGB extraction. Fully transparent pixels read as black.
type ImagingSource struct {
	// Filter is the resampling filter used for resizing. The zero value
	// selects imaging.Lanczos.
	Filter *imaging.ResampleFilter
}

// NewImagingSource returns an ImagingSource using Lanczos resampling.
func NewImagingSource() *ImagingSource {
	return &ImagingSource{}
}

// Decode implements Source.
func (s *ImagingSource) Decode(data []byte, req Request) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidInput)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid sample grid %dx%d", ErrInvalidInput, req.Width, req.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrInvalidInput, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", ErrInvalidInput)
	}

	if req.BlurRadius > 0 {
		img = blur.Gaussian(img, req.BlurRadius)
	}

	filter := imaging.Lanczos
	if s.Filter != nil {
		filter = *s.Filter
	}
	resized := imaging.Resize(img, req.Width, req.Height, filter)

	if req.Grayscale {
		return grayBuffer(imaging.Grayscale(resized)), nil
	}
	return rgbBuffer(resized), nil
}

// grayBuffer reads the red channel of an already-grayscale NRGBA image.
func grayBuffer(img *image.NRGBA) *Buffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pix := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			pix[y*width+x] = row[x*4]
		}
	}
	return &Buffer{Width: width, Height: height, Channels: 1, Pix: pix}
}

func rgbBuffer(img *image.NRGBA) *Buffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pix := make([]uint8, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				pix = append(pix, 0, 0, 0)
				continue
			}
			r, g, b := c.RGB255()
			pix = append(pix, r, g, b)
		}
	}
	return &Buffer{Width: width, Height: height, Channels: 3, Pix: pix}
}
