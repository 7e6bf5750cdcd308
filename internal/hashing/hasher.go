package hashing

import (
	"fmt"
	"maps"
	"time"

	"github.com/ironsheep/visual-hash-mcp/internal/pixels"
	"github.com/ironsheep/visual-hash-mcp/internal/transform"
)

// HashDescriptor is a fingerprint of one image for one algorithm and size.
// Descriptors are never modified after GenerateHash returns them.
type HashDescriptor struct {
	// Bits holds one '0' or '1' per coefficient.
	Bits string `json:"bits"`

	Algorithm AlgorithmID `json:"algorithm"`

	// Size is the sampling grid dimension the hash was generated at.
	Size int `json:"size"`

	// DurationMicros is the wall time spent decoding and hashing.
	DurationMicros int64 `json:"duration_micros"`

	// Confidence is the algorithm's fixed reliability weight in [0,1].
	Confidence float64 `json:"confidence"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// Len returns the bit length of the hash.
func (h *HashDescriptor) Len() int { return len(h.Bits) }

// Preset binds a named, commonly used algorithm and size.
type Preset struct {
	Name      string      `json:"name"`
	Algorithm AlgorithmID `json:"algorithm"`
	Size      int         `json:"size"`
}

var (
	QuickPreset      = Preset{Name: "quick", Algorithm: Average, Size: 8}
	PerceptualPreset = Preset{Name: "perceptual", Algorithm: Perceptual, Size: 16}
	DetailedPreset   = Preset{Name: "detailed", Algorithm: Structural, Size: 32}
)

// Hasher generates HashDescriptors from encoded images.
type Hasher struct {
	source pixels.Source
}

// NewHasher returns a Hasher that decodes through source. A nil source
// selects pixels.NewImagingSource().
func NewHasher(source pixels.Source) *Hasher {
	if source == nil {
		source = pixels.NewImagingSource()
	}
	return &Hasher{source: source}
}

// GenerateHash fingerprints image with algorithm at sampling size.
//
// The algorithm is resolved before anything else, so an unknown algorithm
// fails with ErrUnknownAlgorithm regardless of the image. Empty or
// undecodable images, sizes outside [1, transform.MaxSize] and buffers that do
// not match the requested grid fail with ErrInvalidInput.
func (h *Hasher) GenerateHash(image []byte, algorithm AlgorithmID, size int) (*HashDescriptor, error) {
	start := time.Now()

	p, err := algorithm.plan(size)
	if err != nil {
		return nil, err
	}
	if size < 1 || size > transform.MaxSize {
		return nil, fmt.Errorf("%w: sampling size %d outside [1, %d]", ErrInvalidInput, size, transform.MaxSize)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidInput)
	}

	buf, err := h.source.Decode(image, p.request)
	if err != nil {
		return nil, fmt.Errorf("%s hash: %w", algorithm, err)
	}
	if err := buf.Validate(p.request); err != nil {
		return nil, fmt.Errorf("%s hash: %w", algorithm, err)
	}

	coeffs, err := p.kernel(buf, size)
	if err != nil {
		return nil, fmt.Errorf("%s hash: %w", algorithm, err)
	}
	bits, err := Encode(coeffs, p.policy)
	if err != nil {
		return nil, fmt.Errorf("%s hash: %w", algorithm, err)
	}

	return &HashDescriptor{
		Bits:           bits,
		Algorithm:      algorithm,
		Size:           size,
		DurationMicros: time.Since(start).Microseconds(),
		Confidence:     p.confidence,
		Metadata:       maps.Clone(p.metadata),
	}, nil
}

// GeneratePreset fingerprints image with a preset's algorithm and size.
func (h *Hasher) GeneratePreset(image []byte, preset Preset) (*HashDescriptor, error) {
	return h.GenerateHash(image, preset.Algorithm, preset.Size)
}

// QuickHash is an 8x8 average hash.
func (h *Hasher) QuickHash(image []byte) (*HashDescriptor, error) {
	return h.GeneratePreset(image, QuickPreset)
}

// PerceptualHash is a 16x16 DCT hash.
func (h *Hasher) PerceptualHash(image []byte) (*HashDescriptor, error) {
	return h.GeneratePreset(image, PerceptualPreset)
}

// DetailedHash is a 32x32 structural hash.
func (h *Hasher) DetailedHash(image []byte) (*HashDescriptor, error) {
	return h.GeneratePreset(image, DetailedPreset)
}
