package hashing

import (
	"fmt"
	"strings"

	"github.com/ironsheep/visual-hash-mcp/internal/pixels"
	"github.com/ironsheep/visual-hash-mcp/internal/transform"
)

// AlgorithmID identifies a hash algorithm.
type AlgorithmID string

const (
	Average            AlgorithmID = "average"
	Difference         AlgorithmID = "difference"
	Perceptual         AlgorithmID = "perceptual"
	AdvancedPerceptual AlgorithmID = "advanced-perceptual"
	Wavelet            AlgorithmID = "wavelet"
	Block              AlgorithmID = "block"
	Structural         AlgorithmID = "structural"
	ColorHistogram     AlgorithmID = "color-histogram"
	Gradient           AlgorithmID = "gradient"
)

// AdvancedBlurRadius is the Gaussian radius applied before the
// advanced-perceptual transform.
const AdvancedBlurRadius = 1.0

// Algorithms returns every supported algorithm in a stable order.
func Algorithms() []AlgorithmID {
	return []AlgorithmID{
		Average,
		Difference,
		Perceptual,
		AdvancedPerceptual,
		Wavelet,
		Block,
		Structural,
		ColorHistogram,
		Gradient,
	}
}

// ParseAlgorithm converts a user-supplied name into an AlgorithmID.
// Matching ignores case and surrounding whitespace.
func ParseAlgorithm(name string) (AlgorithmID, error) {
	id := AlgorithmID(strings.ToLower(strings.TrimSpace(name)))
	if _, err := id.plan(8); err != nil {
		return "", err
	}
	return id, nil
}

// String implements fmt.Stringer.
func (a AlgorithmID) String() string { return string(a) }

// Policy selects the statistic coefficients are thresholded against.
type Policy int

const (
	// PolicyMean sets a bit when the coefficient exceeds the mean.
	PolicyMean Policy = iota
	// PolicyMedian sets a bit when the coefficient exceeds the median.
	PolicyMedian
	// PolicySign sets a bit when the coefficient is positive.
	PolicySign
)

func (p Policy) String() string {
	switch p {
	case PolicyMean:
		return "mean"
	case PolicyMedian:
		return "median"
	case PolicySign:
		return "sign"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// plan is everything needed to hash one image with one algorithm at one size.
type plan struct {
	request    pixels.Request
	kernel     func(*pixels.Buffer, int) ([]float64, error)
	policy     Policy
	confidence float64
	metadata   map[string]any
}

// plan resolves a to its pixel request, kernel and encoder policy. Size
// validation beyond what the request needs is left to the kernel.
func (a AlgorithmID) plan(n int) (plan, error) {
	gray := func(w, h int) pixels.Request {
		return pixels.Request{Width: w, Height: h, Grayscale: true}
	}

	switch a {
	case Average:
		return plan{request: gray(n, n), kernel: transform.Average, policy: PolicyMean, confidence: 0.70}, nil
	case Difference:
		return plan{request: gray(n+1, n), kernel: transform.Difference, policy: PolicySign, confidence: 0.75}, nil
	case Perceptual:
		return plan{request: gray(n, n), kernel: transform.Perceptual, policy: PolicyMedian, confidence: 0.85}, nil
	case AdvancedPerceptual:
		req := gray(n, n)
		req.BlurRadius = AdvancedBlurRadius
		return plan{
			request:    req,
			kernel:     transform.AdvancedPerceptual,
			policy:     PolicyMean,
			confidence: 0.90,
			metadata:   map[string]any{"blurRadius": AdvancedBlurRadius, "coefficientOrder": "raster"},
		}, nil
	case Wavelet:
		return plan{request: gray(n, n), kernel: transform.Wavelet, policy: PolicyMedian, confidence: 0.80}, nil
	case Block:
		return plan{request: gray(4*n, 4*n), kernel: transform.Block, policy: PolicyMean, confidence: 0.75}, nil
	case Structural:
		return plan{
			request:    gray(n, n),
			kernel:     transform.Gradient,
			policy:     PolicyMedian,
			confidence: 0.90,
			metadata:   map[string]any{"structuralFeatures": true},
		}, nil
	case ColorHistogram:
		return plan{
			request:    pixels.Request{Width: n, Height: n},
			kernel:     transform.ColorHistogram,
			policy:     PolicyMean,
			confidence: 0.60,
		}, nil
	case Gradient:
		return plan{request: gray(n, n), kernel: transform.Gradient, policy: PolicyMedian, confidence: 0.80}, nil
	default:
		return plan{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Confidence returns the fixed reliability weight of a, or an error for an
// unknown algorithm.
func (a AlgorithmID) Confidence() (float64, error) {
	p, err := a.plan(8)
	if err != nil {
		return 0, err
	}
	return p.confidence, nil
}
