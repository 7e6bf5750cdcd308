package hashing

import "fmt"

// Severity grades how far apart two hashes are.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Severity boundaries. Both are exclusive: a similarity equal to a boundary
// falls into the worse class.
const (
	lowSeverityAbove    = 0.8
	mediumSeverityAbove = 0.6
)

// SimilarityResult is the outcome of comparing two equal-length bit strings.
type SimilarityResult struct {
	Identical             bool        `json:"identical"`
	Similarity            float64     `json:"similarity"`
	Algorithm             AlgorithmID `json:"algorithm"`
	DifferingBitCount     int         `json:"differing_bit_count"`
	DifferingBitPositions []int       `json:"differing_bit_positions"`
	Severity              Severity    `json:"severity"`
}

// ClassifySeverity maps a similarity in [0,1] to a Severity.
func ClassifySeverity(similarity float64) Severity {
	switch {
	case similarity > lowSeverityAbove:
		return SeverityLow
	case similarity > mediumSeverityAbove:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// CompareBits computes the Hamming distance between a and b and derives a
// SimilarityResult labelled with algorithm. Strings of different length fail
// with ErrLengthMismatch; no prefix comparison is attempted.
func CompareBits(a, b string, algorithm AlgorithmID) (*SimilarityResult, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d bits", ErrLengthMismatch, len(a), len(b))
	}

	if a == b {
		return &SimilarityResult{
			Identical:             true,
			Similarity:            1.0,
			Algorithm:             algorithm,
			DifferingBitPositions: []int{},
			Severity:              SeverityLow,
		}, nil
	}

	positions := make([]int, 0)
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			positions = append(positions, i)
		}
	}

	similarity := 1 - float64(len(positions))/float64(len(a))
	return &SimilarityResult{
		Identical:             false,
		Similarity:            similarity,
		Algorithm:             algorithm,
		DifferingBitCount:     len(positions),
		DifferingBitPositions: positions,
		Severity:              ClassifySeverity(similarity),
	}, nil
}

// CompareHashes compares two descriptors. They must share an algorithm and
// bit length.
func CompareHashes(a, b *HashDescriptor) (*SimilarityResult, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: nil hash descriptor", ErrInvalidInput)
	}
	if a.Algorithm != b.Algorithm {
		return nil, fmt.Errorf("%w: %s vs %s", ErrAlgorithmMismatch, a.Algorithm, b.Algorithm)
	}
	return CompareBits(a.Bits, b.Bits, a.Algorithm)
}

// AllDifferent returns the result of comparing a length-bit hash against its
// exact complement: every position differs and similarity is zero.
func AllDifferent(length int, algorithm AlgorithmID) *SimilarityResult {
	positions := make([]int, length)
	for i := range positions {
		positions[i] = i
	}
	return &SimilarityResult{
		Identical:             false,
		Similarity:            0,
		Algorithm:             algorithm,
		DifferingBitCount:     length,
		DifferingBitPositions: positions,
		Severity:              SeverityHigh,
	}
}
