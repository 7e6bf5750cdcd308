package hashing

import (
	"fmt"
	"sort"
	"strings"
)

// Encode converts coefficients to a bit string, one '1' or '0' per
// coefficient, using the threshold statistic selected by policy.
// A bit is '1' only when the coefficient is strictly greater than the
// threshold.
func Encode(coeffs []float64, policy Policy) (string, error) {
	if len(coeffs) == 0 {
		return "", fmt.Errorf("%w: no coefficients to encode", ErrInvalidInput)
	}

	var threshold float64
	switch policy {
	case PolicyMean:
		threshold = mean(coeffs)
	case PolicyMedian:
		threshold = median(coeffs)
	case PolicySign:
		threshold = 0
	default:
		return "", fmt.Errorf("unsupported encoding policy %v", policy)
	}

	var sb strings.Builder
	sb.Grow(len(coeffs))
	for _, c := range coeffs {
		if c > threshold {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String(), nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// median sorts a copy of values. Even-length input yields the mean of the
// two central values.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
