package hashing

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		coeffs []float64
		policy Policy
		want   string
	}{
		{"mean", []float64{1, 2, 3, 4}, PolicyMean, "0011"},
		{"mean equal to threshold is zero", []float64{2, 2, 2}, PolicyMean, "000"},
		{"median odd", []float64{5, 1, 3}, PolicyMedian, "100"},
		{"median even averages centre", []float64{1, 10, 2, 9}, PolicyMedian, "0101"},
		{"median skewed", []float64{0, 0, 0, 100, 1}, PolicyMedian, "00011"},
		{"sign", []float64{-1, 0, 0.5, 3}, PolicySign, "0011"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.coeffs, tt.policy)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEncode_DoesNotReorderInput(t *testing.T) {
	coeffs := []float64{3, 1, 2}
	if _, err := Encode(coeffs, PolicyMedian); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if coeffs[0] != 3 || coeffs[1] != 1 || coeffs[2] != 2 {
		t.Errorf("input was modified: %v", coeffs)
	}
}

func TestEncode_Empty(t *testing.T) {
	if _, err := Encode(nil, PolicyMean); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestMedian(t *testing.T) {
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Errorf("median even: got %v, want 2.5", got)
	}
	if got := median([]float64{7}); got != 7 {
		t.Errorf("median single: got %v, want 7", got)
	}
}
