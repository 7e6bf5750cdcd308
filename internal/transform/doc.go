// Package transform implements the numeric kernels behind each hash algorithm.
//
// Every kernel takes a pixels.Buffer that was already resized (and grayscaled
// or blurred) for it, plus the sampling size n, and returns a coefficient
// sequence whose length depends only on the kernel and n:
//
//	Average             n*n        pixels as-is
//	Difference          n*n        p(y,x) - p(y,x+1) over an (n+1) x n grid
//	Perceptual          min(8,n)^2 low-frequency DCT block
//	AdvancedPerceptual  min(2n,n*n) DCT coefficients in raster order
//	Wavelet             (n/2)^2    Haar approximation sub-band
//	Block               n*n        4x4 block means over a 4n x 4n grid
//	Gradient            (n-2)^2    interior gradient magnitudes
//	ColorHistogram      3          per-channel histogram means
//
// Kernels are pure functions. A buffer that is empty or smaller than the
// kernel needs fails with an error wrapping pixels.ErrInvalidInput; nothing is
// ever zero-padded.
package transform
