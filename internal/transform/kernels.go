package transform

import (
	"fmt"
	"math"

	"github.com/ironsheep/visual-hash-mcp/internal/pixels"
)

// MaxSize is the largest sampling size any kernel accepts.
const MaxSize = 64

// checkBuffer verifies that buf is a non-empty, consistent buffer of exactly
// width x height samples with the given channel count.
func checkBuffer(buf *pixels.Buffer, width, height int, grayscale bool) error {
	return buf.Validate(pixels.Request{Width: width, Height: height, Grayscale: grayscale})
}

func checkSize(n, smallest int) error {
	if n < smallest || n > MaxSize {
		return fmt.Errorf("%w: sampling size %d outside [%d, %d]", pixels.ErrInvalidInput, n, smallest, MaxSize)
	}
	return nil
}

// Average returns the n*n grayscale samples unchanged.
// Thresholding against their mean happens in the encoder.
func Average(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 1); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, n, n, true); err != nil {
		return nil, err
	}
	coeffs := make([]float64, n*n)
	for i, v := range buf.Pix {
		coeffs[i] = float64(v)
	}
	return coeffs, nil
}

// Difference computes horizontal neighbour differences over an (n+1) x n grid.
func Difference(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 1); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, n+1, n, true); err != nil {
		return nil, err
	}
	coeffs := make([]float64, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			coeffs = append(coeffs, buf.Gray(x, y)-buf.Gray(x+1, y))
		}
	}
	return coeffs, nil
}

// DCT2D computes the orthonormal 2-D DCT-II of a square matrix.
//
// The transform is applied separably (rows, then columns). The result is
// indexed [v][u] with v the vertical and u the horizontal frequency.
func DCT2D(grid [][]float64) [][]float64 {
	n := len(grid)
	table := cosineTable(n)

	rows := make([][]float64, n)
	for y := 0; y < n; y++ {
		rows[y] = dct1D(grid[y], table)
	}

	out := make([][]float64, n)
	for v := range out {
		out[v] = make([]float64, n)
	}
	column := make([]float64, n)
	for u := 0; u < n; u++ {
		for y := 0; y < n; y++ {
			column[y] = rows[y][u]
		}
		transformed := dct1D(column, table)
		for v := 0; v < n; v++ {
			out[v][u] = transformed[v]
		}
	}
	return out
}

// cosineTable precomputes alpha(k) * cos((2x+1) k pi / 2n) indexed [k][x].
func cosineTable(n int) [][]float64 {
	table := make([][]float64, n)
	for k := 0; k < n; k++ {
		alpha := math.Sqrt(2.0 / float64(n))
		if k == 0 {
			alpha = math.Sqrt(1.0 / float64(n))
		}
		table[k] = make([]float64, n)
		for x := 0; x < n; x++ {
			table[k][x] = alpha * math.Cos(float64(2*x+1)*float64(k)*math.Pi/float64(2*n))
		}
	}
	return table
}

func dct1D(in []float64, table [][]float64) []float64 {
	out := make([]float64, len(in))
	for k := range out {
		var sum float64
		for x, v := range in {
			sum += v * table[k][x]
		}
		out[k] = sum
	}
	return out
}

// Perceptual transforms the n x n grid with DCT2D and keeps the top-left
// min(8,n) x min(8,n) low-frequency block in row-major order.
func Perceptual(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 1); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, n, n, true); err != nil {
		return nil, err
	}
	dct := DCT2D(buf.Grid())
	m := min(8, n)
	coeffs := make([]float64, 0, m*m)
	for v := 0; v < m; v++ {
		coeffs = append(coeffs, dct[v][:m]...)
	}
	return coeffs, nil
}

// AdvancedPerceptual transforms the (pre-blurred) n x n grid with DCT2D and
// keeps the first min(2n, n*n) coefficients in raster order.
//
// Raster order means the slice runs along the lowest vertical frequencies
// rather than a zig-zag over the low-frequency corner.
func AdvancedPerceptual(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 1); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, n, n, true); err != nil {
		return nil, err
	}
	dct := DCT2D(buf.Grid())
	flat := make([]float64, 0, n*n)
	for _, row := range dct {
		flat = append(flat, row...)
	}
	return flat[:min(2*n, n*n)], nil
}

// Wavelet applies one level of the 2-D Haar transform and returns the
// (n/2) x (n/2) approximation sub-band in raster order. Each row is reduced to
// pairwise averages, then each column of the result, so every coefficient is
// the mean of one 2x2 block. Detail coefficients are discarded.
// n must be a power of two no smaller than 2.
func Wavelet(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 2); err != nil {
		return nil, err
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: wavelet size %d is not a power of two", pixels.ErrInvalidInput, n)
	}
	if err := checkBuffer(buf, n, n, true); err != nil {
		return nil, err
	}

	grid := buf.Grid()
	half := n / 2

	rows := make([][]float64, n)
	for y := range rows {
		rows[y] = make([]float64, half)
		for i := 0; i < half; i++ {
			rows[y][i] = (grid[y][2*i] + grid[y][2*i+1]) / 2
		}
	}

	coeffs := make([]float64, 0, half*half)
	for j := 0; j < half; j++ {
		for x := 0; x < half; x++ {
			coeffs = append(coeffs, (rows[2*j][x]+rows[2*j+1][x])/2)
		}
	}
	return coeffs, nil
}

// Block partitions a 4n x 4n grid into n x n blocks of 4x4 samples and
// returns each block's mean.
func Block(buf *pixels.Buffer, n int) ([]float64, error) {
	const side = 4
	if err := checkSize(n, 1); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, side*n, side*n, true); err != nil {
		return nil, err
	}
	coeffs := make([]float64, 0, n*n)
	for by := 0; by < n; by++ {
		for bx := 0; bx < n; bx++ {
			var sum float64
			for y := by * side; y < (by+1)*side; y++ {
				for x := bx * side; x < (bx+1)*side; x++ {
					sum += buf.Gray(x, y)
				}
			}
			coeffs = append(coeffs, sum/(side*side))
		}
	}
	return coeffs, nil
}

// Gradient returns sqrt(gx² + gy²) for every interior sample of an n x n
// grid, where gx and gy are the central horizontal and vertical differences.
func Gradient(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 3); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, n, n, true); err != nil {
		return nil, err
	}
	coeffs := make([]float64, 0, (n-2)*(n-2))
	for y := 1; y < n-1; y++ {
		for x := 1; x < n-1; x++ {
			gx := buf.Gray(x+1, y) - buf.Gray(x-1, y)
			gy := buf.Gray(x, y+1) - buf.Gray(x, y-1)
			coeffs = append(coeffs, math.Sqrt(gx*gx+gy*gy))
		}
	}
	return coeffs, nil
}

// ColorHistogram builds a 256-bin histogram per RGB channel over an n x n
// grid and returns each histogram's mean value, in R, G, B order.
func ColorHistogram(buf *pixels.Buffer, n int) ([]float64, error) {
	if err := checkSize(n, 1); err != nil {
		return nil, err
	}
	if err := checkBuffer(buf, n, n, false); err != nil {
		return nil, err
	}

	var hist [3][256]int
	for i := 0; i < len(buf.Pix); i += 3 {
		hist[0][buf.Pix[i]]++
		hist[1][buf.Pix[i+1]]++
		hist[2][buf.Pix[i+2]]++
	}

	coeffs := make([]float64, 3)
	for c := range hist {
		var weighted, total float64
		for value, freq := range hist[c] {
			weighted += float64(value * freq)
			total += float64(freq)
		}
		coeffs[c] = weighted / total
	}
	return coeffs, nil
}
