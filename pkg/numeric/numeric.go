// Package numeric holds the small array helpers shared by the analysis
// packages: trapezoidal integration, a checked matrix inverse, 1-2-1
// smoothing and FFT index bookkeeping.
package numeric

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is returned when a matrix cannot be inverted
var ErrSingularMatrix = errors.New("matrix is singular")

// Trapz integrates y sampled at a uniform spacing dx using the trapezoidal rule.
// NaNs propagate.
func Trapz(y []float64, dx float64) float64 {
	if len(y) < 2 {
		return 0
	}
	x := make([]float64, len(y))
	floats.Span(x, 0, dx*float64(len(y)-1))
	return integrate.Trapezoidal(x, y)
}

// NanTrapz integrates y with the trapezoidal rule, dropping every panel that
// touches a NaN sample. An all-NaN input integrates to zero.
func NanTrapz(y []float64, dx float64) float64 {
	var sum float64
	for i := 1; i < len(y); i++ {
		panel := dx * (y[i] + y[i-1]) / 2
		if math.IsNaN(panel) {
			continue
		}
		sum += panel
	}
	return sum
}

// Inverse returns the inverse of a square matrix. Singular and numerically
// ill-conditioned matrices are reported as ErrSingularMatrix.
func Inverse(a mat.Matrix) (*mat.Dense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("inverse of %dx%d matrix: %w", r, c, ErrSingularMatrix)
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
	}
	return &inv, nil
}

// Smooth121 applies a normalized [1 2 1] kernel passes times, reflecting
// the series about its edges (d c b a | a b c d | d c b a).
func Smooth121(x []float64, passes int) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	n := len(out)
	if n < 2 {
		return out
	}
	tmp := make([]float64, n)
	for p := 0; p < passes; p++ {
		for i := 0; i < n; i++ {
			left, right := i-1, i+1
			if left < 0 {
				left = 0
			}
			if right > n-1 {
				right = n - 1
			}
			tmp[i] = 0.25*out[left] + 0.5*out[i] + 0.25*out[right]
		}
		out, tmp = tmp, out
	}
	return out
}

// FFTFreq returns the sample frequencies of an n-point FFT with sample
// spacing d, in standard FFT bin order.
func FFTFreq(n int, d float64) []float64 {
	f := make([]float64, n)
	for i := 0; i < n; i++ {
		k := i
		if i > (n-1)/2 {
			k = i - n
		}
		f[i] = float64(k) / (d * float64(n))
	}
	return f
}

// FFTShiftIndex maps position i of a shifted spectrum back to its FFT bin.
func FFTShiftIndex(i, n int) int {
	return (i - n/2 + n) % n
}

// FFTShift reorders x so the zero-frequency bin sits at index len(x)/2.
func FFTShift(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	for i := range out {
		out[i] = x[FFTShiftIndex(i, n)]
	}
	return out
}

// NanMean returns the mean of the finite values of x, or NaN if there are none.
func NanMean(x []float64) float64 {
	var sum float64
	var count int
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// AllNaN reports whether every element of x is NaN. An empty slice is not all-NaN.
func AllNaN(x []float64) bool {
	if len(x) == 0 {
		return false
	}
	for _, v := range x {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Fix rounds toward zero.
func Fix(x float64) float64 {
	return math.Trunc(x)
}
