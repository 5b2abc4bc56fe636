// Package filters implements Lanczos-windowed cosine filters applied in the
// frequency domain.
package filters

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/chrissnell/oceanlab/pkg/numeric"
)

var (
	// ErrInvalidKind is returned for an unknown filter kind
	ErrInvalidKind = errors.New("filter kind must be low or high")
	// ErrInvalidArgument is returned for out-of-range filter parameters
	ErrInvalidArgument = errors.New("invalid filter argument")
)

// Kind selects the pass band of a filter
type Kind int

const (
	Lowpass Kind = iota
	Highpass
)

// ParseKind accepts "low", "lowpass", "high" and "highpass"
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low", "lowpass":
		return Lowpass, nil
	case "high", "highpass":
		return Highpass, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidKind)
}

func (k Kind) String() string {
	switch k {
	case Lowpass:
		return "low"
	case Highpass:
		return "high"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DefaultTerms is the number of filter coefficients on each side of the center
const DefaultTerms = 100

// LowpassCosineCoef returns the m+1 one-sided coefficients of the ideal
// lowpass filter with cutoff cf, given as a fraction of the Nyquist frequency.
func LowpassCosineCoef(cf float64, m int) []float64 {
	coef := make([]float64, m+1)
	coef[0] = cf
	for k := 1; k <= m; k++ {
		arg := math.Pi * float64(k) * cf
		coef[k] = cf * math.Sin(arg) / arg
	}
	return coef
}

// LanczosCoef tapers the cosine coefficients with the Lanczos sigma factors.
// The highpass coefficients are the complement of the lowpass ones.
func LanczosCoef(cf float64, m int) (lowpass, highpass []float64) {
	lowpass = LowpassCosineCoef(cf, m)
	highpass = make([]float64, m+1)
	for k := 1; k <= m; k++ {
		arg := math.Pi * float64(k) / float64(m)
		lowpass[k] *= math.Sin(arg) / arg
	}
	for k, c := range lowpass {
		highpass[k] = -c
	}
	highpass[0]++
	return lowpass, highpass
}

// SpectralWindow evaluates the frequency response of the symmetric filter
// coef at the n/2+1 non-negative FFT frequencies of an n-point series.
// freq is normalized so that 1 is the Nyquist frequency.
func SpectralWindow(coef []float64, n int) (window, freq []float64) {
	npts := n/2 + 1
	window = make([]float64, npts)
	freq = make([]float64, npts)
	for i := range window {
		ff := 2 * float64(i) / float64(n)
		w := coef[0]
		for k := 1; k < len(coef); k++ {
			w += 2 * coef[k] * math.Cos(float64(k)*math.Pi*ff)
		}
		window[i] = w
		freq[i] = ff
	}
	return window, freq
}

// SpectralFilter multiplies the one-sided spectrum of x by window and
// transforms back. The result has the length of x.
func SpectralFilter(x, window []float64) ([]float64, error) {
	n := len(x)
	if n == 0 {
		return []float64{}, nil
	}
	if len(window) != n/2+1 {
		return nil, fmt.Errorf("window has %d points for a series of %d: %w", len(window), n, ErrInvalidArgument)
	}
	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, x)
	for i := range coeff {
		coeff[i] *= complex(window[i], 0)
	}
	y := fft.Sequence(nil, coeff)
	for i := range y {
		y[i] /= float64(n)
	}
	return y, nil
}

// Response returns the frequency response of a Lanczos filter for an
// n-point series sampled every dt, with frequencies in cycles per dt unit.
func Response(cutoff, dt float64, m int, kind Kind, n int) (window, freq []float64, err error) {
	coef, err := design(cutoff, dt, m, kind)
	if err != nil {
		return nil, nil, err
	}
	window, freq = SpectralWindow(coef, n)
	nyquist := 1 / (2 * dt)
	for i := range freq {
		freq[i] *= nyquist
	}
	return window, freq, nil
}

// Lanczos filters x with a Lanczos lowpass or highpass filter of cutoff
// frequency cutoff (cycles per dt unit) and m terms. Missing samples are
// replaced by the mean of the finite ones; an all-NaN series comes back as
// an all-NaN series of the same length.
func Lanczos(x []float64, cutoff, dt float64, m int, kind Kind) ([]float64, error) {
	if numeric.AllNaN(x) {
		out := make([]float64, len(x))
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	coef, err := design(cutoff, dt, m, kind)
	if err != nil {
		return nil, err
	}

	fill := numeric.NanMean(x)
	filled := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			v = fill
		}
		filled[i] = v
	}

	window, _ := SpectralWindow(coef, len(x))
	return SpectralFilter(filled, window)
}

func design(cutoff, dt float64, m int, kind Kind) ([]float64, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("sampling interval %v: %w", dt, ErrInvalidArgument)
	}
	if m < 1 {
		return nil, fmt.Errorf("%d terms: %w", m, ErrInvalidArgument)
	}
	nyquist := 1 / (2 * dt)
	if cutoff <= 0 || cutoff > nyquist {
		return nil, fmt.Errorf("cutoff %v outside (0, %v]: %w", cutoff, nyquist, ErrInvalidArgument)
	}
	low, high := LanczosCoef(cutoff/nyquist, m)
	switch kind {
	case Lowpass:
		return low, nil
	case Highpass:
		return high, nil
	}
	return nil, fmt.Errorf("%v: %w", kind, ErrInvalidKind)
}
