// Package spectrum computes wavenumber-frequency power spectra of (time × x)
// fields: a Fourier transform along x followed by a Welch-type short-time
// Fourier transform along time.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/oceanlab/pkg/numeric"
)

// ErrInvalidArgument is returned for malformed input fields or options
var ErrInvalidArgument = errors.New("invalid spectrum argument")

// Options configures Dispersion
type Options struct {
	// Dx and Dt are the grid spacing along x and the sampling interval
	Dx float64
	Dt float64

	// NumX is the FFT length along x (default: the number of columns).
	// Rows are zero-padded or truncated to it.
	NumX int

	// SegmentLength is the number of time samples per segment
	SegmentLength int

	// Overlap is the number of samples shared by consecutive segments.
	// A negative value selects SegmentLength/2.
	Overlap int

	// NFFT zero-pads each segment to this length when larger than SegmentLength
	NFFT int

	// Window tapers each segment (default: periodic Hann)
	Window []float64
}

// Smoothing sets the number of 1-2-1 passes along frequency (NT) and
// wavenumber (NX)
type Smoothing struct {
	NT int
	NX int
}

// DefaultSmoothing returns the passes used for equatorial wave diagrams
func DefaultSmoothing() Smoothing {
	return Smoothing{NT: 20, NX: 40}
}

// Spectrum is a wavenumber-frequency power estimate. Power is indexed
// [frequency][wavenumber]; Frequency holds the non-negative frequencies in
// ascending order and Wavenumber is centered on zero.
type Spectrum struct {
	Power      [][]float64
	Frequency  []float64
	Wavenumber []float64
	Segments   int
}

// Result bundles a raw spectrum with its smoothed copy and the effective
// degrees of freedom of the segment average
type Result struct {
	*Spectrum
	Smoothed [][]float64
	DOF      float64
}

// Hann returns the periodic Hann window of length n
func Hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func (o Options) resolve(nt, ncols int) (Options, error) {
	if o.Dx <= 0 || o.Dt <= 0 {
		return o, fmt.Errorf("resolutions dx=%v dt=%v: %w", o.Dx, o.Dt, ErrInvalidArgument)
	}
	if o.NumX <= 0 {
		o.NumX = ncols
	}
	if o.SegmentLength < 1 || o.SegmentLength > nt {
		return o, fmt.Errorf("segment length %d for %d samples: %w", o.SegmentLength, nt, ErrInvalidArgument)
	}
	if o.Overlap < 0 {
		o.Overlap = o.SegmentLength / 2
	}
	if o.Overlap >= o.SegmentLength {
		return o, fmt.Errorf("overlap %d for segments of %d: %w", o.Overlap, o.SegmentLength, ErrInvalidArgument)
	}
	if o.NFFT == 0 {
		o.NFFT = o.SegmentLength
	}
	if o.NFFT < o.SegmentLength {
		return o, fmt.Errorf("nfft %d shorter than segment %d: %w", o.NFFT, o.SegmentLength, ErrInvalidArgument)
	}
	if o.Window == nil {
		o.Window = Hann(o.SegmentLength)
	}
	if len(o.Window) != o.SegmentLength {
		return o, fmt.Errorf("window of %d samples for segments of %d: %w", len(o.Window), o.SegmentLength, ErrInvalidArgument)
	}
	return o, nil
}

// Dispersion returns the wavenumber-frequency power of data, indexed
// [time][x]. Each time series of x-Fourier coefficients is extended by half
// a segment of zeros at both ends, padded to a whole number of hops, cut into
// windowed segments and transformed. Segment powers are averaged and scaled
// by 2·dx·dt/(Nx·Nt).
func Dispersion(data [][]float64, opts Options) (*Spectrum, error) {
	nt := len(data)
	if nt == 0 || len(data[0]) == 0 {
		return nil, fmt.Errorf("empty field: %w", ErrInvalidArgument)
	}
	ncols := len(data[0])
	for i, row := range data {
		if len(row) != ncols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), ncols, ErrInvalidArgument)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d contains non-finite values: %w", i, ErrInvalidArgument)
			}
		}
	}
	opts, err := opts.resolve(nt, ncols)
	if err != nil {
		return nil, err
	}
	nx, nperseg, nfft := opts.NumX, opts.SegmentLength, opts.NFFT
	hop := nperseg - opts.Overlap

	// Fourier transform along x, placed after nperseg/2 leading zeros
	half := nperseg / 2
	length := nt + 2*half
	nadd := ((-(length-nperseg))%hop + hop) % hop % nperseg
	length += nadd
	xfft := fourier.NewCmplxFFT(nx)
	series := make([][]complex128, length)
	row := make([]complex128, nx)
	for t := range series {
		series[t] = make([]complex128, nx)
		if t < half || t >= half+nt {
			continue
		}
		for j := range row {
			row[j] = 0
			if j < ncols {
				row[j] = complex(data[t-half][j], 0)
			}
		}
		xfft.Coefficients(series[t], row)
	}

	nseg := (length-nperseg)/hop + 1
	tfft := fourier.NewCmplxFFT(nfft)
	seg := make([]complex128, nfft)
	coeff := make([]complex128, nfft)
	acc := make([][]float64, nfft)
	for f := range acc {
		acc[f] = make([]float64, nx)
	}
	for s := 0; s < nseg; s++ {
		start := s * hop
		for j := 0; j < nx; j++ {
			for i := range seg {
				seg[i] = 0
				if i < nperseg {
					seg[i] = series[start+i][j] * complex(opts.Window[i], 0)
				}
			}
			tfft.Coefficients(coeff, seg)
			for f, c := range coeff {
				a := cmplx.Abs(c)
				acc[f][j] += a * a
			}
		}
	}

	nkeep := nfft - nfft/2
	scale := 2 * opts.Dx * opts.Dt / (float64(nx) * float64(nfft) * float64(nseg))
	power := make([][]float64, nkeep)
	for r := range power {
		power[r] = make([]float64, nx)
		f := numeric.FFTShiftIndex(nfft/2+r, nfft)
		for c := range power[r] {
			power[r][c] = acc[f][numeric.FFTShiftIndex(c, nx)] * scale
		}
	}

	freq := numeric.FFTShift(numeric.FFTFreq(nfft, opts.Dt))[nfft/2:]
	wavenumber := numeric.FFTShift(numeric.FFTFreq(nx, opts.Dx))

	return &Spectrum{
		Power:      power,
		Frequency:  freq,
		Wavenumber: wavenumber,
		Segments:   nseg,
	}, nil
}

// Smooth121 applies nt 1-2-1 passes along frequency and then nx passes
// along wavenumber, reflecting at the edges. power is not modified.
func Smooth121(power [][]float64, nt, nx int) [][]float64 {
	nf := len(power)
	if nf == 0 {
		return [][]float64{}
	}
	nk := len(power[0])
	out := make([][]float64, nf)
	for f := range out {
		out[f] = make([]float64, nk)
	}

	col := make([]float64, nf)
	for k := 0; k < nk; k++ {
		for f := range col {
			col[f] = power[f][k]
		}
		smoothed := numeric.Smooth121(col, nt)
		for f, v := range smoothed {
			out[f][k] = v
		}
	}
	for f := range out {
		out[f] = numeric.Smooth121(out[f], nx)
	}
	return out
}

// EDOF returns the effective degrees of freedom of a segment-averaged
// spectral estimate over n samples with the given window and overlap.
func EDOF(n int, window []float64, overlap int) float64 {
	w := append([]float64(nil), window...)
	if norm := floats.Norm(w, 2); norm > 0 {
		floats.Scale(1/norm, w)
	}
	nskip := len(w) - overlap
	if nskip <= 0 {
		return math.NaN()
	}
	nseg := math.Ceil(float64(n)/float64(nskip)) + 1

	shifted := make([]float64, len(w))
	var den float64
	for m := 1; m < int(math.Round(nseg)); m++ {
		upper := m * nskip
		if upper >= len(w) {
			break
		}
		for i := range shifted {
			shifted[i] = 0
		}
		copy(shifted, w[upper:])
		d := floats.Dot(w, shifted)
		den += (1 - float64(m)/nseg) * d * d
	}
	return 2 * nseg / (1 + 2*den)
}

// Compute estimates the dispersion spectrum of data together with its
// effective degrees of freedom. A nil smoothing skips the smoothed copy.
func Compute(data [][]float64, opts Options, smoothing *Smoothing) (*Result, error) {
	spec, err := Dispersion(data, opts)
	if err != nil {
		return nil, err
	}
	resolved, err := opts.resolve(len(data), len(data[0]))
	if err != nil {
		return nil, err
	}
	res := &Result{
		Spectrum: spec,
		DOF:      EDOF(len(data), resolved.Window, resolved.Overlap),
	}
	if smoothing != nil {
		res.Smoothed = Smooth121(spec.Power, smoothing.NT, smoothing.NX)
	}
	return res, nil
}
