package wavelet

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/oceanlab/pkg/numeric"
)

// Options controls the scale ladder of a transform. Zero values select the
// defaults noted on each field.
type Options struct {
	// Pad zero-pads the series before the FFT to limit wrap-around
	Pad bool

	// Dj is the spacing between discrete scales in octaves (default 0.25)
	Dj float64

	// S0 is the smallest scale (default 2·dt)
	S0 float64

	// NumScales is the number of scales J1+1 (default fix(log2(n·dt/S0)/Dj)+1)
	NumScales int

	// Param is the mother wavelet parameter (default per family)
	Param float64

	// Freq, when set, replaces the geometric ladder by these Fourier frequencies
	Freq []float64
}

// DefaultOptions returns the settings used for monthly climate indices
func DefaultOptions() Options {
	return Options{
		Pad: true,
		Dj:  0.25,
	}
}

// Transform is the result of a continuous wavelet transform
type Transform struct {
	// Wave holds the wavelet coefficients indexed [scale][time]
	Wave   [][]complex128
	Period []float64
	Scale  []float64
	// COI is the e-folding period of edge effects at each time
	COI    []float64
	Mother Mother
	Param  float64
	Dt     float64
	Dj     float64
}

// Compute returns the wavelet transform of y sampled every dt. The series is
// demeaned, optionally zero-padded, and convolved with each daughter
// wavelet in Fourier space.
func Compute(y []float64, dt float64, mother Mother, opts Options) (*Transform, error) {
	if !mother.Valid() {
		return nil, fmt.Errorf("%v: %w", mother, ErrInvalidMother)
	}
	n1 := len(y)
	if n1 < 2 {
		return nil, fmt.Errorf("series of length %d: %w", n1, ErrInvalidArgument)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("sampling interval %v: %w", dt, ErrInvalidArgument)
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("series contains non-finite values: %w", ErrInvalidArgument)
		}
	}

	param := mother.resolveParam(opts.Param)
	dj := opts.Dj
	if dj <= 0 {
		dj = 0.25
	}
	s0 := opts.S0
	if s0 <= 0 {
		s0 = 2 * dt
	}

	mean := stat.Mean(y, nil)
	n := n1
	if opts.Pad {
		base2 := numeric.Fix(math.Log2(float64(n1)) + 0.4999)
		n = int(math.Pow(2, base2+1))
	}
	x := make([]complex128, n)
	for i, v := range y {
		x[i] = complex(v-mean, 0)
	}

	fft := fourier.NewCmplxFFT(n)
	f := fft.Coefficients(nil, x)

	ff := mother.FourierFactor(param)
	var scale, period []float64
	if len(opts.Freq) > 0 {
		scale = make([]float64, len(opts.Freq))
		period = make([]float64, len(opts.Freq))
		for j, fr := range opts.Freq {
			if fr <= 0 {
				return nil, fmt.Errorf("frequency %v: %w", fr, ErrInvalidArgument)
			}
			scale[j] = 1 / (ff * fr)
			period[j] = 1 / fr
		}
	} else {
		nscales := opts.NumScales
		if nscales <= 0 {
			nscales = int(numeric.Fix(math.Log2(float64(n1)*dt/s0)/dj)) + 1
		}
		if nscales < 1 {
			return nil, fmt.Errorf("no scales between s0=%v and the series length: %w", s0, ErrInvalidArgument)
		}
		scale = make([]float64, nscales)
		period = make([]float64, nscales)
		for j := range scale {
			scale[j] = s0 * math.Pow(2, float64(j)*dj)
			period[j] = ff * scale[j]
		}
	}

	k := Wavenumbers(n, dt)
	basis, err := Bases(mother, k, scale, param)
	if err != nil {
		return nil, err
	}

	wave := make([][]complex128, len(scale))
	prod := make([]complex128, n)
	seq := make([]complex128, n)
	invN := complex(1/float64(n), 0)
	for s, daughter := range basis.Daughter {
		for i := range prod {
			prod[i] = f[i] * daughter[i]
		}
		fft.Sequence(seq, prod)
		row := make([]complex128, n1)
		for i := range row {
			row[i] = seq[i] * invN
		}
		wave[s] = row
	}

	return &Transform{
		Wave:   wave,
		Period: period,
		Scale:  scale,
		COI:    coneOfInfluence(n1, dt, basis.COI),
		Mother: mother,
		Param:  param,
		Dt:     dt,
		Dj:     dj,
	}, nil
}

// coneOfInfluence returns coi·dt·[1e-5, 1, 2, …, 2, 1, 1e-5] over n samples
func coneOfInfluence(n int, dt, coi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		d := i
		if r := n - 1 - i; r < d {
			d = r
		}
		edge := float64(d)
		if d == 0 {
			edge = 1e-5
		}
		out[i] = coi * dt * edge
	}
	return out
}

// Power returns |W|² indexed [scale][time]
func (t *Transform) Power() [][]float64 {
	power := make([][]float64, len(t.Wave))
	for s, row := range t.Wave {
		power[s] = make([]float64, len(row))
		for i, w := range row {
			a := cmplx.Abs(w)
			power[s][i] = a * a
		}
	}
	return power
}

// GlobalSpectrum returns the time-averaged wavelet power at each scale
func (t *Transform) GlobalSpectrum() []float64 {
	power := t.Power()
	global := make([]float64, len(power))
	for s, row := range power {
		global[s] = stat.Mean(row, nil)
	}
	return global
}

// ScaleAverage returns the scale-averaged power time series over scales in
// [s1, s2) (TC98 Eq. 24). Only mothers with a defined Cdelta are supported.
func (t *Transform) ScaleAverage(s1, s2 float64) ([]float64, error) {
	emp := t.Mother.Empirical(t.Param)
	if !emp.Defined {
		return nil, fmt.Errorf("%v with param %v: %w", t.Mother, t.Param, ErrUnsupportedParam)
	}
	power := t.Power()
	if len(power) == 0 {
		return nil, fmt.Errorf("transform has no scales: %w", ErrInvalidArgument)
	}
	avg := make([]float64, len(power[0]))
	var used int
	for s, row := range power {
		if t.Scale[s] < s1 || t.Scale[s] >= s2 {
			continue
		}
		used++
		for i, p := range row {
			avg[i] += p / t.Scale[s]
		}
	}
	if used == 0 {
		return nil, fmt.Errorf("no scales in [%v, %v): %w", s1, s2, ErrEmptyScaleBand)
	}
	factor := t.Dj * t.Dt / emp.Cdelta
	for i := range avg {
		avg[i] *= factor
	}
	return avg, nil
}
