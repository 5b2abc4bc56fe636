package wavelet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Lag1 estimates the lag-1 autocorrelation g of y and the amplitude a of
// the AR(1) innovations, such that y ≈ g·y[t-1] + a·ε.
func Lag1(y []float64) (g, a float64) {
	n := len(y)
	if n < 2 {
		return 0, 0
	}
	mean := stat.Mean(y, nil)
	x := make([]float64, n)
	for i, v := range y {
		x[i] = v - mean
	}
	c0 := floats.Dot(x, x) / float64(n)
	if c0 == 0 {
		return 0, 0
	}
	c1 := floats.Dot(x[:n-1], x[1:]) / float64(n-1)
	g = c1 / c0
	a = math.Sqrt((1 - g*g) * c0)
	return g, a
}

// AnalyzeOptions configures Analyze
type AnalyzeOptions struct {
	Mother  Mother
	Options Options

	// Lag1 overrides the estimated lag-1 autocorrelation when non-nil
	Lag1 *float64

	// Level is the significance level (default 0.95)
	Level float64
}

// DefaultAnalyzeOptions returns a padded Morlet analysis with twelve
// voices per octave
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		Mother: Morlet,
		Options: Options{
			Pad: true,
			Dj:  1.0 / 12,
		},
		Level: 0.95,
	}
}

// Spectrum is a complete wavelet power analysis of one series
type Spectrum struct {
	Transform *Transform

	Power    [][]float64
	Variance float64
	Lag1     float64

	// Signif is the pointwise red-noise level in units of variance
	Signif []float64

	// SigRatio is power / (variance·Signif); values above 1 are significant
	SigRatio [][]float64

	// Global is the time-averaged power and GlobalSignif its significance level
	Global       []float64
	GlobalSignif []float64
}

// Analyze runs the transform and the red-noise significance tests of y.
// Unless overridden the largest scale is about a third of the record.
func Analyze(y []float64, dt float64, opts AnalyzeOptions) (*Spectrum, error) {
	n := len(y)
	if n < 2 {
		return nil, fmt.Errorf("series of length %d: %w", n, ErrInvalidArgument)
	}

	topts := opts.Options
	if topts.Dj <= 0 {
		topts.Dj = 1.0 / 12
	}
	if topts.S0 <= 0 {
		topts.S0 = 2 * dt
	}
	if topts.NumScales <= 0 && len(topts.Freq) == 0 {
		j1 := math.Round(math.Log2(float64(n)*0.17*2*dt/topts.S0) / topts.Dj)
		if j1 < 0 {
			j1 = 0
		}
		topts.NumScales = int(j1) + 1
	}

	tr, err := Compute(y, dt, opts.Mother, topts)
	if err != nil {
		return nil, err
	}

	lag1, _ := Lag1(y)
	if opts.Lag1 != nil {
		lag1 = *opts.Lag1
	}
	variance := stat.Variance(y, nil)

	signif, err := Significance(1, dt, tr.Scale, tr.Mother, SignifOptions{
		Test:  Pointwise,
		Lag1:  lag1,
		Level: opts.Level,
		Param: tr.Param,
	})
	if err != nil {
		return nil, fmt.Errorf("pointwise significance: %w", err)
	}

	power := tr.Power()
	ratio := make([][]float64, len(power))
	for s, row := range power {
		ratio[s] = make([]float64, len(row))
		for i, p := range row {
			ratio[s][i] = p / (variance * signif[s])
		}
	}

	global := tr.GlobalSpectrum()
	spec := &Spectrum{
		Transform: tr,
		Power:     power,
		Variance:  variance,
		Lag1:      lag1,
		Signif:    signif,
		SigRatio:  ratio,
		Global:    global,
	}

	if tr.Mother.Empirical(tr.Param).Defined {
		dof := make([]float64, len(tr.Scale))
		for i, s := range tr.Scale {
			dof[i] = float64(n) - s/dt
		}
		spec.GlobalSignif, err = Significance(variance, dt, tr.Scale, tr.Mother, SignifOptions{
			Test:  TimeAveraged,
			Lag1:  lag1,
			Level: opts.Level,
			DOF:   dof,
			Param: tr.Param,
		})
		if err != nil {
			return nil, fmt.Errorf("global significance: %w", err)
		}
	}

	return spec, nil
}

// PeakPeriod returns the period of maximum global power
func (s *Spectrum) PeakPeriod() float64 {
	if len(s.Global) == 0 {
		return math.NaN()
	}
	return s.Transform.Period[floats.MaxIdx(s.Global)]
}
