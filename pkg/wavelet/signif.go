package wavelet

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedParam is returned when the empirical factors of a
	// mother wavelet are unknown for the requested parameter
	ErrUnsupportedParam = errors.New("Cdelta and dj0 not defined for this mother parameter")
	// ErrEmptyScaleBand is returned when no scale falls inside a scale-average band
	ErrEmptyScaleBand = errors.New("no valid scales in band")
	// ErrInvalidSigTest is returned for an unknown significance test
	ErrInvalidSigTest = errors.New("sigtest must be either 0, 1, or 2")
)

// SigTest selects the significance test
type SigTest int

const (
	// Pointwise tests each wavelet power value, DOF = dofmin
	Pointwise SigTest = iota
	// TimeAveraged tests a time-averaged (global) spectrum
	TimeAveraged
	// ScaleAveraged tests a scale-averaged power time series
	ScaleAveraged
)

// SignifOptions configures Significance
type SignifOptions struct {
	Test SigTest

	// Lag1 is the lag-1 autocorrelation of the red-noise background
	Lag1 float64

	// Level is the significance level (default 0.95)
	Level float64

	// DOF is ignored for Pointwise. For TimeAveraged it holds the number of
	// points averaged, either one value or one per scale. For ScaleAveraged
	// it holds the band [S1, S2].
	DOF []float64

	// Param is the mother wavelet parameter (default per family)
	Param float64

	// GWS replaces the red-noise spectrum by a global wavelet spectrum
	GWS []float64
}

// RedNoise returns the normalized lag-1 autoregressive Fourier spectrum
// (TC98 Eq. 16) at the periods of the given scales, times variance.
func RedNoise(variance, dt, lag1 float64, periods []float64) []float64 {
	out := make([]float64, len(periods))
	for i, p := range periods {
		freq := dt / p
		out[i] = variance * (1 - lag1*lag1) / (1 - 2*lag1*math.Cos(freq*2*math.Pi) + lag1*lag1)
	}
	return out
}

// Significance returns the power level above which wavelet power differs
// from the background at opts.Level, aligned with scales. ScaleAveraged
// returns a single value.
func Significance(variance, dt float64, scales []float64, mother Mother, opts SignifOptions) ([]float64, error) {
	if !mother.Valid() {
		return nil, fmt.Errorf("%v: %w", mother, ErrInvalidMother)
	}
	if len(scales) == 0 {
		return nil, fmt.Errorf("no scales: %w", ErrInvalidArgument)
	}
	level := opts.Level
	if level == 0 {
		level = 0.95
	}

	param := mother.resolveParam(opts.Param)
	emp := mother.Empirical(param)
	ff := mother.FourierFactor(param)

	periods := make([]float64, len(scales))
	for i, s := range scales {
		periods[i] = s * ff
	}

	var theor []float64
	if opts.GWS != nil {
		if len(opts.GWS) != len(scales) {
			return nil, fmt.Errorf("global spectrum has %d values for %d scales: %w", len(opts.GWS), len(scales), ErrInvalidArgument)
		}
		theor = append([]float64(nil), opts.GWS...)
	} else {
		theor = RedNoise(variance, dt, opts.Lag1, periods)
	}

	switch opts.Test {
	case Pointwise:
		chi, err := ChiSquareInv(level, emp.DOFMin)
		if err != nil {
			return nil, err
		}
		chi /= emp.DOFMin
		signif := make([]float64, len(theor))
		for i, v := range theor {
			signif[i] = v * chi
		}
		return signif, nil

	case TimeAveraged:
		if !emp.Defined {
			return nil, fmt.Errorf("time-averaged test for %v param %v: %w", mother, param, ErrUnsupportedParam)
		}
		navg, err := broadcastDOF(opts.DOF, len(scales), emp.DOFMin)
		if err != nil {
			return nil, err
		}
		signif := make([]float64, len(theor))
		for i := range scales {
			na := math.Max(navg[i], 1)
			r := na * dt / emp.Gamma / scales[i]
			dof := math.Max(emp.DOFMin*math.Sqrt(1+r*r), emp.DOFMin)
			chi, err := ChiSquareInv(level, dof)
			if err != nil {
				return nil, err
			}
			signif[i] = theor[i] * chi / dof
		}
		return signif, nil

	case ScaleAveraged:
		if len(opts.DOF) != 2 {
			return nil, fmt.Errorf("DOF must be set to [S1, S2], the range of scale-averages: %w", ErrInvalidArgument)
		}
		if !emp.Defined {
			return nil, fmt.Errorf("scale-averaged test for %v param %v: %w", mother, param, ErrUnsupportedParam)
		}
		if len(scales) < 2 {
			return nil, fmt.Errorf("scale spacing needs at least 2 scales: %w", ErrInvalidArgument)
		}
		s1, s2 := opts.DOF[0], opts.DOF[1]
		if !(s1 > 0 && s1 < s2) {
			return nil, fmt.Errorf("scale band [%v, %v) must satisfy 0 < S1 < S2: %w", s1, s2, ErrInvalidArgument)
		}
		dj := math.Log2(scales[1] / scales[0])

		var navg int
		var invSum, theorSum float64
		for i, s := range scales {
			if s < s1 || s >= s2 {
				continue
			}
			navg++
			invSum += 1 / s
			theorSum += theor[i] / s
		}
		if navg == 0 {
			return nil, fmt.Errorf("between %v and %v: %w", s1, s2, ErrEmptyScaleBand)
		}

		// Eqs. 25-28
		savg := 1 / invSum
		smid := math.Exp((math.Log(s1) + math.Log(s2)) / 2)
		r := float64(navg) * dj / emp.Dj0
		dof := (emp.DOFMin * float64(navg) * savg / smid) * math.Sqrt(1+r*r)
		bandTheor := savg * theorSum
		chi, err := ChiSquareInv(level, dof)
		if err != nil {
			return nil, err
		}
		return []float64{(dj * dt / emp.Cdelta / savg) * bandTheor * chi / dof}, nil
	}

	return nil, fmt.Errorf("sigtest %d: %w", opts.Test, ErrInvalidSigTest)
}

func broadcastDOF(dof []float64, n int, fallback float64) ([]float64, error) {
	out := make([]float64, n)
	switch len(dof) {
	case 0:
		for i := range out {
			out[i] = fallback
		}
	case 1:
		for i := range out {
			out[i] = dof[0]
		}
	case n:
		copy(out, dof)
	default:
		return nil, fmt.Errorf("%d DOF values for %d scales: %w", len(dof), n, ErrInvalidArgument)
	}
	return out, nil
}
