// Package wavelet implements the continuous wavelet transform and the
// red-noise significance tests of Torrence & Compo (1998).
package wavelet

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidMother is returned for an unknown mother wavelet
	ErrInvalidMother = errors.New("mother must be one of MORLET, PAUL, DOG")
	// ErrInvalidArgument is returned for unusable transform parameters
	ErrInvalidArgument = errors.New("invalid argument")
)

// Mother identifies a mother wavelet family
type Mother int

const (
	Morlet Mother = iota
	Paul
	DOG
)

// ParseMother converts a family name such as "morlet" to a Mother
func ParseMother(name string) (Mother, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MORLET":
		return Morlet, nil
	case "PAUL":
		return Paul, nil
	case "DOG":
		return DOG, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidMother)
}

func (m Mother) String() string {
	switch m {
	case Morlet:
		return "MORLET"
	case Paul:
		return "PAUL"
	case DOG:
		return "DOG"
	}
	return fmt.Sprintf("Mother(%d)", int(m))
}

// Valid reports whether m is one of the known families
func (m Mother) Valid() bool {
	return m == Morlet || m == Paul || m == DOG
}

// DefaultParam returns the nondimensional frequency k0 for Morlet, the
// order m for Paul and the derivative m for DOG.
func (m Mother) DefaultParam() float64 {
	switch m {
	case Paul:
		return 4
	case DOG:
		return 2
	}
	return 6
}

// resolveParam substitutes the family default for a zero or NaN parameter
func (m Mother) resolveParam(param float64) float64 {
	if param == 0 || math.IsNaN(param) {
		return m.DefaultParam()
	}
	return param
}

// FourierFactor converts scale to equivalent Fourier period (TC98 Table 1)
func (m Mother) FourierFactor(param float64) float64 {
	param = m.resolveParam(param)
	switch m {
	case Morlet:
		return 4 * math.Pi / (param + math.Sqrt(2+param*param))
	case Paul:
		return 4 * math.Pi / (2*param + 1)
	case DOG:
		return 2 * math.Pi * math.Sqrt(2/(2*param+1))
	}
	return math.NaN()
}

// COIFactor is the e-folding time of the wavelet power at each scale,
// in units of scale.
func (m Mother) COIFactor(param float64) float64 {
	return m.FourierFactor(param) / math.Sqrt2
}

// DOFMin returns the degrees of freedom of a single wavelet power estimate
func (m Mother) DOFMin() float64 {
	if m == DOG {
		return 1
	}
	return 2
}

// Empirical holds the TC98 Table 2 factors of a mother wavelet. Values are
// only known for the default parameters (and DOG m=6); Defined is false
// otherwise.
type Empirical struct {
	DOFMin  float64
	Cdelta  float64 // reconstruction factor
	Gamma   float64 // time-decorrelation factor
	Dj0     float64 // scale-decorrelation factor
	Defined bool
}

// Empirical returns the Table 2 factors for the given parameter
func (m Mother) Empirical(param float64) Empirical {
	param = m.resolveParam(param)
	e := Empirical{DOFMin: m.DOFMin(), Cdelta: -1, Gamma: -1, Dj0: -1}
	switch {
	case m == Morlet && param == 6:
		e.Cdelta, e.Gamma, e.Dj0 = 0.776, 2.32, 0.60
	case m == Paul && param == 4:
		e.Cdelta, e.Gamma, e.Dj0 = 1.132, 1.17, 1.5
	case m == DOG && param == 2:
		e.Cdelta, e.Gamma, e.Dj0 = 3.541, 1.43, 1.4
	case m == DOG && param == 6:
		e.Cdelta, e.Gamma, e.Dj0 = 1.966, 1.37, 0.97
	default:
		return e
	}
	e.Defined = true
	return e
}
