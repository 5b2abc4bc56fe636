package wavelet

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Basis is the Fourier-domain daughter wavelet of every scale
type Basis struct {
	// Daughter is indexed [scale][wavenumber]
	Daughter      [][]complex128
	FourierFactor float64
	COI           float64
	DOFMin        float64
}

// Wavenumbers returns the angular wavenumbers of an n-point FFT with
// sampling interval dt, in FFT bin order: 0 and the positive wavenumbers
// ascending, then the negative ones.
func Wavenumbers(n int, dt float64) []float64 {
	k := make([]float64, n)
	for i := 0; i <= n/2; i++ {
		k[i] = float64(i)
	}
	for i := n/2 + 1; i < n; i++ {
		k[i] = float64(i - n)
	}
	for i := range k {
		k[i] *= 2 * math.Pi / (float64(n) * dt)
	}
	return k
}

// Bases computes the daughter wavelets ψ̂(s·ω) of TC98 Table 1, normalized
// to unit energy at each scale, for wavenumbers k (from Wavenumbers) and
// the given scales.
func Bases(mother Mother, k, scales []float64, param float64) (*Basis, error) {
	if !mother.Valid() {
		return nil, fmt.Errorf("%v: %w", mother, ErrInvalidMother)
	}
	n := len(k)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 wavenumbers, got %d: %w", n, ErrInvalidArgument)
	}
	param = mother.resolveParam(param)

	sqrtN := math.Sqrt(float64(n))
	dk := k[1]
	daughter := make([][]complex128, len(scales))

	for s, scale := range scales {
		row := make([]complex128, n)
		switch mother {
		case Morlet:
			norm := math.Sqrt(scale*dk) * math.Pow(math.Pi, -0.25) * sqrtN
			for i, ki := range k {
				if ki <= 0 {
					continue
				}
				d := scale*ki - param
				row[i] = complex(norm*math.Exp(-d*d/2), 0)
			}
		case Paul:
			prod := 1.0
			for j := 1.0; j < 2*param; j++ {
				prod *= j
			}
			norm := math.Sqrt(scale*dk) * math.Pow(2, param) / math.Sqrt(param*prod) * sqrtN
			for i, ki := range k {
				if ki <= 0 {
					continue
				}
				sk := scale * ki
				row[i] = complex(norm*math.Pow(sk, param)*math.Exp(-sk), 0)
			}
		case DOG:
			norm := math.Sqrt(scale*dk/math.Gamma(param+0.5)) * sqrtN
			phase := cmplx.Exp(complex(0, math.Pi*param/2))
			for i, ki := range k {
				sk := scale * ki
				row[i] = -complex(norm*math.Pow(sk, param)*math.Exp(-sk*sk/2), 0) * phase
			}
		}
		daughter[s] = row
	}

	ff := mother.FourierFactor(param)
	return &Basis{
		Daughter:      daughter,
		FourierFactor: ff,
		COI:           ff / math.Sqrt2,
		DOFMin:        mother.DOFMin(),
	}, nil
}
