package bm95

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidArgument is returned for unusable mode counts or grids
var ErrInvalidArgument = errors.New("invalid argument")

// Basis holds the meridional structures of the first Modes equatorial
// modes. Ru and Rh are (mode × lat): the zonal velocity and height
// structures respectively.
type Basis struct {
	Modes     int
	Lat       []float64
	ScaledLat []float64
	Ru        *mat.Dense
	Rh        *mat.Dense
}

// MeridionalStructures builds the BM95 velocity and height structures for
// modes 0..n-1 over the given latitudes. Mode 0 is the Kelvin wave; mode
// m >= 1 is the m-th long Rossby wave,
//
//	R_u = c_m (ψ_{m+1}/sqrt(m+1) - ψ_{m-1}/sqrt(m))
//	R_h = c_m (ψ_{m+1}/sqrt(m+1) + ψ_{m-1}/sqrt(m))
//
// with c_m = sqrt(m(m+1) / (2(2m+1))).
func MeridionalStructures(n int, lats []float64) (*Basis, error) {
	if n < 1 {
		return nil, fmt.Errorf("mode count %d: %w", n, ErrInvalidArgument)
	}
	if len(lats) == 0 {
		return nil, fmt.Errorf("empty latitude grid: %w", ErrInvalidArgument)
	}

	scaled := ScaleLats(lats, DefaultPhaseSpeed)
	psi := HermiteFunctions(n, scaled)

	nlat := len(lats)
	ru := mat.NewDense(n, nlat, nil)
	rh := mat.NewDense(n, nlat, nil)

	for i := 0; i < nlat; i++ {
		r0 := math.Sqrt(0.5) * psi[0][i]
		ru.Set(0, i, r0)
		rh.Set(0, i, r0)
	}

	for m := 1; m < n; m++ {
		order := float64(m)
		coef := math.Sqrt(order * (order + 1) / (2 * (2*order + 1)))
		for i := 0; i < nlat; i++ {
			forward := psi[m+1][i] / math.Sqrt(order+1)
			backward := psi[m-1][i] / math.Sqrt(order)
			ru.Set(m, i, coef*(forward-backward))
			rh.Set(m, i, coef*(forward+backward))
		}
	}

	return &Basis{
		Modes:     n,
		Lat:       append([]float64(nil), lats...),
		ScaledLat: scaled,
		Ru:        ru,
		Rh:        rh,
	}, nil
}
