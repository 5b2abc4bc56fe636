package bm95

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chrissnell/oceanlab/pkg/grid"
	"github.com/chrissnell/oceanlab/pkg/numeric"
)

// ErrSingularMatrix is returned when the projection matrix cannot be inverted
var ErrSingularMatrix = numeric.ErrSingularMatrix

// ProjectionParams controls how the projection is built
type ProjectionParams struct {
	// GridSpacing is the latitude step in degrees whose nondimensional
	// length is used as the integration step
	GridSpacing float64

	// FillLimit is the longest run of missing samples filled along longitude
	FillLimit int
}

// DefaultProjectionParams returns the settings used for quarter-degree products
func DefaultProjectionParams() ProjectionParams {
	return ProjectionParams{
		GridSpacing: 0.25,
		FillLimit:   2,
	}
}

// Projection holds a meridional basis with its projection matrix
//
//	A_ij = ∫ R_h(i, y) R_h(j, y) dy
//
// and the inverse of A. It is immutable once built and can be reused for
// any field on the same latitude grid.
type Projection struct {
	Basis  *Basis
	A      *mat.SymDense
	AInv   *mat.Dense
	Params ProjectionParams

	dy float64
}

// Decomposition bundles the three stages of a projection
type Decomposition struct {
	// B is the projection vector (mode, time, lon)
	B *grid.ModeSeries
	// R is the wave coefficient vector (mode, time, lon)
	R *grid.ModeSeries
	// H is the sea level carried by each mode (mode, time, lat, lon)
	H *grid.ModeField
}

// NewProjection builds the basis for nmodes modes over lats and inverts the
// projection matrix.
func NewProjection(lats []float64, nmodes int, params ProjectionParams) (*Projection, error) {
	if params.GridSpacing <= 0 {
		return nil, fmt.Errorf("grid spacing %v: %w", params.GridSpacing, ErrInvalidArgument)
	}
	if len(lats) < nmodes {
		return nil, fmt.Errorf("%d latitudes cannot resolve %d modes: %w", len(lats), nmodes, ErrSingularMatrix)
	}

	basis, err := MeridionalStructures(nmodes, lats)
	if err != nil {
		return nil, err
	}

	dy := ScaleLat(params.GridSpacing, DefaultPhaseSpeed)
	a := buildA(basis.Rh, dy)

	inv, err := numeric.Inverse(a)
	if err != nil {
		return nil, fmt.Errorf("inverting %d-mode projection matrix: %w", nmodes, err)
	}

	return &Projection{
		Basis:  basis,
		A:      a,
		AInv:   inv,
		Params: params,
		dy:     dy,
	}, nil
}

func buildA(rh *mat.Dense, dy float64) *mat.SymDense {
	n, nlat := rh.Dims()
	a := mat.NewSymDense(n, nil)
	prod := make([]float64, nlat)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			for k := 0; k < nlat; k++ {
				prod[k] = rh.At(i, k) * rh.At(j, k)
			}
			a.SetSym(i, j, numeric.Trapz(prod, dy))
		}
	}
	return a
}

// Modes returns the number of modes in the basis
func (p *Projection) Modes() int {
	return p.Basis.Modes
}

func (p *Projection) checkGrid(lats []float64) error {
	if len(lats) != len(p.Basis.Lat) {
		return fmt.Errorf("field has %d latitudes, projection has %d: %w", len(lats), len(p.Basis.Lat), ErrInvalidArgument)
	}
	for i, lat := range lats {
		if math.Abs(lat-p.Basis.Lat[i]) > 1e-9 {
			return fmt.Errorf("latitude %d is %v, projection expects %v: %w", i, lat, p.Basis.Lat[i], ErrInvalidArgument)
		}
	}
	return nil
}

// ProjectionVector integrates the nondimensional sea level against each
// height structure. Gaps of up to FillLimit samples along longitude are
// filled first; anything still missing drops out of the latitude integral.
func (p *Projection) ProjectionVector(sea *grid.Field) (*grid.ModeSeries, error) {
	if err := sea.Validate(); err != nil {
		return nil, err
	}
	if err := p.checkGrid(sea.Lat); err != nil {
		return nil, err
	}

	filled := sea.InterpolateNaLon(p.Params.FillLimit)
	nt, nlat, nlon := filled.Shape()
	b := grid.NewModeSeries(p.Modes(), filled.Time, filled.Lon)

	integrand := make([]float64, nlat)
	for t := 0; t < nt; t++ {
		for j := 0; j < nlon; j++ {
			col := filled.Column(t, j)
			for m := 0; m < p.Modes(); m++ {
				for i := 0; i < nlat; i++ {
					integrand[i] = col[i] / HeightScale * p.Basis.Rh.At(m, i)
				}
				b.Set(m, t, j, numeric.NanTrapz(integrand, p.dy))
			}
		}
	}
	return b, nil
}

// WaveCoefficients solves A r = b for every (time, lon) column of b
func (p *Projection) WaveCoefficients(b *grid.ModeSeries) (*grid.ModeSeries, error) {
	if b.Modes != p.Modes() {
		return nil, fmt.Errorf("projection vector has %d modes, projection has %d: %w", b.Modes, p.Modes(), ErrInvalidArgument)
	}
	cols := len(b.Time) * len(b.Lon)
	if cols == 0 {
		return nil, fmt.Errorf("empty projection vector: %w", ErrInvalidArgument)
	}
	if len(b.Data) != b.Modes*cols {
		return nil, fmt.Errorf("projection vector holds %d values, shape needs %d: %w", len(b.Data), b.Modes*cols, ErrInvalidArgument)
	}

	bm := mat.NewDense(b.Modes, cols, b.Data)
	var rm mat.Dense
	rm.Mul(p.AInv, bm)

	r := &grid.ModeSeries{
		Modes: b.Modes,
		Time:  b.Time,
		Lon:   b.Lon,
		Data:  rm.RawMatrix().Data,
	}
	return r, nil
}

// DecomposedSeaLevel rebuilds the sea level carried by each mode from the
// wave coefficients.
func (p *Projection) DecomposedSeaLevel(r *grid.ModeSeries) (*grid.ModeField, error) {
	if r.Modes != p.Modes() {
		return nil, fmt.Errorf("coefficients have %d modes, projection has %d: %w", r.Modes, p.Modes(), ErrInvalidArgument)
	}

	h := grid.NewModeField(r.Modes, r.Time, p.Basis.Lat, r.Lon)
	for m := 0; m < r.Modes; m++ {
		for t := range r.Time {
			for i := range p.Basis.Lat {
				rh := p.Basis.Rh.At(m, i) * HeightScale
				for j := range r.Lon {
					h.Set(m, t, i, j, r.At(m, t, j)*rh)
				}
			}
		}
	}
	return h, nil
}

// Decompose runs the projection, the coefficient solve and the
// reconstruction in order.
func (p *Projection) Decompose(sea *grid.Field) (*Decomposition, error) {
	b, err := p.ProjectionVector(sea)
	if err != nil {
		return nil, fmt.Errorf("projection vector: %w", err)
	}
	r, err := p.WaveCoefficients(b)
	if err != nil {
		return nil, fmt.Errorf("wave coefficients: %w", err)
	}
	h, err := p.DecomposedSeaLevel(r)
	if err != nil {
		return nil, fmt.Errorf("decomposed sea level: %w", err)
	}
	return &Decomposition{B: b, R: r, H: h}, nil
}
