package bm95

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/chrissnell/oceanlab/pkg/grid"
	"github.com/chrissnell/oceanlab/pkg/numeric"
)

func latGrid(lo, hi, step float64) []float64 {
	n := int(math.Round((hi-lo)/step)) + 1
	lats := make([]float64, n)
	floats.Span(lats, lo, hi)
	return lats
}

func TestHermiteFunctionExplicit(t *testing.T) {
	hermite := []func(x float64) float64{
		func(x float64) float64 { return 1 },
		func(x float64) float64 { return 2 * x },
		func(x float64) float64 { return 4*x*x - 2 },
		func(x float64) float64 { return 8*x*x*x - 12*x },
	}
	factorial := []float64{1, 1, 2, 6}

	for n, h := range hermite {
		norm := math.Sqrt(math.Pow(2, float64(n)) * factorial[n] * math.Sqrt(math.Pi))
		for _, x := range []float64{-3, -1.2, 0, 0.5, 2.7} {
			want := h(x) * math.Exp(-x*x/2) / norm
			got := HermiteFunction(n, x)
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("ψ_%d(%v) = %v, expected %v", n, x, got, want)
			}
		}
	}
}

func TestHermiteFunctionsOrthonormal(t *testing.T) {
	x := latGrid(-12, 12, 0.01)
	psi := HermiteFunctions(8, x)
	prod := make([]float64, len(x))
	for m := 0; m <= 8; m++ {
		for n := 0; n <= 8; n++ {
			for i := range x {
				prod[i] = psi[m][i] * psi[n][i]
			}
			got := numeric.Trapz(prod, 0.01)
			want := 0.0
			if m == n {
				want = 1
			}
			if math.Abs(got-want) > 1e-8 {
				t.Errorf("<ψ_%d, ψ_%d> = %v, expected %v", m, n, got, want)
			}
		}
	}
}

func TestHermiteFunctionLargeOrderStaysFinite(t *testing.T) {
	for _, x := range []float64{0, 5, 20} {
		v := HermiteFunction(150, x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("ψ_150(%v) = %v, expected a finite value", x, v)
		}
	}
}

func TestScaleLat(t *testing.T) {
	if got := ScaleLat(0, DefaultPhaseSpeed); got != 0 {
		t.Errorf("ScaleLat(0) = %v, expected 0", got)
	}

	L0, T0 := Scales(0, DefaultPhaseSpeed)
	if math.IsInf(L0, 0) || math.IsNaN(L0) || math.IsNaN(T0) {
		t.Fatalf("scales at the equator must be finite, got L=%v T=%v", L0, T0)
	}
	// Roughly 330 km and 1.5 days for c = 2.5 m/s
	if L0 < 300e3 || L0 > 360e3 {
		t.Errorf("equatorial length scale = %v m, expected ~330 km", L0)
	}

	for _, lat := range []float64{0.25, 5, 30, 60, 89.9} {
		L, _ := Scales(lat, DefaultPhaseSpeed)
		if L < L0 {
			t.Errorf("L(%v) = %v is smaller than the equatorial value %v", lat, L, L0)
		}
		pos, neg := ScaleLat(lat, DefaultPhaseSpeed), ScaleLat(-lat, DefaultPhaseSpeed)
		if math.IsNaN(pos) || math.IsInf(pos, 0) {
			t.Errorf("ScaleLat(%v) = %v, expected finite", lat, pos)
		}
		if math.Abs(pos+neg) > 1e-12 {
			t.Errorf("ScaleLat not antisymmetric at %v: %v vs %v", lat, pos, neg)
		}
	}
}

func TestMeridionalStructures(t *testing.T) {
	lats := latGrid(-10, 10, 0.5)
	basis, err := MeridionalStructures(4, lats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, c := basis.Rh.Dims()
	if r != 4 || c != len(lats) {
		t.Fatalf("Rh dims = %dx%d, expected 4x%d", r, c, len(lats))
	}

	// Kelvin mode is identical in both structures and symmetric about the equator
	for i := range lats {
		if basis.Ru.At(0, i) != basis.Rh.At(0, i) {
			t.Errorf("mode 0 differs at lat %v", lats[i])
		}
	}
	// Rossby mode m has the parity of ψ_{m+1}: odd m are symmetric
	last := len(lats) - 1
	for m := 0; m < 4; m++ {
		parity := 1.0
		if m > 0 && m%2 == 0 {
			parity = -1
		}
		for i := 0; i <= last/2; i++ {
			a, b := basis.Rh.At(m, i), basis.Rh.At(m, last-i)
			if math.Abs(a-parity*b) > 1e-12 {
				t.Errorf("Rh mode %d has wrong parity at lat %v: %v vs %v", m, lats[i], a, b)
			}
		}
	}

	if _, err := MeridionalStructures(0, lats); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero modes, got %v", err)
	}
	if _, err := MeridionalStructures(3, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty grid, got %v", err)
	}
}

func TestProjectionMatrix(t *testing.T) {
	lats := latGrid(-15, 15, 0.25)
	p, err := NewProjection(lats, 6, DefaultProjectionParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(p.A); !ok {
		t.Errorf("projection matrix is not positive definite")
	}

	var prod mat.Dense
	prod.Mul(p.A, p.AInv)
	n := p.Modes()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(prod.At(i, j)-want) > 1e-8 {
				t.Errorf("(A·A⁻¹)[%d][%d] = %v, expected %v", i, j, prod.At(i, j), want)
			}
		}
	}
}

func TestProjectionErrors(t *testing.T) {
	if _, err := NewProjection([]float64{-1, 0, 1}, 5, DefaultProjectionParams()); !errors.Is(err, ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}

	p, err := NewProjection(latGrid(-5, 5, 0.25), 3, DefaultProjectionParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := grid.NewField(make([]time.Time, 1), latGrid(-4, 4, 0.25), []float64{180})
	if _, err := p.ProjectionVector(other); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for mismatched grid, got %v", err)
	}

	short := &grid.ModeSeries{Modes: 3, Time: make([]time.Time, 2), Lon: []float64{180, 181}, Data: make([]float64, 5)}
	if _, err := p.WaveCoefficients(short); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a short projection vector, got %v", err)
	}
}

// modeField builds a sea level field carrying amplitude·R_h of one mode at
// every time and longitude.
func modeField(p *Projection, mode int, amp []float64, lon []float64) *grid.Field {
	times := make([]time.Time, len(amp))
	for k := range times {
		times[k] = time.Date(2000, time.Month(k+1), 15, 0, 0, 0, 0, time.UTC)
	}
	f := grid.NewField(times, p.Basis.Lat, lon)
	for k := range times {
		for i := range p.Basis.Lat {
			for j := range lon {
				f.Set(k, i, j, amp[k]*HeightScale*p.Basis.Rh.At(mode, i))
			}
		}
	}
	return f
}

func TestProjectionRoundTrip(t *testing.T) {
	p, err := NewProjection(latGrid(-15, 15, 0.25), 6, DefaultProjectionParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for k := 0; k < p.Modes(); k++ {
		f := modeField(p, k, []float64{1}, []float64{150})
		d, err := p.Decompose(f)
		if err != nil {
			t.Fatalf("mode %d: unexpected error: %v", k, err)
		}
		for m := 0; m < p.Modes(); m++ {
			want := 0.0
			if m == k {
				want = 1
			}
			if got := d.R.At(m, 0, 0); math.Abs(got-want) > 1e-6 {
				t.Errorf("pure mode %d: coefficient %d = %v, expected %v", k, m, got, want)
			}
		}

		// Reconstruction of the injected mode returns the input field
		for i := range p.Basis.Lat {
			if got, want := d.H.At(k, 0, i, 0), f.At(0, i, 0); math.Abs(got-want) > 1e-6 {
				t.Errorf("mode %d reconstruction at lat %v = %v, expected %v", k, p.Basis.Lat[i], got, want)
			}
		}
	}
}

func TestProjectionRecoversInjectedMode(t *testing.T) {
	p, err := NewProjection(latGrid(-20, 20, 0.25), 8, DefaultProjectionParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const amplitude = 0.05
	amp := make([]float64, 24)
	for k := range amp {
		amp[k] = amplitude * (1 + 0.5*math.Sin(2*math.Pi*float64(k)/12))
	}
	lon := latGrid(140, 160, 1)
	f := modeField(p, 2, amp, lon)

	// Punch short gaps along longitude; they are filled before projecting
	for k := range amp {
		for i := range p.Basis.Lat {
			f.Set(k, i, 3, math.NaN())
			f.Set(k, i, 10, math.NaN())
			f.Set(k, i, 11, math.NaN())
		}
	}

	d, err := p.Decompose(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for k := range amp {
		for j := range lon {
			got := d.R.At(2, k, j)
			if math.Abs(got-amp[k]) > 0.05*amp[k] {
				t.Errorf("t=%d lon=%v: mode 2 coefficient %v, expected %v ± 5%%", k, lon[j], got, amp[k])
			}
			for m := 0; m < p.Modes(); m++ {
				if m == 2 {
					continue
				}
				if v := math.Abs(d.R.At(m, k, j)); v > 0.01*amp[k] {
					t.Errorf("t=%d lon=%v: leakage into mode %d = %v", k, lon[j], m, v)
				}
			}
		}
	}
}

func TestRossbyDispersion(t *testing.T) {
	freq, k := RossbyDispersion(1)
	if len(freq) != 200 || len(k) != 200 {
		t.Fatalf("expected 200 points, got %d and %d", len(freq), len(k))
	}
	// Long Rossby waves propagate westward: negative k has positive ω
	for i := range k {
		if k[i] < 0 && freq[i] <= 0 {
			t.Errorf("k=%v: expected positive frequency, got %v", k[i], freq[i])
		}
	}
	// Higher modes are slower
	f3, _ := RossbyDispersion(3)
	if math.Abs(f3[50]) >= math.Abs(freq[50]) {
		t.Errorf("mode 3 frequency %v should be below mode 1 frequency %v", f3[50], freq[50])
	}
}
