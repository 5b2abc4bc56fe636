package wavelet

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

func sinusoid(n int, period float64) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	return y
}

func TestParseMother(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Mother
		wantErr  bool
	}{
		{name: "morlet lower", input: "morlet", expected: Morlet},
		{name: "paul upper", input: "PAUL", expected: Paul},
		{name: "dog mixed", input: " Dog ", expected: DOG},
		{name: "unknown", input: "mexican-hat", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMother(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMother) {
					t.Errorf("expected ErrInvalidMother, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m != tt.expected {
				t.Errorf("ParseMother(%q) = %v, expected %v", tt.input, m, tt.expected)
			}
		})
	}

	if _, err := Compute(sinusoid(16, 4), 1, Mother(9), DefaultOptions()); !errors.Is(err, ErrInvalidMother) {
		t.Errorf("expected ErrInvalidMother from Compute, got %v", err)
	}
}

func TestFourierFactors(t *testing.T) {
	tests := []struct {
		mother   Mother
		expected float64
	}{
		{Morlet, 1.0330},
		{Paul, 1.3963},
		{DOG, 3.9738},
	}
	for _, tt := range tests {
		t.Run(tt.mother.String(), func(t *testing.T) {
			got := tt.mother.FourierFactor(0)
			if math.Abs(got-tt.expected) > 1e-4 {
				t.Errorf("FourierFactor = %.4f, expected %.4f", got, tt.expected)
			}
		})
	}
}

func TestWavenumbers(t *testing.T) {
	k := Wavenumbers(5, 1)
	want := []float64{0, 1, 2, -2, -1}
	for i := range want {
		want[i] *= 2 * math.Pi / 5
		if math.Abs(k[i]-want[i]) > 1e-12 {
			t.Errorf("k[%d] = %v, expected %v", i, k[i], want[i])
		}
	}
}

func TestChiSquareInv(t *testing.T) {
	x, err := ChiSquareInv(0.95, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x != 5.9915 {
		t.Errorf("ChiSquareInv(0.95, 2) = %v, expected exactly 5.9915", x)
	}

	tests := []struct {
		p, v float64
	}{
		{0.95, 1},
		{0.90, 2},
		{0.99, 2},
		{0.95, 5.5},
		{0.95, 40},
		{0.999, 1},
	}
	for _, tt := range tests {
		got, err := ChiSquareInv(tt.p, tt.v)
		if err != nil {
			t.Fatalf("ChiSquareInv(%v, %v): unexpected error: %v", tt.p, tt.v, err)
		}
		want := distuv.ChiSquared{K: tt.v}.Quantile(tt.p)
		if math.Abs(got-want) > 1e-3*tt.v+1e-3 {
			t.Errorf("ChiSquareInv(%v, %v) = %v, expected %v", tt.p, tt.v, got, want)
		}
	}

	for _, p := range []float64{0.9999, 1, 0, -0.5} {
		if _, err := ChiSquareInv(p, 2); !errors.Is(err, ErrSignificanceLevel) {
			t.Errorf("ChiSquareInv(%v, 2): expected ErrSignificanceLevel, got %v", p, err)
		}
	}
}

func TestComputeShapes(t *testing.T) {
	y := sinusoid(100, 10)
	for _, pad := range []bool{false, true} {
		tr, err := Compute(y, 1, Morlet, Options{Pad: pad, Dj: 0.25})
		if err != nil {
			t.Fatalf("pad=%v: unexpected error: %v", pad, err)
		}
		// J1 = fix(log2(100/2)/0.25) = 22
		if len(tr.Scale) != 23 || len(tr.Wave) != 23 || len(tr.Period) != 23 {
			t.Errorf("pad=%v: expected 23 scales, got %d", pad, len(tr.Scale))
		}
		for s, row := range tr.Wave {
			if len(row) != len(y) {
				t.Errorf("pad=%v: scale %d has %d samples, expected %d", pad, s, len(row), len(y))
			}
		}
		for s := 1; s < len(tr.Scale); s++ {
			if tr.Scale[s] <= tr.Scale[s-1] {
				t.Errorf("pad=%v: scales not increasing at %d", pad, s)
			}
		}
		if math.Abs(tr.Scale[0]-2) > 1e-12 {
			t.Errorf("pad=%v: s0 = %v, expected 2", pad, tr.Scale[0])
		}
	}

	if _, err := Compute([]float64{1}, 1, Morlet, DefaultOptions()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a single sample, got %v", err)
	}
	if _, err := Compute([]float64{1, math.NaN(), 2}, 1, Morlet, DefaultOptions()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for NaN input, got %v", err)
	}
}

func TestComputeExplicitFrequencies(t *testing.T) {
	freq := []float64{1.0 / 8, 1.0 / 16, 1.0 / 32}
	tr, err := Compute(sinusoid(256, 16), 1, Morlet, Options{Freq: freq})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, f := range freq {
		if math.Abs(tr.Period[i]-1/f) > 1e-9 {
			t.Errorf("period %d = %v, expected %v", i, tr.Period[i], 1/f)
		}
	}
	global := tr.GlobalSpectrum()
	if floats.MaxIdx(global) != 1 {
		t.Errorf("expected peak at the 16-sample period, global spectrum %v", global)
	}
}

func TestSinusoidPeak(t *testing.T) {
	const period = 32.0
	const dj = 0.125
	y := sinusoid(512, period)

	for _, mother := range []Mother{Morlet, Paul, DOG} {
		t.Run(mother.String(), func(t *testing.T) {
			tr, err := Compute(y, 1, mother, Options{Pad: true, Dj: dj})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			peak := floats.MaxIdx(tr.GlobalSpectrum())
			if d := math.Abs(math.Log2(tr.Period[peak] / period)); d > dj {
				t.Errorf("peak period %v is %.3f octaves from %v", tr.Period[peak], d, period)
			}
			wantScale := tr.Period[peak] / mother.FourierFactor(0)
			if math.Abs(tr.Scale[peak]-wantScale) > 1e-9 {
				t.Errorf("peak scale %v, expected period/fourier_factor = %v", tr.Scale[peak], wantScale)
			}
		})
	}
}

func TestConeOfInfluence(t *testing.T) {
	for _, n := range []int{64, 65} {
		tr, err := Compute(sinusoid(n, 8), 2, Morlet, Options{Pad: true})
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		coi := tr.COI
		if len(coi) != n {
			t.Fatalf("n=%d: COI has %d values", n, len(coi))
		}
		mid := n / 2
		for i := 1; i <= mid; i++ {
			if coi[i] < coi[i-1] {
				t.Errorf("n=%d: COI decreases from the left edge at %d", n, i)
			}
		}
		for i := n - 2; i >= mid; i-- {
			if coi[i] < coi[i+1] {
				t.Errorf("n=%d: COI decreases from the right edge at %d", n, i)
			}
		}
		for i := 0; i < n; i++ {
			if math.Abs(coi[i]-coi[n-1-i]) > 1e-12 {
				t.Errorf("n=%d: COI not symmetric at %d", n, i)
			}
		}
		want := Morlet.COIFactor(0) * 2
		if math.Abs(coi[1]-want) > 1e-12 {
			t.Errorf("n=%d: COI[1] = %v, expected %v", n, coi[1], want)
		}
	}
}

func TestSignificancePointwise(t *testing.T) {
	scales := []float64{2, 4, 8, 16}

	signif, err := Significance(1, 1, scales, Morlet, SignifOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range signif {
		if math.Abs(v-5.9915/2) > 1e-12 {
			t.Errorf("white-noise Morlet level at scale %d = %v, expected %v", i, v, 5.9915/2)
		}
	}

	dog, err := Significance(2, 1, scales, DOG, SignifOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2 * distuv.ChiSquared{K: 1}.Quantile(0.95)
	for i, v := range dog {
		if math.Abs(v-want) > 1e-2 {
			t.Errorf("white-noise DOG level at scale %d = %v, expected %v", i, v, want)
		}
	}

	// Red noise raises the level at long periods
	red, err := Significance(1, 1, scales, Morlet, SignifOptions{Lag1: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(red); i++ {
		if red[i] <= red[i-1] {
			t.Errorf("red-noise level should grow with scale: %v", red)
		}
	}
}

func TestSignificanceTimeAveraged(t *testing.T) {
	scales := []float64{2, 4, 8, 16}
	point, err := Significance(1, 1, scales, Morlet, SignifOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	avg, err := Significance(1, 1, scales, Morlet, SignifOptions{Test: TimeAveraged, DOF: []float64{100}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range scales {
		if avg[i] >= point[i] {
			t.Errorf("scale %v: averaged level %v should be below pointwise %v", scales[i], avg[i], point[i])
		}
	}

	if _, err := Significance(1, 1, scales, Morlet, SignifOptions{Test: TimeAveraged, DOF: []float64{1, 2}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for mismatched DOF, got %v", err)
	}
}

func TestSignificanceScaleAveraged(t *testing.T) {
	scales := make([]float64, 20)
	for i := range scales {
		scales[i] = 2 * math.Pow(2, float64(i)*0.25)
	}

	got, err := Significance(1, 1, scales, Morlet, SignifOptions{Test: ScaleAveraged, DOF: []float64{2, 8}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !(got[0] > 0) {
		t.Errorf("expected one positive level, got %v", got)
	}

	tests := []struct {
		name    string
		mother  Mother
		opts    SignifOptions
		wantErr error
	}{
		{
			name:    "non-default parameter",
			mother:  Morlet,
			opts:    SignifOptions{Test: ScaleAveraged, DOF: []float64{2, 8}, Param: 5},
			wantErr: ErrUnsupportedParam,
		},
		{
			name:    "empty band",
			mother:  Paul,
			opts:    SignifOptions{Test: ScaleAveraged, DOF: []float64{1000, 2000}},
			wantErr: ErrEmptyScaleBand,
		},
		{
			name:    "band not given",
			mother:  DOG,
			opts:    SignifOptions{Test: ScaleAveraged, DOF: []float64{2}},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "non-positive lower scale",
			mother:  Morlet,
			opts:    SignifOptions{Test: ScaleAveraged, DOF: []float64{-4, 8}},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "reversed band",
			mother:  Morlet,
			opts:    SignifOptions{Test: ScaleAveraged, DOF: []float64{8, 2}},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "unknown test",
			mother:  Morlet,
			opts:    SignifOptions{Test: SigTest(3)},
			wantErr: ErrInvalidSigTest,
		},
		{
			name:    "level too high",
			mother:  Morlet,
			opts:    SignifOptions{Level: 0.99995},
			wantErr: ErrSignificanceLevel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Significance(1, 1, scales, tt.mother, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if err != nil && tt.wantErr == ErrInvalidArgument && len(tt.opts.DOF) == 2 && !strings.Contains(err.Error(), "0 < S1 < S2") {
				t.Errorf("error should name the band condition: %v", err)
			}
		})
	}
}

func TestLag1(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const alpha = 0.7
	y := make([]float64, 20000)
	for i := 1; i < len(y); i++ {
		y[i] = alpha*y[i-1] + rng.NormFloat64()
	}
	g, a := Lag1(y)
	if math.Abs(g-alpha) > 0.03 {
		t.Errorf("lag-1 = %v, expected %v", g, alpha)
	}
	if math.Abs(a-1) > 0.05 {
		t.Errorf("noise amplitude = %v, expected 1", a)
	}
}

func TestAnalyze(t *testing.T) {
	y := sinusoid(240, 24)
	spec, err := Analyze(y, 1, DefaultAnalyzeOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nscales := len(spec.Transform.Scale)
	if len(spec.Signif) != nscales || len(spec.SigRatio) != nscales || len(spec.GlobalSignif) != nscales {
		t.Fatalf("significance arrays not aligned with %d scales", nscales)
	}
	if d := math.Abs(math.Log2(spec.PeakPeriod() / 24)); d > 1.0/12 {
		t.Errorf("peak period %v, expected ~24", spec.PeakPeriod())
	}

	// Largest period is about a third of the record
	maxPeriod := spec.Transform.Period[nscales-1]
	if maxPeriod < 60 || maxPeriod > 110 {
		t.Errorf("largest period %v outside the expected range", maxPeriod)
	}

	fixed := 0.0
	white, err := Analyze(y, 1, AnalyzeOptions{Mother: Morlet, Lag1: &fixed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if white.Lag1 != 0 {
		t.Errorf("Lag1 override ignored: %v", white.Lag1)
	}
}

func TestScaleAverage(t *testing.T) {
	tr, err := Compute(sinusoid(256, 16), 1, Morlet, Options{Pad: true, Dj: 0.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	avg, err := tr.ScaleAverage(8, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(avg) != 256 {
		t.Fatalf("expected 256 samples, got %d", len(avg))
	}
	for i, v := range avg {
		if v < 0 {
			t.Errorf("negative scale-averaged power at %d: %v", i, v)
		}
	}
	if _, err := tr.ScaleAverage(1000, 2000); !errors.Is(err, ErrEmptyScaleBand) {
		t.Errorf("expected ErrEmptyScaleBand, got %v", err)
	}
}
