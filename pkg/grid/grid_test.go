package grid

import (
	"errors"
	"math"
	"testing"
	"time"
)

func rowField(values []float64) *Field {
	lon := make([]float64, len(values))
	for j := range lon {
		lon[j] = 100 + float64(j)
	}
	f := NewField([]time.Time{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}, []float64{0}, lon)
	copy(f.Data, values)
	return f
}

func TestInterpolateNaLon(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name     string
		values   []float64
		limit    int
		expected []float64
	}{
		{
			name:     "single gap",
			values:   []float64{0, nan, 2},
			limit:    2,
			expected: []float64{0, 1, 2},
		},
		{
			name:     "gap of two filled",
			values:   []float64{0, nan, nan, 3},
			limit:    2,
			expected: []float64{0, 1, 2, 3},
		},
		{
			name:     "long gap only partly filled",
			values:   []float64{0, nan, nan, nan, 4},
			limit:    2,
			expected: []float64{0, 1, 2, nan, 4},
		},
		{
			name:     "edges are not extrapolated",
			values:   []float64{nan, 1, nan, 3, nan},
			limit:    2,
			expected: []float64{nan, 1, 2, 3, nan},
		},
		{
			name:     "no limit",
			values:   []float64{0, nan, nan, nan, 4},
			limit:    0,
			expected: []float64{0, 1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := rowField(tt.values)
			out := in.InterpolateNaLon(tt.limit)
			for j, want := range tt.expected {
				got := out.At(0, 0, j)
				if math.IsNaN(want) {
					if !math.IsNaN(got) {
						t.Errorf("lon %d: expected NaN, got %v", j, got)
					}
					continue
				}
				if math.Abs(got-want) > 1e-12 {
					t.Errorf("lon %d: expected %v, got %v", j, want, got)
				}
			}
			if !math.IsNaN(tt.values[0]) && in.At(0, 0, 0) != tt.values[0] {
				t.Errorf("input field was modified")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	f := NewField(make([]time.Time, 2), []float64{-1, 0, 1}, []float64{10, 20})
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.Data = f.Data[:3]
	if err := f.Validate(); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}

	g := NewField(make([]time.Time, 1), []float64{0, 0}, []float64{10})
	if err := g.Validate(); !errors.Is(err, ErrCoordinates) {
		t.Errorf("expected ErrCoordinates, got %v", err)
	}
}

func TestSelectLat(t *testing.T) {
	f := NewField(make([]time.Time, 1), []float64{-2, -1, 0, 1, 2}, []float64{0})
	for i := range f.Lat {
		f.Set(0, i, 0, f.Lat[i]*10)
	}
	sub := f.SelectLat(-1, 1)
	if len(sub.Lat) != 3 {
		t.Fatalf("expected 3 latitudes, got %d", len(sub.Lat))
	}
	for i, lat := range sub.Lat {
		if sub.At(0, i, 0) != lat*10 {
			t.Errorf("lat %v: expected %v, got %v", lat, lat*10, sub.At(0, i, 0))
		}
	}
}

func TestModeFieldSum(t *testing.T) {
	m := NewModeField(2, make([]time.Time, 1), []float64{0}, []float64{0, 1})
	m.Set(0, 0, 0, 0, 1)
	m.Set(1, 0, 0, 0, 2)
	m.Set(1, 0, 0, 1, 5)
	sum := m.Sum()
	if sum.At(0, 0, 0) != 3 || sum.At(0, 0, 1) != 5 {
		t.Errorf("Sum = %v, expected [3 5]", sum.Data)
	}
}
