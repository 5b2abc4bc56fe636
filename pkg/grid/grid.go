// Package grid defines the labeled array types passed between the analysis
// packages. Every mode-indexed array uses the axis order mode, time, lat, lon.
package grid

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrShape is returned when an array's data does not match its axes
	ErrShape = errors.New("data length does not match axes")
	// ErrCoordinates is returned for non-monotonic or mismatched coordinates
	ErrCoordinates = errors.New("invalid coordinates")
)

// Field is a (time, lat, lon) array stored row-major. Missing samples are NaN.
type Field struct {
	Time []time.Time
	Lat  []float64
	Lon  []float64
	Data []float64
}

// NewField allocates a NaN-filled field over the given axes
func NewField(times []time.Time, lat, lon []float64) *Field {
	data := make([]float64, len(times)*len(lat)*len(lon))
	for i := range data {
		data[i] = math.NaN()
	}
	return &Field{Time: times, Lat: lat, Lon: lon, Data: data}
}

// Shape returns the length of each axis
func (f *Field) Shape() (nt, nlat, nlon int) {
	return len(f.Time), len(f.Lat), len(f.Lon)
}

// Index returns the flat offset of (t, i, j)
func (f *Field) Index(t, i, j int) int {
	return (t*len(f.Lat)+i)*len(f.Lon) + j
}

func (f *Field) At(t, i, j int) float64 {
	return f.Data[f.Index(t, i, j)]
}

func (f *Field) Set(t, i, j int, v float64) {
	f.Data[f.Index(t, i, j)] = v
}

// Validate checks the data length and that latitudes are strictly monotonic
// and longitudes strictly increasing.
func (f *Field) Validate() error {
	nt, nlat, nlon := f.Shape()
	if len(f.Data) != nt*nlat*nlon {
		return fmt.Errorf("field has %d values for shape (%d, %d, %d): %w", len(f.Data), nt, nlat, nlon, ErrShape)
	}
	if !strictlyMonotonic(f.Lat) {
		return fmt.Errorf("latitudes must be strictly monotonic: %w", ErrCoordinates)
	}
	for j := 1; j < nlon; j++ {
		if f.Lon[j] <= f.Lon[j-1] {
			return fmt.Errorf("longitudes must be strictly increasing: %w", ErrCoordinates)
		}
	}
	return nil
}

// Clone returns a deep copy
func (f *Field) Clone() *Field {
	c := &Field{
		Time: append([]time.Time(nil), f.Time...),
		Lat:  append([]float64(nil), f.Lat...),
		Lon:  append([]float64(nil), f.Lon...),
		Data: append([]float64(nil), f.Data...),
	}
	return c
}

// Column returns the latitude profile at (t, j)
func (f *Field) Column(t, j int) []float64 {
	col := make([]float64, len(f.Lat))
	for i := range col {
		col[i] = f.At(t, i, j)
	}
	return col
}

// SelectLat returns the sub-field with lo <= lat <= hi
func (f *Field) SelectLat(lo, hi float64) *Field {
	var keep []int
	for i, lat := range f.Lat {
		if lat >= lo && lat <= hi {
			keep = append(keep, i)
		}
	}
	lats := make([]float64, len(keep))
	for k, i := range keep {
		lats[k] = f.Lat[i]
	}
	out := NewField(append([]time.Time(nil), f.Time...), lats, append([]float64(nil), f.Lon...))
	for t := range f.Time {
		for k, i := range keep {
			for j := range f.Lon {
				out.Set(t, k, j, f.At(t, i, j))
			}
		}
	}
	return out
}

// SelectTime returns the sub-field with start <= time <= end
func (f *Field) SelectTime(start, end time.Time) *Field {
	var keep []int
	for t, ts := range f.Time {
		if !ts.Before(start) && !ts.After(end) {
			keep = append(keep, t)
		}
	}
	times := make([]time.Time, len(keep))
	for k, t := range keep {
		times[k] = f.Time[t]
	}
	out := NewField(times, append([]float64(nil), f.Lat...), append([]float64(nil), f.Lon...))
	plane := len(f.Lat) * len(f.Lon)
	for k, t := range keep {
		copy(out.Data[k*plane:(k+1)*plane], f.Data[t*plane:(t+1)*plane])
	}
	return out
}

// InterpolateNaLon fills interior gaps along longitude by linear
// interpolation in longitude. Within each gap only the first limit missing
// samples are filled; gaps touching either edge are left untouched. A
// non-positive limit fills every interior gap.
func (f *Field) InterpolateNaLon(limit int) *Field {
	out := f.Clone()
	nt, nlat, nlon := f.Shape()
	row := make([]float64, nlon)
	for t := 0; t < nt; t++ {
		for i := 0; i < nlat; i++ {
			start := out.Index(t, i, 0)
			copy(row, out.Data[start:start+nlon])
			fillRow(row, f.Lon, limit)
			copy(out.Data[start:start+nlon], row)
		}
	}
	return out
}

func fillRow(row, lon []float64, limit int) {
	var xs, ys []float64
	for j, v := range row {
		if !math.IsNaN(v) {
			xs = append(xs, lon[j])
			ys = append(ys, v)
		}
	}
	if len(xs) < 2 || len(xs) == len(row) {
		return
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return
	}

	run := 0
	seenValid := false
	for j, v := range row {
		if !math.IsNaN(v) {
			run = 0
			seenValid = true
			continue
		}
		run++
		if !seenValid || (limit > 0 && run > limit) || !validAfter(row, j) {
			continue
		}
		row[j] = pl.Predict(lon[j])
	}
}

func validAfter(row []float64, j int) bool {
	for k := j + 1; k < len(row); k++ {
		if !math.IsNaN(row[k]) {
			return true
		}
	}
	return false
}

func strictlyMonotonic(x []float64) bool {
	if len(x) < 2 {
		return true
	}
	increasing := x[1] > x[0]
	for i := 1; i < len(x); i++ {
		if increasing && x[i] <= x[i-1] {
			return false
		}
		if !increasing && x[i] >= x[i-1] {
			return false
		}
	}
	return true
}

// ModeSeries is a (mode, time, lon) array stored row-major
type ModeSeries struct {
	Modes int
	Time  []time.Time
	Lon   []float64
	Data  []float64
}

// NewModeSeries allocates a zeroed mode series
func NewModeSeries(modes int, times []time.Time, lon []float64) *ModeSeries {
	return &ModeSeries{
		Modes: modes,
		Time:  times,
		Lon:   lon,
		Data:  make([]float64, modes*len(times)*len(lon)),
	}
}

func (m *ModeSeries) Index(mode, t, j int) int {
	return (mode*len(m.Time)+t)*len(m.Lon) + j
}

func (m *ModeSeries) At(mode, t, j int) float64 {
	return m.Data[m.Index(mode, t, j)]
}

func (m *ModeSeries) Set(mode, t, j int, v float64) {
	m.Data[m.Index(mode, t, j)] = v
}

// Mode returns the (time, lon) plane of one mode as a view into Data
func (m *ModeSeries) Mode(mode int) []float64 {
	plane := len(m.Time) * len(m.Lon)
	return m.Data[mode*plane : (mode+1)*plane]
}

// ModeField is a (mode, time, lat, lon) array stored row-major
type ModeField struct {
	Modes int
	Time  []time.Time
	Lat   []float64
	Lon   []float64
	Data  []float64
}

// NewModeField allocates a zeroed mode field
func NewModeField(modes int, times []time.Time, lat, lon []float64) *ModeField {
	return &ModeField{
		Modes: modes,
		Time:  times,
		Lat:   lat,
		Lon:   lon,
		Data:  make([]float64, modes*len(times)*len(lat)*len(lon)),
	}
}

func (m *ModeField) Index(mode, t, i, j int) int {
	return ((mode*len(m.Time)+t)*len(m.Lat)+i)*len(m.Lon) + j
}

func (m *ModeField) At(mode, t, i, j int) float64 {
	return m.Data[m.Index(mode, t, i, j)]
}

func (m *ModeField) Set(mode, t, i, j int, v float64) {
	m.Data[m.Index(mode, t, i, j)] = v
}

// Sum collapses the mode axis into a (time, lat, lon) field
func (m *ModeField) Sum() *Field {
	out := &Field{
		Time: m.Time,
		Lat:  m.Lat,
		Lon:  m.Lon,
		Data: make([]float64, len(m.Time)*len(m.Lat)*len(m.Lon)),
	}
	plane := len(out.Data)
	for mode := 0; mode < m.Modes; mode++ {
		for k, v := range m.Data[mode*plane : (mode+1)*plane] {
			out.Data[k] += v
		}
	}
	return out
}
