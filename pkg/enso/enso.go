// Package enso computes the E (eastern Pacific) and C (central Pacific)
// ENSO indices of Takahashi et al. (2011) from the two leading EOFs of
// tropical Pacific SST anomalies.
package enso

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/chrissnell/oceanlab/pkg/grid"
	"github.com/chrissnell/oceanlab/pkg/numeric"
)

var (
	// ErrEmptyBasePeriod is returned when no samples fall in the base period
	ErrEmptyBasePeriod = errors.New("no samples in base period")
	// ErrNoValidPoints is returned when every grid point has missing values
	ErrNoValidPoints = errors.New("no grid point is complete over the base period")
	// ErrDecomposition is returned when the SVD fails to converge
	ErrDecomposition = errors.New("EOF decomposition failed")
)

// Options configures the E/C index computation
type Options struct {
	// BaseStart and BaseEnd bound the climatology and EOF base period
	BaseStart time.Time
	BaseEnd   time.Time

	// LatMin and LatMax bound the EOF domain
	LatMin float64
	LatMax float64

	// CorrFactor multiplies the two pseudo-PCs to fix their sign convention.
	// The zero value selects [1, -1].
	CorrFactor [2]float64
}

// DefaultOptions returns the 1979-2019 base period over 10°S-10°N
func DefaultOptions() Options {
	return Options{
		BaseStart:  time.Date(1979, time.January, 1, 0, 0, 0, 0, time.UTC),
		BaseEnd:    time.Date(2019, time.December, 30, 0, 0, 0, 0, time.UTC),
		LatMin:     -10,
		LatMax:     10,
		CorrFactor: [2]float64{1, -1},
	}
}

// Climatology holds the base-period mean of each calendar month, indexed
// [month-1][lat*nlon+lon]
type Climatology struct {
	Lat   []float64
	Lon   []float64
	Month [12][]float64
}

// NewClimatology averages sst by calendar month over [start, end],
// ignoring missing values.
func NewClimatology(sst *grid.Field, start, end time.Time) (*Climatology, error) {
	if err := sst.Validate(); err != nil {
		return nil, err
	}
	base := sst.SelectTime(start, end)
	if len(base.Time) == 0 {
		return nil, fmt.Errorf("%s to %s: %w", start.Format(time.DateOnly), end.Format(time.DateOnly), ErrEmptyBasePeriod)
	}

	plane := len(sst.Lat) * len(sst.Lon)
	var sums, counts [12][]float64
	for m := range sums {
		sums[m] = make([]float64, plane)
		counts[m] = make([]float64, plane)
	}
	for t, ts := range base.Time {
		m := int(ts.Month()) - 1
		for p, v := range base.Data[t*plane : (t+1)*plane] {
			if math.IsNaN(v) {
				continue
			}
			sums[m][p] += v
			counts[m][p]++
		}
	}

	clim := &Climatology{
		Lat: append([]float64(nil), sst.Lat...),
		Lon: append([]float64(nil), sst.Lon...),
	}
	for m := range clim.Month {
		clim.Month[m] = make([]float64, plane)
		for p := range clim.Month[m] {
			if counts[m][p] == 0 {
				clim.Month[m][p] = math.NaN()
				continue
			}
			clim.Month[m][p] = sums[m][p] / counts[m][p]
		}
	}
	return clim, nil
}

// Anomaly subtracts the climatology of each sample's calendar month
func (c *Climatology) Anomaly(sst *grid.Field) (*grid.Field, error) {
	if len(sst.Lat) != len(c.Lat) || len(sst.Lon) != len(c.Lon) {
		return nil, fmt.Errorf("field is %dx%d, climatology is %dx%d: %w",
			len(sst.Lat), len(sst.Lon), len(c.Lat), len(c.Lon), grid.ErrShape)
	}
	anom := sst.Clone()
	plane := len(sst.Lat) * len(sst.Lon)
	for t, ts := range anom.Time {
		clim := c.Month[int(ts.Month())-1]
		row := anom.Data[t*plane : (t+1)*plane]
		for p := range row {
			row[p] -= clim[p]
		}
	}
	return anom, nil
}

// EOFModel holds the two leading EOFs of weighted anomalies. Loadings are
// stored only for the grid points in Valid, which index the lat-band plane.
type EOFModel struct {
	Lat         []float64
	Lon         []float64
	Valid       []int
	Weights     []float64
	EOFs        [2][]float64
	Eigenvalues [2]float64

	// VarianceFraction is the share of total variance of each EOF
	VarianceFraction [2]float64
	CorrFactor       [2]float64
}

// FitEOF decomposes the base-period anomalies within the latitude band.
// Anomalies are weighted by sqrt(cos(lat)) and not centered in time. Each
// EOF is signed so that its loadings sum to a positive value.
func FitEOF(anom *grid.Field, opts Options) (*EOFModel, error) {
	band := anom.SelectLat(opts.LatMin, opts.LatMax).SelectTime(opts.BaseStart, opts.BaseEnd)
	nt, nlat, nlon := band.Shape()
	if nt < 2 {
		return nil, fmt.Errorf("%d samples: %w", nt, ErrEmptyBasePeriod)
	}
	plane := nlat * nlon

	var valid []int
	var weights []float64
	for p := 0; p < plane; p++ {
		complete := true
		for t := 0; t < nt; t++ {
			if math.IsNaN(band.Data[t*plane+p]) {
				complete = false
				break
			}
		}
		if complete {
			valid = append(valid, p)
			weights = append(weights, math.Sqrt(math.Cos(band.Lat[p/nlon]*math.Pi/180)))
		}
	}
	if len(valid) < 2 {
		return nil, fmt.Errorf("%d complete points: %w", len(valid), ErrNoValidPoints)
	}

	x := mat.NewDense(nt, len(valid), nil)
	for t := 0; t < nt; t++ {
		for k, p := range valid {
			x.Set(t, k, band.Data[t*plane+p]*weights[k])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, ErrDecomposition
	}
	values := svd.Values(nil)
	if len(values) < 2 {
		return nil, fmt.Errorf("rank %d: %w", len(values), ErrDecomposition)
	}
	var v mat.Dense
	svd.VTo(&v)

	var total float64
	for _, s := range values {
		total += s * s
	}

	model := &EOFModel{
		Lat:        band.Lat,
		Lon:        band.Lon,
		Valid:      valid,
		Weights:    weights,
		CorrFactor: opts.CorrFactor,
	}
	if model.CorrFactor == ([2]float64{}) {
		model.CorrFactor = DefaultOptions().CorrFactor
	}
	for mode := 0; mode < 2; mode++ {
		eof := mat.Col(nil, mode, &v)
		orientEOF(eof)
		model.EOFs[mode] = eof
		model.Eigenvalues[mode] = values[mode] * values[mode] / float64(nt-1)
		if total > 0 {
			model.VarianceFraction[mode] = values[mode] * values[mode] / total
		}
	}
	return model, nil
}

// orientEOF flips eof so that its loadings sum to a positive value, or when
// they cancel, so that its largest loading is positive
func orientEOF(eof []float64) {
	var sum float64
	var peak float64
	for _, v := range eof {
		sum += v
		if math.Abs(v) > math.Abs(peak) {
			peak = v
		}
	}
	if sum < 0 || (sum == 0 && peak < 0) {
		for i := range eof {
			eof[i] = -eof[i]
		}
	}
}

// Project returns the two pseudo-PCs of anom, indexed [mode][time],
// normalized by the square root of each eigenvalue and multiplied by the
// correction factor. Missing samples do not contribute.
func (m *EOFModel) Project(anom *grid.Field) ([2][]float64, error) {
	var pcs [2][]float64
	band := anom.SelectLat(floats.Min(m.Lat), floats.Max(m.Lat))
	nt, nlat, nlon := band.Shape()
	if nlat != len(m.Lat) || nlon != len(m.Lon) {
		return pcs, fmt.Errorf("band is %dx%d, model is %dx%d: %w", nlat, nlon, len(m.Lat), len(m.Lon), grid.ErrShape)
	}
	plane := nlat * nlon

	for mode := range pcs {
		pcs[mode] = make([]float64, nt)
		norm := m.CorrFactor[mode] / math.Sqrt(m.Eigenvalues[mode])
		for t := 0; t < nt; t++ {
			var sum float64
			for k, p := range m.Valid {
				v := band.Data[t*plane+p]
				if math.IsNaN(v) {
					continue
				}
				sum += v * m.Weights[k] * m.EOFs[mode][k]
			}
			pcs[mode][t] = sum * norm
		}
	}
	return pcs, nil
}

// Index holds the E and C indices with the pseudo-PCs they derive from
type Index struct {
	Time        []time.Time
	E           []float64
	C           []float64
	PCs         [2][]float64
	SmoothedPCs [2][]float64
	Eigenvalues [2]float64
}

// Compute derives the E and C indices of sst: monthly anomalies relative
// to the base period, EOFs fitted on the base period and pseudo-PCs of the
// whole record, with E = (PC1 - PC2)/√2 and C = (PC1 + PC2)/√2.
func Compute(sst *grid.Field, opts Options) (*Index, error) {
	clim, err := NewClimatology(sst, opts.BaseStart, opts.BaseEnd)
	if err != nil {
		return nil, fmt.Errorf("climatology: %w", err)
	}
	anom, err := clim.Anomaly(sst)
	if err != nil {
		return nil, fmt.Errorf("anomaly: %w", err)
	}
	model, err := FitEOF(anom, opts)
	if err != nil {
		return nil, fmt.Errorf("EOF: %w", err)
	}
	pcs, err := model.Project(anom)
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}

	idx := &Index{
		Time:        append([]time.Time(nil), sst.Time...),
		E:           make([]float64, len(sst.Time)),
		C:           make([]float64, len(sst.Time)),
		PCs:         pcs,
		Eigenvalues: model.Eigenvalues,
	}
	for mode := range pcs {
		idx.SmoothedPCs[mode] = numeric.Smooth121(pcs[mode], 1)
	}
	for t := range idx.Time {
		idx.E[t] = (pcs[0][t] - pcs[1][t]) / math.Sqrt2
		idx.C[t] = (pcs[0][t] + pcs[1][t]) / math.Sqrt2
	}
	return idx, nil
}
