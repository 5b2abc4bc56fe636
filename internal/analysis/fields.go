package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/oceanlab/internal/dataset"
	"github.com/chrissnell/oceanlab/pkg/bm95"
	"github.com/chrissnell/oceanlab/pkg/enso"
	"github.com/chrissnell/oceanlab/pkg/grid"
	"github.com/chrissnell/oceanlab/pkg/spectrum"
)

func (r *Runner) selectBand(f *grid.Field, lo, hi float64) (*grid.Field, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	band := f.SelectLat(lo, hi)
	if len(band.Lat) == 0 {
		return nil, fmt.Errorf("no latitudes in [%v, %v]: %w", lo, hi, ErrEmptySelection)
	}
	r.logger.Debugf("selected %d of %d latitudes in [%v, %v]", len(band.Lat), len(f.Lat), lo, hi)
	return band, nil
}

// BM95Result is the outcome of the equatorial wave projection
type BM95Result struct {
	RunID         uuid.UUID
	Projection    *bm95.Projection
	Decomposition *bm95.Decomposition
	// Kelvin is the Kelvin wave coefficient averaged over longitude
	Kelvin *dataset.Series
}

// BM95 projects the sea level anomaly onto the configured number of
// equatorial wave modes over the configured latitude band
func (r *Runner) BM95(ctx context.Context, sea *grid.Field) (*BM95Result, error) {
	bc := r.cfg.BM95
	band, err := r.selectBand(sea, bc.LatMin, bc.LatMax)
	if err != nil {
		return nil, err
	}

	params := bm95.ProjectionParams{GridSpacing: bc.GridSpacing, FillLimit: bc.FillLimit}
	proj, err := bm95.NewProjection(band.Lat, bc.Modes, params)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("projecting %d times x %d longitudes onto %d modes", len(band.Time), len(band.Lon), proj.Modes())

	dec, err := proj.Decompose(band)
	if err != nil {
		return nil, err
	}

	res := &BM95Result{
		Projection:    proj,
		Decomposition: dec,
		Kelvin:        lonMean("kelvin_coefficient", dec.R, 0),
	}
	runParams := map[string]any{"lats": len(band.Lat), "lons": len(band.Lon), "bm95": bc}
	if res.RunID, err = r.record(ctx, KindBM95, runParams, res.Kelvin); err != nil {
		return nil, err
	}
	return res, nil
}

// lonMean averages one mode of a (mode, time, lon) series over longitude
func lonMean(name string, m *grid.ModeSeries, mode int) *dataset.Series {
	s := &dataset.Series{
		Name:   name,
		Time:   append([]time.Time(nil), m.Time...),
		Values: make([]float64, len(m.Time)),
	}
	for t := range m.Time {
		var sum float64
		var n int
		for j := range m.Lon {
			if v := m.At(mode, t, j); !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		s.Values[t] = math.NaN()
		if n > 0 {
			s.Values[t] = sum / float64(n)
		}
	}
	return s
}

// BandMean averages f over latitude, giving rows indexed [time][lon].
// Points with no finite sample in the band are NaN.
func BandMean(f *grid.Field) [][]float64 {
	nt, nlat, nlon := f.Shape()
	out := make([][]float64, nt)
	for t := 0; t < nt; t++ {
		out[t] = make([]float64, nlon)
		for j := 0; j < nlon; j++ {
			var sum float64
			var n int
			for i := 0; i < nlat; i++ {
				if v := f.At(t, i, j); !math.IsNaN(v) {
					sum += v
					n++
				}
			}
			out[t][j] = math.NaN()
			if n > 0 {
				out[t][j] = sum / float64(n)
			}
		}
	}
	return out
}

// SpectrumOptions maps the spectrum section of the configuration
func (r *Runner) SpectrumOptions() (spectrum.Options, *spectrum.Smoothing) {
	sc := r.cfg.Spectrum
	opts := spectrum.Options{
		Dx:            sc.Dx,
		Dt:            sc.Dt,
		NumX:          sc.NumX,
		SegmentLength: sc.SegmentLength,
		Overlap:       sc.Overlap,
		NFFT:          sc.NFFT,
	}
	if !sc.Smooth {
		return opts, nil
	}
	return opts, &spectrum.Smoothing{NT: sc.SmoothNT, NX: sc.SmoothNX}
}

// PowerResult is the outcome of the wavenumber-frequency pipeline
type PowerResult struct {
	RunID uuid.UUID
	*spectrum.Result
}

// Power estimates the wavenumber-frequency spectrum of the latitude-band
// mean of f
func (r *Runner) Power(ctx context.Context, f *grid.Field) (*PowerResult, error) {
	sc := r.cfg.Spectrum
	band, err := r.selectBand(f, sc.LatMin, sc.LatMax)
	if err != nil {
		return nil, err
	}
	data := BandMean(band)
	var missing int
	for _, row := range data {
		for _, v := range row {
			if math.IsNaN(v) {
				missing++
			}
		}
	}
	if missing > 0 {
		return nil, fmt.Errorf("%d time/longitude points have no data in the band: %w", missing, ErrMissingData)
	}

	opts, smoothing := r.SpectrumOptions()
	r.logger.Infof("wavenumber-frequency spectrum of %d times x %d longitudes, segments of %d", len(data), len(band.Lon), opts.SegmentLength)
	result, err := spectrum.Compute(data, opts, smoothing)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("averaged %d segments, %.1f degrees of freedom", result.Segments, result.DOF)

	res := &PowerResult{Result: result}
	params := map[string]any{"segments": result.Segments, "dof": result.DOF, "spectrum": sc}
	if res.RunID, err = r.record(ctx, KindPower, params); err != nil {
		return nil, err
	}
	return res, nil
}

// ENSOOptions maps the enso section of the configuration
func (r *Runner) ENSOOptions() (enso.Options, error) {
	ec := r.cfg.ENSO
	start, end, err := ec.Period()
	if err != nil {
		return enso.Options{}, err
	}
	return enso.Options{
		BaseStart:  start,
		BaseEnd:    end,
		LatMin:     ec.LatMin,
		LatMax:     ec.LatMax,
		CorrFactor: ec.CorrFactor,
	}, nil
}

// ECIndexResult is the outcome of the E/C index pipeline
type ECIndexResult struct {
	RunID uuid.UUID
	Index *enso.Index
	// Series holds E, C and the smoothed pseudo-PCs
	Series []*dataset.Series
}

// ECIndex derives the E and C indices from a monthly SST field
func (r *Runner) ECIndex(ctx context.Context, sst *grid.Field) (*ECIndexResult, error) {
	if err := sst.Validate(); err != nil {
		return nil, err
	}
	opts, err := r.ENSOOptions()
	if err != nil {
		return nil, err
	}
	r.logger.Infof("E/C index over %d months, base period %s to %s",
		len(sst.Time), opts.BaseStart.Format(time.DateOnly), opts.BaseEnd.Format(time.DateOnly))

	idx, err := enso.Compute(sst, opts)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("EOF eigenvalues %.4g, %.4g", idx.Eigenvalues[0], idx.Eigenvalues[1])

	series := func(name string, v []float64) *dataset.Series {
		return &dataset.Series{Name: name, Time: idx.Time, Values: v}
	}
	res := &ECIndexResult{
		Index: idx,
		Series: []*dataset.Series{
			series("E", idx.E),
			series("C", idx.C),
			series("PC1_smoothed", idx.SmoothedPCs[0]),
			series("PC2_smoothed", idx.SmoothedPCs[1]),
		},
	}
	params := map[string]any{"months": len(sst.Time), "eigenvalues": idx.Eigenvalues, "enso": r.cfg.ENSO}
	if res.RunID, err = r.record(ctx, KindECIndex, params, res.Series...); err != nil {
		return nil, err
	}
	return res, nil
}

// DispersionCurve is the Rossby dispersion relation of one meridional mode
type DispersionCurve struct {
	Mode       int       `json:"mode"`
	Frequency  []float64 `json:"frequency"`
	Wavenumber []float64 `json:"wavenumber"`
}

// DispersionCurves returns the Rossby curves of modes 1..modes
func DispersionCurves(modes int) []DispersionCurve {
	curves := make([]DispersionCurve, 0, modes)
	for m := 1; m <= modes; m++ {
		freq, k := bm95.RossbyDispersion(m)
		curves = append(curves, DispersionCurve{Mode: m, Frequency: freq, Wavenumber: k})
	}
	return curves
}
