package analysis

import (
	"time"

	"github.com/chrissnell/oceanlab/internal/dataset"
)

// WaveletOutput is the file layout of a wavelet result
type WaveletOutput struct {
	Name         string         `json:"name"`
	Dt           float64        `json:"dt"`
	Lag1         float64        `json:"lag1"`
	Variance     float64        `json:"variance"`
	PeakPeriod   float64        `json:"peak_period"`
	Period       dataset.Values `json:"period"`
	Scale        dataset.Values `json:"scale"`
	Global       dataset.Values `json:"global"`
	GlobalSignif dataset.Values `json:"global_signif,omitempty"`
	Signif       dataset.Values `json:"signif"`
	Time         []time.Time    `json:"time"`
	COI          dataset.Values `json:"coi"`
	// Power is indexed [scale][time]
	Power   []dataset.Values `json:"power"`
	Summary Summary          `json:"summary"`
}

// Output flattens the result for writing
func (w *WaveletResult) Output() WaveletOutput {
	spec := w.Spectrum
	out := WaveletOutput{
		Name:         w.Name,
		Dt:           w.Dt,
		Lag1:         spec.Lag1,
		Variance:     spec.Variance,
		PeakPeriod:   w.PeakPeriod,
		Period:       spec.Transform.Period,
		Scale:        spec.Transform.Scale,
		Global:       spec.Global,
		GlobalSignif: spec.GlobalSignif,
		Signif:       spec.Signif,
		Time:         w.PeakPower.Time,
		COI:          spec.Transform.COI,
		Summary:      w.Summary,
	}
	for _, row := range spec.Power {
		out.Power = append(out.Power, row)
	}
	return out
}

// Tables lays the global spectrum and the peak power series out as sheets
func (w *WaveletResult) Tables() []dataset.Table {
	spec := w.Spectrum
	global := dataset.Table{Name: "global", Header: []string{"period", "scale", "global_power", "signif"}}
	for i, p := range spec.Transform.Period {
		row := []any{p, spec.Transform.Scale[i], spec.Global[i], nil}
		if spec.GlobalSignif != nil {
			row[3] = spec.GlobalSignif[i]
		}
		global.Rows = append(global.Rows, row)
	}
	peak := dataset.SeriesTable("peak_power", w.PeakPower)
	peak.Header = append(peak.Header, "coi")
	for i := range peak.Rows {
		peak.Rows[i] = append(peak.Rows[i], spec.Transform.COI[i])
	}
	return []dataset.Table{global, peak}
}

// BM95Output is the file layout of a projection result. Coefficient arrays
// are flattened in (mode, time, lon) order and H in (mode, time, lat, lon).
type BM95Output struct {
	Modes int            `json:"modes"`
	Time  []time.Time    `json:"time"`
	Lat   dataset.Values `json:"lat"`
	Lon   dataset.Values `json:"lon"`
	B     dataset.Values `json:"b"`
	R     dataset.Values `json:"r"`
	H     dataset.Values `json:"h"`
}

// Output flattens the result for writing
func (b *BM95Result) Output() BM95Output {
	dec := b.Decomposition
	return BM95Output{
		Modes: dec.R.Modes,
		Time:  dec.R.Time,
		Lat:   dec.H.Lat,
		Lon:   dec.R.Lon,
		B:     dec.B.Data,
		R:     dec.R.Data,
		H:     dec.H.Data,
	}
}

// Tables gives one sheet of coefficients per mode, longitudes across
func (b *BM95Result) Tables() []dataset.Table {
	r := b.Decomposition.R
	var tables []dataset.Table
	for m := 0; m < r.Modes; m++ {
		table := dataset.Table{Name: modeName(m), Header: []string{"time"}}
		for _, lon := range r.Lon {
			table.Header = append(table.Header, formatLon(lon))
		}
		for t, ts := range r.Time {
			row := []any{ts.Format(time.RFC3339)}
			for j := range r.Lon {
				row = append(row, r.At(m, t, j))
			}
			table.Rows = append(table.Rows, row)
		}
		tables = append(tables, table)
	}
	return tables
}

// PowerOutput is the file layout of a wavenumber-frequency result
type PowerOutput struct {
	Frequency  dataset.Values   `json:"frequency"`
	Wavenumber dataset.Values   `json:"wavenumber"`
	Segments   int              `json:"segments"`
	DOF        float64          `json:"dof"`
	Power      []dataset.Values `json:"power"`
	Smoothed   []dataset.Values `json:"smoothed,omitempty"`
}

// Output flattens the result for writing
func (p *PowerResult) Output() PowerOutput {
	out := PowerOutput{
		Frequency:  p.Frequency,
		Wavenumber: p.Wavenumber,
		Segments:   p.Segments,
		DOF:        p.DOF,
	}
	for _, row := range p.Power {
		out.Power = append(out.Power, row)
	}
	for _, row := range p.Smoothed {
		out.Smoothed = append(out.Smoothed, row)
	}
	return out
}

// Tables gives the raw and smoothed power with frequency down and
// wavenumber across
func (p *PowerResult) Tables() []dataset.Table {
	grid := func(name string, power [][]float64) dataset.Table {
		table := dataset.Table{Name: name, Header: []string{"frequency"}}
		for _, k := range p.Wavenumber {
			table.Header = append(table.Header, formatFloat(k))
		}
		for i, f := range p.Frequency {
			row := []any{f}
			for _, v := range power[i] {
				row = append(row, v)
			}
			table.Rows = append(table.Rows, row)
		}
		return table
	}
	tables := []dataset.Table{grid("power", p.Power)}
	if p.Smoothed != nil {
		tables = append(tables, grid("smoothed", p.Smoothed))
	}
	return tables
}

// DispersionTables lays the dispersion curves out as one sheet per mode
func DispersionTables(curves []DispersionCurve) []dataset.Table {
	var tables []dataset.Table
	for _, c := range curves {
		table := dataset.Table{Name: modeName(c.Mode), Header: []string{"wavenumber", "frequency"}}
		for i := range c.Frequency {
			table.Rows = append(table.Rows, []any{c.Wavenumber[i], c.Frequency[i]})
		}
		tables = append(tables, table)
	}
	return tables
}
