package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/oceanlab/internal/dataset"
	"github.com/chrissnell/oceanlab/pkg/bm95"
	"github.com/chrissnell/oceanlab/pkg/grid"
)

// options describes the synthetic dataset to generate
type options struct {
	Steps  int
	Start  time.Time
	LatMin float64
	LatMax float64
	DLat   float64
	LonMin float64
	LonMax float64
	DLon   float64
	Noise  float64
	Seed   uint64
}

func axis(lo, hi, step float64) []float64 {
	n := int(math.Round((hi-lo)/step)) + 1
	if n < 1 {
		return nil
	}
	x := make([]float64, n)
	if n == 1 {
		x[0] = lo
		return x
	}
	floats.Span(x, lo, lo+float64(n-1)*step)
	return x
}

func (o options) rng() *rand.Rand {
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15))
}

// simulateSLA builds daily sea level anomalies in meters carrying an
// eastward Kelvin wave and a westward first-mode Rossby wave
func simulateSLA(o options) (*grid.Field, error) {
	lats := axis(o.LatMin, o.LatMax, o.DLat)
	lons := axis(o.LonMin, o.LonMax, o.DLon)
	basis, err := bm95.MeridionalStructures(2, lats)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, o.Steps)
	for t := range times {
		times[t] = o.Start.AddDate(0, 0, t)
	}
	f := grid.NewField(times, lats, lons)
	r := o.rng()

	const (
		kelvinAmp, kelvinPeriod, kelvinWavelength = 0.05, 60.0, 120.0
		rossbyAmp, rossbyPeriod, rossbyWavelength = 0.03, 180.0, 60.0
	)
	for t := range times {
		for j, lon := range lons {
			kelvin := kelvinAmp * math.Cos(2*math.Pi*(lon/kelvinWavelength-float64(t)/kelvinPeriod))
			rossby := rossbyAmp * math.Cos(2*math.Pi*(lon/rossbyWavelength+float64(t)/rossbyPeriod))
			for i := range lats {
				v := kelvin*basis.Rh.At(0, i) + rossby*basis.Rh.At(1, i) + o.Noise*r.NormFloat64()
				f.Set(t, i, j, v)
			}
		}
	}
	return f, nil
}

// simulateSST builds monthly SST in °C with a seasonal cycle and
// interannual eastern and central Pacific warm events
func simulateSST(o options) *grid.Field {
	lats := axis(o.LatMin, o.LatMax, o.DLat)
	lons := axis(o.LonMin, o.LonMax, o.DLon)
	times := make([]time.Time, o.Steps)
	for t := range times {
		times[t] = time.Date(o.Start.Year(), o.Start.Month(), 15, 0, 0, 0, 0, time.UTC).AddDate(0, t, 0)
	}
	f := grid.NewField(times, lats, lons)
	r := o.rng()

	var e, c float64
	for t := range times {
		// AR(1) amplitudes with multi-year memory
		e = 0.9*e + 0.45*r.NormFloat64()
		c = 0.85*c + 0.3*r.NormFloat64()
		season := math.Cos(2 * math.Pi * float64(t%12) / 12)
		for i, lat := range lats {
			meridional := math.Exp(-lat * lat / 50)
			for j, lon := range lons {
				eastern := math.Exp(-math.Pow((lon-265)/25, 2))
				central := math.Exp(-math.Pow((lon-190)/30, 2))
				base := 28 - 4*(lon-o.LonMin)/(o.LonMax-o.LonMin+1) + 1.2*season*eastern
				v := base + meridional*(e*eastern+c*central) + o.Noise*r.NormFloat64()
				f.Set(t, i, j, v)
			}
		}
	}
	return f
}

// simulateSeries builds a daily series of two sinusoids with noise
func simulateSeries(o options, periods ...float64) *dataset.Series {
	s := &dataset.Series{Name: "synthetic"}
	r := o.rng()
	for t := 0; t < o.Steps; t++ {
		v := o.Noise * r.NormFloat64()
		for k, p := range periods {
			v += math.Sin(2*math.Pi*float64(t)/p) / float64(k+1)
		}
		s.Time = append(s.Time, o.Start.AddDate(0, 0, t))
		s.Values = append(s.Values, v)
	}
	return s
}

func generate(kind string, o options, path string) error {
	switch kind {
	case "sla":
		f, err := simulateSLA(o)
		if err != nil {
			return err
		}
		return dataset.WriteField(path, f)
	case "sst":
		return dataset.WriteField(path, simulateSST(o))
	case "series":
		return dataset.WriteSeries(path, simulateSeries(o, 32, 7))
	}
	return fmt.Errorf("unknown kind %q: want sla, sst or series", kind)
}
