// Command field-simulator writes synthetic datasets for trying out the
// oceanlab pipelines.
package main

import (
	"flag"
	"time"

	"github.com/chrissnell/oceanlab/internal/log"
)

func main() {
	var (
		kind   = flag.String("kind", "sla", "Dataset to generate: sla (daily sea level), sst (monthly SST) or series")
		out    = flag.String("out", "", "Output file (.json or .msgpack; .csv also for series)")
		steps  = flag.Int("steps", 0, "Number of time steps (default 730 days or 480 months)")
		start  = flag.String("start", "1990-01-01", "First time step (YYYY-MM-DD)")
		noise  = flag.Float64("noise", 0.005, "Standard deviation of added white noise")
		seed   = flag.Uint64("seed", 1, "Random seed")
		latMin = flag.Float64("lat-min", -20, "Southern latitude")
		latMax = flag.Float64("lat-max", 20, "Northern latitude")
		dlat   = flag.Float64("dlat", 0.25, "Latitude step")
		lonMin = flag.Float64("lon-min", 120, "Western longitude")
		lonMax = flag.Float64("lon-max", 280, "Eastern longitude")
		dlon   = flag.Float64("dlon", 1, "Longitude step")
		debug  = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		panic(err)
	}
	defer log.Sync()

	if *out == "" {
		log.Fatalf("-out is required")
	}
	t0, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		log.Fatalf("parsing -start: %v", err)
	}

	o := options{
		Steps:  *steps,
		Start:  t0,
		LatMin: *latMin,
		LatMax: *latMax,
		DLat:   *dlat,
		LonMin: *lonMin,
		LonMax: *lonMax,
		DLon:   *dlon,
		Noise:  *noise,
		Seed:   *seed,
	}
	if o.Steps <= 0 {
		o.Steps = 730
		if *kind == "sst" {
			o.Steps = 480
		}
	}

	if err := generate(*kind, o, *out); err != nil {
		log.Fatalf("generating %s: %v", *kind, err)
	}
	log.Infow("wrote synthetic dataset", "kind", *kind, "steps", o.Steps, "path", *out)
}
