package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete analysis configuration. Every section
// starts from DefaultConfig; files only override what they set.
type ConfigData struct {
	Debug    bool         `yaml:"debug" json:"debug"`
	Store    StoreData    `yaml:"store" json:"store"`
	Output   OutputData   `yaml:"output" json:"output"`
	Wavelet  WaveletData  `yaml:"wavelet" json:"wavelet"`
	Filter   FilterData   `yaml:"filter" json:"filter"`
	BM95     BM95Data     `yaml:"bm95" json:"bm95"`
	Spectrum SpectrumData `yaml:"spectrum" json:"spectrum"`
	ENSO     ENSOData     `yaml:"enso" json:"enso"`
	Argo     ArgoData     `yaml:"argo" json:"argo"`
}

// StoreData locates the SQLite result catalog. An empty path disables it.
type StoreData struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// OutputData controls where results are written
type OutputData struct {
	Dir    string `yaml:"dir" json:"dir"`
	Format string `yaml:"format" json:"format"`
}

// WaveletData holds the wavelet transform and significance settings
type WaveletData struct {
	Mother    string   `yaml:"mother" json:"mother"`
	Param     float64  `yaml:"param,omitempty" json:"param,omitempty"`
	Pad       bool     `yaml:"pad" json:"pad"`
	Dj        float64  `yaml:"dj" json:"dj"`
	S0        float64  `yaml:"s0,omitempty" json:"s0,omitempty"`
	NumScales int      `yaml:"num-scales,omitempty" json:"num_scales,omitempty"`
	Level     float64  `yaml:"level" json:"level"`
	Lag1      *float64 `yaml:"lag1,omitempty" json:"lag1,omitempty"`
}

// FilterData holds the Lanczos filter settings. Cutoff is in cycles per
// unit of Dt.
type FilterData struct {
	Cutoff float64 `yaml:"cutoff" json:"cutoff"`
	Dt     float64 `yaml:"dt" json:"dt"`
	Terms  int     `yaml:"terms" json:"terms"`
	Kind   string  `yaml:"kind" json:"kind"`
}

// BM95Data holds the equatorial wave projection settings
type BM95Data struct {
	Modes       int     `yaml:"modes" json:"modes"`
	GridSpacing float64 `yaml:"grid-spacing" json:"grid_spacing"`
	FillLimit   int     `yaml:"fill-limit" json:"fill_limit"`
	LatMin      float64 `yaml:"lat-min" json:"lat_min"`
	LatMax      float64 `yaml:"lat-max" json:"lat_max"`
}

// SpectrumData holds the wavenumber-frequency spectrum settings
type SpectrumData struct {
	Dx            float64 `yaml:"dx" json:"dx"`
	Dt            float64 `yaml:"dt" json:"dt"`
	NumX          int     `yaml:"num-x,omitempty" json:"num_x,omitempty"`
	SegmentLength int     `yaml:"segment-length" json:"segment_length"`
	Overlap       int     `yaml:"overlap" json:"overlap"`
	NFFT          int     `yaml:"nfft,omitempty" json:"nfft,omitempty"`
	Smooth        bool    `yaml:"smooth" json:"smooth"`
	SmoothNT      int     `yaml:"smooth-nt" json:"smooth_nt"`
	SmoothNX      int     `yaml:"smooth-nx" json:"smooth_nx"`
	LatMin        float64 `yaml:"lat-min" json:"lat_min"`
	LatMax        float64 `yaml:"lat-max" json:"lat_max"`
}

// ENSOData holds the E/C index settings. Dates are YYYY-MM-DD.
type ENSOData struct {
	BaseStart  string     `yaml:"base-start" json:"base_start"`
	BaseEnd    string     `yaml:"base-end" json:"base_end"`
	LatMin     float64    `yaml:"lat-min" json:"lat_min"`
	LatMax     float64    `yaml:"lat-max" json:"lat_max"`
	CorrFactor [2]float64 `yaml:"corr-factor" json:"corr_factor"`
}

// ArgoData holds the GDAC mirror settings. Region vertices are [lon, lat].
type ArgoData struct {
	LocalRoot string       `yaml:"local-root" json:"local_root"`
	Script    string       `yaml:"script" json:"script"`
	Region    [][2]float64 `yaml:"region,omitempty" json:"region,omitempty"`
	Since     string       `yaml:"since,omitempty" json:"since,omitempty"`
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() *ConfigData {
	return &ConfigData{
		Output: OutputData{
			Dir:    ".",
			Format: "json",
		},
		Wavelet: WaveletData{
			Mother: "morlet",
			Pad:    true,
			Dj:     1.0 / 12,
			Level:  0.95,
		},
		Filter: FilterData{
			Dt:    1,
			Terms: 100,
			Kind:  "low",
		},
		BM95: BM95Data{
			Modes:       5,
			GridSpacing: 0.25,
			FillLimit:   2,
			LatMin:      -15,
			LatMax:      15,
		},
		Spectrum: SpectrumData{
			Dx:            1,
			Dt:            1,
			SegmentLength: 96,
			Overlap:       -1,
			Smooth:        true,
			SmoothNT:      20,
			SmoothNX:      40,
			LatMin:        -5,
			LatMax:        5,
		},
		ENSO: ENSOData{
			BaseStart:  "1979-01-01",
			BaseEnd:    "2019-12-30",
			LatMin:     -10,
			LatMax:     10,
			CorrFactor: [2]float64{1, -1},
		},
		Argo: ArgoData{
			LocalRoot: "/data/datos/ARGO/gdac",
			Script:    "launch_shell.sh",
		},
	}
}

// Period parses the E/C base period
func (e ENSOData) Period() (start, end time.Time, err error) {
	start, err = time.Parse(time.DateOnly, e.BaseStart)
	if err != nil {
		return start, end, fmt.Errorf("enso base-start %q: %w", e.BaseStart, ErrInvalidConfig)
	}
	end, err = time.Parse(time.DateOnly, e.BaseEnd)
	if err != nil {
		return start, end, fmt.Errorf("enso base-end %q: %w", e.BaseEnd, ErrInvalidConfig)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("enso base period ends before it starts: %w", ErrInvalidConfig)
	}
	return start, end, nil
}

// Validate checks ranges that would otherwise fail deep inside a pipeline
func (c *ConfigData) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	switch strings.ToLower(c.Output.Format) {
	case "json", "msgpack", "xlsx":
	default:
		problems = append(problems, fmt.Sprintf("output format %q is not json, msgpack or xlsx", c.Output.Format))
	}

	check(c.Wavelet.Dj > 0, "wavelet dj must be positive, got %v", c.Wavelet.Dj)
	check(c.Wavelet.Level > 0 && c.Wavelet.Level < 0.9999, "wavelet level must be in (0, 0.9999), got %v", c.Wavelet.Level)
	check(c.Wavelet.Lag1 == nil || (*c.Wavelet.Lag1 > -1 && *c.Wavelet.Lag1 < 1), "wavelet lag1 must be in (-1, 1)")

	check(c.Filter.Dt > 0, "filter dt must be positive, got %v", c.Filter.Dt)
	check(c.Filter.Terms > 0, "filter terms must be positive, got %d", c.Filter.Terms)
	check(c.Filter.Cutoff >= 0 && c.Filter.Cutoff <= 1/(2*c.Filter.Dt), "filter cutoff %v outside the Nyquist range", c.Filter.Cutoff)

	check(c.BM95.Modes > 0, "bm95 modes must be positive, got %d", c.BM95.Modes)
	check(c.BM95.GridSpacing > 0, "bm95 grid-spacing must be positive, got %v", c.BM95.GridSpacing)
	check(c.BM95.LatMin < c.BM95.LatMax, "bm95 latitude band is empty")

	check(c.Spectrum.Dx > 0 && c.Spectrum.Dt > 0, "spectrum dx and dt must be positive")
	check(c.Spectrum.SegmentLength > 0, "spectrum segment-length must be positive, got %d", c.Spectrum.SegmentLength)
	check(c.Spectrum.Overlap < c.Spectrum.SegmentLength, "spectrum overlap must be shorter than a segment")
	check(c.Spectrum.LatMin <= c.Spectrum.LatMax, "spectrum latitude band is empty")

	if _, _, err := c.ENSO.Period(); err != nil {
		problems = append(problems, err.Error())
	}
	check(c.ENSO.LatMin < c.ENSO.LatMax, "enso latitude band is empty")

	if c.Argo.Since != "" {
		_, err := time.Parse(time.DateOnly, c.Argo.Since)
		check(err == nil, "argo since %q is not YYYY-MM-DD", c.Argo.Since)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrInvalidConfig)
	}
	return nil
}
