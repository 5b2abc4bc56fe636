// Package dataset reads and writes the gridded fields and time series the
// analysis pipelines consume. The encoding is chosen from the file extension.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/chrissnell/oceanlab/pkg/grid"
)

var (
	// ErrUnknownFormat is returned for file extensions with no codec
	ErrUnknownFormat = errors.New("unknown dataset format")
	// ErrTimeAxis is returned for time axes that cannot give a sampling step
	ErrTimeAxis = errors.New("invalid time axis")
)

// Format identifies a dataset encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
)

// FormatFromPath maps a file extension to its format
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Values is a float slice whose JSON form writes missing samples as null
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			b.WriteString("null")
			continue
		}
		enc, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		b.Write(enc)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, x := range raw {
		if x == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *x
	}
	*v = out
	return nil
}

// Series is a named 1-D time series
type Series struct {
	Name   string      `json:"name"`
	Time   []time.Time `json:"time"`
	Values Values      `json:"values"`
}

// Validate checks that the time and value axes agree
func (s *Series) Validate() error {
	if len(s.Time) != len(s.Values) {
		return fmt.Errorf("series %q has %d times and %d values: %w", s.Name, len(s.Time), len(s.Values), grid.ErrShape)
	}
	return nil
}

type fieldFile struct {
	Time []time.Time `json:"time"`
	Lat  []float64   `json:"lat"`
	Lon  []float64   `json:"lon"`
	Data Values      `json:"data"`
}

// Encode writes v to w in the given format
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(v)
	case FormatMsgpack:
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json")
		return encoder.Encode(v)
	}
	return fmt.Errorf("encoding %q: %w", format, ErrUnknownFormat)
}

// Decode reads v from r in the given format
func Decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.NewDecoder(r).Decode(v)
	case FormatMsgpack:
		decoder := msgpack.NewDecoder(r)
		decoder.SetCustomStructTag("json")
		return decoder.Decode(v)
	}
	return fmt.Errorf("decoding %q: %w", format, ErrUnknownFormat)
}

func writeFile(path string, v any) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(file, format, v); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}

func readFile(path string, v any) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	if err := Decode(file, format, v); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// WriteField saves a field as .json or .msgpack
func WriteField(path string, f *grid.Field) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return writeFile(path, fieldFile{Time: f.Time, Lat: f.Lat, Lon: f.Lon, Data: Values(f.Data)})
}

// ReadField loads a field written by WriteField and validates its axes
func ReadField(path string) (*grid.Field, error) {
	var ff fieldFile
	if err := readFile(path, &ff); err != nil {
		return nil, err
	}
	f := &grid.Field{Time: utc(ff.Time), Lat: ff.Lat, Lon: ff.Lon, Data: ff.Data}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteSeries saves a series as .json, .msgpack or .csv
func WriteSeries(path string, s *Series) error {
	if err := s.Validate(); err != nil {
		return err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatCSV {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := WriteCSVSeries(file, s); err != nil {
			file.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return file.Close()
	}
	return writeFile(path, s)
}

// ReadSeries loads a series from .json, .msgpack, .csv or .xlsx. CSV and
// spreadsheet series are named after the file.
func ReadSeries(path string) (*Series, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var s *Series
	switch format {
	case FormatCSV:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer file.Close()
		if s, err = ReadCSVSeries(file); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		s.Name = name
	case FormatXLSX:
		if s, err = ReadXLSXSeries(path, ""); err != nil {
			return nil, err
		}
		s.Name = name
	default:
		s = &Series{}
		if err := readFile(path, s); err != nil {
			return nil, err
		}
		s.Time = utc(s.Time)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func utc(times []time.Time) []time.Time {
	for i := range times {
		times[i] = times[i].UTC()
	}
	return times
}

// TimeStep returns the mean sampling interval of times in days
func TimeStep(times []time.Time) (float64, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("need at least two times, got %d: %w", len(times), ErrTimeAxis)
	}
	prev := julian.TimeToJD(times[0])
	first := prev
	for _, t := range times[1:] {
		jd := julian.TimeToJD(t)
		if jd <= prev {
			return 0, fmt.Errorf("time %s does not increase: %w", t.Format(time.RFC3339), ErrTimeAxis)
		}
		prev = jd
	}
	return (prev - first) / float64(len(times)-1), nil
}
