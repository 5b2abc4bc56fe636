package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedSeries is returned for series rows that cannot be parsed
var ErrMalformedSeries = errors.New("malformed series")

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("time %q is neither RFC3339 nor YYYY-MM-DD: %w", s, ErrMalformedSeries)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", s, ErrMalformedSeries)
	}
	return v, nil
}

// parseRows converts time,value rows, skipping a leading header row whose
// first cell is not a time. A row without a value cell is a missing sample.
func parseRows(rows [][]string) (*Series, error) {
	s := &Series{}
	for i, row := range rows {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		t, err := parseTime(row[0])
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		// spreadsheets drop trailing empty cells
		cell := ""
		if len(row) > 1 {
			cell = row[1]
		}
		v, err := parseValue(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		s.Time = append(s.Time, t)
		s.Values = append(s.Values, v)
	}
	return s, nil
}

// ReadCSVSeries reads time,value rows. Times are RFC3339 or YYYY-MM-DD and
// empty or NaN values are missing samples.
func ReadCSVSeries(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrMalformedSeries)
	}
	return parseRows(rows)
}

// WriteCSVSeries writes a time,value header and one RFC3339 row per sample
func WriteCSVSeries(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i, t := range s.Time {
		value := ""
		if !math.IsNaN(s.Values[i]) {
			value = strconv.FormatFloat(s.Values[i], 'g', -1, 64)
		}
		if err := cw.Write([]string{t.Format(time.RFC3339), value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
