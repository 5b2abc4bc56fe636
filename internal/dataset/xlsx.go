package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"
)

// Table is one worksheet of an exported workbook
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// WriteXLSX saves tables as the worksheets of a new workbook. NaN cells are
// left empty.
func WriteXLSX(path string, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to write to %s", path)
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), table.Name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", table.Name, err)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("adding sheet %q: %w", table.Name, err)
		}

		header := make([]any, len(table.Header))
		for j, h := range table.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(table.Name, "A1", &header); err != nil {
			return fmt.Errorf("writing header of %q: %w", table.Name, err)
		}
		for r, row := range table.Rows {
			cells := make([]any, len(row))
			for j, v := range row {
				if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
					continue
				}
				cells[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(table.Name, cell, &cells); err != nil {
				return fmt.Errorf("writing row %d of %q: %w", r+1, table.Name, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// SeriesTable lays out series sharing a time axis as time plus one column per series
func SeriesTable(name string, series ...*Series) Table {
	table := Table{Name: name, Header: []string{"time"}}
	if len(series) == 0 {
		return table
	}
	for _, s := range series {
		table.Header = append(table.Header, s.Name)
	}
	for i, t := range series[0].Time {
		row := []any{t.Format(time.RFC3339)}
		for _, s := range series {
			if i < len(s.Values) {
				row = append(row, s.Values[i])
			} else {
				row = append(row, nil)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// ReadXLSXSeries reads time,value rows from sheet, or from the first sheet
// when sheet is empty
func ReadXLSXSeries(path, sheet string) (*Series, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%s has no sheets: %w", path, ErrMalformedSeries)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	s, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
