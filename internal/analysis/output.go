package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/oceanlab/internal/dataset"
	"github.com/chrissnell/oceanlab/pkg/fsutil"
)

// OutputPath returns <output dir>/<kind>/<name>.<format>, creating the
// directory if needed
func (r *Runner) OutputPath(kind, name string) (string, error) {
	dir, err := fsutil.CheckFolder(r.cfg.Output.Dir, kind)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+"."+strings.ToLower(r.cfg.Output.Format)), nil
}

// WriteSeries writes series sharing a time axis to one output file. A
// workbook gets one column per series; JSON and MessagePack get the list
// of series.
func (r *Runner) WriteSeries(kind, name string, series ...*dataset.Series) (string, error) {
	path, err := r.OutputPath(kind, name)
	if err != nil {
		return "", err
	}
	format, err := dataset.FormatFromPath(path)
	if err != nil {
		return "", err
	}
	if format == dataset.FormatXLSX {
		if err := dataset.WriteXLSX(path, dataset.SeriesTable(name, series...)); err != nil {
			return "", err
		}
	} else if err := writeEncoded(path, format, series); err != nil {
		return "", err
	}
	r.logger.Infof("wrote %d series to %s", len(series), path)
	return path, nil
}

// WriteResult writes any encodable result. Workbooks take the given tables
// instead, since arbitrary structures have no sheet layout.
func (r *Runner) WriteResult(kind, name string, v any, tables ...dataset.Table) (string, error) {
	path, err := r.OutputPath(kind, name)
	if err != nil {
		return "", err
	}
	format, err := dataset.FormatFromPath(path)
	if err != nil {
		return "", err
	}
	if format == dataset.FormatXLSX {
		err = dataset.WriteXLSX(path, tables...)
	} else {
		err = writeEncoded(path, format, v)
	}
	if err != nil {
		return "", err
	}
	r.logger.Infof("wrote %s result to %s", kind, path)
	return path, nil
}

func writeEncoded(path string, format dataset.Format, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := dataset.Encode(file, format, v); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}
