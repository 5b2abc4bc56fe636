// Package analysis runs the configured pipelines over datasets: it checks
// inputs, calls the numeric packages, logs progress and records each run
// in the catalog when one is open.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/oceanlab/internal/dataset"
	"github.com/chrissnell/oceanlab/internal/store"
	"github.com/chrissnell/oceanlab/pkg/config"
	"github.com/chrissnell/oceanlab/pkg/numeric"
)

var (
	// ErrMissingData is returned when an input has gaps a pipeline cannot bridge
	ErrMissingData = errors.New("missing data")
	// ErrEmptySelection is returned when a latitude band selects nothing
	ErrEmptySelection = errors.New("empty selection")
)

// Run kinds recorded in the catalog
const (
	KindWavelet = "wavelet"
	KindFilter  = "filter"
	KindBM95    = "bm95"
	KindPower   = "power"
	KindECIndex = "ecindex"
)

// Runner executes pipelines with one configuration
type Runner struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
	store  *store.Store
}

// NewRunner creates a Runner. A nil store skips run recording.
func NewRunner(cfg *config.ConfigData, logger *zap.SugaredLogger, st *store.Store) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{cfg: cfg, logger: logger, store: st}
}

// Config returns the configuration the runner was built with
func (r *Runner) Config() *config.ConfigData {
	return r.cfg
}

// record stores the run and its output series. It returns uuid.Nil when
// no catalog is open.
func (r *Runner) record(ctx context.Context, kind string, params any, series ...*dataset.Series) (uuid.UUID, error) {
	if r.store == nil {
		return uuid.Nil, nil
	}
	id, err := r.store.RecordRun(ctx, kind, params)
	if err != nil {
		return uuid.Nil, err
	}
	for _, s := range series {
		if err := r.store.SaveSeries(ctx, id, s.Name, s.Time, s.Values); err != nil {
			return uuid.Nil, fmt.Errorf("saving %s: %w", s.Name, err)
		}
	}
	r.logger.Debugf("recorded %s run %s with %d series", kind, id, len(series))
	return id, nil
}

// fillMissing replaces NaN samples by the mean of the finite ones and
// reports how many were replaced
func fillMissing(x []float64) ([]float64, int, error) {
	mean := numeric.NanMean(x)
	if math.IsNaN(mean) {
		return nil, 0, fmt.Errorf("series has no finite samples: %w", ErrMissingData)
	}
	out := make([]float64, len(x))
	var filled int
	for i, v := range x {
		if math.IsNaN(v) {
			v = mean
			filled++
		}
		out[i] = v
	}
	return out, filled, nil
}
