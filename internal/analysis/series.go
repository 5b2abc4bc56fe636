package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/oceanlab/internal/dataset"
	"github.com/chrissnell/oceanlab/pkg/filters"
	"github.com/chrissnell/oceanlab/pkg/wavelet"
)

// WaveletResult is the outcome of the wavelet pipeline
type WaveletResult struct {
	RunID    uuid.UUID
	Name     string
	Dt       float64
	Filled   int
	Spectrum *wavelet.Spectrum
	// PeakPower is the power at the period of maximum global power
	PeakPower  *dataset.Series
	PeakPeriod float64
	Summary    Summary
}

// WaveletOptions maps the wavelet section of the configuration
func (r *Runner) WaveletOptions() (wavelet.AnalyzeOptions, error) {
	wc := r.cfg.Wavelet
	mother, err := wavelet.ParseMother(wc.Mother)
	if err != nil {
		return wavelet.AnalyzeOptions{}, err
	}
	return wavelet.AnalyzeOptions{
		Mother: mother,
		Options: wavelet.Options{
			Pad:       wc.Pad,
			Dj:        wc.Dj,
			S0:        wc.S0,
			NumScales: wc.NumScales,
			Param:     wc.Param,
		},
		Lag1:  wc.Lag1,
		Level: wc.Level,
	}, nil
}

// Wavelet runs the wavelet power analysis of s. The sampling interval is
// taken from the time axis in days. Missing samples are replaced by the
// series mean.
func (r *Runner) Wavelet(ctx context.Context, s *dataset.Series) (*WaveletResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	opts, err := r.WaveletOptions()
	if err != nil {
		return nil, err
	}
	dt, err := dataset.TimeStep(s.Time)
	if err != nil {
		return nil, err
	}
	y, filled, err := fillMissing(s.Values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	if filled > 0 {
		r.logger.Warnf("%s: filled %d missing samples with the series mean", s.Name, filled)
	}

	r.logger.Infof("wavelet analysis of %s: %d samples, dt=%.4g days, mother=%s", s.Name, len(y), dt, opts.Mother)
	spec, err := wavelet.Analyze(y, dt, opts)
	if err != nil {
		return nil, fmt.Errorf("wavelet analysis of %s: %w", s.Name, err)
	}

	res := &WaveletResult{
		Name:       s.Name,
		Dt:         dt,
		Filled:     filled,
		Spectrum:   spec,
		PeakPeriod: spec.PeakPeriod(),
	}
	peak := floats.MaxIdx(spec.Global)
	res.PeakPower = &dataset.Series{
		Name:   s.Name + "_peak_power",
		Time:   append([]time.Time(nil), s.Time...),
		Values: append([]float64(nil), spec.Power[peak]...),
	}
	if res.Summary, err = Summarize(s.Values); err != nil {
		return nil, err
	}
	r.logger.Infof("%s: peak period %.4g days, %d scales, lag-1 %.3f", s.Name, res.PeakPeriod, len(spec.Power), spec.Lag1)

	params := map[string]any{"input": s.Name, "dt": dt, "wavelet": r.cfg.Wavelet}
	if res.RunID, err = r.record(ctx, KindWavelet, params, res.PeakPower); err != nil {
		return nil, err
	}
	return res, nil
}

// FilterResult is the outcome of the filter pipeline
type FilterResult struct {
	RunID    uuid.UUID
	Kind     filters.Kind
	Filtered *dataset.Series
	Summary  Summary
}

// Filter applies the configured Lanczos filter to s
func (r *Runner) Filter(ctx context.Context, s *dataset.Series) (*FilterResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	fc := r.cfg.Filter
	kind, err := filters.ParseKind(fc.Kind)
	if err != nil {
		return nil, err
	}

	r.logger.Infof("%s-pass Lanczos filter of %s: cutoff %.4g per %.4g, %d terms", kind, s.Name, fc.Cutoff, fc.Dt, fc.Terms)
	out, err := filters.Lanczos(s.Values, fc.Cutoff, fc.Dt, fc.Terms, kind)
	if err != nil {
		return nil, fmt.Errorf("filtering %s: %w", s.Name, err)
	}

	res := &FilterResult{
		Kind: kind,
		Filtered: &dataset.Series{
			Name:   fmt.Sprintf("%s_%spass", s.Name, kind),
			Time:   append([]time.Time(nil), s.Time...),
			Values: out,
		},
	}
	if res.Summary, err = Summarize(out); err != nil {
		r.logger.Warnf("%s: %v", s.Name, err)
	}

	params := map[string]any{"input": s.Name, "filter": fc}
	if res.RunID, err = r.record(ctx, KindFilter, params, res.Filtered); err != nil {
		return nil, err
	}
	return res, nil
}
