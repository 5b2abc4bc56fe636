package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Summary describes the finite samples of a series
type Summary struct {
	N       int     `json:"n"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"q25"`
	Median  float64 `json:"median"`
	Q75     float64 `json:"q75"`
	Max     float64 `json:"max"`
}

// Summarize computes summary statistics over the finite values of x
func Summarize(x []float64) (Summary, error) {
	data := make(stats.Float64Data, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	s := Summary{N: len(data), Missing: len(x) - len(data)}
	if len(data) == 0 {
		return s, fmt.Errorf("no finite samples to summarize: %w", ErrMissingData)
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return s, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	if s.Q25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return s, err
	}
	if s.Q75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return s, err
	}
	return s, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d missing=%d mean=%.4g sd=%.4g min=%.4g median=%.4g max=%.4g",
		s.N, s.Missing, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
}
