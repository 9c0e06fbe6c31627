package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyInput is returned when a summary is requested for a
// zero-length sequence. The descriptive statistics are undefined there,
// so the caller must treat the whole descriptor as failed rather than
// fall back to zeros.
var ErrEmptyInput = errors.New("stats: empty input")

// StatNames lists the summary fields in their canonical order. Column
// generation and bundle documents both depend on this order.
var StatNames = []string{"mean", "variance", "median", "skewness", "kurtosis", "min", "max"}

// Summary is the fixed 7-number reduction of an arbitrary-length
// numeric sequence.
//
// Variance is the population variance (denominator N). Skewness and
// kurtosis use the population (biased) Fisher definitions with excess
// kurtosis, matching the convention the dataset was originally built
// with. For zero-variance input both are defined as 0.
type Summary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Median   float64 `json:"median"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize reduces a non-empty sequence to its Summary.
func Summarize(values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}

	mean := stat.Mean(values, nil)
	m2 := stat.Moment(2, values, nil)
	m3 := stat.Moment(3, values, nil)
	m4 := stat.Moment(4, values, nil)

	skewness := 0.0
	kurtosis := 0.0
	if m2 > 0 {
		skewness = m3 / math.Pow(m2, 1.5)
		kurtosis = m4/(m2*m2) - 3.0
	}

	s := &Summary{
		Mean:     mean,
		Variance: m2,
		Median:   median(values),
		Skewness: skewness,
		Kurtosis: kurtosis,
		Min:      floats.Min(values),
		Max:      floats.Max(values),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SummarizeMatrix flattens a 2D array in row-major order and reduces
// it to a single Summary. Row-major flattening keeps the higher-order
// moments reproducible across runs.
func SummarizeMatrix(rows [][]float64) (*Summary, error) {
	n := 0
	for _, row := range rows {
		n += len(row)
	}
	if n == 0 {
		return nil, ErrEmptyInput
	}

	flat := make([]float64, 0, n)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return Summarize(flat)
}

// Validate rejects summaries containing NaN or infinite values. A
// non-finite statistic means the extraction itself failed.
func (s *Summary) Validate() error {
	for i, v := range s.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("stats: non-finite %s", StatNames[i])
		}
	}
	return nil
}

// Values returns the statistics in StatNames order.
func (s *Summary) Values() [7]float64 {
	return [7]float64{s.Mean, s.Variance, s.Median, s.Skewness, s.Kurtosis, s.Min, s.Max}
}

// median computes the sample median with the midpoint convention for
// even-length input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}
