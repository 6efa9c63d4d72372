package timeseries

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// Series is an ordered sequence of numeric samples with either uniform or
// explicit coordinate spacing and optional per-sample weights.
//
// A Series stores its own copy of the data it is constructed from and is
// never mutated by analysis functions; accessors return copies. Methods
// that derive a new configuration (such as [Series.WithWeights]) return a
// fresh Series and leave the receiver untouched.
type Series struct {
	values  []float64
	coords  []float64 // nil for uniform spacing
	origin  float64
	step    float64
	weights []float64 // nil when unweighted
}

// New creates a uniformly spaced series with coordinates 0, step, 2*step, ...
// The step must be positive and finite.
func New(values []float64, step float64) (*Series, error) {
	if err := checkValues(values); err != nil {
		return nil, err
	}
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return nil, &InvalidSeriesError{Reason: fmt.Sprintf("step must be positive and finite, got %v", step)}
	}
	return &Series{values: cloneFloats(values), step: step}, nil
}

// NewWithCoords creates a series with explicit coordinates. Coordinates must
// be finite, strictly increasing, and match the values in length.
func NewWithCoords(coords, values []float64) (*Series, error) {
	if err := checkValues(values); err != nil {
		return nil, err
	}
	if len(coords) != len(values) {
		return nil, &InvalidSeriesError{Reason: fmt.Sprintf("coords length %d does not match values length %d", len(coords), len(values))}
	}
	for i, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, &InvalidSeriesError{Reason: fmt.Sprintf("coord %d is not finite", i)}
		}
		if i > 0 && c <= coords[i-1] {
			return nil, &InvalidSeriesError{Reason: fmt.Sprintf("coords must be strictly increasing at index %d", i)}
		}
	}
	return &Series{values: cloneFloats(values), coords: cloneFloats(coords)}, nil
}

// WithWeights returns a copy of the series with per-sample weights attached.
// Weights must be finite, non-negative, match the series in length, and not
// all be zero. Weighted series use weighted moments in Mean and Variance.
func (s *Series) WithWeights(w []float64) (*Series, error) {
	if len(w) != len(s.values) {
		return nil, &InvalidSeriesError{Reason: fmt.Sprintf("weights length %d does not match series length %d", len(w), len(s.values))}
	}
	sum := 0.0
	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, &InvalidSeriesError{Reason: fmt.Sprintf("weight %d must be finite and non-negative, got %v", i, v)}
		}
		sum += v
	}
	if sum == 0 {
		return nil, &InvalidSeriesError{Reason: "weights sum to zero"}
	}
	c := s.clone()
	c.weights = cloneFloats(w)
	return c, nil
}

func checkValues(values []float64) error {
	if len(values) == 0 {
		return &InvalidSeriesError{Reason: "empty series"}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidSeriesError{Reason: fmt.Sprintf("sample %d is not finite", i)}
		}
	}
	return nil
}

func cloneFloats(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

func (s *Series) clone() *Series {
	c := &Series{
		values: cloneFloats(s.values),
		origin: s.origin,
		step:   s.step,
	}
	if s.coords != nil {
		c.coords = cloneFloats(s.coords)
	}
	if s.weights != nil {
		c.weights = cloneFloats(s.weights)
	}
	return c
}

// Len returns the number of samples.
func (s *Series) Len() int { return len(s.values) }

// At returns the sample value at index i.
func (s *Series) At(i int) float64 { return s.values[i] }

// Coord returns the coordinate of the sample at index i.
func (s *Series) Coord(i int) float64 {
	if s.coords != nil {
		return s.coords[i]
	}
	return s.origin + float64(i)*s.step
}

// Uniform reports whether the series uses uniform coordinate spacing.
func (s *Series) Uniform() bool { return s.coords == nil }

// Step returns the coordinate spacing of a uniform series, or 0 when the
// series carries explicit coordinates.
func (s *Series) Step() float64 {
	if s.coords != nil {
		return 0
	}
	return s.step
}

// Weighted reports whether per-sample weights are set.
func (s *Series) Weighted() bool { return s.weights != nil }

// Values returns a copy of the sample values.
func (s *Series) Values() []float64 { return cloneFloats(s.values) }

// Coords returns a copy of the sample coordinates.
func (s *Series) Coords() []float64 {
	if s.coords != nil {
		return cloneFloats(s.coords)
	}
	c := make([]float64, len(s.values))
	for i := range c {
		c[i] = s.origin + float64(i)*s.step
	}
	return c
}

// Weights returns a copy of the per-sample weights, or nil when unweighted.
func (s *Series) Weights() []float64 {
	if s.weights == nil {
		return nil
	}
	return cloneFloats(s.weights)
}

// Slice returns a copy of the sub-series over indices [lo, hi). Bounds must
// satisfy 0 <= lo < hi <= Len.
func (s *Series) Slice(lo, hi int) (*Series, error) {
	if lo < 0 || hi > len(s.values) || lo >= hi {
		return nil, &InvalidParameterError{
			Name:   "slice",
			Value:  fmt.Sprintf("[%d,%d)", lo, hi),
			Reason: fmt.Sprintf("bounds must satisfy 0 <= lo < hi <= %d", len(s.values)),
		}
	}
	c := &Series{values: cloneFloats(s.values[lo:hi])}
	if s.coords != nil {
		c.coords = cloneFloats(s.coords[lo:hi])
	} else {
		c.origin = s.origin + float64(lo)*s.step
		c.step = s.step
	}
	if s.weights != nil {
		c.weights = cloneFloats(s.weights[lo:hi])
	}
	return c, nil
}

// Mean returns the arithmetic mean, or the weighted mean when weights are set.
func (s *Series) Mean() float64 {
	if s.weights != nil {
		var sw, swx float64
		for i, v := range s.values {
			sw += s.weights[i]
			swx += s.weights[i] * v
		}
		return swx / sw
	}
	m, _ := stats.Mean(s.values)
	return m
}

// Variance returns the variance of the samples. With sample=true the
// unbiased sample estimator is used (n-1 denominator, or its weighted
// analogue); otherwise the population estimator. The sample variance of a
// single observation is NaN.
func (s *Series) Variance(sample bool) float64 {
	if s.weights != nil {
		return s.weightedVariance(sample)
	}
	var v float64
	if sample {
		v, _ = stats.SampleVariance(s.values)
	} else {
		v, _ = stats.PopulationVariance(s.values)
	}
	return v
}

// Weighted variance with reliability weights: the population form divides
// by sum(w); the sample form divides by sum(w) - sum(w^2)/sum(w).
func (s *Series) weightedVariance(sample bool) float64 {
	mean := s.Mean()
	var sw, sw2, ssq float64
	for i, v := range s.values {
		w := s.weights[i]
		d := v - mean
		sw += w
		sw2 += w * w
		ssq += w * d * d
	}
	den := sw
	if sample {
		den = sw - sw2/sw
	}
	return ssq / den
}

// Std returns the standard deviation, the square root of Variance.
func (s *Series) Std(sample bool) float64 {
	return math.Sqrt(s.Variance(sample))
}

// Min returns the smallest sample value.
func (s *Series) Min() float64 {
	m, _ := stats.Min(s.values)
	return m
}

// Max returns the largest sample value.
func (s *Series) Max() float64 {
	m, _ := stats.Max(s.values)
	return m
}
