package stats

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	mstats "github.com/montanaflynn/stats"

	"github.com/san-kum/numkit/timeseries"
)

// ACF holds a normalized autocorrelation function and the integrated
// correlation time derived from it.
type ACF struct {
	// Values holds the autocorrelation coefficients at lags 0..MaxLag.
	// Values[0] is exactly 1.
	Values []float64

	// CorrelationTime is the integrated autocorrelation time in units
	// of the sample interval: 0.5 plus the sum of coefficients up to
	// CutoffLag. An uncorrelated series gives 0.5.
	CorrelationTime float64

	// CutoffLag is the last lag included in the correlation time sum.
	CutoffLag int

	// Truncated reports that no coefficient crossed the threshold
	// within the lag window, so CorrelationTime is a lower bound.
	Truncated bool

	// N is the number of samples the function was estimated from.
	N int

	// Threshold is the crossing level that ended the integration.
	Threshold float64
}

// Autocorrelation estimates the normalized autocorrelation function of
// s and integrates it into a correlation time.
//
// The series is centered on its mean and correlated with itself at
// every lag up to MaxLag (default half the length). Each lag is
// normalized by its pair count, so the estimate matches the direct sum
//
//	acf(k) = sum_t (x_t - m)(x_{t+k} - m) / ((n-k) * var)
//
// while running in O(n log n) through a zero-padded FFT. Integration of
// the correlation time stops at the first lag at or below the threshold
// (default 0); if no lag crosses, the result is marked Truncated.
//
// Weights on s are ignored: autocorrelation is a property of the sample
// sequence itself.
func Autocorrelation(s *timeseries.Series, opts ...Option) (*ACF, error) {
	o := buildOptions(opts)

	n := s.Len()
	if n < 2 {
		return nil, &timeseries.InsufficientDataError{N: n, Min: 2, Reason: "autocorrelation needs at least two samples"}
	}

	maxLag := o.maxLag
	if maxLag == 0 {
		maxLag = n / 2
	}
	if maxLag < 1 || maxLag >= n {
		return nil, &timeseries.InvalidParameterError{
			Name:   "maxLag",
			Value:  maxLag,
			Reason: "must be between 1 and one less than the series length",
		}
	}
	if math.IsNaN(o.threshold) {
		return nil, &timeseries.InvalidParameterError{Name: "threshold", Value: o.threshold, Reason: "must not be NaN"}
	}

	raw, err := rawAutocovariance(s.Values())
	if err != nil {
		return nil, err
	}

	values := make([]float64, maxLag+1)
	values[0] = 1.0
	for k := 1; k <= maxLag; k++ {
		values[k] = raw[k] * float64(n) / (raw[0] * float64(n-k))
	}

	tau := 0.5
	cutoff := maxLag
	truncated := true
	for lag := 1; lag <= maxLag; lag++ {
		if values[lag] <= o.threshold {
			cutoff = lag - 1
			truncated = false
			break
		}
		tau += values[lag]
	}
	if tau < 0 {
		tau = 0
	}

	return &ACF{
		Values:          values,
		CorrelationTime: tau,
		CutoffLag:       cutoff,
		Truncated:       truncated,
		N:               n,
		Threshold:       o.threshold,
	}, nil
}

// StatisticalInefficiency returns g = 2*tau, the factor by which serial
// correlation inflates the variance of the sample mean. Uncorrelated
// data gives g = 1.
func (a *ACF) StatisticalInefficiency() float64 {
	return 2 * a.CorrelationTime
}

// ConfidenceBound returns the approximate 95% significance level for
// individual coefficients, 1.96/sqrt(N). Coefficients inside the bound
// are indistinguishable from noise.
func (a *ACF) ConfidenceBound() float64 {
	return 1.96 / math.Sqrt(float64(a.N))
}

// rawAutocovariance returns sum_t (x_t - m)(x_{t+k} - m) for lags
// 0..n-1. The centered series is zero-padded to the next power of two
// past 2n so the circular FFT correlation never wraps one lag into
// another.
func rawAutocovariance(values []float64) ([]float64, error) {
	n := len(values)
	mean, _ := mstats.Mean(values)

	padded := make([]float64, nextPow2(2*n))
	var ss float64
	for i, v := range values {
		u := v - mean
		padded[i] = u
		ss += u * u
	}
	if ss == 0 {
		return nil, &timeseries.InsufficientDataError{N: n, Min: 2, Reason: "series has zero variance"}
	}

	freq := fft.FFTReal(padded)
	power := make([]float64, len(freq))
	for i, c := range freq {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}

	inv := fft.IFFTReal(power)
	raw := make([]float64, n)
	for k := range raw {
		raw[k] = real(inv[k])
	}
	return raw, nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
