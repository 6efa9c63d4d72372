package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/numkit/timeseries"
)

// Estimate is the mean of a series together with a standard error
// corrected for serial correlation.
type Estimate struct {
	Mean float64

	// StdErr is the corrected standard error sqrt(var / NEff).
	StdErr float64

	// NaiveStdErr is the standard error assuming independent samples,
	// sqrt(var / N). It understates the true error whenever the series
	// is positively correlated.
	NaiveStdErr float64

	// NEff is the effective number of independent samples, N/(2*tau),
	// clamped to [1, N].
	NEff float64

	// CorrelationTime is the integrated autocorrelation time used.
	CorrelationTime float64

	// Truncated reports that the autocorrelation never decayed below
	// the threshold within the lag window; StdErr may underestimate.
	Truncated bool

	// N is the raw sample count.
	N int
}

// ErrorEstimate computes the mean of s and its standard error, deflating
// the sample count by the integrated correlation time so that error bars
// stay honest on serially correlated data.
//
// By default the correlation time comes from Autocorrelation run with
// the same options; WithCorrelationTime substitutes a known value and
// skips that pass. A correlation time at or below 0.5 (uncorrelated or
// anticorrelated data) leaves the naive estimate unchanged: NEff never
// exceeds N.
//
// Weights on s are ignored; error estimation treats every sample as one
// observation.
func ErrorEstimate(s *timeseries.Series, opts ...Option) (*Estimate, error) {
	o := buildOptions(opts)

	n := s.Len()
	if n < 2 {
		return nil, &timeseries.InsufficientDataError{N: n, Min: 2, Reason: "error estimation needs at least two samples"}
	}

	tau := o.tau
	truncated := false
	if o.hasTau {
		if math.IsNaN(tau) || math.IsInf(tau, 0) || tau < 0 {
			return nil, &timeseries.InvalidParameterError{
				Name:   "correlationTime",
				Value:  tau,
				Reason: "must be finite and non-negative",
			}
		}
	} else {
		acf, err := Autocorrelation(s, opts...)
		if err != nil {
			return nil, err
		}
		tau = acf.CorrelationTime
		truncated = acf.Truncated
	}

	values := s.Values()
	mean, _ := mstats.Mean(values)
	variance, _ := mstats.SampleVariance(values)

	neff := float64(n) / (2 * tau)
	if math.IsInf(neff, 1) || neff > float64(n) {
		neff = float64(n)
	}
	if neff < 1 {
		neff = 1
	}

	return &Estimate{
		Mean:            mean,
		StdErr:          math.Sqrt(variance / neff),
		NaiveStdErr:     math.Sqrt(variance / float64(n)),
		NEff:            neff,
		CorrelationTime: tau,
		Truncated:       truncated,
		N:               n,
	}, nil
}

// ConfidenceInterval returns the two-sided interval around Mean at the
// given level (e.g. 0.95 for 95%), using a Student-t quantile with
// NEff-1 degrees of freedom. Both bounds are NaN when the level lies
// outside (0, 1) or fewer than two effective samples remain.
func (e *Estimate) ConfidenceInterval(level float64) (lo, hi float64) {
	df := e.NEff - 1
	if !(level > 0 && level < 1) || df <= 0 {
		return math.NaN(), math.NaN()
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	q := t.Quantile(0.5 + level/2)
	return e.Mean - q*e.StdErr, e.Mean + q*e.StdErr
}
