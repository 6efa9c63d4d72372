// Package numkit provides statistical analysis of serially correlated
// time series, such as energies or distances sampled along a simulation
// trajectory.
//
// Successive samples from a simulation are not independent: naive error
// bars computed as std/sqrt(N) understate the true uncertainty, often by
// an order of magnitude. numkit estimates the autocorrelation of a series,
// derives an integrated correlation time, and corrects the standard error
// of the mean by the effective number of independent samples.
//
// # Quick Start
//
// Estimate the mean of a correlated series with a proper error bar:
//
//	s, _ := timeseries.New(values, 1.0)
//	est, err := stats.ErrorEstimate(s)
//	if err != nil {
//	    // handle
//	}
//	fmt.Printf("%.4f +/- %.4f (n_eff=%.0f, tau=%.1f)\n",
//	    est.Mean, est.StdErr, est.NEff, est.CorrelationTime)
//
// Fit an exponential decay to the series:
//
//	res, err := fit.Fit(s, fit.Exponential{}, []float64{1.0, 10.0})
//
// # Packages
//
// The library is organized into the following packages:
//
//   - timeseries: sample series storage, validation, and moments
//   - smooth: running-average and exponential smoothing filters
//   - stats: autocorrelation, correlation time, corrected error estimates
//   - fit: nonlinear least-squares model fitting
//   - batch: parallel error estimation over many series
//
// All analysis functions are pure: they never mutate their inputs and hold
// no state between calls, so independent analyses may run concurrently
// without coordination.
package numkit
