// Package stats estimates autocorrelation and statistically sound error
// bars for serially correlated series.
//
// Samples drawn from a simulation trajectory are rarely independent:
// consecutive frames remember each other, and treating them as i.i.d.
// understates the error of any averaged observable. The package
// quantifies that memory and corrects for it:
//
//   - [Autocorrelation]: normalized autocorrelation function with an
//     integrated correlation time
//   - [ErrorEstimate]: mean and standard error deflated by the
//     effective sample count
//
// # Correlated Data
//
// The integrated correlation time tau measures how many sample
// intervals the series takes to forget its past; N/(2*tau) of the N
// samples carry independent information. The corrected standard error
// uses that effective count:
//
//	est, err := stats.ErrorEstimate(series)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%.5g +/- %.5g (tau = %.2f)\n", est.Mean, est.StdErr, est.CorrelationTime)
//
// All functions are pure: repeated calls on the same series return
// identical results, and the input is never modified.
package stats
