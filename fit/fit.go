// Package fit performs nonlinear least-squares curve fitting against
// time series data.
//
// Fitting uses Levenberg-Marquardt with a forward-difference Jacobian;
// built-in [Linear], [Exponential] and [DoubleExponential] models cover
// the usual relaxation analyses, and any type satisfying [Model] can be
// fitted the same way:
//
//	res, err := fit.Fit(series, fit.Exponential{}, []float64{1, 10})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Params, res.ParamErrors())
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/numkit/timeseries"
)

// sqrtEps is the forward-difference step scale, sqrt of the float64
// machine epsilon.
const sqrtEps = 1.4901161193847656e-08

// Result holds the outcome of a least-squares fit.
type Result struct {
	// Params are the fitted parameter values.
	Params []float64

	// Covariance is the parameter covariance matrix, RSS/(n-p) times
	// the inverse of J^T J, symmetrized. Undefined entries are NaN
	// with IllConditioned set.
	Covariance [][]float64

	// RSS is the weighted residual sum of squares at the solution.
	RSS float64

	// Iterations is the number of accepted parameter updates.
	Iterations int

	// Converged is true for every Result returned without error.
	Converged bool

	// IllConditioned reports that the covariance is unreliable: the
	// normal matrix was singular, a variance came out negative, or no
	// residual degrees of freedom remain. The parameters themselves
	// are still the least-squares solution.
	IllConditioned bool
}

// ParamErrors returns the one-sigma parameter uncertainties, the square
// roots of the covariance diagonal. Entries are NaN when the covariance
// is undefined.
func (r *Result) ParamErrors() []float64 {
	errs := make([]float64, len(r.Params))
	for i := range errs {
		errs[i] = math.Sqrt(r.Covariance[i][i])
	}
	return errs
}

// FitDivergenceError reports a fit that stopped without meeting the
// convergence tolerance, either by exhausting MaxIterations or by
// failing to find any downhill step. LastParams holds the best
// parameters reached, usable as a refined starting guess.
type FitDivergenceError struct {
	Iterations int
	LastParams []float64
	LastRSS    float64
}

func (e *FitDivergenceError) Error() string {
	return fmt.Sprintf("fit: no convergence after %d iterations (rss=%g)", e.Iterations, e.LastRSS)
}

// Option configures Fit.
type Option func(*options)

type options struct {
	maxIterations int
	tolerance     float64
}

func defaultOptions() options {
	return options{maxIterations: 100, tolerance: 1e-10}
}

// MaxIterations caps the number of Levenberg-Marquardt iterations.
// The default is 100.
func MaxIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

// Tolerance sets the relative RSS improvement below which the fit
// counts as converged. The default is 1e-10.
func Tolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// Fit adjusts the model parameters to minimize the weighted residual
// sum of squares over the series samples.
//
// guess seeds the search and must carry model.ParamCount() values; a
// poor guess is the usual cause of divergence on nonlinear models.
// Series weights, when set, scale each residual by sqrt(w). The series
// coordinates are the model x values.
//
// Convergence is declared when an accepted step improves the RSS by
// less than the relative tolerance, or the RSS reaches the exact-fit
// floor. Running out of iterations returns a *FitDivergenceError
// carrying the last state; the input series is never modified.
func Fit(s *timeseries.Series, model Model, guess []float64, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	n := s.Len()
	p := model.ParamCount()
	if len(guess) != p {
		return nil, &timeseries.InvalidParameterError{
			Name:   "guess",
			Value:  len(guess),
			Reason: fmt.Sprintf("model %s takes %d parameters", model.Name(), p),
		}
	}
	if o.maxIterations < 1 {
		return nil, &timeseries.InvalidParameterError{Name: "maxIterations", Value: o.maxIterations, Reason: "must be at least 1"}
	}
	if math.IsNaN(o.tolerance) || o.tolerance < 0 {
		return nil, &timeseries.InvalidParameterError{Name: "tolerance", Value: o.tolerance, Reason: "must be non-negative"}
	}
	if n < p {
		return nil, &timeseries.InsufficientDataError{
			N:      n,
			Min:    p,
			Reason: fmt.Sprintf("fitting %d parameters needs at least %d samples", p, p),
		}
	}

	xs := s.Coords()
	ys := s.Values()
	sw := make([]float64, n)
	for i := range sw {
		sw[i] = 1
	}
	if s.Weighted() {
		for i, w := range s.Weights() {
			sw[i] = math.Sqrt(w)
		}
	}

	residuals := func(ps []float64) ([]float64, float64) {
		r := make([]float64, n)
		var rss float64
		for i := range r {
			r[i] = sw[i] * (ys[i] - model.Evaluate(xs[i], ps))
			rss += r[i] * r[i]
		}
		return r, rss
	}

	// Exact fits bottom out at rounding noise rather than a relative
	// improvement, so convergence also accepts an absolute RSS floor
	// scaled to the data magnitude.
	var floor float64
	{
		var sy float64
		for i := range ys {
			v := sw[i] * ys[i]
			sy += v * v
		}
		floor = 1e-20 * math.Max(sy, 1)
	}

	params := make([]float64, p)
	copy(params, guess)

	res, rss := residuals(params)
	if math.IsNaN(rss) || math.IsInf(rss, 0) {
		return nil, &FitDivergenceError{Iterations: 0, LastParams: params, LastRSS: rss}
	}

	lambda := 1e-3
	iterations := 0
	converged := rss <= floor

	for !converged && iterations < o.maxIterations {
		iterations++

		jac := jacobian(model, xs, sw, params)
		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)

		jtr := mat.NewVecDense(p, nil)
		for j := 0; j < p; j++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += jac.At(i, j) * res[i]
			}
			jtr.SetVec(j, sum)
		}

		improved := false
		for tries := 0; tries < 32; tries++ {
			aug := mat.NewDense(p, p, nil)
			aug.Copy(&jtj)
			for j := 0; j < p; j++ {
				d := jtj.At(j, j)
				if d == 0 {
					d = 1e-12
				}
				aug.Set(j, j, d+lambda*math.Abs(d))
			}

			var delta mat.VecDense
			if err := delta.SolveVec(aug, jtr); err != nil {
				lambda *= 10
				continue
			}

			trial := make([]float64, p)
			for j := range trial {
				trial[j] = params[j] + delta.AtVec(j)
			}

			trialRes, trialRSS := residuals(trial)
			if math.IsNaN(trialRSS) || trialRSS > rss {
				lambda *= 10
				continue
			}

			rel := (rss - trialRSS) / rss
			params, res, rss = trial, trialRes, trialRSS
			if lambda > 1e-12 {
				lambda /= 10
			}
			improved = true
			if rel <= o.tolerance || rss <= floor {
				converged = true
			}
			break
		}

		if !improved {
			break
		}
	}

	if !converged {
		return nil, &FitDivergenceError{Iterations: iterations, LastParams: params, LastRSS: rss}
	}

	cov, ill := covariance(model, xs, sw, params, rss, n, p)
	return &Result{
		Params:         params,
		Covariance:     cov,
		RSS:            rss,
		Iterations:     iterations,
		Converged:      true,
		IllConditioned: ill,
	}, nil
}

// jacobian builds the n x p forward-difference Jacobian of the weighted
// model values. Column j uses step sqrtEps*max(|p_j|, 1).
func jacobian(model Model, xs, sw, params []float64) *mat.Dense {
	n := len(xs)
	p := len(params)
	jac := mat.NewDense(n, p, nil)

	base := make([]float64, n)
	for i := range base {
		base[i] = model.Evaluate(xs[i], params)
	}

	bumped := make([]float64, p)
	copy(bumped, params)
	for j := 0; j < p; j++ {
		h := sqrtEps * math.Max(math.Abs(params[j]), 1)
		bumped[j] = params[j] + h
		for i := 0; i < n; i++ {
			jac.Set(i, j, sw[i]*(model.Evaluate(xs[i], bumped)-base[i])/h)
		}
		bumped[j] = params[j]
	}
	return jac
}

// covariance inverts J^T J at the solution and scales by RSS/(n-p).
func covariance(model Model, xs, sw, params []float64, rss float64, n, p int) ([][]float64, bool) {
	nanMatrix := func() [][]float64 {
		m := make([][]float64, p)
		for i := range m {
			m[i] = make([]float64, p)
			for j := range m[i] {
				m[i][j] = math.NaN()
			}
		}
		return m
	}

	if n <= p {
		return nanMatrix(), true
	}

	jac := jacobian(model, xs, sw, params)
	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return nanMatrix(), true
	}

	sigma2 := rss / float64(n-p)
	cov := make([][]float64, p)
	for i := range cov {
		cov[i] = make([]float64, p)
		for j := range cov[i] {
			cov[i][j] = sigma2 * (inv.At(i, j) + inv.At(j, i)) / 2
		}
	}

	ill := false
	for i := 0; i < p; i++ {
		if !(cov[i][i] >= 0) {
			cov[i][i] = math.NaN()
			ill = true
		}
	}
	return cov, ill
}
