package fit

import (
	"fmt"
	"math"

	"github.com/san-kum/numkit/timeseries"
)

// GridSearch evaluates the model on every combination of candidate
// parameter values and returns the combination with the smallest
// weighted residual sum of squares, along with that sum.
//
// grid carries one candidate slice per model parameter. The search is
// exhaustive, so it suits coarse grids: a few magnitudes per parameter
// to locate the right valley, with [Fit] refining from there. This is
// the usual remedy when a multi-exponential fit stalls in a side
// minimum. Combinations where the residual comes out NaN or Inf are
// skipped; if every combination does, a *FitDivergenceError is
// returned.
func GridSearch(s *timeseries.Series, model Model, grid [][]float64) ([]float64, float64, error) {
	p := model.ParamCount()
	if len(grid) != p {
		return nil, 0, &timeseries.InvalidParameterError{
			Name:   "grid",
			Value:  len(grid),
			Reason: fmt.Sprintf("model %s takes %d parameters", model.Name(), p),
		}
	}
	for j, candidates := range grid {
		if len(candidates) == 0 {
			return nil, 0, &timeseries.InvalidParameterError{
				Name:   "grid",
				Value:  j,
				Reason: "empty candidate list",
			}
		}
	}

	xs := s.Coords()
	ys := s.Values()
	sw := make([]float64, s.Len())
	for i := range sw {
		sw[i] = 1
	}
	if s.Weighted() {
		for i, w := range s.Weights() {
			sw[i] = math.Sqrt(w)
		}
	}

	best := math.Inf(1)
	var bestParams []float64
	current := make([]float64, p)

	var walk func(depth int)
	walk = func(depth int) {
		if depth == p {
			var rss float64
			for i := range xs {
				r := sw[i] * (ys[i] - model.Evaluate(xs[i], current))
				rss += r * r
			}
			if rss < best {
				best = rss
				bestParams = append([]float64(nil), current...)
			}
			return
		}
		for _, v := range grid[depth] {
			current[depth] = v
			walk(depth + 1)
		}
	}
	walk(0)

	if bestParams == nil {
		return nil, 0, &FitDivergenceError{Iterations: 0, LastRSS: math.Inf(1)}
	}
	return bestParams, best, nil
}
