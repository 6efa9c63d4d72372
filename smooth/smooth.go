// Package smooth provides noise-reduction filters for time series.
//
// All functions return a new [timeseries.Series] and leave the input
// untouched. Weights are not carried over: window mixing invalidates
// per-sample weights, so smoothed series are always unweighted.
package smooth

import (
	"github.com/san-kum/numkit/timeseries"
)

// Mode selects how RunningAverage handles series boundaries.
type Mode int

const (
	// ModeValid keeps only windows fully inside the series. The result
	// is window-1 samples shorter than the input.
	ModeValid Mode = iota
	// ModeSame preserves the input length by replicating boundary
	// values into windows that overhang either end.
	ModeSame
)

func (m Mode) String() string {
	switch m {
	case ModeValid:
		return "valid"
	case ModeSame:
		return "same"
	}
	return "unknown"
}

// ParseMode converts a mode name from config or CLI input.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "valid":
		return ModeValid, nil
	case "same":
		return ModeSame, nil
	}
	return 0, &timeseries.InvalidParameterError{Name: "mode", Value: name, Reason: "must be valid or same"}
}

// RunningAverage smooths s with an unweighted moving window.
//
// In ModeValid each output sample is the mean of one full window and
// its coordinate is the mean of the window coordinates. In ModeSame the
// output has the same length and coordinates as the input; windows that
// extend past the ends reuse the boundary samples.
func RunningAverage(s *timeseries.Series, window int, mode Mode) (*timeseries.Series, error) {
	if window < 1 || window > s.Len() {
		return nil, &timeseries.InvalidParameterError{
			Name:   "window",
			Value:  window,
			Reason: "must be between 1 and the series length",
		}
	}

	switch mode {
	case ModeValid:
		return runningValid(s, window)
	case ModeSame:
		return runningSame(s, window)
	}
	return nil, &timeseries.InvalidParameterError{Name: "mode", Value: int(mode), Reason: "unknown smoothing mode"}
}

func runningValid(s *timeseries.Series, window int) (*timeseries.Series, error) {
	n := s.Len()
	w := float64(window)
	values := make([]float64, n-window+1)
	coords := make([]float64, n-window+1)

	var vsum, csum float64
	for i := 0; i < window; i++ {
		vsum += s.At(i)
		csum += s.Coord(i)
	}
	values[0] = vsum / w
	coords[0] = csum / w
	for i := 1; i < len(values); i++ {
		vsum += s.At(i+window-1) - s.At(i-1)
		csum += s.Coord(i+window-1) - s.Coord(i-1)
		values[i] = vsum / w
		coords[i] = csum / w
	}

	return timeseries.NewWithCoords(coords, values)
}

func runningSame(s *timeseries.Series, window int) (*timeseries.Series, error) {
	n := s.Len()
	left := (window - 1) / 2
	values := make([]float64, n)

	for i := range values {
		var sum float64
		for j := i - left; j < i-left+window; j++ {
			k := j
			if k < 0 {
				k = 0
			} else if k >= n {
				k = n - 1
			}
			sum += s.At(k)
		}
		values[i] = sum / float64(window)
	}

	return carryCoords(s, values)
}

// Exponential applies an exponentially weighted moving average with
// smoothing factor alpha in (0, 1]. The first output sample equals the
// first input sample; alpha = 1 reproduces the input.
func Exponential(s *timeseries.Series, alpha float64) (*timeseries.Series, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, &timeseries.InvalidParameterError{Name: "alpha", Value: alpha, Reason: "must be in (0, 1]"}
	}

	values := make([]float64, s.Len())
	values[0] = s.At(0)
	for i := 1; i < len(values); i++ {
		values[i] = alpha*s.At(i) + (1-alpha)*values[i-1]
	}

	return carryCoords(s, values)
}

// carryCoords rebuilds a series with the input's coordinate grid.
func carryCoords(s *timeseries.Series, values []float64) (*timeseries.Series, error) {
	if s.Uniform() && s.Coord(0) == 0 {
		return timeseries.New(values, s.Step())
	}
	return timeseries.NewWithCoords(s.Coords(), values)
}
