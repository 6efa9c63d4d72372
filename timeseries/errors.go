package timeseries

import "fmt"

// InvalidSeriesError indicates a series could not be constructed from the
// given data: empty input, mismatched lengths, non-increasing coordinates,
// non-finite samples, or bad weights.
type InvalidSeriesError struct {
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	return "timeseries: invalid series: " + e.Reason
}

// InvalidParameterError indicates an analysis or configuration parameter
// outside its valid range.
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("timeseries: invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// InsufficientDataError indicates a series too short for the requested
// statistic, or one whose statistics are undefined (e.g. zero variance).
type InsufficientDataError struct {
	N      int
	Min    int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("timeseries: insufficient data (n=%d): %s", e.N, e.Reason)
	}
	return fmt.Sprintf("timeseries: insufficient data: need at least %d samples, got %d", e.Min, e.N)
}
