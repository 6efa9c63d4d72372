// Package timeseries provides the sample series type shared by all numkit
// analyses.
//
// A [Series] couples an ordered slice of values with coordinates (uniform
// spacing or an explicit strictly increasing sequence) and optional
// per-sample weights. Construction validates the data once; analysis
// packages can then assume a well-formed series.
//
//	s, err := timeseries.New(values, 0.002)           // uniform 2 fs spacing
//	s, err := timeseries.NewWithCoords(times, values) // explicit coordinates
//
// The package also defines the error taxonomy shared by the analysis
// packages: [InvalidSeriesError], [InvalidParameterError], and
// [InsufficientDataError]. All are matchable with errors.As.
package timeseries
