package stats

// Option configures Autocorrelation and ErrorEstimate.
type Option func(*options)

type options struct {
	maxLag    int
	threshold float64
	tau       float64
	hasTau    bool
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MaxLag caps the number of lags the autocorrelation is estimated over.
// Zero (the default) picks half the series length.
func MaxLag(lag int) Option {
	return func(o *options) { o.maxLag = lag }
}

// Threshold sets the correlation level that ends the correlation time
// sum: integration stops at the first lag whose coefficient drops to
// the threshold or below. The default is 0.
func Threshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// WithCorrelationTime supplies a precomputed integrated correlation
// time to ErrorEstimate, skipping the internal autocorrelation pass.
// Autocorrelation ignores it.
func WithCorrelationTime(tau float64) Option {
	return func(o *options) {
		o.tau = tau
		o.hasTau = true
	}
}
