// Package batch runs error estimation over many series concurrently.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/numkit/stats"
	"github.com/san-kum/numkit/timeseries"
)

// Options configures a batch run.
type Options struct {
	// Workers bounds the number of concurrent estimations. Zero or
	// negative means GOMAXPROCS.
	Workers int

	// Stats options are forwarded to every stats.ErrorEstimate call.
	Stats []stats.Option
}

// Report is the outcome for one input series. Exactly one of Estimate
// and Err is set.
type Report struct {
	Index    int
	Estimate *stats.Estimate
	Err      error
}

// Run estimates every series and returns one report per input, in input
// order. Estimations are independent: a failure on one series is
// reported at its index and never disturbs the others. Canceling the
// context abandons series not yet started; their reports carry the
// context error.
func Run(ctx context.Context, series []*timeseries.Series, opts Options) []Report {
	reports := make([]Report, len(series))
	for i := range reports {
		reports[i].Index = i
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(series) {
		workers = len(series)
	}
	if workers < 1 {
		return reports
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				reports[idx].Estimate, reports[idx].Err = estimate(series[idx], opts.Stats)
			}
		}()
	}

feed:
	for i := range series {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range reports {
			if reports[i].Estimate == nil && reports[i].Err == nil {
				reports[i].Err = err
			}
		}
	}

	return reports
}

func estimate(s *timeseries.Series, opts []stats.Option) (*stats.Estimate, error) {
	if s == nil {
		return nil, &timeseries.InvalidSeriesError{Reason: "nil series"}
	}
	return stats.ErrorEstimate(s, opts...)
}
