// Package runner provides concurrent execution for suite runs.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/diagcheck/diagcheck/pkg/defaults"
	"github.com/diagcheck/diagcheck/pkg/duration"
	"github.com/diagcheck/diagcheck/pkg/manifest"
)

// Result represents the result of processing a single case.
type Result[T any] struct {
	Case     *manifest.Case
	Data     T
	Error    error
	Duration time.Duration
}

// Stats tracks execution statistics.
type Stats struct {
	Total      int64
	Completed  int64
	Successful int64
	Failed     int64
	StartTime  time.Time
}

// RPS returns cases completed per second.
func (s *Stats) RPS() float64 {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Completed)) / elapsed
}

// Progress returns completion percentage (0-100).
func (s *Stats) Progress() float64 {
	total := atomic.LoadInt64(&s.Total)
	if total == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Completed)) / float64(total) * 100
}

// Runner executes case tasks concurrently.
type Runner[T any] struct {
	// Concurrency is the number of parallel compile jobs.
	Concurrency int

	// RateLimit is max jobs per second (0 = unlimited). Shared CI
	// runners use this to keep compile jobs from starving neighbors.
	RateLimit int

	// Timeout per case.
	Timeout time.Duration

	// MaxErrors aborts the run after this many task errors
	// (0 = never abort). Mismatches are results, not errors; only
	// tool failures count.
	MaxErrors int

	// Stats tracks execution statistics.
	Stats Stats

	// OnProgress is called after each case completes.
	OnProgress func(completed, total int64, result Result[T])

	// OnError is called when a case fails with a tool error.
	OnError func(c *manifest.Case, err error)

	limiter *rate.Limiter
}

// NewRunner creates a new runner with default settings.
func NewRunner[T any]() *Runner[T] {
	return &Runner[T]{
		Concurrency: defaults.ConcurrencyMedium,
		Timeout:     duration.CompileDefault,
		MaxErrors:   defaults.ErrorThreshold,
	}
}

// TaskFunc is the function type for processing a single case.
type TaskFunc[T any] func(ctx context.Context, c *manifest.Case) (T, error)

// Run executes the task for all cases concurrently and returns the
// results in completion order.
func (r *Runner[T]) Run(ctx context.Context, cases []*manifest.Case, task TaskFunc[T]) []Result[T] {
	results := make([]Result[T], 0, len(cases))
	r.RunWithCallback(ctx, cases, task, func(res Result[T]) {
		results = append(results, res)
	})
	return results
}

// RunWithCallback executes tasks and streams each result to callback.
// The callback runs on the collecting goroutine; writers behind it
// need no locking.
func (r *Runner[T]) RunWithCallback(ctx context.Context, cases []*manifest.Case, task TaskFunc[T], callback func(Result[T])) {
	if len(cases) == 0 {
		return
	}

	r.Stats = Stats{
		Total:     int64(len(cases)),
		StartTime: time.Now(),
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaults.ConcurrencyMedium
	}
	if concurrency > len(cases) {
		concurrency = len(cases)
	}

	sem := make(chan struct{}, concurrency)

	if r.RateLimit > 0 && r.limiter == nil {
		burst := r.RateLimit / 5
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(r.RateLimit), burst)
	}

	resultsChan := make(chan Result[T], len(cases))
	var wg sync.WaitGroup

	for _, c := range cases {
		select {
		case <-ctx.Done():
			goto cleanup
		default:
		}

		if r.MaxErrors > 0 && atomic.LoadInt64(&r.Stats.Failed) >= int64(r.MaxErrors) {
			atomic.AddInt64(&r.Stats.Completed, 1)
			resultsChan <- Result[T]{
				Case:  c,
				Error: fmt.Errorf("%w: %d failures, skipping remaining cases", ErrTooManyErrors, r.MaxErrors),
			}
			continue
		}

		if r.limiter != nil {
			_ = r.limiter.Wait(ctx)
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(c *manifest.Case) {
			defer wg.Done()
			defer func() { <-sem }()

			start := time.Now()

			taskCtx, cancel := context.WithTimeout(ctx, r.Timeout)
			defer cancel()

			data, err := task(taskCtx, c)

			result := Result[T]{
				Case:     c,
				Data:     data,
				Error:    err,
				Duration: time.Since(start),
			}

			atomic.AddInt64(&r.Stats.Completed, 1)
			if err == nil {
				atomic.AddInt64(&r.Stats.Successful, 1)
			} else {
				atomic.AddInt64(&r.Stats.Failed, 1)
				if r.OnError != nil {
					r.OnError(c, err)
				}
			}

			if r.OnProgress != nil {
				r.OnProgress(
					atomic.LoadInt64(&r.Stats.Completed),
					atomic.LoadInt64(&r.Stats.Total),
					result,
				)
			}

			resultsChan <- result
		}(c)
	}

cleanup:
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for result := range resultsChan {
		callback(result)
	}
}
