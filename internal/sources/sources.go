// Package sources fetches raw postings from job boards and ATS APIs.
package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/utils"
)

const (
	DefaultTimeout      = 60 * time.Second
	DefaultBackoff      = 2 * time.Second
	DefaultMaxPerSource = 50

	maxBackoff = 30 * time.Second
)

var ErrAdapterFailure = errors.New("adapter failure")

// Adapter yields raw postings from one source. Implementations must honour
// ctx cancellation.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]job.RawPosting, error)
}

// Result is the outcome of one adapter. Err is nil on success and wraps
// ErrAdapterFailure otherwise.
type Result struct {
	Source   string
	Postings []job.RawPosting
	Err      error
	Attempts int
}

type Options struct {
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after the first failure.
	Retries int
	Backoff time.Duration
	// Concurrency caps adapters running at once. Zero means no cap.
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	return o
}

// Collect runs all adapters concurrently and returns one Result per adapter
// in adapter order. A failing adapter never affects the others.
func Collect(ctx context.Context, adapters []Adapter, opts Options, l *zap.Logger) []Result {
	opts = opts.withDefaults()
	l = logger.OrNop(l)

	results := make([]Result, len(adapters))

	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, a := range adapters {
		g.Go(func() error {
			results[i] = fetch(ctx, a, opts, l.With(zap.String(logger.FieldSource, a.Name())))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func fetch(ctx context.Context, a Adapter, opts Options, l *zap.Logger) Result {
	res := Result{Source: a.Name()}

	var lastErr error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		res.Attempts++
		started := time.Now()

		postings, err := safeFetch(ctx, a, opts.Timeout)
		if err == nil {
			res.Postings = postings
			l.Info("source fetched",
				zap.Int("postings", len(postings)),
				zap.Int("attempt", res.Attempts),
				zap.Duration("took", time.Since(started)),
			)
			return res
		}

		lastErr = err
		l.Warn("source fetch failed", zap.Int("attempt", res.Attempts), zap.Error(err))

		if attempt == opts.Retries {
			break
		}
		if err := utils.WaitFor(ctx, utils.Backoff(opts.Backoff, maxBackoff, attempt+1)); err != nil {
			lastErr = err
			break
		}
	}

	res.Err = fmt.Errorf("%w: %s: %w", ErrAdapterFailure, a.Name(), lastErr)
	return res
}

func safeFetch(ctx context.Context, a Adapter, timeout time.Duration) (postings []job.RawPosting, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			postings, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	return a.Fetch(ctx)
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
