// Package pipeline runs one aggregation pass: collect, normalize, filter,
// dedup, classify, score and emit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-router/internal/ai"
	"github.com/spigell/job-router/internal/dedup"
	"github.com/spigell/job-router/internal/filtering"
	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
	"github.com/spigell/job-router/internal/sink"
	"github.com/spigell/job-router/internal/sources"
)

const DefaultScorerConcurrency = 4

var (
	ErrAdapterFailure  = sources.ErrAdapterFailure
	ErrSinkWrite       = errors.New("sink write failure")
	ErrSinkUnavailable = errors.New("sink unavailable")
)

type Options struct {
	AdapterRetries     int           `mapstructure:"adapter-retries"`
	AdapterTimeout     time.Duration `mapstructure:"adapter-timeout"`
	AdapterConcurrency int           `mapstructure:"adapter-concurrency"`
	// PerCategoryLimit keeps the top N rows per category. Zero keeps all.
	PerCategoryLimit  int `mapstructure:"per-category-limit"`
	ScorerConcurrency int `mapstructure:"scorer-concurrency"`

	Profile string             `mapstructure:"-" json:"-"`
	Filters *filtering.Config  `mapstructure:"-" json:"-"`
	Signals *signals.Extractor `mapstructure:"-" json:"-"`
	Logger  *zap.Logger        `mapstructure:"-" json:"-"`
	Now     func() time.Time   `mapstructure:"-" json:"-"`
}

func (o Options) withDefaults() Options {
	o.Logger = logger.OrNop(o.Logger)
	if o.Signals == nil {
		o.Signals = signals.New(signals.Lists{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.ScorerConcurrency <= 0 {
		o.ScorerConcurrency = DefaultScorerConcurrency
	}
	if o.PerCategoryLimit < 0 {
		o.PerCategoryLimit = 0
	}
	return o
}

// Run stages and emits in one go.
func Run(ctx context.Context, adapters []sources.Adapter, scorer ai.Scorer, port sink.Port, opts Options) (*RunReport, error) {
	batch, err := Stage(ctx, adapters, scorer, port, opts)
	if err != nil {
		return nil, err
	}
	return batch.Emit(ctx, port), nil
}

// Stage runs everything up to writing. The sink is only read. A sink that
// cannot be read fails the stage with ErrSinkUnavailable.
func Stage(ctx context.Context, adapters []sources.Adapter, scorer ai.Scorer, port sink.Port, opts Options) (*Batch, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	b := &Batch{
		runID:   uuid.NewString(),
		opts:    opts,
		index:   dedup.New(),
		staged:  make(map[routing.Category][]*Staged),
		started: opts.Now(),
	}
	b.report = newReport(b.runID, b.started)
	log = log.With(zap.String("run_id", b.runID))
	b.opts.Logger = log

	log.Info("collecting postings", zap.Int("adapters", len(adapters)))
	results := sources.Collect(ctx, adapters, sources.Options{
		Timeout:     opts.AdapterTimeout,
		Retries:     opts.AdapterRetries,
		Concurrency: opts.AdapterConcurrency,
	}, log)

	jobs := b.normalize(results)

	if opts.Filters != nil {
		before := len(jobs)
		filtered, err := filtering.Run(ctx, opts.Filters, filtering.Deps{
			Logger:  log,
			Signals: opts.Signals,
			Now:     opts.Now,
		}, filtering.New(opts.Filters), jobs)
		if err != nil {
			return nil, fmt.Errorf("filtering: %w", err)
		}
		jobs = filtered
		b.report.Filtered = before - len(jobs)
	}

	if err := b.loadIndex(ctx, port); err != nil {
		return nil, err
	}

	b.classify(jobs)

	if scorer != nil {
		b.score(ctx, scorer)
	}

	b.truncate()

	log.Info("staged",
		zap.Int("staged", b.Len()),
		zap.Int("duplicates", b.report.Total.Duplicate),
		zap.Int("malformed", b.report.Malformed),
		zap.Int("filtered", b.report.Filtered),
	)

	return b, nil
}

func (b *Batch) normalize(results []sources.Result) []job.Job {
	var jobs []job.Job

	for _, res := range sources.Failed(results) {
		b.report.AdapterFailures = append(b.report.AdapterFailures, AdapterFailure{
			Source:   res.Source,
			Attempts: res.Attempts,
			Err:      res.Err.Error(),
		})
	}

	for _, res := range results {
		b.report.Sources = append(b.report.Sources, SourceCount{
			Source:   res.Source,
			Postings: len(res.Postings),
			Attempts: res.Attempts,
		})

		if res.Err != nil {
			continue
		}

		for _, raw := range res.Postings {
			b.report.Fetched++

			j, err := job.Normalize(raw, res.Source)
			if err != nil {
				b.report.Malformed++
				b.opts.Logger.Warn("dropping malformed posting", zap.String(logger.FieldSource, res.Source), zap.Error(err))
				continue
			}
			jobs = append(jobs, j)
		}
	}

	return jobs
}

// loadIndex reads every destination before anything is staged. A partial
// read is never used.
func (b *Batch) loadIndex(ctx context.Context, port sink.Port) error {
	dests := routing.Categories()

	existing := make(map[routing.Category][]string, len(dests))
	for _, dest := range dests {
		keys, err := port.ReadKeys(ctx, dest)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", ErrSinkUnavailable, dest, err)
		}
		existing[dest] = keys
	}

	loaded := b.index.BulkLoad(existing)
	b.opts.Logger.Info("dedup index loaded", zap.Int("keys", loaded))

	return nil
}

func (b *Batch) classify(jobs []job.Job) {
	// within-run view so a URL seen twice in this run is staged once
	seen := dedup.New()

	for _, j := range jobs {
		sig := b.opts.Signals.Derive(j)
		category, reason := routing.Explain(j, sig)

		if b.index.Contains(j.Key()) || !seen.CheckAndAdd(j.Key()) {
			b.report.count(category).Duplicate++
			b.report.Total.Duplicate++
			b.opts.Logger.Debug("duplicate", logger.JobFields(j)...)
			continue
		}

		b.seq++
		b.staged[category] = append(b.staged[category], &Staged{
			Job:      j,
			Signals:  sig,
			Category: category,
			Rule:     reason,
			seq:      b.seq,
		})
	}
}

// score fills Assessment on every staged job. Once ctx is done no new
// calls are made and the rest get the fallback.
func (b *Batch) score(ctx context.Context, scorer ai.Scorer) {
	var g errgroup.Group
	g.SetLimit(b.opts.ScorerConcurrency)

	for _, s := range b.inOrder() {
		if err := ctx.Err(); err != nil {
			a := ai.Fallback(err)
			s.Assessment = &a
			continue
		}

		g.Go(func() error {
			a := assess(ctx, scorer, ai.Request{
				Title:       s.Job.Title,
				Company:     s.Job.Company,
				Description: s.Job.Description,
				Profile:     b.opts.Profile,
			})
			if a.Fallback {
				b.opts.Logger.Warn("using fallback score", append(logger.JobFields(s.Job), zap.Error(a.Err))...)
			}
			s.Assessment = &a
			return nil
		})
	}
	_ = g.Wait()
}

// assess turns every scorer outcome into an assessment within bounds.
func assess(ctx context.Context, scorer ai.Scorer, req ai.Request) ai.Assessment {
	if err := ctx.Err(); err != nil {
		return ai.Fallback(err)
	}

	a, err := scorer.Score(ctx, req)
	if err != nil {
		return ai.Fallback(err)
	}
	if a.Score < ai.MinScore || a.Score > ai.MaxScore {
		a.Score = ai.FallbackScore
	}
	return a
}

// truncate keeps the top PerCategoryLimit jobs per category. Unscored jobs
// rank below scored ones and keep insertion order among themselves.
func (b *Batch) truncate() {
	limit := b.opts.PerCategoryLimit
	if limit <= 0 {
		return
	}

	for category, staged := range b.staged {
		sort.SliceStable(staged, func(i, k int) bool {
			return staged[i].rank() > staged[k].rank()
		})

		if len(staged) > limit {
			dropped := len(staged) - limit
			b.report.count(category).Truncated += dropped
			b.report.Total.Truncated += dropped
			staged = staged[:limit]
		}
		b.staged[category] = staged
	}
}
