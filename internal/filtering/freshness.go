package filtering

import (
	"context"
	"strconv"
	"time"

	"github.com/spigell/job-router/internal/job"
)

const DefaultMaxAgeDays = 7

type freshnessFilter struct {
	toggle
	maxAge time.Duration
}

// NewFreshness drops jobs posted more than max-age-days ago. Jobs without a
// parseable date are kept.
func NewFreshness() Filter {
	return &freshnessFilter{}
}

func (f *freshnessFilter) Name() string { return "freshness" }

func (f *freshnessFilter) Validate(cfg *Config) error {
	days := DefaultMaxAgeDays
	if cfg != nil && cfg.MaxAgeDays != 0 {
		days = cfg.MaxAgeDays
	}
	f.maxAge = 0
	if days > 0 {
		f.maxAge = time.Duration(days) * 24 * time.Hour
	}
	return nil
}

func (f *freshnessFilter) Apply(_ context.Context, deps Deps, jobs []job.Job) ([]job.Job, Step, error) {
	if f.maxAge <= 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	cutoff := deps.Now().Add(-f.maxAge)
	out, step := keep(jobs, func(j job.Job) bool {
		posted, ok := job.ParseDate(j.PostedDate)
		return !ok || !posted.Before(cutoff)
	})
	return out, step, nil
}

func (f *freshnessFilter) Status() Status {
	details := map[string]string{}
	if f.maxAge > 0 {
		details["max_age_days"] = strconv.Itoa(int(f.maxAge / (24 * time.Hour)))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
