package filtering

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/signals"
)

// Filter represents a single filtering step applied to normalized jobs.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, jobs []job.Job) ([]job.Job, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger  *zap.Logger
	Signals *signals.Extractor
	Now     func() time.Time
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	TechStack         bool     `mapstructure:"tech-stack"`
	RemoteOnly        bool     `mapstructure:"remote-only"`
	ExcludedCompanies []string `mapstructure:"excluded-companies"`
	MaxAgeDays        int      `mapstructure:"max-age-days"`
	ExcludeFile       string   `mapstructure:"exclude-file"`
	// AppendAccepted writes emitted URLs back to ExcludeFile.
	AppendAccepted bool `mapstructure:"append-accepted"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// toggle carries the enabled state shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// New returns every known filter in execution order. Filters switched off by
// cfg are disabled but kept in the list so Describe can report them.
func New(cfg *Config) []Filter {
	steps := []Filter{
		NewCompanies(),
		NewExcludeFile(),
		NewFreshness(),
		NewRemoteOnly(),
		NewTechStack(),
	}

	if cfg == nil || !cfg.TechStack {
		DisableByName(steps, techStackName, "filters.tech-stack is off")
	}
	if cfg == nil || !cfg.RemoteOnly {
		DisableByName(steps, remoteOnlyName, "filters.remote-only is off")
	}

	return steps
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates the enabled filters, then applies them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, jobs []job.Job) ([]job.Job, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Signals == nil {
		deps.Signals = signals.New(signals.Lists{})
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns the jobs for which pred holds, preserving order.
func keep(jobs []job.Job, pred func(job.Job) bool) ([]job.Job, Step) {
	out := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if pred(j) {
			out = append(out, j)
		}
	}
	return out, Step{Initial: len(jobs), Dropped: len(jobs) - len(out), Left: len(out)}
}
