package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
)

type companiesFilter struct {
	toggle
	excluded map[string]bool
	names    []string
}

// NewCompanies creates a filter that removes jobs by companies configured in the config.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.excluded = map[string]bool{}
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, c := range cfg.ExcludedCompanies {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || f.excluded[c] {
			continue
		}
		f.excluded[c] = true
		f.names = append(f.names, c)
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, jobs []job.Job) ([]job.Job, Step, error) {
	if len(f.excluded) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	var dropped []string
	out, step := keep(jobs, func(j job.Job) bool {
		if f.excluded[strings.ToLower(strings.TrimSpace(j.Company))] {
			dropped = append(dropped, j.Title+" @ "+j.Company)
			return false
		}
		return true
	})

	if len(dropped) > 0 {
		deps.Logger.Debug("excluding jobs by companies",
			zap.Strings("excluded_companies", f.names),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", step.Left),
		)
	}

	return out, step, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["companies"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
