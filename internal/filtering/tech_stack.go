package filtering

import (
	"context"

	"github.com/spigell/job-router/internal/job"
)

const techStackName = "tech_stack"

type techStackFilter struct {
	toggle
}

// NewTechStack keeps jobs whose title or description mentions a tech-stack keyword.
func NewTechStack() Filter {
	return &techStackFilter{}
}

func (f *techStackFilter) Name() string { return techStackName }

func (f *techStackFilter) Validate(*Config) error { return nil }

func (f *techStackFilter) Apply(_ context.Context, deps Deps, jobs []job.Job) ([]job.Job, Step, error) {
	out, step := keep(jobs, func(j job.Job) bool {
		return deps.Signals.TechStackMatch(j.Title, j.Description)
	})
	return out, step, nil
}

func (f *techStackFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
