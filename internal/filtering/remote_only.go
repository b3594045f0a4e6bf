package filtering

import (
	"context"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/signals"
)

const remoteOnlyName = "remote_only"

type remoteOnlyFilter struct {
	toggle
}

// NewRemoteOnly drops jobs that never mention remote work.
func NewRemoteOnly() Filter {
	return &remoteOnlyFilter{}
}

func (f *remoteOnlyFilter) Name() string { return remoteOnlyName }

func (f *remoteOnlyFilter) Validate(*Config) error { return nil }

func (f *remoteOnlyFilter) Apply(_ context.Context, _ Deps, jobs []job.Job) ([]job.Job, Step, error) {
	out, step := keep(jobs, func(j job.Job) bool {
		return signals.MentionsRemote(j.Location, j.Description)
	})
	return out, step, nil
}

func (f *remoteOnlyFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
