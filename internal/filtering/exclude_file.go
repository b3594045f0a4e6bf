package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
)

// ExcludedJob is one entry of the exclude file.
type ExcludedJob struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
	Added   string `json:"added,omitempty"`
}

type ExcludedJobs struct {
	Items []ExcludedJob `json:"items"`
}

func (e *ExcludedJobs) URLs() map[string]bool {
	urls := make(map[string]bool, len(e.Items))
	for _, item := range e.Items {
		if u := strings.TrimSpace(item.URL); u != "" {
			urls[u] = true
		}
	}
	return urls
}

// ReadExcludeFile treats a missing or empty file as an empty list.
func ReadExcludeFile(path string) (*ExcludedJobs, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ExcludedJobs{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	return &excluded, nil
}

// AppendExcludeFile adds the URLs of jobs not yet listed. Jobs without a URL
// are skipped. Returns the number of entries added.
func AppendExcludeFile(path string, jobs []job.Job, now time.Time) (int, error) {
	excluded, err := ReadExcludeFile(path)
	if err != nil {
		return 0, err
	}

	seen := excluded.URLs()
	added := 0
	for _, j := range jobs {
		u := strings.TrimSpace(j.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		excluded.Items = append(excluded.Items, ExcludedJob{
			URL:     u,
			Title:   j.Title,
			Company: j.Company,
			Added:   now.Format(time.DateOnly),
		})
		added++
	}
	if added == 0 {
		return 0, nil
	}

	data, err := json.MarshalIndent(excluded, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return 0, fmt.Errorf("writing %q: %w", path, err)
	}
	return added, nil
}

// writeFileAtomic writes to a temp file next to path and renames it over
// path, so a crash never leaves a truncated exclude file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes jobs listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, jobs []job.Job) ([]job.Job, Step, error) {
	if f.path == "" {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	excluded, err := ReadExcludeFile(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	urls := excluded.URLs()
	out, step := keep(jobs, func(j job.Job) bool {
		return !urls[strings.TrimSpace(j.URL)]
	})

	if step.Dropped > 0 {
		deps.Logger.Debug("excluding jobs based on exclude file",
			zap.String("path", f.path),
			zap.Int("excluded", step.Dropped),
			zap.Int("jobs_left", step.Left),
		)
	}

	return out, step, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
