package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/ai"
	"github.com/spigell/job-router/internal/dedup"
	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
	"github.com/spigell/job-router/internal/sink"
)

// Staged is a classified job waiting to be written.
type Staged struct {
	Job        job.Job          `json:"job"`
	Signals    signals.Signals  `json:"signals"`
	Category   routing.Category `json:"category"`
	Rule       string           `json:"rule"`
	Assessment *ai.Assessment   `json:"assessment,omitempty"`

	seq int
}

func (s *Staged) rank() int {
	if s.Assessment == nil {
		return -1
	}
	return s.Assessment.Score
}

// Row renders s for the sink.
func (s *Staged) Row(runID string) sink.Row {
	row := sink.Row{
		Role:        s.Job.Title,
		Company:     s.Job.Company,
		Location:    s.Job.Location,
		Mode:        string(s.Signals.WorkMode),
		Link:        s.Job.URL,
		Source:      s.Job.Source,
		Salary:      s.Job.SalaryRange,
		PostedDate:  s.Job.PostedDate,
		Priority:    string(s.Signals.Priority),
		Seniority:   string(s.Signals.Seniority),
		Description: s.Job.Description,
		RunID:       runID,
	}
	if s.Assessment != nil {
		row.Score = s.Assessment.Score
		row.Scored = true
		row.Summary = s.Assessment.Reason
	}
	return row
}

// Batch is the output of Stage. It owns the dedup index for the run.
type Batch struct {
	runID   string
	opts    Options
	index   *dedup.Index
	staged  map[routing.Category][]*Staged
	seq     int
	started time.Time
	report  *RunReport
	emitted []job.Job
	done    bool
}

func (b *Batch) RunID() string { return b.runID }

// Len is the number of staged jobs.
func (b *Batch) Len() int {
	n := 0
	for _, s := range b.staged {
		n += len(s)
	}
	return n
}

// Staged returns the jobs of one category in emission order.
func (b *Batch) Staged(category routing.Category) []*Staged {
	return b.staged[category]
}

// inOrder returns every staged job in encounter order.
func (b *Batch) inOrder() []*Staged {
	out := make([]*Staged, 0, b.Len())
	for _, c := range routing.Categories() {
		out = append(out, b.staged[c]...)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].seq < out[k].seq })
	return out
}

// Report returns the report as it stands. Before Emit it carries no
// accepted or failed counts.
func (b *Batch) Report() *RunReport {
	return b.report
}

// Emitted returns the jobs written by Emit.
func (b *Batch) Emitted() []job.Job {
	return b.emitted
}

// Emit prepares the destinations and appends every staged job to its
// destination. Writes run without the caller's cancellation so a shutdown
// still flushes what was staged. A row that fails is counted and skipped,
// a failed prepare counts every staged row as failed. Emit is a no-op the
// second time.
func (b *Batch) Emit(ctx context.Context, port sink.Port) *RunReport {
	if b.done {
		return b.report
	}
	b.done = true

	ctx = context.WithoutCancel(ctx)
	log := b.opts.Logger

	if err := sink.Prepare(ctx, port, routing.Categories()); err != nil {
		err = fmt.Errorf("%w: preparing destinations: %w", ErrSinkWrite, err)
		log.Error("destinations not prepared, nothing written", zap.Error(err))
		for _, category := range routing.Categories() {
			n := len(b.staged[category])
			b.report.count(category).Failed += n
			b.report.Total.Failed += n
		}
		b.report.FinishedAt = b.opts.Now()
		return b.report
	}

	for _, category := range routing.Categories() {
		for _, s := range b.staged[category] {
			counts := b.report.count(category)

			if err := port.Append(ctx, category, s.Row(b.runID)); err != nil {
				err = fmt.Errorf("%w: %s: %w", ErrSinkWrite, category, err)
				counts.Failed++
				b.report.Total.Failed++
				log.Warn("row not written", append(logger.JobFields(s.Job),
					zap.String(logger.FieldCategory, string(category)),
					zap.Error(err),
				)...)
				continue
			}

			b.index.Add(s.Job.Key())
			counts.Accepted++
			b.report.Total.Accepted++
			b.report.observe(s)
			b.emitted = append(b.emitted, s.Job)
		}
	}

	b.report.FinishedAt = b.opts.Now()
	log.Info("emitted",
		zap.Int("accepted", b.report.Total.Accepted),
		zap.Int("failed", b.report.Total.Failed),
	)

	return b.report
}

// Dump writes the staged batch to a temporary JSON file and returns its path.
func (b *Batch) Dump() (string, error) {
	file, err := os.CreateTemp("", "job-router_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	payload := struct {
		RunID  string                         `json:"run_id"`
		Staged map[routing.Category][]*Staged `json:"staged"`
	}{RunID: b.runID, Staged: b.staged}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return file.Name(), nil
}
