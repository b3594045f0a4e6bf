package pipeline

import (
	"time"

	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
)

type Counts struct {
	Accepted  int `json:"accepted"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
	Truncated int `json:"truncated"`
}

type AdapterFailure struct {
	Source   string `json:"source"`
	Attempts int    `json:"attempts"`
	Err      string `json:"error"`
}

type SourceCount struct {
	Source   string `json:"source"`
	Postings int    `json:"postings"`
	Attempts int    `json:"attempts"`
}

// RunReport aggregates every per-item outcome of a run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Fetched   int `json:"fetched"`
	Malformed int `json:"malformed"`
	Filtered  int `json:"filtered"`

	Categories map[routing.Category]*Counts `json:"categories"`
	Total      Counts                       `json:"total"`

	// Accepted rows only.
	HighPriority int                       `json:"high_priority"`
	Seniority    map[signals.Seniority]int `json:"seniority"`
	Scored       int                       `json:"scored"`
	Fallbacks    int                       `json:"fallbacks"`

	Sources         []SourceCount    `json:"sources"`
	AdapterFailures []AdapterFailure `json:"adapter_failures,omitempty"`
}

func newReport(runID string, started time.Time) *RunReport {
	r := &RunReport{
		RunID:      runID,
		StartedAt:  started,
		Categories: make(map[routing.Category]*Counts),
		Seniority:  make(map[signals.Seniority]int),
	}
	for _, c := range routing.Categories() {
		r.Categories[c] = &Counts{}
	}
	return r
}

func (r *RunReport) count(c routing.Category) *Counts {
	counts, ok := r.Categories[c]
	if !ok {
		counts = &Counts{}
		r.Categories[c] = counts
	}
	return counts
}

func (r *RunReport) observe(s *Staged) {
	if s.Signals.Priority == signals.High {
		r.HighPriority++
	}
	r.Seniority[s.Signals.Seniority]++

	if s.Assessment == nil {
		return
	}
	r.Scored++
	if s.Assessment.Fallback {
		r.Fallbacks++
	}
}

// Accepted returns the accepted count of c.
func (r *RunReport) Accepted(c routing.Category) int {
	return r.count(c).Accepted
}
