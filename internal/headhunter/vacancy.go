package headhunter

import (
	"fmt"
	"strings"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/utils"
)

const remoteSchedule = "remote"

type Vacancies struct {
	Items []*Vacancy
}

type Named struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Salary struct {
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

type Employer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Trusted      bool   `json:"trusted,omitempty"`
}

type Snippet struct {
	Requirement    string `json:"requirement,omitempty"`
	Responsibility string `json:"responsibility,omitempty"`
}

type Vacancy struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Area         Named    `json:"area,omitempty"`
	Salary       *Salary  `json:"salary,omitempty"`
	Experience   Named    `json:"experience,omitempty"`
	Schedule     Named    `json:"schedule,omitempty"`
	Employment   Named    `json:"employment,omitempty"`
	Employer     Employer `json:"employer,omitempty"`
	AlternateURL string   `json:"alternate_url,omitempty"`
	Snippet      Snippet  `json:"snippet,omitempty"`
	Archived     bool     `json:"archived,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
	PublishedAt  string   `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// RawPostings maps every non-archived vacancy.
func (v *Vacancies) RawPostings() []job.RawPosting {
	out := make([]job.RawPosting, 0, len(v.Items))
	for _, vacancy := range v.Items {
		if vacancy == nil || vacancy.Archived {
			continue
		}
		out = append(out, vacancy.ToRawPosting())
	}

	return out
}

func (va *Vacancy) ToRawPosting() job.RawPosting {
	location := va.Area.Name
	if va.Schedule.ID == remoteSchedule {
		location = strings.TrimSpace(location + " (Remote)")
	}

	posted := va.PublishedAt
	if posted == "" {
		posted = va.CreatedAt
	}

	return job.RawPosting{
		"title":        va.Name,
		"company":      va.Employer.Name,
		"location":     location,
		"url":          va.AlternateURL,
		"description":  va.Snippet.Text(),
		"source":       SourceLabel,
		"posted_date":  posted,
		"salary_range": va.Salary.String(),
	}
}

// Text joins requirement and responsibility without hh highlight markup.
func (s Snippet) Text() string {
	return utils.HTMLText(strings.TrimSpace(s.Requirement + " " + s.Responsibility))
}

func (s *Salary) String() string {
	if s == nil || (s.From == 0 && s.To == 0) {
		return ""
	}

	switch {
	case s.From > 0 && s.To > 0:
		return strings.TrimSpace(fmt.Sprintf("%d-%d %s", s.From, s.To, s.Currency))
	case s.From > 0:
		return strings.TrimSpace(fmt.Sprintf("from %d %s", s.From, s.Currency))
	default:
		return strings.TrimSpace(fmt.Sprintf("up to %d %s", s.To, s.Currency))
	}
}
