package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/utils"
)

const (
	RemotiveName            = "remotive"
	RemotiveBaseURL         = "https://remotive.com"
	DefaultRemotiveCategory = "software-dev"
	remotiveLabel           = "Remotive"
)

type Remotive struct {
	base     string
	category string
	http     HTTP
	logger   *zap.Logger
}

type remotiveFeed struct {
	Jobs []struct {
		ID                        int64  `json:"id"`
		URL                       string `json:"url"`
		Title                     string `json:"title"`
		CompanyName               string `json:"company_name"`
		CandidateRequiredLocation string `json:"candidate_required_location"`
		PublicationDate           string `json:"publication_date"`
		Salary                    string `json:"salary"`
		Description               string `json:"description"`
	} `json:"jobs"`
}

func NewRemotive(base, category string, h HTTP, l *zap.Logger) *Remotive {
	if base == "" {
		base = RemotiveBaseURL
	}
	if category == "" {
		category = DefaultRemotiveCategory
	}
	return &Remotive{
		base:     strings.TrimRight(base, "/"),
		category: category,
		http:     h.withDefaults(),
		logger:   logger.OrNop(l),
	}
}

func (r *Remotive) Name() string { return RemotiveName }

func (r *Remotive) Fetch(ctx context.Context) ([]job.RawPosting, error) {
	q := url.Values{}
	q.Set("category", r.category)
	q.Set("limit", fmt.Sprint(r.http.MaxPerSource))

	var feed remotiveFeed
	if err := r.http.getJSON(ctx, r.base+"/api/remote-jobs?"+q.Encode(), &feed); err != nil {
		return nil, fmt.Errorf("remotive feed: %w", err)
	}

	jobs := capItems(feed.Jobs, r.http.MaxPerSource)
	out := make([]job.RawPosting, 0, len(jobs))
	for _, j := range jobs {
		location := j.CandidateRequiredLocation
		if location == "" || strings.EqualFold(location, "worldwide") || strings.EqualFold(location, "anywhere") {
			location = "Remote"
		}

		out = append(out, job.RawPosting{
			"title":        j.Title,
			"company":      j.CompanyName,
			"location":     location,
			"url":          j.URL,
			"description":  utils.HTMLText(j.Description),
			"source":       remotiveLabel,
			"posted_date":  j.PublicationDate,
			"salary_range": j.Salary,
		})
	}

	r.logger.Debug("remotive feed parsed", zap.String("category", r.category), zap.Int("jobs", len(out)))
	return out, nil
}
