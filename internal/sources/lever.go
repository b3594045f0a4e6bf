package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/utils"
)

const (
	LeverName    = "lever"
	LeverBaseURL = "https://api.lever.co"
	leverLabel   = "Lever"
)

type Lever struct {
	base      string
	companies []Company
	http      HTTP
	logger    *zap.Logger
}

type leverPosting struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	HostedURL        string `json:"hostedUrl"`
	CreatedAt        int64  `json:"createdAt"` // ms since epoch
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"`
	Categories       struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
	WorkplaceType string       `json:"workplaceType"`
	SalaryRange   *leverSalary `json:"salaryRange"`
}

type leverSalary struct {
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

func (s *leverSalary) String() string {
	if s == nil || (s.Min == 0 && s.Max == 0) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%.0f-%.0f %s %s", s.Min, s.Max, s.Currency, s.Interval))
}

func NewLever(base string, companies []Company, h HTTP, l *zap.Logger) *Lever {
	if base == "" {
		base = LeverBaseURL
	}
	return &Lever{
		base:      strings.TrimRight(base, "/"),
		companies: cleanCompanies(companies),
		http:      h.withDefaults(),
		logger:    logger.OrNop(l),
	}
}

func (lv *Lever) Name() string { return LeverName }

func (lv *Lever) Fetch(ctx context.Context) ([]job.RawPosting, error) {
	return fetchBoards(ctx, lv.companies, lv.http.MaxPerSource, lv.logger, lv.fetchCompany)
}

func (lv *Lever) fetchCompany(ctx context.Context, co Company) ([]job.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/v0/postings/%s?mode=json", lv.base, url.PathEscape(co.Slug))

	var postings []leverPosting
	if err := lv.http.getJSON(ctx, endpoint, &postings); err != nil {
		return nil, fmt.Errorf("lever postings: %w", err)
	}

	out := make([]job.RawPosting, 0, len(postings))
	for _, p := range postings {
		location := p.Categories.Location
		if strings.EqualFold(p.WorkplaceType, "remote") && !strings.Contains(strings.ToLower(location), "remote") {
			location = strings.TrimSpace(location + " (Remote)")
		}

		desc := p.DescriptionPlain
		if desc == "" {
			desc = p.Description
		}

		out = append(out, job.RawPosting{
			"title":        p.Text,
			"company":      co.DisplayName(),
			"location":     location,
			"url":          p.HostedURL,
			"description":  utils.HTMLText(desc),
			"source":       leverLabel,
			"posted_date":  leverDate(p.CreatedAt),
			"salary_range": p.SalaryRange.String(),
		})
	}
	return out, nil
}

func leverDate(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
