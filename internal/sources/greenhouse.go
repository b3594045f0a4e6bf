package sources

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/utils"
)

const (
	GreenhouseName    = "greenhouse"
	GreenhouseBaseURL = "https://boards-api.greenhouse.io"
	greenhouseLabel   = "Greenhouse"
)

type Greenhouse struct {
	base      string
	companies []Company
	http      HTTP
	logger    *zap.Logger
}

type greenhouseBoard struct {
	Jobs []struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		AbsoluteURL string `json:"absolute_url"`
		UpdatedAt   string `json:"updated_at"`
		Content     string `json:"content"`
		Location    struct {
			Name string `json:"name"`
		} `json:"location"`
	} `json:"jobs"`
}

func NewGreenhouse(base string, companies []Company, h HTTP, l *zap.Logger) *Greenhouse {
	if base == "" {
		base = GreenhouseBaseURL
	}
	return &Greenhouse{
		base:      strings.TrimRight(base, "/"),
		companies: cleanCompanies(companies),
		http:      h.withDefaults(),
		logger:    logger.OrNop(l),
	}
}

func (g *Greenhouse) Name() string { return GreenhouseName }

func (g *Greenhouse) Fetch(ctx context.Context) ([]job.RawPosting, error) {
	return fetchBoards(ctx, g.companies, g.http.MaxPerSource, g.logger, g.fetchCompany)
}

func (g *Greenhouse) fetchCompany(ctx context.Context, co Company) ([]job.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", g.base, url.PathEscape(co.Slug))

	var board greenhouseBoard
	if err := g.http.getJSON(ctx, endpoint, &board); err != nil {
		return nil, fmt.Errorf("greenhouse board: %w", err)
	}

	out := make([]job.RawPosting, 0, len(board.Jobs))
	for _, j := range board.Jobs {
		out = append(out, job.RawPosting{
			"title":        j.Title,
			"company":      co.DisplayName(),
			"location":     j.Location.Name,
			"url":          j.AbsoluteURL,
			"description":  utils.HTMLText(html.UnescapeString(j.Content)),
			"source":       greenhouseLabel,
			"posted_date":  j.UpdatedAt,
			"salary_range": "",
		})
	}
	return out, nil
}
