// Package headhunter is a read-only client for the hh.ru vacancy API.
package headhunter

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/logger"
)

const (
	apiURL        = "https://api.hh.ru"
	mineResumesID = "mine"
	userAgent     = "spigell/job-router (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = "100"

	SourceLabel = "HeadHunter"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New returns a client. The token is optional for vacancy search and
// required for resumes.
func New(l *zap.Logger, token string) *Client {
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger.OrNop(l),
		UserAgent: userAgent,
	}
}

// Search returns up to limit vacancies. A non-positive limit fetches all pages.
func (c *Client) Search(ctx context.Context, params *SearchParams, limit int) (*Vacancies, error) {
	return c.search(ctx, params, limit)
}

func (c *Client) GetMineResumes(ctx context.Context) (*Resumes, error) {
	return c.getResumes(ctx, mineResumesID)
}
