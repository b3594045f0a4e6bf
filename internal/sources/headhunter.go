package sources

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/headhunter"
	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
)

const HeadHunterName = "headhunter"

type HeadHunter struct {
	client *headhunter.Client
	params headhunter.SearchParams
	limit  int
	logger *zap.Logger
}

// NewHeadHunter searches hh.ru with params. The client's HTTP client is
// replaced with the shared one so paging goes through the host limiter.
func NewHeadHunter(client *headhunter.Client, params headhunter.SearchParams, h HTTP, l *zap.Logger) *HeadHunter {
	h = h.withDefaults()
	client.HTTPClient = h.Client

	return &HeadHunter{
		client: client,
		params: params,
		limit:  h.MaxPerSource,
		logger: logger.OrNop(l),
	}
}

func (hh *HeadHunter) Name() string { return HeadHunterName }

func (hh *HeadHunter) Fetch(ctx context.Context) ([]job.RawPosting, error) {
	params := hh.params
	vacancies, err := hh.client.Search(ctx, &params, hh.limit)
	if err != nil {
		return nil, fmt.Errorf("hh search: %w", err)
	}

	hh.logger.Debug("hh vacancies found", zap.Int("vacancies", vacancies.Len()))
	return vacancies.RawPostings(), nil
}
