package sources

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/job"
)

// boardFunc fetches one company board.
type boardFunc func(ctx context.Context, co Company) ([]job.RawPosting, error)

// fetchBoards walks companies in order. One board being down does not fail
// the source; the source fails only when every board failed.
func fetchBoards(ctx context.Context, companies []Company, limit int, l *zap.Logger, fn boardFunc) ([]job.RawPosting, error) {
	var (
		out  []job.RawPosting
		errs []error
	)

	for _, co := range companies {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		postings, err := fn(ctx, co)
		if err != nil {
			l.Warn("board failed", zap.String("company", co.DisplayName()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", co.Slug, err))
			continue
		}
		out = append(out, capItems(postings, limit)...)
	}

	if len(errs) > 0 && len(errs) == len(companies) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
