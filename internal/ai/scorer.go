// Package ai holds the relevance scorer contract and the guard every backend
// runs behind.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/job-router/internal/logger"
)

const (
	FallbackScore  = 50
	FallbackReason = "unable to score"

	MinScore = 0
	MaxScore = 100

	defaultTimeout = 30 * time.Second
)

var ErrScorerFailure = errors.New("scorer failure")

// Request is what a scorer sees of a posting.
type Request struct {
	Title       string
	Company     string
	Description string
	Profile     string
}

// Assessment is a scorer result. Fallback marks the neutral result used when
// the backend failed; Err then holds the cause.
type Assessment struct {
	Score    int    `json:"score"`
	Reason   string `json:"reason"`
	Fallback bool   `json:"fallback,omitempty"`
	Err      error  `json:"-"`
}

type Scorer interface {
	Score(ctx context.Context, req Request) (Assessment, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, req Request) (Assessment, error)

func (f ScorerFunc) Score(ctx context.Context, req Request) (Assessment, error) {
	return f(ctx, req)
}

// Fallback returns the neutral assessment for cause.
func Fallback(cause error) Assessment {
	return Assessment{
		Score:    FallbackScore,
		Reason:   FallbackReason,
		Fallback: true,
		Err:      fmt.Errorf("%w: %w", ErrScorerFailure, cause),
	}
}

type GuardOptions struct {
	Timeout time.Duration
	// RPS caps calls per second across goroutines. Zero means unlimited.
	RPS   float64
	Burst int
}

// Guard wraps a backend with rate limiting, a per-call timeout and score
// clamping. Score on a Guard never returns an error.
type Guard struct {
	next    Scorer
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

func NewGuard(next Scorer, opts GuardOptions, l *zap.Logger) *Guard {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &Guard{next: next, limiter: limiter, timeout: timeout, logger: logger.OrNop(l)}
}

func (g *Guard) Score(ctx context.Context, req Request) (Assessment, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return g.fallback(req, err), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	a, err := g.next.Score(callCtx, req)
	if err != nil {
		return g.fallback(req, err), nil
	}

	if a.Score < MinScore || a.Score > MaxScore {
		g.logger.Warn("score out of range, using neutral score",
			zap.Int("score", a.Score),
			zap.String(logger.FieldTitle, req.Title),
		)
		a.Score = FallbackScore
	}
	a.Reason = strings.TrimSpace(a.Reason)

	return a, nil
}

func (g *Guard) fallback(req Request, err error) Assessment {
	g.logger.Warn("scorer failed, using fallback",
		zap.String(logger.FieldTitle, req.Title),
		zap.String(logger.FieldCompany, req.Company),
		zap.Error(err),
	)
	return Fallback(err)
}
