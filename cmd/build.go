package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/ai"
	"github.com/spigell/job-router/internal/ai/gemini"
	"github.com/spigell/job-router/internal/config"
	"github.com/spigell/job-router/internal/headhunter"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/profile"
	"github.com/spigell/job-router/internal/secrets"
	"github.com/spigell/job-router/internal/sink"
	"github.com/spigell/job-router/internal/sink/postgres"
	"github.com/spigell/job-router/internal/sink/sheets"
	"github.com/spigell/job-router/internal/sink/sqlite"
	"github.com/spigell/job-router/internal/sources"
)

// defaultProfilePaths are tried when profile.paths is empty.
var defaultProfilePaths = []string{"resume.pdf", "resume.txt"}

func newSources(cfg *config.Config, l *zap.Logger) ([]sources.Adapter, error) {
	token, err := secrets.LoadOptional(cfg.HHToken)
	if err != nil {
		return nil, err
	}
	cfg.Sources.HeadHunter.Token = token

	return sources.Build(cfg.Sources, l)
}

// newScorer returns nil when scoring is disabled.
func newScorer(ctx context.Context, cfg *config.Config, l *zap.Logger) (ai.Scorer, error) {
	var backend ai.Scorer
	model := ""

	switch strings.ToLower(cfg.AI.Provider) {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderKeywords:
		backend = ai.NewKeywords(cfg.AI.Keywords)
	case config.ProviderGemini:
		apiKey, err := secrets.Load(cfg.AI.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key or GEMINI_API_KEY_FILE)", err)
		}

		opts := cfg.AI.Gemini.Options
		model = opts.Model
		genLogger := logger.WithCommonFields(l, config.ProviderGemini, model)

		generator, err := gemini.NewGenerator(ctx, apiKey, opts, genLogger)
		if err != nil {
			return nil, err
		}
		model = generator.Model()

		backend = gemini.NewScorer(generator, cfg.AI.Prompt, cfg.AI.MaxLogLength, genLogger)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.AI.Provider)
	}

	guardLogger := logger.WithCommonFields(l, cfg.AI.Provider, model)

	return ai.NewGuard(backend, ai.GuardOptions{
		Timeout: cfg.AI.Timeout,
		RPS:     cfg.AI.RPS,
		Burst:   cfg.AI.Burst,
	}, guardLogger), nil
}

// resolveProfile loads the candidate profile from disk, falling back to an
// hh.ru resume when one is configured.
func resolveProfile(ctx context.Context, cfg *config.Config, l *zap.Logger) (string, error) {
	paths := cfg.Profile.Paths
	if len(paths) == 0 {
		paths = defaultProfilePaths
	}

	path, text, err := profile.Resolve(paths...)
	if err == nil {
		l.Info("loaded profile", zap.String("path", path), zap.Int("length", len(text)))
		return text, nil
	}

	if cfg.Profile.HHResume == "" {
		return "", err
	}

	l.Info("no local profile, using hh resume",
		zap.String("resume title", cfg.Profile.HHResume),
		zap.NamedError("reason", err),
	)

	token, tokenErr := secrets.Load(cfg.HHToken)
	if tokenErr != nil {
		return "", tokenErr
	}

	hh := headhunter.New(l, token)
	if cfg.Sources.HeadHunter.BaseURL != "" {
		hh.APIURL = strings.TrimRight(cfg.Sources.HeadHunter.BaseURL, "/")
	}

	resumes, err := hh.GetMineResumes(ctx)
	if err != nil {
		return "", fmt.Errorf("getting mine resumes: %w", err)
	}

	selected := resumes.FindByTitle(cfg.Profile.HHResume)
	if selected == nil {
		return "", fmt.Errorf("resume %q not found, available: %s",
			cfg.Profile.HHResume, strings.Join(resumes.Titles(), ", "))
	}

	details, err := hh.GetResumeDetails(ctx, selected.ID)
	if err != nil {
		return "", fmt.Errorf("getting resume details: %w", err)
	}

	text = details.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("hh resume has no text")
	}
	return text, nil
}

func newSink(ctx context.Context, cfg *config.Config, l *zap.Logger) (sink.Port, error) {
	switch cfg.Sink.Kind {
	case config.SinkSheets:
		return sheets.New(ctx, cfg.Sink.SpreadsheetID, cfg.Sink.CredentialsFile, l)
	case config.SinkSQLite:
		return sqlite.Open(ctx, cfg.Sink.Path)
	case config.SinkPostgres:
		dsn, err := secrets.Load(cfg.Sink.DSN)
		if err != nil {
			return nil, err
		}
		return postgres.Open(ctx, dsn)
	case config.SinkCSV:
		return sink.NewCSV(cfg.Sink.Dir)
	case config.SinkMemory:
		return sink.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported sink: %s", cfg.Sink.Kind)
	}
}
