package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/signals"
	"github.com/spigell/job-router/internal/sources"
)

// Report collects every problem found in one pass.
type Report struct {
	Errors   []error
	Warnings []string
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Errorf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Err joins all errors, nil when there are none.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

// Validate checks cfg after defaults were applied.
func Validate(cfg *Config) *Report {
	r := &Report{}
	if cfg == nil {
		r.errorf("config is empty")
		return r
	}

	validateSources(cfg, r)
	validateSink(cfg, r)
	validateAI(cfg, r)

	if cfg.Pipeline.PerCategoryLimit < 0 {
		r.errorf("pipeline.per-category-limit must not be negative")
	}
	if cfg.Pipeline.AdapterRetries < 0 {
		r.errorf("pipeline.adapter-retries must not be negative")
	}
	if cfg.Pipeline.AdapterRetries > 5 {
		r.warnf("pipeline.adapter-retries is %d; sources may be hammered", cfg.Pipeline.AdapterRetries)
	}
	if cfg.Pipeline.ScorerConcurrency > 16 {
		r.warnf("pipeline.scorer-concurrency is %d; expect rate limiting", cfg.Pipeline.ScorerConcurrency)
	}

	if cfg.Filters.AppendAccepted && strings.TrimSpace(cfg.Filters.ExcludeFile) == "" {
		r.errorf("filters.append-accepted requires filters.exclude-file")
	}

	for level := range cfg.Signals.Seniority {
		if !slices.Contains([]signals.Seniority{signals.Intern, signals.Entry, signals.Mid, signals.Senior, signals.Executive}, level) {
			r.errorf("signals.seniority has unknown level %q", level)
		}
	}

	return r
}

func validateSources(cfg *Config, r *Report) {
	enabled := cfg.Sources.Enabled
	if len(enabled) == 0 {
		enabled = sources.DefaultEnabled
	}

	for _, name := range enabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(sources.Known(), name) {
			r.errorf("sources.enabled: unknown source %q", name)
		}
		if name == sources.HeadHunterName && strings.TrimSpace(cfg.Sources.HeadHunter.Search.Text) == "" {
			r.warnf("headhunter is enabled without sources.headhunter.search.text; every vacancy matches")
		}
	}

	if cfg.Sources.MaxPerSource > 500 {
		r.warnf("sources.max-per-source is %d", cfg.Sources.MaxPerSource)
	}
	if cfg.Sources.RPS < 0 {
		r.errorf("sources.rps must not be negative")
	}
}

func validateSink(cfg *Config, r *Report) {
	s := cfg.Sink

	switch s.Kind {
	case SinkSheets:
		if strings.TrimSpace(s.SpreadsheetID) == "" {
			r.errorf("sink.spreadsheet-id is required for the sheets sink")
		}
		if strings.TrimSpace(s.CredentialsFile) == "" {
			r.errorf("sink.credentials-file is required for the sheets sink")
		}
	case SinkSQLite:
		if strings.TrimSpace(s.Path) == "" {
			r.errorf("sink.path is required for the sqlite sink")
		}
	case SinkPostgres:
		if !s.DSN.Configured() {
			r.errorf("sink.dsn is required for the postgres sink")
		}
	case SinkCSV:
		if strings.TrimSpace(s.Dir) == "" {
			r.errorf("sink.dir is required for the csv sink")
		}
	case SinkMemory:
		r.warnf("memory sink keeps nothing between runs; every run starts with an empty dedup index")
	default:
		r.errorf("sink.kind %q is unknown (sheets, sqlite, postgres, csv, memory)", s.Kind)
	}

	if s.Kind == SinkSheets {
		for _, c := range routing.Categories() {
			if strings.ContainsAny(string(c), "'!") {
				r.errorf("worksheet name %q cannot be used in A1 ranges", c)
			}
		}
	}
}

func validateAI(cfg *Config, r *Report) {
	a := cfg.AI

	switch a.Provider {
	case ProviderNone:
		return
	case ProviderGemini:
		if !a.Gemini.APIKey.Configured() {
			r.errorf("ai.gemini.api-key is required for the gemini provider")
		}
		if a.Gemini.Temperature < 0 || a.Gemini.Temperature > 2 {
			r.errorf("ai.gemini.temperature must be within [0, 2]")
		}
	case ProviderKeywords:
		for i, rule := range a.Keywords.Rules {
			if len(rule.Any) == 0 {
				r.errorf("ai.keywords.rules[%d] (%s) has no terms", i, rule.Tag)
			}
		}
	default:
		r.errorf("ai.provider %q is unknown (none, gemini, keywords)", a.Provider)
		return
	}

	if len(cfg.Profile.Paths) == 0 && cfg.Profile.HHResume == "" {
		r.warnf("profile.paths is empty; resume.pdf and resume.txt are tried in the working directory")
	}
	if a.RPS < 0 {
		r.errorf("ai.rps must not be negative")
	}
}
