package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-router/internal/ai"
	"github.com/spigell/job-router/internal/secrets"
	"github.com/spigell/job-router/internal/signals"
	"github.com/spigell/job-router/internal/sources"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.Equal(t, SinkSQLite, cfg.Sink.Kind)
	assert.Equal(t, DefaultSQLitePath, cfg.Sink.Path)
	assert.Equal(t, ProviderNone, cfg.AI.Provider)
	assert.Equal(t, sources.DefaultMaxPerSource, cfg.Sources.MaxPerSource)
	assert.Equal(t, "gemini api key", cfg.AI.Gemini.APIKey.Name)

	report := Validate(cfg)
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Warnings)
}

func TestValidateCollectsEverything(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Sink.Kind = SinkSheets
	cfg.AI.Provider = ProviderGemini
	cfg.Sources.Enabled = []string{"greenhouse", "monster", "headhunter"}
	cfg.Pipeline.PerCategoryLimit = -1
	cfg.Filters.AppendAccepted = true

	report := Validate(cfg)
	err := report.Err()
	require.Error(t, err)

	for _, want := range []string{
		"sink.spreadsheet-id",
		"sink.credentials-file",
		"ai.gemini.api-key",
		`unknown source "monster"`,
		"per-category-limit",
		"append-accepted",
	} {
		assert.Contains(t, err.Error(), want)
	}

	joined := strings.Join(report.Warnings, "\n")
	assert.Contains(t, joined, "headhunter")
	assert.Contains(t, joined, "profile.paths is empty")
}

func TestValidateProviders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "gemini with key", mutate: func(c *Config) {
			c.AI.Provider = ProviderGemini
			c.AI.Gemini.APIKey = secrets.Source{Keyring: "gemini"}
			c.Profile.Paths = []string{"resume.pdf"}
		}},
		{name: "keywords", mutate: func(c *Config) { c.AI.Provider = ProviderKeywords }},
		{name: "keyword rule without terms", wantErr: true, mutate: func(c *Config) {
			c.AI.Provider = ProviderKeywords
			c.AI.Keywords.Rules = []ai.Rule{{Tag: "empty", Weight: 5}}
		}},
		{name: "unknown provider", wantErr: true, mutate: func(c *Config) { c.AI.Provider = "openai" }},
		{name: "postgres without dsn", wantErr: true, mutate: func(c *Config) { c.Sink.Kind = SinkPostgres }},
		{name: "unknown sink", wantErr: true, mutate: func(c *Config) { c.Sink.Kind = "excel" }},
		{name: "bad seniority", wantErr: true, mutate: func(c *Config) {
			c.Signals.Seniority = map[signals.Seniority][]string{"Guru": {"guru"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg).Err()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadCompanies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "companies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
greenhouse:
  - name: Acme
    slug: acme
lever:
  - slug: beta
`), 0o600))

	companies, err := LoadCompanies(path)
	require.NoError(t, err)
	assert.Equal(t, []sources.Company{{Name: "Acme", Slug: "acme"}}, companies.Greenhouse)

	cfg := validConfig()
	cfg.Sources.Greenhouse.Companies = []sources.Company{{Slug: "old"}}
	cfg.ApplyCompanies(companies)
	assert.Equal(t, "acme", cfg.Sources.Greenhouse.Companies[0].Slug)
	assert.Equal(t, "beta", cfg.Sources.Lever.Companies[0].Slug)
}

func TestLoadCompaniesRejectsBadFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("workday:\n  - slug: x\n"), 0o600))
	_, err := LoadCompanies(unknown)
	assert.Error(t, err)

	noSlug := filepath.Join(dir, "noslug.yaml")
	require.NoError(t, os.WriteFile(noSlug, []byte("lever:\n  - name: Beta\n"), 0o600))
	_, err = LoadCompanies(noSlug)
	assert.ErrorContains(t, err, "no slug")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	companies, err := LoadCompanies(empty)
	require.NoError(t, err)
	assert.Empty(t, companies.Greenhouse)

	_, err = LoadCompanies(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
