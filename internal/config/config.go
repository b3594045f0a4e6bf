// Package config holds the file configuration of a run, the companies
// overlay and validation.
package config

import (
	"time"

	"github.com/spigell/job-router/internal/ai"
	"github.com/spigell/job-router/internal/ai/gemini"
	"github.com/spigell/job-router/internal/filtering"
	"github.com/spigell/job-router/internal/pipeline"
	"github.com/spigell/job-router/internal/secrets"
	"github.com/spigell/job-router/internal/signals"
	"github.com/spigell/job-router/internal/sources"
)

const (
	SinkSheets   = "sheets"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkCSV      = "csv"
	SinkMemory   = "memory"

	ProviderNone     = "none"
	ProviderGemini   = "gemini"
	ProviderKeywords = "keywords"

	DefaultSQLitePath = "job-router.db"
	DefaultCSVDir     = "job-router-csv"
)

type Config struct {
	Sources       sources.Config   `mapstructure:"sources"`
	HHToken       secrets.Source   `mapstructure:"hh-token"`
	Filters       filtering.Config `mapstructure:"filters"`
	Signals       signals.Lists    `mapstructure:"signals"`
	AI            AI               `mapstructure:"ai"`
	Sink          Sink             `mapstructure:"sink"`
	Pipeline      pipeline.Options `mapstructure:"pipeline"`
	Profile       Profile          `mapstructure:"profile"`
	CompaniesFile string           `mapstructure:"companies-file"`
	LockFile      string           `mapstructure:"lock-file"`
	LockWait      time.Duration    `mapstructure:"lock-wait"`
	// DumpStaged writes the staged batch to a temp JSON file before emitting.
	DumpStaged bool `mapstructure:"dump-staged"`
}

type AI struct {
	Provider     string                 `mapstructure:"provider"`
	Timeout      time.Duration          `mapstructure:"timeout"`
	RPS          float64                `mapstructure:"rps"`
	Burst        int                    `mapstructure:"burst"`
	MaxLogLength int                    `mapstructure:"max-log-length"`
	Gemini       Gemini                 `mapstructure:"gemini"`
	Prompt       gemini.PromptOverrides `mapstructure:"prompt"`
	Keywords     ai.KeywordsConfig      `mapstructure:"keywords"`
}

type Gemini struct {
	APIKey         secrets.Source `mapstructure:"api-key"`
	gemini.Options `mapstructure:",squash"`
}

type Sink struct {
	Kind            string         `mapstructure:"kind"`
	SpreadsheetID   string         `mapstructure:"spreadsheet-id"`
	CredentialsFile string         `mapstructure:"credentials-file"`
	Path            string         `mapstructure:"path"`
	Dir             string         `mapstructure:"dir"`
	DSN             secrets.Source `mapstructure:"dsn"`
}

type Profile struct {
	// Paths are tried in order; the first readable one wins.
	Paths []string `mapstructure:"paths"`
	// HHResume is the title of an hh.ru resume used when no path loads.
	HHResume string `mapstructure:"hh-resume"`
}

// ApplyDefaults fills the values a bare config needs to run.
func (c *Config) ApplyDefaults() {
	if c.Sink.Kind == "" {
		c.Sink.Kind = SinkSQLite
	}
	if c.Sink.Kind == SinkSQLite && c.Sink.Path == "" {
		c.Sink.Path = DefaultSQLitePath
	}
	if c.Sink.Kind == SinkCSV && c.Sink.Dir == "" {
		c.Sink.Dir = DefaultCSVDir
	}
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderNone
	}
	if c.LockFile == "" {
		c.LockFile = pipeline.DefaultLockFile
	}
	if c.Sources.MaxPerSource <= 0 {
		c.Sources.MaxPerSource = sources.DefaultMaxPerSource
	}

	c.HHToken.Name = "hh token"
	c.AI.Gemini.APIKey.Name = "gemini api key"
	c.Sink.DSN.Name = "postgres dsn"
}
