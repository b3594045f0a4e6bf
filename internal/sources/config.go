package sources

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/headhunter"
)

// DefaultEnabled lists sources run when none are configured. HeadHunter
// needs search params so it is opt-in.
var DefaultEnabled = []string{GreenhouseName, LeverName, RemotiveName, WeWorkRemotelyName}

type BoardConfig struct {
	BaseURL   string    `mapstructure:"base-url"`
	Companies []Company `mapstructure:"companies"`
}

type FeedConfig struct {
	BaseURL  string `mapstructure:"base-url"`
	Category string `mapstructure:"category"`
}

type HeadHunterConfig struct {
	BaseURL string                  `mapstructure:"base-url"`
	Token   string                  `mapstructure:"-" json:"-"`
	Search  headhunter.SearchParams `mapstructure:"search"`
}

type Config struct {
	Enabled        []string         `mapstructure:"enabled"`
	MaxPerSource   int              `mapstructure:"max-per-source"`
	RPS            float64          `mapstructure:"rps"`
	Burst          int              `mapstructure:"burst"`
	HTTPTimeout    time.Duration    `mapstructure:"http-timeout"`
	Greenhouse     BoardConfig      `mapstructure:"greenhouse"`
	Lever          BoardConfig      `mapstructure:"lever"`
	Remotive       FeedConfig       `mapstructure:"remotive"`
	WeWorkRemotely FeedConfig       `mapstructure:"weworkremotely"`
	HeadHunter     HeadHunterConfig `mapstructure:"headhunter"`
}

func Known() []string {
	return []string{GreenhouseName, LeverName, RemotiveName, WeWorkRemotelyName, HeadHunterName}
}

// Build returns the enabled adapters in configured order. All of them share
// one HTTP client and host limiter.
func Build(cfg Config, l *zap.Logger) ([]Adapter, error) {
	enabled := cfg.Enabled
	if len(enabled) == 0 {
		enabled = DefaultEnabled
	}

	maxPerSource := cfg.MaxPerSource
	if maxPerSource <= 0 {
		maxPerSource = DefaultMaxPerSource
	}
	h := NewHTTP(NewHostLimiter(cfg.RPS, cfg.Burst), cfg.HTTPTimeout, maxPerSource)

	greenhouseCompanies := cfg.Greenhouse.Companies
	if len(greenhouseCompanies) == 0 {
		greenhouseCompanies = DefaultGreenhouseCompanies
	}
	leverCompanies := cfg.Lever.Companies
	if len(leverCompanies) == 0 {
		leverCompanies = DefaultLeverCompanies
	}

	var (
		adapters []Adapter
		seen     []string
	)
	for _, name := range enabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if slices.Contains(seen, name) {
			continue
		}
		seen = append(seen, name)

		switch name {
		case GreenhouseName:
			adapters = append(adapters, NewGreenhouse(cfg.Greenhouse.BaseURL, greenhouseCompanies, h, l))
		case LeverName:
			adapters = append(adapters, NewLever(cfg.Lever.BaseURL, leverCompanies, h, l))
		case RemotiveName:
			adapters = append(adapters, NewRemotive(cfg.Remotive.BaseURL, cfg.Remotive.Category, h, l))
		case WeWorkRemotelyName:
			adapters = append(adapters, NewWeWorkRemotely(cfg.WeWorkRemotely.BaseURL, cfg.WeWorkRemotely.Category, h, l))
		case HeadHunterName:
			client := headhunter.New(l, cfg.HeadHunter.Token)
			if cfg.HeadHunter.BaseURL != "" {
				client.APIURL = strings.TrimRight(cfg.HeadHunter.BaseURL, "/")
			}
			adapters = append(adapters, NewHeadHunter(client, cfg.HeadHunter.Search, h, l))
		default:
			return nil, fmt.Errorf("unknown source %q (known: %s)", name, strings.Join(Known(), ", "))
		}
	}

	return adapters, nil
}
