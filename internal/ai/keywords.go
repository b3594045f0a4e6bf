package ai

import (
	"context"
	"fmt"
	"strings"
)

// Rule adds Weight once when any of its terms appears. Negative weights are
// penalties.
type Rule struct {
	Tag    string   `mapstructure:"tag"`
	Weight int      `mapstructure:"weight"`
	Any    []string `mapstructure:"any"`
}

type KeywordsConfig struct {
	Base  int    `mapstructure:"base"`
	Rules []Rule `mapstructure:"rules"`
	// ProfileWeight is added per rule whose term also appears in the profile.
	ProfileWeight int `mapstructure:"profile-weight"`
}

var DefaultKeywordRules = []Rule{
	{Tag: "backend", Weight: 10, Any: []string{"golang", "go developer", "python", "node", "java"}},
	{Tag: "frontend", Weight: 8, Any: []string{"react", "typescript", "frontend", "front-end"}},
	{Tag: "ml", Weight: 10, Any: []string{"machine learning", "ml engineer", "llm", "pytorch"}},
	{Tag: "early-career", Weight: 10, Any: []string{"intern", "new grad", "graduate", "junior", "entry level"}},
	{Tag: "remote", Weight: 5, Any: []string{"remote"}},
	{Tag: "too-senior", Weight: -20, Any: []string{"principal", "staff engineer", "director", "vp of"}},
}

// Keywords scores offline from weighted keyword rules.
type Keywords struct {
	cfg KeywordsConfig
}

func NewKeywords(cfg KeywordsConfig) *Keywords {
	if cfg.Base == 0 {
		cfg.Base = 40
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultKeywordRules
	}
	if cfg.ProfileWeight == 0 {
		cfg.ProfileWeight = 5
	}
	return &Keywords{cfg: cfg}
}

func (k *Keywords) Score(ctx context.Context, req Request) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}

	text := strings.ToLower(req.Title + " " + req.Description)
	profile := strings.ToLower(req.Profile)

	score := k.cfg.Base
	var tags []string
	for _, r := range k.cfg.Rules {
		for _, needle := range r.Any {
			n := strings.ToLower(strings.TrimSpace(needle))
			if n == "" || !strings.Contains(text, n) {
				continue
			}
			score += r.Weight
			if r.Weight > 0 && profile != "" && strings.Contains(profile, n) {
				score += k.cfg.ProfileWeight
			}
			tags = append(tags, r.Tag)
			break
		}
	}

	score = max(MinScore, min(MaxScore, score))

	reason := "no keyword matches"
	if len(tags) > 0 {
		reason = fmt.Sprintf("matched: %s", strings.Join(tags, ", "))
	}

	return Assessment{Score: score, Reason: reason}, nil
}
