package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/job-router/internal/ai"
	"github.com/spigell/job-router/internal/job"
	"github.com/spigell/job-router/internal/logger"
	"github.com/spigell/job-router/internal/utils"
)

//go:embed system.md
var systemTemplate string

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	descriptionLimit        = 800
	maxUserInstructionRunes = 500
	defaultTechStack        = "MERN, Python, AI/ML, C++"
)

type textGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// PromptOverrides are user preferences injected into the prompt. Every field
// is sanitised before use.
type PromptOverrides struct {
	TechStack        string `mapstructure:"tech-stack"`
	ExtraCriteria    string `mapstructure:"extra-criteria"`
	DealBreakers     string `mapstructure:"deal-breakers"`
	UserInstructions string `mapstructure:"user-instructions"`
}

type Scorer struct {
	generator textGenerator
	overrides PromptOverrides
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator textGenerator, overrides PromptOverrides, maxLogLength int, l *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		overrides: overrides,
		logger:    logger.OrNop(l),
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Score(ctx context.Context, req ai.Request) (ai.Assessment, error) {
	system := buildSystem(s.overrides)
	prompt := buildPrompt(req, s.overrides)

	fields := []zap.Field{
		zap.String(logger.FieldTitle, req.Title),
		zap.String(logger.FieldCompany, req.Company),
	}

	s.logger.Debug("gemini generate content request", append(fields,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)...)

	raw, err := s.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return ai.Assessment{}, err
	}

	s.logger.Debug("gemini generate content response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)...)

	return parseResponse(raw)
}

func buildSystem(o PromptOverrides) string {
	stack := sanitizeSingleLine(o.TechStack)
	if stack == "" {
		stack = defaultTechStack
	}
	return strings.ReplaceAll(systemTemplate, "{{TECH_STACK}}", stack)
}

func buildPrompt(req ai.Request, o PromptOverrides) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{PROFILE}}\n\nRole: {{ROLE}}\nCompany: {{COMPANY}}\n{{DESCRIPTION}}\n\nJSON Response:"
	}

	r := strings.NewReplacer(
		"{{PROFILE}}", orNone(strings.TrimSpace(req.Profile)),
		"{{ROLE}}", sanitizeSingleLine(req.Title),
		"{{COMPANY}}", sanitizeSingleLine(req.Company),
		"{{DESCRIPTION}}", job.Truncate(strings.TrimSpace(req.Description), descriptionLimit),
		"{{EXTRA_CRITERIA}}", orNone(sanitizeSingleLine(o.ExtraCriteria)),
		"{{DEAL_BREAKERS}}", orNone(sanitizeSingleLine(o.DealBreakers)),
		"{{USER_INSTRUCTIONS}}", userInstructionsBlock(o.UserInstructions),
	)
	return r.Replace(template)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// sanitizeSingleLine collapses whitespace and defuses bracketed role markers.
func sanitizeSingleLine(s string) string {
	s = defuseBrackets(s)
	return strings.Join(strings.Fields(s), " ")
}

func defuseBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")", "{{", "(", "}}", ")").Replace(s)
}

func userInstructionsBlock(raw string) string {
	raw = strings.TrimSpace(defuseBrackets(raw))
	if raw == "" {
		return "  - none"
	}

	if runes := []rune(raw); len(runes) > maxUserInstructionRunes {
		raw = string(runes[:maxUserInstructionRunes])
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		lines = append(lines, "  - "+line)
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return ai.Assessment{}, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(firstOf(data, "Match_Score", "match_score", "score"))
	if math.IsNaN(score) {
		return ai.Assessment{}, fmt.Errorf("parse gemini response: no numeric score in %q", utils.TruncateForLog(cleaned, defaultMaxLogLength))
	}

	return ai.Assessment{
		Score:  int(math.Round(score)),
		Reason: coerceString(firstOf(data, "AI_Reasoning", "ai_reasoning", "reason")),
	}, nil
}

func firstOf(data map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "```"); idx != -1 {
		raw = raw[idx+3:]
		raw = strings.TrimPrefix(raw, "json")
		if end := strings.Index(raw, "```"); end != -1 {
			raw = raw[:end]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
