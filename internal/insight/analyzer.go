package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	ModelGeminiFlash = "gemini-2.0-flash"
	ModelGeminiPro   = "gemini-1.5-pro"
	DefaultModel     = ModelGeminiFlash

	// promptDays limits how much of the series is sent to the model.
	promptDays = 7
)

var SupportedModels = []string{ModelGeminiFlash, ModelGeminiPro}

var ErrUnsupportedModel = errors.New("unsupported model")

// ResolveModel maps "" to DefaultModel and rejects anything unsupported.
func ResolveModel(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultModel, nil
	}
	for _, m := range SupportedModels {
		if m == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedModel, name)
}

// Analyzer asks a Completer for UI, SEO and analyst commentary on recent traffic.
type Analyzer struct {
	completer Completer
}

func NewAnalyzer(c Completer) *Analyzer {
	return &Analyzer{completer: c}
}

func (a *Analyzer) Analyze(ctx context.Context, apiKey, model string, series []TrafficPoint) (*Commentary, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	model, err := ResolveModel(model)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(series)
	if err != nil {
		return nil, err
	}

	text, err := a.completer.Complete(ctx, CompletionRequest{
		APIKey: apiKey,
		Model:  model,
		Prompt: prompt,
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}
	return ParseCommentary(text)
}

// BuildPrompt embeds the most recent days of series as JSON records.
func BuildPrompt(series []TrafficPoint) (string, error) {
	recent := series
	if len(recent) > promptDays {
		recent = recent[len(recent)-promptDays:]
	}
	data, err := json.Marshal(recent)
	if err != nil {
		return "", fmt.Errorf("encode series: %w", err)
	}

	return fmt.Sprintf(`You are a team of web consultants. Analyze the website data below and evaluate it from three perspectives: UI, SEO and Analyst.

Data: %s

Reply with JSON in exactly this shape:
{
  "agents": {
    "ui": "UI comment (max 50 characters)",
    "seo": "SEO comment (max 50 characters)",
    "analyst": "Analyst comment (max 50 characters)"
  },
  "matrix": [
    {"priority": 1, "task": "initiative", "ui_score": "S/A/B", "seo_score": "S/A/B", "analyst_score": "S/A/B", "total": "S/A/B", "detail": "details"},
    {"priority": 2, "task": "initiative", "ui_score": "...", "seo_score": "...", "analyst_score": "...", "total": "...", "detail": "..."}
  ]
}`, data), nil
}

// ParseCommentary accepts bare JSON or JSON wrapped in a markdown code fence.
func ParseCommentary(text string) (*Commentary, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	var c Commentary
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, fmt.Errorf("decode commentary: %w", err)
	}
	return &c, nil
}
