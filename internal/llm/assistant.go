// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the generative AI API used for tag suggestions and
// summary compression. Everything here is best-effort: callers treat a
// failure as "no suggestion" and move on.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/pdiddy/paperstack/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

// maxTags bounds how many suggested tags are kept per paper.
const maxTags = 5

// Assistant generates tags and summaries for library papers.
type Assistant struct {
	model llms.Model
}

// NewAssistant builds an assistant backed by the Anthropic API.
func NewAssistant(cfg types.AIConfig) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	m, err := anthropic.New(anthropic.WithToken(cfg.APIKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("initializing model: %w", err)
	}
	return &Assistant{model: m}, nil
}

// NewAssistantWithModel builds an assistant over an explicit model.
// Tests use this to supply a mock.
func NewAssistantWithModel(model llms.Model) *Assistant {
	return &Assistant{model: model}
}

// SuggestTags proposes up to five short topic tags for a paper.
func (a *Assistant) SuggestTags(ctx context.Context, title, abstract string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Suggest up to %d short topic tags for this paper. Reply with only the tags, comma-separated, lowercase.\n\nTitle: %s\n\nAbstract: %s",
		maxTags, title, abstract)

	out, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithMaxTokens(100))
	if err != nil {
		return nil, fmt.Errorf("generating tags: %w", err)
	}
	return parseTags(out), nil
}

// Summarize compresses the given text into a few sentences suitable for a
// done-entry summary.
func (a *Assistant) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "Summarize this paper in 2-3 sentences, focusing on what it contributes:\n\n" + text

	out, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithMaxTokens(300))
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Describe produces a one-sentence blurb for a paper.
func (a *Assistant) Describe(ctx context.Context, title, abstract string) (string, error) {
	prompt := fmt.Sprintf(
		"Describe this paper in one sentence.\n\nTitle: %s\n\nAbstract: %s", title, abstract)

	out, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithMaxTokens(100))
	if err != nil {
		return "", fmt.Errorf("generating description: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// parseTags splits a model reply into clean tags: comma or newline
// separated, lowercased, deduplicated, capped at maxTags.
func parseTags(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	seen := make(map[string]bool)
	var tags []string
	for _, f := range fields {
		tag := strings.ToLower(strings.Trim(strings.TrimSpace(f), ".#"))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
