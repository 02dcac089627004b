// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/pdiddy/paperstack/pkg/types"
)

// Encoder turns text into a fixed-length vector. Implementations must be
// deterministic for the same text and model so reindexing is stable.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// OllamaEncoder produces embeddings through a local Ollama server.
type OllamaEncoder struct {
	llm *ollama.LLM
}

// NewOllamaEncoder connects to the configured Ollama server. Defaults:
// model "nomic-embed-text", server http://localhost:11434.
func NewOllamaEncoder(cfg types.EmbeddingConfig) (*OllamaEncoder, error) {
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("initializing embedding model: %w", err)
	}
	return &OllamaEncoder{llm: llm}, nil
}

// Encode embeds a single text.
func (e *OllamaEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedding model returned no vectors")
	}
	return vecs[0], nil
}
