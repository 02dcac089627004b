// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperstack/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the library database and PDF storage.
type StoreConfig struct {
	// DataDir is the base directory for library data (database, pdfs/).
	// Defaults to ~/.paperstack.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DBName is the SQLite database filename inside DataDir.
	DBName string `json:"db_name" yaml:"db_name"`
}

// SearchConfig holds settings for local hybrid search.
type SearchConfig struct {
	// TopK is the maximum number of results to return (default 10).
	TopK int `json:"top_k" yaml:"top_k"`

	// MinScore is the score floor below which matches are discarded (default 0.3).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// DoneOnly restricts search to papers marked done (default true).
	DoneOnly bool `json:"done_only" yaml:"done_only"`
}

// EmbeddingConfig holds settings for the embedding encoder.
type EmbeddingConfig struct {
	// Model is the embedding model identifier (default "nomic-embed-text").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the Ollama server URL (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// AggregatorConfig holds settings for external multi-source search.
type AggregatorConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum merged result count (default 30).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// PerPage is the page size for paginated browsing (default 10).
	PerPage int `json:"per_page" yaml:"per_page"`

	// Sources selects the providers to query, in query order. Empty means
	// all of semantic_scholar, arxiv, crossref.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// CrossRefMailto is the contact address for the CrossRef polite pool.
	CrossRefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`
}

// AIConfig holds settings for the optional LLM assistant.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// AutoTag enables tag suggestions when adding papers.
	AutoTag bool `json:"auto_tag" yaml:"auto_tag"`

	// AutoSummary enables summary compression when marking papers done.
	AutoSummary bool `json:"auto_summary" yaml:"auto_summary"`
}

// Config groups all stage configurations for the CLI.
type Config struct {
	Store      StoreConfig      `json:"store" yaml:"store"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Aggregator AggregatorConfig `json:"aggregator" yaml:"aggregator"`
	AI         AIConfig         `json:"ai" yaml:"ai"`
}
