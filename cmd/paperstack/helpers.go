package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paperstack/internal/aggregate"
	"github.com/pdiddy/paperstack/internal/httputil"
	"github.com/pdiddy/paperstack/internal/llm"
	"github.com/pdiddy/paperstack/internal/metadata"
	"github.com/pdiddy/paperstack/internal/pdfstore"
	"github.com/pdiddy/paperstack/internal/secrets"
	"github.com/pdiddy/paperstack/internal/semantic"
	"github.com/pdiddy/paperstack/internal/store"
	"github.com/pdiddy/paperstack/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "paperstack/0.1"
)

// dataDir resolves the library directory: the --data-dir flag, then the
// config file, then the store's own ~/.paperstack default (empty string).
func dataDir() string {
	if dir, _ := rootCmd.PersistentFlags().GetString("data-dir"); dir != "" {
		return dir
	}
	return viper.GetString("data_dir")
}

// openStore opens the library database under the resolved data directory.
func openStore() (*store.Store, error) {
	return store.NewStore(types.StoreConfig{
		DataDir: dataDir(),
		DBName:  viper.GetString("db_name"),
	})
}

// openPDFStore opens the PDF blob store under the same data directory as
// the database.
func openPDFStore(s *store.Store) (*pdfstore.LocalStore, error) {
	return pdfstore.NewLocalStore(filepath.Join(s.DataDir(), "pdfs"))
}

func newHTTPClient() *http.Client {
	timeout := viper.GetDuration("http.timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return httputil.NewClient(types.HTTPConfig{Timeout: timeout})
}

// newEncoder builds the Ollama embedding encoder from config.
func newEncoder() (*semantic.OllamaEncoder, error) {
	return semantic.NewOllamaEncoder(types.EmbeddingConfig{
		Model:   viper.GetString("embedding.model"),
		BaseURL: viper.GetString("embedding.base_url"),
	})
}

// newAssistant builds the AI assistant, or returns an error when no API
// key is available. Callers treat that as "assistant disabled".
func newAssistant() (*llm.Assistant, error) {
	return llm.NewAssistant(types.AIConfig{
		Model:  viper.GetString("ai.model"),
		APIKey: secretDefault(secrets.KeyAnthropic, viper.GetString("ai.api_key")),
	})
}

// buildProviders constructs the external catalog clients in query order:
// Semantic Scholar first for its citation counts, then arXiv, then CrossRef.
func buildProviders(client *http.Client) []aggregate.Provider {
	return []aggregate.Provider{
		&metadata.SemanticScholarClient{
			Client:    client,
			UserAgent: defaultUserAgent,
			APIKey:    secretDefault(secrets.KeySemanticScholar, viper.GetString("aggregator.semantic_scholar_api_key")),
		},
		&metadata.ArxivClient{
			Client:    client,
			UserAgent: defaultUserAgent,
		},
		&metadata.CrossRefClient{
			Client:    client,
			UserAgent: defaultUserAgent,
			Mailto:    secretDefault(secrets.KeyCrossRefMailto, viper.GetString("aggregator.crossref_mailto")),
		},
	}
}
