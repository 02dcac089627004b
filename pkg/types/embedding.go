// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ContentType identifies which part of a paper an embedding was built from.
type ContentType string

const (
	ContentAbstract ContentType = "abstract"
	ContentSummary  ContentType = "summary"
	ContentConcepts ContentType = "concepts"

	// ContentFullText is reserved for full-document embeddings. The indexer
	// does not produce it yet; stored records with this type still
	// participate in search.
	ContentFullText ContentType = "full_text"
)

// EmbeddingRecord is a stored vector for one content slice of a paper.
// A paper owns zero or more records, at most one per content type; they
// are replaced wholesale whenever the paper is reindexed and removed when
// the paper is deleted.
type EmbeddingRecord struct {
	ID      int64 `json:"id" yaml:"id"`
	PaperID int64 `json:"paper_id" yaml:"paper_id"`

	// ContentType records which text slice the vector encodes.
	ContentType ContentType `json:"content_type" yaml:"content_type"`

	// Vector is the embedding. Dimensionality is uniform across a corpus,
	// fixed by the encoder model.
	Vector []float32 `json:"-" yaml:"-"`

	// SourceText is the text that was encoded, kept for match excerpts.
	SourceText string `json:"source_text,omitempty" yaml:"source_text,omitempty"`
}
