// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchResult is one ranked hit from a library search. The score combines
// embedding similarity and keyword matching and lies in [0, 1].
type SearchResult struct {
	// Paper is the matched library paper.
	Paper Paper `json:"paper" yaml:"paper"`

	// Score is the combined relevance score.
	Score float64 `json:"score" yaml:"score"`

	// Summary is the done-entry summary when the paper has one.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// MatchedContent is an excerpt of the text that matched, at most 300 chars.
	MatchedContent string `json:"matched_content,omitempty" yaml:"matched_content,omitempty"`
}

// ExternalPaper is a provider-agnostic record returned by catalog searches.
// It is never persisted; every external search produces fresh values.
type ExternalPaper struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	DOI      string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID  string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue    string   `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Categories are subject classifications, primary first. Only arXiv
	// populates them (e.g. "cs.LG").
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// CitationCount is the provider-reported citation count; zero when the
	// provider does not track citations.
	CitationCount int `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`

	// Source identifies the provider that produced this record
	// (e.g. "arxiv", "semantic_scholar", "crossref").
	Source string `json:"source" yaml:"source"`
}

// SearchResultPage is one page of an external search result set.
type SearchResultPage struct {
	Results []ExternalPaper `json:"results" yaml:"results"`
	Total   int             `json:"total" yaml:"total"`
	Page    int             `json:"page" yaml:"page"`
	PerPage int             `json:"per_page" yaml:"per_page"`
	HasNext bool            `json:"has_next" yaml:"has_next"`
	HasPrev bool            `json:"has_prev" yaml:"has_prev"`
}
