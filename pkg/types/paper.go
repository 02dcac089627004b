// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperstack CLI:
// library papers and their annotations, done entries, embedding records,
// search results, and per-stage configuration.
package types

import "time"

// PaperStatus indicates where a paper sits in the reading workflow.
type PaperStatus string

const (
	StatusReading  PaperStatus = "reading"
	StatusDone     PaperStatus = "done"
	StatusArchived PaperStatus = "archived"
)

// Paper holds metadata for a paper tracked in the library.
type Paper struct {
	// ID is the library-assigned numeric identifier.
	ID int64 `json:"id" yaml:"id"`

	// URL is the location the paper was added from.
	URL string `json:"url" yaml:"url"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the author list as a single display string.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// DOI and ArxivID are external identifiers when known.
	DOI     string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// BibTeX is a stored citation entry, if one was fetched.
	BibTeX string `json:"bibtex,omitempty" yaml:"bibtex,omitempty"`

	// Tags label the paper for browsing. Stored as JSON in the database.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Description is a short user or LLM supplied blurb.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Status is the reading status: reading, done, or archived.
	Status PaperStatus `json:"status" yaml:"status"`

	// PDFPath is the blob-store key of the attached PDF, if any.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	AddedAt   time.Time `json:"added_at" yaml:"added_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// PaperUpdate lists the mutable fields of a Paper. Each field is optional;
// nil means "leave unchanged". This is a closed contract: anything not
// listed here cannot be updated after creation.
type PaperUpdate struct {
	Title       *string
	Authors     *string
	Abstract    *string
	DOI         *string
	ArxivID     *string
	BibTeX      *string
	Tags        *[]string
	Description *string
	Status      *PaperStatus
	PDFPath     *string
}

// DoneEntry records the annotations a user attaches when finishing a paper.
// A paper owns at most one.
type DoneEntry struct {
	ID      int64 `json:"id" yaml:"id"`
	PaperID int64 `json:"paper_id" yaml:"paper_id"`

	// Concepts are the user-curated labels for the paper.
	Concepts []string `json:"concepts,omitempty" yaml:"concepts,omitempty"`

	// CompressedSummary is a short summary of the paper, usually LLM-generated.
	CompressedSummary string `json:"compressed_summary,omitempty" yaml:"compressed_summary,omitempty"`

	// KeyContributions captures the user's notes on what the paper contributes.
	KeyContributions string `json:"key_contributions,omitempty" yaml:"key_contributions,omitempty"`

	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}

// AnnotationType classifies an annotation on a paper page.
type AnnotationType string

const (
	AnnotationHighlight AnnotationType = "highlight"
	AnnotationComment   AnnotationType = "comment"
	AnnotationNote      AnnotationType = "note"
)

// Annotation is a page-anchored note on a paper.
type Annotation struct {
	ID            int64          `json:"id" yaml:"id"`
	PaperID       int64          `json:"paper_id" yaml:"paper_id"`
	Page          int            `json:"page" yaml:"page"`
	Type          AnnotationType `json:"type" yaml:"type"`
	Content       string         `json:"content,omitempty" yaml:"content,omitempty"`
	SelectionText string         `json:"selection_text,omitempty" yaml:"selection_text,omitempty"`
	Position      string         `json:"position,omitempty" yaml:"position,omitempty"`
	Color         string         `json:"color" yaml:"color"`
	CreatedAt     time.Time      `json:"created_at" yaml:"created_at"`
}
