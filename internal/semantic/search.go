// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic ranks library papers against a query by combining
// embedding similarity with lexical keyword matching. Papers corroborated
// by both signals outrank single-signal matches.
package semantic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/paperstack/pkg/types"
)

// Repository is the narrow persistence surface the engine consumes. The
// SQLite store satisfies it; tests supply an in-memory fake.
type Repository interface {
	GetPaper(ctx context.Context, id int64) (*types.Paper, error)
	ListPapers(ctx context.Context, status types.PaperStatus) ([]types.Paper, error)
	ListDone(ctx context.Context) ([]types.Paper, error)
	GetDoneEntry(ctx context.Context, paperID int64) (*types.DoneEntry, error)
	GetEmbeddings(ctx context.Context, paperID int64) ([]types.EmbeddingRecord, error)
	AddEmbedding(ctx context.Context, rec *types.EmbeddingRecord) error
	DeleteEmbeddings(ctx context.Context, paperID int64) error
}

// Engine performs hybrid search over the library.
type Engine struct {
	repo    Repository
	encoder Encoder
}

// NewEngine builds an engine from explicit collaborators. Neither is
// created lazily; callers own construction and lifetime.
func NewEngine(repo Repository, encoder Encoder) *Engine {
	return &Engine{repo: repo, encoder: encoder}
}

// SearchOptions control one search call.
type SearchOptions struct {
	// TopK bounds the merged result count, not per-stage candidates.
	TopK int

	// MinScore is the floor below which matches are discarded.
	MinScore float64

	// DoneOnly restricts the search scope to papers marked done.
	DoneOnly bool
}

// DefaultSearchOptions returns the standard search parameters.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{TopK: 10, MinScore: 0.3, DoneOnly: true}
}

// match is the per-paper state accumulated during one search call. Exactly
// one survives per paper: the best embedding hit, possibly boosted by a
// keyword hit.
type match struct {
	paperID     int64
	score       float64
	contentType string
	matchedText string
}

const excerptLimit = 300

// keyword rule weights. Whole-query hits outweigh single-term hits, and
// user-curated concepts are the highest-precision signal.
const (
	weightTitleExact     = 0.8
	weightAbstractExact  = 0.7
	weightTitleTerm      = 0.5
	weightAbstractTerm   = 0.4
	weightConceptExact   = 0.95
	weightTermInConcept  = 0.7
	weightConceptInQuery = 0.75
)

// corroborationBonus is the share of the weaker signal added when a paper
// matches both by embedding and by keyword. The sum is capped at 1.0.
const corroborationBonus = 0.2

// Index creates embeddings for one paper and returns the count created
// (0-3). A missing paper indexes nothing and returns 0. Existing records
// are deleted first, so reindexing is a full replace and idempotent:
// afterwards the paper has at most one record per content type.
func (e *Engine) Index(ctx context.Context, paperID int64) (int, error) {
	paper, err := e.repo.GetPaper(ctx, paperID)
	if err != nil {
		return 0, err
	}
	if paper == nil {
		return 0, nil
	}

	if err := e.repo.DeleteEmbeddings(ctx, paperID); err != nil {
		return 0, err
	}

	count := 0
	addRecord := func(contentType types.ContentType, text string) error {
		vec, err := e.encoder.Encode(ctx, text)
		if err != nil {
			return fmt.Errorf("encoding %s for paper %d: %w", contentType, paperID, err)
		}
		rec := &types.EmbeddingRecord{
			PaperID:     paperID,
			ContentType: contentType,
			Vector:      vec,
			SourceText:  text,
		}
		if err := e.repo.AddEmbedding(ctx, rec); err != nil {
			return err
		}
		count++
		return nil
	}

	if paper.Abstract != "" {
		if err := addRecord(types.ContentAbstract, paper.Abstract); err != nil {
			return count, err
		}
	}

	done, err := e.repo.GetDoneEntry(ctx, paperID)
	if err != nil {
		return count, err
	}
	if done != nil {
		if done.CompressedSummary != "" {
			if err := addRecord(types.ContentSummary, done.CompressedSummary); err != nil {
				return count, err
			}
		}
		if len(done.Concepts) > 0 {
			// Concepts are indexed as one unit, not individually.
			if err := addRecord(types.ContentConcepts, strings.Join(done.Concepts, ", ")); err != nil {
				return count, err
			}
		}
	}

	return count, nil
}

// Search returns papers matching the query, ranked by combined score
// descending. Every returned score lies in [0, 1] and clears
// opts.MinScore; an empty corpus or no matches yields an empty list, not
// an error. When the encoder is unavailable the search degrades to pure
// keyword matching.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) ([]types.SearchResult, error) {
	queryLower := strings.ToLower(query)
	queryTerms := splitTerms(queryLower)

	matches := make(map[int64]*match)

	// Embedding stage: best-scoring record per paper. Encoder failure is
	// isolated; the keyword stage still runs.
	if queryVec, err := e.encoder.Encode(ctx, query); err == nil {
		records, err := e.repo.GetEmbeddings(ctx, 0)
		if err != nil {
			return nil, err
		}

		if opts.DoneOnly && len(records) > 0 {
			doneIDs, err := e.doneIDs(ctx)
			if err != nil {
				return nil, err
			}
			filtered := records[:0]
			for _, rec := range records {
				if doneIDs[rec.PaperID] {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}

		for _, rec := range records {
			score := cosine(queryVec, rec.Vector)
			if score < opts.MinScore {
				continue
			}
			if m, ok := matches[rec.PaperID]; ok && score <= m.score {
				continue
			}
			matches[rec.PaperID] = &match{
				paperID:     rec.PaperID,
				score:       score,
				contentType: string(rec.ContentType),
				matchedText: excerpt(rec.SourceText),
			}
		}
	}

	// Keyword stage: independent lexical score per in-scope paper, then
	// merged with the embedding match when both fired.
	scope, err := e.searchScope(ctx, opts.DoneOnly)
	if err != nil {
		return nil, err
	}

	for i := range scope {
		paper := &scope[i]
		keywordScore, matchedText, err := e.keywordScore(ctx, paper, queryLower, queryTerms)
		if err != nil {
			return nil, err
		}
		if keywordScore < opts.MinScore {
			continue
		}

		if existing, ok := matches[paper.ID]; ok {
			// Corroborated match: keep the stronger score, boost it by a
			// fifth of the weaker one, cap at 1.0.
			stronger, weaker := existing.score, keywordScore
			if weaker > stronger {
				stronger, weaker = weaker, stronger
			}
			combined := stronger + weaker*corroborationBonus
			if combined > 1.0 {
				combined = 1.0
			}
			existing.score = combined
		} else {
			matches[paper.ID] = &match{
				paperID:     paper.ID,
				score:       keywordScore,
				contentType: "keyword",
				matchedText: matchedText,
			}
		}
	}

	ranked := make([]*match, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, m)
	}
	// Equal scores order by ascending paper ID so results are deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].paperID < ranked[j].paperID
	})
	if opts.TopK < len(ranked) {
		if opts.TopK < 0 {
			opts.TopK = 0
		}
		ranked = ranked[:opts.TopK]
	}

	results := make([]types.SearchResult, 0, len(ranked))
	for _, m := range ranked {
		paper, err := e.repo.GetPaper(ctx, m.paperID)
		if err != nil {
			return nil, err
		}
		if paper == nil {
			continue
		}
		result := types.SearchResult{
			Paper:          *paper,
			Score:          m.score,
			MatchedContent: m.matchedText,
		}
		if done, err := e.repo.GetDoneEntry(ctx, m.paperID); err == nil && done != nil {
			result.Summary = done.CompressedSummary
		}
		results = append(results, result)
	}
	return results, nil
}

// FindSimilar ranks the corpus against a paper's own abstract and drops the
// paper itself, which always matches with score 1.0. Papers without an
// abstract have nothing to compare and return an empty list.
func (e *Engine) FindSimilar(ctx context.Context, paperID int64, topK int) ([]types.SearchResult, error) {
	paper, err := e.repo.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper == nil || paper.Abstract == "" {
		return nil, nil
	}

	opts := DefaultSearchOptions()
	opts.TopK = topK + 1
	opts.DoneOnly = false

	results, err := e.Search(ctx, paper.Abstract, opts)
	if err != nil {
		return nil, err
	}

	similar := results[:0]
	for _, r := range results {
		if r.Paper.ID == paperID {
			continue
		}
		similar = append(similar, r)
	}
	if topK < len(similar) {
		similar = similar[:topK]
	}
	return similar, nil
}

// ReindexAll indexes every paper in the library and returns the total
// embeddings created. It is not transactional across papers: a failure
// partway leaves earlier papers indexed, which is safe to re-run because
// Index is idempotent.
func (e *Engine) ReindexAll(ctx context.Context) (int, error) {
	papers, err := e.repo.ListPapers(ctx, "")
	if err != nil {
		return 0, err
	}

	total := 0
	for _, p := range papers {
		n, err := e.Index(ctx, p.ID)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// keywordScore computes the lexical score for one paper as a running max
// over the match rules, together with the excerpt of the first text that
// matched. Concept rules only apply to papers with a done entry.
func (e *Engine) keywordScore(ctx context.Context, paper *types.Paper, queryLower string, queryTerms []string) (float64, string, error) {
	score := 0.0
	matchedText := ""

	titleLower := strings.ToLower(paper.Title)
	if paper.Title != "" && strings.Contains(titleLower, queryLower) {
		score = weightTitleExact
		matchedText = paper.Title
	} else if paper.Title != "" && anyTermIn(titleLower, queryTerms) {
		score = weightTitleTerm
		matchedText = paper.Title
	}

	if paper.Abstract != "" {
		abstractLower := strings.ToLower(paper.Abstract)
		if strings.Contains(abstractLower, queryLower) {
			score = maxScore(score, weightAbstractExact)
			if matchedText == "" {
				matchedText = excerpt(paper.Abstract)
			}
		} else if anyTermIn(abstractLower, queryTerms) {
			score = maxScore(score, weightAbstractTerm)
			if matchedText == "" {
				matchedText = excerpt(paper.Abstract)
			}
		}
	}

	done, err := e.repo.GetDoneEntry(ctx, paper.ID)
	if err != nil {
		return 0, "", err
	}
	if done != nil && len(done.Concepts) > 0 {
		conceptsLower := make([]string, len(done.Concepts))
		for i, c := range done.Concepts {
			conceptsLower[i] = strings.ToLower(c)
		}
		conceptsText := "Concepts: " + strings.Join(done.Concepts, ", ")

		switch {
		case containsString(conceptsLower, queryLower):
			// The whole query names a curated concept: strongest signal,
			// and the excerpt always shows the concept list.
			score = maxScore(score, weightConceptExact)
			matchedText = conceptsText
		case anyTermInAny(conceptsLower, queryTerms):
			score = maxScore(score, weightTermInConcept)
			if matchedText == "" {
				matchedText = conceptsText
			}
		case anyContainedIn(queryLower, conceptsLower):
			score = maxScore(score, weightConceptInQuery)
			if matchedText == "" {
				matchedText = conceptsText
			}
		}
	}

	return score, matchedText, nil
}

// searchScope returns the papers whose title/abstract/concepts participate
// in keyword matching, mirroring the done-only restriction.
func (e *Engine) searchScope(ctx context.Context, doneOnly bool) ([]types.Paper, error) {
	if doneOnly {
		return e.repo.ListDone(ctx)
	}
	return e.repo.ListPapers(ctx, "")
}

func (e *Engine) doneIDs(ctx context.Context) (map[int64]bool, error) {
	done, err := e.repo.ListDone(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(done))
	for _, p := range done {
		ids[p.ID] = true
	}
	return ids, nil
}

// splitTerms tokenizes a lowercased query, keeping terms longer than two
// characters. Short tokens match too much to carry signal.
func splitTerms(queryLower string) []string {
	var terms []string
	for _, t := range strings.Fields(queryLower) {
		if len(t) > 2 {
			terms = append(terms, t)
		}
	}
	return terms
}

func anyTermIn(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func anyTermInAny(texts []string, terms []string) bool {
	for _, text := range texts {
		if anyTermIn(text, terms) {
			return true
		}
	}
	return false
}

func anyContainedIn(text string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(text, c) {
			return true
		}
	}
	return false
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func maxScore(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// excerpt trims matched text to the excerpt limit without splitting a rune.
func excerpt(s string) string {
	if len(s) <= excerptLimit {
		return s
	}
	cut := excerptLimit
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
