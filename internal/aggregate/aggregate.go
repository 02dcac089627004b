// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans a query out to the external paper catalogs and
// returns one deduplicated, citation-ranked result list with pagination.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/paperstack/pkg/types"
)

// Provider searches a single external catalog. Each catalog client
// (arXiv, Semantic Scholar, CrossRef) implements this interface.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.ExternalPaper, error)
}

// CitationProvider is implemented by providers that can resolve a single
// record and render a BibTeX entry for it.
type CitationProvider interface {
	Provider
	GetByArxivID(ctx context.Context, arxivID string) (*types.ExternalPaper, error)
	GetByDOI(ctx context.Context, doi string) (*types.ExternalPaper, error)
	BibTeX(p *types.ExternalPaper) string
}

// Aggregator merges results from multiple providers. Providers are queried
// sequentially in registration order, so earlier providers win dedup ties.
type Aggregator struct {
	providers  []Provider
	maxResults int
	perPage    int
	warn       io.Writer
}

// New builds an aggregator over the given providers. Provider order is the
// query order: register the most trusted source first. Warnings about
// failed providers are written to w; pass nil to discard them.
func New(providers []Provider, cfg types.AggregatorConfig, w io.Writer) *Aggregator {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	if w == nil {
		w = io.Discard
	}
	return &Aggregator{
		providers:  providers,
		maxResults: maxResults,
		perPage:    perPage,
		warn:       w,
	}
}

// SearchState is the immutable snapshot of one search invocation's full
// ranked result set. Pages are pure slices of it; paging never re-queries
// providers, so concurrent Page calls on one state are safe.
type SearchState struct {
	Query        string
	Results      []types.ExternalPaper
	PerPage      int
	TotalFetched int
}

// Search queries the selected sources in order, deduplicates, ranks by
// citation count descending, and truncates to maxResults. A nil or empty
// sources list selects every registered provider. A failing provider
// contributes nothing; it never aborts the aggregation.
func (a *Aggregator) Search(ctx context.Context, query string, maxResults int, sources []string) ([]types.ExternalPaper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if maxResults <= 0 {
		maxResults = a.maxResults
	}

	selected := a.selectProviders(sources)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no search sources configured")
	}

	// Over-fetch per source so dedup losses still fill maxResults.
	perSource := maxResults/len(selected) + 1

	var results []types.ExternalPaper
	seenDOIs := make(map[string]bool)
	seenArxivIDs := make(map[string]bool)
	seenTitles := make(map[string]bool)

	// accept adds a paper unless any of its keys was already recorded.
	// Keys are checked in precedence order: DOI, arXiv ID, normalized
	// title. Accepted papers register all keys they carry.
	accept := func(p types.ExternalPaper) {
		if p.DOI != "" && seenDOIs[p.DOI] {
			return
		}
		if p.ArxivID != "" && seenArxivIDs[p.ArxivID] {
			return
		}
		titleKey := normalizeTitle(p.Title)
		if seenTitles[titleKey] {
			return
		}

		if p.DOI != "" {
			seenDOIs[p.DOI] = true
		}
		if p.ArxivID != "" {
			seenArxivIDs[p.ArxivID] = true
		}
		seenTitles[titleKey] = true
		results = append(results, p)
	}

	for _, provider := range selected {
		papers, err := provider.Search(ctx, query, perSource)
		if err != nil {
			fmt.Fprintf(a.warn, "warning: source %s failed: %v\n", provider.Name(), err)
			continue
		}
		for _, p := range papers {
			accept(p)
		}
	}

	// Rank by citation count; providers that do not track citations report
	// zero. Equal counts keep merge order, i.e. provider precedence.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CitationCount > results[j].CitationCount
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// SearchPaginated runs a full search eagerly and wraps the result list in
// a pagination snapshot.
func (a *Aggregator) SearchPaginated(ctx context.Context, query string) (*SearchState, error) {
	results, err := a.Search(ctx, query, 0, nil)
	if err != nil {
		return nil, err
	}
	return &SearchState{
		Query:        query,
		Results:      results,
		PerPage:      a.perPage,
		TotalFetched: len(results),
	}, nil
}

// Page returns one page of the snapshot. Pages are 1-indexed; a page past
// the end has empty results, not an error. The state is never mutated.
func (s *SearchState) Page(page int) types.SearchResultPage {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * s.PerPage
	end := start + s.PerPage
	if start > len(s.Results) {
		start = len(s.Results)
	}
	if end > len(s.Results) {
		end = len(s.Results)
	}

	totalPages := (len(s.Results) + s.PerPage - 1) / s.PerPage

	return types.SearchResultPage{
		Results: s.Results[start:end],
		Total:   len(s.Results),
		Page:    page,
		PerPage: s.PerPage,
		HasNext: page < totalPages,
		HasPrev: page > 1,
	}
}

// BibTeX resolves a citation for an external paper, best effort: arXiv
// papers cite their canonical preprint entry; Semantic Scholar papers are
// re-looked-up by arXiv ID then DOI; any remaining DOI falls back to the
// CrossRef registry. Returns "" when no step succeeds, so the caller can
// synthesize a minimal citation from the raw metadata if it wants one.
func (a *Aggregator) BibTeX(ctx context.Context, p types.ExternalPaper) string {
	if p.Source == "arxiv" && p.ArxivID != "" {
		if cp := a.citationProvider("arxiv"); cp != nil {
			if fresh, err := cp.GetByArxivID(ctx, p.ArxivID); err == nil && fresh != nil {
				return cp.BibTeX(fresh)
			}
		}
	}

	if p.Source == "semantic_scholar" {
		if cp := a.citationProvider("semantic_scholar"); cp != nil {
			var fresh *types.ExternalPaper
			if p.ArxivID != "" {
				fresh, _ = cp.GetByArxivID(ctx, p.ArxivID)
			} else if p.DOI != "" {
				fresh, _ = cp.GetByDOI(ctx, p.DOI)
			}
			if fresh != nil {
				return cp.BibTeX(fresh)
			}
		}
	}

	if p.DOI != "" {
		if cp := a.citationProvider("crossref"); cp != nil {
			if fresh, err := cp.GetByDOI(ctx, p.DOI); err == nil && fresh != nil {
				return cp.BibTeX(fresh)
			}
		}
	}

	return ""
}

// selectProviders returns the registered providers named in sources,
// preserving registration order. Nil or empty selects all.
func (a *Aggregator) selectProviders(sources []string) []Provider {
	if len(sources) == 0 {
		return a.providers
	}
	wanted := make(map[string]bool, len(sources))
	for _, s := range sources {
		wanted[s] = true
	}
	var selected []Provider
	for _, p := range a.providers {
		if wanted[p.Name()] {
			selected = append(selected, p)
		}
	}
	return selected
}

func (a *Aggregator) citationProvider(name string) CitationProvider {
	for _, p := range a.providers {
		if p.Name() != name {
			continue
		}
		if cp, ok := p.(CitationProvider); ok {
			return cp
		}
	}
	return nil
}

// normalizeTitle lowercases and trims a title for dedup comparison.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
