// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metadata implements clients for the external paper catalogs:
// arXiv, Semantic Scholar, and CrossRef. Each client normalizes its API's
// records into types.ExternalPaper and can generate a BibTeX entry.
package metadata

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paperstack/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivURLPatterns match the URL shapes an arXiv ID can be extracted from.
var arxivURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)arxiv\.org/abs/(\d+\.\d+)`),
	regexp.MustCompile(`(?i)arxiv\.org/pdf/(\d+\.\d+)`),
	regexp.MustCompile(`(?i)arxiv\.org/abs/([a-z-]+/\d+)`),
	regexp.MustCompile(`(?i)arxiv:(\d+\.\d+)`),
}

// ArxivClient queries the arXiv Atom API.
type ArxivClient struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the provider identifier.
func (c *ArxivClient) Name() string { return "arxiv" }

// ExtractArxivID pulls an arXiv ID out of a URL, or returns "" when the
// URL is not an arXiv link.
func ExtractArxivID(url string) string {
	for _, pattern := range arxivURLPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// Search queries arXiv and returns up to limit normalized records.
func (c *ArxivClient) Search(ctx context.Context, query string, limit int) ([]types.ExternalPaper, error) {
	if limit <= 0 {
		limit = 10
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty arXiv query")
	}

	url := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, strings.Join(terms, "+"), limit)

	feed, err := c.fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	var papers []types.ExternalPaper
	for _, entry := range feed.Entries {
		p := entryToPaper(entry)
		if p.ArxivID == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// GetByArxivID looks up a single paper, or nil when arXiv does not know it.
func (c *ArxivClient) GetByArxivID(ctx context.Context, arxivID string) (*types.ExternalPaper, error) {
	url := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, arxivID)
	feed, err := c.fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, nil
	}
	p := entryToPaper(feed.Entries[0])
	if p.ArxivID == "" {
		return nil, nil
	}
	return &p, nil
}

// GetByDOI is unsupported on the arXiv API; it always reports not found.
func (c *ArxivClient) GetByDOI(ctx context.Context, doi string) (*types.ExternalPaper, error) {
	return nil, nil
}

// BibTeX renders the canonical arXiv preprint citation.
func (c *ArxivClient) BibTeX(p *types.ExternalPaper) string {
	key := strings.NewReplacer(".", "_", "/", "_").Replace(p.ArxivID)
	year := p.Year
	if year == 0 {
		year = time.Now().Year()
	}
	primaryClass := "cs.LG"
	if len(p.Categories) > 0 {
		primaryClass = p.Categories[0]
	}
	return fmt.Sprintf(`@article{%s,
  title = {%s},
  author = {%s},
  journal = {arXiv preprint arXiv:%s},
  year = {%d},
  eprint = {%s},
  archivePrefix = {arXiv},
  primaryClass = {%s}
}`, key, p.Title, strings.Join(p.Authors, " and "), p.ArxivID, year, p.ArxivID, primaryClass)
}

func (c *ArxivClient) fetchFeed(ctx context.Context, url string) (*arxivFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

func entryToPaper(entry arxivEntry) types.ExternalPaper {
	arxivID := arxivIDFromEntryID(entry.ID)
	p := types.ExternalPaper{
		Title:    strings.Join(strings.Fields(entry.Title), " "),
		Abstract: strings.TrimSpace(entry.Summary),
		DOI:      entry.DOI,
		ArxivID:  arxivID,
		Venue:    "arXiv",
		Source:   "arxiv",
	}
	if arxivID != "" {
		p.URL = "https://arxiv.org/abs/" + arxivID
	}
	for _, a := range entry.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		p.Year = t.Year()
	}
	// Primary category first, then the remaining subject tags.
	if entry.PrimaryCategory.Term != "" {
		p.Categories = append(p.Categories, entry.PrimaryCategory.Term)
	}
	for _, cat := range entry.Categories {
		if cat.Term != "" && !containsCategory(p.Categories, cat.Term) {
			p.Categories = append(p.Categories, cat.Term)
		}
	}
	return p
}

func containsCategory(categories []string, term string) bool {
	for _, c := range categories {
		if c == term {
			return true
		}
	}
	return false
}

// arxivIDFromEntryID extracts "2301.07041" from an Atom entry ID like
// "http://arxiv.org/abs/2301.07041v2". Version suffixes are stripped.
func arxivIDFromEntryID(entryID string) string {
	idx := strings.LastIndex(entryID, "/")
	if idx < 0 || idx == len(entryID)-1 {
		return ""
	}
	id := entryID[idx+1:]
	if v := strings.LastIndex(id, "v"); v > 0 {
		if _, rest := id[:v], id[v+1:]; allDigits(rest) {
			id = id[:v]
		}
	}
	return id
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// arXiv Atom feed structures.
type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Published       string          `xml:"published"`
	DOI             string          `xml:"doi"`
	Authors         []arxivAuthor   `xml:"author"`
	PrimaryCategory arxivCategory   `xml:"primary_category"`
	Categories      []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}
