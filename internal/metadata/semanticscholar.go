// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/paperstack/internal/httputil"
	"github.com/pdiddy/paperstack/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph API base. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const semanticFields = "title,abstract,authors,externalIds,year,venue,citationCount,url,paperId"

// SemanticScholarClient queries the Semantic Scholar graph API.
type SemanticScholarClient struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
}

// Name returns the provider identifier.
func (c *SemanticScholarClient) Name() string { return "semantic_scholar" }

// Search queries the paper search endpoint and returns up to limit records.
func (c *SemanticScholarClient) Search(ctx context.Context, query string, limit int) ([]types.ExternalPaper, error) {
	if query == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "/paper/search?" + params.Encode()

	var sr semanticResponse
	if err := c.getJSON(ctx, reqURL, &sr); err != nil {
		return nil, err
	}

	var papers []types.ExternalPaper
	for _, sp := range sr.Data {
		papers = append(papers, semanticToPaper(sp))
	}
	return papers, nil
}

// GetByDOI looks up a single paper by DOI, or nil when unknown.
func (c *SemanticScholarClient) GetByDOI(ctx context.Context, doi string) (*types.ExternalPaper, error) {
	return c.getPaper(ctx, "DOI:"+doi)
}

// GetByArxivID looks up a single paper by arXiv ID, or nil when unknown.
func (c *SemanticScholarClient) GetByArxivID(ctx context.Context, arxivID string) (*types.ExternalPaper, error) {
	return c.getPaper(ctx, "ARXIV:"+arxivID)
}

func (c *SemanticScholarClient) getPaper(ctx context.Context, id string) (*types.ExternalPaper, error) {
	params := url.Values{"fields": {semanticFields}}
	reqURL := semanticAPIBase + "/paper/" + url.PathEscape(id) + "?" + params.Encode()

	var sp semanticPaper
	if err := c.getJSON(ctx, reqURL, &sp); err != nil {
		return nil, err
	}
	if sp.Title == "" && sp.PaperID == "" {
		return nil, nil
	}
	p := semanticToPaper(sp)
	return &p, nil
}

// BibTeX renders a citation from the provider's metadata.
func (c *SemanticScholarClient) BibTeX(p *types.ExternalPaper) string {
	key := bibtexKey(p)
	authors := joinAuthors(p.Authors)

	entry := fmt.Sprintf("@article{%s,\n  title = {%s},\n  author = {%s},\n  year = {%d}", key, p.Title, authors, p.Year)
	if p.Venue != "" {
		entry += fmt.Sprintf(",\n  journal = {%s}", p.Venue)
	}
	if p.DOI != "" {
		entry += fmt.Sprintf(",\n  doi = {%s}", p.DOI)
	}
	if p.ArxivID != "" {
		entry += fmt.Sprintf(",\n  eprint = {%s}", p.ArxivID)
		entry += ",\n  archivePrefix = {arXiv}"
	}
	entry += "\n}"
	return entry
}

func (c *SemanticScholarClient) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

func semanticToPaper(sp semanticPaper) types.ExternalPaper {
	p := types.ExternalPaper{
		Title:         sp.Title,
		Abstract:      sp.Abstract,
		URL:           sp.URL,
		DOI:           sp.ExternalIDs.DOI,
		ArxivID:       sp.ExternalIDs.ArXiv,
		Year:          sp.Year,
		Venue:         sp.Venue,
		CitationCount: sp.CitationCount,
		Source:        "semantic_scholar",
	}
	for _, a := range sp.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	return p
}

func bibtexKey(p *types.ExternalPaper) string {
	switch {
	case p.ArxivID != "":
		return replaceBibtexChars(p.ArxivID)
	case p.DOI != "":
		key := replaceBibtexChars(p.DOI)
		if len(key) > 30 {
			key = key[:30]
		}
		return key
	default:
		return "unknown"
	}
}

func replaceBibtexChars(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '/':
			out[i] = '_'
		default:
			out[i] = s[i]
		}
	}
	return string(out)
}

func joinAuthors(authors []string) string {
	out := ""
	for i, a := range authors {
		if i > 0 {
			out += " and "
		}
		out += a
	}
	return out
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	URL           string              `json:"url"`
	Year          int                 `json:"year"`
	Venue         string              `json:"venue"`
	CitationCount int                 `json:"citationCount"`
	Authors       []semanticAuthor    `json:"authors"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
