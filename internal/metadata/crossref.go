// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paperstack/internal/httputil"
	"github.com/pdiddy/paperstack/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// doiPatterns match the URL shapes a DOI can be extracted from.
var doiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)doi\.org/(10\.\d{4,}/[^\s]+)`),
	regexp.MustCompile(`(?i)(10\.\d{4,}/[^\s]+)`),
}

// jatsTagPattern strips JATS/HTML markup from CrossRef abstracts.
var jatsTagPattern = regexp.MustCompile(`<[^>]+>`)

// CrossRefClient queries the CrossRef REST API.
type CrossRefClient struct {
	Client    *http.Client
	UserAgent string

	// Mailto joins the CrossRef polite pool when set.
	Mailto string
}

// Name returns the provider identifier.
func (c *CrossRefClient) Name() string { return "crossref" }

// ExtractDOI pulls a DOI out of a URL, or returns "" when none is present.
func ExtractDOI(rawURL string) string {
	for _, pattern := range doiPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// Search queries the works endpoint and returns up to limit records.
func (c *CrossRefClient) Search(ctx context.Context, query string, limit int) ([]types.ExternalPaper, error) {
	if query == "" {
		return nil, fmt.Errorf("empty CrossRef query")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{
		"query": {query},
		"rows":  {fmt.Sprintf("%d", limit)},
	}
	reqURL := crossrefAPIBase + "?" + params.Encode()

	var cr crossrefSearchResponse
	if err := c.getJSON(ctx, reqURL, &cr); err != nil {
		return nil, err
	}

	var papers []types.ExternalPaper
	for _, item := range cr.Message.Items {
		papers = append(papers, crossrefToPaper(item))
	}
	return papers, nil
}

// GetByDOI looks up a single work, or nil when the registry does not know it.
func (c *CrossRefClient) GetByDOI(ctx context.Context, doi string) (*types.ExternalPaper, error) {
	reqURL := crossrefAPIBase + "/" + url.PathEscape(doi)

	var cr crossrefWorkResponse
	if err := c.getJSON(ctx, reqURL, &cr); err != nil {
		return nil, err
	}
	if cr.Message.DOI == "" {
		return nil, nil
	}
	p := crossrefToPaper(cr.Message)
	return &p, nil
}

// GetByArxivID is unsupported on CrossRef; it always reports not found.
func (c *CrossRefClient) GetByArxivID(ctx context.Context, arxivID string) (*types.ExternalPaper, error) {
	return nil, nil
}

// BibTeX renders a citation from registry metadata.
func (c *CrossRefClient) BibTeX(p *types.ExternalPaper) string {
	key := replaceBibtexChars(p.DOI)
	if len(key) > 30 {
		key = key[:30]
	}

	entry := fmt.Sprintf("@article{%s,\n  title = {%s},\n  author = {%s},\n  year = {%d}", key, p.Title, joinAuthors(p.Authors), p.Year)
	if p.Venue != "" {
		entry += fmt.Sprintf(",\n  journal = {%s}", p.Venue)
	}
	if p.DOI != "" {
		entry += fmt.Sprintf(",\n  doi = {%s}", p.DOI)
	}
	if p.URL != "" {
		entry += fmt.Sprintf(",\n  url = {%s}", p.URL)
	}
	entry += "\n}"
	return entry
}

func (c *CrossRefClient) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	userAgent := c.UserAgent
	if c.Mailto != "" {
		userAgent = fmt.Sprintf("%s (mailto:%s)", c.UserAgent, c.Mailto)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return nil
}

func crossrefToPaper(item crossrefWork) types.ExternalPaper {
	p := types.ExternalPaper{
		DOI:           item.DOI,
		URL:           item.URL,
		CitationCount: item.IsReferencedByCount,
		Source:        "crossref",
	}

	if len(item.Title) > 0 {
		p.Title = item.Title[0]
	}
	if len(item.ContainerTitle) > 0 {
		p.Venue = item.ContainerTitle[0]
	}
	if item.Abstract != "" {
		p.Abstract = strings.TrimSpace(jatsTagPattern.ReplaceAllString(item.Abstract, ""))
	}
	for _, a := range item.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if parts := item.Published.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		p.Year = parts[0][0]
	}
	return p
}

// CrossRef API JSON structures.
type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI                 string           `json:"DOI"`
	Title               []string         `json:"title"`
	Abstract            string           `json:"abstract"`
	URL                 string           `json:"URL"`
	ContainerTitle      []string         `json:"container-title"`
	Publisher           string           `json:"publisher"`
	IsReferencedByCount int              `json:"is-referenced-by-count"`
	Author              []crossrefAuthor `json:"author"`
	Published           crossrefDate     `json:"published"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
