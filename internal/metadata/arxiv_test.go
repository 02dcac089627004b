// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/paperstack/pkg/types"
)

// paperFixture is a normalized record shared across BibTeX tests.
var paperFixture = types.ExternalPaper{
	Title:      "Attention Is All You Need",
	Authors:    []string{"Ashish Vaswani", "Noam Shazeer"},
	ArxivID:    "1706.03762",
	DOI:        "10.48550/arXiv.1706.03762",
	Venue:      "NeurIPS",
	Year:       2017,
	URL:        "https://arxiv.org/abs/1706.03762",
	Categories: []string{"cs.CL", "cs.LG"},
}

const arxivFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
 You Need</title>
    <summary>  The dominant sequence transduction models...  </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:primary_category term="cs.CL"/>
    <category term="cs.CL"/>
    <category term="cs.LG"/>
  </entry>
</feed>`

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"abs url", "https://arxiv.org/abs/2301.07041", "2301.07041"},
		{"pdf url", "https://arxiv.org/pdf/2301.07041", "2301.07041"},
		{"old style", "https://arxiv.org/abs/math-ph/0309136", "math-ph/0309136"},
		{"prefixed", "arXiv:2301.07041", "2301.07041"},
		{"case insensitive", "HTTPS://ARXIV.ORG/ABS/2301.07041", "2301.07041"},
		{"not arxiv", "https://example.com/paper.pdf", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractArxivID(tt.url); got != tt.want {
				t.Errorf("ExtractArxivID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestArxivSearchRequestAndParsing(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, arxivFeedFixture)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := &ArxivClient{Client: ts.Client(), UserAgent: "test-agent"}
	papers, err := c.Search(context.Background(), "attention transformers", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got := capturedReq.URL.Query().Get("search_query"); got != "all:attention+transformers" {
		t.Errorf("search_query = %q, want terms joined under all:", got)
	}
	if got := capturedReq.URL.Query().Get("max_results"); got != "5" {
		t.Errorf("max_results = %q, want 5", got)
	}
	if got := capturedReq.Header.Get("User-Agent"); got != "test-agent" {
		t.Errorf("User-Agent = %q", got)
	}

	if len(papers) != 1 {
		t.Fatalf("papers = %d, want 1", len(papers))
	}
	p := papers[0]
	if p.ArxivID != "1706.03762" {
		t.Errorf("ArxivID = %q, want version suffix stripped", p.ArxivID)
	}
	if p.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q, want whitespace collapsed", p.Title)
	}
	if p.Abstract != "The dominant sequence transduction models..." {
		t.Errorf("Abstract = %q, want trimmed", p.Abstract)
	}
	if p.Year != 2017 {
		t.Errorf("Year = %d, want 2017", p.Year)
	}
	if p.URL != "https://arxiv.org/abs/1706.03762" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Venue != "arXiv" || p.Source != "arxiv" {
		t.Errorf("Venue/Source = %q/%q", p.Venue, p.Source)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", p.Authors)
	}
	if len(p.Categories) != 2 || p.Categories[0] != "cs.CL" || p.Categories[1] != "cs.LG" {
		t.Errorf("Categories = %v, want primary first then deduped tags", p.Categories)
	}
}

func TestArxivGetByArxivIDNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// arXiv returns an empty feed, not a 404, for unknown IDs.
		fmt.Fprint(w, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := &ArxivClient{Client: ts.Client()}
	p, err := c.GetByArxivID(context.Background(), "9999.99999")
	if err != nil {
		t.Fatalf("GetByArxivID: %v", err)
	}
	if p != nil {
		t.Errorf("paper = %+v, want nil for unknown ID", p)
	}
}

func TestArxivServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := &ArxivClient{Client: ts.Client()}
	if _, err := c.Search(context.Background(), "anything", 5); err == nil {
		t.Error("expected error on HTTP 503")
	}
}

func TestArxivBibTeX(t *testing.T) {
	c := &ArxivClient{}
	entry := c.BibTeX(&paperFixture)

	for _, want := range []string{
		"@article{1706_03762,",
		"eprint = {1706.03762}",
		"archivePrefix = {arXiv}",
		"journal = {arXiv preprint arXiv:1706.03762}",
		"author = {Ashish Vaswani and Noam Shazeer}",
		"year = {2017}",
		"primaryClass = {cs.CL}",
	} {
		if !strings.Contains(entry, want) {
			t.Errorf("BibTeX missing %q:\n%s", want, entry)
		}
	}

	// Without categories the entry still carries a primaryClass.
	bare := paperFixture
	bare.Categories = nil
	if entry := c.BibTeX(&bare); !strings.Contains(entry, "primaryClass = {cs.LG}") {
		t.Errorf("BibTeX without categories missing default primaryClass:\n%s", entry)
	}
}

func TestArxivIDFromEntryID(t *testing.T) {
	tests := []struct {
		entryID string
		want    string
	}{
		{"http://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v12", "1706.03762"},
		{"", ""},
		{"no-slash", ""},
	}
	for _, tt := range tests {
		if got := arxivIDFromEntryID(tt.entryID); got != tt.want {
			t.Errorf("arxivIDFromEntryID(%q) = %q, want %q", tt.entryID, got, tt.want)
		}
	}
}
