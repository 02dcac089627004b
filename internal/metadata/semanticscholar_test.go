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

const semanticSearchFixture = `{
  "total": 1,
  "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": "In Search of an Understandable Consensus Algorithm",
      "abstract": "Raft is a consensus algorithm...",
      "url": "https://www.semanticscholar.org/paper/abc123",
      "year": 2014,
      "venue": "USENIX ATC",
      "citationCount": 4242,
      "authors": [{"authorId": "1", "name": "Diego Ongaro"}],
      "externalIds": {"DOI": "10.5555/2643634.2643666", "ArXiv": ""}
    }
  ]
}`

func TestSemanticScholarSearch(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, semanticSearchFixture)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client(), UserAgent: "test-agent", APIKey: "key-123"}
	papers, err := c.Search(context.Background(), "raft consensus", 7)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got := capturedReq.URL.Path; got != "/paper/search" {
		t.Errorf("path = %q, want /paper/search", got)
	}
	q := capturedReq.URL.Query()
	if got := q.Get("query"); got != "raft consensus" {
		t.Errorf("query param = %q", got)
	}
	if got := q.Get("limit"); got != "7" {
		t.Errorf("limit param = %q, want 7", got)
	}
	for _, f := range []string{"title", "abstract", "citationCount", "externalIds", "venue"} {
		if !strings.Contains(q.Get("fields"), f) {
			t.Errorf("fields param %q missing %q", q.Get("fields"), f)
		}
	}
	if got := capturedReq.Header.Get("x-api-key"); got != "key-123" {
		t.Errorf("x-api-key header = %q", got)
	}

	if len(papers) != 1 {
		t.Fatalf("papers = %d, want 1", len(papers))
	}
	p := papers[0]
	if p.Title != "In Search of an Understandable Consensus Algorithm" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.CitationCount != 4242 {
		t.Errorf("CitationCount = %d, want 4242", p.CitationCount)
	}
	if p.DOI != "10.5555/2643634.2643666" {
		t.Errorf("DOI = %q", p.DOI)
	}
	if p.Source != "semantic_scholar" {
		t.Errorf("Source = %q", p.Source)
	}
	if len(p.Authors) != 1 || p.Authors[0] != "Diego Ongaro" {
		t.Errorf("Authors = %v", p.Authors)
	}
}

func TestSemanticScholarNoAPIKeyHeader(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client()}
	if _, err := c.Search(context.Background(), "q", 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, present := capturedReq.Header["X-Api-Key"]; present {
		t.Error("x-api-key header sent without a configured key")
	}
}

func TestSemanticScholarGetByDOINotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client()}
	p, err := c.GetByDOI(context.Background(), "10.1/unknown")
	if err != nil {
		t.Fatalf("GetByDOI: %v", err)
	}
	if p != nil {
		t.Errorf("paper = %+v, want nil for 404", p)
	}
}

func TestSemanticScholarGetByArxivIDPath(t *testing.T) {
	var capturedPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"paperId":"abc","title":"found"}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	c := &SemanticScholarClient{Client: ts.Client()}
	p, err := c.GetByArxivID(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("GetByArxivID: %v", err)
	}
	if !strings.Contains(capturedPath, "ARXIV:1706.03762") {
		t.Errorf("path = %q, want ARXIV: prefixed ID", capturedPath)
	}
	if p == nil || p.Title != "found" {
		t.Errorf("paper = %+v", p)
	}
}

func TestSemanticScholarBibTeX(t *testing.T) {
	c := &SemanticScholarClient{}
	entry := c.BibTeX(&paperFixture)

	for _, want := range []string{
		"@article{1706_03762,",
		"journal = {NeurIPS}",
		"doi = {10.48550/arXiv.1706.03762}",
		"eprint = {1706.03762}",
		"archivePrefix = {arXiv}",
	} {
		if !strings.Contains(entry, want) {
			t.Errorf("BibTeX missing %q:\n%s", want, entry)
		}
	}
}

func TestBibtexKey(t *testing.T) {
	tests := []struct {
		name  string
		paper types.ExternalPaper
		want  string
	}{
		{"arxiv id preferred", types.ExternalPaper{ArxivID: "1706.03762", DOI: "10.1/x"}, "1706_03762"},
		{"doi fallback", types.ExternalPaper{DOI: "10.1145/3297858.3304013"}, "10_1145_3297858_3304013"},
		{"long doi capped", types.ExternalPaper{DOI: "10.1145/" + strings.Repeat("x", 40)}, "10_1145_" + strings.Repeat("x", 22)},
		{"no identifiers", types.ExternalPaper{Title: "whatever"}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bibtexKey(&tt.paper); got != tt.want {
				t.Errorf("bibtexKey = %q, want %q", got, tt.want)
			}
		})
	}
}
