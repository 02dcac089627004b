// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paperstack/pkg/types"
)

// FormatTable writes one result page as a human-readable table to w.
func FormatTable(page types.SearchResultPage, w io.Writer) {
	if page.Total == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	rankBase := (page.Page - 1) * page.PerPage
	for i, p := range page.Results {
		title := truncate(p.Title, 60)
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6d  %s\n",
			rankBase+i+1, title, formatAuthors(p.Authors), year, p.CitationCount, p.Source)
	}

	fmt.Fprintf(w, "\npage %d of %d (%d results total)\n",
		page.Page, totalPages(page.Total, page.PerPage), page.Total)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.ExternalPaper, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func totalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
