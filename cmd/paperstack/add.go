package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperstack/internal/metadata"
	"github.com/pdiddy/paperstack/internal/pdfstore"
	"github.com/pdiddy/paperstack/internal/secrets"
	"github.com/pdiddy/paperstack/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a paper to the library by URL",
	Long: `Add stores a paper in the library. When the URL contains an arXiv ID or a
DOI, title, authors, and abstract are filled in from the matching catalog.
Flags override anything the lookup returns.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "paper title (overrides metadata lookup)")
	addCmd.Flags().String("authors", "", "comma-separated author list")
	addCmd.Flags().StringSlice("tags", nil, "tags to attach")
	addCmd.Flags().String("description", "", "one-line note about why this paper matters")
	addCmd.Flags().Bool("pdf", false, "download the PDF into the library")
	addCmd.Flags().Bool("no-ai", false, "skip AI tag suggestions")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rawURL := args[0]

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if existing, err := s.GetPaperByURL(ctx, rawURL); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("paper already in library (id %d): %s", existing.ID, existing.Title)
	}

	paper := types.Paper{URL: rawURL, Status: types.StatusReading}
	paper.Title, _ = cmd.Flags().GetString("title")
	paper.Authors, _ = cmd.Flags().GetString("authors")
	paper.Description, _ = cmd.Flags().GetString("description")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	paper.Tags = tags

	client := newHTTPClient()
	if found := lookupMetadata(cmd, rawURL, &paper); !found && paper.Title == "" {
		return fmt.Errorf("no metadata found for %s; provide --title", rawURL)
	}

	if noAI, _ := cmd.Flags().GetBool("no-ai"); !noAI && len(paper.Tags) == 0 && paper.Abstract != "" {
		if assistant, err := newAssistant(); err == nil {
			if suggested, err := assistant.SuggestTags(ctx, paper.Title, paper.Abstract); err == nil {
				paper.Tags = suggested
			} else {
				fmt.Fprintf(os.Stderr, "warning: tag suggestion failed: %v\n", err)
			}
		}
	}

	stored, err := s.AddPaper(ctx, &paper)
	if err != nil {
		return err
	}

	if wantPDF, _ := cmd.Flags().GetBool("pdf"); wantPDF {
		pdfs, err := openPDFStore(s)
		if err != nil {
			return err
		}
		pdfURL := paperPDFURL(stored)
		if pdfURL == "" {
			fmt.Fprintln(os.Stderr, "warning: no PDF URL known for this paper")
		} else {
			path, err := pdfstore.Fetch(ctx, client, pdfs, fmt.Sprintf("%d", stored.ID), pdfURL, defaultUserAgent)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: PDF download failed: %v\n", err)
			} else {
				pdfPath := path
				if _, err := s.UpdatePaper(ctx, stored.ID, types.PaperUpdate{PDFPath: &pdfPath}); err != nil {
					return err
				}
				stored.PDFPath = pdfPath
			}
		}
	}

	fmt.Printf("Added paper %d: %s\n", stored.ID, stored.Title)
	if len(stored.Tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(stored.Tags, ", "))
	}
	return nil
}

// lookupMetadata fills paper fields from the catalog matching the URL:
// arXiv for arXiv IDs, CrossRef for DOIs. Fields already set by flags are
// kept. Returns whether a catalog record was found.
func lookupMetadata(cmd *cobra.Command, rawURL string, paper *types.Paper) bool {
	ctx := cmd.Context()
	client := newHTTPClient()

	var found *types.ExternalPaper
	if arxivID := metadata.ExtractArxivID(rawURL); arxivID != "" {
		paper.ArxivID = arxivID
		c := &metadata.ArxivClient{Client: client, UserAgent: defaultUserAgent}
		if p, err := c.GetByArxivID(ctx, arxivID); err == nil && p != nil {
			found = p
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "warning: arXiv lookup failed: %v\n", err)
		}
	} else if doi := metadata.ExtractDOI(rawURL); doi != "" {
		paper.DOI = doi
		c := &metadata.CrossRefClient{
			Client:    client,
			UserAgent: defaultUserAgent,
			Mailto:    secretDefault(secrets.KeyCrossRefMailto, ""),
		}
		if p, err := c.GetByDOI(ctx, doi); err == nil && p != nil {
			found = p
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "warning: CrossRef lookup failed: %v\n", err)
		}
	}

	if found == nil {
		return false
	}
	if paper.Title == "" {
		paper.Title = found.Title
	}
	if paper.Authors == "" {
		paper.Authors = strings.Join(found.Authors, ", ")
	}
	if paper.Abstract == "" {
		paper.Abstract = found.Abstract
	}
	if paper.DOI == "" {
		paper.DOI = found.DOI
	}
	if paper.ArxivID == "" {
		paper.ArxivID = found.ArxivID
	}
	return true
}

// paperPDFURL picks the PDF location for a paper: arXiv papers have a
// canonical one, everything else falls back to the paper URL itself.
func paperPDFURL(p *types.Paper) string {
	if p.ArxivID != "" {
		return "https://arxiv.org/pdf/" + p.ArxivID
	}
	if strings.HasSuffix(strings.ToLower(p.URL), ".pdf") {
		return p.URL
	}
	return ""
}
