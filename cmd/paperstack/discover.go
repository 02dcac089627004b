package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperstack/internal/aggregate"
	"github.com/pdiddy/paperstack/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [query...]",
	Short: "Search external catalogs for papers to read",
	Long: `Discover queries Semantic Scholar, arXiv, and CrossRef for papers matching
the query, deduplicates across catalogs, and ranks by citation count. A
catalog that is down only shrinks the result set; it never fails the search.

Use --bibtex with a result rank to print a citation for that result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Int("max-results", 0, "maximum merged results (default 30)")
	discoverCmd.Flags().Int("page", 1, "result page to display")
	discoverCmd.Flags().Int("per-page", 0, "results per page (default 10)")
	discoverCmd.Flags().StringSlice("source", nil, "catalogs to query: semantic_scholar, arxiv, crossref (default all)")
	discoverCmd.Flags().Bool("json", false, "output all results as JSON")
	discoverCmd.Flags().Bool("csl", false, "output all results as CSL-YAML")
	discoverCmd.Flags().Int("bibtex", 0, "print a BibTeX entry for the result at this rank")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	cfg := types.AggregatorConfig{
		MaxResults: viper.GetInt("aggregator.max_results"),
		PerPage:    viper.GetInt("aggregator.per_page"),
	}
	if perPage, _ := cmd.Flags().GetInt("per-page"); perPage > 0 {
		cfg.PerPage = perPage
	}

	agg := aggregate.New(buildProviders(newHTTPClient()), cfg, os.Stderr)

	maxResults, _ := cmd.Flags().GetInt("max-results")
	sources, _ := cmd.Flags().GetStringSlice("source")
	results, err := agg.Search(ctx, query, maxResults, sources)
	if err != nil {
		return err
	}

	if rank, _ := cmd.Flags().GetInt("bibtex"); rank > 0 {
		if rank > len(results) {
			return fmt.Errorf("rank %d out of range (%d results)", rank, len(results))
		}
		entry := agg.BibTeX(ctx, results[rank-1])
		if entry == "" {
			return fmt.Errorf("no citation available for %q", results[rank-1].Title)
		}
		fmt.Println(entry)
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return aggregate.FormatJSON(results, os.Stdout)
	}
	if asCSL, _ := cmd.Flags().GetBool("csl"); asCSL {
		return aggregate.FormatCSL(results, os.Stdout)
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	state := &aggregate.SearchState{
		Query:        query,
		Results:      results,
		PerPage:      perPage,
		TotalFetched: len(results),
	}
	page, _ := cmd.Flags().GetInt("page")
	aggregate.FormatTable(state.Page(page), os.Stdout)
	return nil
}
