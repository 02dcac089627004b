package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperstack/internal/semantic"
	"github.com/pdiddy/paperstack/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the library with hybrid embedding + keyword scoring",
	Long: `Search ranks library papers against a query by combining embedding
similarity with keyword matches over titles, abstracts, and concepts. By
default only papers marked done are searched; --all includes the reading
list. When the embedding server is unreachable the search degrades to
keyword-only scoring.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var similarCmd = &cobra.Command{
	Use:   "similar [id]",
	Short: "Find papers similar to one already in the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	searchCmd.Flags().Int("top-k", 0, "maximum number of results (default 10)")
	searchCmd.Flags().Float64("min-score", -1, "score floor for matches (default 0.3)")
	searchCmd.Flags().Bool("all", false, "search the whole library, not just done papers")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	similarCmd.Flags().Int("top-k", 0, "maximum number of results (default 10)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(similarCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := buildEngine(s)
	if err != nil {
		return err
	}

	opts := semantic.DefaultSearchOptions()
	if v := viper.GetInt("search.top_k"); v > 0 {
		opts.TopK = v
	}
	if viper.IsSet("search.min_score") {
		opts.MinScore = viper.GetFloat64("search.min_score")
	}
	if topK, _ := cmd.Flags().GetInt("top-k"); topK > 0 {
		opts.TopK = topK
	}
	if minScore, _ := cmd.Flags().GetFloat64("min-score"); minScore >= 0 {
		opts.MinScore = minScore
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		opts.DoneOnly = false
	}

	results, err := engine.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	printResults(results)
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid paper id %q", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := buildEngine(s)
	if err != nil {
		return err
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = semantic.DefaultSearchOptions().TopK
	}
	results, err := engine.FindSimilar(ctx, id, topK)
	if err != nil {
		return err
	}
	printResults(results)
	return nil
}

// buildEngine wires the search engine over the store. The encoder is built
// eagerly but only contacted on use, so a missing Ollama server still lets
// keyword search run.
func buildEngine(s semantic.Repository) (*semantic.Engine, error) {
	encoder, err := newEncoder()
	if err != nil {
		return nil, err
	}
	return semantic.NewEngine(s, encoder), nil
}

func printResults(results []types.SearchResult) {
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for i, r := range results {
		fmt.Printf("%2d. [%.2f] %d  %s\n", i+1, r.Score, r.Paper.ID, r.Paper.Title)
		if r.MatchedContent != "" {
			fmt.Printf("      %s\n", r.MatchedContent)
		}
	}
}
