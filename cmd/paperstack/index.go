package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperstack/internal/semantic"
)

var indexCmd = &cobra.Command{
	Use:   "index [id]",
	Short: "Build embedding vectors for hybrid search",
	Long: `Index encodes a paper's abstract, summary, and concepts into embedding
vectors stored alongside the library. Reindexing a paper replaces its old
vectors, so the command is safe to rerun. Use --all to rebuild the whole
library after changing the embedding model.

Requires a running Ollama server (see embedding.base_url).`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("all", false, "reindex every paper in the library")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) != 1 {
		return fmt.Errorf("provide a paper id or --all")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	encoder, err := newEncoder()
	if err != nil {
		return err
	}
	engine := semantic.NewEngine(s, encoder)

	if all {
		n, err := engine.ReindexAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d embedding(s) across the library\n", n)
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid paper id %q", args[0])
	}
	n, err := engine.Index(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Printf("Paper %d has no indexable content\n", id)
		return nil
	}
	fmt.Printf("Indexed %d embedding(s) for paper %d\n", n, id)
	return nil
}
