package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a paper and everything attached to it",
	Long: `Remove deletes a paper from the library. Its annotations, done entry, and
embeddings are deleted with it. A stored PDF blob is removed too.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
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

	deleted, err := s.DeletePaper(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("paper %d not found", id)
	}

	pdfs, err := openPDFStore(s)
	if err == nil {
		_ = pdfs.Delete(strconv.FormatInt(id, 10))
	}

	fmt.Printf("Removed paper %d\n", id)
	return nil
}
