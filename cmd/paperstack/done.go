package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperstack/internal/semantic"
)

var doneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a paper done with concepts and a summary",
	Long: `Done records that a paper has been read: its key concepts, a compressed
summary, and the contributions worth remembering. Done papers are what the
hybrid search ranks by default.

When no summary is given and an Anthropic API key is configured, one is
generated from the abstract. The paper is reindexed afterwards so search
sees the new summary and concepts.`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func init() {
	doneCmd.Flags().StringSlice("concepts", nil, "key concepts covered by the paper")
	doneCmd.Flags().String("summary", "", "compressed summary of the paper")
	doneCmd.Flags().String("contributions", "", "key contributions worth remembering")
	doneCmd.Flags().Bool("no-ai", false, "never generate a summary")
	doneCmd.Flags().Bool("no-index", false, "skip reindexing embeddings")

	rootCmd.AddCommand(doneCmd)
}

func runDone(cmd *cobra.Command, args []string) error {
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

	paper, err := s.GetPaper(ctx, id)
	if err != nil {
		return err
	}
	if paper == nil {
		return fmt.Errorf("paper %d not found", id)
	}

	concepts, _ := cmd.Flags().GetStringSlice("concepts")
	summary, _ := cmd.Flags().GetString("summary")
	contributions, _ := cmd.Flags().GetString("contributions")

	if noAI, _ := cmd.Flags().GetBool("no-ai"); !noAI && summary == "" && paper.Abstract != "" {
		if assistant, err := newAssistant(); err == nil {
			if generated, err := assistant.Summarize(ctx, paper.Title+"\n\n"+paper.Abstract); err == nil {
				summary = generated
			} else {
				fmt.Fprintf(os.Stderr, "warning: summary generation failed: %v\n", err)
			}
		}
	}

	entry, err := s.MarkDone(ctx, id, concepts, summary, contributions)
	if err != nil {
		return err
	}
	fmt.Printf("Marked paper %d done: %s\n", id, paper.Title)
	if len(entry.Concepts) > 0 {
		fmt.Printf("  concepts: %s\n", strings.Join(entry.Concepts, ", "))
	}

	if noIndex, _ := cmd.Flags().GetBool("no-index"); noIndex {
		return nil
	}
	encoder, err := newEncoder()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: embeddings not updated: %v\n", err)
		return nil
	}
	engine := semantic.NewEngine(s, encoder)
	n, err := engine.Index(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: embeddings not updated: %v\n", err)
		return nil
	}
	fmt.Printf("  indexed %d embedding(s)\n", n)
	return nil
}
