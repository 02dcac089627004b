package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperstack/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers in the library",
	Long: `List shows library papers, newest first. By default only papers still on
the reading list are shown; use --status to pick done, archived, or all.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().String("status", "reading", "filter by status: reading, done, archived, all")
	listCmd.Flags().Bool("json", false, "output papers as JSON")
	listCmd.Flags().Bool("export", false, "export the full library as YAML (includes done entries)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if export, _ := cmd.Flags().GetBool("export"); export {
		return s.Export(ctx, os.Stdout)
	}

	statusFlag, _ := cmd.Flags().GetString("status")
	var status types.PaperStatus
	switch statusFlag {
	case "all":
		status = ""
	case "reading", "done", "archived":
		status = types.PaperStatus(statusFlag)
	default:
		return fmt.Errorf("unknown status %q (want reading, done, archived, or all)", statusFlag)
	}

	papers, err := s.ListPapers(ctx, status)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No papers.")
		return nil
	}
	for _, p := range papers {
		line := fmt.Sprintf("%4d  [%s]  %s", p.ID, p.Status, p.Title)
		if len(p.Tags) > 0 {
			line += "  (" + strings.Join(p.Tags, ", ") + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d paper(s)\n", len(papers))
	return nil
}
