package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperstack/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [paper-id]",
	Short: "Attach a page-anchored note to a paper",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

var annotationsCmd = &cobra.Command{
	Use:   "annotations [paper-id]",
	Short: "List a paper's annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotations,
}

func init() {
	annotateCmd.Flags().Int("page", 1, "page number the note refers to")
	annotateCmd.Flags().String("type", "note", "annotation type: highlight, comment, note")
	annotateCmd.Flags().String("text", "", "annotation content")
	annotateCmd.Flags().String("selection", "", "text selected on the page")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(annotationsCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	paperID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid paper id %q", args[0])
	}

	annType, _ := cmd.Flags().GetString("type")
	switch types.AnnotationType(annType) {
	case types.AnnotationHighlight, types.AnnotationComment, types.AnnotationNote:
	default:
		return fmt.Errorf("unknown annotation type %q", annType)
	}

	text, _ := cmd.Flags().GetString("text")
	selection, _ := cmd.Flags().GetString("selection")
	if text == "" && selection == "" {
		return fmt.Errorf("provide --text or --selection")
	}
	page, _ := cmd.Flags().GetInt("page")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	paper, err := s.GetPaper(ctx, paperID)
	if err != nil {
		return err
	}
	if paper == nil {
		return fmt.Errorf("paper %d not found", paperID)
	}

	ann, err := s.AddAnnotation(ctx, &types.Annotation{
		PaperID:       paperID,
		Page:          page,
		Type:          types.AnnotationType(annType),
		Content:       text,
		SelectionText: selection,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s %d on page %d of paper %d\n", ann.Type, ann.ID, ann.Page, paperID)
	return nil
}

func runAnnotations(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	paperID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid paper id %q", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	anns, err := s.GetAnnotations(ctx, paperID)
	if err != nil {
		return err
	}
	if len(anns) == 0 {
		fmt.Println("No annotations.")
		return nil
	}
	for _, a := range anns {
		text := a.Content
		if text == "" {
			text = a.SelectionText
		}
		fmt.Printf("%4d  p.%-4d %-10s %s\n", a.ID, a.Page, a.Type, text)
	}
	return nil
}
