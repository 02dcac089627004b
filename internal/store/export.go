// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperstack/pkg/types"
)

// exportEntry pairs a paper with its done entry for export.
type exportEntry struct {
	Paper types.Paper      `yaml:"paper"`
	Done  *types.DoneEntry `yaml:"done,omitempty"`
}

// Export writes the whole library as YAML to w: every paper, with its done
// entry inlined when one exists. Embedding blobs are not exported; they are
// derived data and can be rebuilt by reindexing.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	papers, err := s.ListPapers(ctx, "")
	if err != nil {
		return fmt.Errorf("exporting library: %w", err)
	}

	entries := make([]exportEntry, 0, len(papers))
	for _, p := range papers {
		done, err := s.GetDoneEntry(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("exporting done entry for paper %d: %w", p.ID, err)
		}
		entries = append(entries, exportEntry{Paper: p, Done: done})
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(entries)
}
