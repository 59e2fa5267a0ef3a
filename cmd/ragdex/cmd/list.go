package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ragdex/ragdex/internal/output"
)

func newListCmd() *cobra.Command {
	var filterTerm string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdout()

			m, _, err := openManager(cmd.Context())
			if err != nil {
				out.Error("%v", err)
				return err
			}
			defer func() { _ = m.Close() }()

			docs := m.ListDocuments(filterTerm)
			rows := make([]output.DocumentRow, len(docs))
			for i, d := range docs {
				rows[i] = output.DocumentRow{
					DocID:      d.DocID,
					Title:      d.Title,
					SourcePath: d.SourcePath,
					FileType:   d.FileType,
					DateAdded:  d.DateAdded,
					Chunks:     d.TotalChunks,
				}
			}
			out.DocumentTable(rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&filterTerm, "filter", "", "Filter by substring of title or source path")

	return cmd
}
