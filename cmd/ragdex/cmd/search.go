package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragdex/ragdex/internal/output"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var docIDs []string
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents semantically",
		Long: `Embed the query and return the most similar chunks across all indexed
documents, ranked by cosine similarity. Use --doc-id (repeatable) to
restrict the search to specific documents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := stdout()

			if format != "text" && format != "json" {
				return fmt.Errorf("invalid --format %q (want text or json)", format)
			}

			m, _, err := openManager(ctx)
			if err != nil {
				out.Error("%v", err)
				return err
			}
			defer func() { _ = m.Close() }()

			results, err := m.Search(ctx, args[0], limit, docIDs)
			if err != nil {
				out.Error("%v", err)
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			hits := make([]output.SearchHit, len(results))
			for i, r := range results {
				hits[i] = output.SearchHit{
					Score:      r.Score,
					Title:      r.Title,
					DocID:      r.DocID,
					ChunkIndex: r.ChunkIndex,
					ChunkText:  r.ChunkText,
				}
			}
			out.SearchResults(hits)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")
	cmd.Flags().StringArrayVar(&docIDs, "doc-id", nil, "Restrict search to this document id (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
