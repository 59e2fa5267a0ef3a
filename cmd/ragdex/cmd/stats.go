package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := stdout()

			m, _, err := openManager(cmd.Context())
			if err != nil {
				out.Error("%v", err)
				return err
			}
			defer func() { _ = m.Close() }()

			stats := m.Stats()
			out.Header("Index statistics")
			out.KeyValue("Documents", fmt.Sprintf("%d", stats.TotalDocuments))
			out.KeyValue("Chunks", fmt.Sprintf("%d", stats.TotalChunks))
			out.KeyValue("Storage", stats.StoragePath)
			out.KeyValue("Embedding model", stats.EmbeddingModel)
			return nil
		},
	}
}
