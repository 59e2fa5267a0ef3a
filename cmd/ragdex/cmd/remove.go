package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <doc-id>",
		Short: "Remove a document from the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := stdout()
			docID := args[0]

			m, _, err := openManager(ctx)
			if err != nil {
				out.Error("%v", err)
				return err
			}
			defer func() { _ = m.Close() }()

			removed, err := m.RemoveDocument(ctx, docID)
			if err != nil {
				out.Error("%v", err)
				return err
			}
			if !removed {
				out.Error("No document with id %s", docID)
				return fmt.Errorf("document %s not found", docID)
			}

			out.Success("Removed document %s", docID)
			return nil
		},
	}
}
