package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ragdex/ragdex/internal/loader"
)

func newAddCmd() *cobra.Command {
	var title string
	var noOCR bool

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Index a document",
		Long: `Extract text from a document, split it into chunks, embed them, and
store the vectors for semantic search. Re-adding a file replaces its
previous version.

Supported formats: .pdf .md .markdown .txt .rst .json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := stdout()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			m, cfg, err := openManager(ctx)
			if err != nil {
				out.Error("%v", err)
				return err
			}
			defer func() { _ = m.Close() }()

			l := loader.New(loader.Options{
				UseOCR:      cfg.OCR.Enabled && !noOCR,
				OCREndpoint: cfg.OCR.Endpoint,
				OCRModel:    cfg.OCR.Model,
				APIKeyEnv:   cfg.OCR.APIKeyEnv,
			})

			text, fileType, err := l.Load(ctx, path)
			if err != nil {
				out.Error("%v", err)
				return err
			}

			if title == "" {
				title = loader.TitleFromPath(path)
			}

			docID, err := m.AddDocument(ctx, text, path, title, fileType)
			if err != nil {
				out.Error("%v", err)
				return err
			}

			doc, _ := m.GetDocument(docID)
			out.Success("Indexed %q as %s (%d chunks, %d words)",
				doc.Title, docID, doc.TotalChunks, doc.WordCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Document title (default: derived from filename)")
	cmd.Flags().BoolVar(&noOCR, "no-ocr", false, "Skip Mistral OCR and use local PDF extraction")

	return cmd
}
