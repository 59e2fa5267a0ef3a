// Package cmd provides the CLI commands for ragdex.
package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragdex/ragdex/internal/config"
	"github.com/ragdex/ragdex/internal/index"
	"github.com/ragdex/ragdex/internal/logging"
	"github.com/ragdex/ragdex/internal/output"
	"github.com/ragdex/ragdex/pkg/version"
)

var (
	storageFlag    string
	debugMode      bool
	loggingCleanup func()
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command for the ragdex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragdex",
		Short: "Local semantic document index and search",
		Long: `ragdex indexes documents (PDF, Markdown, text, JSON) into a local
vector database and answers semantic queries against them.

Documents are chunked, embedded through Ollama, and stored in an embedded
HNSW index under ~/.ragdex. Everything runs locally; the only optional
network dependency is Mistral OCR for scanned PDFs.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("ragdex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Storage directory (default ~/.ragdex)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRun = setupLogging
	cmd.PersistentPostRun = teardownLogging

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setupLogging routes slog to <storage>/logs/ragdex.log. Failures fall back
// to discarding logs rather than blocking the command.
func setupLogging(_ *cobra.Command, _ []string) {
	cfg, err := config.Load(storageFlag)
	if err != nil {
		return
	}
	cleanup, err := logging.SetupDefault(cfg.StoragePath, debugMode)
	if err != nil {
		return
	}
	loggingCleanup = cleanup
}

func teardownLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}

// openManager loads config and opens a fully wired index manager. The caller
// must Close it.
func openManager(ctx context.Context) (*index.Manager, *config.Config, error) {
	cfg, err := config.Load(storageFlag)
	if err != nil {
		return nil, nil, err
	}

	m, err := index.Open(ctx, cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

// stdout returns the shared output writer.
func stdout() *output.Writer {
	return output.New(os.Stdout)
}
