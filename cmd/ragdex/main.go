// Package main provides the entry point for the ragdex CLI.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/ragdex/ragdex/cmd/ragdex/cmd"
)

func main() {
	// Best-effort .env load so MISTRAL_API_KEY and RAGDEX_* overrides can
	// live next to the project.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
