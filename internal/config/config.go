// Package config defines the ragdex configuration surface.
//
// Configuration is an explicit struct handed to the index manager; nothing
// reads ambient global state. Precedence: defaults < config.yaml < RAGDEX_*
// environment variables (applied by the CLI layer via Load).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for the indexing pipeline.
const (
	// DefaultEmbeddingModel is a small general-purpose text embedding model
	// served by Ollama.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultChunkSize is the chunk size in characters.
	DefaultChunkSize = 512

	// DefaultChunkOverlap is the overlap between adjacent chunks in characters.
	DefaultChunkOverlap = 50

	// DefaultOllamaHost is the local Ollama endpoint.
	DefaultOllamaHost = "http://localhost:11434"
)

// Config is the complete ragdex configuration.
type Config struct {
	// StoragePath is the directory holding the vector index, document
	// metadata, logs, and config. Defaults to ~/.ragdex.
	StoragePath string `yaml:"storage_path"`

	// EmbeddingModel is the Ollama embedding model name.
	EmbeddingModel string `yaml:"embedding_model"`

	// EmbeddingDimensions is the vector dimension. Zero means auto-detect
	// from the model on first use.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`

	// ChunkSize is the maximum chunk size in characters.
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the overlap between adjacent chunks in characters.
	ChunkOverlap int `yaml:"chunk_overlap"`

	// OllamaHost is the Ollama API endpoint.
	OllamaHost string `yaml:"ollama_host"`

	// OCR configures PDF text extraction through the Mistral OCR API.
	OCR OCRConfig `yaml:"ocr"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// OCRConfig configures the OCR client used for PDF extraction.
// OCR is the primary PDF strategy; local extraction is the fallback.
type OCRConfig struct {
	// Enabled turns OCR on. When false, PDFs use local extraction only.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OCR API base URL.
	Endpoint string `yaml:"endpoint"`

	// Model is the OCR model name.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		StoragePath:    DefaultStoragePath(),
		EmbeddingModel: DefaultEmbeddingModel,
		ChunkSize:      DefaultChunkSize,
		ChunkOverlap:   DefaultChunkOverlap,
		OllamaHost:     DefaultOllamaHost,
		OCR: OCRConfig{
			Enabled:   true,
			Endpoint:  "https://api.mistral.ai",
			Model:     "mistral-ocr-latest",
			APIKeyEnv: "MISTRAL_API_KEY",
		},
		LogLevel: "info",
	}
}

// DefaultStoragePath returns the per-user storage directory (~/.ragdex).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ragdex")
	}
	return filepath.Join(home, ".ragdex")
}

// ConfigPath returns the config file location under the storage directory.
func ConfigPath(storageDir string) string {
	return filepath.Join(storageDir, "config.yaml")
}

// Load builds the effective configuration: defaults, then the YAML file at
// <storage>/config.yaml if present, then RAGDEX_* environment overrides.
// storageOverride, when non-empty, wins over every other storage path source.
func Load(storageOverride string) (*Config, error) {
	cfg := New()

	if v := os.Getenv("RAGDEX_STORAGE_PATH"); v != "" {
		cfg.StoragePath = v
	}
	if storageOverride != "" {
		cfg.StoragePath = storageOverride
	}

	path := ConfigPath(cfg.StoragePath)
	data, err := os.ReadFile(path)
	if err == nil {
		// Unmarshal over defaults; absent keys keep their default values.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// The file must not redirect storage away from where it was found.
	if storageOverride != "" {
		cfg.StoragePath = storageOverride
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to <storage>/config.yaml, creating directories as needed.
func Save(cfg *Config) error {
	path := ConfigPath(cfg.StoragePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks invariants the chunker and stores rely on.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.ChunkOverlap, c.ChunkSize)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model must not be empty")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RAGDEX_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("RAGDEX_OLLAMA_HOST"); v != "" {
		cfg.OllamaHost = v
	}
	if v := os.Getenv("RAGDEX_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChunkSize = n
		}
	}
	if v := os.Getenv("RAGDEX_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ChunkOverlap = n
		}
	}
	if v := os.Getenv("RAGDEX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
