// Package loader extracts plain text from supported document formats.
//
// Text formats are read as-is, JSON is re-serialized with stable indentation
// so chunk boundaries do not depend on the source formatting, and PDFs go
// through Mistral OCR when configured, with local extraction as fallback.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

// supportedExtensions is the allow-list of file types. Everything else is
// rejected before any file IO happens.
var supportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".txt":      true,
	".markdown": true,
	".rst":      true,
	".json":     true,
}

// Options configures a Loader.
type Options struct {
	// UseOCR enables Mistral OCR for PDF extraction. Without it, or when the
	// API key is absent, PDFs use local extraction only.
	UseOCR bool

	// OCREndpoint is the Mistral API base URL.
	OCREndpoint string

	// OCRModel is the OCR model identifier.
	OCRModel string

	// APIKeyEnv names the environment variable holding the Mistral API key.
	APIKeyEnv string

	// Logger for extraction diagnostics; nil means slog.Default().
	Logger *slog.Logger
}

// Loader extracts text from documents. The OCR client is constructed lazily
// on the first PDF so text-only workloads never touch the network.
type Loader struct {
	opts   Options
	logger *slog.Logger
	ocr    *OCRClient
}

// New creates a Loader.
func New(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, logger: logger}
}

// IsSupported reports whether the file's extension is in the allow-list.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the allow-list, sorted for stable messages.
func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Load extracts text from the file at path. The returned file type is the
// extension without the leading dot, lowercased.
func (l *Loader) Load(ctx context.Context, path string) (text string, fileType string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", rerrors.NotFound(path)
		}
		return "", "", rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to stat file").
			WithDetail("path", path)
	}
	if info.IsDir() {
		return "", "", rerrors.New(rerrors.ErrCodeInvalidInput, "path is a directory").
			WithDetail("path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return "", "", rerrors.UnsupportedType(ext, SupportedExtensions())
	}

	switch ext {
	case ".pdf":
		text, err = l.loadPDF(ctx, path)
	case ".json":
		text, err = l.loadJSON(path)
	default:
		text, err = l.loadText(path)
	}
	if err != nil {
		return "", "", err
	}

	return text, strings.TrimPrefix(ext, "."), nil
}

// loadText reads a plain text file. Invalid UTF-8 sequences are dropped
// rather than failing the whole document.
func (l *Loader) loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to read file").
			WithDetail("path", path)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// loadJSON parses and re-serializes JSON with two-space indentation so the
// extracted text is independent of the source file's formatting.
func (l *Loader) loadJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to read file").
			WithDetail("path", path)
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeInvalidInput, "invalid JSON document").
			WithDetail("path", path)
	}

	formatted, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to re-serialize JSON: %w", err)
	}
	return string(formatted), nil
}

// loadPDF extracts text from a PDF, preferring OCR when configured and
// falling back to local extraction on OCR failure.
func (l *Loader) loadPDF(ctx context.Context, path string) (string, error) {
	if err := validatePDF(path); err != nil {
		return "", err
	}

	if l.opts.UseOCR {
		if client := l.ocrClient(); client != nil {
			text, err := client.ExtractText(ctx, path)
			if err == nil {
				return text, nil
			}
			l.logger.Warn("ocr_failed_falling_back",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}

	return extractPDFText(path)
}

// ocrClient lazily constructs the OCR client. Returns nil when the API key
// is not set; OCR silently degrades to local extraction in that case.
func (l *Loader) ocrClient() *OCRClient {
	if l.ocr != nil {
		return l.ocr
	}

	keyEnv := l.opts.APIKeyEnv
	if keyEnv == "" {
		keyEnv = DefaultOCRKeyEnv
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil
	}

	l.ocr = NewOCRClient(OCRClientConfig{
		Endpoint: l.opts.OCREndpoint,
		Model:    l.opts.OCRModel,
		APIKey:   apiKey,
	})
	return l.ocr
}

// TitleFromPath derives a human-readable title from a file name: extension
// stripped, separators turned into spaces, words title-cased.
func TitleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCase(stem)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
