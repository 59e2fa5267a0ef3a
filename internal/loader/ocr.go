package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

// OCR client defaults.
const (
	// DefaultOCREndpoint is the Mistral API base URL.
	DefaultOCREndpoint = "https://api.mistral.ai"

	// DefaultOCRModel is the Mistral OCR model identifier.
	DefaultOCRModel = "mistral-ocr-latest"

	// DefaultOCRKeyEnv names the environment variable holding the API key.
	DefaultOCRKeyEnv = "MISTRAL_API_KEY"

	// ocrTimeout bounds a single OCR request. Large scanned PDFs take a
	// while server-side.
	ocrTimeout = 5 * time.Minute

	// pageSeparator joins per-page markdown in the extracted text.
	pageSeparator = "\n\n---\n\n"
)

// OCRClientConfig configures an OCRClient.
type OCRClientConfig struct {
	Endpoint string
	Model    string
	APIKey   string
}

// OCRClient extracts text from PDFs via Mistral's OCR API. The whole file is
// sent inline as a base64 data URL; the response carries markdown per page.
type OCRClient struct {
	config OCRClientConfig
	client *http.Client
}

// NewOCRClient creates an OCR client, applying endpoint and model defaults.
func NewOCRClient(cfg OCRClientConfig) *OCRClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultOCREndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOCRModel
	}
	return &OCRClient{
		config: cfg,
		client: &http.Client{Timeout: ocrTimeout},
	}
}

// ocrRequest is the Mistral /v1/ocr request body.
type ocrRequest struct {
	Model    string      `json:"model"`
	Document ocrDocument `json:"document"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

// ocrResponse is the Mistral /v1/ocr response body.
type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// ExtractText runs OCR on the PDF at path and returns the concatenated
// per-page markdown.
func (c *OCRClient) ExtractText(ctx context.Context, path string) (string, error) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to read PDF").
			WithDetail("path", path)
	}

	encoded := base64.StdEncoding.EncodeToString(pdfBytes)
	body, err := json.Marshal(ocrRequest{
		Model: c.config.Model,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + encoded,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	url := strings.TrimSuffix(c.config.Endpoint, "/") + "/v1/ocr"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeOCRFailed, "OCR request failed").
			WithDetail("path", path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", rerrors.Newf(rerrors.ErrCodeOCRFailed,
			"OCR failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeOCRFailed, "failed to decode OCR response")
	}
	if len(result.Pages) == 0 {
		return "", rerrors.New(rerrors.ErrCodeOCRFailed, "OCR returned no pages")
	}

	pages := make([]string, len(result.Pages))
	for i, page := range result.Pages {
		pages[i] = page.Markdown
	}
	return strings.Join(pages, pageSeparator), nil
}
