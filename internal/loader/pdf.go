package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

// validatePDF runs a structural check before extraction so corrupt files get
// a clear error instead of garbage text.
func validatePDF(path string) error {
	if err := api.ValidateFile(path, nil); err != nil {
		return rerrors.Wrap(err, rerrors.ErrCodeInvalidInput, "invalid or corrupt PDF").
			WithDetail("path", path)
	}
	return nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(path string) (int, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, rerrors.Wrap(err, rerrors.ErrCodeInvalidInput, "failed to count PDF pages").
			WithDetail("path", path)
	}
	return count, nil
}

// extractPDFText pulls embedded text out of a PDF locally. Works for
// text-based PDFs; scanned documents come back empty and need OCR.
// Pages are prefixed with their number and joined by blank lines.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeInvalidInput, "failed to open PDF").
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, fmt.Sprintf("[Page %d]\n%s", i, text))
	}

	return strings.Join(pages, "\n\n"), nil
}
