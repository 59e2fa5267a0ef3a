// Package errors provides structured error handling for ragdex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, storage)
//   - 3XX: External dependency errors (embedder, OCR)
//   - 4XX: Input validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and storage I/O errors.
	CategoryIO Category = "IO"
	// CategoryExternal indicates embedder, vector index, or OCR failures.
	CategoryExternal Category = "EXTERNAL"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid     = "ERR_101_CONFIG_INVALID"
	ErrCodeDimensionMismatch = "ERR_102_DIMENSION_MISMATCH"

	// IO errors (200-299)
	ErrCodeFileNotFound  = "ERR_201_FILE_NOT_FOUND"
	ErrCodeDocNotFound   = "ERR_202_DOC_NOT_FOUND"
	ErrCodeStorageFailed = "ERR_203_STORAGE_FAILED"
	ErrCodeStorageLocked = "ERR_204_STORAGE_LOCKED"

	// External dependency errors (300-399)
	ErrCodeEmbeddingFailed = "ERR_301_EMBEDDING_FAILED"
	ErrCodeIndexFailed     = "ERR_302_INDEX_FAILED"
	ErrCodeOCRFailed       = "ERR_303_OCR_FAILED"

	// Validation errors (400-499)
	ErrCodeUnsupportedType = "ERR_401_UNSUPPORTED_TYPE"
	ErrCodeEmptyDocument   = "ERR_402_EMPTY_DOCUMENT"
	ErrCodeNoChunks        = "ERR_403_NO_CHUNKS"
	ErrCodeInvalidInput    = "ERR_404_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryExternal
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}
