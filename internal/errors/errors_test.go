package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeFileNotFound, "file not found")

	assert.Equal(t, ErrCodeFileNotFound, err.Code)
	assert.Equal(t, CategoryIO, err.Category)
	assert.Contains(t, err.Error(), "ERR_201_FILE_NOT_FOUND")
	assert.Contains(t, err.Error(), "file not found")
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeDimensionMismatch, CategoryConfig},
		{ErrCodeFileNotFound, CategoryIO},
		{ErrCodeEmbeddingFailed, CategoryExternal},
		{ErrCodeUnsupportedType, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{"garbage", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.category, categoryFromCode(tt.code))
		})
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, ErrCodeEmbeddingFailed, "embedding request failed")

	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Message, "underlying failure")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "never happens"))
}

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(ErrCodeDocNotFound, "document %s not found", "abc123")
	target := New(ErrCodeDocNotFound, "")

	assert.ErrorIs(t, err, target)
	assert.NotErrorIs(t, err, New(ErrCodeFileNotFound, ""))
}

func TestGetCodeThroughChain(t *testing.T) {
	inner := Newf(ErrCodeOCRFailed, "ocr request rejected")
	wrapped := fmt.Errorf("loading document: %w", inner)

	assert.Equal(t, ErrCodeOCRFailed, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeOCRFailed))
	assert.False(t, HasCode(wrapped, ErrCodeInternal))
	assert.Equal(t, "", GetCode(fmt.Errorf("plain error")))
}

func TestWithDetail(t *testing.T) {
	err := NotFound("/tmp/missing.md")
	assert.Equal(t, "/tmp/missing.md", err.Details["path"])
}

func TestDimensionMismatch(t *testing.T) {
	err := DimensionMismatch(768, 384)
	assert.Equal(t, ErrCodeDimensionMismatch, err.Code)
	assert.Contains(t, err.Message, "768")
	assert.Contains(t, err.Message, "384")
}

func TestUnsupportedType(t *testing.T) {
	err := UnsupportedType(".docx", []string{".pdf", ".md"})
	assert.Contains(t, err.Message, ".docx")
	assert.Contains(t, err.Message, ".pdf")
}
