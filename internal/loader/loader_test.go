package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("/docs/readme.md"))
	assert.True(t, IsSupported("/docs/paper.PDF"))
	assert.True(t, IsSupported("notes.markdown"))
	assert.True(t, IsSupported("spec.rst"))
	assert.True(t, IsSupported("data.json"))
	assert.True(t, IsSupported("plain.txt"))

	assert.False(t, IsSupported("image.png"))
	assert.False(t, IsSupported("main.go"))
	assert.False(t, IsSupported("noextension"))
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello world\nsecond line")

	l := New(Options{})
	text, fileType, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "hello world\nsecond line", text)
	assert.Equal(t, "txt", fileType)
}

func TestLoadMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readme.md", "# Title\n\nBody text.")

	l := New(Options{})
	text, fileType, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "# Title\n\nBody text.", text)
	assert.Equal(t, "md", fileType)
}

func TestLoadJSONReformats(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.json", `{"b":1,"a":[2,3]}`)

	l := New(Options{})
	text, fileType, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "json", fileType)
	// Re-serialized with two-space indentation, independent of source layout.
	assert.Contains(t, text, "  \"a\": [")
	assert.Contains(t, text, "\n")
}

func TestLoadJSONInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.json", `{not valid`)

	l := New(Options{})
	_, _, err := l.Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, rerrors.HasCode(err, rerrors.ErrCodeInvalidInput))
}

func TestLoadMissingFile(t *testing.T) {
	l := New(Options{})
	_, _, err := l.Load(context.Background(), "/nonexistent/file.txt")
	require.Error(t, err)
	assert.True(t, rerrors.HasCode(err, rerrors.ErrCodeFileNotFound))
}

func TestLoadUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image.png", "not really a png")

	l := New(Options{})
	_, _, err := l.Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, rerrors.HasCode(err, rerrors.ErrCodeUnsupportedType))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "docs.md")
	require.NoError(t, os.Mkdir(sub, 0o755))

	l := New(Options{})
	_, _, err := l.Load(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, rerrors.HasCode(err, rerrors.ErrCodeInvalidInput))
}

func TestLoadTextInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.txt")
	require.NoError(t, os.WriteFile(path, []byte("valid\xff\xfetext"), 0o644))

	l := New(Options{})
	text, _, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "validtext", text)
}

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/docs/annual_report_2024.pdf", "Annual Report 2024"},
		{"/docs/meeting-notes.md", "Meeting Notes"},
		{"readme.txt", "Readme"},
		{"/a/b/ALL_CAPS_DOC.rst", "All Caps Doc"},
		{"/x/mixed-sep_name.json", "Mixed Sep Name"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleFromPath(tt.path), "path %s", tt.path)
	}
}

func TestSupportedExtensionsSorted(t *testing.T) {
	exts := SupportedExtensions()
	assert.Equal(t, []string{".json", ".markdown", ".md", ".pdf", ".rst", ".txt"}, exts)
}
