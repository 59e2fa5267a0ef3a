package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary(title string, chunks int) DocumentSummary {
	return DocumentSummary{
		Title:       title,
		SourcePath:  "/docs/" + title + ".md",
		FileType:    ".md",
		DateAdded:   "2026-08-31T10:00:00Z",
		TotalChunks: chunks,
		WordCount:   chunks * 80,
	}
}

func TestMetadataStoreEmptyStart(t *testing.T) {
	s, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, s.All())
	assert.Equal(t, Stats{}, s.Stats())
	assert.False(t, s.Has("anything"))
}

func TestMetadataStoreUpsertDelete(t *testing.T) {
	s, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	s.Upsert("abc123", sampleSummary("report", 4))
	s.AdjustStats(1, 4)

	got, ok := s.Get("abc123")
	require.True(t, ok)
	assert.Equal(t, "report", got.Title)
	assert.Equal(t, Stats{TotalDocuments: 1, TotalChunks: 4}, s.Stats())

	removed, ok := s.Delete("abc123")
	require.True(t, ok)
	assert.Equal(t, 4, removed.TotalChunks)
	s.AdjustStats(-1, -removed.TotalChunks)

	assert.False(t, s.Has("abc123"))
	assert.Equal(t, Stats{}, s.Stats())
}

func TestMetadataStoreDeleteUnknown(t *testing.T) {
	s, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	_, ok := s.Delete("nope")
	assert.False(t, ok)
}

func TestMetadataStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewMetadataStore(dir)
	require.NoError(t, err)
	s.Upsert("doc1", sampleSummary("alpha", 2))
	s.Upsert("doc2", sampleSummary("beta", 3))
	s.AdjustStats(2, 5)
	require.NoError(t, s.Save())

	reloaded, err := NewMetadataStore(dir)
	require.NoError(t, err)

	assert.Len(t, reloaded.All(), 2)
	assert.Equal(t, Stats{TotalDocuments: 2, TotalChunks: 5}, reloaded.Stats())

	got, ok := reloaded.Get("doc2")
	require.True(t, ok)
	assert.Equal(t, "beta", got.Title)
	assert.Equal(t, 3, got.TotalChunks)
}

func TestMetadataStoreFileLayout(t *testing.T) {
	dir := t.TempDir()

	s, err := NewMetadataStore(dir)
	require.NoError(t, err)
	s.Upsert("doc1", sampleSummary("alpha", 2))
	s.AdjustStats(1, 2)
	require.NoError(t, s.Save())

	data, err := os.ReadFile(filepath.Join(dir, MetadataFileName))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "documents")
	assert.Contains(t, raw, "stats")

	var stats map[string]int
	require.NoError(t, json.Unmarshal(raw["stats"], &stats))
	assert.Equal(t, 1, stats["total_documents"])
	assert.Equal(t, 2, stats["total_chunks"])
}

func TestMetadataStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFileName), []byte("{not json"), 0o644))

	_, err := NewMetadataStore(dir)
	assert.Error(t, err)
}

func TestMetadataStoreAllReturnsCopy(t *testing.T) {
	s, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)
	s.Upsert("doc1", sampleSummary("alpha", 2))

	all := s.All()
	delete(all, "doc1")

	assert.True(t, s.Has("doc1"))
}
