// Package index orchestrates the document pipeline: chunking, embedding,
// vector storage, and document metadata bookkeeping.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ragdex/ragdex/internal/chunk"
	"github.com/ragdex/ragdex/internal/config"
	"github.com/ragdex/ragdex/internal/embed"
	rerrors "github.com/ragdex/ragdex/internal/errors"
	"github.com/ragdex/ragdex/internal/identity"
	"github.com/ragdex/ragdex/internal/store"
)

// SearchResult is one scored chunk hit.
type SearchResult struct {
	DocID      string  `json:"doc_id"`
	Title      string  `json:"title"`
	SourcePath string  `json:"source_path"`
	ChunkText  string  `json:"chunk_text"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float32 `json:"score"`
}

// DocumentInfo is a document summary merged with its id for listing.
type DocumentInfo struct {
	DocID       string `json:"doc_id"`
	Title       string `json:"title"`
	SourcePath  string `json:"source_path"`
	FileType    string `json:"file_type"`
	DateAdded   string `json:"date_added"`
	TotalChunks int    `json:"total_chunks"`
	WordCount   int    `json:"word_count"`
}

// Stats describes the index as a whole.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	TotalChunks    int    `json:"total_chunks"`
	StoragePath    string `json:"storage_path"`
	EmbeddingModel string `json:"embedding_model"`
}

// Manager coordinates the chunker, embedder, vector index, and metadata
// store. All mutating operations persist both stores before returning, so a
// clean exit at any point leaves storage consistent.
type Manager struct {
	cfg      *config.Config
	logger   *slog.Logger
	embedder embed.Embedder
	index    store.VectorIndex
	meta     *store.MetadataStore
	lock     *store.StorageLock
}

// New wires a Manager from explicit collaborators. Used directly by tests;
// production callers go through Open.
func New(cfg *config.Config, embedder embed.Embedder, index store.VectorIndex, meta *store.MetadataStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		embedder: embedder,
		index:    index,
		meta:     meta,
	}
}

// Open builds a fully wired Manager against the configured storage directory:
// cross-process lock, metadata store, HNSW index, and a lazily constructed
// Ollama embedder behind an LRU cache. Callers must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		return nil, rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to create storage directory").
			WithDetail("path", cfg.StoragePath)
	}

	lock := store.NewStorageLock(cfg.StoragePath)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}

	meta, err := store.NewMetadataStore(cfg.StoragePath)
	if err != nil {
		_ = lock.Release()
		return nil, rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to open metadata store")
	}

	idx, err := store.NewHNSWIndex(cfg.StoragePath)
	if err != nil {
		_ = lock.Release()
		return nil, rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to open vector index")
	}

	embedder := embed.NewCachedEmbedder(embed.NewLazyEmbedder(func(ctx context.Context) (embed.Embedder, error) {
		ollamaCfg := embed.DefaultOllamaConfig()
		ollamaCfg.Host = cfg.OllamaHost
		ollamaCfg.Model = cfg.EmbeddingModel
		ollamaCfg.Dimensions = cfg.EmbeddingDimensions
		return embed.NewOllamaEmbedder(ctx, ollamaCfg)
	}), embed.DefaultEmbeddingCacheSize)

	m := New(cfg, embedder, idx, meta, logger)
	m.lock = lock
	return m, nil
}

// Close releases the embedder, the index, and the storage lock.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.embedder.Close(); err != nil {
		firstErr = err
	}
	if err := m.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if m.lock != nil {
		if err := m.lock.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AddDocument chunks, embeds, and indexes a document, returning its id.
// Re-adding the same source path fully replaces the previous version. The
// title defaults to the filename stem when empty.
func (m *Manager) AddDocument(ctx context.Context, text, sourcePath, title, fileType string) (string, error) {
	docID := identity.DocID(sourcePath)

	if m.meta.Has(docID) {
		m.logger.Info("replacing_existing_document", slog.String("doc_id", docID))
		if _, err := m.RemoveDocument(ctx, docID); err != nil {
			return "", fmt.Errorf("failed to remove previous version: %w", err)
		}
	}

	if title == "" {
		base := filepath.Base(sourcePath)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	chunks := chunk.Split(text, m.cfg.ChunkSize, m.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return "", rerrors.New(rerrors.ErrCodeNoChunks, "document produced no chunks after processing").
			WithDetail("source_path", sourcePath)
	}

	vectors, err := m.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to embed document: %w", err)
	}
	if len(vectors) != len(chunks) {
		return "", rerrors.Newf(rerrors.ErrCodeEmbeddingFailed,
			"embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	if err := m.index.EnsureCollection(len(vectors[0])); err != nil {
		return "", err
	}

	dateAdded := time.Now().Format(time.RFC3339)
	points := make([]store.Point, len(chunks))
	seen := make(map[uint64]int, len(chunks))
	for i, c := range chunks {
		id := identity.PointID(docID, i)
		if prev, dup := seen[id]; dup {
			// Truncated-hash ids can collide in principle; refuse to
			// silently drop a chunk if it ever happens.
			return "", rerrors.Newf(rerrors.ErrCodeInternal,
				"point id collision between chunks %d and %d of %s", prev, i, docID)
		}
		seen[id] = i

		points[i] = store.Point{
			ID:     id,
			Vector: vectors[i],
			Payload: store.Payload{
				DocID:       docID,
				Title:       title,
				SourcePath:  sourcePath,
				FileType:    fileType,
				DateAdded:   dateAdded,
				ChunkIndex:  i,
				TotalChunks: len(chunks),
				WordCount:   chunk.WordCount(c),
				Text:        c,
			},
		}
	}

	if err := m.index.Upsert(ctx, points); err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeIndexFailed, "failed to upsert vectors")
	}
	if err := m.index.Save(); err != nil {
		return "", rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to persist vector index")
	}

	m.meta.Upsert(docID, store.DocumentSummary{
		Title:       title,
		SourcePath:  sourcePath,
		FileType:    fileType,
		DateAdded:   dateAdded,
		TotalChunks: len(chunks),
		WordCount:   chunk.WordCount(text),
	})
	m.meta.AdjustStats(1, len(chunks))

	if err := m.meta.Save(); err != nil {
		// Roll the vectors back so the two stores stay consistent. The
		// in-memory metadata state is discarded with the process.
		if delErr := m.index.DeleteByDocID(ctx, docID); delErr == nil {
			_ = m.index.Save()
		}
		return "", rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to persist metadata")
	}

	m.logger.Info("document_added",
		slog.String("doc_id", docID),
		slog.String("title", title),
		slog.Int("chunks", len(chunks)))

	return docID, nil
}

// RemoveDocument deletes a document's vectors and metadata. Returns false
// without error when the id is unknown.
func (m *Manager) RemoveDocument(ctx context.Context, docID string) (bool, error) {
	if !m.meta.Has(docID) {
		return false, nil
	}

	if err := m.index.DeleteByDocID(ctx, docID); err != nil {
		return false, rerrors.Wrap(err, rerrors.ErrCodeIndexFailed, "failed to delete vectors")
	}
	if err := m.index.Save(); err != nil {
		return false, rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to persist vector index")
	}

	summary, _ := m.meta.Delete(docID)
	m.meta.AdjustStats(-1, -summary.TotalChunks)

	if err := m.meta.Save(); err != nil {
		return false, rerrors.Wrap(err, rerrors.ErrCodeStorageFailed, "failed to persist metadata")
	}

	m.logger.Info("document_removed",
		slog.String("doc_id", docID),
		slog.Int("chunks", summary.TotalChunks))

	return true, nil
}

// ListDocuments returns indexed documents, optionally filtered by a
// case-insensitive substring match on title or source path. Results are
// ordered by date added, then id for stability.
func (m *Manager) ListDocuments(filterTerm string) []DocumentInfo {
	all := m.meta.All()
	filterLower := strings.ToLower(filterTerm)

	docs := make([]DocumentInfo, 0, len(all))
	for id, summary := range all {
		if filterLower != "" &&
			!strings.Contains(strings.ToLower(summary.Title), filterLower) &&
			!strings.Contains(strings.ToLower(summary.SourcePath), filterLower) {
			continue
		}
		docs = append(docs, DocumentInfo{
			DocID:       id,
			Title:       summary.Title,
			SourcePath:  summary.SourcePath,
			FileType:    summary.FileType,
			DateAdded:   summary.DateAdded,
			TotalChunks: summary.TotalChunks,
			WordCount:   summary.WordCount,
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].DateAdded != docs[j].DateAdded {
			return docs[i].DateAdded < docs[j].DateAdded
		}
		return docs[i].DocID < docs[j].DocID
	})

	return docs
}

// GetDocument returns a single document's info.
func (m *Manager) GetDocument(docID string) (DocumentInfo, bool) {
	summary, ok := m.meta.Get(docID)
	if !ok {
		return DocumentInfo{}, false
	}
	return DocumentInfo{
		DocID:       docID,
		Title:       summary.Title,
		SourcePath:  summary.SourcePath,
		FileType:    summary.FileType,
		DateAdded:   summary.DateAdded,
		TotalChunks: summary.TotalChunks,
		WordCount:   summary.WordCount,
	}, true
}

// Search embeds the query once and returns the nearest chunks in index
// ranking order. A non-empty docIDs set restricts results to those documents.
// An empty index yields an empty slice without touching the embedder.
func (m *Manager) Search(ctx context.Context, query string, limit int, docIDs []string) ([]SearchResult, error) {
	if m.index.Count() == 0 {
		return []SearchResult{}, nil
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	points, err := m.index.Query(ctx, vector, limit, docIDs)
	if err != nil {
		return nil, rerrors.Wrap(err, rerrors.ErrCodeIndexFailed, "vector query failed")
	}

	results := make([]SearchResult, len(points))
	for i, p := range points {
		results[i] = SearchResult{
			DocID:      p.Payload.DocID,
			Title:      p.Payload.Title,
			SourcePath: p.Payload.SourcePath,
			ChunkText:  p.Payload.Text,
			ChunkIndex: p.Payload.ChunkIndex,
			Score:      p.Score,
		}
	}
	return results, nil
}

// Stats returns aggregate counters and index identity.
func (m *Manager) Stats() Stats {
	s := m.meta.Stats()
	return Stats{
		TotalDocuments: s.TotalDocuments,
		TotalChunks:    s.TotalChunks,
		StoragePath:    m.cfg.StoragePath,
		EmbeddingModel: m.cfg.EmbeddingModel,
	}
}
