// Package store provides the persistence layer for indexed documents: an
// embedded vector index (HNSW) holding embedded chunks with payload, and a
// flat-file metadata store holding per-document summaries and counters.
package store

import (
	"context"
)

// Payload is the metadata attached to each vector point. It carries enough
// to render a search result without consulting any other store.
type Payload struct {
	DocID       string `json:"doc_id"`
	Title       string `json:"title"`
	SourcePath  string `json:"source_path"`
	FileType    string `json:"file_type"`
	DateAdded   string `json:"date_added"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	WordCount   int    `json:"word_count"`
	Text        string `json:"text"`
}

// Point is one embedded chunk keyed by its numeric point id.
type Point struct {
	ID      uint64
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a query hit: the stored payload plus a cosine similarity
// score (higher is more relevant).
type ScoredPoint struct {
	ID      uint64
	Score   float32
	Payload Payload
}

// VectorIndex is the contract the index manager uses to store and query
// embedded chunks. The bundled implementation is HNSWIndex; the interface
// exists so tests and alternative engines can slot in.
type VectorIndex interface {
	// EnsureCollection prepares the index for vectors of the given
	// dimensionality. Idempotent; returns a configuration error if the
	// index already holds vectors of a different dimension.
	EnsureCollection(dimensions int) error

	// Upsert inserts or replaces points in one batch.
	Upsert(ctx context.Context, points []Point) error

	// DeleteByDocID removes every point whose payload doc id matches.
	// Bulk payload-filtered delete, not a per-point operation.
	DeleteByDocID(ctx context.Context, docID string) error

	// Query returns up to limit nearest neighbors of vector, ranked by
	// cosine similarity descending. A non-empty docIDs set restricts
	// results to points whose payload doc id is in the set.
	Query(ctx context.Context, vector []float32, limit int, docIDs []string) ([]ScoredPoint, error)

	// Count returns the number of live points.
	Count() int

	// Save persists the index to disk.
	Save() error

	// Close releases resources. The index is unusable afterwards.
	Close() error
}

// DocumentSummary is the per-document record kept by the metadata store.
type DocumentSummary struct {
	Title       string `json:"title"`
	SourcePath  string `json:"source_path"`
	FileType    string `json:"file_type"`
	DateAdded   string `json:"date_added"`
	TotalChunks int    `json:"total_chunks"`
	WordCount   int    `json:"word_count"`
}

// Stats are the aggregate counters maintained alongside document summaries.
type Stats struct {
	TotalDocuments int `json:"total_documents"`
	TotalChunks    int `json:"total_chunks"`
}
