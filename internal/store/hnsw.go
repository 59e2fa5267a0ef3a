package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"
	"github.com/google/renameio"

	rerrors "github.com/ragdex/ragdex/internal/errors"
)

// IndexFileName is the on-disk HNSW graph; its sidecar carries id mappings
// and payloads.
const (
	IndexFileName     = "vectors.hnsw"
	indexMetaFileName = "vectors.hnsw.meta"
)

// HNSWIndex implements VectorIndex on the pure-Go coder/hnsw graph with
// cosine distance. Payloads live in memory beside the graph and both are
// persisted together.
//
// Point ids map to internal graph keys through an indirection table so that
// deletes can be lazy: removing the mapping orphans the graph node instead of
// mutating the graph, which coder/hnsw handles poorly for boundary cases.
// Orphans are dropped for good at Save-time compaction; they never surface
// in query results.
type HNSWIndex struct {
	mu   sync.RWMutex
	path string

	graph *hnsw.Graph[uint64]
	dims  int

	idMap    map[uint64]uint64 // point id -> internal graph key
	keyMap   map[uint64]uint64 // internal graph key -> point id
	payloads map[uint64]Payload
	nextKey  uint64

	closed bool
}

// hnswSidecar is the gob-encoded companion to the graph file.
type hnswSidecar struct {
	Dimensions int
	IDMap      map[uint64]uint64
	Payloads   map[uint64]Payload
	NextKey    uint64
}

// NewHNSWIndex creates an index persisting under dir, loading existing state
// if present. Call EnsureCollection before the first Upsert.
func NewHNSWIndex(dir string) (*HNSWIndex, error) {
	s := &HNSWIndex{
		path:     filepath.Join(dir, IndexFileName),
		idMap:    make(map[uint64]uint64),
		keyMap:   make(map[uint64]uint64),
		payloads: make(map[uint64]Payload),
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := s.load(); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat index file: %w", err)
	}

	return s, nil
}

// EnsureCollection prepares the graph for vectors of the given dimensionality
// with cosine distance. Idempotent; a dimension disagreement with existing
// state is a fatal configuration error.
func (s *HNSWIndex) EnsureCollection(dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}

	if s.graph != nil {
		if s.dims != dimensions {
			return rerrors.DimensionMismatch(s.dims, dimensions)
		}
		return nil
	}

	s.graph = newGraph()
	s.dims = dimensions
	return nil
}

func newGraph() *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 64
	g.Ml = 0.25
	return g
}

// Upsert inserts or replaces points in one batch. Replacement is lazy: the
// old graph node is orphaned and a fresh one added.
func (s *HNSWIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}
	if s.graph == nil {
		return fmt.Errorf("collection not initialized: call EnsureCollection first")
	}

	for _, p := range points {
		if len(p.Vector) != s.dims {
			return rerrors.DimensionMismatch(s.dims, len(p.Vector))
		}
	}

	for _, p := range points {
		if existingKey, exists := s.idMap[p.ID]; exists {
			delete(s.keyMap, existingKey)
			delete(s.idMap, p.ID)
		}

		key := s.nextKey
		s.nextKey++

		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)
		normalizeVectorInPlace(vec)

		s.graph.Add(hnsw.MakeNode(key, vec))
		s.idMap[p.ID] = key
		s.keyMap[key] = p.ID
		s.payloads[p.ID] = p.Payload
	}

	return nil
}

// DeleteByDocID removes every point whose payload doc id matches. Lazy, like
// Upsert replacement: mappings and payloads go, graph nodes are orphaned.
func (s *HNSWIndex) DeleteByDocID(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}

	for id, payload := range s.payloads {
		if payload.DocID != docID {
			continue
		}
		if key, exists := s.idMap[id]; exists {
			delete(s.keyMap, key)
			delete(s.idMap, id)
		}
		delete(s.payloads, id)
	}

	return nil
}

// Query returns up to limit nearest neighbors ranked by cosine similarity
// descending. When docIDs is non-empty only matching points are eligible;
// the graph is oversampled and post-filtered since HNSW itself cannot filter.
func (s *HNSWIndex) Query(ctx context.Context, vector []float32, limit int, docIDs []string) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if limit <= 0 {
		return []ScoredPoint{}, nil
	}
	if s.graph == nil || s.graph.Len() == 0 || len(s.idMap) == 0 {
		return []ScoredPoint{}, nil
	}
	if len(vector) != s.dims {
		return nil, rerrors.DimensionMismatch(s.dims, len(vector))
	}

	var filter map[string]bool
	if len(docIDs) > 0 {
		filter = make(map[string]bool, len(docIDs))
		for _, id := range docIDs {
			filter[id] = true
		}
	}

	query := make([]float32, len(vector))
	copy(query, vector)
	normalizeVectorInPlace(query)

	total := s.graph.Len()
	k := limit
	for {
		// Orphans and filtered-out points shrink the usable result set, so
		// widen the search until enough hits survive or the graph is spent.
		nodes := s.graph.Search(query, min(k, total))

		results := make([]ScoredPoint, 0, limit)
		for _, node := range nodes {
			id, exists := s.keyMap[node.Key]
			if !exists {
				continue // orphaned by a lazy delete
			}
			payload := s.payloads[id]
			if filter != nil && !filter[payload.DocID] {
				continue
			}

			distance := s.graph.Distance(query, node.Value)
			results = append(results, ScoredPoint{
				ID:      id,
				Score:   1.0 - distance, // cosine similarity
				Payload: payload,
			})
			if len(results) == limit {
				return results, nil
			}
		}

		if k >= total {
			return results, nil
		}
		k *= 4
	}
}

// Count returns the number of live points.
func (s *HNSWIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0
	}
	return len(s.idMap)
}

// Dimensions returns the collection dimensionality, 0 if uninitialized.
func (s *HNSWIndex) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dims
}

// Save persists the graph and sidecar atomically. Orphaned nodes are compacted
// away by rebuilding the graph from live points before export when they
// outnumber live entries.
func (s *HNSWIndex) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}
	if s.graph == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	s.compactLocked()

	t, err := renameio.TempFile("", s.path)
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	defer t.Cleanup() //nolint:errcheck // best-effort cleanup after replace

	if err := s.graph.Export(t); err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace index file: %w", err)
	}

	return s.saveSidecar()
}

// compactLocked rebuilds the graph without orphaned nodes. Only worthwhile
// when orphans dominate; small orphan counts are left for the next cycle.
func (s *HNSWIndex) compactLocked() {
	orphans := s.graph.Len() - len(s.idMap)
	if orphans <= len(s.idMap) {
		return
	}

	fresh := newGraph()
	rebuilt := make(map[uint64]uint64, len(s.idMap))
	reverse := make(map[uint64]uint64, len(s.idMap))
	var next uint64

	for id, key := range s.idMap {
		node, ok := s.graph.Lookup(key)
		if !ok {
			continue
		}
		fresh.Add(hnsw.MakeNode(next, node))
		rebuilt[id] = next
		reverse[next] = id
		next++
	}

	s.graph = fresh
	s.idMap = rebuilt
	s.keyMap = reverse
	s.nextKey = next
}

func (s *HNSWIndex) saveSidecar() error {
	metaPath := filepath.Join(filepath.Dir(s.path), indexMetaFileName)

	t, err := renameio.TempFile("", metaPath)
	if err != nil {
		return fmt.Errorf("failed to create temp sidecar file: %w", err)
	}
	defer t.Cleanup() //nolint:errcheck

	sidecar := hnswSidecar{
		Dimensions: s.dims,
		IDMap:      s.idMap,
		Payloads:   s.payloads,
		NextKey:    s.nextKey,
	}
	if err := gob.NewEncoder(t).Encode(sidecar); err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	return t.CloseAtomicallyReplace()
}

func (s *HNSWIndex) load() error {
	metaPath := filepath.Join(filepath.Dir(s.path), indexMetaFileName)

	metaFile, err := os.Open(metaPath)
	if err != nil {
		return fmt.Errorf("failed to open index sidecar: %w", err)
	}
	defer func() { _ = metaFile.Close() }()

	var sidecar hnswSidecar
	if err := gob.NewDecoder(metaFile).Decode(&sidecar); err != nil {
		return fmt.Errorf("corrupt index sidecar %s: %w", metaPath, err)
	}

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer func() { _ = file.Close() }()

	graph := newGraph()
	// coder/hnsw Import needs an io.ByteReader.
	if err := graph.Import(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("failed to import graph: %w", err)
	}

	s.graph = graph
	s.dims = sidecar.Dimensions
	s.idMap = sidecar.IDMap
	s.payloads = sidecar.Payloads
	s.nextKey = sidecar.NextKey

	s.keyMap = make(map[uint64]uint64, len(s.idMap))
	for id, key := range s.idMap {
		s.keyMap[key] = id
	}
	return nil
}

// Close releases resources. The index is unusable afterwards.
func (s *HNSWIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.graph = nil
	s.idMap = nil
	s.keyMap = nil
	s.payloads = nil
	return nil
}

// Verify interface implementation at compile time.
var _ VectorIndex = (*HNSWIndex)(nil)

func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}
