package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// MetadataFileName is the flat file holding document summaries and counters.
const MetadataFileName = "documents_metadata.json"

// metadataFile is the on-disk layout:
// {"documents": {doc_id: summary}, "stats": {total_documents, total_chunks}}
type metadataFile struct {
	Documents map[string]DocumentSummary `json:"documents"`
	Stats     Stats                      `json:"stats"`
}

// MetadataStore keeps document summaries and aggregate counters in memory and
// persists them to a single JSON file. Every Save fully overwrites the file;
// there is no transaction log. Single-writer, single-process: concurrent
// writers are undefined behavior and must be serialized externally.
type MetadataStore struct {
	path  string
	state metadataFile
}

// NewMetadataStore creates a store persisting to dir/documents_metadata.json
// and loads any existing state. A missing file yields empty state with zeroed
// counters.
func NewMetadataStore(dir string) (*MetadataStore, error) {
	s := &MetadataStore{
		path: filepath.Join(dir, MetadataFileName),
		state: metadataFile{
			Documents: make(map[string]DocumentSummary),
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MetadataStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read metadata file: %w", err)
	}

	var state metadataFile
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("corrupt metadata file %s: %w", s.path, err)
	}
	if state.Documents == nil {
		state.Documents = make(map[string]DocumentSummary)
	}
	s.state = state
	return nil
}

// Save writes the full state back to disk, atomically replacing the file.
func (s *MetadataStore) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a document's summary record.
// Counters are adjusted separately via AdjustStats.
func (s *MetadataStore) Upsert(docID string, summary DocumentSummary) {
	s.state.Documents[docID] = summary
}

// Delete removes a record and returns the removed summary for counter
// adjustment. The second return is false when the id is unknown.
func (s *MetadataStore) Delete(docID string) (DocumentSummary, bool) {
	summary, ok := s.state.Documents[docID]
	if !ok {
		return DocumentSummary{}, false
	}
	delete(s.state.Documents, docID)
	return summary, true
}

// Get returns a document's summary record.
func (s *MetadataStore) Get(docID string) (DocumentSummary, bool) {
	summary, ok := s.state.Documents[docID]
	return summary, ok
}

// Has reports whether a document id is known.
func (s *MetadataStore) Has(docID string) bool {
	_, ok := s.state.Documents[docID]
	return ok
}

// All returns a copy of the document summary map.
func (s *MetadataStore) All() map[string]DocumentSummary {
	out := make(map[string]DocumentSummary, len(s.state.Documents))
	for id, summary := range s.state.Documents {
		out[id] = summary
	}
	return out
}

// Stats returns the aggregate counters.
func (s *MetadataStore) Stats() Stats {
	return s.state.Stats
}

// AdjustStats applies deltas to the aggregate counters.
func (s *MetadataStore) AdjustStats(documents, chunks int) {
	s.state.Stats.TotalDocuments += documents
	s.state.Stats.TotalChunks += chunks
}

// Path returns the metadata file location.
func (s *MetadataStore) Path() string {
	return s.path
}
