package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]model.Document
	chunks map[string][]model.Chunk // documentID -> chunks
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string]model.Document),
		chunks: make(map[string][]model.Chunk),
	}
}

// PutDocument upserts a document record.
func (s *MemoryStore) PutDocument(ctx context.Context, doc model.Document) error {
	doc.Metadata.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// PutChunks replaces the chunks of a document.
func (s *MemoryStore) PutChunks(ctx context.Context, documentID string, chunks []model.Chunk) error {
	copied := make([]model.Chunk, len(chunks))
	copy(copied, chunks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentID] = copied
	return nil
}

// ListCandidates returns a snapshot of matching chunks in stable
// (document id, chunk index) order.
func (s *MemoryStore) ListCandidates(ctx context.Context, filters textindex.Filters) ([]textindex.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docIDs := make([]string, 0, len(s.chunks))
	for id := range s.chunks {
		docIDs = append(docIDs, id)
	}
	sort.Strings(docIDs)

	var candidates []textindex.Candidate
	for _, id := range docIDs {
		doc, ok := s.docs[id]
		if !ok {
			continue
		}
		if !matches(doc.Metadata, filters) {
			continue
		}
		for _, chunk := range s.chunks[id] {
			candidates = append(candidates, textindex.Candidate{
				Chunk:    chunk,
				Metadata: doc.Metadata,
			})
		}
	}
	return candidates, nil
}

// DeleteDocument removes a document and its chunks.
func (s *MemoryStore) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, documentID)
	delete(s.chunks, documentID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// matches applies the store-level equality filters. The ownerKey filter
// admits unscoped documents, mirroring the index's candidate selection.
func matches(meta model.Metadata, filters textindex.Filters) bool {
	if filters.DocType != "" && meta.DocType != filters.DocType {
		return false
	}
	if filters.OwnerKey != "" && meta.OwnerKey != "" && meta.OwnerKey != filters.OwnerKey {
		return false
	}
	return true
}
